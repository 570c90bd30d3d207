package persistence

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// persistenceAdapter wraps ServiceContainer for type-safe cross-module communication.
type persistenceAdapter struct {
	container mono.ServiceContainer
}

// NewPersistenceAdapter creates a new adapter for persistence services.
func NewPersistenceAdapter(container mono.ServiceContainer) PersistencePort {
	if container == nil {
		panic("persistence adapter requires non-nil ServiceContainer")
	}
	return &persistenceAdapter{container: container}
}

// LoadTasks fetches the persisted collection via the load-tasks service.
func (a *persistenceAdapter) LoadTasks(ctx context.Context) (*LoadTasksResponse, error) {
	var resp LoadTasksResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"load-tasks",
		json.Marshal,
		json.Unmarshal,
		&LoadTasksRequest{},
		&resp,
	); err != nil {
		return nil, fmt.Errorf("load-tasks service call failed: %w", err)
	}
	return &resp, nil
}

// Stats fetches writer statistics via the storage-stats service.
func (a *persistenceAdapter) Stats(ctx context.Context) (*StatsResponse, error) {
	var resp StatsResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"storage-stats",
		json.Marshal,
		json.Unmarshal,
		&StatsRequest{},
		&resp,
	); err != nil {
		return nil, fmt.Errorf("storage-stats service call failed: %w", err)
	}
	return &resp, nil
}
