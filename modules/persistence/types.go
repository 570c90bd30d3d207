package persistence

import (
	"context"

	"github.com/example/quicktasks/events"
)

// LoadTasksRequest is the request for loading the persisted task collection.
type LoadTasksRequest struct{}

// LoadTasksResponse carries the persisted collection.
type LoadTasksResponse struct {
	Tasks   []events.TaskRecord `json:"tasks"`
	LastID  int                 `json:"last_id"`
	Backend string              `json:"backend"`
}

// StatsRequest is the request for writer statistics.
type StatsRequest struct{}

// StatsResponse reports the backend and its write queue counters.
type StatsResponse struct {
	Backend string      `json:"backend"`
	Writer  WriterStats `json:"writer"`
}

// PersistencePort defines the operations other modules use to reach the
// persistence module.
type PersistencePort interface {
	LoadTasks(ctx context.Context) (*LoadTasksResponse, error)
	Stats(ctx context.Context) (*StatsResponse, error)
}
