package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/example/quicktasks/config"
	"github.com/example/quicktasks/events"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// PersistenceModule is the driven adapter that mirrors the task store into a
// storage backend. Reads go through the load-tasks service; writes arrive as
// task events and are applied by a single Writer.
type PersistenceModule struct {
	backend Backend
	writer  *Writer
}

// Compile-time interface checks.
var _ mono.Module = (*PersistenceModule)(nil)
var _ mono.ServiceProviderModule = (*PersistenceModule)(nil)
var _ mono.EventConsumerModule = (*PersistenceModule)(nil)
var _ mono.HealthCheckableModule = (*PersistenceModule)(nil)

// NewModule creates a PersistenceModule for the configured backend.
func NewModule(cfg config.Storage) (*PersistenceModule, error) {
	backend, err := NewBackend(cfg)
	if err != nil {
		return nil, err
	}
	return NewModuleWithBackend(backend, cfg.QueueSize), nil
}

// NewModuleWithBackend creates a PersistenceModule around an existing backend.
func NewModuleWithBackend(backend Backend, queueSize int) *PersistenceModule {
	return &PersistenceModule{
		backend: backend,
		writer:  NewWriter(backend, queueSize),
	}
}

// Name returns the module name.
func (m *PersistenceModule) Name() string {
	return "persistence"
}

// RegisterServices registers request-reply services in the service container.
func (m *PersistenceModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container,
		"load-tasks",
		json.Unmarshal,
		json.Marshal,
		m.loadTasks,
	); err != nil {
		return fmt.Errorf("failed to register load-tasks service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container,
		"storage-stats",
		json.Unmarshal,
		json.Marshal,
		m.storageStats,
	); err != nil {
		return fmt.Errorf("failed to register storage-stats service: %w", err)
	}

	log.Printf("[persistence] Registered services: load-tasks, storage-stats")
	return nil
}

// RegisterEventConsumers subscribes to every task mutation event.
func (m *PersistenceModule) RegisterEventConsumers(registry mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskCreatedV1, m.handleTaskSaved, m); err != nil {
		return fmt.Errorf("failed to register TaskCreated consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskUpdatedV1, m.handleTaskSaved, m); err != nil {
		return fmt.Errorf("failed to register TaskUpdated consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskToggledV1, m.handleTaskSaved, m); err != nil {
		return fmt.Errorf("failed to register TaskToggled consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskDeletedV1, m.handleTaskDeleted, m); err != nil {
		return fmt.Errorf("failed to register TaskDeleted consumer: %w", err)
	}

	log.Printf("[persistence] Registered event consumers: TaskCreated, TaskUpdated, TaskToggled, TaskDeleted")
	return nil
}

func (m *PersistenceModule) loadTasks(ctx context.Context, _ LoadTasksRequest, _ *mono.Msg) (LoadTasksResponse, error) {
	snap, err := m.backend.LoadAll(ctx)
	if err != nil {
		return LoadTasksResponse{}, fmt.Errorf("failed to load tasks from %s: %w", m.backend.Name(), err)
	}

	records := make([]events.TaskRecord, 0, len(snap.Tasks))
	for _, t := range snap.Tasks {
		records = append(records, events.NewTaskRecord(t))
	}

	return LoadTasksResponse{
		Tasks:   records,
		LastID:  snap.LastID,
		Backend: m.backend.Name(),
	}, nil
}

func (m *PersistenceModule) storageStats(_ context.Context, _ StatsRequest, _ *mono.Msg) (StatsResponse, error) {
	return StatsResponse{
		Backend: m.backend.Name(),
		Writer:  m.writer.Stats(),
	}, nil
}

func (m *PersistenceModule) handleTaskSaved(ctx context.Context, event events.TaskSavedEvent, _ *mono.Msg) error {
	return m.enqueue(ctx, saveOp(event.Task.ToTask(), event.Revision))
}

func (m *PersistenceModule) handleTaskDeleted(ctx context.Context, event events.TaskDeletedEvent, _ *mono.Msg) error {
	return m.enqueue(ctx, removeOp(event.TaskID, event.Revision))
}

func (m *PersistenceModule) enqueue(ctx context.Context, op writeOp) error {
	if err := m.writer.Enqueue(ctx, op); err != nil {
		if errors.Is(err, ErrWriterClosed) {
			log.Printf("[persistence] Dropping write for task %d: module stopped", op.taskID)
			return nil
		}
		return fmt.Errorf("failed to queue write for task %d: %w", op.taskID, err)
	}
	return nil
}

// Start opens the backend and launches the writer.
func (m *PersistenceModule) Start(ctx context.Context) error {
	if err := m.backend.Open(ctx); err != nil {
		return fmt.Errorf("failed to open %s backend: %w", m.backend.Name(), err)
	}
	if err := m.writer.Start(); err != nil {
		return fmt.Errorf("failed to start writer: %w", err)
	}
	log.Printf("[persistence] Module started with %s backend", m.backend.Name())
	return nil
}

// Stop drains pending writes and closes the backend.
func (m *PersistenceModule) Stop(ctx context.Context) error {
	drainErr := m.writer.Stop(ctx)
	if err := m.backend.Close(); err != nil {
		log.Printf("[persistence] Error closing backend: %v", err)
	}
	log.Println("[persistence] Module stopped")
	return drainErr
}

// Health returns the health status of the module.
func (m *PersistenceModule) Health(ctx context.Context) mono.HealthStatus {
	stats := m.writer.Stats()
	details := map[string]any{
		"backend": m.backend.Name(),
		"applied": stats.Applied,
		"skipped": stats.Skipped,
		"failed":  stats.Failed,
		"pending": stats.Pending,
	}

	if err := m.backend.Ping(ctx); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("%s ping failed: %v", m.backend.Name(), err),
			Details: details,
		}
	}

	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: details,
	}
}
