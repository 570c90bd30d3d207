package task

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	domain "github.com/example/quicktasks/domain/task"
	"github.com/example/quicktasks/events"
	"github.com/example/quicktasks/modules/persistence"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// TaskModule provides task management services (core domain). It owns the
// task store; every applied mutation is published as a typed event.
type TaskModule struct {
	store           *domain.Store
	persistencePort persistence.PersistencePort
	eventBus        mono.EventBus
	seedDemo        bool
	now             func() time.Time

	loadMu sync.Mutex
	loaded atomic.Bool
}

var _ mono.Module = (*TaskModule)(nil)
var _ mono.ServiceProviderModule = (*TaskModule)(nil)
var _ mono.DependentModule = (*TaskModule)(nil)
var _ mono.EventEmitterModule = (*TaskModule)(nil)
var _ mono.HealthCheckableModule = (*TaskModule)(nil)

// Option configures a TaskModule.
type Option func(*TaskModule)

// WithDemoSeed seeds the sample tasks when the loaded store is empty.
func WithDemoSeed(enabled bool) Option {
	return func(m *TaskModule) {
		m.seedDemo = enabled
	}
}

// WithClock sets the time source for new tasks and the demo seed.
func WithClock(now func() time.Time) Option {
	return func(m *TaskModule) {
		m.now = now
	}
}

func NewModule(opts ...Option) *TaskModule {
	m := &TaskModule{now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	m.store = domain.NewStore(
		domain.WithClock(func() time.Time { return m.now() }),
		domain.WithObserver(m.publishChange),
	)
	return m
}

func (m *TaskModule) Name() string {
	return "task"
}

func (m *TaskModule) Dependencies() []string {
	return []string{"persistence"}
}

func (m *TaskModule) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	if dependency == "persistence" {
		m.persistencePort = persistence.NewPersistenceAdapter(container)
	}
}

func (m *TaskModule) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
}

func (m *TaskModule) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.TaskCreatedV1.ToBase(),
		events.TaskUpdatedV1.ToBase(),
		events.TaskToggledV1.ToBase(),
		events.TaskDeletedV1.ToBase(),
	}
}

func (m *TaskModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "create-task", json.Unmarshal, json.Marshal, m.createTask,
	); err != nil {
		return fmt.Errorf("failed to register create-task service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "get-task", json.Unmarshal, json.Marshal, m.getTask,
	); err != nil {
		return fmt.Errorf("failed to register get-task service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "update-task", json.Unmarshal, json.Marshal, m.updateTask,
	); err != nil {
		return fmt.Errorf("failed to register update-task service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "toggle-task", json.Unmarshal, json.Marshal, m.toggleTask,
	); err != nil {
		return fmt.Errorf("failed to register toggle-task service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "delete-task", json.Unmarshal, json.Marshal, m.deleteTask,
	); err != nil {
		return fmt.Errorf("failed to register delete-task service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "list-tasks", json.Unmarshal, json.Marshal, m.listTasks,
	); err != nil {
		return fmt.Errorf("failed to register list-tasks service: %w", err)
	}

	log.Printf("[task] Registered services: create-task, get-task, update-task, toggle-task, delete-task, list-tasks")
	return nil
}

// Start checks the wiring. The persisted collection is loaded by
// LoadPersisted, since the persistence services only answer once every
// module has started.
func (m *TaskModule) Start(_ context.Context) error {
	if m.persistencePort == nil {
		return fmt.Errorf("persistencePort dependency not set")
	}
	if m.eventBus == nil {
		log.Println("[task] Warning: eventBus not set, changes will not be persisted")
	}

	log.Println("[task] Module started (depends on: persistence)")
	return nil
}

// LoadPersisted loads the persisted collection into the store and seeds the
// demo tasks into an empty one. It runs at most once successfully; a failed
// load is retried on the next call. Every service handler calls it first, so
// requests are never answered from an unloaded store.
func (m *TaskModule) LoadPersisted(ctx context.Context) error {
	if m.loaded.Load() {
		return nil
	}

	m.loadMu.Lock()
	defer m.loadMu.Unlock()
	if m.loaded.Load() {
		return nil
	}
	if m.persistencePort == nil {
		return fmt.Errorf("persistencePort dependency not set")
	}

	loaded, err := m.persistencePort.LoadTasks(ctx)
	if err != nil {
		return fmt.Errorf("failed to load tasks: %w", err)
	}

	snap := domain.Snapshot{
		Tasks:  make([]domain.Task, 0, len(loaded.Tasks)),
		LastID: loaded.LastID,
	}
	for _, r := range loaded.Tasks {
		snap.Tasks = append(snap.Tasks, r.ToTask())
	}
	m.store.Load(snap)
	log.Printf("[task] Loaded %d tasks from %s (last id %d)", m.store.Len(), loaded.Backend, m.store.LastID())

	if m.seedDemo && m.store.Len() == 0 {
		if err := m.seed(); err != nil {
			return fmt.Errorf("failed to seed demo tasks: %w", err)
		}
		log.Printf("[task] Seeded %d demo tasks", m.store.Len())
	}

	m.loaded.Store(true)
	return nil
}

func (m *TaskModule) Stop(_ context.Context) error {
	log.Println("[task] Module stopped")
	return nil
}

// Health reports the size of the collection.
func (m *TaskModule) Health(_ context.Context) mono.HealthStatus {
	if !m.loaded.Load() {
		return mono.HealthStatus{
			Healthy: false,
			Message: "tasks not loaded",
		}
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"tasks":    m.store.Len(),
			"last_id":  m.store.LastID(),
			"revision": m.store.Revision(),
		},
	}
}

// publishChange emits the event for an applied store change. It runs while
// the store still holds its write lock, so events leave in mutation order.
func (m *TaskModule) publishChange(c domain.Change) {
	if m.eventBus == nil {
		return
	}

	var err error
	switch c.Kind {
	case domain.ChangeCreated:
		err = events.TaskCreatedV1.Publish(m.eventBus, savedEvent(c), nil)
	case domain.ChangeUpdated:
		err = events.TaskUpdatedV1.Publish(m.eventBus, savedEvent(c), nil)
	case domain.ChangeToggled:
		err = events.TaskToggledV1.Publish(m.eventBus, savedEvent(c), nil)
	case domain.ChangeDeleted:
		err = events.TaskDeletedV1.Publish(m.eventBus, events.TaskDeletedEvent{
			TaskID:    c.Task.ID,
			Revision:  c.Revision,
			LastID:    c.LastID,
			DeletedAt: m.now(),
		}, nil)
	}
	if err != nil {
		// Event publishing is best-effort; log but don't fail the operation
		log.Printf("[task] Warning: failed to publish %s event for task %d: %v", c.Kind, c.Task.ID, err)
	}
}

func savedEvent(c domain.Change) events.TaskSavedEvent {
	return events.TaskSavedEvent{
		Task:     events.NewTaskRecord(c.Task),
		Revision: c.Revision,
		LastID:   c.LastID,
	}
}
