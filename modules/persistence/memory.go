package persistence

import (
	"context"
	"sync"

	domain "github.com/example/quicktasks/domain/task"
)

// MemoryBackend keeps tasks in process memory. Nothing survives a restart.
type MemoryBackend struct {
	tasks  map[int]domain.Task
	lastID int
	mu     sync.RWMutex
}

// NewMemoryBackend creates an empty memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		tasks: make(map[int]domain.Task),
	}
}

func (b *MemoryBackend) Name() string { return "memory" }

func (b *MemoryBackend) Open(_ context.Context) error { return nil }

func (b *MemoryBackend) LoadAll(_ context.Context) (domain.Snapshot, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	snap := domain.Snapshot{
		Tasks:  make([]domain.Task, 0, len(b.tasks)),
		LastID: b.lastID,
	}
	for _, t := range b.tasks {
		snap.Tasks = append(snap.Tasks, t.Clone())
	}
	return snap, nil
}

func (b *MemoryBackend) Save(_ context.Context, t domain.Task) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.tasks[t.ID] = t.Clone()
	if t.ID > b.lastID {
		b.lastID = t.ID
	}
	return nil
}

func (b *MemoryBackend) Remove(_ context.Context, id int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.tasks, id)
	return nil
}

func (b *MemoryBackend) Ping(_ context.Context) error { return nil }

func (b *MemoryBackend) Close() error { return nil }
