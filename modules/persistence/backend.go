package persistence

import (
	"context"
	"fmt"

	"github.com/example/quicktasks/config"
	domain "github.com/example/quicktasks/domain/task"
)

// Backend is the durable storage behind the persistence module.
type Backend interface {
	// Name identifies the backend in logs and health details.
	Name() string
	// Open connects to the storage and prepares its schema.
	Open(ctx context.Context) error
	// LoadAll returns every stored task and the id high-water mark.
	LoadAll(ctx context.Context) (domain.Snapshot, error)
	// Save upserts a task and raises the id high-water mark to at least its id.
	Save(ctx context.Context, t domain.Task) error
	// Remove deletes a task. Removing an absent task is not an error.
	Remove(ctx context.Context, id int) error
	Ping(ctx context.Context) error
	Close() error
}

// NewBackend builds the backend selected by the storage configuration.
func NewBackend(cfg config.Storage) (Backend, error) {
	switch cfg.Backend {
	case config.BackendMemory, "":
		return NewMemoryBackend(), nil
	case config.BackendSQLite:
		return NewSQLiteBackend(cfg.SQLite.Path, cfg.SQLite.Debug), nil
	case config.BackendRedis:
		return NewRedisBackend(cfg.Redis.Addr, cfg.Redis.Prefix), nil
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", cfg.Backend)
	}
}
