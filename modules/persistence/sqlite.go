package persistence

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	domain "github.com/example/quicktasks/domain/task"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

const lastIDCounter = "last_id"

// taskRow is the tasks table model.
type taskRow struct {
	ID          int        `gorm:"primarykey;autoIncrement:false"`
	Title       string     `gorm:"size:200;not null"`
	Description *string    `gorm:"size:2000"`
	Category    string     `gorm:"size:16;not null"`
	DueDate     *time.Time `gorm:"index"`
	IsCompleted bool       `gorm:"not null"`
	CreatedAt   time.Time  `gorm:"not null;index"`
}

// TableName returns the table name for taskRow.
func (taskRow) TableName() string {
	return "tasks"
}

// counterRow stores named high-water marks.
type counterRow struct {
	Name  string `gorm:"primarykey;size:32"`
	Value int    `gorm:"not null"`
}

// TableName returns the table name for counterRow.
func (counterRow) TableName() string {
	return "task_counters"
}

func toRow(t domain.Task) taskRow {
	t = t.Clone()
	return taskRow{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Category:    string(t.Category),
		DueDate:     t.DueDate,
		IsCompleted: t.IsCompleted,
		CreatedAt:   t.CreatedAt,
	}
}

func (r taskRow) toTask() domain.Task {
	return domain.Task{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Category:    domain.Category(r.Category),
		DueDate:     r.DueDate,
		IsCompleted: r.IsCompleted,
		CreatedAt:   r.CreatedAt,
	}
}

// SQLiteBackend persists tasks with GORM on SQLite.
type SQLiteBackend struct {
	db    *gorm.DB
	path  string
	debug bool
}

// NewSQLiteBackend creates a backend for the database file at path.
func NewSQLiteBackend(path string, debug bool) *SQLiteBackend {
	return &SQLiteBackend{
		path:  path,
		debug: debug,
	}
}

func (b *SQLiteBackend) Name() string { return "sqlite" }

// Open connects to the database and runs migrations.
func (b *SQLiteBackend) Open(_ context.Context) error {
	log.Printf("[persistence] Connecting to SQLite database: %s", b.path)

	logLevel := logger.Silent
	if b.debug {
		logLevel = logger.Info
	}

	db, err := gorm.Open(sqlite.Open(b.path), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	// One connection: SQLite has a single writer, and ":memory:" databases
	// are per connection.
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&taskRow{}, &counterRow{}); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	b.db = db
	return nil
}

func (b *SQLiteBackend) LoadAll(ctx context.Context) (domain.Snapshot, error) {
	var rows []taskRow
	if err := b.db.WithContext(ctx).Order("created_at ASC, id ASC").Find(&rows).Error; err != nil {
		return domain.Snapshot{}, fmt.Errorf("failed to load tasks: %w", err)
	}

	var counter counterRow
	lastID := 0
	err := b.db.WithContext(ctx).First(&counter, "name = ?", lastIDCounter).Error
	switch {
	case err == nil:
		lastID = counter.Value
	case errors.Is(err, gorm.ErrRecordNotFound):
	default:
		return domain.Snapshot{}, fmt.Errorf("failed to load id counter: %w", err)
	}

	snap := domain.Snapshot{
		Tasks:  make([]domain.Task, 0, len(rows)),
		LastID: lastID,
	}
	for _, r := range rows {
		snap.Tasks = append(snap.Tasks, r.toTask())
	}
	return snap, nil
}

func (b *SQLiteBackend) Save(ctx context.Context, t domain.Task) error {
	row := toRow(t)
	return b.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error; err != nil {
			return fmt.Errorf("failed to save task %d: %w", t.ID, err)
		}

		counter := counterRow{Name: lastIDCounter, Value: t.ID}
		err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "name"}},
			DoUpdates: clause.Assignments(map[string]any{
				"value": gorm.Expr("MAX(task_counters.value, excluded.value)"),
			}),
		}).Create(&counter).Error
		if err != nil {
			return fmt.Errorf("failed to raise id counter: %w", err)
		}
		return nil
	})
}

func (b *SQLiteBackend) Remove(ctx context.Context, id int) error {
	if err := b.db.WithContext(ctx).Delete(&taskRow{}, id).Error; err != nil {
		return fmt.Errorf("failed to remove task %d: %w", id, err)
	}
	return nil
}

func (b *SQLiteBackend) Ping(ctx context.Context) error {
	if b.db == nil {
		return fmt.Errorf("database not initialized")
	}
	sqlDB, err := b.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the database connection.
func (b *SQLiteBackend) Close() error {
	if b.db == nil {
		return nil
	}

	sqlDB, err := b.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	log.Println("[persistence] Database connection closed")
	return nil
}
