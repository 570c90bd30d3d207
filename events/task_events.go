package events

import (
	"time"

	"github.com/go-monolith/mono/pkg/helper"
)

// TaskRecord is the full task value carried by task events.
type TaskRecord struct {
	ID          int        `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Category    string     `json:"category"`
	DueDate     *time.Time `json:"due_date"`
	IsCompleted bool       `json:"is_completed"`
	CreatedAt   time.Time  `json:"created_at"`
}

// TaskSavedEvent is emitted when a task is created, updated or toggled.
// Revision orders events produced by the same store.
type TaskSavedEvent struct {
	Task     TaskRecord `json:"task"`
	Revision uint64     `json:"revision"`
	LastID   int        `json:"last_id"`
}

// TaskCreatedV1 is the typed event definition for task creation.
// Subject: events.task.v1.task-created
var TaskCreatedV1 = helper.EventDefinition[TaskSavedEvent](
	"task", "TaskCreated", "v1",
)

// TaskUpdatedV1 is the typed event definition for task edits.
// Subject: events.task.v1.task-updated
var TaskUpdatedV1 = helper.EventDefinition[TaskSavedEvent](
	"task", "TaskUpdated", "v1",
)

// TaskToggledV1 is the typed event definition for completion toggles.
// Subject: events.task.v1.task-toggled
var TaskToggledV1 = helper.EventDefinition[TaskSavedEvent](
	"task", "TaskToggled", "v1",
)

// TaskDeletedEvent is emitted when a task is deleted.
type TaskDeletedEvent struct {
	TaskID    int       `json:"task_id"`
	Revision  uint64    `json:"revision"`
	LastID    int       `json:"last_id"`
	DeletedAt time.Time `json:"deleted_at"`
}

// TaskDeletedV1 is the typed event definition for task deletion.
// Subject: events.task.v1.task-deleted
var TaskDeletedV1 = helper.EventDefinition[TaskDeletedEvent](
	"task", "TaskDeleted", "v1",
)
