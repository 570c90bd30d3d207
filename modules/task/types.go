package task

import (
	"context"
	"time"

	domain "github.com/example/quicktasks/domain/task"
	"github.com/example/quicktasks/events"
)

// Error codes carried in service responses.
const (
	CodeNotFound   = "not_found"
	CodeValidation = "validation_error"
)

// Filter selects which tasks list-tasks returns.
type Filter string

const (
	FilterAll        Filter = "all"
	FilterIncomplete Filter = "incomplete"
	FilterCompleted  Filter = "completed"
)

// ServiceError is embedded in responses to report a domain failure.
type ServiceError struct {
	ErrorCode    string `json:"error_code,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// TaskFields is the editable part of a task as sent over the service bus.
type TaskFields struct {
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	DueDate     *time.Time `json:"due_date"`
	Category    string     `json:"category"`
}

// ToDomain converts the wire fields into domain fields.
func (f TaskFields) ToDomain() domain.Fields {
	return domain.Fields{
		Title:       f.Title,
		Description: f.Description,
		DueDate:     f.DueDate,
		Category:    f.Category,
	}
}

// NewTaskFields converts domain fields into wire fields.
func NewTaskFields(f domain.Fields) TaskFields {
	return TaskFields{
		Title:       f.Title,
		Description: f.Description,
		DueDate:     f.DueDate,
		Category:    f.Category,
	}
}

// CreateTaskRequest is the request for creating a task.
type CreateTaskRequest struct {
	Fields TaskFields `json:"fields"`
}

// GetTaskRequest is the request for getting a task.
type GetTaskRequest struct {
	TaskID int `json:"task_id"`
}

// UpdateTaskRequest is the request for editing a task.
type UpdateTaskRequest struct {
	TaskID int        `json:"task_id"`
	Fields TaskFields `json:"fields"`
}

// ToggleTaskRequest is the request for flipping a task's completion state.
type ToggleTaskRequest struct {
	TaskID int `json:"task_id"`
}

// DeleteTaskRequest is the request for deleting a task.
type DeleteTaskRequest struct {
	TaskID int `json:"task_id"`
}

// DeleteTaskResponse is the response for deleting a task.
type DeleteTaskResponse struct {
	ServiceError
	Deleted bool `json:"deleted"`
}

// ListTasksRequest is the request for listing tasks.
type ListTasksRequest struct {
	Filter Filter `json:"filter,omitempty"`
}

// ListTasksResponse is the response for listing tasks. Counts always cover
// the whole collection regardless of the filter.
type ListTasksResponse struct {
	ServiceError
	Tasks      []events.TaskRecord `json:"tasks"`
	Total      int                 `json:"total"`
	Incomplete int                 `json:"incomplete"`
	Completed  int                 `json:"completed"`
}

// TaskResponse is the response for a single task.
type TaskResponse struct {
	ServiceError
	Task *events.TaskRecord `json:"task,omitempty"`
}

// TaskList is a listing as seen by callers of TaskPort.
type TaskList struct {
	Tasks      []domain.Task
	Total      int
	Incomplete int
	Completed  int
}

// TaskPort defines the interface for task operations (hexagonal port).
// Domain failures come back as errors matching domain.ErrNotFound or
// domain.ErrValidation.
type TaskPort interface {
	CreateTask(ctx context.Context, fields domain.Fields) (domain.Task, error)
	GetTask(ctx context.Context, taskID int) (domain.Task, error)
	UpdateTask(ctx context.Context, taskID int, fields domain.Fields) (domain.Task, error)
	ToggleTask(ctx context.Context, taskID int) (domain.Task, error)
	DeleteTask(ctx context.Context, taskID int) error
	ListTasks(ctx context.Context, filter Filter) (*TaskList, error)
}
