package api

import (
	"time"

	"github.com/dustin/go-humanize"
	domain "github.com/example/quicktasks/domain/task"
)

const (
	dueLabelLayout     = "Jan 02, 2006"
	createdLabelLayout = "Jan 02, 2006 at 15:04"
)

// TaskRequest is the HTTP request body for creating or editing a task.
type TaskRequest struct {
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Category    string     `json:"category"`
	DueDate     *time.Time `json:"due_date"`
}

func (r TaskRequest) toFields() domain.Fields {
	return domain.Fields{
		Title:       r.Title,
		Description: r.Description,
		DueDate:     r.DueDate,
		Category:    r.Category,
	}
}

// TaskResponse is the HTTP response for a single task. The label and
// overdue fields are derived when the response is built.
type TaskResponse struct {
	ID           int        `json:"id"`
	Title        string     `json:"title"`
	Description  *string    `json:"description"`
	Category     string     `json:"category"`
	DueDate      *time.Time `json:"due_date"`
	IsCompleted  bool       `json:"is_completed"`
	CreatedAt    time.Time  `json:"created_at"`
	Overdue      bool       `json:"overdue"`
	DueLabel     string     `json:"due_label,omitempty"`
	DueRelative  string     `json:"due_relative,omitempty"`
	CreatedLabel string     `json:"created_label"`
}

func newTaskResponse(t domain.Task, now time.Time) TaskResponse {
	resp := TaskResponse{
		ID:           t.ID,
		Title:        t.Title,
		Description:  t.Description,
		Category:     string(t.Category),
		DueDate:      t.DueDate,
		IsCompleted:  t.IsCompleted,
		CreatedAt:    t.CreatedAt,
		Overdue:      t.IsOverdue(now),
		CreatedLabel: t.CreatedAt.Format(createdLabelLayout),
	}
	if t.DueDate != nil {
		resp.DueLabel = t.DueDate.Format(dueLabelLayout)
		resp.DueRelative = humanize.RelTime(*t.DueDate, now, "ago", "from now")
	}
	return resp
}

// ListTasksResponse is the HTTP response for listing tasks.
type ListTasksResponse struct {
	Filter     string         `json:"filter"`
	Tasks      []TaskResponse `json:"tasks"`
	Total      int            `json:"total"`
	Incomplete int            `json:"incomplete"`
	Completed  int            `json:"completed"`
}

// CategoriesResponse is the HTTP response for the category list.
type CategoriesResponse struct {
	Categories []string `json:"categories"`
	Default    string   `json:"default"`
}

// HealthResponse is the HTTP response for health check.
type HealthResponse struct {
	Status  string         `json:"status"`
	Details map[string]any `json:"details,omitempty"`
}

// ErrorResponse is the HTTP response for errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
