package events

import (
	domain "github.com/example/quicktasks/domain/task"
)

// NewTaskRecord copies a domain task into an event record.
func NewTaskRecord(t domain.Task) TaskRecord {
	t = t.Clone()
	return TaskRecord{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Category:    string(t.Category),
		DueDate:     t.DueDate,
		IsCompleted: t.IsCompleted,
		CreatedAt:   t.CreatedAt,
	}
}

// ToTask converts the record back into a domain task.
func (r TaskRecord) ToTask() domain.Task {
	return domain.Task{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Category:    domain.Category(r.Category),
		DueDate:     r.DueDate,
		IsCompleted: r.IsCompleted,
		CreatedAt:   r.CreatedAt,
	}.Clone()
}
