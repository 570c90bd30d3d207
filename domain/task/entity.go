// Package task provides the task entity and the in-memory task store.
package task

import (
	"fmt"
	"strings"
	"time"
)

// Category is the fixed grouping a task belongs to.
type Category string

const (
	CategorySchool   Category = "School"
	CategoryWork     Category = "Work"
	CategoryPersonal Category = "Personal"
	CategoryOther    Category = "Other"
)

// Categories returns the fixed category set in display order.
func Categories() []Category {
	return []Category{CategorySchool, CategoryWork, CategoryPersonal, CategoryOther}
}

// ParseCategory normalizes a category name. Empty input defaults to Other.
func ParseCategory(s string) (Category, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return CategoryOther, nil
	}
	for _, c := range Categories() {
		if strings.EqualFold(s, string(c)) {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: unknown category %q", ErrValidation, s)
}

// Task is a single to-do item. Tasks are values: the store hands out copies
// and replaces stored instances on every mutation.
type Task struct {
	ID          int        `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Category    Category   `json:"category"`
	DueDate     *time.Time `json:"due_date"`
	IsCompleted bool       `json:"is_completed"`
	CreatedAt   time.Time  `json:"created_at"`
}

// HasDescription reports whether the task has a non-empty description.
// Absent and empty descriptions both read as "no description".
func (t Task) HasDescription() bool {
	return t.Description != nil && *t.Description != ""
}

// IsOverdue reports whether the due date lies before now.
//
// Completion is not consulted: a completed task with a past due date is
// still reported as overdue.
func (t Task) IsOverdue(now time.Time) bool {
	return t.DueDate != nil && t.DueDate.Before(now)
}

// Clone returns a deep copy of the task.
func (t Task) Clone() Task {
	c := t
	if t.Description != nil {
		d := *t.Description
		c.Description = &d
	}
	if t.DueDate != nil {
		due := *t.DueDate
		c.DueDate = &due
	}
	return c
}

// Fields holds the caller-editable part of a task, used by create and update.
type Fields struct {
	Title       string
	Description *string
	DueDate     *time.Time
	Category    string
}

// normalize validates the fields and returns them in canonical form. The
// title is kept exactly as given.
func (f Fields) normalize() (Fields, Category, error) {
	if f.Title == "" {
		return Fields{}, "", fmt.Errorf("%w: title is required", ErrValidation)
	}
	category, err := ParseCategory(f.Category)
	if err != nil {
		return Fields{}, "", err
	}
	f.Category = string(category)
	return f, category, nil
}

// Validate checks the fields without applying them.
func (f Fields) Validate() error {
	_, _, err := f.normalize()
	return err
}

// Snapshot is the persisted state of a store: its tasks plus the id
// high-water mark.
type Snapshot struct {
	Tasks  []Task `json:"tasks"`
	LastID int    `json:"last_id"`
}
