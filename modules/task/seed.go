package task

import (
	"time"

	domain "github.com/example/quicktasks/domain/task"
)

const day = 24 * time.Hour

// demoTask is a sample task described relative to the seeding time.
type demoTask struct {
	title       string
	description string
	category    domain.Category
	dueIn       *time.Duration
	completed   bool
	createdAgo  time.Duration
}

func offset(d time.Duration) *time.Duration { return &d }

var demoTasks = []demoTask{
	{title: "Task 1", description: "Description 1", category: domain.CategorySchool, dueIn: offset(day), createdAgo: 2 * day},
	{title: "Task 2", description: "Description 2", category: domain.CategoryPersonal, completed: true, createdAgo: day},
	{title: "Task 3", description: "Description 3", category: domain.CategoryWork, dueIn: offset(-day), createdAgo: 3 * day},
	{title: "Task 4", description: "Description 4", category: domain.CategorySchool, dueIn: offset(7 * day), createdAgo: 5 * day},
	{title: "Task 5", description: "Description 5", category: domain.CategoryPersonal, createdAgo: 4 * day},
}

// seed adds the demo tasks to the store. They take ids 1 to 5 on an empty
// store and are published like any other creation.
func (m *TaskModule) seed() error {
	now := m.now()
	for _, d := range demoTasks {
		desc := d.description
		fields := domain.Fields{
			Title:       d.title,
			Description: &desc,
			Category:    string(d.category),
		}
		if d.dueIn != nil {
			due := now.Add(*d.dueIn)
			fields.DueDate = &due
		}
		if _, err := m.store.Import(fields, now.Add(-d.createdAgo), d.completed); err != nil {
			return err
		}
	}
	return nil
}
