package task

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stepClock returns a clock that advances by step on every call.
func stepClock(start time.Time, step time.Duration) func() time.Time {
	current := start
	return func() time.Time {
		now := current
		current = current.Add(step)
		return now
	}
}

func strPtr(s string) *string { return &s }

func newTestStore(opts ...StoreOption) *Store {
	base := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	return NewStore(append([]StoreOption{WithClock(stepClock(base, time.Minute))}, opts...)...)
}

func TestStore_CreateFirstTask(t *testing.T) {
	s := newTestStore()

	created, err := s.Create(Fields{Title: "Buy milk", Category: "Personal"})
	require.NoError(t, err)

	tasks := s.List()
	require.Len(t, tasks, 1)
	assert.Equal(t, 1, tasks[0].ID)
	assert.False(t, tasks[0].IsCompleted)
	assert.Equal(t, CategoryPersonal, tasks[0].Category)
	assert.Nil(t, tasks[0].Description)
	assert.Nil(t, tasks[0].DueDate)
	assert.Equal(t, created, tasks[0])
}

func TestStore_CreateAssignsDistinctIDs(t *testing.T) {
	s := newTestStore()

	seen := make(map[int]bool)
	for i := 0; i < 50; i++ {
		created, err := s.Create(Fields{Title: fmt.Sprintf("Task %d", i)})
		require.NoError(t, err)
		assert.False(t, seen[created.ID], "id %d handed out twice", created.ID)
		seen[created.ID] = true
	}
	assert.Equal(t, 50, s.LastID())
}

func TestStore_IDsNeverReused(t *testing.T) {
	s := newTestStore()

	_, err := s.Create(Fields{Title: "First"})
	require.NoError(t, err)
	_, err = s.Create(Fields{Title: "Second"})
	require.NoError(t, err)

	require.NoError(t, s.Delete(1))

	third, err := s.Create(Fields{Title: "Third"})
	require.NoError(t, err)
	assert.Equal(t, 3, third.ID)

	// Deleting the newest task must not lower the counter either.
	require.NoError(t, s.Delete(3))
	fourth, err := s.Create(Fields{Title: "Fourth"})
	require.NoError(t, err)
	assert.Equal(t, 4, fourth.ID)
}

func TestStore_CreateValidation(t *testing.T) {
	tests := []struct {
		name   string
		fields Fields
	}{
		{name: "empty title", fields: Fields{Title: ""}},
		{name: "unknown category", fields: Fields{Title: "ok", Category: "Chores"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore()
			_, err := s.Create(tt.fields)
			assert.ErrorIs(t, err, ErrValidation)
			assert.Equal(t, 0, s.Len())
			assert.Equal(t, 0, s.LastID())
			assert.Equal(t, uint64(0), s.Revision())
		})
	}
}

func TestStore_TitleKeptVerbatim(t *testing.T) {
	s := newTestStore()

	padded, err := s.Create(Fields{Title: "  Buy milk  "})
	require.NoError(t, err)
	assert.Equal(t, "  Buy milk  ", padded.Title)

	blank, err := s.Create(Fields{Title: "   "})
	require.NoError(t, err)
	assert.Equal(t, "   ", blank.Title)

	updated, err := s.Update(padded.ID, Fields{Title: "\tmilk\n"})
	require.NoError(t, err)
	assert.Equal(t, "\tmilk\n", updated.Title)

	got, err := s.ByID(blank.ID)
	require.NoError(t, err)
	assert.Equal(t, "   ", got.Title)
}

func TestStore_CreateThenByID(t *testing.T) {
	s := newTestStore()
	due := time.Date(2026, 10, 25, 17, 0, 0, 0, time.UTC)

	created, err := s.Create(Fields{
		Title:       "Lab report",
		Description: strPtr("Finish and submit"),
		DueDate:     &due,
		Category:    "school",
	})
	require.NoError(t, err)

	found, err := s.ByID(created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, found)
	assert.Equal(t, CategorySchool, found.Category)
}

func TestStore_DeleteThenByID(t *testing.T) {
	s := newTestStore()
	created, err := s.Create(Fields{Title: "Temporary"})
	require.NoError(t, err)

	require.NoError(t, s.Delete(created.ID))

	_, err = s.ByID(created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, s.List())
}

func TestStore_NotFound(t *testing.T) {
	s := newTestStore()
	_, err := s.Create(Fields{Title: "Only"})
	require.NoError(t, err)
	before := s.List()

	_, err = s.Update(42, Fields{Title: "x"})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.ToggleComplete(42)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, s.Delete(42), ErrNotFound)

	_, err = s.ByID(42)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Equal(t, before, s.List())
	assert.Equal(t, uint64(1), s.Revision())
}

func TestStore_ToggleTwiceRestores(t *testing.T) {
	s := newTestStore()
	due := time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)
	original, err := s.Create(Fields{Title: "Flip me", Description: strPtr(""), DueDate: &due, Category: "Work"})
	require.NoError(t, err)

	once, err := s.ToggleComplete(original.ID)
	require.NoError(t, err)
	assert.True(t, once.IsCompleted)

	expected := original
	expected.IsCompleted = true
	assert.Equal(t, expected, once)

	twice, err := s.ToggleComplete(original.ID)
	require.NoError(t, err)
	assert.Equal(t, original, twice)
}

func TestStore_UpdatePreservesIdentity(t *testing.T) {
	s := newTestStore()
	original, err := s.Create(Fields{Title: "Draft", Description: strPtr("v1"), Category: "Work"})
	require.NoError(t, err)
	_, err = s.ToggleComplete(original.ID)
	require.NoError(t, err)

	due := time.Date(2026, 12, 24, 0, 0, 0, 0, time.UTC)
	updated, err := s.Update(original.ID, Fields{Title: "Final", DueDate: &due, Category: "Personal"})
	require.NoError(t, err)

	assert.Equal(t, original.ID, updated.ID)
	assert.Equal(t, original.CreatedAt, updated.CreatedAt)
	assert.True(t, updated.IsCompleted)
	assert.Equal(t, "Final", updated.Title)
	assert.Nil(t, updated.Description, "update replaces all fields, including absent ones")
	assert.Equal(t, CategoryPersonal, updated.Category)
	require.NotNil(t, updated.DueDate)
	assert.True(t, due.Equal(*updated.DueDate))
}

func TestStore_UpdateValidationLeavesTaskUnchanged(t *testing.T) {
	s := newTestStore()
	original, err := s.Create(Fields{Title: "Keep me"})
	require.NoError(t, err)

	_, err = s.Update(original.ID, Fields{Title: ""})
	assert.ErrorIs(t, err, ErrValidation)

	found, err := s.ByID(original.ID)
	require.NoError(t, err)
	assert.Equal(t, original, found)
}

func TestStore_ListOrdering(t *testing.T) {
	s := newTestStore()
	for i := 1; i <= 5; i++ {
		_, err := s.Create(Fields{Title: fmt.Sprintf("Task %d", i)})
		require.NoError(t, err)
	}

	tasks := s.List()
	require.Len(t, tasks, 5)
	for i := 1; i < len(tasks); i++ {
		assert.False(t, tasks[i-1].CreatedAt.Before(tasks[i].CreatedAt),
			"task %d created before task %d", tasks[i-1].ID, tasks[i].ID)
	}
	assert.Equal(t, 5, tasks[0].ID)
	assert.Equal(t, 1, tasks[4].ID)
}

func TestStore_ListTiesKeepInsertionOrder(t *testing.T) {
	fixed := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	s := NewStore(WithClock(func() time.Time { return fixed }))

	for i := 1; i <= 3; i++ {
		_, err := s.Create(Fields{Title: fmt.Sprintf("Same instant %d", i)})
		require.NoError(t, err)
	}

	tasks := s.List()
	require.Len(t, tasks, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{tasks[0].ID, tasks[1].ID, tasks[2].ID})
}

func TestStore_DerivedViews(t *testing.T) {
	s := newTestStore()
	for i := 1; i <= 4; i++ {
		_, err := s.Create(Fields{Title: fmt.Sprintf("Task %d", i)})
		require.NoError(t, err)
	}
	_, err := s.ToggleComplete(2)
	require.NoError(t, err)
	_, err = s.ToggleComplete(4)
	require.NoError(t, err)

	incomplete := s.Incomplete()
	completed := s.Completed()

	require.Len(t, incomplete, 2)
	require.Len(t, completed, 2)
	assert.Equal(t, 3, incomplete[0].ID)
	assert.Equal(t, 1, incomplete[1].ID)
	assert.Equal(t, 4, completed[0].ID)
	assert.Equal(t, 2, completed[1].ID)

	// Views are recomputed on each read.
	_, err = s.ToggleComplete(1)
	require.NoError(t, err)
	assert.Len(t, s.Incomplete(), 1)
	assert.Len(t, s.Completed(), 3)
}

func TestStore_SnapshotsAreCopies(t *testing.T) {
	s := newTestStore()
	due := time.Date(2026, 10, 30, 0, 0, 0, 0, time.UTC)
	created, err := s.Create(Fields{Title: "Original", Description: strPtr("text"), DueDate: &due})
	require.NoError(t, err)

	listed := s.List()
	listed[0].Title = "mutated"
	*listed[0].Description = "mutated"
	*listed[0].DueDate = time.Time{}

	found, err := s.ByID(created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Original", found.Title)
	assert.Equal(t, "text", *found.Description)
	assert.True(t, due.Equal(*found.DueDate))
}

func TestStore_Observer(t *testing.T) {
	var changes []Change
	s := newTestStore(WithObserver(func(c Change) {
		changes = append(changes, c)
	}))

	created, err := s.Create(Fields{Title: "Observed"})
	require.NoError(t, err)
	_, err = s.Update(created.ID, Fields{Title: "Observed again"})
	require.NoError(t, err)
	_, err = s.ToggleComplete(created.ID)
	require.NoError(t, err)
	require.NoError(t, s.Delete(created.ID))

	// Failed mutations are not published.
	require.ErrorIs(t, s.Delete(created.ID), ErrNotFound)

	require.Len(t, changes, 4)
	kinds := []ChangeKind{ChangeCreated, ChangeUpdated, ChangeToggled, ChangeDeleted}
	for i, c := range changes {
		assert.Equal(t, kinds[i], c.Kind)
		assert.Equal(t, uint64(i+1), c.Revision)
		assert.Equal(t, created.ID, c.Task.ID)
		assert.Equal(t, 1, c.LastID)
	}
	assert.True(t, changes[2].Task.IsCompleted)
}

func TestStore_Load(t *testing.T) {
	base := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	s := newTestStore()

	s.Load(Snapshot{
		LastID: 9,
		Tasks: []Task{
			{ID: 4, Title: "older", Category: CategoryWork, CreatedAt: base},
			{ID: 7, Title: "newer", Category: CategorySchool, CreatedAt: base.Add(time.Hour), IsCompleted: true},
		},
	})

	tasks := s.List()
	require.Len(t, tasks, 2)
	assert.Equal(t, 7, tasks[0].ID)
	assert.Equal(t, 4, tasks[1].ID)
	assert.Equal(t, 9, s.LastID())

	created, err := s.Create(Fields{Title: "after load"})
	require.NoError(t, err)
	assert.Equal(t, 10, created.ID)
}

func TestStore_LoadCounterFromIDs(t *testing.T) {
	s := newTestStore()
	s.Load(Snapshot{Tasks: []Task{{ID: 12, Title: "legacy", Category: CategoryOther}}})

	assert.Equal(t, 12, s.LastID())
	created, err := s.Create(Fields{Title: "next"})
	require.NoError(t, err)
	assert.Equal(t, 13, created.ID)
}

func TestStore_Import(t *testing.T) {
	var changes []Change
	s := newTestStore(WithObserver(func(c Change) {
		changes = append(changes, c)
	}))

	old := time.Date(2026, 10, 15, 8, 0, 0, 0, time.UTC)
	imported, err := s.Import(Fields{Title: " Task 2 ", Category: "personal"}, old, true)
	require.NoError(t, err)
	assert.Equal(t, 1, imported.ID)
	assert.Equal(t, " Task 2 ", imported.Title)
	assert.True(t, imported.IsCompleted)
	assert.True(t, imported.CreatedAt.Equal(old))

	_, err = s.Import(Fields{Title: ""}, old, false)
	require.ErrorIs(t, err, ErrValidation)

	created, err := s.Create(Fields{Title: "fresh"})
	require.NoError(t, err)
	assert.Equal(t, 2, created.ID)

	// The imported task is older, so it lists last.
	tasks := s.List()
	require.Len(t, tasks, 2)
	assert.Equal(t, 2, tasks[0].ID)
	assert.Equal(t, 1, tasks[1].ID)

	require.Len(t, changes, 2)
	assert.Equal(t, ChangeCreated, changes[0].Kind)
	assert.True(t, changes[0].Task.IsCompleted)
}
