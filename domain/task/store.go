package task

import (
	"slices"
	"sort"
	"sync"
	"time"
)

// ChangeKind identifies the mutation that produced a Change.
type ChangeKind string

const (
	ChangeCreated ChangeKind = "created"
	ChangeUpdated ChangeKind = "updated"
	ChangeToggled ChangeKind = "toggled"
	ChangeDeleted ChangeKind = "deleted"
)

// Change describes one applied mutation. For deletions Task holds the
// removed record.
type Change struct {
	Kind     ChangeKind
	Task     Task
	Revision uint64
	LastID   int
}

// Observer receives every applied change, in mutation order.
type Observer func(Change)

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithClock sets the time source used for CreatedAt.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		s.now = now
	}
}

// WithObserver registers the observer notified after each mutation.
func WithObserver(fn Observer) StoreOption {
	return func(s *Store) {
		s.observer = fn
	}
}

// Store is the authoritative in-memory task collection.
//
// Tasks are kept in insertion order; List sorts a copy by CreatedAt
// descending with a stable sort so ties keep insertion order.
type Store struct {
	tasks    []Task
	lastID   int
	revision uint64
	now      func() time.Time
	observer Observer
	mu       sync.RWMutex
}

// NewStore creates an empty task store.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		tasks: make([]Task, 0),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load replaces the collection with a persisted snapshot. The id counter
// resumes from the larger of the snapshot's high-water mark and its
// largest id.
func (s *Store) Load(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks := make([]Task, 0, len(snap.Tasks))
	lastID := snap.LastID
	for _, t := range snap.Tasks {
		tasks = append(tasks, t.Clone())
		if t.ID > lastID {
			lastID = t.ID
		}
	}
	// Reconstruct insertion order from creation time, then id.
	sort.SliceStable(tasks, func(i, j int) bool {
		if tasks[i].CreatedAt.Equal(tasks[j].CreatedAt) {
			return tasks[i].ID < tasks[j].ID
		}
		return tasks[i].CreatedAt.Before(tasks[j].CreatedAt)
	})

	s.tasks = tasks
	s.lastID = lastID
}

// Create validates fields and appends a new task with the next id.
func (s *Store) Create(f Fields) (Task, error) {
	f, category, err := f.normalize()
	if err != nil {
		return Task{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastID++
	t := Task{
		ID:          s.lastID,
		Title:       f.Title,
		Description: f.Description,
		Category:    category,
		DueDate:     f.DueDate,
		IsCompleted: false,
		CreatedAt:   s.now(),
	}.Clone()
	s.tasks = append(s.tasks, t)

	s.publish(ChangeCreated, t)
	return t.Clone(), nil
}

// Import appends a task with a caller-supplied creation time and completion
// state. It takes the next id like Create and publishes a created change.
func (s *Store) Import(f Fields, createdAt time.Time, completed bool) (Task, error) {
	f, category, err := f.normalize()
	if err != nil {
		return Task{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastID++
	t := Task{
		ID:          s.lastID,
		Title:       f.Title,
		Description: f.Description,
		Category:    category,
		DueDate:     f.DueDate,
		IsCompleted: completed,
		CreatedAt:   createdAt,
	}.Clone()
	s.tasks = append(s.tasks, t)

	s.publish(ChangeCreated, t)
	return t.Clone(), nil
}

// Update replaces the editable fields of a task. ID, CreatedAt and
// IsCompleted are carried over from the stored record.
func (s *Store) Update(id int, f Fields) (Task, error) {
	f, category, err := f.normalize()
	if err != nil {
		return Task{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return Task{}, ErrNotFound
	}

	current := s.tasks[i]
	updated := Task{
		ID:          current.ID,
		Title:       f.Title,
		Description: f.Description,
		Category:    category,
		DueDate:     f.DueDate,
		IsCompleted: current.IsCompleted,
		CreatedAt:   current.CreatedAt,
	}.Clone()
	s.tasks[i] = updated

	s.publish(ChangeUpdated, updated)
	return updated.Clone(), nil
}

// ToggleComplete flips the completion flag of a task.
func (s *Store) ToggleComplete(id int) (Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return Task{}, ErrNotFound
	}

	toggled := s.tasks[i].Clone()
	toggled.IsCompleted = !toggled.IsCompleted
	s.tasks[i] = toggled

	s.publish(ChangeToggled, toggled)
	return toggled.Clone(), nil
}

// Delete removes a task. Its id is never handed out again.
func (s *Store) Delete(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return ErrNotFound
	}

	removed := s.tasks[i]
	s.tasks = slices.Delete(s.tasks, i, i+1)

	s.publish(ChangeDeleted, removed)
	return nil
}

// List returns all tasks, most recently created first.
func (s *Store) List() []Task {
	return s.filter(func(Task) bool { return true })
}

// Incomplete returns the tasks not yet completed, ordered like List.
func (s *Store) Incomplete() []Task {
	return s.filter(func(t Task) bool { return !t.IsCompleted })
}

// Completed returns the completed tasks, ordered like List.
func (s *Store) Completed() []Task {
	return s.filter(func(t Task) bool { return t.IsCompleted })
}

// ByID returns a copy of the task with the given id.
func (s *Store) ByID(id int) (Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(id)
	if i < 0 {
		return Task{}, ErrNotFound
	}
	return s.tasks[i].Clone(), nil
}

// Len returns the number of live tasks.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tasks)
}

// LastID returns the last id handed out.
func (s *Store) LastID() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastID
}

// Revision returns the number of mutations applied since the store was created.
func (s *Store) Revision() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revision
}

func (s *Store) filter(keep func(Task) bool) []Task {
	s.mu.RLock()
	result := make([]Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		if keep(t) {
			result = append(result, t.Clone())
		}
	}
	s.mu.RUnlock()

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result
}

func (s *Store) indexOf(id int) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// publish must be called with the write lock held.
func (s *Store) publish(kind ChangeKind, t Task) {
	s.revision++
	if s.observer == nil {
		return
	}
	s.observer(Change{
		Kind:     kind,
		Task:     t.Clone(),
		Revision: s.revision,
		LastID:   s.lastID,
	})
}
