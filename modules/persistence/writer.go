package persistence

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	domain "github.com/example/quicktasks/domain/task"
)

// ErrWriterClosed is returned when enqueueing after Stop.
var ErrWriterClosed = errors.New("writer closed")

const defaultWriteTimeout = 5 * time.Second

type opKind int

const (
	opSave opKind = iota
	opRemove
)

// writeOp is one queued backend write.
type writeOp struct {
	kind     opKind
	task     domain.Task
	taskID   int
	revision uint64
}

// saveOp builds an upsert of t produced at the given store revision.
func saveOp(t domain.Task, revision uint64) writeOp {
	return writeOp{kind: opSave, task: t.Clone(), taskID: t.ID, revision: revision}
}

// removeOp builds a delete of id produced at the given store revision.
func removeOp(id int, revision uint64) writeOp {
	return writeOp{kind: opRemove, taskID: id, revision: revision}
}

// WriterStats is a snapshot of writer counters.
type WriterStats struct {
	Applied uint64 `json:"applied"`
	Skipped uint64 `json:"skipped"`
	Failed  uint64 `json:"failed"`
	Pending int    `json:"pending"`
}

// Writer applies backend writes one at a time, in arrival order.
//
// Each write carries the store revision that produced it. A write older than
// the last one applied for the same task id is dropped, so a late write can
// never overwrite newer state.
type Writer struct {
	backend Backend
	queue   chan writeOp
	done    chan struct{}
	timeout time.Duration

	// applied is only touched by the run goroutine.
	applied map[int]uint64

	appliedCount atomic.Uint64
	skippedCount atomic.Uint64
	failedCount  atomic.Uint64

	mu      sync.RWMutex
	started bool
	closed  bool
}

// NewWriter creates a writer with a queue of the given capacity.
func NewWriter(backend Backend, queueSize int) *Writer {
	if queueSize <= 0 {
		queueSize = 1
	}
	return &Writer{
		backend: backend,
		queue:   make(chan writeOp, queueSize),
		done:    make(chan struct{}),
		timeout: defaultWriteTimeout,
		applied: make(map[int]uint64),
	}
}

// Start launches the writer goroutine.
func (w *Writer) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.started {
		return fmt.Errorf("writer is already running")
	}
	if w.closed {
		return ErrWriterClosed
	}
	w.started = true

	go w.run()
	return nil
}

// Enqueue queues a write. It blocks only while the queue is full.
func (w *Writer) Enqueue(ctx context.Context, op writeOp) error {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if w.closed {
		return ErrWriterClosed
	}

	select {
	case w.queue <- op:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop closes the queue and waits for pending writes to drain.
func (w *Writer) Stop(ctx context.Context) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.queue)
	started := w.started
	w.mu.Unlock()

	if !started {
		return nil
	}

	select {
	case <-w.done:
		log.Println("[persistence] Write queue drained")
		return nil
	case <-ctx.Done():
		log.Printf("[persistence] Timeout waiting for write queue, %d writes pending", len(w.queue))
		return ctx.Err()
	}
}

// Stats returns the current writer counters.
func (w *Writer) Stats() WriterStats {
	return WriterStats{
		Applied: w.appliedCount.Load(),
		Skipped: w.skippedCount.Load(),
		Failed:  w.failedCount.Load(),
		Pending: len(w.queue),
	}
}

func (w *Writer) run() {
	defer close(w.done)
	for op := range w.queue {
		w.apply(op)
	}
}

func (w *Writer) apply(op writeOp) {
	if last, seen := w.applied[op.taskID]; seen && op.revision <= last {
		w.skippedCount.Add(1)
		log.Printf("[persistence] Skipping stale write for task %d (revision %d <= %d)", op.taskID, op.revision, last)
		return
	}
	// Recorded even when the backend fails: the newer intent supersedes
	// anything older still in flight.
	w.applied[op.taskID] = op.revision

	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()

	var err error
	switch op.kind {
	case opSave:
		err = w.backend.Save(ctx, op.task)
	case opRemove:
		err = w.backend.Remove(ctx, op.taskID)
	}

	if err != nil {
		w.failedCount.Add(1)
		log.Printf("[persistence] Error writing task %d to %s: %v", op.taskID, w.backend.Name(), err)
		return
	}
	w.appliedCount.Add(1)
}
