package stencil

import (
	"errors"
	"sync"
)

// ErrWorkerClosed is returned when tasks are submitted to a closed Worker.
var ErrWorkerClosed = errors.New("stencil: worker is closed")

// Priority is a scheduling hint for the stream backing a Worker.
// Backends translate it into their own stream or queue priorities.
type Priority int

const (
	// PriorityNormal is the default scheduling priority.
	PriorityNormal Priority = iota

	// PriorityHigh requests preferential scheduling. Boundary slabs are
	// launched with high priority so they can overtake bulk work.
	PriorityHigh
)

// WorkerConfig configures a Worker at creation.
type WorkerConfig struct {
	// Priority is the scheduling hint for the worker's backing stream.
	Priority Priority

	// Setup runs exactly once on the worker goroutine before any task.
	// A setup failure poisons the worker: queued tasks are skipped and the
	// error is reported by Wait.
	Setup func() error
}

// Worker is an independent sequential task-execution agent. Tasks submitted
// to the same Worker execute strictly FIFO on a private goroutine. There is
// no retry and no cancellation: a submitted task either runs to completion
// or its error surfaces at the next Wait, after which remaining queued tasks
// are skipped.
//
// Worker is safe for concurrent use.
type Worker struct {
	mu      sync.Mutex
	cond    *sync.Cond
	tasks   chan func() error
	quit    chan struct{}
	done    chan struct{}
	pending int
	err     error // first setup or task error, sticky
	closed  bool

	priority Priority
}

// taskQueueDepth is the per-worker queue buffer. Submit blocks when the
// queue is full, preserving FIFO order.
const taskQueueDepth = 16

// NewWorker creates a Worker and starts its goroutine.
func NewWorker(cfg WorkerConfig) *Worker {
	w := &Worker{
		tasks:    make(chan func() error, taskQueueDepth),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
		priority: cfg.Priority,
	}
	w.cond = sync.NewCond(&w.mu)
	if cfg.Setup != nil {
		// Counted as a pending unit so Wait observes setup completion.
		w.pending = 1
	}
	go w.run(cfg.Setup)
	return w
}

// Priority returns the worker's scheduling hint.
func (w *Worker) Priority() Priority { return w.priority }

// Submit enqueues a task for sequential execution.
// Returns ErrWorkerClosed if the worker has been closed.
func (w *Worker) Submit(task func() error) error {
	if task == nil {
		return nil
	}
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return ErrWorkerClosed
	}
	w.pending++
	w.mu.Unlock()

	w.tasks <- task
	return nil
}

// Wait blocks until every submitted task (and the setup action) has
// completed, then returns the first error encountered, if any. The error is
// sticky: once a task fails, Wait keeps reporting that failure.
func (w *Worker) Wait() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	for w.pending > 0 {
		w.cond.Wait()
	}
	return w.err
}

// Close stops the worker after draining already-submitted tasks.
// Close is idempotent and waits for the goroutine to exit.
func (w *Worker) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		<-w.done
		return
	}
	w.closed = true
	w.mu.Unlock()

	close(w.quit)
	<-w.done
}

func (w *Worker) run(setup func() error) {
	defer close(w.done)

	if setup != nil {
		err := setup()
		w.finish(err)
	}

	for {
		select {
		case task := <-w.tasks:
			w.execute(task)
		case <-w.quit:
			// Drain tasks submitted before Close.
			for {
				select {
				case task := <-w.tasks:
					w.execute(task)
				default:
					return
				}
			}
		}
	}
}

// execute runs one task unless the worker is already poisoned.
func (w *Worker) execute(task func() error) {
	w.mu.Lock()
	poisoned := w.err != nil
	w.mu.Unlock()

	var err error
	if !poisoned {
		err = task()
	}
	w.finish(err)
}

// finish marks one pending unit complete and records the first error.
func (w *Worker) finish(err error) {
	w.mu.Lock()
	if err != nil && w.err == nil {
		w.err = err
	}
	w.pending--
	w.cond.Broadcast()
	w.mu.Unlock()
}
