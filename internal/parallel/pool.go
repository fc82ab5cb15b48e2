// Package parallel provides the goroutine pool the CPU backend dispatches
// kernel chunks on.
package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Pool is a fixed set of worker goroutines pulling from a shared queue.
//
// Kernel chunks are uniform in cost, so a single shared queue balances load
// well enough; per-worker queues with stealing would buy nothing here.
//
// Thread safety: Pool is safe for concurrent use.
type Pool struct {
	workers int
	queue   chan func()
	done    chan struct{}
	wg      sync.WaitGroup
	running atomic.Bool
}

// NewPool creates a pool with the given number of workers.
// If workers is 0 or negative, GOMAXPROCS is used.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	p := &Pool{
		workers: workers,
		queue:   make(chan func(), workers*4),
		done:    make(chan struct{}),
	}
	p.running.Store(true)

	p.wg.Add(workers)
	for range workers {
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for {
		select {
		case <-p.done:
			// Drain before exiting so Close never strands queued work.
			for {
				select {
				case work := <-p.queue:
					if work != nil {
						work()
					}
				default:
					return
				}
			}
		case work := <-p.queue:
			if work != nil {
				work()
			}
		}
	}
}

// ExecuteAll submits every item and blocks until all have run.
// A closed pool runs nothing.
func (p *Pool) ExecuteAll(work []func()) {
	if len(work) == 0 || !p.running.Load() {
		return
	}

	var wg sync.WaitGroup
	wg.Add(len(work))
	for _, fn := range work {
		fn := fn
		wrapped := func() {
			defer wg.Done()
			fn()
		}
		select {
		case p.queue <- wrapped:
		case <-p.done:
			wg.Done()
		}
	}
	wg.Wait()
}

// Submit enqueues a single item without waiting for it.
// A closed pool drops the item.
func (p *Pool) Submit(fn func()) {
	if fn == nil || !p.running.Load() {
		return
	}
	select {
	case p.queue <- fn:
	case <-p.done:
	}
}

// Close stops the pool after draining queued work.
// Close is safe to call multiple times.
func (p *Pool) Close() {
	if !p.running.CompareAndSwap(true, false) {
		return
	}
	close(p.done)
	p.wg.Wait()
}

// Workers returns the worker count.
func (p *Pool) Workers() int { return p.workers }

// IsRunning reports whether the pool still accepts work.
func (p *Pool) IsRunning() bool { return p.running.Load() }

// Chunk is a half-open index range [Begin, End).
type Chunk struct {
	Begin, End int
}

// Chunks splits [0, n) into at most parts contiguous ranges of near-equal
// length. It returns fewer ranges when n < parts, and none when n <= 0.
func Chunks(n, parts int) []Chunk {
	if n <= 0 || parts <= 0 {
		return nil
	}
	if parts > n {
		parts = n
	}
	out := make([]Chunk, 0, parts)
	size := n / parts
	rem := n % parts
	begin := 0
	for i := 0; i < parts; i++ {
		end := begin + size
		if i < rem {
			end++
		}
		out = append(out, Chunk{Begin: begin, End: end})
		begin = end
	}
	return out
}
