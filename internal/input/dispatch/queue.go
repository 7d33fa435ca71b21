package dispatch

import (
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
)

// PanicHandler is called when the consumer panics. The queue keeps draining
// afterwards.
type PanicHandler func(item any, recovered any, stack []byte)

// Queue delivers pushed items to a consumer one at a time, in push order.
//
// Push never blocks. At most one drain goroutine runs at a time; it starts
// on the first push into an idle queue and exits when the queue is empty.
// Items pushed by the consumer itself are queued behind the current item.
type Queue[T any] struct {
	consume      func(T)
	panicHandler PanicHandler

	mu       sync.Mutex
	items    []T
	draining bool
	closed   bool
	idle     chan struct{} // closed when a drain finishes, nil if none ran

	pushed    atomic.Uint64
	processed atomic.Uint64
	panicked  atomic.Uint64
}

// QueueOption configures a Queue.
type QueueOption func(*queueOptions)

type queueOptions struct {
	panicHandler PanicHandler
}

// WithPanicHandler sets the handler for consumer panics.
func WithPanicHandler(h PanicHandler) QueueOption {
	return func(o *queueOptions) {
		o.panicHandler = h
	}
}

// WithLogger logs consumer panics to logger.
func WithLogger(logger *slog.Logger) QueueOption {
	return WithPanicHandler(logPanic(logger))
}

func logPanic(logger *slog.Logger) PanicHandler {
	return func(item any, recovered any, stack []byte) {
		logger.Error("queue consumer panicked", "item", item, "panic", recovered, "stack", string(stack))
	}
}

// NewQueue creates a queue that delivers items to consume.
func NewQueue[T any](consume func(T), opts ...QueueOption) *Queue[T] {
	o := queueOptions{panicHandler: logPanic(slog.Default())}
	for _, opt := range opts {
		opt(&o)
	}
	return &Queue[T]{
		consume:      consume,
		panicHandler: o.panicHandler,
	}
}

// Push appends item and starts draining if the queue is idle. It reports
// false if the queue is closed.
func (q *Queue[T]) Push(item T) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}
	q.items = append(q.items, item)
	q.pushed.Add(1)
	if !q.draining {
		q.draining = true
		q.idle = make(chan struct{})
		go q.drain(q.idle)
	}
	return true
}

// Len returns the number of items waiting behind the one being consumed.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Clear drops every waiting item. The item being consumed is unaffected.
func (q *Queue[T]) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = nil
}

// Close drops waiting items and rejects further pushes.
func (q *Queue[T]) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	q.items = nil
}

// Idle returns a channel closed once the current drain finishes. The
// channel is already closed when nothing is draining.
func (q *Queue[T]) Idle() <-chan struct{} {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.idle == nil {
		done := make(chan struct{})
		close(done)
		return done
	}
	return q.idle
}

// Stats reports queue counters.
func (q *Queue[T]) Stats() QueueStats {
	return QueueStats{
		Pushed:    q.pushed.Load(),
		Processed: q.processed.Load(),
		Panicked:  q.panicked.Load(),
	}
}

// QueueStats holds queue counters.
type QueueStats struct {
	Pushed    uint64
	Processed uint64
	Panicked  uint64
}

func (q *Queue[T]) drain(idle chan struct{}) {
	defer close(idle)
	for {
		q.mu.Lock()
		if len(q.items) == 0 {
			q.draining = false
			q.mu.Unlock()
			return
		}
		item := q.items[0]
		var zero T
		q.items[0] = zero
		q.items = q.items[1:]
		q.mu.Unlock()

		q.run(item)
	}
}

func (q *Queue[T]) run(item T) {
	defer func() {
		q.processed.Add(1)
		if r := recover(); r != nil {
			q.panicked.Add(1)
			if q.panicHandler != nil {
				func() {
					defer func() { _ = recover() }()
					q.panicHandler(item, r, debug.Stack())
				}()
			}
		}
	}()
	q.consume(item)
}
