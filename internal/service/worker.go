package service

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/ZuhairGhias/joycam/internal/debug"
)

// State is the lifecycle of a Worker. Transitions are forward-only:
// Running -> Draining -> Terminated. Failed is reached from Running when
// the failure policy is FailFast and a request errors; it is terminal and
// survives Close so callers can still see why the worker parked.
type State int32

const (
	StateRunning State = iota
	StateDraining
	StateTerminated
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateDraining:
		return "draining"
	case StateTerminated:
		return "terminated"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// OverloadPolicy decides what Submit does when the queue is full.
type OverloadPolicy int

const (
	// Block makes the producer wait for queue space. Nothing is dropped.
	Block OverloadPolicy = iota
	// DropOldest evicts the oldest queued request (logged and counted)
	// to make room for the new one.
	DropOldest
)

// FailurePolicy decides what happens when a request's process fails.
type FailurePolicy int

const (
	// Continue logs the error, drops the request and keeps consuming.
	Continue FailurePolicy = iota
	// FailFast parks the worker in the Failed state on the first error;
	// remaining and future requests are drained and dropped.
	FailFast
)

// Options configures a Worker.
type Options struct {
	Name          string
	QueueCapacity int // defaults to 32
	Overload      OverloadPolicy
	Failure       FailurePolicy
}

// Worker is a generic single-consumer asynchronous queue executor.
// Constructing one starts exactly one consumer goroutine draining a FIFO
// bounded channel. Submit enqueues fire-and-forget; Close drains every
// prior submission, runs the shutdown hook, and joins the consumer.
//
// A process error or panic never kills the consumer silently: it is caught
// at the worker boundary, logged, and handled per the failure policy.
type Worker[T any] struct {
	name     string
	queue    chan T
	process  func(T) error
	shutdown func()
	overload OverloadPolicy
	failure  FailurePolicy

	done    chan struct{}
	state   atomic.Int32
	dropped atomic.Uint64

	mu     sync.RWMutex // submit (R) vs close (W)
	closed bool

	errMu sync.Mutex
	err   error
}

// NewWorker starts a worker. process runs each request to completion on the
// consumer goroutine; shutdown (optional) runs once after the queue drains.
func NewWorker[T any](opts Options, process func(T) error, shutdown func()) *Worker[T] {
	capacity := opts.QueueCapacity
	if capacity <= 0 {
		capacity = 32
	}
	w := &Worker[T]{
		name:     opts.Name,
		queue:    make(chan T, capacity),
		process:  process,
		shutdown: shutdown,
		overload: opts.Overload,
		failure:  opts.Failure,
		done:     make(chan struct{}),
	}
	debug.Verbose("Service %s: starting (queue=%d)", w.name, capacity)
	go w.run()
	return w
}

// Submit enqueues a request without waiting for it to run. Under the Block
// policy a full queue makes the caller wait for space; under DropOldest the
// oldest queued request is evicted instead. Submissions after Close are
// dropped with a log line.
func (w *Worker[T]) Submit(req T) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		debug.Errorf("Service %s: submit after close, request dropped", w.name)
		return
	}

	if w.overload == Block {
		w.queue <- req
		return
	}

	for {
		select {
		case w.queue <- req:
			return
		default:
		}
		// Queue full: evict the head to make room.
		select {
		case <-w.queue:
			n := w.dropped.Add(1)
			debug.Errorf("Service %s: queue full, dropped oldest request (%d total)", w.name, n)
		default:
		}
	}
}

// Close stops accepting requests and blocks until the consumer has drained
// every prior submission, invoked the shutdown hook, and exited. Safe to
// call more than once.
func (w *Worker[T]) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		<-w.done
		return
	}
	w.closed = true
	close(w.queue) // the closed channel is the termination sentinel
	w.mu.Unlock()
	<-w.done
}

// State returns the worker's lifecycle state.
func (w *Worker[T]) State() State {
	return State(w.state.Load())
}

// Err returns the error that parked a FailFast worker, or the most recent
// process error under Continue. Nil if no request has failed.
func (w *Worker[T]) Err() error {
	w.errMu.Lock()
	defer w.errMu.Unlock()
	return w.err
}

// Dropped returns how many requests the DropOldest policy has evicted.
func (w *Worker[T]) Dropped() uint64 {
	return w.dropped.Load()
}

func (w *Worker[T]) run() {
	defer close(w.done)

	for req := range w.queue {
		if w.State() == StateFailed {
			// Drain and drop; the failure is already logged and observable.
			continue
		}
		w.invoke(req)
	}

	failed := w.State() == StateFailed
	if !failed {
		w.state.Store(int32(StateDraining))
	}
	if w.shutdown != nil {
		w.shutdown()
	}
	if !failed {
		w.state.Store(int32(StateTerminated))
	}
	debug.Verbose("Service %s: terminated", w.name)
}

// invoke runs process for one request, catching errors and panics at the
// worker boundary so a bad request can never stall the queue silently.
func (w *Worker[T]) invoke(req T) {
	var err error
	func() {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic: %v", r)
			}
		}()
		err = w.process(req)
	}()
	if err == nil {
		return
	}

	w.errMu.Lock()
	w.err = err
	w.errMu.Unlock()

	if w.failure == FailFast {
		debug.Errorf("Service %s: request failed, worker parked: %v", w.name, err)
		w.state.Store(int32(StateFailed))
		return
	}
	debug.Errorf("Service %s: request failed, dropped: %v", w.name, err)
}
