package director

import (
	"context"
	"sync"
)

// Sequencer applies queued items one at a time in append order.
//
// It is Idle when the queue is empty or Run is not consuming, and Processing
// while apply runs for the head item. The head is removed only after apply
// returns, so a paced apply keeps its item at the head for the full delay.
//
// Invariant: at most one apply is in flight; items are applied in exactly
// the order they were appended.
type Sequencer[T any] struct {
	apply func(ctx context.Context, item T)

	mu         sync.Mutex
	queue      []T
	processing bool
	wake       chan struct{}
}

// NewSequencer creates an idle sequencer.
//
// Precondition: apply must be non-nil.
func NewSequencer[T any](apply func(ctx context.Context, item T)) *Sequencer[T] {
	if apply == nil {
		panic("director.NewSequencer: apply must not be nil")
	}
	return &Sequencer[T]{
		apply: apply,
		wake:  make(chan struct{}, 1),
	}
}

func (s *Sequencer[T]) signal() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Append adds items to the tail. Safe to call at any time, including from apply.
func (s *Sequencer[T]) Append(items ...T) {
	if len(items) == 0 {
		return
	}
	s.mu.Lock()
	s.queue = append(s.queue, items...)
	s.mu.Unlock()
	s.signal()
}

// Replace discards every pending item and queues items instead.
//
// Postcondition: an item currently being applied stays at the head and is
// removed when its apply completes.
func (s *Sequencer[T]) Replace(items []T) {
	s.mu.Lock()
	next := make([]T, 0, len(items)+1)
	if s.processing && len(s.queue) > 0 {
		next = append(next, s.queue[0])
	}
	s.queue = append(next, items...)
	s.mu.Unlock()
	s.signal()
}

// Len returns the number of queued items, including one being applied.
func (s *Sequencer[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// Processing reports whether an apply is in flight.
func (s *Sequencer[T]) Processing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.processing
}

// Idle reports whether the queue is empty and nothing is being applied.
func (s *Sequencer[T]) Idle() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.processing && len(s.queue) == 0
}

// next transitions Idle to Processing when an item is available.
func (s *Sequencer[T]) next() (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var zero T
	if s.processing || len(s.queue) == 0 {
		return zero, false
	}
	s.processing = true
	return s.queue[0], true
}

// done removes the applied head and transitions back to Idle.
func (s *Sequencer[T]) done() {
	s.mu.Lock()
	defer s.mu.Unlock()
	var zero T
	s.queue[0] = zero
	s.queue = s.queue[1:]
	s.processing = false
}

// Run consumes the queue until ctx is cancelled. Only one Run may be active.
//
// Postcondition: returns ctx.Err() after the in-flight apply, if any, returns.
func (s *Sequencer[T]) Run(ctx context.Context) error {
	for {
		item, ok := s.next()
		if !ok {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-s.wake:
				continue
			}
		}
		s.apply(ctx, item)
		s.done()
		if err := ctx.Err(); err != nil {
			return err
		}
	}
}
