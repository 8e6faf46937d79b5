// Package debounce provides a trailing-edge debounced value cell.
//
// Every Set cancels the pending commit and schedules a new one after the
// delay, so at most one commit is pending and only the value that stayed
// put for a full window is committed. There is no leading edge and no
// maximum wait.
package debounce

import (
	"slices"
	"sync"
	"time"

	"k8s.io/utils/clock"
)

// DefaultDelay is used when New is given a non-positive delay.
const DefaultDelay = 300 * time.Millisecond

// Option configures a Value.
type Option func(*settings)

type settings struct {
	clock clock.WithDelayedExecution
}

// WithClock replaces the real clock, typically with a fake one in tests.
func WithClock(c clock.WithDelayedExecution) Option {
	return func(s *settings) {
		s.clock = c
	}
}

// Value holds the most recently committed value of a debounced source.
type Value[T any] struct {
	mu        sync.Mutex
	clock     clock.WithDelayedExecution
	delay     time.Duration
	current   T
	pending   *T
	timer     clock.Timer
	gen       uint64
	stopped   bool
	listeners []func(T)
	running   int
	idle      *sync.Cond
}

// New returns a Value whose committed value starts as initial.
func New[T any](initial T, delay time.Duration, opts ...Option) *Value[T] {
	s := settings{clock: clock.RealClock{}}
	for _, opt := range opts {
		opt(&s)
	}
	if delay <= 0 {
		delay = DefaultDelay
	}
	v := &Value[T]{
		clock:   s.clock,
		delay:   delay,
		current: initial,
	}
	v.idle = sync.NewCond(&v.mu)
	return v
}

// Get returns the committed value.
func (v *Value[T]) Get() T {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.current
}

// Delay returns the debounce window.
func (v *Value[T]) Delay() time.Duration {
	return v.delay
}

// OnCommit registers fn to run after each commit with the committed value.
// Listeners run outside the lock, on the timer's goroutine.
func (v *Value[T]) OnCommit(fn func(T)) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.listeners = append(v.listeners, fn)
}

// Set records a new source value. Any pending commit is discarded and a new
// one is scheduled after the delay. Set after Stop is ignored.
func (v *Value[T]) Set(next T) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.stopped {
		return
	}
	if v.timer != nil {
		v.timer.Stop()
	}
	v.gen++
	gen := v.gen
	val := next
	v.pending = &val
	v.timer = v.clock.AfterFunc(v.delay, func() {
		v.commit(gen)
	})
}

// Pending reports whether a commit is scheduled.
func (v *Value[T]) Pending() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.pending != nil
}

// Flush commits the pending value immediately, if any.
func (v *Value[T]) Flush() {
	v.mu.Lock()
	if v.timer != nil {
		v.timer.Stop()
		v.timer = nil
	}
	gen := v.gen
	v.mu.Unlock()
	v.commit(gen)
}

// Stop cancels any pending commit and ignores later Sets. The owner calls
// it on teardown so no commit lands after the owner is gone.
func (v *Value[T]) Stop() {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.stopped = true
	v.pending = nil
	v.gen++
	if v.timer != nil {
		v.timer.Stop()
		v.timer = nil
	}
}

// commit applies the pending value if it still belongs to generation gen.
// A timer that fired while a newer Set held the lock finds a newer
// generation and does nothing.
func (v *Value[T]) commit(gen uint64) {
	v.mu.Lock()
	if gen != v.gen || v.pending == nil {
		v.mu.Unlock()
		return
	}
	v.current = *v.pending
	v.pending = nil
	v.timer = nil
	committed := v.current
	listeners := slices.Clone(v.listeners)
	v.running++
	v.mu.Unlock()

	defer func() {
		v.mu.Lock()
		v.running--
		if v.running == 0 {
			v.idle.Broadcast()
		}
		v.mu.Unlock()
	}()
	for _, fn := range listeners {
		fn(committed)
	}
}

// Wait blocks until listeners of commits already taken have returned. It
// may run concurrently with new commits. It must not be called from a
// listener.
func (v *Value[T]) Wait() {
	v.mu.Lock()
	defer v.mu.Unlock()
	for v.running > 0 {
		v.idle.Wait()
	}
}
