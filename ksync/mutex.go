package ksync

import (
	"sync/atomic"

	"rustos/kerrors"
	"rustos/task"
)

// Mutex guards a value of type T, released and reacquired only by the
// task that holds it. Ported from Mutex::acquire/release in
// original_source/src/kernel/processes.rs, layered on an internal
// Semaphore exactly as spec.md describes.
//
// There is no priority inheritance: a lower-priority holder can delay a
// higher-priority waiter for as long as it holds the mutex. Callers must
// assign priorities with that in mind.
//
// spec.md describes acquire as a single check-then-maybe-block step
// ("if currently held, block ... then record self as holder"), which
// read literally races a task waking from a block against a brand new,
// not-yet-blocked acquirer: both could observe "not held" and record
// themselves as holder. This port closes that race with a
// compare-and-swap retry loop around the same Semaphore-blocking step —
// same external behavior, no double-holder window. See DESIGN.md.
type Mutex[T any] struct {
	sem    *Semaphore
	holder atomic.Pointer[task.Task]
	value  T
}

// NewMutex returns a Mutex already holding initial, unlocked.
func NewMutex[T any](sched task.Scheduler, initial T) *Mutex[T] {
	return &Mutex[T]{sem: NewSemaphore(sched), value: initial}
}

// Acquire blocks self until the mutex is free, then returns a pointer to
// the guarded value. Callers must not retain the pointer past the
// matching Release.
func (m *Mutex[T]) Acquire(self *task.Task) *T {
	for !m.holder.CompareAndSwap(nil, self) {
		m.sem.Acquire(self)
	}
	return &m.value
}

// Release gives up the mutex and wakes the highest-priority waiter, if
// any. Returns kerrors.ErrNotHolder if self does not currently hold it.
func (m *Mutex[T]) Release(self *task.Task) error {
	if m.holder.Load() != self {
		return kerrors.ErrNotHolder
	}
	m.holder.Store(nil)
	m.sem.Release()
	return nil
}
