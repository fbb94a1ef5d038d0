// Package stream implements the kernel's data-stream primitives: a
// fixed-capacity ring-buffer Queue and a batch-oriented, trigger-gated
// StreamBuffer, both built on two internal ksync.Semaphores (one for
// "waiting for space," one for "waiting for data") rather than a host
// condition variable.
//
// Ported from original_source/src/kernel/queues.rs's Queue/StreamBuffer.
// Capacity is a runtime constructor argument rather than the original's
// const-generic N: Go has no value-parameterized generics, so the fixed
// backing array becomes a slice sized once at construction and never
// reallocated afterward. See SPEC_FULL.md §4.6 / 4.7.
package stream

import (
	"rustos/critical"
	"rustos/kerrors"
	"rustos/ksync"
	"rustos/ktime"
	"rustos/task"
)

// Queue is a ring buffer of capacity N elements of T, with two semaphores
// gating blocking push/pop the way spec.md's Queue<T, N> describes.
//
// Each Queue owns its own critical.Domain rather than sharing the
// kernel's: on real hardware there is exactly one critical section (all
// interrupts disabled or none), but on this simulated port giving every
// data-stream primitive its own lock avoids a reentrancy hazard between
// a queue's buffer bookkeeping and the scheduler's own critical section
// — see DESIGN.md.
type Queue[T any] struct {
	dom *critical.Domain

	buf        []T
	head, tail int
	count      int
	watermark  int

	pushWait *ksync.Semaphore // woken by Pop, signals a freed slot
	popWait  *ksync.Semaphore // woken by Push, signals available data
}

// NewQueue constructs a Queue of the given capacity. Panics if capacity
// is not positive, per spec.md's construction-time panic policy.
func NewQueue[T any](sched task.Scheduler, capacity int) *Queue[T] {
	if capacity <= 0 {
		panic("rustos: queue capacity must be positive")
	}
	return &Queue[T]{
		dom:      &critical.Domain{},
		buf:      make([]T, capacity),
		pushWait: ksync.NewSemaphore(sched),
		popWait:  ksync.NewSemaphore(sched),
	}
}

// Push blocks self until there is room, then enqueues value. Ported from
// Queue::push.
//
// The fullness check and the semaphore registration happen inside the
// same critical section so a Pop that frees a slot concurrently can
// never complete its whole wake-up sequence (dequeue then Release) while
// this registration is still pending — either this check observes the
// freed slot directly, or it registers before the freeing Pop's Release
// can run and so is guaranteed to see the registration. See DESIGN.md.
func (q *Queue[T]) Push(self *task.Task, value T) {
	for {
		var full bool
		critical.With(q.dom, func(_ critical.Token) {
			full = q.count == len(q.buf)
			if full {
				q.pushWait.MarkWaiting(self)
			}
		})
		if !full {
			break
		}
		self.Stop()
	}
	q.enqueue(value)
	q.popWait.Release()
}

// PushTimeout is Push bounded by timeout ticks. Returns kerrors.ErrTimeout
// if the queue was still full when the deadline elapsed.
func (q *Queue[T]) PushTimeout(self *task.Task, value T, timeout ktime.Ticks) error {
	var full bool
	critical.With(q.dom, func(_ critical.Token) {
		full = q.count == len(q.buf)
		if full {
			q.pushWait.MarkWaiting(self)
		}
	})
	if full {
		if !q.pushWait.WaitAfterMarking(self, timeout) {
			return kerrors.ErrTimeout
		}
	}
	q.enqueue(value)
	q.popWait.Release()
	return nil
}

// PushDropping enqueues value without blocking, failing with
// kerrors.ErrFull if there is no room. Safe to call from any context,
// including one standing in for an ISR.
func (q *Queue[T]) PushDropping(value T) error {
	var full bool
	critical.With(q.dom, func(_ critical.Token) {
		full = q.count == len(q.buf)
	})
	if full {
		return kerrors.ErrFull
	}
	q.enqueue(value)
	q.popWait.Release()
	return nil
}

func (q *Queue[T]) enqueue(value T) {
	critical.With(q.dom, func(_ critical.Token) {
		q.buf[q.head] = value
		q.head = (q.head + 1) % len(q.buf)
		q.count++
		if q.count > q.watermark {
			q.watermark = q.count
		}
	})
}

// Pop blocks self until an element is available, then dequeues it.
// Ported from Queue::pop. See Push's doc comment for why the emptiness
// check and the semaphore registration share one critical section.
func (q *Queue[T]) Pop(self *task.Task) T {
	for {
		var empty bool
		critical.With(q.dom, func(_ critical.Token) {
			empty = q.count == 0
			if empty {
				q.popWait.MarkWaiting(self)
			}
		})
		if !empty {
			break
		}
		self.Stop()
	}
	value := q.dequeue()
	q.pushWait.Release()
	return value
}

// PopTimeout is Pop bounded by timeout ticks.
func (q *Queue[T]) PopTimeout(self *task.Task, timeout ktime.Ticks) (T, error) {
	var empty bool
	critical.With(q.dom, func(_ critical.Token) {
		empty = q.count == 0
		if empty {
			q.popWait.MarkWaiting(self)
		}
	})
	if empty {
		if !q.popWait.WaitAfterMarking(self, timeout) {
			var zero T
			return zero, kerrors.ErrTimeout
		}
	}
	value := q.dequeue()
	q.pushWait.Release()
	return value, nil
}

// PopAvailable dequeues without blocking, failing with kerrors.ErrEmpty
// if nothing is available.
func (q *Queue[T]) PopAvailable() (T, error) {
	var empty bool
	critical.With(q.dom, func(_ critical.Token) {
		empty = q.count == 0
	})
	if empty {
		var zero T
		return zero, kerrors.ErrEmpty
	}
	value := q.dequeue()
	q.pushWait.Release()
	return value, nil
}

func (q *Queue[T]) dequeue() T {
	var value T
	critical.With(q.dom, func(_ critical.Token) {
		value = q.buf[q.tail]
		var zero T
		q.buf[q.tail] = zero
		q.tail = (q.tail + 1) % len(q.buf)
		q.count--
	})
	return value
}

// Count returns the number of elements currently queued.
func (q *Queue[T]) Count() int {
	var n int
	critical.With(q.dom, func(_ critical.Token) { n = q.count })
	return n
}

// Watermark returns the highest element count ever observed.
func (q *Queue[T]) Watermark() int {
	var n int
	critical.With(q.dom, func(_ critical.Token) { n = q.watermark })
	return n
}

// Clear empties the queue. The watermark is left untouched — it is a
// historical high-water mark, not current occupancy.
func (q *Queue[T]) Clear() {
	critical.With(q.dom, func(_ critical.Token) {
		var zero T
		for i := range q.buf {
			q.buf[i] = zero
		}
		q.head, q.tail, q.count = 0, 0, 0
	})
}
