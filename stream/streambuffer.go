package stream

import (
	"rustos/critical"
	"rustos/kerrors"
	"rustos/ksync"
	"rustos/ktime"
	"rustos/task"
)

// StreamBuffer is a batch-oriented byte-stream-style ring buffer gated by
// a trigger level TRG: a blocked reader only wakes once the buffer holds
// at least TRG elements (or a writer signals directly at that
// threshold). Once awake, a reader drains whatever is actually present,
// which may be more or less than TRG. Ported from StreamBuffer::write/
// read in original_source/src/kernel/queues.rs.
type StreamBuffer[T any] struct {
	dom *critical.Domain

	buf        []T
	head, tail int
	count      int
	trigger    int

	writeWait *ksync.Semaphore // woken by Read, signals freed space
	readWait  *ksync.Semaphore // woken by Write once count >= trigger
}

// NewStreamBuffer constructs a StreamBuffer of the given capacity and
// trigger level. Panics if capacity is not positive or trigger falls
// outside [1, capacity].
func NewStreamBuffer[T any](sched task.Scheduler, capacity, trigger int) *StreamBuffer[T] {
	if capacity <= 0 {
		panic("rustos: stream buffer capacity must be positive")
	}
	if trigger < 1 || trigger > capacity {
		panic("rustos: stream buffer trigger must be within [1, capacity]")
	}
	return &StreamBuffer[T]{
		dom:       &critical.Domain{},
		buf:       make([]T, capacity),
		trigger:   trigger,
		writeWait: ksync.NewSemaphore(sched),
		readWait:  ksync.NewSemaphore(sched),
	}
}

// Write blocks self until every element of data has been copied in,
// writing as much as fits in each critical section and blocking between
// attempts whenever the buffer is full.
//
// writeChunk registers self as waiting (when it writes nothing because
// the buffer is already full) inside the same critical section that
// tests fullness, for the same lost-wakeup reason documented on
// stream.Queue.Push.
func (b *StreamBuffer[T]) Write(self *task.Task, data []T) {
	remaining := data
	for len(remaining) > 0 {
		wrote, triggerMet := b.writeChunk(remaining, self)
		if wrote == 0 {
			self.Stop()
			continue
		}
		remaining = remaining[wrote:]
		if triggerMet {
			b.readWait.Release()
		}
	}
}

// WriteTimeout is Write bounded by timeout ticks applied to each blocking
// wait. Returns the number of elements actually written and
// kerrors.ErrTimeout if the deadline elapsed before data was exhausted.
func (b *StreamBuffer[T]) WriteTimeout(self *task.Task, data []T, timeout ktime.Ticks) (int, error) {
	remaining := data
	for len(remaining) > 0 {
		wrote, triggerMet := b.writeChunk(remaining, self)
		if wrote == 0 {
			if !b.writeWait.WaitAfterMarking(self, timeout) {
				return len(data) - len(remaining), kerrors.ErrTimeout
			}
			continue
		}
		remaining = remaining[wrote:]
		if triggerMet {
			b.readWait.Release()
		}
	}
	return len(data), nil
}

// WriteDropping writes as much of data as currently fits without
// blocking, returning the count written and kerrors.ErrFull if any of
// data could not be written. Safe to call from any context.
func (b *StreamBuffer[T]) WriteDropping(data []T) (int, error) {
	wrote, triggerMet := b.writeChunk(data, nil)
	if triggerMet {
		b.readWait.Release()
	}
	if wrote < len(data) {
		return wrote, kerrors.ErrFull
	}
	return wrote, nil
}

// writeChunk copies as much of data as currently fits into the buffer in
// one critical section, wrapping around the ring as needed, and reports
// whether the post-copy occupancy reached the trigger level. If nothing
// could be written and self is non-nil, self is registered on writeWait
// inside this same critical section — see Push's doc comment in
// stream/queue.go for why that has to happen atomically with the
// fullness check rather than afterward.
func (b *StreamBuffer[T]) writeChunk(data []T, self *task.Task) (wrote int, triggerMet bool) {
	critical.With(b.dom, func(_ critical.Token) {
		free := len(b.buf) - b.count
		n := min(free, len(data))
		for i := 0; i < n; i++ {
			b.buf[(b.head+i)%len(b.buf)] = data[i]
		}
		b.head = (b.head + n) % len(b.buf)
		b.count += n
		wrote = n
		triggerMet = b.count >= b.trigger
		if n == 0 && self != nil {
			b.writeWait.MarkWaiting(self)
		}
	})
	return wrote, triggerMet
}

// Read blocks self until out has been completely filled, draining
// whatever is present on each wake rather than waiting for a full
// out-sized batch: TRG only gates whether a blocked reader wakes at all,
// never how much a woken reader drains.
func (b *StreamBuffer[T]) Read(self *task.Task, out []T) {
	remaining := out
	for len(remaining) > 0 {
		read := b.readChunk(remaining, self)
		if read == 0 {
			self.Stop()
			continue
		}
		remaining = remaining[read:]
		b.writeWait.Release()
	}
}

// ReadTimeout is Read bounded by timeout ticks applied to each blocking
// wait. Returns the number of elements actually read and
// kerrors.ErrTimeout if the deadline elapsed before out was filled.
func (b *StreamBuffer[T]) ReadTimeout(self *task.Task, out []T, timeout ktime.Ticks) (int, error) {
	remaining := out
	for len(remaining) > 0 {
		read := b.readChunk(remaining, self)
		if read == 0 {
			if !b.readWait.WaitAfterMarking(self, timeout) {
				return len(out) - len(remaining), kerrors.ErrTimeout
			}
			continue
		}
		remaining = remaining[read:]
		b.writeWait.Release()
	}
	return len(out), nil
}

// ReadAvailable drains as much of out as is currently present without
// blocking, ignoring the trigger level entirely, and returns the count
// read. It never fails: reading zero elements is a valid outcome.
func (b *StreamBuffer[T]) ReadAvailable(out []T) int {
	read := b.readChunk(out, nil)
	if read > 0 {
		b.writeWait.Release()
	}
	return read
}

// readChunk copies as much of the buffer's current contents as fits in
// out, in one critical section, wrapping around the ring as needed. If
// nothing could be read and self is non-nil, self is registered on
// readWait inside this same critical section.
func (b *StreamBuffer[T]) readChunk(out []T, self *task.Task) (read int) {
	critical.With(b.dom, func(_ critical.Token) {
		n := min(b.count, len(out))
		for i := 0; i < n; i++ {
			out[i] = b.buf[(b.tail+i)%len(b.buf)]
		}
		b.tail = (b.tail + n) % len(b.buf)
		b.count -= n
		read = n
		if n == 0 && self != nil {
			b.readWait.MarkWaiting(self)
		}
	})
	return read
}

// Count returns the number of elements currently buffered.
func (b *StreamBuffer[T]) Count() int {
	var n int
	critical.With(b.dom, func(_ critical.Token) { n = b.count })
	return n
}

// Clear empties the buffer.
func (b *StreamBuffer[T]) Clear() {
	critical.With(b.dom, func(_ critical.Token) {
		var zero T
		for i := range b.buf {
			b.buf[i] = zero
		}
		b.head, b.tail, b.count = 0, 0, 0
	})
}
