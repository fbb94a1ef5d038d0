// Package ksync implements the kernel's task-level synchronization
// primitives: Semaphore, Rendezvous and Mutex, all layered on scheduler
// state mutations rather than a host OS's own blocking primitives — the
// whole point of an RTOS sync primitive is that blocking *is* a
// transition of the task's own scheduling state, not a wait on an
// independent kernel object.
//
// Ported from original_source/src/kernel/semaphores.rs and
// processes.rs's Rendezvous/Mutex.
package ksync

import (
	"rustos/bitvec"
	"rustos/ktime"
	"rustos/task"
)

// Semaphore is a binary-per-task signaling flag, not a counting
// semaphore: its state is the set of task priorities currently waiting,
// and Release wakes at most the single highest-priority one. Calling
// Release with nobody waiting is a no-op.
type Semaphore struct {
	sched   task.Scheduler
	waiters bitvec.AtomicBitVec
}

// NewSemaphore returns an empty Semaphore bound to sched, the scheduler
// Release will call into when it wakes a waiter.
func NewSemaphore(sched task.Scheduler) *Semaphore {
	return &Semaphore{sched: sched}
}

// MarkWaiting registers self as waiting without blocking it. Exported so
// that a caller which must test its own condition atomically with
// registration (stream.Queue, stream.StreamBuffer) can call it from
// inside its own critical section immediately before blocking, rather
// than through Acquire/Wait directly: registering outside that lock
// would leave a window where a concurrent Release observes no waiter yet
// and no-ops, and the caller then blocks with nobody left to wake it.
// See DESIGN.md.
func (s *Semaphore) MarkWaiting(self *task.Task) {
	s.waiters.Set(int(self.Priority()))
}

// Acquire blocks self until released. Ported from Semaphore::acquire:
// set self's bit, stop self, return on the next resumption.
func (s *Semaphore) Acquire(self *task.Task) {
	s.MarkWaiting(self)
	self.Stop()
}

// WaitAfterMarking blocks self, already registered via a prior
// MarkWaiting call, until released or until timeout ticks elapse,
// reporting which one happened.
func (s *Semaphore) WaitAfterMarking(self *task.Task, timeout ktime.Ticks) bool {
	self.SetWaitSet(s)
	self.Sleep(timeout)
	return self.Scheduler().RemainingSleepTicks(self.Priority()) != 0
}

// Wait blocks self until released or until timeout ticks elapse,
// whichever comes first, reporting which one happened. Ported from
// Semaphore::wait.
func (s *Semaphore) Wait(self *task.Task, timeout ktime.Ticks) bool {
	s.MarkWaiting(self)
	return s.WaitAfterMarking(self, timeout)
}

// Release wakes the single highest-priority waiter, if any. Safe to call
// from any context, including one standing in for an ISR, since it never
// blocks. Ported from Semaphore::release.
func (s *Semaphore) Release() {
	prio := s.waiters.Load().FindHighestSet()
	if prio == bitvec.NoBit {
		return
	}
	if s.waiters.ClearAndReportWasSet(prio) {
		s.sched.ProcessIdle(task.Priority(prio))
	}
}

// CancelWait clears prio's membership in the wait set. Called by the
// kernel's tick handler when a Wait's timeout expires, satisfying
// task.WaitSet.
func (s *Semaphore) CancelWait(prio task.Priority) {
	s.waiters.Clear(int(prio))
}
