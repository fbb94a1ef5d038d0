// Package task implements the per-task control block (TCB): the unit of
// scheduling, its stack bookkeeping, and the three voluntary state
// transitions (idle, stop, sleep) a task body calls on itself.
//
// Ported from original_source/src/kernel/tasks.rs's PCB/Task type and
// Process trait: stack seeding, the ticks field, and the idle/stop/sleep
// trio that call back into the scheduler under a critical section.
//
// A Task's function body runs on its own goroutine — see SPEC_FULL.md §4.4
// for why, and hal/simhal for the mechanism. Task itself only holds the
// handle (the resume channel) the scheduler parks and wakes that goroutine
// through; it has no notion of *how* the goroutine is scheduled onto the
// host's own cores, only of whether this task is allowed to be the one
// making progress right now.
//
// Task preemption is cooperative, not interrupt-driven. Real hardware
// forces a lower-priority task off the CPU the instant a higher-priority
// one becomes ready, with no help from the preempted task. Go gives no
// way to reach into a running goroutine and suspend it from the outside —
// kernel.Kernel pins runtime.GOMAXPROCS(1) so at most one task goroutine
// ever executes at once, but the scheduler can only hand the CPU to a
// newly-ready task at one of *this* task's own suspension points (Idle,
// Sleep, Stop, or blocking on a ksync primitive). A task body that runs
// indefinitely between suspension points — a true `for {}` with no
// suspension call — holds the CPU regardless of what becomes ready in the
// meantime, at any priority, not only the highest one. Every TaskFunc is
// expected to reach a suspension point often enough for the priorities
// above it to actually preempt it; see DESIGN.md for why this divergence
// from spec.md §5's literal interrupt-driven model is accepted rather
// than worked around.
package task

import (
	"rustos/bitvec"
	"rustos/ktime"
)

// Priority identifies and orders a task. Unique per registered task.
type Priority uint8

const (
	// MaxPriority is the highest assignable priority, one less than the
	// scheduler's bitmap width (bitvec.Width), written out as a plain
	// constant.
	MaxPriority Priority = 63

	// IdlePriority is the sentinel assigned to the built-in idle task. It
	// is deliberately outside [0, MaxPriority] — the idle task is never a
	// member of the scheduler's TaskList bitmaps, only a fallback
	// schedule_next reaches for when no real task is ready.
	IdlePriority Priority = 255

	// MinStackWords is the smallest stack a Task may be constructed with.
	MinStackWords = 32
)

// TaskFunc is a task body. By convention it never returns — it loops
// forever, periodically calling one of Task's suspension methods. A body
// that does return is a configuration error the kernel reports as a fault
// (see kernel.OnFault), since spec.md requires task functions to never
// return.
type TaskFunc func(t *Task)

// Scheduler is the subset of kernel behavior a Task needs to perform its
// own voluntary transitions, expressed as an interface so this package
// never imports package kernel (kernel imports task, not the other way
// around). *kernel.Kernel satisfies this interface.
type Scheduler interface {
	// ProcessIdle marks prio ready and reschedules, reporting whether
	// prio is not the task left running once that's done — true means a
	// caller invoking this on itself must park now, whether this exact
	// call just switched away from it or an earlier event already had.
	ProcessIdle(prio Priority) bool
	// ProcessStop marks prio neither ready nor sleeping and reschedules.
	ProcessStop(prio Priority) bool
	// ProcessSleep marks prio sleeping for ticks and reschedules.
	ProcessSleep(prio Priority, ticks ktime.Ticks) bool
	// RemainingSleepTicks reports the ticks left before prio's sleep
	// would have expired — used by Semaphore.Wait to distinguish a
	// release-before-timeout wake from a timeout wake.
	RemainingSleepTicks(prio Priority) ktime.Ticks
	// ProcessReadyMask marks every priority in mask ready (clearing its
	// sleeping bit and any wait-set back-pointer) in one critical
	// section, then reschedules once. Used by Rendezvous.Meet to release
	// an entire arrived set atomically instead of one schedule_next per
	// task.
	ProcessReadyMask(mask bitvec.BitVec) bool
}

// WaitSet is implemented by anything a Task can be blocked on (currently
// only *ksync.Semaphore) so a sleep-with-timeout expiry can cancel the
// task's membership in that set without ksync and task importing each
// other.
type WaitSet interface {
	CancelWait(prio Priority)
}

// Task is the TCB: a task's priority, its stack, its saved scheduling
// handle, and the back-pointer used to cancel a timed wait.
type Task struct {
	fn     TaskFunc
	prio   Priority
	stack  *Stack
	resume chan struct{}

	sched   Scheduler
	waitSet WaitSet
}

// New constructs a Task. Panics if fn is nil, prio exceeds MaxPriority, or
// stackWords is shorter than MinStackWords — all three are configuration
// errors spec.md requires to panic at construction, not surface as a
// runtime result.
func New(fn TaskFunc, prio Priority, stackWords []uintptr) *Task {
	if fn == nil {
		panic("rustos: task function must not be nil")
	}
	if prio > MaxPriority {
		panic("rustos: task priority out of range")
	}
	return &Task{
		fn:     fn,
		prio:   prio,
		stack:  newStack(stackWords),
		resume: make(chan struct{}, 1),
	}
}

// NewIdle constructs the built-in idle task with IdlePriority and the
// given body (conventionally a loop that parks and/or halts the CPU).
func NewIdle(fn TaskFunc, stackWords []uintptr) *Task {
	return &Task{
		fn:     fn,
		prio:   IdlePriority,
		stack:  newStack(stackWords),
		resume: make(chan struct{}, 1),
	}
}

// Priority returns the task's priority.
func (t *Task) Priority() Priority { return t.prio }

// Resume returns the channel the scheduler parks/wakes this task's
// goroutine through. Exported so *Task implements hal.TaskHandle by
// structural typing, without task importing hal.
func (t *Task) Resume() chan struct{} { return t.resume }

// Watermark returns the highest stack-depth sample, in words, ever
// recorded for this task (see Stack.recordWatermark for how it is taken).
func (t *Task) Watermark() int { return t.stack.watermark }

// BindScheduler attaches the scheduler this task's voluntary transitions
// call into. Called once by Kernel.AddTask/Kernel.Init; not meant to be
// called by application code directly.
func (t *Task) BindScheduler(s Scheduler) { t.sched = s }

// Scheduler returns the task's bound scheduler.
func (t *Task) Scheduler() Scheduler { return t.sched }

// SetWaitSet records the wait-set this task is blocked in, so a timeout
// can cancel membership in it.
func (t *Task) SetWaitSet(ws WaitSet) { t.waitSet = ws }

// ClearWaitSet clears the wait-set back-pointer. Safe to call even when
// none is set.
func (t *Task) ClearWaitSet() { t.waitSet = nil }

// WaitSet returns the currently recorded wait-set, or nil.
func (t *Task) WaitSet() WaitSet { return t.waitSet }

// ParkUntilResumed blocks until the scheduler signals this task to run
// again. Every suspension point ends by calling this, always from the
// task's own goroutine — which is also why the stack watermark is
// sampled right here rather than by whatever goroutine decided a switch
// away from this task was needed: OnTick or another task's goroutine can
// trigger that decision (ProcessIdle, ProcessReadyMask), but only this
// task's own goroutine ever calls ParkUntilResumed on itself, so this is
// the one place runtime.Stack is guaranteed to sample this task's stack
// and no other's. See Stack.recordWatermark.
func (t *Task) ParkUntilResumed() {
	t.stack.recordWatermark()
	<-t.resume
}

// Signal wakes this task's parked goroutine. Never blocks: the resume
// channel has capacity 1 and a pending, not-yet-consumed signal means the
// task is already due to run, so a second signal is simply dropped.
func (t *Task) Signal() {
	select {
	case t.resume <- struct{}{}:
	default:
	}
}

// Invoke runs the task's body. Called exactly once, by the goroutine the
// kernel starts for this task at registration time.
func (t *Task) Invoke() { t.fn(t) }

// Idle marks the task ready (a no-op if it already was) and yields to any
// higher-priority ready task, returning immediately if none exists. This
// is the suspension point a cooperative loop calls on every iteration so
// a higher-priority task that became ready since the last call — whether
// readied by this very call's reschedule or by an OnTick/Release the
// caller's goroutine hasn't caught up with yet — actually gets the CPU;
// see package task's doc comment. Ported from Process::idle in
// original_source/src/kernel/tasks.rs.
func (t *Task) Idle() {
	if t.sched.ProcessIdle(t.prio) {
		t.ParkUntilResumed()
	}
}

// Stop marks the task neither ready nor sleeping until something else
// re-readies it (Semaphore.Release, Rendezvous.Meet, or an application
// calling AddTask-time wiring). Ported from Process::stop.
func (t *Task) Stop() {
	t.sched.ProcessStop(t.prio)
	t.ParkUntilResumed()
}

// Sleep marks the task sleeping for ticks system ticks. Ported from
// Process::sleep.
func (t *Task) Sleep(ticks ktime.Ticks) {
	t.sched.ProcessSleep(t.prio, ticks)
	t.ParkUntilResumed()
}
