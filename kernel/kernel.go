// Package kernel implements the scheduler core: task registration, the
// O(1) bitmap-driven schedule_next algorithm, the tick handler that drives
// sleep expiry and software timers, and fault containment.
//
// Ported from original_source/src/kernel/{tasks,scheduler}.rs's Kernel
// type, restructured around Go's critical.Domain and the hal seam instead
// of a single global static with interrupts disabled by inline assembly.
package kernel

import (
	"context"
	"fmt"
	"runtime"

	"rustos/bitvec"
	"rustos/critical"
	"rustos/hal"
	"rustos/kerrors"
	"rustos/klog"
	"rustos/ktime"
	"rustos/task"
)

// Kernel owns the scheduler's entire mutable state behind one
// critical.Domain — exactly one logical CPU, exactly one mutator at a
// time.
type Kernel struct {
	dom *critical.Domain

	tasks  taskList
	timers timerList

	running *task.Task
	idle    *task.Task

	sysTicks ktime.SystemTicks

	ctxSwitch hal.ContextSwitcher
}

// Config bundles the HAL seams a Kernel needs at construction. IdleTask
// must be built with task.NewIdle.
type Config struct {
	IdleTask  *task.Task
	CtxSwitch hal.ContextSwitcher
}

// New constructs a Kernel. Panics if cfg.IdleTask is nil, matching
// spec.md's construction-time panic policy for configuration errors.
//
// New pins runtime.GOMAXPROCS(1): task goroutines are gated by Resume
// channels, never by true OS-thread parallelism, and the whole scheduler
// depends on at most one of them ever executing at a time. This is a
// process-wide setting, not scoped to one Kernel — see the "Task
// preemption is cooperative" note on package task for what it does and
// does not buy back. Deliberately NOT restored on any path: a second
// Kernel constructed later in the same process must see the same
// single-CPU world as the first.
func New(cfg Config) *Kernel {
	if cfg.IdleTask == nil {
		panic("rustos: kernel requires an idle task")
	}
	runtime.GOMAXPROCS(1)
	return &Kernel{
		dom:       &critical.Domain{},
		idle:      cfg.IdleTask,
		ctxSwitch: cfg.CtxSwitch,
	}
}

// AddTask registers t at its priority and starts its goroutine, parked
// until the scheduler signals it. Returns kerrors.ErrPriorityInUse if the
// priority is already occupied. Ported from Kernel::add_process.
func (k *Kernel) AddTask(t *task.Task) error {
	var err error
	critical.With(k.dom, func(_ critical.Token) {
		prio := int(t.Priority())
		if _, used := k.tasks.slots.Get(prio); used {
			err = kerrors.ErrPriorityInUse
			return
		}
		if !k.tasks.slots.InsertAt(prio, t) {
			err = kerrors.ErrSlotTableFull
			return
		}
		t.BindScheduler(k)
		k.tasks.ready.Set(prio)
	})
	if err == nil {
		klog.Info("task registered", "priority", t.Priority())
		go k.runTaskBody(t)
	}
	return err
}

// RemoveTask unregisters the task at prio. Returns kerrors.ErrUnknownPriority
// if no task occupies it. Ported from Kernel::remove_process.
func (k *Kernel) RemoveTask(prio task.Priority) error {
	var err error
	critical.With(k.dom, func(cs critical.Token) {
		if _, used := k.tasks.slots.Get(int(prio)); !used {
			err = kerrors.ErrUnknownPriority
			return
		}
		k.tasks.slots.Remove(int(prio))
		k.tasks.ready.Clear(int(prio))
		k.tasks.sleeping.Clear(int(prio))
		if k.running != nil && k.running.Priority() == prio {
			k.scheduleNext(cs)
		}
	})
	return err
}

// Init brings the kernel up: starts the idle task's goroutine, picks the
// initial running task (the highest-priority ready task, or idle if none
// is ready), starts the tick source, then blocks until ctx is canceled —
// this port's replacement for the original's diverging `fn start() -> !`,
// since a hosted Go process has a context to cancel instead of a reset
// vector to never return from (see SPEC_FULL.md §4.5).
func (k *Kernel) Init(ctx context.Context, tick hal.TickSource, period ktime.Duration) {
	critical.With(k.dom, func(_ critical.Token) {
		k.idle.BindScheduler(k)
		go k.runTaskBody(k.idle)

		n := k.tasks.ready.FindHighestSet()
		if n == bitvec.NoBit {
			k.running = k.idle
		} else {
			next, _ := k.tasks.get(task.Priority(n))
			k.running = next
		}
		k.running.Signal()
	})

	tick.Start(period, k.OnTick)
	<-ctx.Done()
	tick.Stop()
}

// Snapshot is a point-in-time report of scheduler state, supplementing
// spec.md with a read-only introspection surface grounded on
// original_source/src/utils/cli.rs's Console feature, minus the
// HAL-bound interactive console itself (see SPEC_FULL.md §9 and
// DESIGN.md).
type Snapshot struct {
	SystemTicks   ktime.SystemTicks
	RunningPrio   task.Priority
	ReadyCount    int
	SleepingCount int
	TimerCount    int
}

// Snapshot captures the kernel's current state under the critical section.
func (k *Kernel) Snapshot() Snapshot {
	var s Snapshot
	critical.With(k.dom, func(_ critical.Token) {
		s.SystemTicks = k.sysTicks
		if k.running != nil {
			s.RunningPrio = k.running.Priority()
		} else {
			s.RunningPrio = task.IdlePriority
		}
		s.ReadyCount = k.tasks.ready.CountOnes()
		s.SleepingCount = k.tasks.sleeping.CountOnes()
		s.TimerCount = k.timers.slots.SpaceUsed()
	})
	return s
}

// runTaskBody is the goroutine every registered task (and the idle task)
// runs on. It parks until first scheduled, then runs the task body,
// containing any panic as a task fault (see fault.go). A task body that
// returns instead of looping forever is itself reported as a fault: per
// spec.md task functions never return.
func (k *Kernel) runTaskBody(t *task.Task) {
	defer func() {
		if r := recover(); r != nil {
			k.OnFault(t.Priority(), fmt.Errorf("task panic: %v", r))
		}
	}()
	t.ParkUntilResumed()
	t.Invoke()
	k.OnFault(t.Priority(), fmt.Errorf("task function returned"))
}
