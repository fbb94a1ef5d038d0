package kernel

import (
	"rustos/bitvec"
	"rustos/critical"
	"rustos/klog"
	"rustos/ktime"
	"rustos/task"
)

// ProcessIdle marks prio ready and reschedules, reporting whether prio
// itself is not the task left running once the critical section exits —
// i.e. whether the caller, if it called this on itself, must now park.
// Used both by a task calling Idle() on itself and by a sync primitive
// readying a different task it was blocking (Semaphore.Release,
// Rendezvous.Meet), which call it only for that ready-marking side effect
// and ignore the return value. Ported from Kernel::process_idle.
//
// The reported bool is deliberately *not* "did this call just perform a
// new switch" — a tick-driven preemption (OnTick, §OnTick) or another
// task's Release/Meet can already have switched k.running away from prio
// before prio's own goroutine gets back around to calling Idle. At that
// point scheduleNext here correctly finds nothing new to do (the highest
// ready priority already matches k.running), but prio's own goroutine is
// still the one physically executing and must still learn it has to
// park. Comparing against k.running directly, after scheduleNext has had
// its chance to run, catches both cases with one check; see DESIGN.md
// and package task's doc comment for why this self-check is what makes
// cooperative preemption of a task that never stops calling Idle
// actually work.
func (k *Kernel) ProcessIdle(prio task.Priority) bool {
	var mustPark bool
	critical.With(k.dom, func(cs critical.Token) {
		i := int(prio)
		k.tasks.ready.Set(i)
		k.tasks.sleeping.Clear(i)
		if tk, used := k.tasks.get(prio); used {
			tk.ClearWaitSet()
		}
		k.scheduleNext(cs)
		mustPark = k.runningPriorityLocked() != prio
	})
	return mustPark
}

// ProcessStop marks prio neither ready nor sleeping and reschedules.
// Ported from Kernel::process_stop.
func (k *Kernel) ProcessStop(prio task.Priority) bool {
	var switched bool
	critical.With(k.dom, func(cs critical.Token) {
		i := int(prio)
		k.tasks.ready.Clear(i)
		k.tasks.sleeping.Clear(i)
		switched = k.scheduleNext(cs)
	})
	return switched
}

// ProcessSleep marks prio sleeping for ticks system ticks and reschedules.
// Ported from Kernel::process_sleep.
func (k *Kernel) ProcessSleep(prio task.Priority, ticks ktime.Ticks) bool {
	var switched bool
	critical.With(k.dom, func(cs critical.Token) {
		i := int(prio)
		k.tasks.ready.Clear(i)
		k.tasks.sleeping.Set(i)
		k.tasks.sleepTicks[i] = ticks
		switched = k.scheduleNext(cs)
	})
	return switched
}

// RemainingSleepTicks reports the ticks left before prio's sleep
// would expire. Used by ksync.Semaphore.Wait to tell a timeout wake from a
// release-before-timeout wake: the two differ only in whether the sleep
// actually ran out.
func (k *Kernel) RemainingSleepTicks(prio task.Priority) ktime.Ticks {
	var remaining ktime.Ticks
	critical.With(k.dom, func(_ critical.Token) {
		remaining = k.tasks.sleepTicks[int(prio)]
	})
	return remaining
}

// ProcessReadyMask marks every priority set in mask ready, in one critical
// section, then reschedules once. Ported from the bulk-release half of
// Rendezvous::meet in original_source/src/kernel/processes.rs, hoisted
// onto Kernel so the whole bitmap update and the single resulting
// schedule_next stay atomic with respect to any other goroutine that
// might enter the critical section.
func (k *Kernel) ProcessReadyMask(mask bitvec.BitVec) bool {
	var switched bool
	critical.With(k.dom, func(cs critical.Token) {
		it := mask.Iter()
		for {
			i, ok := it.Next()
			if !ok {
				break
			}
			k.tasks.ready.Set(i)
			k.tasks.sleeping.Clear(i)
			if tk, used := k.tasks.get(task.Priority(i)); used {
				tk.ClearWaitSet()
			}
		}
		switched = k.scheduleNext(cs)
	})
	return switched
}

// scheduleNext picks the next task to run and, if it differs from the
// currently running one, performs the switch. Must be called with cs
// already held. Ported from Kernel::schedule_next's three-way branch:
//   - a ready task exists and the highest-indexed one isn't already
//     running -> switch to it
//   - no ready task exists and idle isn't already running -> switch to
//     idle
//   - otherwise -> no-op
func (k *Kernel) scheduleNext(cs critical.Token) bool {
	r := task.IdlePriority
	if k.running != nil {
		r = k.running.Priority()
	}

	n := k.tasks.ready.FindHighestSet()
	switch {
	case n != bitvec.NoBit && task.Priority(n) != r:
		next, _ := k.tasks.get(task.Priority(n))
		k.performContextSwitch(next)
		return true
	case n == bitvec.NoBit && r != task.IdlePriority:
		k.performContextSwitch(k.idle)
		return true
	default:
		return false
	}
}

// performContextSwitch saves the outgoing task's context, updates the
// running pointer, and loads the incoming task's context via the
// ContextSwitcher seam. Must be called with the critical section held —
// this port executes both halves of what spec.md describes as two
// separate steps (schedule_next requesting a deferred switch, then a
// separate handler performing it) inline, since there is no separate
// pended-exception level to defer to on a hosted Go process; see
// SPEC_FULL.md §6.
func (k *Kernel) performContextSwitch(next *task.Task) {
	if k.running != nil {
		k.ctxSwitch.Save(k.running)
	}
	klog.Scheduling("context switch", "from", k.runningPriorityLocked(), "to", next.Priority())
	k.running = next
	k.ctxSwitch.Load(next)
}

func (k *Kernel) runningPriorityLocked() task.Priority {
	if k.running == nil {
		return task.IdlePriority
	}
	return k.running.Priority()
}

// OnTick advances the system clock by one tick, decrements every sleeping
// task's remaining ticks (readying any that reach zero and canceling its
// wait-set membership if it was blocked with a timeout), fires due
// timers, and reschedules once at the end. Ported from
// Kernel::inc_system_ticks.
func (k *Kernel) OnTick() {
	critical.With(k.dom, func(cs critical.Token) {
		k.sysTicks = k.sysTicks.AddSaturating(1)

		it := k.tasks.sleeping.Iter()
		for {
			i, ok := it.Next()
			if !ok {
				break
			}
			remaining := k.tasks.sleepTicks[i].SubSaturating(1)
			k.tasks.sleepTicks[i] = remaining
			if remaining == 0 {
				k.tasks.ready.Set(i)
				k.tasks.sleeping.Clear(i)
				if tk, used := k.tasks.get(task.Priority(i)); used {
					if ws := tk.WaitSet(); ws != nil {
						ws.CancelWait(task.Priority(i))
						tk.ClearWaitSet()
					}
				}
			}
		}

		k.fireTimers()
		k.scheduleNext(cs)
	})
}
