package kernel

import (
	"rustos/bitvec"
	"rustos/critical"
	"rustos/kerrors"
	"rustos/klog"
	"rustos/ktime"
)

// timerKind enumerates the repetition patterns a Timer can run, ported
// from original_source/src/kernel/timers.rs's TimerMode enum.
type timerKind int

const (
	timerOneShot timerKind = iota
	timerLooping
	timerCounted
	timerLoopingBurst
	timerCountedBurst
	timerExpired
)

// Timer is a scheduled callback driven by Kernel.OnTick. Constructed via
// one of the kernel's NewXxxTimer methods, never directly.
type Timer struct {
	callback  func()
	period    ktime.Ticks
	countdown ktime.Ticks

	kind timerKind

	// burst fields, used by timerLoopingBurst and timerCountedBurst.
	burstTicks ktime.Ticks
	burstSize  int
	burstLeft  int

	// repsLeft counts remaining (burst+gap) cycles for timerCounted and
	// timerCountedBurst; reaching zero transitions kind to timerExpired.
	repsLeft int
}

func (t *Timer) fire() {
	t.callback()
	switch t.kind {
	case timerOneShot:
		t.kind = timerExpired

	case timerLooping:
		t.countdown = t.period

	case timerCounted:
		t.repsLeft--
		if t.repsLeft <= 0 {
			t.kind = timerExpired
		} else {
			t.countdown = t.period
		}

	case timerLoopingBurst:
		t.burstLeft--
		if t.burstLeft > 0 {
			t.countdown = t.burstTicks
		} else {
			t.countdown = t.period
			t.burstLeft = t.burstSize
		}

	case timerCountedBurst:
		t.burstLeft--
		if t.burstLeft > 0 {
			t.countdown = t.burstTicks
			return
		}
		t.repsLeft--
		if t.repsLeft <= 0 {
			t.kind = timerExpired
		} else {
			t.countdown = t.period
			t.burstLeft = t.burstSize
		}
	}
}

// timerList is TimerList from spec.md's data model: a BitList slot table
// plus an `active` bitmap distinguishing timers still counting down from
// ones whose slot is merely reserved (this port's used and active
// coincide for every timer's whole lifetime: register sets both, and
// CancelTimer and the expiry sweep clear both).
type timerList struct {
	slots  bitvec.BitList[*Timer]
	active bitvec.BitVec
}

func (k *Kernel) register(t *Timer) (int, error) {
	var idx int
	var err error
	critical.With(k.dom, func(_ critical.Token) {
		i, ok := k.timers.slots.Insert(t)
		if !ok {
			err = kerrors.ErrSlotTableFull
			return
		}
		k.timers.active.Set(i)
		idx = i
	})
	return idx, err
}

// NewOneShotTimer registers a timer that fires callback once, after delay
// ticks, then expires.
func (k *Kernel) NewOneShotTimer(delay ktime.Ticks, callback func()) (int, error) {
	return k.register(&Timer{callback: callback, period: delay, countdown: delay, kind: timerOneShot})
}

// NewLoopingTimer registers a timer that fires callback every period
// ticks, forever.
func (k *Kernel) NewLoopingTimer(period ktime.Ticks, callback func()) (int, error) {
	return k.register(&Timer{callback: callback, period: period, countdown: period, kind: timerLooping})
}

// NewCountedTimer registers a timer that fires callback every period
// ticks, exactly reps times, then expires.
func (k *Kernel) NewCountedTimer(period ktime.Ticks, reps int, callback func()) (int, error) {
	return k.register(&Timer{callback: callback, period: period, countdown: period, kind: timerCounted, repsLeft: reps})
}

// NewLoopingBurstTimer registers a timer that fires callback burstSize
// times spaced burstTicks apart, then waits period ticks, then repeats the
// whole burst forever.
func (k *Kernel) NewLoopingBurstTimer(period, burstTicks ktime.Ticks, burstSize int, callback func()) (int, error) {
	return k.register(&Timer{
		callback:   callback,
		period:     period,
		countdown:  burstTicks,
		kind:       timerLoopingBurst,
		burstTicks: burstTicks,
		burstSize:  burstSize,
		burstLeft:  burstSize,
	})
}

// NewCountedBurstTimer registers a timer that fires callback burstSize
// times spaced burstTicks apart, waits period ticks, then repeats that
// whole burst pattern reps times in total before expiring.
func (k *Kernel) NewCountedBurstTimer(period, burstTicks ktime.Ticks, burstSize, reps int, callback func()) (int, error) {
	return k.register(&Timer{
		callback:   callback,
		period:     period,
		countdown:  burstTicks,
		kind:       timerCountedBurst,
		burstTicks: burstTicks,
		burstSize:  burstSize,
		burstLeft:  burstSize,
		repsLeft:   reps,
	})
}

// CancelTimer removes the timer at idx, wherever it is in its cycle.
// Returns kerrors.ErrUnknownPriority if idx holds no timer.
func (k *Kernel) CancelTimer(idx int) error {
	var err error
	critical.With(k.dom, func(_ critical.Token) {
		if _, used := k.timers.slots.Get(idx); !used {
			err = kerrors.ErrUnknownPriority
			return
		}
		k.timers.slots.Remove(idx)
		k.timers.active.Clear(idx)
	})
	return err
}

// fireTimers decrements every active timer's countdown, firing (and
// advancing the mode of) any that reach zero, then reaps any timer whose
// mode just became timerExpired. Must be called with cs already held.
//
// Timer callbacks are required to be pure with respect to kernel state
// (spec.md describes Timer's callback as "a pure function"): this method
// runs them without releasing the critical section, so a callback that
// itself called back into the kernel (AddTask, a semaphore Release) would
// deadlock on this port's non-reentrant critical.Domain.
func (k *Kernel) fireTimers() {
	it := k.timers.active.Iter()
	var expired []int
	for {
		i, ok := it.Next()
		if !ok {
			break
		}
		tp, used := k.timers.slots.Get(i)
		if !used {
			continue
		}
		timer := *tp
		timer.countdown = timer.countdown.SubSaturating(1)
		if timer.countdown == 0 {
			klog.Scheduling("timer fired", "timer", i)
			timer.fire()
		}
		if timer.kind == timerExpired {
			expired = append(expired, i)
		}
	}
	for _, i := range expired {
		k.timers.slots.Remove(i)
		k.timers.active.Clear(i)
	}
}
