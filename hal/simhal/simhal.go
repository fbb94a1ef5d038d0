// Package simhal is the simulated hardware abstraction layer: an
// implementation of every interface in package hal backed by goroutines,
// channels and a time.Ticker instead of real SysTick/PendSV/WFI. It lets
// the scheduler run, and be tested, on a host with no target microcontroller
// at all — the same role SUPRAXCore plays as an executable reference model
// for an instruction set it never runs on real silicon.
package simhal

import (
	"sync/atomic"
	"time"

	"rustos/hal"
	"rustos/ktime"
)

// InterruptController is a nestable, idempotent software stand-in for
// masking interrupts. Since this port's actual interrupt masking is
// performed by critical.Domain's mutex (see package critical's doc
// comment), this implementation does no real work; it exists so a caller
// coded against hal.InterruptController has something to construct.
type InterruptController struct {
	depth atomic.Int32
}

// NewInterruptController returns a ready-to-use InterruptController.
func NewInterruptController() *InterruptController { return &InterruptController{} }

// Mask increments the nesting depth.
func (c *InterruptController) Mask() { c.depth.Add(1) }

// Unmask decrements the nesting depth.
func (c *InterruptController) Unmask() { c.depth.Add(-1) }

// Scheduler satisfies hal.Scheduler. There is no separate pended-exception
// level to route through on this port: RequestContextSwitch is a no-op
// because the kernel performs the switch inline, under the critical
// section, at the point schedule_next decides one is needed (see
// kernel.performContextSwitch). InISR always reports false since nothing
// on this port runs at an elevated, non-preemptible level distinct from
// holding the critical section.
type Scheduler struct{}

// NewScheduler returns a ready-to-use Scheduler.
func NewScheduler() *Scheduler { return &Scheduler{} }

// RequestContextSwitch is a no-op; see the type doc comment.
func (Scheduler) RequestContextSwitch() {}

// InISR always reports false on this port.
func (Scheduler) InISR() bool { return false }

// CPU implements hal.CPU by parking the idle task's goroutine on its own
// resume channel until the scheduler signals it again — the simulated
// stand-in for a WFI instruction halting the core until the next
// interrupt.
type CPU struct {
	idleResume <-chan struct{}
}

// NewCPU returns a CPU that parks on idleResume, typically the idle task's
// own Resume() channel.
func NewCPU(idleResume <-chan struct{}) *CPU {
	return &CPU{idleResume: idleResume}
}

// SleepCPU blocks until the idle task is signaled to run again.
func (c *CPU) SleepCPU() {
	<-c.idleResume
}

// TickSource drives Kernel.OnTick off a time.Ticker running on its own
// goroutine — this port's stand-in for a hardware timer plus ISR.
type TickSource struct {
	ticker *time.Ticker
	stop   chan struct{}
}

// NewTickSource returns a TickSource with no ticker running yet; call
// Start to begin driving onTick.
func NewTickSource() *TickSource {
	return &TickSource{}
}

// Start begins calling onTick once per period until Stop is called. period
// is interpreted as that many ticks at a fixed 1ms-per-tick host-wall-clock
// rate, a simulation rate chosen for tests to run quickly; real hardware
// sizes this off its own timer frequency instead.
func (t *TickSource) Start(period ktime.Duration, onTick func()) {
	interval := time.Duration(period.Ticks()) * time.Millisecond
	if interval <= 0 {
		interval = time.Millisecond
	}
	t.ticker = time.NewTicker(interval)
	t.stop = make(chan struct{})
	go func() {
		for {
			select {
			case <-t.ticker.C:
				onTick()
			case <-t.stop:
				return
			}
		}
	}()
}

// Stop halts the ticker goroutine started by Start. Safe to call at most
// once per Start.
func (t *TickSource) Stop() {
	if t.ticker == nil {
		return
	}
	t.ticker.Stop()
	close(t.stop)
}

// ContextSwitcher implements hal.ContextSwitcher against hal.TaskHandle's
// Resume channel. Save is a no-op on this port: there is no separate
// register file to flush to a stack frame, and stack-watermark sampling
// cannot happen here since Save runs on whatever goroutine decided a
// switch was needed (the tick driver, or another task readying a
// waiter), not necessarily the outgoing task's own goroutine — see
// Task.ParkUntilResumed, which is where the outgoing task samples its
// own watermark instead, on its own goroutine, right before it actually
// parks. A bare-metal port's Save is where the real register-save-to-
// stack work happens.
type ContextSwitcher struct{}

// NewContextSwitcher returns a ready-to-use ContextSwitcher.
func NewContextSwitcher() ContextSwitcher { return ContextSwitcher{} }

// Save is a no-op; see the type doc comment.
func (ContextSwitcher) Save(hal.TaskHandle) {}

// Load wakes the incoming task's parked goroutine.
func (ContextSwitcher) Load(t hal.TaskHandle) {
	select {
	case t.Resume() <- struct{}{}:
	default:
	}
}
