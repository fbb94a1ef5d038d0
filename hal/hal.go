// Package hal collects the interfaces the kernel consumes from — and
// exposes to — the hardware abstraction layer, per spec.md §6. The core
// never imports a concrete MCU driver; it only ever talks to these seams.
//
// A bare-metal port implements these against real SysTick/PendSV/WFI and
// raw register save/restore. Package hal/simhal implements them instead
// against goroutines, for running and testing the scheduling algorithm on
// a host with no target hardware at all — the same "executable reference
// model" role SUPRAXCore plays for its instruction set.
package hal

import "rustos/ktime"

// InterruptController masks and unmasks the kernel's notion of "all
// maskable interrupts." Nestable and idempotent: Mask called twice must be
// balanced by two Unmask calls before interrupts are actually re-enabled.
type InterruptController interface {
	Mask()
	Unmask()
}

// Scheduler is the minimal seam the kernel needs to ask for a deferred
// context switch. RequestContextSwitch is context-aware: called from
// task context it is expected to route through a supervisor call; called
// from ISR context it pends the switch directly. Implementations decide
// which path applies via InISR.
type Scheduler interface {
	RequestContextSwitch()
	InISR() bool
}

// CPU provides the idle task's only action: halt until the next
// interrupt.
type CPU interface {
	SleepCPU()
}

// TickSource drives the kernel's periodic timebase. Start must call onTick
// once per period until Stop is called; a real port configures a hardware
// timer and an ISR, the simulated HAL runs a goroutine.
type TickSource interface {
	Start(period ktime.Duration, onTick func())
	Stop()
}

// ContextSwitcher performs the architecture-specific half of a context
// switch: saving the outgoing task's CPU state and restoring the incoming
// task's. TaskHandle is an opaque reference to a *task.Task — defined here
// as an interface with no methods to avoid an import cycle between hal and
// task; simhal and task agree on the concrete type underneath.
type ContextSwitcher interface {
	Save(t TaskHandle)
	Load(t TaskHandle)
}

// TaskHandle is the opaque reference a ContextSwitcher receives for the
// task being saved or loaded.
type TaskHandle interface {
	// Resume is the channel the task's goroutine is blocked reading from
	// when it is not the running task. Load signals it to proceed.
	Resume() chan struct{}
}
