package kernel

import (
	"rustos/critical"
	"rustos/klog"
	"rustos/task"
)

// OnFault contains a fault raised by task prio: the task is stopped
// permanently (neither ready nor sleeping, never rescheduled) and the
// kernel reschedules around it. Ported from the fault-containment
// behavior described in spec.md's error-handling design — task faults are
// isolated, unlike a fault raised from privileged (ISR) context, which
// spec.md requires to be fatal.
//
// A fault reported for the idle task itself is promoted to fatal: idle
// has no priority slot to stop (IdlePriority is outside the TaskList
// bitmaps), so there is nothing left for the kernel to schedule around.
func (k *Kernel) OnFault(prio task.Priority, cause error) {
	if prio == task.IdlePriority {
		klog.Fault("fault in idle task, fatal", "cause", cause)
		panic(cause)
	}

	klog.Fault("task fault contained", "priority", prio, "cause", cause)
	critical.With(k.dom, func(cs critical.Token) {
		i := int(prio)
		k.tasks.ready.Clear(i)
		k.tasks.sleeping.Clear(i)
		k.scheduleNext(cs)
	})
}
