package kernel

import (
	"rustos/bitvec"
	"rustos/ktime"
	"rustos/task"
)

// taskList is the slot table described in SPEC_FULL.md's data model: one
// slot per priority, occupancy tracked by `used`, readiness and sleep
// state tracked by two companion bitmaps, and a parallel array of
// remaining sleep ticks indexed the same way as the slots.
//
// Ported from original_source/src/kernel/tasks.rs's Kernel fields
// (processes, schedulable, sleeping, ticks) collapsed onto
// bitvec.BitList instead of a hand-rolled array-of-Option.
type taskList struct {
	slots      bitvec.BitList[*task.Task]
	ready      bitvec.BitVec
	sleeping   bitvec.BitVec
	sleepTicks [bitvec.Width]ktime.Ticks
}

func (l *taskList) get(prio task.Priority) (*task.Task, bool) {
	v, used := l.slots.Get(int(prio))
	if !used {
		return nil, false
	}
	return *v, true
}
