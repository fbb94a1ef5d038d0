package ksync

import (
	"rustos/bitvec"
	"rustos/task"
)

// Rendezvous is a one-shot barrier over a fixed set of priorities
// established at construction. Ported from Rendezvous::meet in
// original_source/src/kernel/processes.rs.
//
// The mask is not mutable after NewRendezvous — spec.md leaves dynamic
// remasking as an open question and declines to implement it, since
// changing the mask after some tasks have already arrived would need
// extra bookkeeping (waking tasks no longer required to arrive) this
// port doesn't attempt either.
type Rendezvous struct {
	sched   task.Scheduler
	mask    bitvec.BitVec
	arrived bitvec.AtomicBitVec
}

// NewRendezvous returns a Rendezvous requiring every priority in mask to
// call Meet before any of them proceeds.
func NewRendezvous(sched task.Scheduler, mask bitvec.BitVec) *Rendezvous {
	return &Rendezvous{sched: sched, mask: mask}
}

// Meet records self's arrival. If every priority in the mask has now
// arrived, every arrived task is marked ready in one scheduling
// operation and the arrived set resets to empty; otherwise self is
// stopped until the rest of the mask arrives.
func (r *Rendezvous) Meet(self *task.Task) {
	r.arrived.Set(int(self.Priority()))
	released := r.arrived.Load()
	if !released.SupersetOf(r.mask) {
		self.Stop()
		return
	}

	r.zeroArrived(released)
	if r.sched.ProcessReadyMask(released) {
		self.ParkUntilResumed()
	}
}

func (r *Rendezvous) zeroArrived(mask bitvec.BitVec) {
	it := mask.Iter()
	for {
		i, ok := it.Next()
		if !ok {
			return
		}
		r.arrived.Clear(i)
	}
}
