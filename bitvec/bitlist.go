package bitvec

// BitList is a fixed-capacity slot table: Width slots, occupancy tracked by
// a companion BitVec instead of a tagged option per slot. Ported from
// original_source/src/bitvec.rs's BitList<T>, whose own doc comment makes
// the point this port keeps: no per-slot discriminant byte, occupancy lives
// entirely in the bitmap.
type BitList[T any] struct {
	occ   BitVec
	slots [Width]T
}

// Insert places value in the lowest free slot and returns its index.
// Reports false if the table is full.
func (l *BitList[T]) Insert(value T) (int, bool) {
	idx := l.occ.FindFirstZero()
	if idx == NoBit {
		return 0, false
	}
	l.occ.Set(idx)
	l.slots[idx] = value
	return idx, true
}

// InsertAt places value at an explicit slot, failing if that slot is
// already occupied or out of range.
func (l *BitList[T]) InsertAt(idx int, value T) bool {
	if idx < 0 || idx >= Width || l.occ.Check(idx) {
		return false
	}
	l.occ.Set(idx)
	l.slots[idx] = value
	return true
}

// Get returns a pointer to the value at idx and whether the slot is
// occupied. The pointer is valid regardless of occupancy (it addresses the
// backing array slot), but callers must check the bool before trusting the
// value.
func (l *BitList[T]) Get(idx int) (*T, bool) {
	if idx < 0 || idx >= Width {
		return nil, false
	}
	return &l.slots[idx], l.occ.Check(idx)
}

// Remove vacates idx. Reports false if the slot was already free.
func (l *BitList[T]) Remove(idx int) bool {
	if idx < 0 || idx >= Width || !l.occ.Check(idx) {
		return false
	}
	l.occ.Clear(idx)
	var zero T
	l.slots[idx] = zero
	return true
}

// Used returns the occupancy bitmap.
func (l *BitList[T]) Used() BitVec {
	return l.occ
}

// SpaceLeft returns the number of free slots.
func (l *BitList[T]) SpaceLeft() int {
	return l.occ.CountZeroes()
}

// SpaceUsed returns the number of occupied slots.
func (l *BitList[T]) SpaceUsed() int {
	return l.occ.CountOnes()
}

// Entry pairs a slot index with its value, yielded by All.
type Entry[T any] struct {
	Index int
	Value *T
}

// All returns a zero-allocation cursor over occupied slots, highest index
// first.
func (l *BitList[T]) All() EntryIterator[T] {
	return EntryIterator[T]{list: l, it: l.occ.Iter()}
}

// EntryIterator walks a BitList's occupied slots.
type EntryIterator[T any] struct {
	list *BitList[T]
	it   Iterator
}

// Next returns the next occupied entry and true, or a zero Entry and false
// when exhausted.
func (e *EntryIterator[T]) Next() (Entry[T], bool) {
	idx, ok := e.it.Next()
	if !ok {
		return Entry[T]{}, false
	}
	return Entry[T]{Index: idx, Value: &e.list.slots[idx]}, true
}
