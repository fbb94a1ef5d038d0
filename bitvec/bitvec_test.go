package bitvec

import "testing"

func TestSetClearCheck(t *testing.T) {
	var v BitVec
	v.Set(3)
	v.Set(10)
	if !v.Check(3) || !v.Check(10) {
		t.Fatalf("expected bits 3 and 10 set, got %064b", v)
	}
	if v.Check(4) {
		t.Fatalf("bit 4 should not be set")
	}
	v.Clear(3)
	if v.Check(3) {
		t.Fatalf("bit 3 should have been cleared")
	}
}

func TestToggle(t *testing.T) {
	var v BitVec
	v.Toggle(5)
	if !v.Check(5) {
		t.Fatalf("toggle should have set bit 5")
	}
	v.Toggle(5)
	if v.Check(5) {
		t.Fatalf("toggle should have cleared bit 5")
	}
}

func TestFindHighestSet(t *testing.T) {
	var v BitVec
	if got := v.FindHighestSet(); got != NoBit {
		t.Fatalf("empty vector: want NoBit, got %d", got)
	}
	v.Set(2)
	v.Set(40)
	v.Set(7)
	if got := v.FindHighestSet(); got != 40 {
		t.Fatalf("want 40, got %d", got)
	}
}

func TestFindFirstSet(t *testing.T) {
	var v BitVec
	v.Set(40)
	v.Set(7)
	v.Set(2)
	if got := v.FindFirstSet(); got != 2 {
		t.Fatalf("want 2, got %d", got)
	}
}

func TestFindFirstZero(t *testing.T) {
	var v BitVec
	if got := v.FindFirstZero(); got != 0 {
		t.Fatalf("empty vector: want 0, got %d", got)
	}
	v.Set(0)
	v.Set(1)
	if got := v.FindFirstZero(); got != 2 {
		t.Fatalf("want 2, got %d", got)
	}
	full := BitVec(^uint64(0))
	if got := full.FindFirstZero(); got != NoBit {
		t.Fatalf("full vector: want NoBit, got %d", got)
	}
}

func TestCounts(t *testing.T) {
	var v BitVec
	v.Set(1)
	v.Set(2)
	v.Set(3)
	if v.CountOnes() != 3 {
		t.Fatalf("want 3 ones, got %d", v.CountOnes())
	}
	if v.CountZeroes() != Width-3 {
		t.Fatalf("want %d zeroes, got %d", Width-3, v.CountZeroes())
	}
	if v.IsEmpty() {
		t.Fatalf("should not be empty")
	}
	if !v.IsPopulated() {
		t.Fatalf("should be populated")
	}
}

func TestSetAlgebra(t *testing.T) {
	var a, b BitVec
	a.Set(1)
	a.Set(2)
	b.Set(2)
	b.Set(3)

	if got := a.And(b); got != (BitVec(1) << 2) {
		t.Fatalf("And: want bit 2 only, got %064b", got)
	}
	wantOr := BitVec(0)
	wantOr.Set(1)
	wantOr.Set(2)
	wantOr.Set(3)
	if got := a.Or(b); got != wantOr {
		t.Fatalf("Or: want %064b, got %064b", wantOr, got)
	}

	if !a.Intersects(b) {
		t.Fatalf("a and b should intersect on bit 2")
	}

	var c BitVec
	c.Set(1)
	if !a.SupersetOf(c) {
		t.Fatalf("a should be a superset of c")
	}
	if a.SupersetOf(b) {
		t.Fatalf("a should not be a superset of b (b has bit 3)")
	}
}

func TestDifference(t *testing.T) {
	var self, pattern BitVec
	self.Set(1)
	pattern.Set(1)
	pattern.Set(2)

	// bits present in pattern but not in self
	got := self.Difference(pattern)
	want := BitVec(0)
	want.Set(2)
	if got != want {
		t.Fatalf("want %064b, got %064b", want, got)
	}
}

func TestIterHighToLow(t *testing.T) {
	var v BitVec
	v.Set(3)
	v.Set(40)
	v.Set(7)

	it := v.Iter()
	var order []int
	for {
		i, ok := it.Next()
		if !ok {
			break
		}
		order = append(order, i)
	}

	want := []int{40, 7, 3}
	if len(order) != len(want) {
		t.Fatalf("want %v, got %v", want, order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("want %v, got %v", want, order)
		}
	}
}
