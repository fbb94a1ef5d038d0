package ktime

import "testing"

func TestTicksSaturatingAdd(t *testing.T) {
	if got := MaxTicks.AddSaturating(5); got != MaxTicks {
		t.Fatalf("want saturated at MaxTicks, got %d", got)
	}
	if got := Ticks(10).AddSaturating(5); got != 15 {
		t.Fatalf("want 15, got %d", got)
	}
}

func TestTicksSaturatingSub(t *testing.T) {
	if got := Ticks(3).SubSaturating(5); got != 0 {
		t.Fatalf("want 0, got %d", got)
	}
	if got := Ticks(10).SubSaturating(5); got != 5 {
		t.Fatalf("want 5, got %d", got)
	}
}

func TestInstantAddSub(t *testing.T) {
	start := NewInstant(100)
	later := start.Add(NewDuration(50))
	if later.Raw() != 150 {
		t.Fatalf("want 150, got %d", later.Raw())
	}

	elapsed := later.Sub(start)
	if elapsed.Ticks() != 50 {
		t.Fatalf("want 50, got %d", elapsed.Ticks())
	}

	// Sub saturates at zero when earlier is actually later.
	if start.Sub(later).Ticks() != 0 {
		t.Fatalf("want 0 when earlier > self, got %d", start.Sub(later).Ticks())
	}
}

func TestInstantOrdering(t *testing.T) {
	a := NewInstant(10)
	b := NewInstant(20)
	if !a.Before(b) || a.After(b) {
		t.Fatalf("expected a before b")
	}
	if !b.After(a) || b.Before(a) {
		t.Fatalf("expected b after a")
	}
}

func TestCountDown(t *testing.T) {
	c := NewCountDown(NewDuration(3))
	if c.IsExpired() {
		t.Fatalf("freshly loaded countdown should not be expired")
	}
	c.Decrement()
	c.Decrement()
	if c.IsExpired() {
		t.Fatalf("should not be expired yet: remaining=%d", c.Remaining())
	}
	c.Decrement()
	if !c.IsExpired() {
		t.Fatalf("should be expired after 3 decrements")
	}
	// further decrements saturate, never go negative
	c.Decrement()
	if !c.IsExpired() || c.Remaining() != 0 {
		t.Fatalf("should stay expired at zero, got remaining=%d", c.Remaining())
	}
	c.Reload()
	if c.IsExpired() || c.Remaining() != 3 {
		t.Fatalf("reload should reset remaining to period")
	}
}

func TestDeadline(t *testing.T) {
	now := NewInstant(0)
	d := NewDeadline(now, NewDuration(10))

	if d.IsExpired(NewInstant(5)) {
		t.Fatalf("should not be expired before the period elapses")
	}
	if !d.IsExpired(NewInstant(10)) {
		t.Fatalf("should be expired exactly at the period")
	}
	if !d.IsExpired(NewInstant(20)) {
		t.Fatalf("should stay expired afterwards")
	}

	d.Reload()
	if d.IsExpired(NewInstant(10)) {
		t.Fatalf("reload should push the deadline out by another period")
	}
	if !d.IsExpired(NewInstant(20)) {
		t.Fatalf("reloaded deadline should now be at 20")
	}
}

func TestFrequencyConversions(t *testing.T) {
	if got := MHz(1).ToHz(); got != 1_000_000 {
		t.Fatalf("want 1_000_000, got %d", got)
	}
	if got := KHz(1).ToHz(); got != 1_000 {
		t.Fatalf("want 1_000, got %d", got)
	}
	if got := Hz(8_000_000).PeriodTicks(1_000); got != 8_000 {
		t.Fatalf("want 8000 ticks per period, got %d", got)
	}
}
