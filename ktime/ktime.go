// Package ktime implements the kernel's strongly-typed time units: ticks,
// the monotonic system clock, durations, instants, countdowns and
// deadlines. Types are deliberately non-interchangeable (a Ticks cannot be
// added to a SystemTicks without an explicit conversion) and all arithmetic
// saturates instead of wrapping, ported from
// original_source/src/kernel/time.rs's saturating Add/Sub impls.
package ktime

import "math"

// Ticks is a relative tick count — the unit sleeps, timeouts and timer
// periods are expressed in.
type Ticks uint32

const MaxTicks Ticks = math.MaxUint32

// AddSaturating returns t+d, clamped to MaxTicks instead of wrapping.
func (t Ticks) AddSaturating(d Ticks) Ticks {
	sum := uint64(t) + uint64(d)
	if sum > uint64(MaxTicks) {
		return MaxTicks
	}
	return Ticks(sum)
}

// SubSaturating returns t-d, clamped to 0 instead of wrapping.
func (t Ticks) SubSaturating(d Ticks) Ticks {
	if d >= t {
		return 0
	}
	return t - d
}

// SystemTicks is the kernel's 64-bit monotonic tick counter, incremented
// once per call to Kernel.OnTick.
type SystemTicks uint64

const MaxSystemTicks SystemTicks = math.MaxUint64

// AddSaturating returns t+d, clamped to MaxSystemTicks.
func (t SystemTicks) AddSaturating(d Ticks) SystemTicks {
	sum := uint64(t) + uint64(d)
	if sum < uint64(t) { // overflow wrapped past MaxUint64
		return MaxSystemTicks
	}
	return SystemTicks(sum)
}

// SubSaturating returns t-d, clamped to 0.
func (t SystemTicks) SubSaturating(d SystemTicks) SystemTicks {
	if d >= t {
		return 0
	}
	return t - d
}

// Duration is a span of ticks.
type Duration struct {
	t Ticks
}

// NewDuration wraps a raw tick count as a Duration.
func NewDuration(t Ticks) Duration { return Duration{t: t} }

// Ticks returns the duration's length.
func (d Duration) Ticks() Ticks { return d.t }

// Instant is a captured value of the kernel's monotonic system clock.
type Instant struct {
	t SystemTicks
}

// NewInstant wraps a raw system-tick value as an Instant.
func NewInstant(t SystemTicks) Instant { return Instant{t: t} }

// Add returns the instant d ticks after i, saturating.
func (i Instant) Add(d Duration) Instant {
	return Instant{t: i.t.AddSaturating(d.t)}
}

// Sub returns the duration elapsed between i and earlier (i - earlier),
// saturating at zero if earlier is actually later.
func (i Instant) Sub(earlier Instant) Duration {
	if i.t <= earlier.t {
		return Duration{t: 0}
	}
	diff := i.t - earlier.t
	if diff > SystemTicks(MaxTicks) {
		return Duration{t: MaxTicks}
	}
	return Duration{t: Ticks(diff)}
}

// Before reports whether i happened strictly before other.
func (i Instant) Before(other Instant) bool { return i.t < other.t }

// After reports whether i happened strictly after other.
func (i Instant) After(other Instant) bool { return i.t > other.t }

// Raw returns the underlying system-tick value.
func (i Instant) Raw() SystemTicks { return i.t }

// CountDown wraps a reload period and a remaining-ticks counter.
type CountDown struct {
	period Duration
	remain Ticks
}

// NewCountDown creates a countdown already loaded with period.
func NewCountDown(period Duration) CountDown {
	return CountDown{period: period, remain: period.t}
}

// Decrement reduces the remaining count by one tick, saturating at zero.
func (c *CountDown) Decrement() {
	c.remain = c.remain.SubSaturating(1)
}

// IsExpired reports whether the countdown has reached zero.
func (c *CountDown) IsExpired() bool {
	return c.remain == 0
}

// Reload resets the remaining count back to the configured period.
func (c *CountDown) Reload() {
	c.remain = c.period.t
}

// Remaining returns the ticks left before expiry.
func (c *CountDown) Remaining() Ticks {
	return c.remain
}

// Deadline pairs a period with an absolute instant it next fires at.
type Deadline struct {
	period   Duration
	deadline Instant
}

// NewDeadline creates a deadline expiring period ticks after now.
func NewDeadline(now Instant, period Duration) Deadline {
	return Deadline{period: period, deadline: now.Add(period)}
}

// IsExpired reports whether now has reached or passed the deadline.
func (d Deadline) IsExpired(now Instant) bool {
	return !now.Before(d.deadline)
}

// Reload advances the deadline by one more period.
func (d *Deadline) Reload() {
	d.deadline = d.deadline.Add(d.period)
}
