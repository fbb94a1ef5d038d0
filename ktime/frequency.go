package ktime

// Hz, KHz and MHz are strongly-typed frequency units supporting the
// conversions and division-to-period operations original_source/src/
// kernel/time.rs defines on Hz/kHz/MHz. The simulated tick source in
// hal/simhal does not use them: it runs at a fixed 1ms per tick.
type Hz uint64
type KHz uint64
type MHz uint64

// ToHz converts a KHz value to Hz.
func (k KHz) ToHz() Hz { return Hz(k) * 1_000 }

// ToHz converts an MHz value to Hz.
func (m MHz) ToHz() Hz { return Hz(m) * 1_000_000 }

// ToKHz converts an Hz value down to KHz (truncating).
func (h Hz) ToKHz() KHz { return KHz(h / 1_000) }

// ToMHz converts an Hz value down to MHz (truncating).
func (h Hz) ToMHz() MHz { return MHz(h / 1_000_000) }

// PeriodTicks returns how many ticks of a base clock running at base elapse
// per cycle of target — the computation that derives a hardware timer
// reload value from a target tick frequency, e.g.
// base.PeriodTicks(KHz(1).ToHz()) for a 1kHz (1ms) tick out of a given
// core clock.
func (base Hz) PeriodTicks(target Hz) uint64 {
	if target == 0 {
		return 0
	}
	return uint64(base) / uint64(target)
}
