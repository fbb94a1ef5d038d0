// Package critical implements the scoped critical-section discipline the
// rest of the kernel mutates its shared state under.
//
// On real hardware a critical section disables all maskable interrupts; on
// this port's simulated HAL (see hal/simhal) the single logical CPU is
// realized as a set of goroutines arbitrated by one mutex, so holding that
// mutex *is* masking interrupts — it excludes every other goroutine that
// would be an ISR on real hardware (the tick driver, timer callbacks) just
// as disabling interrupts excludes them on the single real core.
package critical

import "sync"

// Domain is the lock a Token is minted from. Each Kernel owns one Domain
// for its scheduler state; each stream.Queue and stream.StreamBuffer owns
// a separate Domain of its own.
type Domain struct {
	mu sync.Mutex
}

// Token is a scoped marker of critical-section ownership. It carries no
// state; its only purpose is to be required by APIs that must not be
// called outside a critical section, so that such a call site has to
// name a Token. Nothing checks it: Token is an exported empty struct that
// can be built without Enter, and a missing Exit is not detected. Token is intentionally
// copyable (Go has no linear types to forbid that), but the convention
// followed throughout this codebase is: obtain it, use it for the
// duration of the call that obtained it, let it go out of scope; never
// store one in a struct.
type Token struct{}

// Enter acquires dom and returns a Token. The caller must call Exit exactly
// once, typically via a deferred call right after Enter.
func Enter(dom *Domain) Token {
	dom.mu.Lock()
	return Token{}
}

// Exit releases dom. Calling Exit without a matching Enter, or more than
// once per Enter, is a programming error (it would unlock a mutex the
// caller does not hold).
func Exit(dom *Domain) {
	dom.mu.Unlock()
}

// With runs fn with dom held, guaranteeing release even if fn panics —
// the usual entry point for short critical sections that don't need to
// thread a Token through several calls.
func With(dom *Domain, fn func(Token)) {
	tok := Enter(dom)
	defer Exit(dom)
	fn(tok)
}
