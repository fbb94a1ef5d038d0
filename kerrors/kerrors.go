// Package kerrors defines the kernel's error taxonomy. Every non-blocking
// and timeout-bearing primitive returns one of these as a plain sentinel
// value — no wrapping, no stack capture.
//
// The rest of the pack shows richer error libraries (pkg/errors,
// cockroachdb/errors) for services with room to allocate on the error
// path. This kernel's error path runs inside the same critical sections
// its hot path does, on hardware this is eventually meant to target with
// no heap at all; see DESIGN.md for why none of those libraries is wired
// in here.
package kerrors

import "errors"

var (
	// ErrPriorityInUse is returned by AddTask when another task already
	// occupies the requested priority.
	ErrPriorityInUse = errors.New("rustos: priority already registered")

	// ErrSlotTableFull is returned by AddTask/NewTimer when the fixed-size
	// slot table has no free slot left.
	ErrSlotTableFull = errors.New("rustos: slot table full")

	// ErrUnknownPriority is returned by RemoveTask when no task occupies
	// the given priority.
	ErrUnknownPriority = errors.New("rustos: no task at priority")

	// ErrTimeout is returned by a *_timeout/Wait call whose deadline
	// elapsed before the primitive was satisfied.
	ErrTimeout = errors.New("rustos: operation timed out")

	// ErrFull is returned by a non-blocking push against a full buffer.
	ErrFull = errors.New("rustos: buffer full")

	// ErrEmpty is returned by a non-blocking pop against an empty buffer.
	ErrEmpty = errors.New("rustos: buffer empty")

	// ErrNotHolder is returned by Mutex.Release when the calling task does
	// not currently hold the mutex.
	ErrNotHolder = errors.New("rustos: caller does not hold the mutex")

	// ErrKernelFault marks a fault that originated in privileged (ISR)
	// context, which spec.md requires to be fatal.
	ErrKernelFault = errors.New("rustos: fault in privileged context")
)
