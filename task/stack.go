package task

import "runtime"

// wordSize is the machine word size in bytes this kernel's stack
// accounting assumes, matching the 64-bit priority bitmap width used
// throughout the rest of the kernel.
const wordSize = 8

// Stack tracks a task's statically-allocated stack storage and its
// high-water mark.
//
// On the target hardware this owns the raw memory the task's registers get
// seeded into and the stack pointer walks up and down inside; see
// SPEC_FULL.md §4.4 for why that has no literal Go equivalent. Here it
// owns nothing but a capacity check and a watermark sampled from the
// actual goroutine stack the task body happens to be running on.
type Stack struct {
	capacityWords int
	watermark     int
}

func newStack(words []uintptr) *Stack {
	if len(words) < MinStackWords {
		panic("rustos: stack must be at least MinStackWords words")
	}
	return &Stack{capacityWords: len(words)}
}

// recordWatermark takes the byte length of the current goroutine's
// runtime.Stack trace text (capped at 4096 bytes), divides it by wordSize
// and folds the result into the high-water mark — a proxy for stack
// depth, since Go exposes no stack pointer. Called from Task.ParkUntilResumed, which only
// ever runs on the owning task's own goroutine, so runtime.Stack(false)
// reports that task's stack and no other's.
func (s *Stack) recordWatermark() {
	var buf [4096]byte
	n := runtime.Stack(buf[:], false)
	words := n / wordSize
	if words > s.watermark {
		s.watermark = words
	}
}
