// Package klog is the kernel's trace sink: scheduler decisions, timer
// fires and faults all funnel through here instead of ad-hoc fmt.Printf,
// the way SUPRAXCore.Stats() centralizes its own counters
// into one reporting surface rather than scattering prints through
// Dispatch/Issue/Writeback.
//
// Built on log/slog rather than a third-party structured-logging library:
// no example in this pack ships one with real source to ground a choice
// on, and a kernel that exists to demonstrate zero-heap-churn scheduling
// shouldn't default to a logging stack heavier than the standard library
// already provides. See DESIGN.md.
package klog

import (
	"log/slog"
	"os"
)

var logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

// SetHandler swaps the package-wide handler, letting an application or a
// test capture kernel trace output.
func SetHandler(h slog.Handler) {
	logger = slog.New(h)
}

// Scheduling logs a scheduler decision: a context switch, a task entering
// sleep/stop/idle, a fault containment.
func Scheduling(msg string, args ...any) {
	logger.Debug(msg, args...)
}

// Info logs a routine kernel event (timer registered, task registered).
func Info(msg string, args ...any) {
	logger.Info(msg, args...)
}

// Warn logs a recoverable anomaly (timeout elapsed, queue full under a
// dropping push).
func Warn(msg string, args ...any) {
	logger.Warn(msg, args...)
}

// Fault logs a task fault or kernel fault. Kernel faults are logged here
// immediately before the caller panics, since a kernel fault is fatal.
func Fault(msg string, args ...any) {
	logger.Error(msg, args...)
}
