// Copyright 2026 The habrok Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package backoff

import (
	"time"
)

// A Scheduler computes how long to wait before the retry with the given
// one-based ordinal. Delay must return a non-negative duration and must
// be safe for concurrent use by multiple goroutines.
//
// Use the built-in constructors Exp and Fixed, or implement your own
// Scheduler. Use SchedulerFunc to convert an ordinary function into a
// Scheduler.
type Scheduler interface {
	Delay(attempt int) time.Duration
}

// The SchedulerFunc type is an adapter to allow the use of ordinary
// functions as backoff schedulers.
//
// Every SchedulerFunc must be safe for concurrent use by multiple
// goroutines.
type SchedulerFunc func(attempt int) time.Duration

// Delay calls f(attempt).
func (f SchedulerFunc) Delay(attempt int) time.Duration {
	return f(attempt)
}

// Default delay bounds used when no explicit bounds are configured.
const (
	DefaultMinDelay = 100 * time.Millisecond
	DefaultMaxDelay = 2 * time.Second
)

// Default is the default backoff scheduler: exponential growth from
// DefaultMinDelay, doubling per retry, capped at DefaultMaxDelay.
var Default = Exp(DefaultMinDelay, DefaultMaxDelay)

// Fixed constructs a Scheduler that always returns the same delay. A
// negative d is treated as zero.
func Fixed(d time.Duration) Scheduler {
	if d < 0 {
		d = 0
	}
	return fixedScheduler(d)
}

type fixedScheduler time.Duration

func (s fixedScheduler) Delay(_ int) time.Duration {
	return time.Duration(s)
}

// Exp constructs a Scheduler implementing exponential backoff without
// jitter. The delay before retry n is min * 2**(n-1), clamped to the
// interval [min, max].
//
// Negative bounds are treated as zero, and a max below min is raised to
// min. A zero min yields an all-zero schedule, since exponential growth
// never leaves zero. That degeneration is deliberate: it lets tests
// exhaust the retry ceiling without incurring production delays.
func Exp(min, max time.Duration) Scheduler {
	if min < 0 {
		min = 0
	}
	if max < min {
		max = min
	}
	return expScheduler{min: min, max: max}
}

type expScheduler struct {
	min time.Duration
	max time.Duration
}

func (s expScheduler) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}

	exp := int64(1) << uint(attempt-1)
	if exp < 1 {
		// Shift overflowed.
		exp = 1<<63 - 1
	}

	d := int64(s.min) * exp
	if d < int64(s.min) || d > int64(s.max) {
		// Multiplication overflowed, or the ceiling was reached.
		d = int64(s.max)
	}

	return time.Duration(d)
}
