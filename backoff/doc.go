// Copyright 2026 The habrok Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package backoff computes the delay inserted between a failed
// retryable attempt and the next attempt.
//
// A Scheduler only computes a duration; it never sleeps. Suspending
// until the delay has elapsed is the executor's job, which keeps
// schedulers trivially pure and testable.
//
// The built-in Exp scheduler grows the delay exponentially from a
// minimum and clamps it to a maximum. Configuring the minimum to zero
// collapses every delay to zero, which is the intended way to make
// retry-exhaustion tests run in microseconds instead of seconds.
package backoff
