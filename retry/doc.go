// Copyright 2026 The habrok Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package retry decides the fate of each HTTP request attempt.
//
// A Classifier inspects the state of an execution after an attempt and
// returns one of three verdicts: Succeed resolves the call with the
// response, Again asks the executor to retry after a backoff delay, and
// Fail ends the call immediately with a terminal error.
//
// The Default classifier retries only conditions known to be transient,
// namely 429 (Too Many Requests) responses and connection-reset class
// transport errors. Everything else fails fast, so programming mistakes
// and server faults are not masked behind silent retries.
package retry
