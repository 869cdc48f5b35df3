// Copyright 2026 The habrok Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"context"
	"net/http"
	"time"
)

// An Execution is the state of a single Plan execution.
//
// The executor creates one Execution per logical call, updates it as
// attempts are made and retried, and consults it when classifying
// outcomes. Executions are never shared between concurrent calls.
//
// Timeout policies, classifiers, and event handlers may stash values on
// an Execution using SetValue and read them back using Value, but must
// treat the exported fields as read-only: the execution state drives
// the retry loop and corrupting it corrupts the call.
//
// After each attempt, exactly one of Response and Err describes the
// attempt's outcome (Err wins if both are set, which happens when the
// response arrived but its body could not be read). Classifiers switch
// on that discriminant.
type Execution struct {
	// Plan is the HTTP request plan being executed. It is never nil.
	Plan *Plan

	// Start is the time the execution started. It is assigned once,
	// when the execution starts, and is constant thereafter.
	Start time.Time

	// End is the time the execution ended. It contains the zero value
	// until the execution ends.
	End time.Time

	// Attempt is the zero-based number of the current request attempt.
	// It is zero on the initial attempt, one on the first retry, and so
	// on; it never decreases within an execution.
	Attempt int

	// Request is the HTTP request made, or about to be made, in the
	// current attempt.
	Request *http.Request

	// Response is the HTTP response received in the most recent
	// attempt, or nil if the attempt ended in an error, a current
	// attempt is underway, or the execution has not started.
	Response *http.Response

	// Body is the raw response body read after the most recent attempt.
	// Treat it as invalid whenever Err is non-nil: a partial read can
	// leave both fields set.
	Body []byte

	// Err is the transport error from the most recent attempt, exactly
	// as the HTTPDoer produced it. It fluctuates between nil and
	// non-nil values while the execution is in flight; once the
	// execution has ended it is stable.
	Err error

	// data holds arbitrary user values, see SetValue and Value.
	data context.Context
}

// StatusCode returns the status code of the HTTP response from the most
// recent attempt, or 0 if there is no response.
func (e *Execution) StatusCode() int {
	if e.Response == nil {
		return 0
	}
	return e.Response.StatusCode
}

// Header returns the HTTP response headers from the most recent
// attempt, or a nil header if there is no response. The nil header is
// safe for read-only use.
func (e *Execution) Header() http.Header {
	if e.Response == nil {
		var none http.Header
		return none
	}
	return e.Response.Header
}

// Duration returns the duration of the execution: zero before it
// starts, time elapsed since Start while it is in flight, and End minus
// Start once it has ended.
func (e *Execution) Duration() time.Duration {
	if !e.Started() {
		return 0
	} else if !e.Ended() {
		return time.Since(e.Start)
	}
	return e.End.Sub(e.Start)
}

// Started indicates whether the execution has started.
func (e *Execution) Started() bool {
	return e.Start != (time.Time{})
}

// Ended indicates whether the execution has ended. Once it has, there
// will be no further changes to the execution.
func (e *Execution) Ended() bool {
	return e.End != (time.Time{})
}

// SetValue associates an arbitrary value with the execution, for use by
// event handlers and policies.
//
// The key follows the rules of the key parameter on context.WithValue:
// it may not be nil, must be comparable, and should be of a caller
// defined type to avoid collisions.
func (e *Execution) SetValue(key, value interface{}) {
	ctx := e.data
	if ctx == nil {
		ctx = context.Background()
	}
	e.data = context.WithValue(ctx, key, value)
}

// Value returns the value associated with the execution for key, or nil
// if there is none.
func (e *Execution) Value(key interface{}) interface{} {
	if e.data == nil {
		return nil
	}
	return e.data.Value(key)
}
