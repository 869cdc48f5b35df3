// Copyright 2026 The habrok Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package timeout

import (
	"time"

	"github.com/kurttheviking/habrok/request"
)

// A Policy sets the timeout for each HTTP request attempt within an
// execution.
//
// Implementations of Policy must be safe for concurrent use by multiple
// goroutines.
type Policy interface {
	// Timeout returns the timeout to set on the next request attempt
	// within the execution e.
	Timeout(e *request.Execution) time.Duration
}

// Infinite is a built-in policy which never times an attempt out.
var Infinite Policy = Fixed(1<<63 - 1)

// Default is the default timeout policy. It places no attempt-level
// bound on the transport, leaving timeouts to the underlying HTTPDoer:
// the only bound on a call's total duration is then the attempt ceiling
// times the maximum backoff delay, plus transport latency per attempt.
var Default = Infinite

// Fixed constructs a timeout policy that sets the same timeout d on
// every attempt. This is the typical timeout behavior supported by most
// retrying HTTP client software.
func Fixed(d time.Duration) Policy {
	return fixed(d)
}

type fixed time.Duration

func (p fixed) Timeout(_ *request.Execution) time.Duration {
	return time.Duration(p)
}
