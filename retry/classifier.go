// Copyright 2026 The habrok Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package retry

import (
	"net/http"

	"github.com/kurttheviking/habrok/request"
	"github.com/kurttheviking/habrok/transient"
)

// A Verdict is a classifier's ruling on one request attempt.
type Verdict int

const (
	// Succeed resolves the call with the attempt's response.
	Succeed Verdict = iota
	// Again schedules a retry of the attempt, unless the attempt
	// ceiling has been reached, in which case the executor surfaces the
	// attempt's failure as a terminal error.
	Again
	// Fail ends the call immediately with a terminal error built from
	// the attempt's failure.
	Fail
)

var verdictNames = []string{
	"Succeed",
	"Again",
	"Fail",
}

// String returns the name of the verdict.
func (v Verdict) String() string {
	if v < Succeed || v > Fail {
		return "Verdict(?)"
	}
	return verdictNames[int(v)]
}

// A Classifier classifies the most recent attempt within an execution,
// deciding whether the call succeeds, retries, or fails terminally.
//
// Implementations of Classifier must be pure functions of the attempt
// state: classifying the same execution state twice must yield the same
// verdict. They must also be safe for concurrent use by multiple
// goroutines.
//
// Use the built-in Default classifier, or implement your own. Use
// ClassifierFunc to convert an ordinary function into a Classifier.
type Classifier interface {
	Classify(e *request.Execution) Verdict
}

// The ClassifierFunc type is an adapter to allow the use of ordinary
// functions as classifiers.
//
// Every ClassifierFunc must be safe for concurrent use by multiple
// goroutines.
type ClassifierFunc func(e *request.Execution) Verdict

// Classify calls f(e).
func (f ClassifierFunc) Classify(e *request.Execution) Verdict {
	return f(e)
}

// Default classifies attempts using the standard rule set, evaluated in
// order:
//
// 1. An HTTP response with a status code below 400 succeeds.
//
// 2. A 429 (Too Many Requests) response is retried.
//
// 3. Any other response with a status code of 400 or above fails
// immediately.
//
// 4. A transport error in the connection-reset class (see
// transient.Retryable) is retried.
//
// 5. Any other transport error fails immediately.
var Default ClassifierFunc = classify

func classify(e *request.Execution) Verdict {
	if e.Err != nil {
		if transient.Retryable(e.Err) {
			return Again
		}
		return Fail
	}

	code := e.StatusCode()
	switch {
	case code < 400:
		return Succeed
	case code == http.StatusTooManyRequests:
		return Again
	default:
		return Fail
	}
}
