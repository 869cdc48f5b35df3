// Copyright 2026 The habrok Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package habrok

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/kurttheviking/habrok/request"
)

// A StatusError is the terminal error for a call that ended with an
// HTTP response whose status code is 400 or above. Its message is the
// status reason phrase, so failures read naturally in logs ("Too Many
// Requests", "Internal Server Error").
//
// Transport-level failures are never shaped into a StatusError: they
// are returned to the caller exactly as the HTTPDoer produced them.
// Use errors.As, or the IsStatusError convenience function, to tell
// the two apart.
type StatusError struct {
	// StatusCode is the HTTP status code of the final attempt.
	StatusCode int
	// Reason is the status reason phrase, e.g. "Too Many Requests".
	Reason string
	// Data is the response body of the final attempt, decoded the same
	// way a successful Result body would be.
	Data interface{}
}

// Error returns the status reason phrase.
func (err *StatusError) Error() string {
	return err.Reason
}

// IsStatusError reports whether err is, or wraps, a StatusError, and
// returns it if so.
func IsStatusError(err error) (*StatusError, bool) {
	var se *StatusError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// normalize builds the terminal error for a classified failure. An
// HTTP-origin failure becomes a StatusError carrying the status code,
// reason phrase, and decoded body. A transport-origin failure passes
// through untouched, message text and all.
func normalize(e *request.Execution, jsonMode bool) error {
	if e.Err != nil {
		return e.Err
	}
	code := e.StatusCode()
	reason := http.StatusText(code)
	if reason == "" {
		reason = fmt.Sprintf("Status Code %d", code)
	}
	return &StatusError{
		StatusCode: code,
		Reason:     reason,
		Data:       decodeBody(e.Body, jsonMode),
	}
}
