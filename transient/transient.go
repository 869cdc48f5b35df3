// Copyright 2026 The habrok Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transient

import (
	"errors"
	"syscall"
)

// A Category is the transience category of an error, as reported by
// Categorize.
//
// Category Not means a retry after encountering the error is very
// unlikely to succeed. Every other category means the error has some
// prospect of clearing up on its own, although not every transient
// category is retried by default (see Retryable).
type Category int

const (
	// Not indicates any non-transient error.
	Not Category = iota
	// Timeout indicates a client-side timeout: the error, or one of
	// its wrapped causes, has a Timeout method reporting true. The
	// remote service may merely be slow, so a later attempt could
	// succeed, but the default retryable set excludes timeouts because
	// repeating a request that already consumed its full time budget
	// tends to compound the slowness rather than cure it.
	Timeout
	// ConnReset indicates the remote host sent an RST on an active TCP
	// connection, i.e. the error or one of its wrapped causes equals
	// syscall.ECONNRESET.
	//
	// A reset typically means the remote process went away mid-request,
	// which is common during deploys and load-balancer rotation, so a
	// retry has a high probability of success.
	ConnReset
	// ConnRefused indicates the remote host refused the connection,
	// i.e. the error or one of its wrapped causes equals
	// syscall.ECONNREFUSED.
	//
	// Refusal can be permanent (nothing listens on the port) but also
	// happens while a service is restarting, so it is classified with
	// the reset family.
	ConnRefused
)

// Categorize returns the transience category of err. A nil error, and
// any error that is not transient from the perspective of completing an
// HTTP request attempt, both produce Not.
//
// Categorize inspects wrapped causes via errors.As, not just err
// itself. It deliberately ignores the Temporary method found on some
// net errors, whose semantics are too loose to base retry decisions on.
func Categorize(err error) Category {
	if err == nil {
		return Not
	}

	var t timeouter
	if errors.As(err, &t) && t.Timeout() {
		return Timeout
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		switch errno {
		case syscall.ECONNRESET:
			return ConnReset
		case syscall.ECONNREFUSED:
			return ConnRefused
		}
	}

	return Not
}

// Retryable reports whether err belongs to the connection-reset class
// of transient errors that the default classifier retries: ConnReset
// and ConnRefused. Timeouts are transient but not retryable by default.
func Retryable(err error) bool {
	switch Categorize(err) {
	case ConnReset, ConnRefused:
		return true
	default:
		return false
	}
}

type timeouter interface {
	Timeout() bool
}
