// Copyright 2026 The habrok Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package habrok

import (
	"github.com/rs/zerolog"

	"github.com/kurttheviking/habrok/request"
)

// LogHandler returns an event handler that writes structured logs for
// each attempt and each finished execution to the given zerolog
// logger. The client emits no logs unless a handler like this one is
// installed.
//
// Install it on every event it observes:
//
//	h := habrok.LogHandler(&log)
//	for _, evt := range habrok.Events() {
//		cl.Handlers.PushBack(evt, h)
//	}
//
// Attempt starts log at debug level. Attempt ends log at debug level
// on success and warn level on failure. Execution ends log at debug
// level with the total attempt count and duration.
func LogHandler(log *zerolog.Logger) Handler {
	return HandlerFunc(func(evt Event, e *request.Execution) {
		switch evt {
		case BeforeAttempt:
			log.Debug().
				Str("method", e.Plan.Method).
				Str("url", e.Plan.URL.String()).
				Int("attempt", e.Attempt).
				Msg("request attempt")
		case AfterAttempt:
			ev := log.Debug()
			if e.Err != nil {
				ev = log.Warn().Err(e.Err)
			}
			ev.
				Str("method", e.Plan.Method).
				Str("url", e.Plan.URL.String()).
				Int("attempt", e.Attempt).
				Int("status", e.StatusCode()).
				Msg("request attempt finished")
		case AfterExecutionEnd:
			ev := log.Debug()
			if e.Err != nil {
				ev = log.Warn().Err(e.Err)
			}
			ev.
				Str("method", e.Plan.Method).
				Str("url", e.Plan.URL.String()).
				Int("attempts", e.Attempt+1).
				Int("status", e.StatusCode()).
				Dur("elapsed", e.Duration()).
				Msg("request finished")
		}
	})
}
