// Copyright 2026 The habrok Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package habrok

// An Event identifies a plug-in point within the attempt/retry loop.
// Install event handlers in a Client to extend it with custom
// functionality.
type Event int

const (
	// BeforeExecutionStart fires before the execution starts. Only the
	// execution's plan field is set at this point.
	BeforeExecutionStart Event = iota
	// BeforeAttempt fires before each request attempt, after the
	// executor has built the attempt's http.Request (including merged
	// default headers) and set it on the execution.
	//
	// Handlers may adjust the request, but must clone its reference
	// typed fields (URL, Header) before changing them, because those
	// initially alias the plan's fields.
	BeforeAttempt
	// BeforeReadBody fires after an attempt produced an HTTP response
	// but before the response body is read and buffered. It fires for
	// every response regardless of status code, and never fires when
	// the attempt ended in a transport error.
	BeforeReadBody
	// AfterAttempt fires after each attempt concludes, whether it
	// succeeded or not, and before the classifier rules on it. At
	// least one of the execution's response and error fields is set;
	// both are set when the response arrived but its body could not be
	// read.
	AfterAttempt
	// AfterExecutionEnd fires after the execution ends, once the end
	// time is set and the final attempt's state is stable.
	AfterExecutionEnd
	// eventSentinel provides the total number of events typed as an
	// Event.
	eventSentinel

	// numEvents provides the total number of events typed as an int.
	numEvents = int(eventSentinel)
)

var eventNames = []string{
	"BeforeExecutionStart",
	"BeforeAttempt",
	"BeforeReadBody",
	"AfterAttempt",
	"AfterExecutionEnd",
}

// Events returns all events which can occur during an execution, in
// the order in which they would occur.
func Events() []Event {
	return []Event{
		BeforeExecutionStart,
		BeforeAttempt,
		BeforeReadBody,
		AfterAttempt,
		AfterExecutionEnd,
	}
}

// Name returns the name of the event.
func (evt Event) Name() string {
	return eventNames[int(evt)]
}

// String returns the name of the event.
func (evt Event) String() string {
	return evt.Name()
}
