// Copyright 2026 The habrok Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package request models the inputs, in-flight state, and outputs of a
logical HTTP request executed by the resilient client.

A Plan describes a logical request: method, URL, headers, and a
pre-buffered body. One Plan may produce several lower-level http.Request
attempts if failed attempts are retried, so, unlike http.Request, it is
safe to send repeatedly.

An Execution carries the state of one in-flight Plan execution: the
current attempt number, the most recent response or error, and timing
information. It is handed to timeout policies, classifiers, and event
handlers as the execution progresses.

A Result is what a successful execution resolves to: the final status
code, headers, and decoded body.
*/
package request
