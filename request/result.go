// Copyright 2026 The habrok Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"net/http"
)

// A Result is the resolved value of a successful execution: the status
// code, headers, and body of the final (non-retried) attempt, returned
// verbatim to the caller.
//
// When the executing client has automatic JSON handling on, Body holds
// the JSON-decoded value (a map[string]interface{}, []interface{},
// string, float64, bool, or nil); a body that is not valid JSON is left
// as its raw []byte. With automatic JSON off, Body is always the raw
// []byte.
type Result struct {
	// StatusCode is the HTTP status code of the final attempt. It is
	// always below 400.
	StatusCode int

	// Header contains the HTTP response headers of the final attempt.
	Header http.Header

	// Body is the response body, decoded as described above.
	Body interface{}
}
