// Copyright 2026 The habrok Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package habrok is a resilient HTTP request executor: a thin layer
between your code and a generic HTTP transport that adds automatic
retry with exponential backoff, outcome classification, and normalized
success and error results.

Basic usage looks like the Go standard HTTP client:

	cl := habrok.New(habrok.Options{})
	result, err := cl.Get("https://example.com/things/123")
	if err != nil {
		var se *habrok.StatusError
		if errors.As(err, &se) {
			// HTTP-origin failure: se.StatusCode, se.Reason, se.Data
		}
		// otherwise a transport error, exactly as the transport
		// produced it
		return err
	}
	// result.StatusCode, result.Header, result.Body (JSON-decoded)

Each logical call makes up to MaxAttempts transport attempts. A 429
response or a connection-reset class transport error is retried after a
backoff delay; any other failure surfaces immediately. The classifier
(retry package), the backoff schedule (backoff package), and the per
attempt timeout (timeout package) can all be replaced on the Client.

Event handlers may be installed on a Client to observe or extend the
attempt/retry loop; LogHandler wires the loop to a zerolog logger.
*/
package habrok
