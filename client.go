// Copyright 2026 The habrok Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package habrok

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/kurttheviking/habrok/backoff"
	"github.com/kurttheviking/habrok/request"
	"github.com/kurttheviking/habrok/retry"
	"github.com/kurttheviking/habrok/timeout"
)

// An HTTPDoer implements a Do method in the same manner as the Go
// standard library http.Client from the net/http package.
type HTTPDoer interface {
	// Do sends an HTTP request and returns an HTTP response, following
	// the contract documented on the Go standard library http.Client.
	Do(r *http.Request) (*http.Response, error)
}

// MaxAttempts is the fixed ceiling on transport attempts per logical
// call. A call makes at most MaxAttempts attempts, regardless of how
// many of them the classifier rules retryable.
const MaxAttempts = 5

const (
	headerAccept    = "Accept"
	headerRequestID = "X-Request-ID"
	headerUserAgent = "User-Agent"

	contentTypeJSON = "application/json"
	userAgent       = "habrok/1.0"
)

var emptyHandlers = HandlerGroup{}

// A Client is a resilient HTTP request executor. Its zero value is a
// valid configuration: it uses http.DefaultClient as the HTTPDoer, the
// default classifier and backoff schedule, no attempt timeout, and no
// event handlers.
//
// A Client sits above an HTTPDoer. The HTTPDoer owns the mechanics of
// one request attempt (connections, redirects, TLS); the Client owns
// the logical call: it classifies each attempt's outcome, retries
// transient failures with exponential backoff up to MaxAttempts total
// attempts, buffers and decodes response bodies, injects default
// headers, and normalizes terminal failures into either a StatusError
// (HTTP-origin) or the transport's own error, untouched.
//
// The Client's HTTPDoer typically holds cached TCP connections, so
// Client instances should be reused instead of created per request.
// A Client is safe for concurrent use by multiple goroutines; calls in
// flight at the same time are fully independent.
type Client struct {
	// HTTPDoer specifies the mechanics of sending HTTP requests and
	// receiving responses.
	//
	// If HTTPDoer is nil, http.DefaultClient is used.
	HTTPDoer HTTPDoer
	// Classifier rules on each attempt: succeed, retry, or fail.
	//
	// If Classifier is nil, retry.Default is used.
	Classifier retry.Classifier
	// Backoff computes the delay before each retry.
	//
	// If Backoff is nil, backoff.Default is used.
	Backoff backoff.Scheduler
	// TimeoutPolicy specifies how to set timeouts on individual
	// request attempts.
	//
	// If TimeoutPolicy is nil, timeout.Default is used, which sets no
	// attempt timeout.
	TimeoutPolicy timeout.Policy
	// Handlers allows custom handler chains to be invoked at
	// designated events during an execution.
	//
	// If Handlers is nil, no custom handlers are run.
	Handlers *HandlerGroup
	// DisableCustomHeaders suppresses injection of the default headers
	// (User-Agent, X-Request-ID, and Accept in JSON mode).
	DisableCustomHeaders bool
	// DisableAutomaticJSON turns off JSON handling: no Accept header
	// is injected and response bodies are returned as raw bytes
	// instead of being decoded.
	DisableAutomaticJSON bool
}

// Options configures a Client constructed with New.
type Options struct {
	// DisableCustomHeaders suppresses default header injection.
	DisableCustomHeaders bool
	// DisableAutomaticJSON turns off JSON handling.
	DisableAutomaticJSON bool
	// RetryMinDelay is the floor of the backoff schedule.
	RetryMinDelay time.Duration
	// RetryMaxDelay is the ceiling of the backoff schedule.
	//
	// A zero RetryMinDelay with a nonzero RetryMaxDelay collapses
	// every delay to zero, since exponential growth never leaves zero.
	// Leaving both bounds at zero means "use the default schedule",
	// not "no delay".
	RetryMaxDelay time.Duration
}

// New constructs a Client from the recognized options, with an
// exponential backoff schedule bounded by the configured delays. When
// both delay bounds are left at zero the client uses backoff.Default.
//
// For a schedule with no delay at all, set RetryMaxDelay alone, or set
// the Backoff field directly.
func New(opts Options) *Client {
	var scheduler backoff.Scheduler
	if opts.RetryMinDelay != 0 || opts.RetryMaxDelay != 0 {
		scheduler = backoff.Exp(opts.RetryMinDelay, opts.RetryMaxDelay)
	}
	return &Client{
		Backoff:              scheduler,
		DisableCustomHeaders: opts.DisableCustomHeaders,
		DisableAutomaticJSON: opts.DisableAutomaticJSON,
	}
}

// MaxAttempts returns the fixed attempt ceiling of the client. It is
// the package constant MaxAttempts, exposed on the instance for
// introspection.
func (c *Client) MaxAttempts() int {
	return MaxAttempts
}

// Do executes an HTTP request plan and returns the resolved result or
// the terminal error.
//
// Each attempt is classified by the client's Classifier. A Succeed
// verdict resolves the call with the attempt's status code, headers,
// and decoded body. A Fail verdict rejects the call immediately. An
// Again verdict schedules a retry after the backoff delay, unless the
// MaxAttempts ceiling is reached, in which case the last attempt's
// failure is surfaced. Exactly one result or one error is returned per
// call.
//
// An error from the transport (including a failure to read the
// response body) is returned to the caller exactly as produced, with
// no wrapping. An HTTP response with status 400 or above produces a
// *StatusError. Waiting between attempts is done on a timer awaited
// alongside the plan's context, so cancelling the context interrupts
// a backoff wait as well as an in-flight attempt.
func (c *Client) Do(p *request.Plan) (*request.Result, error) {
	e := request.Execution{
		Plan: p,
	}

	doer := c.doer()
	classifier := c.classifier()
	scheduler := c.scheduler()

	timeoutPolicy := c.TimeoutPolicy
	if timeoutPolicy == nil {
		timeoutPolicy = timeout.Default
	}

	handlers := c.Handlers
	if handlers == nil {
		handlers = &emptyHandlers
	}

	jsonMode := !c.DisableAutomaticJSON
	requestID := ""
	if !c.DisableCustomHeaders {
		requestID = uuid.NewString()
	}

	handlers.run(BeforeExecutionStart, &e)
	e.Start = time.Now()

	var err error
RetryLoop:
	for {
		c.sendAndReceive(p, &e, doer, handlers, timeoutPolicy, requestID, jsonMode)
		handlers.run(AfterAttempt, &e)
		if ctxErr := p.Context().Err(); ctxErr != nil {
			if e.Err == nil {
				e.Err = ctxErr
			}
			err = e.Err
			break
		}
		switch classifier.Classify(&e) {
		case retry.Succeed:
			err = nil
			break RetryLoop
		case retry.Fail:
			err = normalize(&e, jsonMode)
			break RetryLoop
		case retry.Again:
			next := e.Attempt + 1
			if next >= MaxAttempts {
				err = normalize(&e, jsonMode)
				break RetryLoop
			}
			timer := time.NewTimer(scheduler.Delay(next))
			select {
			case <-timer.C:
			case <-p.Context().Done():
				timer.Stop()
				e.Err = p.Context().Err()
				err = e.Err
				break RetryLoop
			}
			e.Response = nil
			e.Body = nil
			e.Err = nil
			e.Attempt = next
		}
	}

	e.End = time.Now()
	handlers.run(AfterExecutionEnd, &e)
	if err != nil {
		return nil, err
	}
	return &request.Result{
		StatusCode: e.StatusCode(),
		Header:     e.Header(),
		Body:       decodeBody(e.Body, jsonMode),
	}, nil
}

func (c *Client) sendAndReceive(p *request.Plan, e *request.Execution, doer HTTPDoer, handlers *HandlerGroup, timeoutPolicy timeout.Policy, requestID string, jsonMode bool) {
	ctx, cancel := context.WithTimeout(p.Context(), timeoutPolicy.Timeout(e))
	defer cancel()
	e.Request = p.ToRequest(ctx)
	c.mergeHeaders(e.Request, requestID, jsonMode)
	handlers.run(BeforeAttempt, e)
	var err error
	e.Response, err = doer.Do(e.Request)
	if err != nil {
		e.Err = err
		return
	}
	readBody(e, handlers)
}

// mergeHeaders injects the default headers underneath any headers the
// caller set on the plan. The request header map aliases the plan's,
// so it is cloned before injection to keep the plan immutable.
func (c *Client) mergeHeaders(r *http.Request, requestID string, jsonMode bool) {
	if c.DisableCustomHeaders {
		return
	}
	r.Header = r.Header.Clone()
	if r.Header.Get(headerUserAgent) == "" {
		r.Header.Set(headerUserAgent, userAgent)
	}
	if r.Header.Get(headerRequestID) == "" {
		r.Header.Set(headerRequestID, requestID)
	}
	if jsonMode && r.Header.Get(headerAccept) == "" {
		r.Header.Set(headerAccept, contentTypeJSON)
	}
}

func readBody(e *request.Execution, handlers *HandlerGroup) {
	defer func() {
		_ = e.Response.Body.Close()
	}()
	handlers.run(BeforeReadBody, e)
	var err error
	e.Body, err = io.ReadAll(e.Response.Body)
	if err != nil {
		e.Err = err
	}
}

// decodeBody decodes a buffered response body per the JSON mode of the
// call. A body that is not valid JSON stays raw rather than failing
// the call.
func decodeBody(body []byte, jsonMode bool) interface{} {
	if !jsonMode || len(body) == 0 {
		return body
	}
	var v interface{}
	if err := json.Unmarshal(body, &v); err != nil {
		return body
	}
	return v
}

// Get issues a GET to the specified URL, using the same policies
// followed by Do.
//
// To send custom headers, use request.NewPlan and Client.Do.
func (c *Client) Get(url string) (*request.Result, error) {
	return Get(c, url)
}

// Post issues a POST to the specified URL, using the same policies
// followed by Do.
//
// The body parameter may be nil for an empty body, or may be any of
// the types supported by request.BodyBytes, namely: string; []byte;
// io.Reader; and io.ReadCloser.
func (c *Client) Post(url, contentType string, body interface{}) (*request.Result, error) {
	return Post(c, url, contentType, body)
}

// Put issues a PUT to the specified URL, using the same policies
// followed by Do. The body parameter follows the same rules as Post.
func (c *Client) Put(url, contentType string, body interface{}) (*request.Result, error) {
	return Put(c, url, contentType, body)
}

// Patch issues a PATCH to the specified URL, using the same policies
// followed by Do. The body parameter follows the same rules as Post.
func (c *Client) Patch(url, contentType string, body interface{}) (*request.Result, error) {
	return Patch(c, url, contentType, body)
}

// Delete issues a DELETE to the specified URL, using the same policies
// followed by Do.
func (c *Client) Delete(url string) (*request.Result, error) {
	return Delete(c, url)
}

// CloseIdleConnections invokes the same method on the client's
// underlying HTTPDoer, if it has one; otherwise it does nothing.
func (c *Client) CloseIdleConnections() {
	if ic, ok := c.doer().(IdleCloser); ok {
		ic.CloseIdleConnections()
	}
}

func (c *Client) doer() HTTPDoer {
	if c.HTTPDoer == nil {
		return http.DefaultClient
	}
	return c.HTTPDoer
}

func (c *Client) classifier() retry.Classifier {
	if c.Classifier == nil {
		return retry.Default
	}
	return c.Classifier
}

func (c *Client) scheduler() backoff.Scheduler {
	if c.Backoff == nil {
		return backoff.Default
	}
	return c.Backoff
}
