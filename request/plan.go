// Copyright 2026 The habrok Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	urlpkg "net/url"
	"strings"
)

var template, _ = http.NewRequest("GET", "", nil)

const nilCtxMsg = "habrok/request: nil context"

// A Plan is the descriptor of a logical HTTP request to be executed by
// the resilient client.
//
// The request described by a Plan typically results in one lower-level
// http.Request attempt, but may result in several if failed attempts
// are retried. The Plan must not be modified once an attempt has begun;
// the executor and any installed event handlers treat it as immutable.
//
// Like http.Request, a Plan carries a context which spans the whole
// execution, covering every attempt and every backoff wait.
type Plan struct {
	// Method specifies the HTTP method (GET, POST, PUT, etc.). An
	// empty string means GET.
	Method string

	// URL specifies the URL to access.
	URL *urlpkg.URL

	// Header contains the request header fields to send. The executor
	// merges its default headers underneath these; a header present
	// here always wins.
	Header http.Header

	// Body is the pre-buffered request body. A nil or empty body means
	// no request body is sent.
	Body []byte

	// ctx spans the whole plan execution. Modify only by copying the
	// whole Plan using WithContext.
	ctx context.Context
}

// NewPlan wraps NewPlanWithContext using the background context.
//
// Parameter body may be nil (empty body), or it may be a string,
// []byte, io.Reader, or io.ReadCloser, per BodyBytes.
func NewPlan(method, url string, body interface{}) (*Plan, error) {
	return NewPlanWithContext(context.Background(), method, url, body)
}

// NewPlanWithContext returns a new Plan given a method, URL, and
// optional body.
//
// Parameter body may be nil (empty body), or it may be a string,
// []byte, io.Reader, or io.ReadCloser, per BodyBytes.
func NewPlanWithContext(ctx context.Context, method, url string, body interface{}) (*Plan, error) {
	if ctx == nil {
		return nil, errors.New(nilCtxMsg)
	}
	if method == "" {
		method = "GET"
	}
	if !validMethod(method) {
		return nil, fmt.Errorf("habrok/request: invalid method %q", method)
	}
	u, err := urlpkg.Parse(url)
	if err != nil {
		return nil, err
	}
	u.Host = removeEmptyPort(u.Host)
	b, err := BodyBytes(body)
	if err != nil {
		return nil, err
	}
	return &Plan{
		ctx:    ctx,
		Method: method,
		URL:    u,
		Header: make(http.Header),
		Body:   b,
	}, nil
}

// Context returns the plan's context, which controls cancellation of
// the overall execution. The returned context is always non-nil; it
// defaults to the background context.
func (p *Plan) Context() context.Context {
	if p.ctx != nil {
		return p.ctx
	}
	return context.Background()
}

// WithContext returns a shallow copy of p with its context changed to
// ctx, which must be non-nil.
//
// The context covers the entire lifetime of the plan execution: every
// request attempt, every backoff wait between attempts, and every event
// handler invocation.
func (p *Plan) WithContext(ctx context.Context) *Plan {
	if ctx == nil {
		panic(nilCtxMsg)
	}
	p2 := new(Plan)
	*p2 = *p
	p2.ctx = ctx
	return p2
}

// SetBasicAuth sets the plan's Authorization header to use HTTP Basic
// Authentication with the provided username and password, which are
// not encrypted.
func (p *Plan) SetBasicAuth(username, password string) {
	auth := username + ":" + password
	p.Header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(auth)))
}

// ToRequest creates an HTTP request corresponding to the plan, for one
// attempt. The context of the new request is set to ctx, which may not
// be nil.
func (p *Plan) ToRequest(ctx context.Context) *http.Request {
	r := template.WithContext(ctx)
	r.Method = p.Method
	r.URL = p.URL
	r.Header = p.Header
	if len(p.Body) > 0 {
		r.Body = io.NopCloser(bytes.NewReader(p.Body))
		r.GetBody = func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(p.Body)), nil
		}
		r.ContentLength = int64(len(p.Body))
	}
	r.Host = p.URL.Host
	return r
}

// methodSpecials lists the non-alphanumeric characters permitted in a
// token by RFC 7230 section 3.2.6.
const methodSpecials = "!#$%&'*+-.^_`|~"

// validMethod reports whether method is a valid HTTP token. An empty
// method never reaches here because it is interpreted as GET.
func validMethod(method string) bool {
	for _, r := range method {
		switch {
		case 'a' <= r && r <= 'z', 'A' <= r && r <= 'Z', '0' <= r && r <= '9':
		case strings.ContainsRune(methodSpecials, r):
		default:
			return false
		}
	}
	return true
}

// hasPort and removeEmptyPort are lifted verbatim from net/http/http.go.

func hasPort(s string) bool { return strings.LastIndex(s, ":") > strings.LastIndex(s, "]") }

func removeEmptyPort(host string) string {
	if hasPort(host) {
		return strings.TrimSuffix(host, ":")
	}
	return host
}
