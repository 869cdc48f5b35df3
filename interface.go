// Copyright 2026 The habrok Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package habrok

import (
	"github.com/kurttheviking/habrok/request"
)

// Doer is the interface that wraps the basic Do method.
//
// Do executes an HTTP request plan and returns the resolved result or
// the terminal error. Client implements the Doer interface, and any
// other implementation must behave substantially the same as Client.Do.
//
// Any Doer can be converted into an Executor via the Inflate function.
type Doer interface {
	Do(p *request.Plan) (*request.Result, error)
}

// Getter is the interface that wraps the basic Get method, which
// issues a GET to the specified URL following the executing client's
// retry and timeout policies.
type Getter interface {
	Get(url string) (*request.Result, error)
}

// Poster is the interface that wraps the basic Post method.
//
// The body parameter may be nil for an empty body, or may be any of
// the types supported by request.BodyBytes, namely: string; []byte;
// io.Reader; and io.ReadCloser.
type Poster interface {
	Post(url, contentType string, body interface{}) (*request.Result, error)
}

// Putter is the interface that wraps the basic Put method. The body
// parameter follows the same rules as Poster.
type Putter interface {
	Put(url, contentType string, body interface{}) (*request.Result, error)
}

// Patcher is the interface that wraps the basic Patch method. The body
// parameter follows the same rules as Poster.
type Patcher interface {
	Patch(url, contentType string, body interface{}) (*request.Result, error)
}

// Deleter is the interface that wraps the basic Delete method, which
// issues a DELETE to the specified URL.
type Deleter interface {
	Delete(url string) (*request.Result, error)
}

// IdleCloser is the interface that wraps the basic CloseIdleConnections
// method. If the underlying implementation does not support closing
// idle connections, CloseIdleConnections does nothing.
type IdleCloser interface {
	CloseIdleConnections()
}

// Executor is the interface that groups the basic Do, Get, Post, Put,
// Patch, Delete, and CloseIdleConnections methods.
//
// Any Doer can be converted into an Executor via the Inflate function.
type Executor interface {
	Doer
	Getter
	Poster
	Putter
	Patcher
	Deleter
	IdleCloser
}

// Get uses the specified Doer to issue a GET to the specified URL,
// using the same policies as d.Do.
//
// To send custom headers, use request.NewPlan and d.Do.
func Get(d Doer, url string) (*request.Result, error) {
	p, err := request.NewPlan("GET", url, nil)
	if err != nil {
		return nil, err
	}
	return d.Do(p)
}

// Post uses the specified Doer to issue a POST to the specified URL,
// using the same policies as d.Do.
func Post(d Doer, url, contentType string, body interface{}) (*request.Result, error) {
	return send(d, "POST", url, contentType, body)
}

// Put uses the specified Doer to issue a PUT to the specified URL,
// using the same policies as d.Do.
func Put(d Doer, url, contentType string, body interface{}) (*request.Result, error) {
	return send(d, "PUT", url, contentType, body)
}

// Patch uses the specified Doer to issue a PATCH to the specified URL,
// using the same policies as d.Do.
func Patch(d Doer, url, contentType string, body interface{}) (*request.Result, error) {
	return send(d, "PATCH", url, contentType, body)
}

// Delete uses the specified Doer to issue a DELETE to the specified
// URL, using the same policies as d.Do.
func Delete(d Doer, url string) (*request.Result, error) {
	p, err := request.NewPlan("DELETE", url, nil)
	if err != nil {
		return nil, err
	}
	return d.Do(p)
}

func send(d Doer, method, url, contentType string, body interface{}) (*request.Result, error) {
	b, err := request.BodyBytes(body)
	if err != nil {
		return nil, err
	}
	p, err := request.NewPlan(method, url, b)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		p.Header.Set("Content-Type", contentType)
	}
	return d.Do(p)
}

// Inflate converts any non-nil Doer into an Executor. This may be
// helpful for interop across library boundaries, i.e. if code that
// only has access to a Doer needs to call a function that requires an
// Executor.
func Inflate(d Doer) Executor {
	if d == nil {
		panic("habrok: nil doer")
	}

	if e, ok := d.(Executor); ok {
		return e
	}

	return inflated{d}
}

type inflated struct {
	doer Doer
}

func (i inflated) Do(p *request.Plan) (*request.Result, error) {
	return i.doer.Do(p)
}

func (i inflated) Get(url string) (*request.Result, error) {
	return Get(i.doer, url)
}

func (i inflated) Post(url, contentType string, body interface{}) (*request.Result, error) {
	return Post(i.doer, url, contentType, body)
}

func (i inflated) Put(url, contentType string, body interface{}) (*request.Result, error) {
	return Put(i.doer, url, contentType, body)
}

func (i inflated) Patch(url, contentType string, body interface{}) (*request.Result, error) {
	return Patch(i.doer, url, contentType, body)
}

func (i inflated) Delete(url string) (*request.Result, error) {
	return Delete(i.doer, url)
}

func (i inflated) CloseIdleConnections() {
	if ic, ok := i.doer.(IdleCloser); ok {
		ic.CloseIdleConnections()
	}
}
