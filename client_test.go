// Copyright 2026 The habrok Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package habrok

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/http2"

	"github.com/kurttheviking/habrok/backoff"
	"github.com/kurttheviking/habrok/request"
	"github.com/kurttheviking/habrok/retry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestClient(t *testing.T) {
	t.Run("happy path", testClientHappyPath)
	t.Run("verbs", testClientVerbs)
	t.Run("retry 429 exhausted", testClientRetry429)
	t.Run("terminal 500", testClientTerminal500)
	t.Run("retryable transport error", testClientRetryTransport)
	t.Run("terminal transport error", testClientTerminalTransport)
	t.Run("eventual success", testClientEventualSuccess)
	t.Run("zero delay", testClientZeroDelay)
	t.Run("default headers", testClientHeaders)
	t.Run("json handling", testClientJSON)
	t.Run("read body error", testClientBodyError)
	t.Run("plan cancel", testClientPlanCancel)
	t.Run("event order", testClientEventOrder)
	t.Run("concurrent calls", testClientConcurrent)
	t.Run("close idle connections", testClientCloseIdleConnections)
}

func testClientHappyPath(t *testing.T) {
	for _, server := range servers {
		t.Run(serverName(server), func(t *testing.T) {
			cl := &Client{HTTPDoer: server.Client()}
			i := &serverInstruction{StatusCode: 200, Body: `{"ok":true}`}
			r, err := cl.Do(i.toPlan(context.Background(), "POST", server))
			require.NoError(t, err)
			assert.Equal(t, 200, r.StatusCode)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			assert.Equal(t, map[string]interface{}{"ok": true}, r.Body)
		})
	}
	t.Run("http2 via x/net transport", func(t *testing.T) {
		tr, ok := http2Server.Client().Transport.(*http.Transport)
		require.True(t, ok)
		cl := &Client{
			HTTPDoer: &http.Client{
				Transport: &http2.Transport{TLSClientConfig: tr.TLSClientConfig},
			},
			Handlers: &HandlerGroup{},
		}
		var proto string
		cl.Handlers.PushBack(AfterAttempt, HandlerFunc(func(_ Event, e *request.Execution) {
			proto = e.Response.Proto
		}))
		i := &serverInstruction{StatusCode: 200, Body: `{"ok":true}`}
		r, err := cl.Do(i.toPlan(context.Background(), "POST", http2Server))
		require.NoError(t, err)
		assert.Equal(t, 200, r.StatusCode)
		assert.Equal(t, "HTTP/2.0", proto)
	})
}

func testClientVerbs(t *testing.T) {
	testCases := []struct {
		method string
		body   bool
		action func(cl *Client) (*request.Result, error)
	}{
		{"GET", false, func(cl *Client) (*request.Result, error) { return cl.Get("test") }},
		{"POST", true, func(cl *Client) (*request.Result, error) { return cl.Post("test", "text/plain", "foo") }},
		{"PUT", true, func(cl *Client) (*request.Result, error) { return cl.Put("test", "text/plain", "foo") }},
		{"PATCH", true, func(cl *Client) (*request.Result, error) { return cl.Patch("test", "text/plain", "foo") }},
		{"DELETE", false, func(cl *Client) (*request.Result, error) { return cl.Delete("test") }},
	}
	for _, testCase := range testCases {
		t.Run(testCase.method, func(t *testing.T) {
			m := newMockHTTPDoer(t)
			m.On("Do", mock.MatchedBy(func(r *http.Request) bool {
				if r.Method != testCase.method {
					return false
				}
				if testCase.body {
					return r.Header.Get("Content-Type") == "text/plain"
				}
				return true
			})).Return(textResponse(200, "hi"), nil).Once()
			cl := &Client{HTTPDoer: m, DisableAutomaticJSON: true}
			r, err := testCase.action(cl)
			require.NoError(t, err)
			assert.Equal(t, 200, r.StatusCode)
			assert.Equal(t, []byte("hi"), r.Body)
			m.AssertExpectations(t)
		})
	}
}

func testClientRetry429(t *testing.T) {
	t.Parallel()
	var calls int32
	cl := &Client{
		HTTPDoer: doerFunc(func(_ *http.Request) (*http.Response, error) {
			atomic.AddInt32(&calls, 1)
			return jsonResponse(429, `{"error":"slow down"}`), nil
		}),
		Backoff: backoff.Fixed(0),
	}
	r, err := cl.Get("test")
	assert.Nil(t, r)
	assert.Equal(t, int32(MaxAttempts), atomic.LoadInt32(&calls),
		"transport invoked exactly MaxAttempts times")
	se, ok := IsStatusError(err)
	require.True(t, ok)
	assert.Equal(t, 429, se.StatusCode)
	assert.EqualError(t, se, "Too Many Requests")
	assert.Equal(t, map[string]interface{}{"error": "slow down"}, se.Data)
}

func testClientTerminal500(t *testing.T) {
	t.Parallel()
	var calls int32
	cl := &Client{
		HTTPDoer: doerFunc(func(_ *http.Request) (*http.Response, error) {
			atomic.AddInt32(&calls, 1)
			return jsonResponse(500, `{"cause":"kaboom"}`), nil
		}),
		Backoff: backoff.Fixed(0),
	}
	r, err := cl.Get("test")
	assert.Nil(t, r)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "500 is not retried")
	se, ok := IsStatusError(err)
	require.True(t, ok)
	assert.Equal(t, 500, se.StatusCode)
	assert.EqualError(t, se, "Internal Server Error")
	assert.Equal(t, map[string]interface{}{"cause": "kaboom"}, se.Data)
}

func testClientRetryTransport(t *testing.T) {
	t.Parallel()
	cause := &url.Error{Op: "Get", URL: "test", Err: syscall.ECONNRESET}
	var calls int32
	cl := &Client{
		HTTPDoer: doerFunc(func(_ *http.Request) (*http.Response, error) {
			atomic.AddInt32(&calls, 1)
			return nil, cause
		}),
		Backoff: backoff.Fixed(0),
	}
	r, err := cl.Get("test")
	assert.Nil(t, r)
	assert.Equal(t, int32(MaxAttempts), atomic.LoadInt32(&calls))
	assert.Same(t, cause, err, "transport error surfaces unmodified after exhaustion")
	assert.EqualError(t, err, cause.Error())
	_, ok := IsStatusError(err)
	assert.False(t, ok)
}

func testClientTerminalTransport(t *testing.T) {
	t.Parallel()
	cause := errors.New("x509: certificate signed by unknown authority")
	var calls int32
	cl := &Client{
		HTTPDoer: doerFunc(func(_ *http.Request) (*http.Response, error) {
			atomic.AddInt32(&calls, 1)
			return nil, cause
		}),
	}
	r, err := cl.Get("test")
	assert.Nil(t, r)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Same(t, cause, err)
}

func testClientEventualSuccess(t *testing.T) {
	t.Run("mock transport", func(t *testing.T) {
		var calls int32
		cl := &Client{
			HTTPDoer: doerFunc(func(_ *http.Request) (*http.Response, error) {
				if atomic.AddInt32(&calls, 1) < 3 {
					return jsonResponse(429, `{"error":"slow down"}`), nil
				}
				return jsonResponse(200, `{"ok":true}`), nil
			}),
			Backoff: backoff.Fixed(0),
		}
		r, err := cl.Get("test")
		require.NoError(t, err)
		assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
		assert.Equal(t, 200, r.StatusCode)
		assert.Equal(t, map[string]interface{}{"ok": true}, r.Body)
	})
	t.Run("live server", func(t *testing.T) {
		cl := &Client{
			HTTPDoer: httpServer.Client(),
			Backoff:  backoff.Fixed(0),
		}
		i := &serverInstruction{StatusCode: 200, Body: `{"ok":true}`, FailFirst: 2}
		r, err := cl.Do(i.toPlan(context.Background(), "POST", httpServer))
		require.NoError(t, err)
		assert.Equal(t, 200, r.StatusCode)
		assert.Equal(t, map[string]interface{}{"ok": true}, r.Body)
	})
}

func testClientZeroDelay(t *testing.T) {
	t.Parallel()
	cl := New(Options{RetryMaxDelay: time.Millisecond})
	cl.HTTPDoer = doerFunc(func(_ *http.Request) (*http.Response, error) {
		return jsonResponse(429, `{}`), nil
	})
	start := time.Now()
	_, err := cl.Get("test")
	elapsed := time.Since(start)
	require.Error(t, err)
	assert.Less(t, elapsed, 500*time.Millisecond,
		"a zero floor collapses the whole schedule")
}

func testClientHeaders(t *testing.T) {
	capture := func(cl *Client) *[]http.Header {
		var seen []http.Header
		inner := cl.HTTPDoer
		cl.HTTPDoer = doerFunc(func(r *http.Request) (*http.Response, error) {
			seen = append(seen, r.Header.Clone())
			return inner.Do(r)
		})
		return &seen
	}
	t.Run("defaults injected", func(t *testing.T) {
		cl := &Client{
			HTTPDoer: doerFunc(func(_ *http.Request) (*http.Response, error) {
				return jsonResponse(429, `{}`), nil
			}),
			Backoff: backoff.Fixed(0),
		}
		seen := capture(cl)
		_, err := cl.Get("test")
		require.Error(t, err)
		require.Len(t, *seen, MaxAttempts)
		first := (*seen)[0]
		assert.Equal(t, userAgent, first.Get("User-Agent"))
		assert.Equal(t, "application/json", first.Get("Accept"))
		id := first.Get("X-Request-ID")
		_, parseErr := uuid.Parse(id)
		assert.NoError(t, parseErr, "request ID is a uuid")
		for _, h := range *seen {
			assert.Equal(t, id, h.Get("X-Request-ID"), "request ID constant across attempts")
		}
	})
	t.Run("caller headers win", func(t *testing.T) {
		cl := &Client{
			HTTPDoer: doerFunc(func(_ *http.Request) (*http.Response, error) {
				return jsonResponse(200, `{}`), nil
			}),
		}
		seen := capture(cl)
		p, err := request.NewPlan("GET", "test", nil)
		require.NoError(t, err)
		p.Header.Set("User-Agent", "custom-agent")
		_, err = cl.Do(p)
		require.NoError(t, err)
		assert.Equal(t, "custom-agent", (*seen)[0].Get("User-Agent"))
		assert.Equal(t, "", p.Header.Get("X-Request-ID"), "plan headers stay untouched")
	})
	t.Run("disabled", func(t *testing.T) {
		cl := &Client{
			HTTPDoer: doerFunc(func(_ *http.Request) (*http.Response, error) {
				return jsonResponse(200, `{}`), nil
			}),
			DisableCustomHeaders: true,
		}
		seen := capture(cl)
		_, err := cl.Get("test")
		require.NoError(t, err)
		first := (*seen)[0]
		assert.Equal(t, "", first.Get("User-Agent"))
		assert.Equal(t, "", first.Get("X-Request-ID"))
		assert.Equal(t, "", first.Get("Accept"))
	})
	t.Run("no accept header without json mode", func(t *testing.T) {
		cl := &Client{
			HTTPDoer: doerFunc(func(_ *http.Request) (*http.Response, error) {
				return jsonResponse(200, `{}`), nil
			}),
			DisableAutomaticJSON: true,
		}
		seen := capture(cl)
		_, err := cl.Get("test")
		require.NoError(t, err)
		first := (*seen)[0]
		assert.Equal(t, "", first.Get("Accept"))
		assert.Equal(t, userAgent, first.Get("User-Agent"))
	})
}

func testClientJSON(t *testing.T) {
	t.Run("decoded by default", func(t *testing.T) {
		cl := &Client{HTTPDoer: doerFunc(func(_ *http.Request) (*http.Response, error) {
			return jsonResponse(200, `{"items":[1,2]}`), nil
		})}
		r, err := cl.Get("test")
		require.NoError(t, err)
		assert.Equal(t, map[string]interface{}{"items": []interface{}{float64(1), float64(2)}}, r.Body)
	})
	t.Run("invalid JSON stays raw", func(t *testing.T) {
		cl := &Client{HTTPDoer: doerFunc(func(_ *http.Request) (*http.Response, error) {
			return textResponse(200, "<html>"), nil
		})}
		r, err := cl.Get("test")
		require.NoError(t, err)
		assert.Equal(t, []byte("<html>"), r.Body)
	})
	t.Run("raw when disabled", func(t *testing.T) {
		cl := &Client{
			HTTPDoer: doerFunc(func(_ *http.Request) (*http.Response, error) {
				return jsonResponse(200, `{"items":[1,2]}`), nil
			}),
			DisableAutomaticJSON: true,
		}
		r, err := cl.Get("test")
		require.NoError(t, err)
		assert.Equal(t, []byte(`{"items":[1,2]}`), r.Body)
	})
}

func testClientBodyError(t *testing.T) {
	t.Parallel()
	cause := errors.New("unexpected EOF")
	var calls int32
	cl := &Client{
		HTTPDoer: doerFunc(func(_ *http.Request) (*http.Response, error) {
			atomic.AddInt32(&calls, 1)
			return &http.Response{
				StatusCode: 200,
				Body:       io.NopCloser(failingReader{err: cause}),
			}, nil
		}),
	}
	r, err := cl.Get("test")
	assert.Nil(t, r)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Same(t, cause, err, "body read failure surfaces unmodified")
}

func testClientPlanCancel(t *testing.T) {
	t.Parallel()
	var calls int32
	cl := &Client{
		HTTPDoer: doerFunc(func(_ *http.Request) (*http.Response, error) {
			atomic.AddInt32(&calls, 1)
			return jsonResponse(429, `{}`), nil
		}),
		Backoff: backoff.Fixed(time.Hour),
	}
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()
	p, err := request.NewPlanWithContext(ctx, "GET", "test", nil)
	require.NoError(t, err)
	start := time.Now()
	r, err := cl.Do(p)
	assert.Nil(t, r)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Less(t, time.Since(start), 10*time.Second, "cancel interrupts the backoff wait")
}

func testClientEventOrder(t *testing.T) {
	var calls int32
	cl := &Client{
		HTTPDoer: doerFunc(func(_ *http.Request) (*http.Response, error) {
			if atomic.AddInt32(&calls, 1) == 1 {
				return jsonResponse(429, `{}`), nil
			}
			return jsonResponse(200, `{}`), nil
		}),
		Backoff:  backoff.Fixed(0),
		Handlers: &HandlerGroup{},
	}
	var order []string
	for _, evt := range Events() {
		evt := evt
		cl.Handlers.PushBack(evt, HandlerFunc(func(_ Event, e *request.Execution) {
			order = append(order, fmt.Sprintf("%s.%d", evt, e.Attempt))
		}))
	}
	_, err := cl.Get("test")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"BeforeExecutionStart.0",
		"BeforeAttempt.0",
		"BeforeReadBody.0",
		"AfterAttempt.0",
		"BeforeAttempt.1",
		"BeforeReadBody.1",
		"AfterAttempt.1",
		"AfterExecutionEnd.1",
	}, order)
}

func testClientConcurrent(t *testing.T) {
	t.Parallel()
	cl := &Client{
		HTTPDoer: doerFunc(func(r *http.Request) (*http.Response, error) {
			// Echo the per-call header so each call can verify it got
			// its own response.
			return jsonResponse(200, fmt.Sprintf(`{"who":%q}`, r.Header.Get("X-Who"))), nil
		}),
		Backoff: backoff.Fixed(0),
	}
	const n = 16
	var wg sync.WaitGroup
	wg.Add(n)
	for g := 0; g < n; g++ {
		go func(g int) {
			defer wg.Done()
			who := fmt.Sprintf("caller-%d", g)
			p, err := request.NewPlan("GET", "test", nil)
			if !assert.NoError(t, err) {
				return
			}
			p.Header.Set("X-Who", who)
			r, err := cl.Do(p)
			if assert.NoError(t, err) {
				assert.Equal(t, map[string]interface{}{"who": who}, r.Body)
			}
		}(g)
	}
	wg.Wait()
}

func testClientCloseIdleConnections(t *testing.T) {
	t.Run("forwarded", func(t *testing.T) {
		m := newMockHTTPDoerWithCloseIdleConnections(t)
		m.On("CloseIdleConnections").Once()
		cl := &Client{HTTPDoer: m}
		cl.CloseIdleConnections()
		m.AssertExpectations(t)
	})
	t.Run("no-op without support", func(t *testing.T) {
		cl := &Client{HTTPDoer: newMockHTTPDoer(t)}
		assert.NotPanics(t, cl.CloseIdleConnections)
	})
}

func TestClientMaxAttempts(t *testing.T) {
	cl := &Client{}
	assert.Equal(t, MaxAttempts, cl.MaxAttempts())
	assert.Equal(t, 5, cl.MaxAttempts())
}

func TestNew(t *testing.T) {
	t.Run("explicit delays", func(t *testing.T) {
		cl := New(Options{
			DisableCustomHeaders: true,
			DisableAutomaticJSON: true,
			RetryMinDelay:        10 * time.Millisecond,
			RetryMaxDelay:        30 * time.Millisecond,
		})
		assert.True(t, cl.DisableCustomHeaders)
		assert.True(t, cl.DisableAutomaticJSON)
		require.NotNil(t, cl.Backoff)
		assert.Equal(t, 10*time.Millisecond, cl.Backoff.Delay(1))
		assert.Equal(t, 20*time.Millisecond, cl.Backoff.Delay(2))
		assert.Equal(t, 30*time.Millisecond, cl.Backoff.Delay(3))
	})
	t.Run("default delays", func(t *testing.T) {
		cl := New(Options{})
		assert.Nil(t, cl.Backoff)
		assert.Equal(t, backoff.DefaultMinDelay, cl.scheduler().Delay(1))
		assert.Equal(t, backoff.DefaultMaxDelay, cl.scheduler().Delay(10))
	})
	t.Run("zero min collapses", func(t *testing.T) {
		cl := New(Options{RetryMaxDelay: 50 * time.Millisecond})
		require.NotNil(t, cl.Backoff)
		assert.Equal(t, time.Duration(0), cl.Backoff.Delay(1))
		assert.Equal(t, time.Duration(0), cl.Backoff.Delay(5))
	})
}

func TestClientZeroValue(t *testing.T) {
	var cl Client
	assert.Equal(t, http.DefaultClient, cl.doer())
	assert.NotNil(t, cl.classifier())
	assert.NotNil(t, cl.scheduler())
	assert.Equal(t, retry.Succeed, cl.classifier().Classify(&request.Execution{
		Response: &http.Response{StatusCode: 204},
	}))
	assert.Equal(t, backoff.DefaultMinDelay, cl.scheduler().Delay(1))
}

// doerFunc adapts a function to the HTTPDoer interface.
type doerFunc func(r *http.Request) (*http.Response, error)

func (f doerFunc) Do(r *http.Request) (*http.Response, error) {
	return f(r)
}

func jsonResponse(code int, body string) *http.Response {
	return &http.Response{
		StatusCode: code,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func textResponse(code int, body string) *http.Response {
	return &http.Response{
		StatusCode: code,
		Header:     http.Header{"Content-Type": []string{"text/html"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

type failingReader struct {
	err error
}

func (r failingReader) Read(_ []byte) (int, error) {
	return 0, r.err
}

type mockHTTPDoer struct {
	mock.Mock
}

func newMockHTTPDoer(t *testing.T) *mockHTTPDoer {
	m := &mockHTTPDoer{}
	m.Test(t)
	return m
}

func (m *mockHTTPDoer) Do(r *http.Request) (*http.Response, error) {
	args := m.Called(r)
	resp, _ := args.Get(0).(*http.Response)
	return resp, args.Error(1)
}

type mockHTTPDoerWithCloseIdleConnections struct {
	mockHTTPDoer
}

func newMockHTTPDoerWithCloseIdleConnections(t *testing.T) *mockHTTPDoerWithCloseIdleConnections {
	m := &mockHTTPDoerWithCloseIdleConnections{}
	m.Test(t)
	return m
}

func (m *mockHTTPDoerWithCloseIdleConnections) CloseIdleConnections() {
	m.Called()
}
