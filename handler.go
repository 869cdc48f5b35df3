// Copyright 2026 The habrok Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package habrok

import (
	"github.com/kurttheviking/habrok/request"
)

// A Handler handles the occurrence of an event during an execution.
type Handler interface {
	Handle(Event, *request.Execution)
}

// The HandlerFunc type is an adapter to allow the use of ordinary
// functions as event handlers.
type HandlerFunc func(Event, *request.Execution)

// Handle calls f(evt, e).
func (f HandlerFunc) Handle(evt Event, e *request.Execution) {
	f(evt, e)
}

// A HandlerGroup is a set of event handler chains which can be
// installed in a Client. The zero value is an empty group.
type HandlerGroup struct {
	handlers [][]Handler
}

// PushBack appends a handler to the handler chain for the given event.
// Handlers in a chain run in insertion order.
func (g *HandlerGroup) PushBack(evt Event, h Handler) {
	if h == nil {
		panic("habrok: nil handler")
	}

	if g.handlers == nil {
		g.handlers = make([][]Handler, numEvents)
	}

	g.handlers[evt] = append(g.handlers[evt], h)
}

func (g *HandlerGroup) run(evt Event, e *request.Execution) {
	i := int(evt)
	if i < len(g.handlers) {
		for _, h := range g.handlers[i] {
			h.Handle(evt, e)
		}
	}
}
