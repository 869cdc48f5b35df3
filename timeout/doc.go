// Copyright 2026 The habrok Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package timeout defines how a timeout is set on each individual HTTP
// request attempt within an execution.
package timeout
