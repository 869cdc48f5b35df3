// Copyright 2026 The habrok Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package transient categorizes transport-level errors by transience,
// so a retry classifier can tell a connection blip worth retrying apart
// from a failure that should surface to the caller at once.
package transient
