// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PhraseHub Contributors

package catalog

import "errors"

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrPermissionDenied is returned when an authenticated identity is not
// allowed to perform an operation. Denials on missing resources surface as
// this error too, so a denied caller cannot probe for existence.
var ErrPermissionDenied = errors.New("permission denied")

// ErrUnauthenticated is returned when an operation requires an
// authenticated identity. Callers map it to "authentication required",
// never to "access denied".
var ErrUnauthenticated = errors.New("authentication required")
