// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import "errors"

// Lifecycle errors. NotFound covers both truly absent records and
// soft-deleted ones: callers treat them identically.
var (
	ErrNotFound    = errors.New("record not found")
	ErrNotOwner    = errors.New("report not owned by current employee")
	ErrInvalidDate = errors.New("malformed report date")
)
