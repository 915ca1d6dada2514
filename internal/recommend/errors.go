// Threadrec - Forum Thread Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/threadrec

package recommend

import "errors"

var (
	// ErrInvalidAlgorithm is returned for an unknown algorithm name.
	ErrInvalidAlgorithm = errors.New("invalid algorithm")

	// ErrNoStorage is returned when the engine has no storage collaborator.
	ErrNoStorage = errors.New("recommendation storage not configured")

	// ErrNotFound is returned by collaborators for unknown thread ids.
	ErrNotFound = errors.New("not found")

	// ErrInvalidThreadID is returned for empty thread ids.
	ErrInvalidThreadID = errors.New("invalid thread id")
)
