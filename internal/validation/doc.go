// Threadrec - Forum Thread Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/threadrec

// Package validation wraps go-playground/validator v10 with a process-wide
// validator and two domain rules:
//
//   - thread_id: "<forum>:<id>", both parts non-empty, no whitespace
//   - algorithm: "", content, behavior, mixed or popular (any case)
//
// Request structs declare rules in `validate` tags and handlers call
// ValidateStruct. A failure is an *Error whose Fields carry the json field
// name, so the API can report exactly which body field was rejected:
//
//	type clickRequest struct {
//	    ThreadID string `json:"thread_id" validate:"required,thread_id"`
//	}
//
// Configuration structs are validated the same way; for those the koanf
// tag supplies the field name.
package validation
