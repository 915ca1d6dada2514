// Threadrec - Forum Thread Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/threadrec

// Package logging provides the zerolog-based structured logger used across
// Threadrec.
//
// A global logger is configured once from main:
//
//	logger := logging.Init(logging.Config{
//	    Level:     cfg.Logging.Level,
//	    Format:    cfg.Logging.Format,
//	    Timestamp: true,
//	})
//
// Components receive a zerolog.Logger by value and derive their own child
// with a "component" field; nothing below cmd/ reads the global directly
// except the package-level helpers (Info, Warn, Error, ...).
//
// # Request scope
//
// The API middleware stores a request ID and a request-scoped logger in the
// context. Ctx(ctx) returns that logger with request_id attached:
//
//	logging.Ctx(r.Context()).Warn().Err(err).Msg("recommendation failed")
//
// # slog bridge
//
// SlogHandler adapts zerolog to log/slog so the suture supervisor tree can
// log through sutureslog with the same sink and format.
//
// # Environment
//
// Setting THREADREC_QUIET=1 disables output before Init runs, which keeps
// test and benchmark runs silent.
package logging
