// Threadrec - Forum Thread Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/threadrec

package logging

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestGenerateRequestID(t *testing.T) {
	t.Parallel()

	a, b := GenerateRequestID(), GenerateRequestID()
	if a == b {
		t.Fatal("GenerateRequestID returned the same value twice")
	}
	if _, err := uuid.Parse(a); err != nil {
		t.Errorf("GenerateRequestID() = %q, not a uuid: %v", a, err)
	}
}

func TestRequestIDContext(t *testing.T) {
	t.Parallel()

	if got := RequestIDFromContext(context.Background()); got != "" {
		t.Errorf("empty context request id = %q", got)
	}
	ctx := ContextWithRequestID(context.Background(), "req-1")
	if got := RequestIDFromContext(ctx); got != "req-1" {
		t.Errorf("RequestIDFromContext() = %q, want req-1", got)
	}
}

func TestLoggerFromContext(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	ctx := ContextWithLogger(context.Background(), NewTestLogger(&buf).With().Str("route", "/x").Logger())

	logger := LoggerFromContext(ctx)
	logger.Info().Msg("hello")

	if !strings.Contains(buf.String(), `"route":"/x"`) {
		t.Errorf("stored logger not returned: %s", buf.String())
	}
}

func TestCtx(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	ctx := ContextWithLogger(context.Background(), NewTestLogger(&buf))
	ctx = ContextWithRequestID(ctx, "abc-123")

	Ctx(ctx).Info().Msg("served")

	out := buf.String()
	if !strings.Contains(out, `"request_id":"abc-123"`) {
		t.Errorf("request_id missing: %s", out)
	}

	buf.Reset()
	plain := ContextWithLogger(context.Background(), NewTestLogger(&buf))
	Ctx(plain).Info().Msg("no id")
	if strings.Contains(buf.String(), "request_id") {
		t.Errorf("request_id written without one in context: %s", buf.String())
	}
}
