// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package tracinghttp

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xmidt-org/servertrace/tracing"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap/zaptest"
)

const (
	testTraceID     = "4bf92f3577b34da6a3ce929d0e0e4736"
	testSpanID      = "00f067aa0ba902b7"
	testTraceParent = "00-" + testTraceID + "-" + testSpanID + "-01"
)

func newTestMiddleware(t *testing.T, c tracing.Config) (*tracing.Middleware, *tracetest.SpanRecorder) {
	recorder := tracetest.NewSpanRecorder()
	m, err := tracing.New(
		c,
		tracing.WithTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))),
		tracing.WithPropagator(propagation.TraceContext{}),
		tracing.WithLogger(zaptest.NewLogger(t)),
	)

	require.NoError(t, err)
	return m, recorder
}

func onlyEnded(t *testing.T, recorder *tracetest.SpanRecorder) sdktrace.ReadOnlySpan {
	ended := recorder.Ended()
	require.Len(t, ended, 1)
	return ended[0]
}

func attributesOf(s sdktrace.ReadOnlySpan) map[attribute.Key]attribute.Value {
	m := make(map[attribute.Key]attribute.Value, len(s.Attributes()))
	for _, kv := range s.Attributes() {
		m[kv.Key] = kv.Value
	}

	return m
}
