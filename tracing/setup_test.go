// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package tracing

import (
	"testing"

	"github.com/go-kit/kit/metrics/generic"
	"github.com/stretchr/testify/require"
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

// testMeasures exposes the generic metrics behind a Measures
type testMeasures struct {
	*Measures
	finalized, deferred, failed, abandoned, extractFailures *generic.Counter
	pending                                                 *generic.Gauge
}

func newTestMeasures() *testMeasures {
	tm := &testMeasures{
		finalized:       generic.NewCounter(SpansFinalizedCounter),
		deferred:        generic.NewCounter(SpansDeferredCounter),
		failed:          generic.NewCounter(SpansFailedCounter),
		abandoned:       generic.NewCounter(SpansAbandonedCounter),
		extractFailures: generic.NewCounter(ExtractFailuresCounter),
		pending:         generic.NewGauge(DeferredPendingGauge),
	}

	tm.Measures = &Measures{
		Finalized:       tm.finalized,
		Deferred:        tm.deferred,
		Failed:          tm.failed,
		Abandoned:       tm.abandoned,
		DeferredPending: tm.pending,
		ExtractFailures: tm.extractFailures,
	}

	return tm
}

// newTestMiddleware produces an enabled Middleware that records spans in memory
func newTestMiddleware(t *testing.T, c Config, o ...Option) (*Middleware, *tracetest.SpanRecorder) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	options := append(
		[]Option{
			WithTracerProvider(provider),
			WithPropagator(propagation.TraceContext{}),
			WithLogger(zaptest.NewLogger(t)),
			WithGetenv(func(string) string { return "" }),
		},
		o...,
	)

	m, err := New(c, options...)
	require.NoError(t, err)
	require.True(t, m.Enabled())
	return m, recorder
}

func attributesOf(s sdktrace.ReadOnlySpan) map[attribute.Key]attribute.Value {
	m := make(map[attribute.Key]attribute.Value, len(s.Attributes()))
	for _, kv := range s.Attributes() {
		m[kv.Key] = kv.Value
	}

	return m
}

func testRequest() *Request {
	return &Request{
		Method:        "GET",
		Scheme:        "http",
		Host:          "example.com:8080",
		Path:          "/path",
		ClientAddress: "10.0.0.1",
		UserAgent:     "test-agent/1.0",
	}
}
