// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package tracing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

type panicPropagator struct {
	propagation.TraceContext
}

func (panicPropagator) Extract(context.Context, propagation.TextMapCarrier) context.Context {
	panic("this propagator is broken")
}

func TestEnvKey(t *testing.T) {
	var (
		assert   = assert.New(t)
		testData = []struct {
			header   string
			expected string
		}{
			{"traceparent", "HTTP_TRACEPARENT"},
			{"tracestate", "HTTP_TRACESTATE"},
			{"X-B3-TraceId", "HTTP_X_B3_TRACEID"},
			{"", "HTTP_"},
		}
	)

	for _, record := range testData {
		t.Logf("%#v", record)
		assert.Equal(record.expected, EnvKey(record.header))
	}

	assert.Equal("traceparent", HeaderKey("traceparent"))
}

func testExtractParent(t *testing.T) {
	var (
		assert = assert.New(t)
		base   = context.Background()

		carrier = MapCarrier(map[string]string{"HTTP_TRACEPARENT": testTraceParent}, EnvKey)
	)

	parent, ok := Extract(base, propagation.TraceContext{}, carrier)
	assert.True(ok)

	sc := trace.SpanContextFromContext(parent)
	assert.True(sc.IsValid())
	assert.True(sc.IsRemote())
	assert.Equal(testTraceID, sc.TraceID().String())
	assert.Equal(testSpanID, sc.SpanID().String())
}

func testExtractMissing(t *testing.T) {
	var (
		assert = assert.New(t)
		base   = context.Background()

		testData = []Carrier{
			{},
			MapCarrier(nil, nil),
			MapCarrier(map[string]string{"traceparent": testTraceParent}, EnvKey),
			MapCarrier(map[string]string{"HTTP_TRACEPARENT": "garbage"}, EnvKey),
			MapCarrier(map[string]string{"HTTP_TRACEPARENT": "00-00000000000000000000000000000000-0000000000000000-01"}, EnvKey),
		}
	)

	for i, carrier := range testData {
		parent, ok := Extract(base, propagation.TraceContext{}, carrier)
		assert.True(ok, "carrier %d", i)
		assert.False(trace.SpanContextFromContext(parent).IsValid(), "carrier %d", i)
	}

	parent, ok := Extract(base, nil, MapCarrier(map[string]string{"traceparent": testTraceParent}, nil))
	assert.True(ok)
	assert.True(parent == base)
}

func testExtractPanic(t *testing.T) {
	var (
		assert  = assert.New(t)
		base    = context.Background()
		carrier = MapCarrier(map[string]string{"traceparent": testTraceParent}, nil)
	)

	parent, ok := Extract(base, panicPropagator{}, carrier)
	assert.False(ok)
	assert.True(parent == base)

	parent, ok = Extract(
		base,
		propagation.TraceContext{},
		Carrier{Lookup: func(string) (string, bool) { panic("lookup failed") }},
	)

	assert.False(ok)
	assert.True(parent == base)
}

func TestExtract(t *testing.T) {
	t.Run("Parent", testExtractParent)
	t.Run("Missing", testExtractMissing)
	t.Run("Panic", testExtractPanic)
}

func TestTextMapReadOnly(t *testing.T) {
	var (
		assert = assert.New(t)
		m      = map[string]string{"traceparent": "original"}
		tm     = textMap(MapCarrier(m, nil))
	)

	tm.Set("traceparent", "changed")
	assert.Equal("original", m["traceparent"])
	assert.Equal("original", tm.Get("traceparent"))
	assert.Empty(tm.Get("missing"))
	assert.Nil(tm.Keys())
}
