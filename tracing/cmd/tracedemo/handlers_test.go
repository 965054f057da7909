// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xmidt-org/servertrace/tracing"
	"github.com/xmidt-org/servertrace/xmetrics"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
)

type routerTest struct {
	server   *httptest.Server
	recorder *tracetest.SpanRecorder
}

func newRouterTest(t *testing.T) *routerTest {
	var (
		require  = require.New(t)
		recorder = tracetest.NewSpanRecorder()
	)

	r, err := xmetrics.NewRegistry(
		&xmetrics.Options{
			Subsystem:               applicationName,
			DisableGoCollector:      true,
			DisableProcessCollector: true,
		},
		tracing.Metrics,
	)

	require.NoError(err)

	m, err := tracing.New(
		tracing.Config{EnrichLogger: true},
		tracing.WithTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))),
		tracing.WithPropagator(propagation.TraceContext{}),
		tracing.WithLogger(zap.NewNop()),
		tracing.WithMeasures(tracing.NewMeasures(r)),
	)

	require.NoError(err)

	rt := &routerTest{
		server:   httptest.NewServer(newRouter(m, r, zap.NewNop())),
		recorder: recorder,
	}

	t.Cleanup(rt.server.Close)
	return rt
}

func (rt *routerTest) get(t *testing.T, path string) (int, string) {
	response, err := rt.server.Client().Get(rt.server.URL + path)
	require.NoError(t, err)
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	require.NoError(t, err)
	return response.StatusCode, string(body)
}

func (rt *routerTest) ended(t *testing.T, count int) []sdktrace.ReadOnlySpan {
	require.Eventually(t,
		func() bool { return len(rt.recorder.Ended()) >= count },
		5*time.Second,
		10*time.Millisecond,
	)

	return rt.recorder.Ended()
}

func testRouterHello(t *testing.T) {
	var (
		assert = assert.New(t)
		rt     = newRouterTest(t)
	)

	code, body := rt.get(t, "/hello")
	assert.Equal(http.StatusOK, code)
	assert.Equal("hello\n", body)

	spans := rt.ended(t, 1)
	assert.Equal("GET request", spans[0].Name())
	assert.Equal(codes.Ok, spans[0].Status().Code)
}

func testRouterDeferred(t *testing.T) {
	var (
		assert = assert.New(t)
		rt     = newRouterTest(t)
	)

	code, body := rt.get(t, "/deferred?delay=5ms")
	assert.Equal(http.StatusOK, code)
	assert.Equal("deferred hello\n", body)

	spans := rt.ended(t, 1)
	assert.Equal(codes.Ok, spans[0].Status().Code)

	var deferred bool
	for _, kv := range spans[0].Attributes() {
		if kv.Key == tracing.DeferredKey {
			deferred = kv.Value.AsBool()
		}
	}

	assert.True(deferred)
}

func testRouterFail(t *testing.T) {
	var (
		assert = assert.New(t)
		rt     = newRouterTest(t)
	)

	code, body := rt.get(t, "/fail")
	assert.Equal(http.StatusInternalServerError, code)
	assert.JSONEq(`{"code": 500, "message": "this endpoint always fails"}`, body)

	spans := rt.ended(t, 1)
	assert.Equal(codes.Error, spans[0].Status().Code)
	assert.Equal(errDemoFailure.Error(), spans[0].Status().Description)
}

func testRouterMetrics(t *testing.T) {
	var (
		assert = assert.New(t)
		rt     = newRouterTest(t)
	)

	rt.get(t, "/hello")
	rt.ended(t, 1)

	code, body := rt.get(t, "/metrics")
	assert.Equal(http.StatusOK, code)
	assert.Contains(body, "xmidt_tracedemo_"+tracing.SpansFinalizedCounter+" 1")

	// the metrics endpoint itself is not traced
	assert.Len(rt.recorder.Ended(), 1)
}

func TestRouter(t *testing.T) {
	t.Run("Hello", testRouterHello)
	t.Run("Deferred", testRouterDeferred)
	t.Run("Fail", testRouterFail)
	t.Run("Metrics", testRouterMetrics)
}

func TestDelay(t *testing.T) {
	var (
		assert   = assert.New(t)
		testData = []struct {
			rawQuery string
			expected time.Duration
		}{
			{"", defaultDelay},
			{"delay=5ms", 5 * time.Millisecond},
			{"delay=0s", 0},
			{"delay=-1s", defaultDelay},
			{"delay=1h", maxDelay},
			{"delay=bogus", defaultDelay},
			{"%zz", defaultDelay},
		}
	)

	for _, record := range testData {
		t.Logf("%#v", record)
		assert.Equal(record.expected, delay(record.rawQuery))
	}
}
