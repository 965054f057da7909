// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package tracing

import (
	"github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/metrics/provider"
	"github.com/xmidt-org/servertrace/xmetrics"
)

// Names for our metrics
const (
	SpansFinalizedCounter  = "server_span_finalized_count"
	SpansDeferredCounter   = "server_span_deferred_count"
	SpansFailedCounter     = "server_span_failed_count"
	SpansAbandonedCounter  = "server_span_abandoned_count"
	DeferredPendingGauge   = "server_span_deferred_pending"
	ExtractFailuresCounter = "trace_extract_failure_count"
)

// Metrics describes the metrics of this package, for preregistration with an xmetrics.Registry.
func Metrics() []xmetrics.Metric {
	return []xmetrics.Metric{
		{
			Name: SpansFinalizedCounter,
			Type: xmetrics.CounterType,
			Help: "Server spans ended with an immediate response",
		},
		{
			Name: SpansDeferredCounter,
			Type: xmetrics.CounterType,
			Help: "Server spans ended by the completion of a deferred response",
		},
		{
			Name: SpansFailedCounter,
			Type: xmetrics.CounterType,
			Help: "Server spans ended by a handler error or panic",
		},
		{
			Name: SpansAbandonedCounter,
			Type: xmetrics.CounterType,
			Help: "Server spans ended without any response",
		},
		{
			Name: DeferredPendingGauge,
			Type: xmetrics.GaugeType,
			Help: "Server spans waiting on a deferred response",
		},
		{
			Name: ExtractFailuresCounter,
			Type: xmetrics.CounterType,
			Help: "Requests whose trace context could not be extracted",
		},
	}
}

// Measures holds the metrics emitted by a Middleware.  Every span ends in exactly one of
// the Finalized, Deferred, Failed or Abandoned counters.
type Measures struct {
	Finalized       metrics.Counter
	Deferred        metrics.Counter
	Failed          metrics.Counter
	Abandoned       metrics.Counter
	DeferredPending metrics.Gauge
	ExtractFailures metrics.Counter
}

// NewMeasures realizes the Middleware metrics from a go-kit provider.  A nil provider
// produces discarding metrics.
func NewMeasures(p provider.Provider) *Measures {
	if p == nil {
		p = provider.NewDiscardProvider()
	}

	return &Measures{
		Finalized:       p.NewCounter(SpansFinalizedCounter),
		Deferred:        p.NewCounter(SpansDeferredCounter),
		Failed:          p.NewCounter(SpansFailedCounter),
		Abandoned:       p.NewCounter(SpansAbandonedCounter),
		DeferredPending: p.NewGauge(DeferredPendingGauge),
		ExtractFailures: p.NewCounter(ExtractFailuresCounter),
	}
}
