// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package tracing

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Span attributes set by this package in addition to the standard semantic conventions
const (
	// ResponseContentLengthKey is the measured size of the response body
	ResponseContentLengthKey = attribute.Key("http.response_content_length")

	// ErrorStatusCodeKey is set to 500 on spans whose downstream failed
	ErrorStatusCodeKey = attribute.Key("http.status_code")

	// DeferredKey marks spans whose response was produced through a Deferred
	DeferredKey = attribute.Key("http.response.deferred")

	// AbandonedKey marks spans that were ended without any response or failure
	AbandonedKey = attribute.Key("http.response.abandoned")
)

// ErrAbandoned is the status description of abandoned spans
var ErrAbandoned = errors.New("abandoned")

// finalizer owns the ending of a single server span.  Exactly one of its terminal
// methods, finalize, fail or abandon, takes effect.  The others return false and leave
// the span alone, whichever goroutine they are invoked from.
type finalizer struct {
	span     trace.Span
	measures *Measures
	logger   *zap.Logger

	state   uint32
	pending atomic.Bool

	lock    sync.Mutex
	onEnded []func()
}

func newFinalizer(span trace.Span, m *Measures, logger *zap.Logger) *finalizer {
	return &finalizer{
		span:     span,
		measures: m,
		logger:   logger,
	}
}

// claim transitions the span to ended.  It returns true only for the first caller.
func (f *finalizer) claim() bool {
	if !atomic.CompareAndSwapUint32(&f.state, 0, 1) {
		return false
	}

	if f.pending.Load() {
		f.measures.DeferredPending.Add(-1)
	}

	f.lock.Lock()
	callbacks := f.onEnded
	f.onEnded = nil
	f.lock.Unlock()

	for _, c := range callbacks {
		c()
	}

	return true
}

// ended reports whether a terminal method has taken effect
func (f *finalizer) ended() bool {
	return atomic.LoadUint32(&f.state) == 1
}

// whenEnded registers a callback run once the span has been claimed.  If the span
// is already claimed, the callback runs immediately.
func (f *finalizer) whenEnded(c func()) {
	f.lock.Lock()
	if !f.ended() {
		f.onEnded = append(f.onEnded, c)
		f.lock.Unlock()
		return
	}

	f.lock.Unlock()
	c()
}

// deferred marks the span as waiting on a Deferred completion
func (f *finalizer) deferred() {
	if !f.pending.Swap(true) {
		f.measures.DeferredPending.Add(1)
	}
}

// finalize ends the span with the given response, which may be nil if the downstream
// produced nothing.
func (f *finalizer) finalize(r *Immediate) bool {
	if !f.claim() {
		return false
	}

	if r != nil {
		if r.StatusCode != 0 {
			f.span.SetAttributes(semconv.HTTPResponseStatusCode(r.StatusCode))
			if c := MapStatus(r.StatusCode); c != codes.Unset {
				f.span.SetStatus(c, "")
			}
		}

		if n, ok := ContentLength(r.Body); ok {
			f.span.SetAttributes(ResponseContentLengthKey.Int64(n))
		}
	}

	if f.pending.Load() {
		f.span.SetAttributes(DeferredKey.Bool(true))
		f.measures.Deferred.Add(1)
	} else {
		f.measures.Finalized.Add(1)
	}

	f.span.End()
	return true
}

// fail records a downstream failure and ends the span.  The error itself is left for
// the caller to propagate.
func (f *finalizer) fail(err error) bool {
	if !f.claim() {
		return false
	}

	f.span.RecordError(err)
	f.span.SetAttributes(ErrorStatusCodeKey.Int(500))
	f.span.SetStatus(codes.Error, err.Error())
	f.measures.Failed.Add(1)
	f.span.End()
	return true
}

// failPanic records a recovered panic value.  Non-error values are recorded through their
// default formatting.
func (f *finalizer) failPanic(recovered interface{}) bool {
	err, ok := recovered.(error)
	if !ok {
		err = fmt.Errorf("%v", recovered)
	}

	return f.fail(err)
}

// abandon ends a span that received neither a response nor a failure.  The span is ended
// last, so that anything observing ended spans also observes the metrics and the log.
func (f *finalizer) abandon(reason error) bool {
	if !f.claim() {
		return false
	}

	description := ErrAbandoned.Error()
	if reason != nil {
		description = fmt.Sprintf("%s: %s", description, reason)
	}

	f.span.SetAttributes(AbandonedKey.Bool(true))
	if f.pending.Load() {
		f.span.SetAttributes(DeferredKey.Bool(true))
	}

	f.span.SetStatus(codes.Error, description)
	f.measures.Abandoned.Add(1)
	f.logger.Warn(
		"server span abandoned",
		zap.String("trace.id", f.span.SpanContext().TraceID().String()),
		zap.String("span.id", f.span.SpanContext().SpanID().String()),
		zap.NamedError("reason", reason),
	)

	f.span.End()
	return true
}
