// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package tracing

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/xmidt-org/sallust"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var (
	errHandlerExited   = errors.New("handler exited without returning")
	errDeferredTimeout = errors.New("deferred response timed out")
)

// Option configures a Middleware
type Option func(*Middleware)

// WithTracerProvider sets the provider of the server tracer.  Without a provider, the
// Middleware is disabled.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(m *Middleware) {
		m.provider = tp
	}
}

// WithPropagator sets the propagator used to extract incoming trace context.  If p is nil,
// this option does nothing.
func WithPropagator(p propagation.TextMapPropagator) Option {
	return func(m *Middleware) {
		if p != nil {
			m.propagator = p
		}
	}
}

// WithLogger sets the logger.  If l is nil, this option does nothing.
func WithLogger(l *zap.Logger) Option {
	return func(m *Middleware) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithMeasures sets the metrics.  If ms is nil, this option does nothing.
func WithMeasures(ms *Measures) Option {
	return func(m *Middleware) {
		if ms != nil {
			m.measures = ms
		}
	}
}

// WithGetenv sets the environment lookup used to resolve the tracer name.  If getenv is nil,
// this option does nothing.
func WithGetenv(getenv func(string) string) Option {
	return func(m *Middleware) {
		if getenv != nil {
			m.getenv = getenv
		}
	}
}

// Middleware traces requests.  It is safe for concurrent use, as nothing about a Middleware
// changes after New.
type Middleware struct {
	config     Config
	attributes TracerAttributes

	provider   trace.TracerProvider
	tracer     trace.Tracer
	propagator propagation.TextMapPropagator
	logger     *zap.Logger
	measures   *Measures
	getenv     func(string) string
}

// New constructs a Middleware.  The tracer attributes are resolved and validated once, here.
func New(c Config, o ...Option) (*Middleware, error) {
	m := &Middleware{
		config:     c,
		propagator: otel.GetTextMapPropagator(),
		logger:     sallust.Default(),
		measures:   NewMeasures(nil),
		getenv:     os.Getenv,
	}

	for _, option := range o {
		option(m)
	}

	attributes, err := c.TracerAttributes.resolve(m.getenv)
	if err != nil {
		return nil, err
	}

	m.attributes = attributes
	if m.provider != nil {
		var options []trace.TracerOption
		if len(attributes.Version) > 0 {
			options = append(options, trace.WithInstrumentationVersion(attributes.Version))
		}

		if len(attributes.SchemaURL) > 0 {
			options = append(options, trace.WithSchemaURL(attributes.SchemaURL))
		}

		m.tracer = m.provider.Tracer(attributes.Name, options...)
	} else {
		m.logger.Info("no tracer provider configured, request tracing is disabled")
	}

	return m, nil
}

// Enabled reports whether this Middleware creates spans.  A nil Middleware is disabled.
func (m *Middleware) Enabled() bool {
	return m != nil && m.tracer != nil
}

// TracerAttributes returns the resolved tracer attributes.
func (m *Middleware) TracerAttributes() TracerAttributes {
	return m.attributes
}

// ForwardedProtoHeader is the header adapters should read Request.ForwardedProto from.
func (m *Middleware) ForwardedProtoHeader() string {
	if m == nil {
		return DefaultForwardedProtoHeader
	}

	return m.config.forwardedProtoHeader()
}

// Then decorates next.  When this Middleware is disabled, next is returned as is.
func (m *Middleware) Then(next Handler) Handler {
	if !m.Enabled() {
		return next
	}

	return HandlerFunc(func(ctx context.Context, r *Request) (Response, error) {
		return m.Serve(ctx, r, next)
	})
}

// Serve traces a single invocation of next.
//
// The server span is installed as the current context of the Scope carried by ctx, or of a
// new Scope if ctx carries none, and the previous context is restored before Serve returns.
// Both the error returned by next and any panic raised by next are recorded on the span and
// then propagated unchanged.  A Deferred response is returned wrapped, so that its span
// ends when it completes.
func (m *Middleware) Serve(ctx context.Context, r *Request, next Handler) (response Response, err error) {
	if !m.Enabled() {
		return next.Handle(ctx, r)
	}

	scope := ScopeFrom(ctx)
	if scope == nil {
		ctx, scope = WithScope(ctx)
	}

	parent, ok := Extract(ctx, m.propagator, r.Carrier)
	if !ok {
		m.measures.ExtractFailures.Add(1)
		m.logger.Debug("unable to extract trace context", zap.String("method", r.Method), zap.String("path", r.Path))
	}

	spanCtx, span := m.tracer.Start(
		parent,
		r.SpanName(),
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(requestAttributes(r)...),
	)

	if m.config.EnrichLogger {
		spanCtx = sallust.With(spanCtx, m.logger.With(
			zap.String("trace.id", span.SpanContext().TraceID().String()),
			zap.String("span.id", span.SpanContext().SpanID().String()),
		))
	}

	f := newFinalizer(span, m.measures, m.logger)
	token := scope.Enter(spanCtx)
	defer scope.Exit(token)

	completed := false
	defer func() {
		if completed {
			return
		}

		if recovered := recover(); recovered != nil {
			f.failPanic(recovered)
			panic(recovered)
		}

		// neither returned nor panicked, e.g. runtime.Goexit
		f.abandon(errHandlerExited)
	}()

	response, err = next.Handle(spanCtx, r)
	if err != nil {
		f.fail(err)
		completed = true
		return response, err
	}

	switch v := response.(type) {
	case Immediate:
		f.finalize(&v)

	case *Immediate:
		f.finalize(v)

	case Deferred:
		response = m.deferResponse(ctx, f, v)

	default:
		f.finalize(nil)
	}

	completed = true
	return response, nil
}

// deferResponse wraps d so that the first completion ends the span.  Until then, the span is
// abandoned if ctx is cancelled or the configured DeferredTimeout elapses.
func (m *Middleware) deferResponse(ctx context.Context, f *finalizer, d Deferred) Deferred {
	f.deferred()
	if d == nil {
		f.finalize(nil)
		return d
	}

	if ctx.Done() != nil {
		stop := context.AfterFunc(ctx, func() {
			f.abandon(context.Cause(ctx))
		})

		f.whenEnded(func() { stop() })
	}

	if timeout := m.config.DeferredTimeout; timeout > 0 {
		timer := time.AfterFunc(timeout, func() {
			f.abandon(errDeferredTimeout)
		})

		f.whenEnded(func() { timer.Stop() })
	}

	return func(respond Responder) {
		d(func(final Immediate) {
			f.finalize(&final)
			if respond != nil {
				respond(final)
			}
		})
	}
}
