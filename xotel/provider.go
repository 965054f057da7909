// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package xotel

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cast"
	"github.com/xmidt-org/servertrace/tracing"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/exporters/zipkin"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

var (
	// ErrUnknownExporter indicates an Options.Exporter value that is not supported
	ErrUnknownExporter = errors.New("unknown trace exporter")

	// ErrUnknownPropagator indicates an Options.Propagators entry that is not supported
	ErrUnknownPropagator = errors.New("unknown trace propagator")

	// ErrMissingEndpoint indicates an exporter that requires Options.Endpoint
	ErrMissingEndpoint = errors.New("trace exporter requires an endpoint")
)

// Enabled reports whether these options select an exporter.
func (o Options) Enabled() bool {
	e := strings.ToLower(strings.TrimSpace(o.Exporter))
	return len(e) > 0 && e != NoopExporter
}

// NewTracerProvider builds the SDK tracer provider described by o.  If o selects no exporter,
// both returned values are nil.  The caller owns the provider and must Shutdown it.
func NewTracerProvider(ctx context.Context, o Options) (*sdktrace.TracerProvider, error) {
	if !o.Enabled() {
		return nil, nil
	}

	exporter, err := newExporter(ctx, o)
	if err != nil {
		return nil, err
	}

	options := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(NewResource(o)),
		sdktrace.WithSampler(newSampler(o.SampleRatio)),
	}

	if o.Synchronous {
		options = append(options, sdktrace.WithSyncer(exporter))
	} else {
		var batchOptions []sdktrace.BatchSpanProcessorOption
		if o.BatchTimeout > 0 {
			batchOptions = append(batchOptions, sdktrace.WithBatchTimeout(o.BatchTimeout))
		}

		options = append(options, sdktrace.WithBatcher(exporter, batchOptions...))
	}

	return sdktrace.NewTracerProvider(options...), nil
}

func newExporter(ctx context.Context, o Options) (sdktrace.SpanExporter, error) {
	switch e := strings.ToLower(strings.TrimSpace(o.Exporter)); e {
	case StdoutExporter:
		w := o.Writer
		if w == nil {
			w = os.Stdout
		}

		options := []stdouttrace.Option{stdouttrace.WithWriter(w)}
		if o.PrettyPrint {
			options = append(options, stdouttrace.WithPrettyPrint())
		}

		return stdouttrace.New(options...)

	case OTLPHTTPExporter:
		var options []otlptracehttp.Option
		if len(o.Endpoint) > 0 {
			options = append(options, otlptracehttp.WithEndpoint(o.Endpoint))
		}

		if len(o.URLPath) > 0 {
			options = append(options, otlptracehttp.WithURLPath(o.URLPath))
		}

		if o.Insecure {
			options = append(options, otlptracehttp.WithInsecure())
		}

		if len(o.Headers) > 0 {
			options = append(options, otlptracehttp.WithHeaders(o.Headers))
		}

		return otlptracehttp.New(ctx, options...)

	case ZipkinExporter:
		if len(o.Endpoint) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrMissingEndpoint, e)
		}

		return zipkin.New(o.Endpoint)

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownExporter, o.Exporter)
	}
}

func newSampler(ratio float64) sdktrace.Sampler {
	if ratio > 0 && ratio < 1 {
		return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))
	}

	return sdktrace.ParentBased(sdktrace.AlwaysSample())
}

// NewResource describes the process to the tracing backend
func NewResource(o Options) *resource.Resource {
	attributes := []attribute.KeyValue{
		semconv.ServiceName(tracing.ServiceName(o.ServiceName, os.Getenv)),
	}

	if v := strings.TrimSpace(o.ServiceVersion); len(v) > 0 {
		attributes = append(attributes, semconv.ServiceVersion(v))
	}

	for k, v := range o.Resource {
		attributes = append(attributes, toAttribute(k, v))
	}

	return resource.NewWithAttributes(semconv.SchemaURL, attributes...)
}

// toAttribute converts a decoded configuration value into an attribute
func toAttribute(key string, value interface{}) attribute.KeyValue {
	switch value.(type) {
	case bool:
		return attribute.Bool(key, cast.ToBool(value))

	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return attribute.Int64(key, cast.ToInt64(value))

	case float32, float64:
		return attribute.Float64(key, cast.ToFloat64(value))

	case []string, []interface{}:
		return attribute.StringSlice(key, cast.ToStringSlice(value))

	default:
		return attribute.String(key, cast.ToString(value))
	}
}

// NewPropagator builds the composite propagator for the given names.  An empty list
// selects tracecontext followed by baggage.
func NewPropagator(names ...string) (propagation.TextMapPropagator, error) {
	if len(names) == 0 {
		names = []string{TraceContextPropagator, BaggagePropagator}
	}

	propagators := make([]propagation.TextMapPropagator, 0, len(names))
	for _, n := range names {
		switch strings.ToLower(strings.TrimSpace(n)) {
		case TraceContextPropagator:
			propagators = append(propagators, propagation.TraceContext{})

		case BaggagePropagator:
			propagators = append(propagators, propagation.Baggage{})

		default:
			return nil, fmt.Errorf("%w: %q", ErrUnknownPropagator, n)
		}
	}

	return propagation.NewCompositeTextMapPropagator(propagators...), nil
}

// WithTracerProvider adapts a provider built by NewTracerProvider to a tracing.Middleware option.
// A nil provider yields an option that does nothing, so the Middleware stays disabled.
func WithTracerProvider(tp *sdktrace.TracerProvider) tracing.Option {
	if tp == nil {
		return func(*tracing.Middleware) {}
	}

	return tracing.WithTracerProvider(tp)
}
