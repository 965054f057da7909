// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package xotel

import (
	"io"
	"time"

	"github.com/spf13/viper"
	"github.com/xmidt-org/servertrace/xviper"
)

// Exporter names
const (
	NoopExporter     = "noop"
	StdoutExporter   = "stdout"
	OTLPHTTPExporter = "otlphttp"
	ZipkinExporter   = "zipkin"
)

// Propagator names
const (
	TraceContextPropagator = "tracecontext"
	BaggagePropagator      = "baggage"
)

// Options is the OpenTelemetry configuration of a process
type Options struct {
	// ServiceName is the service.name resource attribute.  Defaults to the OTEL_SERVICE_NAME
	// environment variable, then to tracing.UnknownService.
	ServiceName string `mapstructure:"serviceName"`

	// ServiceVersion is the optional service.version resource attribute
	ServiceVersion string `mapstructure:"serviceVersion"`

	// Exporter selects where spans go.  Empty and NoopExporter disable tracing.
	Exporter string `mapstructure:"exporter"`

	// Endpoint is the collector address.  For otlphttp, this is host:port.  For zipkin,
	// this is the full collector URL and is required.
	Endpoint string `mapstructure:"endpoint"`

	// URLPath overrides the OTLP traces path
	URLPath string `mapstructure:"urlPath"`

	// Insecure disables TLS for otlphttp
	Insecure bool `mapstructure:"insecure"`

	// Headers are sent with each OTLP export request
	Headers map[string]string `mapstructure:"headers"`

	// PrettyPrint indents stdout output
	PrettyPrint bool `mapstructure:"prettyPrint"`

	// Synchronous exports each span as it ends instead of batching
	Synchronous bool `mapstructure:"synchronous"`

	// BatchTimeout is the maximum delay before a batch is exported.  Nonpositive values
	// use the SDK default.
	BatchTimeout time.Duration `mapstructure:"batchTimeout"`

	// SampleRatio is the fraction of root traces sampled.  Values outside (0, 1) sample
	// everything.  Child spans always follow their parent's decision.
	SampleRatio float64 `mapstructure:"sampleRatio"`

	// Propagators lists the propagation formats, in order.  Defaults to tracecontext and baggage.
	Propagators []string `mapstructure:"propagators"`

	// Resource holds additional resource attributes.  Strings, numbers, booleans and lists
	// of strings are supported.
	Resource map[string]interface{} `mapstructure:"resource"`

	// Writer is the destination of the stdout exporter.  Defaults to os.Stdout.
	Writer io.Writer `mapstructure:"-"`
}

// FromViper decodes Options from the subtree under key
func FromViper(v *viper.Viper, key string) (o Options, err error) {
	if v != nil {
		err = xviper.UnmarshalKey(v, key, &o)
	}

	return
}
