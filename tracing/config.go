// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package tracing

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

const (
	// ServiceNameEnv is the environment variable consulted when no tracer name is configured.
	ServiceNameEnv = "OTEL_SERVICE_NAME"

	// UnknownService is the tracer name used when neither configuration nor environment supply one.
	UnknownService = "unknown_service"

	// DefaultForwardedProtoHeader is the request header that overrides the transport scheme.
	DefaultForwardedProtoHeader = "X-Forwarded-Proto"
)

// ErrInvalidSchemaURL indicates that TracerAttributes.SchemaURL is not an absolute URL.
var ErrInvalidSchemaURL = errors.New("tracer schema URL must be an absolute URL")

// TracerAttributes identifies the instrumentation scope under which spans are created.
type TracerAttributes struct {
	// Name is the tracer name.  If unset, the OTEL_SERVICE_NAME environment variable is used,
	// falling back to UnknownService.
	Name string `mapstructure:"name"`

	// Version is the optional instrumentation version.
	Version string `mapstructure:"version"`

	// SchemaURL is the optional semantic convention schema of emitted spans.
	SchemaURL string `mapstructure:"schemaURL"`
}

// ServiceName resolves a configured service name.  An empty name falls back to the
// OTEL_SERVICE_NAME environment variable, as reported by getenv, and then to UnknownService.
func ServiceName(configured string, getenv func(string) string) string {
	if name := strings.TrimSpace(configured); len(name) > 0 {
		return name
	}

	if getenv != nil {
		if name := strings.TrimSpace(getenv(ServiceNameEnv)); len(name) > 0 {
			return name
		}
	}

	return UnknownService
}

// resolve fills in the defaulted name and validates the remaining fields.
func (ta TracerAttributes) resolve(getenv func(string) string) (TracerAttributes, error) {
	ta.Name = strings.TrimSpace(ta.Name)
	ta.Version = strings.TrimSpace(ta.Version)
	ta.SchemaURL = strings.TrimSpace(ta.SchemaURL)

	ta.Name = ServiceName(ta.Name, getenv)

	if len(ta.SchemaURL) > 0 {
		u, err := url.Parse(ta.SchemaURL)
		if err != nil || !u.IsAbs() {
			return ta, fmt.Errorf("%w: %q", ErrInvalidSchemaURL, ta.SchemaURL)
		}
	}

	return ta, nil
}

// Config is the construction-time configuration of a Middleware.  The zero value is usable.
type Config struct {
	// TracerAttributes identifies the tracer.
	TracerAttributes TracerAttributes `mapstructure:"tracer_attributes"`

	// ForwardedProtoHeader is informational for adapters that build Requests.  Defaults to
	// DefaultForwardedProtoHeader.
	ForwardedProtoHeader string `mapstructure:"forwardedProtoHeader"`

	// DeferredTimeout bounds how long a deferred response may stay pending before its span is
	// ended as abandoned.  Nonpositive values disable the timeout, in which case only request
	// cancellation abandons a pending span.
	DeferredTimeout time.Duration `mapstructure:"deferredTimeout"`

	// EnrichLogger places a logger annotated with the trace and span ids into the downstream context.
	EnrichLogger bool `mapstructure:"enrichLogger"`
}

// forwardedProtoHeader returns the configured header or DefaultForwardedProtoHeader
func (c Config) forwardedProtoHeader() string {
	if len(c.ForwardedProtoHeader) > 0 {
		return c.ForwardedProtoHeader
	}

	return DefaultForwardedProtoHeader
}
