// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package tracing

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel/propagation"
)

// Lookup resolves a carrier key to its value.  The boolean result reports whether the key was present.
type Lookup func(key string) (string, bool)

// KeyMapper translates a propagation header name, such as "traceparent", into the key
// under which a carrier stores it.
type KeyMapper func(header string) string

// HeaderKey is the identity KeyMapper, suitable for carriers that are already case-insensitive
// header maps.
func HeaderKey(header string) string {
	return header
}

// EnvKey maps a header name onto the CGI-style environment convention:  the name is upper-cased,
// dashes become underscores and the result is prefixed with HTTP_.
func EnvKey(header string) string {
	return "HTTP_" + strings.ToUpper(strings.ReplaceAll(header, "-", "_"))
}

// Carrier is the read-only source of incoming propagation headers for a single request.
// A Carrier with a nil Lookup carries nothing.
type Carrier struct {
	Lookup Lookup
	Key    KeyMapper
}

// MapCarrier returns a Carrier over a plain map.  If key is nil, HeaderKey is used.
func MapCarrier(m map[string]string, key KeyMapper) Carrier {
	return Carrier{
		Lookup: func(k string) (string, bool) {
			v, ok := m[k]
			return v, ok
		},
		Key: key,
	}
}

// textMap adapts a Carrier to the propagation.TextMapCarrier expected by propagators
type textMap Carrier

func (tm textMap) Get(header string) string {
	if tm.Lookup == nil {
		return ""
	}

	key := header
	if tm.Key != nil {
		key = tm.Key(header)
	}

	v, _ := tm.Lookup(key)
	return v
}

// Set does nothing, as carriers are never written to.
func (tm textMap) Set(string, string) {}

// Keys is not supported by the read-only carrier.
func (tm textMap) Keys() []string {
	return nil
}

// Extract produces the parent context for a request.  Absent or malformed propagation
// headers leave ctx as is.  A propagator or carrier that panics also leaves ctx as is, in
// which case the returned boolean is false.
func Extract(ctx context.Context, propagator propagation.TextMapPropagator, carrier Carrier) (parent context.Context, ok bool) {
	if propagator == nil || carrier.Lookup == nil {
		return ctx, true
	}

	defer func() {
		if r := recover(); r != nil {
			parent, ok = ctx, false
		}
	}()

	return propagator.Extract(ctx, textMap(carrier)), true
}
