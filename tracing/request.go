// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package tracing

import (
	"net"
	"net/url"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// Request is the metadata of an inbound request, as supplied by the host server.  Fields that
// the host cannot supply are left empty and the corresponding span attributes are omitted.
type Request struct {
	// Method is the request method, e.g. GET
	Method string

	// Scheme is the transport-level scheme, e.g. http or https
	Scheme string

	// ForwardedProto is the value of any forwarded-proto header.  When present, it takes
	// precedence over Scheme.
	ForwardedProto string

	// Host is the requested host, optionally with a port
	Host string

	// Path is the raw request path
	Path string

	// Query is the raw query string, without the leading '?'
	Query string

	// ClientAddress is the network address of the client
	ClientAddress string

	// UserAgent is the User-Agent header
	UserAgent string

	// RawURL is the full request URL, if the host server has one.  It is used for url.full
	// when it parses as an absolute URL.
	RawURL string

	// Carrier holds the propagation headers of the request
	Carrier Carrier
}

// SpanName returns the name of the server span for this request.
func (r *Request) SpanName() string {
	method := r.Method
	if len(method) == 0 {
		method = "HTTP"
	}

	return method + " request"
}

// scheme resolves the effective scheme, preferring the first forwarded-proto value
func (r *Request) scheme() string {
	if fp := r.ForwardedProto; len(fp) > 0 {
		if i := strings.IndexByte(fp, ','); i >= 0 {
			fp = fp[:i]
		}

		if fp = strings.ToLower(strings.TrimSpace(fp)); len(fp) > 0 {
			return fp
		}
	}

	return strings.ToLower(r.Scheme)
}

// serverAddress strips any port from the host
func (r *Request) serverAddress() string {
	if host, _, err := net.SplitHostPort(r.Host); err == nil {
		return host
	}

	return r.Host
}

// fullURL returns the absolute request URL.  The boolean result is false when no URL
// could be constructed, which is never an error for the request itself.
func (r *Request) fullURL(scheme string) (string, bool) {
	if len(r.RawURL) > 0 {
		if u, err := url.Parse(r.RawURL); err == nil && u.IsAbs() {
			return u.String(), true
		}
	}

	if len(scheme) == 0 || len(r.Host) == 0 {
		return "", false
	}

	raw := scheme + "://" + r.Host + r.Path
	if len(r.Query) > 0 {
		raw += "?" + r.Query
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}

	return u.String(), true
}

// requestAttributes produces the standard request attributes of the server span
func requestAttributes(r *Request) []attribute.KeyValue {
	var (
		scheme = r.scheme()
		attrs  = make([]attribute.KeyValue, 0, 8)
	)

	add := func(kv attribute.KeyValue) {
		if len(kv.Value.AsString()) > 0 {
			attrs = append(attrs, kv)
		}
	}

	add(semconv.ClientAddress(r.ClientAddress))
	add(semconv.HTTPRequestMethodKey.String(r.Method))
	add(semconv.UserAgentOriginal(r.UserAgent))
	add(semconv.ServerAddress(r.serverAddress()))
	if full, ok := r.fullURL(scheme); ok {
		add(semconv.URLFull(full))
	}

	add(semconv.URLScheme(scheme))
	add(semconv.URLPath(r.Path))
	add(semconv.URLQuery(r.Query))

	return attrs
}
