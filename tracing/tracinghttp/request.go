// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package tracinghttp

import (
	"net"
	"net/http"
	"strings"

	"github.com/xmidt-org/servertrace/tracing"
)

// HeaderCarrier exposes request headers as a propagation carrier.  Multiple values of the
// same header are joined with commas.
func HeaderCarrier(h http.Header) tracing.Carrier {
	return tracing.Carrier{
		Lookup: func(key string) (string, bool) {
			values := h.Values(key)
			if len(values) == 0 {
				return "", false
			}

			return strings.Join(values, ","), true
		},
		Key: tracing.HeaderKey,
	}
}

// NewRequest extracts the tracing metadata of a server request.  If forwardedProtoHeader
// is empty, no forwarded scheme is consulted.
func NewRequest(request *http.Request, forwardedProtoHeader string) *tracing.Request {
	scheme := "http"
	if request.TLS != nil {
		scheme = "https"
	}

	if len(request.URL.Scheme) > 0 {
		scheme = request.URL.Scheme
	}

	host := request.Host
	if len(host) == 0 {
		host = request.URL.Host
	}

	r := &tracing.Request{
		Method:        request.Method,
		Scheme:        scheme,
		Host:          host,
		Path:          request.URL.EscapedPath(),
		Query:         request.URL.RawQuery,
		ClientAddress: clientAddress(request.RemoteAddr),
		UserAgent:     request.UserAgent(),
		RawURL:        request.RequestURI,
		Carrier:       HeaderCarrier(request.Header),
	}

	if len(forwardedProtoHeader) > 0 {
		r.ForwardedProto = request.Header.Get(forwardedProtoHeader)
	}

	return r
}

// clientAddress strips the port from a RemoteAddr
func clientAddress(remoteAddr string) string {
	if host, _, err := net.SplitHostPort(remoteAddr); err == nil {
		return host
	}

	return remoteAddr
}
