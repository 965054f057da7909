// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package tracinghttp

import (
	"context"
	"net/http"

	"github.com/xmidt-org/servertrace/tracing"
)

// Decorator traces ordinary http.Handlers.  Each request produces one server span that ends
// when the decorated handler returns or panics.  Panics are propagated unchanged to net/http.
type Decorator struct {
	Middleware *tracing.Middleware
}

// Decorate provides an Alice-compatible constructor.  If the Middleware is disabled,
// delegate is returned undecorated.
func (d Decorator) Decorate(delegate http.Handler) http.Handler {
	if !d.Middleware.Enabled() {
		return delegate
	}

	var (
		middleware           = d.Middleware
		forwardedProtoHeader = middleware.ForwardedProtoHeader()
	)

	return http.HandlerFunc(func(response http.ResponseWriter, request *http.Request) {
		var (
			rec     recorder
			wrapped = rec.wrap(response)
		)

		// the downstream never fails, so there is no error to handle
		_, _ = middleware.Serve(
			request.Context(),
			NewRequest(request, forwardedProtoHeader),
			tracing.HandlerFunc(func(ctx context.Context, _ *tracing.Request) (tracing.Response, error) {
				delegate.ServeHTTP(wrapped, request.WithContext(ctx))
				return rec.response(wrapped.Header()), nil
			}),
		)
	})
}

// Decorate is a convenience for Decorator{Middleware: m}.Decorate
func Decorate(m *tracing.Middleware, delegate http.Handler) http.Handler {
	return Decorator{Middleware: m}.Decorate(delegate)
}
