// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package tracing

import "go.opentelemetry.io/otel/codes"

// MapStatus maps an HTTP response status code onto a span status.  Success and redirect codes
// map to codes.Ok, client and server errors to codes.Error.  Everything else, including
// the zero value of an absent code, is codes.Unset and should leave the span status alone.
func MapStatus(code int) codes.Code {
	switch {
	case code >= 200 && code <= 399:
		return codes.Ok

	case code >= 400 && code <= 599:
		return codes.Error

	default:
		return codes.Unset
	}
}
