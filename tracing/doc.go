// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

/*
Package tracing provides server-side request tracing on top of OpenTelemetry.  The key type
in this package is Middleware, which wraps a Handler so that each request produces exactly one
SERVER span.

The span is a child of whatever trace context the request carries, it is installed as the
current context of the request's Scope for the duration of the downstream call, and it is ended
exactly once: when an Immediate response is returned, when a Deferred response completes, when
the downstream returns an error or panics, or when the request is abandoned.

A Middleware without a tracer provider is disabled and passes requests through untouched.
*/
package tracing
