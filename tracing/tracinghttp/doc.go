// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

/*
Package tracinghttp adapts the tracing package to net/http.

Decorator wraps ordinary http.Handlers and is compatible with github.com/justinas/alice.  Server
hosts a tracing.Handler, which may answer with either an Immediate or a Deferred response.
*/
package tracinghttp
