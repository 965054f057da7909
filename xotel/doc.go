// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

/*
Package xotel bootstraps OpenTelemetry for a process:  it builds the SDK tracer provider, with its
exporter, sampler and resource, and the text map propagator from configuration.

An empty or "noop" exporter produces no provider at all, which leaves tracing.Middleware disabled.
*/
package xotel
