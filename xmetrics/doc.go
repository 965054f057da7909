// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

/*
Package xmetrics provides a Prometheus registry that doubles as a go-kit metrics provider.
Metrics may be preregistered from descriptors, which lets each package publish its metrics
with help text and labels, while ad hoc metrics are created on first use.
*/
package xmetrics
