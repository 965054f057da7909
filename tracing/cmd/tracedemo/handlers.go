// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/mux"
	"github.com/justinas/alice"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/xmidt-org/sallust"
	"github.com/xmidt-org/servertrace/tracing"
	"github.com/xmidt-org/servertrace/tracing/tracinghttp"
	"github.com/xmidt-org/servertrace/xmetrics"
	"go.uber.org/zap"
)

const (
	defaultDelay = 100 * time.Millisecond
	maxDelay     = 10 * time.Second
)

var errDemoFailure = errors.New("this endpoint always fails")

func newRouter(m *tracing.Middleware, g prometheus.Gatherer, logger *zap.Logger) *mux.Router {
	var (
		router = mux.NewRouter()
		traced = alice.New(tracinghttp.Decorator{Middleware: m}.Decorate)
	)

	router.Handle("/metrics", xmetrics.Handler(g)).Methods("GET")
	router.Handle("/hello", traced.ThenFunc(hello)).Methods("GET")

	router.Handle("/deferred", tracinghttp.Server{
		Handler:              m.Then(tracing.HandlerFunc(deferredHello)),
		Logger:               logger,
		ForwardedProtoHeader: m.ForwardedProtoHeader(),
	}).Methods("GET")

	router.Handle("/fail", tracinghttp.Server{
		Handler:              m.Then(tracing.HandlerFunc(fail)),
		Logger:               logger,
		ForwardedProtoHeader: m.ForwardedProtoHeader(),
	}).Methods("GET", "POST")

	return router
}

func hello(response http.ResponseWriter, request *http.Request) {
	sallust.Get(request.Context()).Debug("saying hello")
	response.Header().Set("Content-Type", "text/plain; charset=utf-8")
	response.Write([]byte("hello\n"))
}

// delay is the optional ?delay= parameter, capped at maxDelay
func delay(rawQuery string) time.Duration {
	values, err := url.ParseQuery(rawQuery)
	if err != nil {
		return defaultDelay
	}

	d, err := time.ParseDuration(values.Get("delay"))
	switch {
	case err != nil || d < 0:
		return defaultDelay
	case d > maxDelay:
		return maxDelay
	default:
		return d
	}
}

// deferredHello answers from a timer goroutine, after the handler has returned
func deferredHello(ctx context.Context, r *tracing.Request) (tracing.Response, error) {
	var (
		logger = sallust.Get(ctx)
		d      = delay(r.Query)
	)

	return tracing.Deferred(func(respond tracing.Responder) {
		time.AfterFunc(d, func() {
			logger.Debug("completing deferred hello", zap.Duration("delay", d))
			respond(tracing.Immediate{
				StatusCode: http.StatusOK,
				Header:     http.Header{"Content-Type": []string{"text/plain; charset=utf-8"}},
				Body:       "deferred hello\n",
			})
		})
	}), nil
}

func fail(context.Context, *tracing.Request) (tracing.Response, error) {
	return nil, errDemoFailure
}
