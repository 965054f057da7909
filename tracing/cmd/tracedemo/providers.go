// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/spf13/viper"
	"github.com/xmidt-org/servertrace/tracing"
	"github.com/xmidt-org/servertrace/xlistener"
	"github.com/xmidt-org/servertrace/xmetrics"
	"github.com/xmidt-org/servertrace/xotel"
	"github.com/xmidt-org/servertrace/xviper"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func provideLogger(v *viper.Viper) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(v.GetString("log.level"))
	if err != nil {
		return nil, err
	}

	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(level)
	return config.Build()
}

func provideRegistry(v *viper.Viper) (xmetrics.Registry, error) {
	o := xmetrics.Options{
		Namespace: "xmidt",
		Subsystem: applicationName,
	}

	if err := xviper.UnmarshalKey(v, "metrics", &o); err != nil {
		return nil, err
	}

	return xmetrics.NewRegistry(&o, tracing.Metrics, xlistener.Metrics)
}

// TracingOut holds the process-wide OpenTelemetry components.  Provider is nil when no
// exporter is configured.
type TracingOut struct {
	fx.Out

	Provider   *sdktrace.TracerProvider
	Propagator propagation.TextMapPropagator
}

func provideTracerProvider(lc fx.Lifecycle, v *viper.Viper, logger *zap.Logger) (TracingOut, error) {
	o, err := xotel.FromViper(v, "otel")
	if err != nil {
		return TracingOut{}, err
	}

	propagator, err := xotel.NewPropagator(o.Propagators...)
	if err != nil {
		return TracingOut{}, err
	}

	tp, err := xotel.NewTracerProvider(context.Background(), o)
	if err != nil {
		return TracingOut{}, err
	}

	otel.SetTextMapPropagator(propagator)
	if tp != nil {
		otel.SetTracerProvider(tp)
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				logger.Info("flushing spans")
				return tp.Shutdown(ctx)
			},
		})
	}

	return TracingOut{
		Provider:   tp,
		Propagator: propagator,
	}, nil
}

// MiddlewareIn holds the components of the tracing middleware
type MiddlewareIn struct {
	fx.In

	Viper      *viper.Viper
	Logger     *zap.Logger
	Registry   xmetrics.Registry
	Provider   *sdktrace.TracerProvider
	Propagator propagation.TextMapPropagator
}

func provideMiddleware(in MiddlewareIn) (*tracing.Middleware, error) {
	var c tracing.Config
	if err := xviper.UnmarshalKey(in.Viper, "tracing", &c); err != nil {
		return nil, err
	}

	return tracing.New(
		c,
		xotel.WithTracerProvider(in.Provider),
		tracing.WithPropagator(in.Propagator),
		tracing.WithLogger(in.Logger),
		tracing.WithMeasures(tracing.NewMeasures(in.Registry)),
	)
}

func provideRouter(m *tracing.Middleware, r xmetrics.Registry, logger *zap.Logger) *mux.Router {
	return newRouter(m, r, logger)
}

// ServerIn holds the components of the HTTP server
type ServerIn struct {
	fx.In

	Lifecycle  fx.Lifecycle
	Shutdowner fx.Shutdowner
	Viper      *viper.Viper
	Router     *mux.Router
	Registry   xmetrics.Registry
	Logger     *zap.Logger
}

func invokeServer(in ServerIn) error {
	var o xlistener.Options
	if err := xviper.UnmarshalKey(in.Viper, "listener", &o); err != nil {
		return err
	}

	o.Address = in.Viper.GetString("address")
	o.Logger = in.Logger
	o.Rejected = in.Registry.NewCounter(xlistener.RejectedConnectionsCounter)
	o.Active = in.Registry.NewGauge(xlistener.ActiveConnectionsGauge)

	var (
		logger = in.Logger
		server = &http.Server{
			Handler:           in.Router,
			ReadHeaderTimeout: 10 * time.Second,
			ErrorLog:          zap.NewStdLog(logger),
		}
	)

	in.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			l, err := xlistener.New(ctx, o)
			if err != nil {
				return err
			}

			logger.Info("starting server", zap.String("address", l.Addr().String()), zap.Int("maxConnections", o.MaxConnections))
			go func() {
				if err := server.Serve(l); !errors.Is(err, http.ErrServerClosed) {
					logger.Error("server exited", zap.Error(err))
					in.Shutdowner.Shutdown()
				}
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			ctx, cancel := context.WithTimeout(ctx, in.Viper.GetDuration("shutdownTimeout"))
			defer cancel()

			logger.Info("stopping server")
			return server.Shutdown(ctx)
		},
	})

	return nil
}
