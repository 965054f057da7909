// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

// tracedemo serves a few endpoints through the tracing middleware, as a reference for wiring
// configuration, exporters, metrics and routing around it.
package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/xmidt-org/servertrace/xviper"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

const applicationName = "tracedemo"

var defaults = xviper.Defaults{
	"address":                 ":8080",
	"log.level":               "info",
	"otel.exporter":           "stdout",
	"otel.serviceName":        applicationName,
	"tracing.deferredTimeout": "30s",
	"tracing.enrichLogger":    true,
	"shutdownTimeout":         "15s",
}

// newViper parses the command line and loads the configuration it selects.  A missing
// configuration file is not an error.
func newViper(arguments []string) (*viper.Viper, error) {
	fs := pflag.NewFlagSet(applicationName, pflag.ContinueOnError)
	fs.StringP(xviper.DefaultFileFlag, "f", "", "the configuration file to use.  Overrides --name.")
	fs.StringP(xviper.DefaultNameFlag, "n", applicationName, "the configuration name, without extension, to search for")
	fs.StringP("address", "a", "", "the listen address of the server")
	if err := fs.Parse(arguments); err != nil {
		return nil, err
	}

	v, err := xviper.New(
		xviper.StdOptions(applicationName, fs),
		xviper.ReadInConfig(true),
	)

	if err != nil {
		return nil, err
	}

	xviper.ApplyDefaults(v, defaults)
	return v, nil
}

func newApp(v *viper.Viper) *fx.App {
	return fx.New(
		fx.Supply(v),
		fx.WithLogger(func(l *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: l}
		}),
		fx.Provide(
			provideLogger,
			provideRegistry,
			provideTracerProvider,
			provideMiddleware,
			provideRouter,
		),
		fx.Invoke(invokeServer),
		fx.StopTimeout(v.GetDuration("shutdownTimeout")+time.Second),
	)
}

func run(arguments []string) error {
	v, err := newViper(arguments)
	if errors.Is(err, pflag.ErrHelp) {
		return nil
	} else if err != nil {
		return err
	}

	app := newApp(v)
	if err := app.Err(); err != nil {
		return err
	}

	app.Run()
	return nil
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %s\n", applicationName, err)
		os.Exit(1)
	}
}
