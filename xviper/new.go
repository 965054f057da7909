// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package xviper

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	DefaultNameFlag = "name"
	DefaultFileFlag = "file"
)

// Option is a configuration step applied to a Viper instance
type Option func(*viper.Viper) error

// AddConfigPaths adds search paths for the configuration file
func AddConfigPaths(paths ...string) Option {
	return func(v *viper.Viper) error {
		for _, p := range paths {
			v.AddConfigPath(p)
		}

		return nil
	}
}

// SetConfigName sets the base name, without extension, of the configuration file
func SetConfigName(name string) Option {
	return func(v *viper.Viper) error {
		v.SetConfigName(name)
		return nil
	}
}

// AutomaticEnv turns on environment overrides under the given prefix.  Nested keys map onto
// underscores, so that tracing.deferredTimeout is overridden by PREFIX_TRACING_DEFERREDTIMEOUT.
func AutomaticEnv(prefix string) Option {
	return func(v *viper.Viper) error {
		v.SetEnvPrefix(prefix)
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
		v.AutomaticEnv()
		return nil
	}
}

// BindPFlags binds all flags of the given set
func BindPFlags(fs *pflag.FlagSet) Option {
	return func(v *viper.Viper) error {
		return v.BindPFlags(fs)
	}
}

// BindConfig lets the command line choose the configuration.  If the file flag is set, its value
// is the full path of the configuration file.  Otherwise, if the name flag is set, its value
// replaces the configuration file name.  Flags that are missing from fs are ignored.
func BindConfig(fs *pflag.FlagSet, fileFlag, nameFlag string) Option {
	return func(v *viper.Viper) error {
		if f := fs.Lookup(fileFlag); f != nil && len(f.Value.String()) > 0 {
			v.SetConfigFile(f.Value.String())
			return nil
		}

		if f := fs.Lookup(nameFlag); f != nil && len(f.Value.String()) > 0 {
			v.SetConfigName(f.Value.String())
		}

		return nil
	}
}

// ReadInConfig reads the configuration.  When optional is true, a configuration file that
// cannot be found is not an error, which leaves defaults, environment and flags in effect.
func ReadInConfig(optional bool) Option {
	return func(v *viper.Viper) error {
		err := v.ReadInConfig()
		if err == nil {
			return nil
		}

		var notFound viper.ConfigFileNotFoundError
		if optional && errors.As(err, &notFound) {
			return nil
		}

		return fmt.Errorf("unable to read configuration: %w", err)
	}
}

// StdOptions applies the standard conventions for an application:  configuration files named
// after the application under /etc/<name>, $HOME/.<name> and the working directory, environment
// variables prefixed with the application name, and the flag set bound, including the
// DefaultFileFlag and DefaultNameFlag overrides.
func StdOptions(applicationName string, fs *pflag.FlagSet) Option {
	return func(v *viper.Viper) error {
		options := []Option{
			AddConfigPaths(
				fmt.Sprintf("/etc/%s", applicationName),
				fmt.Sprintf("$HOME/.%s", applicationName),
				".",
			),
			SetConfigName(applicationName),
			AutomaticEnv(applicationName),
		}

		if fs != nil {
			options = append(options,
				BindPFlags(fs),
				BindConfig(fs, DefaultFileFlag, DefaultNameFlag),
			)
		}

		for _, o := range options {
			if err := o(v); err != nil {
				return err
			}
		}

		return nil
	}
}

// New creates and configures a Viper instance
func New(o ...Option) (*viper.Viper, error) {
	return Configure(viper.New(), o...)
}

// Configure applies options in order, stopping at the first error
func Configure(v *viper.Viper, o ...Option) (*viper.Viper, error) {
	if v != nil {
		for _, f := range o {
			if err := f(v); err != nil {
				return nil, err
			}
		}
	}

	return v, nil
}
