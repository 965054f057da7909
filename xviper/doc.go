// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

/*
Package xviper provides the viper conventions used to configure servertrace processes:  standard
configuration paths, an environment prefix derived from the application name, command line
overrides of the configuration file, and mapstructure decode hooks for durations and lists.
*/
package xviper
