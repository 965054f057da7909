// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package xviper

import (
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// DecodeHook is the decoding applied to configuration structs:  strings such as "15s" decode
// into time.Duration values and comma-separated strings decode into slices.
func DecodeHook() viper.DecoderConfigOption {
	return viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	)
}

// KeyUnmarshaler is the subset of Viper behavior that decodes a configuration subtree
type KeyUnmarshaler interface {
	UnmarshalKey(string, interface{}, ...viper.DecoderConfigOption) error
}

// UnmarshalKey decodes the subtree under key into target, using DecodeHook.  A nil
// unmarshaler leaves target untouched.
func UnmarshalKey(u KeyUnmarshaler, key string, target interface{}) error {
	if u == nil {
		return nil
	}

	return u.UnmarshalKey(key, target, DecodeHook())
}

type defaulter interface {
	SetDefault(string, interface{})
}

// Defaults maps configuration keys onto their default values
type Defaults map[string]interface{}

// ApplyDefaults sets each of the given defaults
func ApplyDefaults(d defaulter, v Defaults) {
	for key, value := range v {
		d.SetDefault(key, value)
	}
}
