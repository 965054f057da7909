// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package xviper

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
	Names   []string      `mapstructure:"names"`
	Enabled bool          `mapstructure:"enabled"`
}

func TestUnmarshalKey(t *testing.T) {
	var (
		assert  = assert.New(t)
		require = require.New(t)

		v = viper.New()
	)

	v.SetConfigType("yaml")
	require.NoError(v.ReadConfig(strings.NewReader(`
test:
  timeout: 250ms
  names: a,b,c
  enabled: true
`)))

	var c testConfig
	require.NoError(UnmarshalKey(v, "test", &c))
	assert.Equal(
		testConfig{
			Timeout: 250 * time.Millisecond,
			Names:   []string{"a", "b", "c"},
			Enabled: true,
		},
		c,
	)

	var untouched = testConfig{Enabled: true}
	assert.NoError(UnmarshalKey(nil, "test", &untouched))
	assert.Equal(testConfig{Enabled: true}, untouched)

	assert.Error(UnmarshalKey(v, "test.timeout", &c))
}

func TestApplyDefaults(t *testing.T) {
	var (
		assert = assert.New(t)
		v      = viper.New()
	)

	ApplyDefaults(v, Defaults{
		"address":                 ":8080",
		"tracing.deferredTimeout": "30s",
	})

	v.Set("address", ":9090")
	assert.Equal(":9090", v.GetString("address"))
	assert.Equal(30*time.Second, v.GetDuration("tracing.deferredTimeout"))
}
