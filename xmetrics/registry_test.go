// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package xmetrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testModule() []Metric {
	return []Metric{
		{
			Name: "counter",
			Type: CounterType,
			Help: "a test counter",
		},
		{
			Name: "gauge",
			Type: GaugeType,
			Help: "a test gauge",
		},
	}
}

func newTestRegistry(t *testing.T, m ...Module) Registry {
	r, err := NewRegistry(
		&Options{
			Namespace:               "test",
			Subsystem:               "basic",
			Pedantic:                true,
			DisableGoCollector:      true,
			DisableProcessCollector: true,
			Metrics: []Metric{
				{
					Name:    "histogram",
					Type:    HistogramType,
					Buckets: []float64{0.5, 1.0, 1.5},
				},
			},
		},
		m...,
	)

	require.NoError(t, err)
	require.NotNil(t, r)
	return r
}

func gathered(t *testing.T, g prometheus.Gatherer) map[string]float64 {
	families, err := g.Gather()
	require.NoError(t, err)

	values := make(map[string]float64)
	for _, family := range families {
		for _, m := range family.GetMetric() {
			switch {
			case m.GetCounter() != nil:
				values[family.GetName()] = m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				values[family.GetName()] = m.GetGauge().GetValue()
			case m.GetHistogram() != nil:
				values[family.GetName()] = float64(m.GetHistogram().GetSampleCount())
			}
		}
	}

	return values
}

func testRegistryProvider(t *testing.T) {
	var (
		assert = assert.New(t)
		r      = newTestRegistry(t, testModule)
	)

	r.NewCounter("counter").Add(2)
	r.NewCounter("counter").Add(1)
	r.NewGauge("gauge").Set(5)
	r.NewGauge("gauge").Add(-2)
	r.NewHistogram("histogram", 0).Observe(0.75)
	r.NewCounter("ad_hoc").Add(1)
	r.Stop()

	values := gathered(t, r)
	assert.Equal(3.0, values["test_basic_counter"])
	assert.Equal(3.0, values["test_basic_gauge"])
	assert.Equal(1.0, values["test_basic_histogram"])
	assert.Equal(1.0, values["test_basic_ad_hoc"])
}

func testRegistryTypeMismatch(t *testing.T) {
	var (
		assert = assert.New(t)
		r      = newTestRegistry(t, testModule)
	)

	assert.Panics(func() { r.NewCounter("gauge") })
	assert.Panics(func() { r.NewGauge("counter") })
	assert.Panics(func() { r.NewHistogram("counter", 10) })
	assert.NotPanics(func() { r.NewHistogram("ad_hoc_histogram", 10) })
}

func testRegistryDuplicate(t *testing.T) {
	r, err := NewRegistry(&Options{DisableGoCollector: true, DisableProcessCollector: true}, testModule, testModule)
	assert.Nil(t, r)
	assert.Error(t, err)
}

func testRegistryInvalidMetric(t *testing.T) {
	var (
		assert   = assert.New(t)
		testData = []struct {
			metric   Metric
			expected error
		}{
			{Metric{Type: CounterType}, ErrMissingName},
			{Metric{Name: "summary", Type: "summary"}, ErrUnsupportedType},
		}
	)

	for _, record := range testData {
		metric := record.metric
		r, err := NewRegistry(nil, func() []Metric { return []Metric{metric} })
		assert.Nil(r)
		assert.True(errors.Is(err, record.expected))
	}
}

func testRegistryDefaults(t *testing.T) {
	var (
		assert  = assert.New(t)
		require = require.New(t)
	)

	r, err := NewRegistry(nil)
	require.NoError(err)

	r.NewCounter("requests").Add(1)
	values := gathered(t, r)
	assert.Equal(1.0, values[DefaultNamespace+"_"+DefaultSubsystem+"_requests"])
	assert.Contains(values, "go_goroutines")
}

func TestRegistry(t *testing.T) {
	t.Run("Provider", testRegistryProvider)
	t.Run("TypeMismatch", testRegistryTypeMismatch)
	t.Run("Duplicate", testRegistryDuplicate)
	t.Run("InvalidMetric", testRegistryInvalidMetric)
	t.Run("Defaults", testRegistryDefaults)
}

func TestHandler(t *testing.T) {
	var (
		assert   = assert.New(t)
		require  = require.New(t)
		r        = newTestRegistry(t, testModule)
		response = httptest.NewRecorder()
	)

	r.NewCounter("counter").Add(1)
	Handler(r).ServeHTTP(response, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(http.StatusOK, response.Code)

	body, err := io.ReadAll(response.Body)
	require.NoError(err)
	assert.Contains(string(body), "# HELP test_basic_counter a test counter")
	assert.Contains(string(body), "test_basic_counter 1")
}
