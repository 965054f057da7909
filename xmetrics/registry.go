// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package xmetrics

import (
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/go-kit/kit/metrics"
	gokitprometheus "github.com/go-kit/kit/metrics/prometheus"
	"github.com/go-kit/kit/metrics/provider"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the core abstraction for this package.  It is a Prometheus registry and a go-kit
// provider.Provider all in one.
//
// For any metric that is already defined, the provider methods return a new go-kit wrapper for
// that metric.  New, ad hoc metrics are created with the registry's namespace and subsystem, and
// are cached for subsequent calls.  Asking for an existing metric as a different type panics.
type Registry interface {
	provider.Provider
	prometheus.Gatherer
	prometheus.Registerer
}

type registry struct {
	*prometheus.Registry

	namespace string
	subsystem string

	lock  sync.Mutex
	cache map[string]prometheus.Collector
}

// NewRegistry creates a Registry, preregistering the metrics from the options and the given modules.
// A nil Options uses the defaults.
func NewRegistry(o *Options, modules ...Module) (Registry, error) {
	r := &registry{
		Registry:  o.registry(),
		namespace: o.namespace(),
		subsystem: o.subsystem(),
		cache:     make(map[string]prometheus.Collector),
	}

	for _, module := range append([]Module{o.Module}, modules...) {
		for _, m := range module() {
			if err := r.preregister(m); err != nil {
				return nil, err
			}
		}
	}

	return r, nil
}

func (r *registry) preregister(m Metric) error {
	c, err := NewCollector(m, r.namespace, r.subsystem)
	if err != nil {
		return err
	}

	if err := r.Registry.Register(c); err != nil {
		return fmt.Errorf("error while preregistering metric %s: %w", m.Name, err)
	}

	r.cache[m.Name] = c
	return nil
}

// collector returns the cached collector for name, creating an ad hoc one of the given type as needed
func (r *registry) collector(name, metricType string) prometheus.Collector {
	r.lock.Lock()
	defer r.lock.Unlock()

	if existing, ok := r.cache[name]; ok {
		return existing
	}

	c, err := NewCollector(Metric{Name: name, Type: metricType}, r.namespace, r.subsystem)
	if err != nil {
		panic(err)
	}

	if err := r.Registry.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if !errors.As(err, &already) {
			panic(err)
		}

		c = already.ExistingCollector
	}

	r.cache[name] = c
	return c
}

func (r *registry) NewCounter(name string) metrics.Counter {
	counterVec, ok := r.collector(name, CounterType).(*prometheus.CounterVec)
	if !ok {
		panic(fmt.Errorf("the metric %s is not a counter", name))
	}

	return gokitprometheus.NewCounter(counterVec)
}

func (r *registry) NewGauge(name string) metrics.Gauge {
	gaugeVec, ok := r.collector(name, GaugeType).(*prometheus.GaugeVec)
	if !ok {
		panic(fmt.Errorf("the metric %s is not a gauge", name))
	}

	return gokitprometheus.NewGauge(gaugeVec)
}

// NewHistogram ignores the bucket count.  Preregister a histogram to control its buckets.
func (r *registry) NewHistogram(name string, _ int) metrics.Histogram {
	histogramVec, ok := r.collector(name, HistogramType).(*prometheus.HistogramVec)
	if !ok {
		panic(fmt.Errorf("the metric %s is not a histogram", name))
	}

	return gokitprometheus.NewHistogram(histogramVec)
}

func (r *registry) Stop() {
}

// Handler serves the metrics of a Gatherer in the Prometheus exposition format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
