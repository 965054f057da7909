// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package xmetrics

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	CounterType   = "counter"
	GaugeType     = "gauge"
	HistogramType = "histogram"
)

var (
	// ErrMissingName indicates a Metric without a name
	ErrMissingName = errors.New("a name is required for a metric")

	// ErrUnsupportedType indicates a Metric whose Type is not one of the constants of this package
	ErrUnsupportedType = errors.New("unsupported metric type")
)

// Module is a function type that returns prebuilt metrics.
type Module func() []Metric

// Metric describes a single metric that will be preregistered.  This type loosely
// corresponds with Prometheus' Opts struct.
type Metric struct {
	// Name is the required name of this metric.
	Name string `mapstructure:"name"`

	// Type is the required type of metric.  This value must be one of the constants defined in this package.
	Type string `mapstructure:"type"`

	// Namespace is the namespace of this metric.  The registry's namespace is used if this is not supplied.
	Namespace string `mapstructure:"namespace"`

	// Subsystem is the subsystem of this metric.  The registry's subsystem is used if this is not supplied.
	Subsystem string `mapstructure:"subsystem"`

	// Help is the help string for this metric.  If not supplied, the metric's name is used
	Help string `mapstructure:"help"`

	// ConstLabels are the Prometheus ConstLabels for this metric.  This field is optional.
	ConstLabels map[string]string `mapstructure:"constLabels"`

	// Buckets describes the observation buckets for a histogram.  This field is only valid for histogram metrics
	// and is ignored for other metric types.
	Buckets []float64 `mapstructure:"buckets"`
}

// NewCollector creates a Prometheus metric from a Metric descriptor.  Namespace and subsystem default
// to the given values, and help defaults to the metric name.  The returned collector has no variable labels.
func NewCollector(m Metric, defaultNamespace, defaultSubsystem string) (prometheus.Collector, error) {
	if len(m.Name) == 0 {
		return nil, ErrMissingName
	}

	var (
		namespace = m.Namespace
		subsystem = m.Subsystem
		help      = m.Help
	)

	if len(namespace) == 0 {
		namespace = defaultNamespace
	}

	if len(subsystem) == 0 {
		subsystem = defaultSubsystem
	}

	if len(help) == 0 {
		help = m.Name
	}

	switch m.Type {
	case CounterType:
		return prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   subsystem,
			Name:        m.Name,
			Help:        help,
			ConstLabels: prometheus.Labels(m.ConstLabels),
		}, nil), nil

	case GaugeType:
		return prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   namespace,
			Subsystem:   subsystem,
			Name:        m.Name,
			Help:        help,
			ConstLabels: prometheus.Labels(m.ConstLabels),
		}, nil), nil

	case HistogramType:
		return prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   namespace,
			Subsystem:   subsystem,
			Name:        m.Name,
			Help:        help,
			Buckets:     m.Buckets,
			ConstLabels: prometheus.Labels(m.ConstLabels),
		}, nil), nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedType, m.Type)
	}
}
