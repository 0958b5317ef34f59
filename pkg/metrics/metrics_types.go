package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all topology metrics
type Registry struct {
	// Switch operations
	SwitchOperationsTotal   *prometheus.CounterVec
	SwitchOperationDuration *prometheus.HistogramVec
	SwitchesClosedTotal     prometheus.Gauge
	SwitchesTotal           prometheus.Gauge

	// Topology rebuilds
	RebuildsTotal    *prometheus.CounterVec
	RebuildDuration  prometheus.Histogram
	ConnectionsTotal prometheus.Gauge

	// Bus partition
	LiveBusesTotal        prometheus.Gauge
	ConnectedBusesTotal   prometheus.Gauge
	OnlyLogicalBusesTotal prometheus.Gauge

	// Consistency and results
	ConsistencyWarningsTotal *prometheus.CounterVec
	ResultCellsResetTotal    *prometheus.CounterVec

	registry *prometheus.Registry
}

var (
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the global metrics registry
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),
	}

	r.initSwitchMetrics()
	r.initTopologyMetrics()
	r.initResultMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}
