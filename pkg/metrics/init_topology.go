package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initSwitchMetrics() {
	r.SwitchOperationsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "gridswitch_switch_operations_total",
			Help: "Switch transitions applied, by operation and outcome",
		},
		[]string{"operation", "status"},
	)

	r.SwitchOperationDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gridswitch_switch_operation_duration_seconds",
			Help:    "Duration of batch switch operations in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0},
		},
		[]string{"operation"},
	)

	r.SwitchesClosedTotal = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "gridswitch_switches_closed",
			Help: "Number of switches whose stored status is closed",
		},
	)

	r.SwitchesTotal = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "gridswitch_switches",
			Help: "Number of registered switches",
		},
	)
}

func (r *Registry) initTopologyMetrics() {
	r.RebuildsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "gridswitch_topology_rebuilds_total",
			Help: "Full topology rebuilds, by triggering operation",
		},
		[]string{"operation"},
	)

	r.RebuildDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "gridswitch_topology_rebuild_duration_seconds",
			Help:    "Duration of builder, classifier and connection index passes",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0},
		},
	)

	r.ConnectionsTotal = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "gridswitch_connection_records",
			Help: "Element terminals recorded in the connection index",
		},
	)

	r.LiveBusesTotal = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "gridswitch_live_buses",
			Help: "Buses currently in the live bus set",
		},
	)

	r.ConnectedBusesTotal = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "gridswitch_connected_buses",
			Help: "Connected buses derived by the last rebuild, one per switch graph component",
		},
	)

	r.OnlyLogicalBusesTotal = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "gridswitch_only_logical_buses",
			Help: "Switch endpoint buses with no element attached",
		},
	)
}

func (r *Registry) initResultMetrics() {
	r.ConsistencyWarningsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "gridswitch_consistency_warnings_total",
			Help: "Non-fatal consistency warnings, by kind",
		},
		[]string{"kind"},
	)

	r.ResultCellsResetTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "gridswitch_result_cells_reset_total",
			Help: "Result cells reset to their default after a topology change",
		},
		[]string{"component"},
	)
}
