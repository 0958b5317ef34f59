package metrics

import (
	"time"
)

// RecordSwitchOperation records a batch switch operation over n switches
func (r *Registry) RecordSwitchOperation(operation, status string, n int, duration time.Duration) {
	r.SwitchOperationsTotal.WithLabelValues(operation, status).Add(float64(n))
	r.SwitchOperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordRejected counts an operation refused before it touched the topology
func (r *Registry) RecordRejected(operation string) {
	r.SwitchOperationsTotal.WithLabelValues(operation, "error").Inc()
}

// RecordRebuild records a full topology rebuild
func (r *Registry) RecordRebuild(operation string, duration time.Duration, connections int) {
	r.RebuildsTotal.WithLabelValues(operation).Inc()
	r.RebuildDuration.Observe(duration.Seconds())
	r.ConnectionsTotal.Set(float64(connections))
}

// UpdateTopology sets the bus partition and switch gauges
func (r *Registry) UpdateTopology(live, connected, onlyLogical, switches, closed int) {
	r.LiveBusesTotal.Set(float64(live))
	r.ConnectedBusesTotal.Set(float64(connected))
	r.OnlyLogicalBusesTotal.Set(float64(onlyLogical))
	r.SwitchesTotal.Set(float64(switches))
	r.SwitchesClosedTotal.Set(float64(closed))
}

// RecordWarning counts a consistency warning
func (r *Registry) RecordWarning(kind string) {
	r.ConsistencyWarningsTotal.WithLabelValues(kind).Inc()
}

// RecordResultReset counts result cells reset for a component type
func (r *Registry) RecordResultReset(component string, cells int) {
	r.ResultCellsResetTotal.WithLabelValues(component).Add(float64(cells))
}
