package results

import (
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/cluso-gridswitch/pkg/grid"
	"github.com/dd0wney/cluso-gridswitch/pkg/logging"
	"github.com/dd0wney/cluso-gridswitch/pkg/metrics"
)

func snapshots(n int) []time.Time {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]time.Time, n)
	for i := range out {
		out[i] = start.Add(time.Duration(i) * time.Hour)
	}
	return out
}

func newNetwork(t *testing.T) *grid.Network {
	t.Helper()
	n := grid.NewNetwork()
	for _, id := range []string{"A", "B", "C"} {
		require.NoError(t, n.AddBus(grid.Bus{ID: id}))
	}
	require.NoError(t, n.Add("Line", "L1", "A", "B"))
	require.NoError(t, n.Add("Link", "K1", "A", "B", "C"))
	require.NoError(t, n.Add("Generator", "G1", "A"))
	require.NoError(t, n.Add("Load", "D1", "C"))
	return n
}

func TestInvalidate_NoSnapshotsIsNoop(t *testing.T) {
	n := newNetwork(t)
	inv := NewInvalidator(n, logging.NewNopLogger(), nil)

	assert.Equal(t, 0, inv.Invalidate())
	_, ok := n.Results().Lookup("Generator", "p")
	assert.False(t, ok, "no frames created without a time index")
}

func TestInvalidate_ResetsToDefaults(t *testing.T) {
	n := newNetwork(t)
	n.SetSnapshots(snapshots(2))
	require.NoError(t, n.SetResult("Generator", "p", "G1", []float64{10, 20}))
	require.NoError(t, n.SetResult("Bus", "v_mag_pu", "A", []float64{0.97, 1.02}))
	require.NoError(t, n.SetResult("Line", "p0", "L1", []float64{5, 6}))

	inv := NewInvalidator(n, logging.NewNopLogger(), nil)
	cells := inv.Invalidate()

	store := n.Results()
	gen, ok := store.Lookup("Generator", "p")
	require.True(t, ok)
	assert.Equal(t, []float64{0, 0}, gen.Column("G1"))

	vmag, ok := store.Lookup("Bus", "v_mag_pu")
	require.True(t, ok)
	assert.Equal(t, []string{"A", "B", "C"}, vmag.Columns, "bus frames follow the live bus set")
	for _, id := range vmag.Columns {
		assert.Equal(t, []float64{1, 1}, vmag.Column(id))
	}

	p0, ok := store.Lookup("Line", "p0")
	require.True(t, ok)
	assert.Equal(t, []float64{0, 0}, p0.Column("L1"))

	// Link has three ports, so p0, p1, p2 are reset
	for _, attr := range []string{"p0", "p1", "p2"} {
		f, ok := store.Lookup("Link", attr)
		require.True(t, ok, attr)
		assert.Equal(t, []string{"K1"}, f.Columns)
	}

	_, ok = store.Lookup("Line", "q0")
	assert.False(t, ok, "reactive series untouched without bus q data")

	// per snapshot: bus 3x3, line 2, link 3, generator 1, load 1
	want := 2 * (9 + 2 + 3 + 1 + 1)
	assert.Equal(t, want, cells)
}

func TestInvalidate_ReactiveWhenBusQPresent(t *testing.T) {
	n := newNetwork(t)
	n.SetSnapshots(snapshots(3))
	require.NoError(t, n.SetResult("Bus", "q", "A", []float64{1, 2, 3}))
	require.NoError(t, n.SetResult("Load", "q", "D1", []float64{4, 5, 6}))
	require.NoError(t, n.SetResult("Line", "q1", "L1", []float64{7, 8, 9}))

	NewInvalidator(n, logging.NewNopLogger(), nil).InvalidateResults()

	store := n.Results()
	q, ok := store.Lookup("Load", "q")
	require.True(t, ok)
	assert.Equal(t, []float64{0, 0, 0}, q.Column("D1"))

	q1, ok := store.Lookup("Line", "q1")
	require.True(t, ok)
	assert.Equal(t, []float64{0, 0, 0}, q1.Column("L1"))

	_, ok = store.Lookup("Link", "q0")
	assert.False(t, ok, "links carry no reactive flows")
}

func TestInvalidate_ReindexesToCurrentElements(t *testing.T) {
	n := newNetwork(t)
	n.SetSnapshots(snapshots(1))
	require.NoError(t, n.SetResult("Generator", "p", "G1", []float64{3}))
	require.NoError(t, n.Remove("Generator", "G1"))
	require.NoError(t, n.Add("Generator", "G2", "B"))
	n.DropBuses("C")

	NewInvalidator(n, logging.NewNopLogger(), nil).Invalidate()

	gen, _ := n.Results().Lookup("Generator", "p")
	assert.Equal(t, []string{"G2"}, gen.Columns)
	vang, _ := n.Results().Lookup("Bus", "v_ang")
	assert.Equal(t, []string{"A", "B"}, vang.Columns)
}

func TestInvalidate_RecordsMetrics(t *testing.T) {
	n := newNetwork(t)
	n.SetSnapshots(snapshots(2))
	reg := metrics.NewRegistry()

	NewInvalidator(n, logging.NewNopLogger(), reg).Invalidate()

	assert.Equal(t, 18.0, resetCells(t, reg, "Bus"))
	assert.Equal(t, 2.0, resetCells(t, reg, "Generator"))
}

func resetCells(t *testing.T, reg *metrics.Registry, component string) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, reg.ResultCellsResetTotal.WithLabelValues(component).Write(&m))
	return m.Counter.GetValue()
}

func TestAffected(t *testing.T) {
	byName := make(map[string]*grid.ComponentType)
	for _, c := range grid.DefaultComponents() {
		byName[c.Name] = c
	}

	tests := []struct {
		component string
		ports     int
		reactive  bool
		want      []string
	}{
		{"Generator", 0, false, []string{"p"}},
		{"Generator", 0, true, []string{"p", "q"}},
		{"Bus", 0, false, []string{"p", "v_ang", "v_mag_pu"}},
		{"Bus", 0, true, []string{"p", "q", "v_ang", "v_mag_pu"}},
		{"Line", 0, false, []string{"p0", "p1"}},
		{"Transformer", 0, true, []string{"p0", "q0", "q1", "p1"}},
		{"Link", 2, true, []string{"p0", "p1"}},
		{"Link", 4, false, []string{"p0", "p1", "p2", "p3"}},
	}
	for _, tt := range tests {
		got := affected(byName[tt.component], tt.ports, tt.reactive)
		assert.Equal(t, tt.want, got, "%s reactive=%v", tt.component, tt.reactive)
	}
}
