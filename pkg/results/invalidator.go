// Package results clears stale calculation output after the grid topology
// changed.
package results

import (
	"fmt"

	"github.com/dd0wney/cluso-gridswitch/pkg/grid"
	"github.com/dd0wney/cluso-gridswitch/pkg/logging"
	"github.com/dd0wney/cluso-gridswitch/pkg/metrics"
)

// Attributes whose meaning depends on topology. Link ports beyond p1 are
// added per network.
var (
	onePortAttrs = []string{"p"}
	busAttrs     = []string{"p", "v_ang", "v_mag_pu"}
	branchAttrs  = []string{"p0", "p1"}
)

// Invalidator resets topology-dependent result series of a grid.Network
type Invalidator struct {
	net     *grid.Network
	logger  logging.Logger
	metrics *metrics.Registry
}

// NewInvalidator creates an invalidator over net. logger and reg may be nil.
func NewInvalidator(net *grid.Network, logger logging.Logger, reg *metrics.Registry) *Invalidator {
	if logger == nil {
		logger = logging.DefaultLogger()
	}
	return &Invalidator{
		net:     net,
		logger:  logger.With(logging.Component("results")),
		metrics: reg,
	}
}

// InvalidateResults implements topology.ResultInvalidator
func (inv *Invalidator) InvalidateResults() {
	inv.Invalidate()
}

// Invalidate resets every affected attribute to its declared default for
// every (snapshot, element) cell and returns the number of cells written.
// Frames are reindexed to the component's current element ids. Nothing
// happens when the network has no snapshots.
func (inv *Invalidator) Invalidate() int {
	rows := len(inv.net.Snapshots())
	if rows == 0 {
		return 0
	}

	store := inv.net.Results()
	reactive := false
	if f, ok := store.Lookup("Bus", "q"); ok && !f.Empty() {
		reactive = true
	}

	total := 0
	for _, c := range inv.net.Components() {
		attrs := affected(c, inv.linkPorts(c), reactive)
		if len(attrs) == 0 {
			continue
		}
		ids := inv.net.Elements(c.Name)
		cells := 0
		for _, attr := range attrs {
			def, _ := c.Default(attr)
			cells += store.Frame(c.Name, attr).Fill(rows, ids, def)
		}
		total += cells
		if inv.metrics != nil {
			inv.metrics.RecordResultReset(c.Name, cells)
		}
	}

	inv.logger.Debug("results invalidated", logging.Count(total), logging.Int("snapshots", rows))
	return total
}

func (inv *Invalidator) linkPorts(c *grid.ComponentType) int {
	if c.Name != "Link" {
		return 0
	}
	t, ok := inv.net.Table(c.Name)
	if !ok {
		return 2
	}
	return max(t.Ports(), 2)
}

// affected lists the result attributes of c to reset. With reactive set
// every active-power attribute brings its reactive counterpart along;
// links carry no reactive flows.
func affected(c *grid.ComponentType, linkPorts int, reactive bool) []string {
	var attrs []string
	switch {
	case c.Kind == grid.KindBus:
		attrs = append(attrs, busAttrs...)
	case c.Kind == grid.KindOnePort:
		attrs = append(attrs, onePortAttrs...)
	case c.Name == "Link":
		for k := 0; k < linkPorts; k++ {
			attrs = append(attrs, fmt.Sprintf("p%d", k))
		}
		return attrs
	case c.Kind == grid.KindBranch:
		attrs = append(attrs, branchAttrs...)
	}
	if !reactive {
		return attrs
	}

	var out []string
	for _, a := range attrs {
		out = append(out, a)
		switch a {
		case "p":
			out = append(out, "q")
		case "p0":
			out = append(out, "q0", "q1")
		}
	}
	return out
}
