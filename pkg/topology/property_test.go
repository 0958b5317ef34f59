package topology

import (
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/dd0wney/cluso-gridswitch/pkg/grid"
	"github.com/dd0wney/cluso-gridswitch/pkg/logging"
)

const propertyBuses = 6

// busPairs enumerates the unordered bus pairs of a propertyBuses-bus grid.
func busPairs() [][2]string {
	var out [][2]string
	for i := 0; i < propertyBuses; i++ {
		for j := i + 1; j < propertyBuses; j++ {
			out = append(out, [2]string{busName(i), busName(j)})
		}
	}
	return out
}

func busName(i int) string {
	return fmt.Sprintf("n%d", i)
}

// randomGrid builds a grid from generated flags: edges selects which bus
// pairs get a switch, closed its initial status, loaded which buses carry a
// load.
func randomGrid(edges, closed, loaded []bool) (*grid.Network, *Engine, error) {
	n := grid.NewNetwork()
	for i := 0; i < propertyBuses; i++ {
		if err := n.AddBus(grid.Bus{ID: busName(i)}); err != nil {
			return nil, nil, err
		}
	}
	for i, on := range loaded {
		if on {
			if err := n.Add("Load", "D"+busName(i), busName(i)); err != nil {
				return nil, nil, err
			}
		}
	}
	if loaded[0] && loaded[1] {
		if err := n.Add("Line", "L01", busName(0), busName(1)); err != nil {
			return nil, nil, err
		}
	}

	var switches []Switch
	for k, pair := range busPairs() {
		if !edges[k] {
			continue
		}
		status := Open
		if closed[k] {
			status = Closed
		}
		switches = append(switches, NewSwitch(fmt.Sprintf("S%d", k), pair[0], pair[1], status))
	}

	e := New(n, WithLogger(logging.NewNopLogger()))
	if err := e.InitSwitches(switches...); err != nil {
		return nil, nil, err
	}
	return n, e, nil
}

// components labels switch endpoints with a plain union-find.
func components(switches []Switch) map[string]string {
	parent := make(map[string]string)
	var find func(string) string
	find = func(x string) string {
		if parent[x] == x {
			return x
		}
		parent[x] = find(parent[x])
		return parent[x]
	}
	for _, s := range switches {
		for _, b := range []string{s.Bus0, s.Bus1} {
			if _, ok := parent[b]; !ok {
				parent[b] = b
			}
		}
	}
	for _, s := range switches {
		parent[find(s.Bus0)] = find(s.Bus1)
	}
	out := make(map[string]string, len(parent))
	for b := range parent {
		out[b] = find(b)
	}
	return out
}

func integrityHolds(n *grid.Network) bool {
	ok := true
	for _, tbl := range n.ElementTables() {
		tbl.Each(func(el grid.Element) {
			for _, bus := range el.Buses {
				if !n.HasBus(bus) {
					ok = false
				}
			}
		})
	}
	return ok
}

func TestTopologyInvariants(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping property-based test in short mode")
	}

	pairs := len(busPairs())
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("one ConnectedBus per switch graph component", prop.ForAll(
		func(edges, closed, loaded []bool) bool {
			_, e, err := randomGrid(edges, closed, loaded)
			if err != nil {
				return false
			}
			switches := e.Switches()
			comp := components(switches)

			roots := make(map[string]bool)
			for _, root := range comp {
				roots[root] = true
			}
			if len(e.ConnectedBuses()) != len(roots) {
				return false
			}

			for _, a := range switches {
				for _, b := range switches {
					same := comp[a.Bus0] == comp[b.Bus0]
					if same != (a.BusConnected == b.BusConnected) {
						return false
					}
				}
			}
			return true
		},
		gen.SliceOfN(pairs, gen.Bool()),
		gen.SliceOfN(pairs, gen.Bool()),
		gen.SliceOfN(propertyBuses, gen.Bool()),
	))

	properties.Property("element terminals always reference live buses", prop.ForAll(
		func(edges, closed, loaded []bool, toggles []int) bool {
			n, e, err := randomGrid(edges, closed, loaded)
			if err != nil {
				return false
			}
			if !integrityHolds(n) {
				return false
			}
			switches := e.Switches()
			if len(switches) == 0 {
				return true
			}
			for _, k := range toggles {
				s, _ := e.Switch(switches[k%len(switches)].ID)
				if s.Status == Closed {
					err = e.OpenSwitches([]string{s.ID}, true)
				} else {
					err = e.CloseSwitches([]string{s.ID}, true)
				}
				if err != nil || !integrityHolds(n) {
					return false
				}
			}
			return true
		},
		gen.SliceOfN(pairs, gen.Bool()),
		gen.SliceOfN(pairs, gen.Bool()),
		gen.SliceOfN(propertyBuses, gen.Bool()),
		gen.SliceOf(gen.IntRange(0, 100)),
	))

	properties.Property("switching twice leaves the live bus set unchanged", prop.ForAll(
		func(edges, closed, loaded []bool) bool {
			n, e, err := randomGrid(edges, closed, loaded)
			if err != nil {
				return false
			}
			before := n.BusIDs()
			e.Switching()
			after := n.BusIDs()
			if len(before) != len(after) {
				return false
			}
			for i := range before {
				if before[i] != after[i] {
					return false
				}
			}
			return true
		},
		gen.SliceOfN(pairs, gen.Bool()),
		gen.SliceOfN(pairs, gen.Bool()),
		gen.SliceOfN(propertyBuses, gen.Bool()),
	))

	properties.TestingRun(t)
}
