package topology

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/dd0wney/cluso-gridswitch/pkg/grid"
)

// partition is the component structure of the static switch graph.
type partition struct {
	endpoints  []string       // switch endpoint buses, canonical order
	label      map[string]int // endpoint -> component label
	components [][]string     // label -> members, canonical order
}

// partitionSwitchGraph computes connected components over every switch,
// regardless of status. Labels follow the canonical position of each
// component's first member, so equal inputs always give equal labels.
func partitionSwitchGraph(endpoints []string, switches []*Switch) *partition {
	g := simple.NewUndirectedGraph()
	index := make(map[string]int64, len(endpoints))
	for i, id := range endpoints {
		index[id] = int64(i)
		g.AddNode(simple.Node(i))
	}
	for _, s := range switches {
		g.SetEdge(g.NewEdge(simple.Node(index[s.Bus0]), simple.Node(index[s.Bus1])))
	}

	comps := topo.ConnectedComponents(g)
	positions := make([][]int64, 0, len(comps))
	for _, comp := range comps {
		pos := make([]int64, len(comp))
		for i, n := range comp {
			pos[i] = n.ID()
		}
		sort.Slice(pos, func(i, j int) bool { return pos[i] < pos[j] })
		positions = append(positions, pos)
	}
	sort.Slice(positions, func(i, j int) bool { return positions[i][0] < positions[j][0] })

	p := &partition{
		endpoints:  endpoints,
		label:      make(map[string]int, len(endpoints)),
		components: make([][]string, len(positions)),
	}
	for label, pos := range positions {
		members := make([]string, len(pos))
		for i, at := range pos {
			members[i] = endpoints[at]
			p.label[members[i]] = label
		}
		p.components[label] = members
	}
	return p
}

// canonicalEndpoints lists switch endpoint buses in switch registration
// order, bus0 before bus1. The order depends only on the registry, so
// switching never renames a ConnectedBus and a new switch on unrelated buses
// only appends labels.
func canonicalEndpoints(switches []*Switch) []string {
	out := make([]string, 0, 2*len(switches))
	seen := make(map[string]bool, 2*len(switches))
	for _, s := range switches {
		for _, id := range []string{s.Bus0, s.Bus1} {
			if !seen[id] {
				out = append(out, id)
				seen[id] = true
			}
		}
	}
	return out
}

// build derives a new snapshot from the switch registry and the current
// host state. It reads the host but never mutates it.
func (e *Engine) build(prev *snapshot) (*snapshot, []Warning) {
	var warnings []Warning
	switches := make([]*Switch, 0, e.switches.len())
	e.switches.each(func(s *Switch) { switches = append(switches, s) })

	live := e.net.BusIDs()
	endpoints := canonicalEndpoints(switches)
	part := partitionSwitchGraph(endpoints, switches)

	rowOf := func(id string) grid.Bus {
		if b, ok := e.net.Bus(id); ok {
			return b
		}
		if b, ok := prev.disconnected[id]; ok {
			return b
		}
		if b, ok := prev.onlyLogical[id]; ok {
			return b
		}
		return grid.Bus{ID: id}
	}

	next := emptySnapshot()
	next.generation = uuid.New()
	next.endpoints = endpoints

	// synthetic ids must not shadow any bus the host knows about
	taken := make(map[string]bool, len(live)+len(endpoints))
	var clashing []string
	for _, id := range live {
		taken[id] = true
		if strings.Contains(id, e.prefix) {
			clashing = append(clashing, id)
		}
	}
	for _, id := range endpoints {
		taken[id] = true
	}
	if len(clashing) > 0 {
		warnings = append(warnings, Warning{
			Kind:    WarnSyntheticIDCollision,
			Message: fmt.Sprintf("existing bus ids already contain the connected bus prefix %q", e.prefix),
			Buses:   clashing,
		})
	}

	for label, members := range part.components {
		id := fmt.Sprintf("%s%d", e.prefix, label)
		for n := 1; taken[id]; n++ {
			id = fmt.Sprintf("%s%d#%d", e.prefix, label, n)
		}
		taken[id] = true
		next.connectedOrder = append(next.connectedOrder, id)
		next.connected[id] = rowOf(members[0]).WithID(id)
	}

	for _, id := range endpoints {
		next.disconnected[id] = rowOf(id)
	}

	for _, s := range switches {
		cid := next.connectedOrder[part.label[s.Bus0]]
		next.busConnected[s.ID] = cid
		next.members[cid] = append(next.members[cid], s.ID)
		next.incident[s.Bus0] = append(next.incident[s.Bus0], s.ID)
		next.incident[s.Bus1] = append(next.incident[s.Bus1], s.ID)
	}

	refs := scanTerminals(endpoints, e.net.ElementTables())
	electrical, onlyLogical := classifyEndpoints(endpoints, refs)
	next.electrical = electrical
	next.onlyLogicalIDs = onlyLogical
	for _, id := range onlyLogical {
		next.onlyLogical[id] = next.disconnected[id]
	}
	next.connections = indexConnections(switches, refs)

	return next, warnings
}
