package topology

import (
	"github.com/dd0wney/cluso-gridswitch/pkg/grid"
)

// terminalRef is one element terminal bound to a bus.
type terminalRef struct {
	component string
	terminal  int
	element   string
}

// scanTerminals makes one pass over every element table and returns, for
// each switch endpoint, the terminals currently referencing it.
func scanTerminals(endpoints []string, tables []*grid.Table) map[string][]terminalRef {
	refs := make(map[string][]terminalRef, len(endpoints))
	for _, id := range endpoints {
		refs[id] = nil
	}
	for _, t := range tables {
		component := t.Type().Name
		t.Each(func(el grid.Element) {
			for k, bus := range el.Buses {
				if _, ok := refs[bus]; ok {
					refs[bus] = append(refs[bus], terminalRef{component: component, terminal: k, element: el.ID})
				}
			}
		})
	}
	return refs
}

// indexConnections records, per switch and endpoint side, the element
// terminals bound to that endpoint. A terminal on a bus shared by several
// switches appears in the record of each of them.
func indexConnections(switches []*Switch, refs map[string][]terminalRef) map[string]ConnectionRecord {
	out := make(map[string]ConnectionRecord, len(switches))
	for _, s := range switches {
		rec := make(ConnectionRecord)
		for _, side := range []Side{Side0, Side1} {
			for _, ref := range refs[s.Endpoint(side)] {
				key := ConnectionKey{SwitchSide: side, Component: ref.component, Terminal: ref.terminal}
				rec[key] = append(rec[key], ref.element)
			}
		}
		out[s.ID] = rec
	}
	return out
}
