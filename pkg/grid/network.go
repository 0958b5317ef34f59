package grid

import (
	"fmt"
	"time"

	"github.com/dd0wney/cluso-gridswitch/pkg/validation"
)

// Network is the host model: a live bus set, one table per component type
// and the result series written by solvers.
type Network struct {
	buses      *BusTable
	components []*ComponentType
	byName     map[string]*ComponentType
	tables     map[string]*Table
	results    *Results
}

// NewNetwork creates an empty network with the standard component registry
func NewNetwork() *Network {
	n := &Network{
		buses:   NewBusTable(),
		byName:  make(map[string]*ComponentType),
		tables:  make(map[string]*Table),
		results: newResults(),
	}
	for _, c := range DefaultComponents() {
		n.components = append(n.components, c)
		n.byName[c.Name] = c
		if c.Kind != KindBus {
			n.tables[c.Name] = NewTable(c)
		}
	}
	return n
}

// ComponentType looks up a registered component type by name
func (n *Network) ComponentType(name string) (*ComponentType, bool) {
	c, ok := n.byName[name]
	return c, ok
}

// Components returns the registered component types in iteration order
func (n *Network) Components() []*ComponentType {
	return append([]*ComponentType(nil), n.components...)
}

// AddBus inserts a new bus into the live set
func (n *Network) AddBus(b Bus) error {
	if err := validation.ValidateBusRequest(&validation.BusRequest{ID: b.ID}); err != nil {
		return err
	}
	if n.buses.Has(b.ID) {
		return fmt.Errorf("bus %q: %w", b.ID, ErrDuplicateBus)
	}
	n.buses.Insert(b)
	return nil
}

// Add inserts an element of the named component type. Every terminal must
// reference a live bus.
func (n *Network) Add(component, id string, buses ...string) error {
	req := &validation.ElementRequest{Component: component, ID: id, Buses: buses}
	if err := validation.ValidateElementRequest(req); err != nil {
		return err
	}
	t, ok := n.tables[component]
	if !ok {
		return fmt.Errorf("%q: %w", component, ErrUnknownComponent)
	}
	for _, b := range buses {
		if !n.buses.Has(b) {
			return fmt.Errorf("%s %q references bus %q: %w", component, id, b, ErrBusNotFound)
		}
	}
	return t.add(Element{ID: id, Buses: buses})
}

// Remove deletes an element. The topology engine must be reinitialised
// afterwards so its connection index forgets the row.
func (n *Network) Remove(component, id string) error {
	t, ok := n.tables[component]
	if !ok {
		return fmt.Errorf("%q: %w", component, ErrUnknownComponent)
	}
	if !t.remove(id) {
		return fmt.Errorf("%s %q: %w", component, id, ErrElementNotFound)
	}
	return nil
}

// Table returns the element table of a component type
func (n *Network) Table(component string) (*Table, bool) {
	t, ok := n.tables[component]
	return t, ok
}

// ElementTables returns the branch and one-port tables in registry order
func (n *Network) ElementTables() []*Table {
	out := make([]*Table, 0, len(n.tables))
	for _, c := range n.components {
		if t, ok := n.tables[c.Name]; ok {
			out = append(out, t)
		}
	}
	return out
}

// Elements returns the element ids of a component type. For "Bus" these are
// the live bus ids.
func (n *Network) Elements(component string) []string {
	if c, ok := n.byName[component]; ok && c.Kind == KindBus {
		return n.buses.IDs()
	}
	if t, ok := n.tables[component]; ok {
		return t.IDs()
	}
	return nil
}

// BusIDs returns the live bus ids in canonical order
func (n *Network) BusIDs() []string {
	return n.buses.IDs()
}

// Bus returns a live bus row
func (n *Network) Bus(id string) (Bus, bool) {
	return n.buses.Get(id)
}

// HasBus reports whether id is in the live bus set
func (n *Network) HasBus(id string) bool {
	return n.buses.Has(id)
}

// InsertBuses adds rows to the live set, keeping the existing row on an id clash
func (n *Network) InsertBuses(buses ...Bus) int {
	return n.buses.Insert(buses...)
}

// DropBuses removes rows from the live set, ignoring absent ids
func (n *Network) DropBuses(ids ...string) int {
	return n.buses.Drop(ids...)
}

// SetSnapshots replaces the time index. Existing result frames are reshaped
// to the new length with zeroed rows.
func (n *Network) SetSnapshots(snapshots []time.Time) {
	n.results.snapshots = append([]time.Time(nil), snapshots...)
	for _, byAttr := range n.results.frames {
		for _, f := range byAttr {
			cols := len(f.Columns)
			rows := make([][]float64, len(snapshots))
			for i := range rows {
				rows[i] = make([]float64, cols)
				if i < len(f.Values) {
					copy(rows[i], f.Values[i])
				}
			}
			f.Values = rows
		}
	}
}

// Snapshots returns the time index
func (n *Network) Snapshots() []time.Time {
	return n.results.Snapshots()
}

// Results returns the result store
func (n *Network) Results() *Results {
	return n.results
}

// SetResult stores a result series for one element. values must have one
// entry per snapshot.
func (n *Network) SetResult(component, attr, id string, values []float64) error {
	if _, ok := n.byName[component]; !ok {
		return fmt.Errorf("%q: %w", component, ErrUnknownComponent)
	}
	if len(values) != len(n.results.snapshots) {
		return fmt.Errorf("%s.%s[%s]: %d values for %d snapshots: %w",
			component, attr, id, len(values), len(n.results.snapshots), ErrSnapshotMismatch)
	}

	f := n.results.Frame(component, attr)
	col := -1
	for j, c := range f.Columns {
		if c == id {
			col = j
			break
		}
	}
	if col < 0 {
		f.Columns = append(f.Columns, id)
		col = len(f.Columns) - 1
		if len(f.Values) != len(values) {
			f.Values = make([][]float64, len(values))
		}
		for i := range f.Values {
			f.Values[i] = append(f.Values[i], make([]float64, len(f.Columns)-len(f.Values[i]))...)
		}
	}
	for i, v := range values {
		f.Values[i][col] = v
	}
	return nil
}
