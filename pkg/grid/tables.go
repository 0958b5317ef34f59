package grid

import (
	"fmt"
)

// Table holds the elements of one component type in insertion order.
type Table struct {
	typ   *ComponentType
	order []string
	rows  map[string]*Element
}

// NewTable creates an empty element table for typ
func NewTable(typ *ComponentType) *Table {
	return &Table{typ: typ, rows: make(map[string]*Element)}
}

// Type returns the component type of the table
func (t *Table) Type() *ComponentType {
	return t.typ
}

// Len returns the number of elements
func (t *Table) Len() int {
	return len(t.rows)
}

// IDs returns element ids in insertion order
func (t *Table) IDs() []string {
	return append([]string(nil), t.order...)
}

// Has reports whether the element exists
func (t *Table) Has(id string) bool {
	_, ok := t.rows[id]
	return ok
}

// Get returns a copy of the element
func (t *Table) Get(id string) (Element, bool) {
	e, ok := t.rows[id]
	if !ok {
		return Element{}, false
	}
	return e.clone(), true
}

// Each calls fn for every element in insertion order. fn must not mutate
// the table.
func (t *Table) Each(fn func(e Element)) {
	for _, id := range t.order {
		fn(*t.rows[id])
	}
}

// Ports returns the largest terminal count among the elements, or the
// type's minimum when the table is empty.
func (t *Table) Ports() int {
	n := t.typ.MinTerminals()
	for _, e := range t.rows {
		if len(e.Buses) > n {
			n = len(e.Buses)
		}
	}
	return n
}

func (t *Table) add(e Element) error {
	if _, ok := t.rows[e.ID]; ok {
		return fmt.Errorf("%s %q: %w", t.typ.Name, e.ID, ErrDuplicateElement)
	}
	n := len(e.Buses)
	if n < t.typ.MinTerminals() || (t.typ.MaxTerminals() >= 0 && n > t.typ.MaxTerminals()) {
		return fmt.Errorf("%s %q has %d terminals: %w", t.typ.Name, e.ID, n, ErrTerminalCount)
	}
	row := e.clone()
	t.rows[e.ID] = &row
	t.order = append(t.order, e.ID)
	return nil
}

func (t *Table) remove(id string) bool {
	if _, ok := t.rows[id]; !ok {
		return false
	}
	delete(t.rows, id)
	for i, other := range t.order {
		if other == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	return true
}

// Terminal returns the bus currently referenced by terminal k of element id.
func (t *Table) Terminal(id string, k int) (string, error) {
	e, ok := t.rows[id]
	if !ok {
		return "", fmt.Errorf("%s %q: %w", t.typ.Name, id, ErrElementNotFound)
	}
	if k < 0 || k >= len(e.Buses) {
		return "", fmt.Errorf("%s %q terminal %d: %w", t.typ.Name, id, k, ErrTerminalIndex)
	}
	return e.Buses[k], nil
}

// SetTerminal rewrites terminal k of element id to reference bus. Missing
// elements are reported, never created.
func (t *Table) SetTerminal(id string, k int, bus string) error {
	e, ok := t.rows[id]
	if !ok {
		return fmt.Errorf("%s %q: %w", t.typ.Name, id, ErrElementNotFound)
	}
	if k < 0 || k >= len(e.Buses) {
		return fmt.Errorf("%s %q terminal %d: %w", t.typ.Name, id, k, ErrTerminalIndex)
	}
	e.Buses[k] = bus
	return nil
}
