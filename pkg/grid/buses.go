package grid

// BusTable is the live bus set. Iteration follows insertion order, which is
// the canonical bus order used wherever a deterministic choice is needed.
type BusTable struct {
	order []string
	rows  map[string]Bus
}

// NewBusTable creates an empty bus table
func NewBusTable() *BusTable {
	return &BusTable{rows: make(map[string]Bus)}
}

// Len returns the number of live buses
func (t *BusTable) Len() int {
	return len(t.rows)
}

// Has reports whether id is a live bus
func (t *BusTable) Has(id string) bool {
	_, ok := t.rows[id]
	return ok
}

// Get returns the bus row for id
func (t *BusTable) Get(id string) (Bus, bool) {
	b, ok := t.rows[id]
	return b, ok
}

// IDs returns the live bus ids in canonical order
func (t *BusTable) IDs() []string {
	return append([]string(nil), t.order...)
}

// Insert adds buses whose id is not yet present. The first row seen for an
// id wins. It returns the number of rows added.
func (t *BusTable) Insert(buses ...Bus) int {
	added := 0
	for _, b := range buses {
		if _, ok := t.rows[b.ID]; ok {
			continue
		}
		t.rows[b.ID] = b
		t.order = append(t.order, b.ID)
		added++
	}
	return added
}

// Drop removes buses by id, ignoring ids that are absent. It returns the
// number of rows removed.
func (t *BusTable) Drop(ids ...string) int {
	gone := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := t.rows[id]; ok {
			delete(t.rows, id)
			gone[id] = struct{}{}
		}
	}
	if len(gone) == 0 {
		return 0
	}

	kept := t.order[:0]
	for _, id := range t.order {
		if _, ok := gone[id]; !ok {
			kept = append(kept, id)
		}
	}
	t.order = kept
	return len(gone)
}
