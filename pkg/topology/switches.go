package topology

// switchTable is the switch registry, iterated in insertion order.
type switchTable struct {
	order []string
	rows  map[string]*Switch
}

func newSwitchTable() *switchTable {
	return &switchTable{rows: make(map[string]*Switch)}
}

func (t *switchTable) len() int {
	return len(t.rows)
}

func (t *switchTable) get(id string) (*Switch, bool) {
	s, ok := t.rows[id]
	return s, ok
}

func (t *switchTable) add(s Switch) {
	row := s
	t.rows[s.ID] = &row
	t.order = append(t.order, s.ID)
}

func (t *switchTable) remove(ids ...string) {
	gone := make(map[string]bool, len(ids))
	for _, id := range ids {
		if _, ok := t.rows[id]; ok {
			delete(t.rows, id)
			gone[id] = true
		}
	}
	kept := t.order[:0]
	for _, id := range t.order {
		if !gone[id] {
			kept = append(kept, id)
		}
	}
	t.order = kept
}

func (t *switchTable) ids() []string {
	return append([]string(nil), t.order...)
}

func (t *switchTable) each(fn func(s *Switch)) {
	for _, id := range t.order {
		fn(t.rows[id])
	}
}

// withStatus returns the ids whose stored status equals status.
func (t *switchTable) withStatus(status Status) []string {
	var out []string
	for _, id := range t.order {
		if t.rows[id].Status == status {
			out = append(out, id)
		}
	}
	return out
}

func (t *switchTable) statuses() map[string]Status {
	out := make(map[string]Status, len(t.rows))
	for id, s := range t.rows {
		out[id] = s.Status
	}
	return out
}

func (t *switchTable) restore(statuses map[string]Status) {
	for id, st := range statuses {
		if s, ok := t.rows[id]; ok {
			s.Status = st
		}
	}
}

// connecting reports whether any switch joins the unordered pair {a, b}.
func (t *switchTable) connecting(a, b string) (string, bool) {
	for _, id := range t.order {
		if t.rows[id].Joins(a, b) {
			return id, true
		}
	}
	return "", false
}
