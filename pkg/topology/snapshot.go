package topology

import (
	"github.com/google/uuid"

	"github.com/dd0wney/cluso-gridswitch/pkg/grid"
)

// snapshot holds everything derived by one rebuild. A rebuild produces a
// new snapshot and swaps it in whole.
type snapshot struct {
	generation uuid.UUID

	// ConnectedBus rows in label order, keyed by synthetic id
	connectedOrder []string
	connected      map[string]grid.Bus

	// switch endpoint buses in canonical order and their original rows,
	// restored when a switch opens
	endpoints    []string
	disconnected map[string]grid.Bus

	// endpoint partition
	electrical     map[string]bool
	onlyLogicalIDs []string
	onlyLogical    map[string]grid.Bus

	// per switch
	busConnected map[string]string
	connections  map[string]ConnectionRecord

	// reverse lookups used by the operator
	incident map[string][]string // endpoint bus -> switch ids
	members  map[string][]string // ConnectedBus id -> switch ids
}

func emptySnapshot() *snapshot {
	return &snapshot{
		connected:    make(map[string]grid.Bus),
		disconnected: make(map[string]grid.Bus),
		electrical:   make(map[string]bool),
		onlyLogical:  make(map[string]grid.Bus),
		busConnected: make(map[string]string),
		connections:  make(map[string]ConnectionRecord),
		incident:     make(map[string][]string),
		members:      make(map[string][]string),
	}
}

func (s *snapshot) isOnlyLogical(bus string) bool {
	_, ok := s.onlyLogical[bus]
	return ok
}

// knows reports whether bus is a switch endpoint of this snapshot, whether
// or not it is live right now.
func (s *snapshot) knows(bus string) bool {
	_, ok := s.disconnected[bus]
	return ok
}

func (s *snapshot) connectionCount() int {
	n := 0
	for _, r := range s.connections {
		n += r.Len()
	}
	return n
}

func (s *snapshot) connectedRows() []grid.Bus {
	out := make([]grid.Bus, 0, len(s.connectedOrder))
	for _, id := range s.connectedOrder {
		out = append(out, s.connected[id])
	}
	return out
}

func (s *snapshot) disconnectedRows() []grid.Bus {
	out := make([]grid.Bus, 0, len(s.endpoints))
	for _, id := range s.endpoints {
		out = append(out, s.disconnected[id])
	}
	return out
}

func (s *snapshot) onlyLogicalRows() []grid.Bus {
	out := make([]grid.Bus, 0, len(s.onlyLogicalIDs))
	for _, id := range s.onlyLogicalIDs {
		out = append(out, s.onlyLogical[id])
	}
	return out
}
