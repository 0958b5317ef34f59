package topology

import (
	"errors"

	"github.com/dd0wney/cluso-gridswitch/pkg/grid"
	"github.com/dd0wney/cluso-gridswitch/pkg/logging"
)

// tableIndex maps component names to the host's element tables.
func (e *Engine) tableIndex() map[string]*grid.Table {
	tables := e.net.ElementTables()
	out := make(map[string]*grid.Table, len(tables))
	for _, t := range tables {
		out[t.Type().Name] = t
	}
	return out
}

// rewrite points terminal k of every listed element at bus. Elements the
// host has removed since the last rebuild are skipped.
func (e *Engine) rewrite(tables map[string]*grid.Table, key ConnectionKey, ids []string, bus string) int {
	t, ok := tables[key.Component]
	if !ok {
		e.logger.Debug("component table gone, skipping terminals",
			logging.String("component_type", key.Component), logging.Count(len(ids)))
		return 0
	}
	n := 0
	for _, id := range ids {
		if err := t.SetTerminal(id, key.Terminal, bus); err != nil {
			if errors.Is(err, grid.ErrElementNotFound) {
				e.logger.Debug("element removed since last rebuild",
					logging.String("component_type", key.Component), logging.String("element", id))
				continue
			}
			e.logger.Warn("terminal rewrite failed", logging.Error(err))
			continue
		}
		n++
	}
	return n
}

// closeSwitch merges both endpoints of s into its ConnectedBus.
func (e *Engine) closeSwitch(tables map[string]*grid.Table, s *Switch) int {
	s.Status = Closed

	rec := e.state.connections[s.ID]
	n := 0
	for _, key := range rec.Keys() {
		n += e.rewrite(tables, key, rec[key], s.BusConnected)
	}

	if row, ok := e.state.connected[s.BusConnected]; ok {
		e.net.InsertBuses(row)
	}
	e.net.DropBuses(s.Bus0, s.Bus1)

	e.logger.Debug("switch closed", logging.Switch(s.ID),
		logging.Bus(s.BusConnected), logging.Count(n))
	return n
}

// closedIncident reports whether a switch other than exclude is closed and
// touches bus.
func (e *Engine) closedIncident(bus, exclude string) bool {
	for _, id := range e.state.incident[bus] {
		if id == exclude {
			continue
		}
		if other, ok := e.switches.get(id); ok && other.Status == Closed {
			return true
		}
	}
	return false
}

// closedMembers counts closed switches sharing a ConnectedBus.
func (e *Engine) closedMembers(connected string) int {
	n := 0
	for _, id := range e.state.members[connected] {
		if s, ok := e.switches.get(id); ok && s.Status == Closed {
			n++
		}
	}
	return n
}

// openSwitch separates the endpoints of s again. An endpoint still touched
// by another closed switch stays merged: its terminals keep pointing at the
// ConnectedBus and the endpoint bus is not restored.
func (e *Engine) openSwitch(tables map[string]*grid.Table, s *Switch) int {
	s.Status = Open

	var held [2]bool
	for _, side := range []Side{Side0, Side1} {
		held[side] = e.closedIncident(s.Endpoint(side), s.ID)
	}

	rec := e.state.connections[s.ID]
	n := 0
	for _, key := range rec.Keys() {
		if held[key.SwitchSide] {
			continue
		}
		n += e.rewrite(tables, key, rec[key], s.Endpoint(key.SwitchSide))
	}

	var restore []grid.Bus
	for _, side := range []Side{Side0, Side1} {
		bus := s.Endpoint(side)
		if held[side] || e.net.HasBus(bus) || e.state.isOnlyLogical(bus) {
			continue
		}
		if row, ok := e.state.disconnected[bus]; ok {
			restore = append(restore, row)
		}
	}
	e.net.InsertBuses(restore...)

	if e.closedMembers(s.BusConnected) == 0 {
		e.net.DropBuses(s.BusConnected)
	}

	e.logger.Debug("switch opened", logging.Switch(s.ID),
		logging.Count(n), logging.Bool("held_bus0", held[Side0]), logging.Bool("held_bus1", held[Side1]))
	return n
}

// closePhase applies CLOSE to every listed switch.
func (e *Engine) closePhase(ids []string) int {
	tables := e.tableIndex()
	n := 0
	for _, id := range ids {
		if s, ok := e.switches.get(id); ok {
			n += e.closeSwitch(tables, s)
		}
	}
	return n
}

// openPhase applies OPEN to every listed switch.
func (e *Engine) openPhase(ids []string) int {
	tables := e.tableIndex()
	n := 0
	for _, id := range ids {
		if s, ok := e.switches.get(id); ok {
			n += e.openSwitch(tables, s)
		}
	}
	return n
}
