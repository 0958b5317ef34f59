// Package topology keeps the bus/element topology of a grid model consistent
// while switches open and close.
//
// Closed switches merge their endpoint buses into one synthetic ConnectedBus
// per connected component of the switch graph; open switches restore the
// original endpoint buses. The engine owns the switch registry and everything
// derived from it, and rewrites the host's bus set and element terminals
// through the Network interface.
package topology

import (
	"time"

	"github.com/google/uuid"

	"github.com/dd0wney/cluso-gridswitch/pkg/events"
	"github.com/dd0wney/cluso-gridswitch/pkg/grid"
	"github.com/dd0wney/cluso-gridswitch/pkg/logging"
	"github.com/dd0wney/cluso-gridswitch/pkg/metrics"
	"github.com/dd0wney/cluso-gridswitch/pkg/validation"
)

// DefaultConnectedBusPrefix prefixes synthetic ConnectedBus ids.
const DefaultConnectedBusPrefix = "bus_connected"

// Network is the host model the engine mutates. *grid.Network implements it.
type Network interface {
	BusIDs() []string
	Bus(id string) (grid.Bus, bool)
	HasBus(id string) bool
	InsertBuses(buses ...grid.Bus) int
	DropBuses(ids ...string) int
	ElementTables() []*grid.Table
}

// ResultInvalidator clears calculation results after a topology change.
type ResultInvalidator interface {
	InvalidateResults()
}

// Option configures an Engine
type Option func(*Engine)

// WithLogger sets the engine logger
func WithLogger(l logging.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithMetrics records engine activity in r
func WithMetrics(r *metrics.Registry) Option {
	return func(e *Engine) { e.metrics = r }
}

// WithEvents publishes a TopologyChanged event after every mutation
func WithEvents(b *events.Bus) Option {
	return func(e *Engine) { e.events = b }
}

// WithInvalidator sets the result invalidator triggered by topology changes
func WithInvalidator(inv ResultInvalidator) Option {
	return func(e *Engine) { e.invalidator = inv }
}

// WithConnectedBusPrefix overrides DefaultConnectedBusPrefix
func WithConnectedBusPrefix(prefix string) Option {
	return func(e *Engine) {
		if prefix != "" {
			e.prefix = prefix
		}
	}
}

// Engine is the switch topology engine. It is not safe for concurrent use:
// every call assumes exclusive ownership of the host tables.
type Engine struct {
	net      Network
	switches *switchTable
	state    *snapshot
	prefix   string
	warnings []Warning

	logger      logging.Logger
	metrics     *metrics.Registry
	events      *events.Bus
	invalidator ResultInvalidator
}

// New creates an engine over net with no switches.
func New(net Network, opts ...Option) *Engine {
	e := &Engine{
		net:      net,
		switches: newSwitchTable(),
		state:    emptySnapshot(),
		prefix:   DefaultConnectedBusPrefix,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = logging.DefaultLogger()
	}
	e.logger = e.logger.With(logging.Component("topology"))
	return e
}

// InitSwitches registers the initial switch set, builds the topology and
// applies the stored statuses. It fails if any two switches are parallel.
func (e *Engine) InitSwitches(switches ...Switch) error {
	const op = "InitSwitches"
	if e.switches.len() > 0 {
		return e.fail(op, NewError(op).Cause(ErrAlreadyInitialized).
			Context("%d switches registered", e.switches.len()).Err())
	}
	if err := e.checkNewSwitches(op, switches); err != nil {
		return e.fail(op, err)
	}

	e.logger.Info("initiating switches", logging.Count(len(switches)))
	for _, s := range switches {
		s.BusConnected = ""
		e.switches.add(s)
	}
	e.rebuild(op)
	e.switching(op)
	return nil
}

// AddSwitch validates and registers one switch, rebuilds the topology from
// scratch and re-applies every stored status.
func (e *Engine) AddSwitch(name, bus0, bus1 string, status Status, capacity float64) error {
	const op = "AddSwitch"
	s := Switch{ID: name, Bus0: bus0, Bus1: bus1, Status: status, Capacity: capacity}
	if err := e.checkNewSwitches(op, []Switch{s}); err != nil {
		return e.fail(op, err)
	}

	e.logger.Info("adding switch", logging.Switch(name), logging.Buses([]string{bus0, bus1}))
	statuses := e.switches.statuses()
	e.openPhase(e.switches.ids())
	e.switches.add(s)
	e.rebuild(op)
	e.switches.restore(statuses)
	e.switching(op)
	return nil
}

// ReinitSwitches rebuilds the topology after the host changed buses or
// elements. Every switch is opened against the previous build first, so
// terminals are back on their endpoint buses when the new build scans them.
// With skipSwitching the previous statuses are not re-applied: every switch
// is left OPEN, matching the all-open live topology.
func (e *Engine) ReinitSwitches(skipSwitching bool) error {
	const op = "ReinitSwitches"
	e.logger.Info("reinitializing switches", logging.Bool("skip_switching", skipSwitching))

	statuses := e.switches.statuses()
	e.openPhase(e.switches.ids())
	e.rebuild(op)

	if skipSwitching {
		e.finish(op, nil, 0)
		return nil
	}
	e.switches.restore(statuses)
	e.switching(op)
	return nil
}

// RemoveSwitches drops switches from the registry and rebuilds. The
// remaining switches keep their stored statuses.
func (e *Engine) RemoveSwitches(ids ...string) error {
	const op = "RemoveSwitches"
	if err := e.checkKnown(op, ids); err != nil {
		return e.fail(op, err)
	}

	e.logger.Info("removing switches", logging.Strings("switches", ids))
	statuses := e.switches.statuses()
	e.openPhase(e.switches.ids())
	e.switches.remove(ids...)
	e.rebuild(op)
	e.switches.restore(statuses)
	e.switching(op)
	return nil
}

// CloseSwitches applies CLOSE to each listed switch. Results are invalidated
// unless skipResultDeletion is set.
func (e *Engine) CloseSwitches(ids []string, skipResultDeletion bool) error {
	const op = "CloseSwitches"
	if err := e.checkKnown(op, ids); err != nil {
		return e.fail(op, err)
	}

	start := time.Now()
	e.logger.Info("closing switches", logging.Strings("switches", ids))
	n := e.closePhase(ids)
	if !skipResultDeletion {
		e.invalidate()
	}
	e.record(op, len(ids), time.Since(start))
	e.finish(op, ids, n)
	return nil
}

// OpenSwitches applies OPEN to each listed switch. Results are invalidated
// unless skipResultDeletion is set.
func (e *Engine) OpenSwitches(ids []string, skipResultDeletion bool) error {
	const op = "OpenSwitches"
	if err := e.checkKnown(op, ids); err != nil {
		return e.fail(op, err)
	}

	start := time.Now()
	e.logger.Info("opening switches", logging.Strings("switches", ids))
	n := e.openPhase(ids)
	if !skipResultDeletion {
		e.invalidate()
	}
	e.record(op, len(ids), time.Since(start))
	e.finish(op, ids, n)
	return nil
}

// Switching applies every stored status to the live topology.
func (e *Engine) Switching() {
	e.switching("Switching")
}

// switching runs the two-phase batch protocol. Phase one closes every
// switch stored CLOSED so merged buses exist; phase two opens every switch
// stored OPEN, which then only restores endpoints no closed switch still
// holds. Results are invalidated once, after phase two.
func (e *Engine) switching(op string) {
	start := time.Now()
	closed := e.switches.withStatus(Closed)
	opened := e.switches.withStatus(Open)
	e.logger.Info("switching all switches", logging.Int("closed", len(closed)), logging.Int("open", len(opened)))

	n := e.closePhase(closed)
	n += e.openPhase(opened)
	e.invalidate()

	e.record("Switching", len(closed)+len(opened), time.Since(start))
	e.finish(op, e.switches.ids(), n)
}

// rebuild recomputes ConnectedBus, DisconnectedBus, only-logical and
// connection tables. Callers have already validated their input and opened
// every switch.
func (e *Engine) rebuild(op string) {
	timer := logging.StartTimer(e.logger, "topology rebuilt", logging.Operation(op))
	prev := e.state

	var reappeared []string
	for _, row := range prev.onlyLogicalRows() {
		if e.net.HasBus(row.ID) {
			reappeared = append(reappeared, row.ID)
			continue
		}
		e.net.InsertBuses(row)
	}
	if len(reappeared) > 0 {
		e.warn(Warning{
			Kind:    WarnOnlyLogicalReappeared,
			Message: "buses dropped as only-logical are live again; keeping the live rows",
			Buses:   reappeared,
		})
	}
	e.net.DropBuses(prev.connectedOrder...)

	next, warnings := e.build(prev)
	for _, w := range warnings {
		e.warn(w)
	}

	e.net.DropBuses(next.onlyLogicalIDs...)
	e.state = next
	e.switches.each(func(s *Switch) { s.BusConnected = next.busConnected[s.ID] })

	d := timer.End(
		logging.Generation(next.generation.String()),
		logging.Int("connected_buses", len(next.connectedOrder)),
		logging.Int("only_logical_buses", len(next.onlyLogicalIDs)),
	)
	if e.metrics != nil {
		e.metrics.RecordRebuild(op, d, next.connectionCount())
	}
}

// checkNewSwitches validates candidates against the registry and each
// other. Nothing is mutated.
func (e *Engine) checkNewSwitches(op string, candidates []Switch) error {
	names := make(map[string]bool, len(candidates))
	var accepted []Switch
	for _, s := range candidates {
		if s.Bus0 != "" && s.Bus0 == s.Bus1 {
			return NewError(op).Switch(s.ID).Cause(ErrSelfLoopSwitch).Context("bus %q", s.Bus0).Err()
		}
		req := &validation.SwitchRequest{Name: s.ID, Bus0: s.Bus0, Bus1: s.Bus1, Capacity: s.Capacity}
		if err := validation.ValidateSwitchRequest(req); err != nil {
			return NewError(op).Switch(s.ID).Cause(ErrInvalidSwitch).Context("%v", err).Err()
		}
		if s.Status != Open && s.Status != Closed {
			return NewError(op).Switch(s.ID).Cause(ErrInvalidSwitch).Context("status %v", s.Status).Err()
		}
		if _, ok := e.switches.get(s.ID); ok || names[s.ID] {
			return NewError(op).Switch(s.ID).Cause(ErrDuplicateSwitch).Err()
		}
		if other, ok := e.switches.connecting(s.Bus0, s.Bus1); ok {
			return NewError(op).Switch(s.ID).Cause(ErrParallelSwitch).Context("parallel to %q", other).Err()
		}
		for _, prior := range accepted {
			if prior.Joins(s.Bus0, s.Bus1) {
				return NewError(op).Switch(s.ID).Cause(ErrParallelSwitch).Context("parallel to %q", prior.ID).Err()
			}
		}
		for _, bus := range []string{s.Bus0, s.Bus1} {
			if _, synthetic := e.state.connected[bus]; synthetic {
				return NewError(op).Bus(bus).Cause(ErrInvalidSwitch).Context("connected bus cannot be a switch endpoint").Err()
			}
			if !e.knownBus(bus) {
				return NewError(op).Bus(bus).Cause(ErrMissingBus).Context("add bus before switch %q", s.ID).Err()
			}
		}
		names[s.ID] = true
		accepted = append(accepted, s)
	}
	return nil
}

// knownBus reports whether the host owns bus, including endpoints that are
// currently absorbed into a ConnectedBus or set aside as only-logical.
func (e *Engine) knownBus(bus string) bool {
	return e.net.HasBus(bus) || e.state.knows(bus) || e.state.isOnlyLogical(bus)
}

func (e *Engine) checkKnown(op string, ids []string) error {
	for _, id := range ids {
		if _, ok := e.switches.get(id); !ok {
			return NewError(op).Switch(id).Cause(ErrUnknownSwitch).Err()
		}
	}
	return nil
}

func (e *Engine) invalidate() {
	if e.invalidator != nil {
		e.invalidator.InvalidateResults()
	}
}

func (e *Engine) warn(w Warning) {
	e.warnings = append(e.warnings, w)
	e.logger.Warn(w.Message, logging.String("kind", string(w.Kind)), logging.Buses(w.Buses))
	if e.metrics != nil {
		e.metrics.RecordWarning(string(w.Kind))
	}
}

func (e *Engine) fail(op string, err error) error {
	e.logger.Error("operation rejected", logging.Operation(op), logging.Error(err))
	if e.metrics != nil {
		e.metrics.RecordRejected(op)
	}
	return err
}

func (e *Engine) record(op string, n int, d time.Duration) {
	if e.metrics != nil {
		e.metrics.RecordSwitchOperation(op, "success", n, d)
	}
}

// finish publishes gauges and the change event of a completed operation.
func (e *Engine) finish(op string, ids []string, terminals int) {
	live := len(e.net.BusIDs())
	if e.metrics != nil {
		e.metrics.UpdateTopology(live, len(e.state.connectedOrder), len(e.state.onlyLogicalIDs),
			e.switches.len(), len(e.switches.withStatus(Closed)))
	}
	if e.events != nil {
		e.events.Publish(events.TopicTopology, events.TopologyChanged{
			Generation: e.state.generation,
			Operation:  op,
			Switches:   append([]string(nil), ids...),
			LiveBuses:  live,
			At:         time.Now(),
		})
	}
	e.logger.Debug("topology updated", logging.Operation(op),
		logging.Int("terminals", terminals), logging.Int("live_buses", live))
}

// Switch returns a copy of a registered switch
func (e *Engine) Switch(id string) (Switch, bool) {
	s, ok := e.switches.get(id)
	if !ok {
		return Switch{}, false
	}
	return *s, true
}

// Switches returns copies of all switches in registration order
func (e *Engine) Switches() []Switch {
	out := make([]Switch, 0, e.switches.len())
	e.switches.each(func(s *Switch) { out = append(out, *s) })
	return out
}

// IsSwitchConnectingBuses reports whether a switch joins bus0 and bus1 in
// either direction.
func (e *Engine) IsSwitchConnectingBuses(bus0, bus1 string) bool {
	_, ok := e.switches.connecting(bus0, bus1)
	return ok
}

// ConnectedBuses returns the ConnectedBus rows of the current build, one per
// component of the switch graph, whether or not they are live.
func (e *Engine) ConnectedBuses() []grid.Bus {
	return e.state.connectedRows()
}

// DisconnectedBuses returns the original rows of all switch endpoint buses
func (e *Engine) DisconnectedBuses() []grid.Bus {
	return e.state.disconnectedRows()
}

// OnlyLogicalBuses returns the switch endpoint buses no element references
func (e *Engine) OnlyLogicalBuses() []grid.Bus {
	return e.state.onlyLogicalRows()
}

// ElectricalBuses returns the switch endpoint buses referenced by elements,
// in canonical order
func (e *Engine) ElectricalBuses() []string {
	var out []string
	for _, id := range e.state.endpoints {
		if e.state.electrical[id] {
			out = append(out, id)
		}
	}
	return out
}

// Connections returns a copy of the connection record of a switch
func (e *Engine) Connections(id string) (ConnectionRecord, bool) {
	rec, ok := e.state.connections[id]
	if !ok {
		return nil, false
	}
	return rec.clone(), true
}

// Generation identifies the current build. It changes on every rebuild.
func (e *Engine) Generation() uuid.UUID {
	return e.state.generation
}

// Warnings returns the consistency warnings raised so far
func (e *Engine) Warnings() []Warning {
	return append([]Warning(nil), e.warnings...)
}
