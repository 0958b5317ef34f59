package topology

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Status is the stored state of a switch.
type Status int

const (
	Open Status = iota
	Closed
)

func (s Status) String() string {
	switch s {
	case Open:
		return "open"
	case Closed:
		return "closed"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// ParseStatus accepts open/closed as well as 0/1.
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "open", "0":
		return Open, nil
	case "closed", "close", "1":
		return Closed, nil
	default:
		return Open, fmt.Errorf("unknown switch status %q", s)
	}
}

// Side selects one endpoint of a switch.
type Side int

const (
	Side0 Side = iota
	Side1
)

func (s Side) String() string {
	return fmt.Sprintf("bus%d", int(s))
}

// Switch joins Bus0 and Bus1. BusConnected is assigned by the builder.
type Switch struct {
	ID           string
	Bus0         string
	Bus1         string
	Status       Status
	Capacity     float64
	BusConnected string
}

// NewSwitch returns a switch with no capacity rating.
func NewSwitch(id, bus0, bus1 string, status Status) Switch {
	return Switch{ID: id, Bus0: bus0, Bus1: bus1, Status: status, Capacity: math.NaN()}
}

// Endpoint returns the bus on the given side.
func (s Switch) Endpoint(side Side) string {
	if side == Side1 {
		return s.Bus1
	}
	return s.Bus0
}

// Joins reports whether s connects the unordered pair {a, b}.
func (s Switch) Joins(a, b string) bool {
	return (s.Bus0 == a && s.Bus1 == b) || (s.Bus0 == b && s.Bus1 == a)
}

// ConnectionKey addresses one list of element ids in a ConnectionRecord:
// the switch endpoint, the component type and the element terminal that
// references that endpoint.
type ConnectionKey struct {
	SwitchSide Side
	Component  string
	Terminal   int
}

func (k ConnectionKey) String() string {
	return fmt.Sprintf("%s/%s/bus%d", k.SwitchSide, k.Component, k.Terminal)
}

// ConnectionRecord lists, per key, the elements bound to one switch.
type ConnectionRecord map[ConnectionKey][]string

// Keys returns the record keys ordered by side, component and terminal.
func (r ConnectionRecord) Keys() []ConnectionKey {
	keys := make([]ConnectionKey, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.SwitchSide != b.SwitchSide {
			return a.SwitchSide < b.SwitchSide
		}
		if a.Component != b.Component {
			return a.Component < b.Component
		}
		return a.Terminal < b.Terminal
	})
	return keys
}

// Len returns the number of element terminals in the record.
func (r ConnectionRecord) Len() int {
	n := 0
	for _, ids := range r {
		n += len(ids)
	}
	return n
}

func (r ConnectionRecord) clone() ConnectionRecord {
	out := make(ConnectionRecord, len(r))
	for k, ids := range r {
		out[k] = append([]string(nil), ids...)
	}
	return out
}

// WarningKind classifies a consistency warning.
type WarningKind string

const (
	// WarnSyntheticIDCollision: an existing bus id already uses the
	// connected-bus naming pattern.
	WarnSyntheticIDCollision WarningKind = "synthetic_id_collision"
	// WarnOnlyLogicalReappeared: a bus dropped as only-logical was found in
	// the live set again.
	WarnOnlyLogicalReappeared WarningKind = "only_logical_reappeared"
)

// Warning is a non-fatal consistency finding.
type Warning struct {
	Kind    WarningKind
	Message string
	Buses   []string
}
