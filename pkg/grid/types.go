// Package grid is an in-memory network model: buses, element tables for
// branch and one-port components, and per-snapshot result series. It is the
// host that the topology engine rewrites when switches change state.
package grid

import (
	"regexp"
)

// Bus is an electrical node.
type Bus struct {
	ID      string  `yaml:"id"`
	VNom    float64 `yaml:"v_nom"`
	X       float64 `yaml:"x"`
	Y       float64 `yaml:"y"`
	Carrier string  `yaml:"carrier"`
	Control string  `yaml:"control"`
}

// WithID returns a copy of b carrying a different id.
func (b Bus) WithID(id string) Bus {
	b.ID = id
	return b
}

// Kind classifies a component type by its terminal layout.
type Kind int

const (
	// KindBus is the bus table itself
	KindBus Kind = iota
	// KindBranch elements have bus0, bus1 and, for links, further ports
	KindBranch
	// KindOnePort elements attach to a single bus
	KindOnePort
)

func (k Kind) String() string {
	switch k {
	case KindBus:
		return "bus"
	case KindBranch:
		return "branch"
	case KindOnePort:
		return "one-port"
	default:
		return "unknown"
	}
}

// Attribute is a declared per-snapshot result attribute.
type Attribute struct {
	Name    string
	Default float64
}

// ComponentType describes one element table.
type ComponentType struct {
	Name     string
	ListName string
	Kind     Kind
	Results  []Attribute
}

var portAttr = regexp.MustCompile(`^[pq][0-9]+$`)

// Default returns the declared default of a result attribute. Port-indexed
// flows (p2, q3, ...) on branch types default to zero when undeclared.
func (c *ComponentType) Default(attr string) (float64, bool) {
	for _, a := range c.Results {
		if a.Name == attr {
			return a.Default, true
		}
	}
	if c.Kind == KindBranch && portAttr.MatchString(attr) {
		return 0, true
	}
	return 0, false
}

// MinTerminals is the number of bus references every element of this type carries.
func (c *ComponentType) MinTerminals() int {
	switch c.Kind {
	case KindBranch:
		return 2
	case KindOnePort:
		return 1
	default:
		return 0
	}
}

// MaxTerminals is the upper bound on bus references; -1 means unbounded.
func (c *ComponentType) MaxTerminals() int {
	switch {
	case c.Kind == KindOnePort:
		return 1
	case c.Name == "Link":
		return -1
	case c.Kind == KindBranch:
		return 2
	default:
		return 0
	}
}

// Element is a row of an element table. Buses holds the terminal bus ids in
// terminal order (bus0, bus1, ... or the single bus of a one-port).
type Element struct {
	ID    string
	Buses []string
}

func (e Element) clone() Element {
	e.Buses = append([]string(nil), e.Buses...)
	return e
}
