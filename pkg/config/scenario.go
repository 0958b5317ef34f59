package config

import (
	"fmt"
	"math"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dd0wney/cluso-gridswitch/pkg/grid"
	"github.com/dd0wney/cluso-gridswitch/pkg/topology"
	"github.com/dd0wney/cluso-gridswitch/pkg/validation"
)

// Scenario describes a network and its switches.
//
//	start: 2026-01-01T00:00:00Z
//	snapshots: 24
//	buses:
//	  - {id: A, v_nom: 110}
//	elements:
//	  - {component: Line, id: L1, buses: [A, C]}
//	switches:
//	  - {name: S1, bus0: A, bus1: B, status: closed}
type Scenario struct {
	Start     time.Time     `yaml:"start"`
	Snapshots int           `yaml:"snapshots"`
	Step      time.Duration `yaml:"step"`
	Buses     []grid.Bus    `yaml:"buses"`
	Elements  []ElementSpec `yaml:"elements"`
	Switches  []SwitchSpec  `yaml:"switches"`
}

// ElementSpec is one element row
type ElementSpec struct {
	Component string   `yaml:"component"`
	ID        string   `yaml:"id"`
	Buses     []string `yaml:"buses"`
}

// SwitchSpec is one switch row. A missing capacity means unrated.
type SwitchSpec struct {
	Name     string   `yaml:"name"`
	Bus0     string   `yaml:"bus0"`
	Bus1     string   `yaml:"bus1"`
	Status   string   `yaml:"status"`
	Capacity *float64 `yaml:"capacity"`
}

// ParseScenario decodes and validates scenario data
func ParseScenario(data []byte) (*Scenario, error) {
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode scenario: %w", err)
	}
	s.Step = validation.DefaultOr(s.Step, time.Hour)
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks the scenario for problems the network would only report
// one at a time
func (s *Scenario) Validate() error {
	cv := validation.NewConfigValidator("scenario").
		NonNegative("snapshots", s.Snapshots)
	for i, b := range s.Buses {
		cv.Required(fmt.Sprintf("buses[%d].id", i), b.ID)
	}
	for i, el := range s.Elements {
		cv.Required(fmt.Sprintf("elements[%d].component", i), el.Component)
		cv.Required(fmt.Sprintf("elements[%d].id", i), el.ID)
	}
	for i, sw := range s.Switches {
		cv.Custom(fmt.Sprintf("switches[%d].status", i), func() error {
			_, err := topology.ParseStatus(validation.DefaultOr(sw.Status, "open"))
			return err
		})
	}
	return cv.Validate()
}

// BuildNetwork creates the grid described by the scenario
func (s *Scenario) BuildNetwork() (*grid.Network, error) {
	n := grid.NewNetwork()
	for _, b := range s.Buses {
		if err := n.AddBus(b); err != nil {
			return nil, fmt.Errorf("bus %q: %w", b.ID, err)
		}
	}
	for _, el := range s.Elements {
		if err := n.Add(el.Component, el.ID, el.Buses...); err != nil {
			return nil, fmt.Errorf("element %q: %w", el.ID, err)
		}
	}
	if s.Snapshots > 0 {
		index := make([]time.Time, s.Snapshots)
		for i := range index {
			index[i] = s.Start.Add(time.Duration(i) * s.Step)
		}
		n.SetSnapshots(index)
	}
	return n, nil
}

// TopologySwitches converts the switch rows for topology.Engine.InitSwitches
func (s *Scenario) TopologySwitches() ([]topology.Switch, error) {
	out := make([]topology.Switch, 0, len(s.Switches))
	for _, spec := range s.Switches {
		status, err := topology.ParseStatus(validation.DefaultOr(spec.Status, "open"))
		if err != nil {
			return nil, fmt.Errorf("switch %q: %w", spec.Name, err)
		}
		capacity := math.NaN()
		if spec.Capacity != nil {
			capacity = *spec.Capacity
		}
		out = append(out, topology.Switch{
			ID:       spec.Name,
			Bus0:     spec.Bus0,
			Bus1:     spec.Bus1,
			Status:   status,
			Capacity: capacity,
		})
	}
	return out, nil
}
