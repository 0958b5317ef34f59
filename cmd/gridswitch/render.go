package main

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dd0wney/cluso-gridswitch/pkg/events"
	"github.com/dd0wney/cluso-gridswitch/pkg/grid"
	"github.com/dd0wney/cluso-gridswitch/pkg/metrics"
	"github.com/dd0wney/cluso-gridswitch/pkg/topology"
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF00FF")).
			MarginTop(1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00FFFF"))

	boxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#00FF00")).
			Padding(0, 1).
			MarginRight(1)

	closedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00FF00")).
			Bold(true)

	openStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFF00"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))
)

func renderTopology(e *topology.Engine, net *grid.Network) string {
	var s strings.Builder
	s.WriteString(titleStyle.Render("Grid switch topology"))
	s.WriteString("\n")
	s.WriteString(dimStyle.Render("generation " + e.Generation().String()))
	s.WriteString("\n\n")

	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		boxStyle.Render(renderSwitches(e)),
		boxStyle.Render(renderBuses(e, net)),
	))
	s.WriteString("\n")
	s.WriteString(boxStyle.Render(renderElements(net)))

	if warnings := e.Warnings(); len(warnings) > 0 {
		s.WriteString("\n")
		for _, w := range warnings {
			s.WriteString(warnStyle.Render(fmt.Sprintf("! %s: %s %v", w.Kind, w.Message, w.Buses)))
			s.WriteString("\n")
		}
	}
	return s.String()
}

func renderSwitches(e *topology.Engine) string {
	var s strings.Builder
	s.WriteString(headerStyle.Render("Switches"))
	for _, sw := range e.Switches() {
		status := openStyle.Render(sw.Status.String())
		if sw.Status == topology.Closed {
			status = closedStyle.Render(sw.Status.String())
		}
		rating := "unrated"
		if !math.IsNaN(sw.Capacity) {
			rating = fmt.Sprintf("%g", sw.Capacity)
		}
		fmt.Fprintf(&s, "\n%-8s %s-%s  %s  %s -> %s", sw.ID, sw.Bus0, sw.Bus1, status,
			dimStyle.Render(rating), sw.BusConnected)
	}
	return s.String()
}

func renderBuses(e *topology.Engine, net *grid.Network) string {
	var s strings.Builder
	s.WriteString(headerStyle.Render("Buses"))
	fmt.Fprintf(&s, "\nlive          %s", strings.Join(net.BusIDs(), ", "))
	fmt.Fprintf(&s, "\nconnected     %s", strings.Join(ids(e.ConnectedBuses()), ", "))
	fmt.Fprintf(&s, "\nonly-logical  %s", strings.Join(ids(e.OnlyLogicalBuses()), ", "))
	fmt.Fprintf(&s, "\nelectrical    %s", strings.Join(e.ElectricalBuses(), ", "))
	return s.String()
}

func renderElements(net *grid.Network) string {
	var s strings.Builder
	s.WriteString(headerStyle.Render("Elements"))
	for _, tbl := range net.ElementTables() {
		tbl.Each(func(el grid.Element) {
			fmt.Fprintf(&s, "\n%-14s %-10s %s", tbl.Type().Name, el.ID, strings.Join(el.Buses, ", "))
		})
	}
	return s.String()
}

func renderEvents(evs []events.TopologyChanged) string {
	var s strings.Builder
	s.WriteString(headerStyle.Render("Events"))
	for _, ev := range evs {
		fmt.Fprintf(&s, "\n%s  %-14s %d live buses  %s", ev.At.Format("15:04:05.000"), ev.Operation,
			ev.LiveBuses, strings.Join(ev.Switches, ","))
	}
	return boxStyle.Render(s.String())
}

// renderMetrics prints every gauge and counter sample of the registry.
func renderMetrics(reg *metrics.Registry) (string, error) {
	families, err := reg.GetPrometheusRegistry().Gather()
	if err != nil {
		return "", err
	}
	var lines []string
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			var value float64
			switch {
			case m.GetGauge() != nil:
				value = m.GetGauge().GetValue()
			case m.GetCounter() != nil:
				value = m.GetCounter().GetValue()
			default:
				continue
			}
			var labels []string
			for _, lp := range m.GetLabel() {
				labels = append(labels, lp.GetName()+"="+lp.GetValue())
			}
			name := mf.GetName()
			if len(labels) > 0 {
				name += "{" + strings.Join(labels, ",") + "}"
			}
			lines = append(lines, fmt.Sprintf("%-64s %g", name, value))
		}
	}
	sort.Strings(lines)
	return boxStyle.Render(headerStyle.Render("Metrics") + "\n" + strings.Join(lines, "\n")), nil
}

func ids(rows []grid.Bus) []string {
	out := make([]string, len(rows))
	for i, b := range rows {
		out[i] = b.ID
	}
	return out
}
