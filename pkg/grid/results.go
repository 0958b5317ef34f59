package grid

import (
	"time"
)

// Frame is a snapshot-by-element matrix of one result attribute.
// Values[i][j] is the value at snapshot i for element Columns[j].
type Frame struct {
	Columns []string
	Values  [][]float64
}

// Column returns the series of one element, or nil if absent.
func (f *Frame) Column(id string) []float64 {
	for j, c := range f.Columns {
		if c != id {
			continue
		}
		out := make([]float64, len(f.Values))
		for i, row := range f.Values {
			out[i] = row[j]
		}
		return out
	}
	return nil
}

// Empty reports whether the frame holds no element columns.
func (f *Frame) Empty() bool {
	return f == nil || len(f.Columns) == 0
}

// Fill reshapes the frame to rows x columns and sets every cell to value.
// It returns the number of cells written.
func (f *Frame) Fill(rows int, columns []string, value float64) int {
	f.Columns = append(f.Columns[:0], columns...)
	if cap(f.Values) < rows {
		f.Values = make([][]float64, rows)
	}
	f.Values = f.Values[:rows]
	for i := range f.Values {
		row := f.Values[i]
		if cap(row) < len(columns) {
			row = make([]float64, len(columns))
		}
		row = row[:len(columns)]
		for j := range row {
			row[j] = value
		}
		f.Values[i] = row
	}
	return rows * len(columns)
}

// Results holds the per-snapshot output series of every component type.
type Results struct {
	snapshots []time.Time
	frames    map[string]map[string]*Frame
}

func newResults() *Results {
	return &Results{frames: make(map[string]map[string]*Frame)}
}

// Snapshots returns the time index
func (r *Results) Snapshots() []time.Time {
	return append([]time.Time(nil), r.snapshots...)
}

// Frame returns the frame for (component, attr), creating an empty one on
// first access.
func (r *Results) Frame(component, attr string) *Frame {
	byAttr, ok := r.frames[component]
	if !ok {
		byAttr = make(map[string]*Frame)
		r.frames[component] = byAttr
	}
	f, ok := byAttr[attr]
	if !ok {
		f = &Frame{}
		byAttr[attr] = f
	}
	return f
}

// Lookup returns an existing frame without creating one.
func (r *Results) Lookup(component, attr string) (*Frame, bool) {
	f, ok := r.frames[component][attr]
	return f, ok
}
