package mmm

import (
	"fmt"
	"math"
)

// Column is a named numeric series; NaN marks a missing value
type Column struct {
	Name   string
	Values []float64
}

// Frame is an ordered set of equal-length numeric columns
type Frame struct {
	Columns []Column
}

func (f *Frame) add(name string, values []float64) {
	f.Columns = append(f.Columns, Column{Name: name, Values: values})
}

// Names returns the column names in order
func (f Frame) Names() []string {
	names := make([]string, len(f.Columns))
	for i, c := range f.Columns {
		names[i] = c.Name
	}
	return names
}

// Rows returns the common column length
func (f Frame) Rows() int {
	if len(f.Columns) == 0 {
		return 0
	}
	return len(f.Columns[0].Values)
}

// Column looks up a column by name
func (f Frame) Column(name string) (Column, bool) {
	for _, c := range f.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// Select returns the named columns with NaN replaced by fill. It fails on the
// first unknown name.
func (f Frame) Select(names []string, fill float64) ([][]float64, error) {
	out := make([][]float64, len(names))
	for i, name := range names {
		col, ok := f.Column(name)
		if !ok {
			return nil, fmt.Errorf("unknown column %q", name)
		}
		vals := make([]float64, len(col.Values))
		for j, v := range col.Values {
			if math.IsNaN(v) {
				v = fill
			}
			vals[j] = v
		}
		out[i] = vals
	}
	return out, nil
}
