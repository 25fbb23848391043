// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package features

import "fmt"

// Column declares one per-object feature.
type Column struct {
	Name string
	Kind Kind // KindInts or KindFloats
}

// IntCol declares an int column.
func IntCol(name string) Column { return Column{Name: name, Kind: KindInts} }

// FloatCol declares a float column.
func FloatCol(name string) Column { return Column{Name: name, Kind: KindFloats} }

// Table accumulates parallel per-object columns for one collection. Columns
// are declared up front so that an empty collection still emits every name.
type Table struct {
	cols   []Column
	index  map[string]int
	ints   [][]int
	floats [][]float64
}

// NewTable declares the columns of a collection, in emission order.
func NewTable(cols ...Column) *Table {
	t := &Table{index: make(map[string]int, len(cols))}
	t.Declare(cols...)
	return t
}

// Declare appends more columns.
func (t *Table) Declare(cols ...Column) {
	for _, c := range cols {
		if _, dup := t.index[c.Name]; dup {
			panic(fmt.Sprintf("features: column %s declared twice", c.Name))
		}
		t.index[c.Name] = len(t.cols)
		t.cols = append(t.cols, c)
		t.ints = append(t.ints, nil)
		t.floats = append(t.floats, nil)
	}
}

// Int appends v to the int column name.
func (t *Table) Int(name string, v int) {
	i := t.lookup(name, KindInts)
	t.ints[i] = append(t.ints[i], v)
}

// Bool appends 1 or 0 to the int column name.
func (t *Table) Bool(name string, v bool) {
	t.Int(name, b2i(v))
}

// Float appends v to the float column name.
func (t *Table) Float(name string, v float64) {
	i := t.lookup(name, KindFloats)
	t.floats[i] = append(t.floats[i], v)
}

func (t *Table) lookup(name string, kind Kind) int {
	i, ok := t.index[name]
	if !ok {
		panic(fmt.Sprintf("features: unknown column %s", name))
	}
	if t.cols[i].Kind != kind {
		panic(fmt.Sprintf("features: column %s is %s, not %s", name, t.cols[i].Kind, kind))
	}
	return i
}

// Len returns the length of column name.
func (t *Table) Len(name string) int {
	i, ok := t.index[name]
	if !ok {
		return 0
	}
	if t.cols[i].Kind == KindInts {
		return len(t.ints[i])
	}
	return len(t.floats[i])
}

// WriteTo sends every declared column to sink in declaration order.
func (t *Table) WriteTo(sink Sink) {
	for i, c := range t.cols {
		if c.Kind == KindInts {
			sink.SetValue(c.Name, Ints(t.ints[i]))
		} else {
			sink.SetValue(c.Name, Floats(t.floats[i]))
		}
	}
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}
