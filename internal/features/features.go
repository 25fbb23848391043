// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package features defines the named-value sink every calculator writes to,
// the values it accepts, and an in-memory ordered Record implementing it.
package features

import (
	"fmt"
	"strings"
)

// Kind identifies the shape of a Value.
type Kind string

const (
	KindInt    Kind = "int"
	KindFloat  Kind = "float"
	KindInts   Kind = "ints"
	KindFloats Kind = "floats"
)

// Value is a scalar or a sequence handed to a Sink.
type Value struct {
	Kind   Kind
	Int    int
	Float  float64
	Ints   []int
	Floats []float64
}

// Int wraps a scalar int.
func Int(v int) Value { return Value{Kind: KindInt, Int: v} }

// Float wraps a scalar float.
func Float(v float64) Value { return Value{Kind: KindFloat, Float: v} }

// Ints wraps a sequence of ints. A nil slice is stored as empty.
func Ints(v []int) Value {
	if v == nil {
		v = []int{}
	}
	return Value{Kind: KindInts, Ints: v}
}

// Floats wraps a sequence of floats. A nil slice is stored as empty.
func Floats(v []float64) Value {
	if v == nil {
		v = []float64{}
	}
	return Value{Kind: KindFloats, Floats: v}
}

// IsSeq reports whether v holds a sequence.
func (v Value) IsSeq() bool { return v.Kind == KindInts || v.Kind == KindFloats }

// Len returns the sequence length, or 1 for scalars.
func (v Value) Len() int {
	switch v.Kind {
	case KindInts:
		return len(v.Ints)
	case KindFloats:
		return len(v.Floats)
	default:
		return 1
	}
}

// Any returns the Go value held by v.
func (v Value) Any() any {
	switch v.Kind {
	case KindInt:
		return v.Int
	case KindFloat:
		return v.Float
	case KindInts:
		return v.Ints
	case KindFloats:
		return v.Floats
	default:
		return nil
	}
}

// Sink receives computed features. It is the only output surface of the
// calculator.
type Sink interface {
	SetValue(name string, v Value)
}

// Record is an in-memory Sink that remembers insertion order. Setting a name
// twice keeps its original position and replaces the value.
type Record struct {
	names  []string
	values map[string]Value
}

// NewRecord returns an empty Record.
func NewRecord() *Record {
	return &Record{values: make(map[string]Value)}
}

// SetValue implements Sink.
func (r *Record) SetValue(name string, v Value) {
	if r.values == nil {
		r.values = make(map[string]Value)
	}
	if _, ok := r.values[name]; !ok {
		r.names = append(r.names, name)
	}
	r.values[name] = v
}

// Get returns the value stored under name.
func (r *Record) Get(name string) (Value, bool) {
	v, ok := r.values[name]
	return v, ok
}

// Names returns feature names in insertion order.
func (r *Record) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Len returns the number of features held.
func (r *Record) Len() int { return len(r.names) }

// MustInts returns the int sequence stored under name, or nil.
func (r *Record) MustInts(name string) []int {
	return r.values[name].Ints
}

// MustFloats returns the float sequence stored under name, or nil.
func (r *Record) MustFloats(name string) []float64 {
	return r.values[name].Floats
}

// CheckAligned verifies that every sequence whose name starts with prefix has
// the same length, ignoring names that start with any of exclude. It returns
// the common length.
func (r *Record) CheckAligned(prefix string, exclude ...string) (int, error) {
	length := -1
	first := ""
	for _, name := range r.names {
		if !strings.HasPrefix(name, prefix) || hasAnyPrefix(name, exclude) {
			continue
		}
		v := r.values[name]
		if !v.IsSeq() {
			continue
		}
		if length < 0 {
			length, first = v.Len(), name
			continue
		}
		if v.Len() != length {
			return 0, fmt.Errorf("feature %s has %d entries, %s has %d", name, v.Len(), first, length)
		}
	}
	if length < 0 {
		length = 0
	}
	return length, nil
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
