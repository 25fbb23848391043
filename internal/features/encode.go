// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package features

import (
	"bytes"
	"encoding/json"
	"fmt"

	"go.yaml.in/yaml/v3"
)

// MarshalYAML encodes the record as a mapping in insertion order.
func (r *Record) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, name := range r.names {
		var val yaml.Node
		if err := val.Encode(r.values[name].Any()); err != nil {
			return nil, fmt.Errorf("encoding feature %s: %w", name, err)
		}
		if r.values[name].IsSeq() {
			val.Style = yaml.FlowStyle
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: name},
			&val,
		)
	}
	return node, nil
}

// MarshalJSON encodes the record as an object in insertion order.
func (r *Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range r.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(r.values[name].Any())
		if err != nil {
			return nil, fmt.Errorf("encoding feature %s: %w", name, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// EncodeValue serializes v for storage as its kind and a JSON payload.
func EncodeValue(v Value) (Kind, []byte, error) {
	data, err := json.Marshal(v.Any())
	if err != nil {
		return "", nil, err
	}
	return v.Kind, data, nil
}

// DecodeValue reverses EncodeValue.
func DecodeValue(kind Kind, data []byte) (Value, error) {
	switch kind {
	case KindInt:
		var x int
		if err := json.Unmarshal(data, &x); err != nil {
			return Value{}, err
		}
		return Int(x), nil
	case KindFloat:
		var x float64
		if err := json.Unmarshal(data, &x); err != nil {
			return Value{}, err
		}
		return Float(x), nil
	case KindInts:
		var x []int
		if err := json.Unmarshal(data, &x); err != nil {
			return Value{}, err
		}
		return Ints(x), nil
	case KindFloats:
		var x []float64
		if err := json.Unmarshal(data, &x); err != nil {
			return Value{}, err
		}
		return Floats(x), nil
	default:
		return Value{}, fmt.Errorf("unknown value kind %q", kind)
	}
}
