package metadata

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
)

// Kind identifies which variant a Value holds.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindString
	KindNumber
	KindBool
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindMap:
		return "map"
	default:
		return "invalid"
	}
}

// Value is a tagged metadata value: a string, a number, a bool or a nested Map.
// The zero Value is invalid and renders as an empty string.
type Value struct {
	kind Kind
	s    string
	n    float64
	b    bool
	m    Map
}

// String returns a string Value.
func String(s string) Value { return Value{kind: KindString, s: s} }

// Number returns a numeric Value.
func Number(n float64) Value { return Value{kind: KindNumber, n: n} }

// Int returns a numeric Value from an integer.
func Int(n int) Value { return Value{kind: KindNumber, n: float64(n)} }

// Bool returns a boolean Value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Nested returns a Value wrapping a copy of m.
func Nested(m Map) Value { return Value{kind: KindMap, m: m.Clone()} }

func (v Value) Kind() Kind { return v.kind }

func (v Value) AsString() (string, bool) { return v.s, v.kind == KindString }

func (v Value) AsNumber() (float64, bool) { return v.n, v.kind == KindNumber }

func (v Value) AsBool() (bool, bool) { return v.b, v.kind == KindBool }

// AsMap returns a copy of the nested map.
func (v Value) AsMap() (Map, bool) {
	if v.kind != KindMap {
		return nil, false
	}
	return v.m.Clone(), true
}

// String coerces the value to its display form. Numbers use the shortest
// representation that round-trips, maps render with sorted keys.
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.s
	case KindNumber:
		return strconv.FormatFloat(v.n, 'g', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindMap:
		return v.m.String()
	default:
		return ""
	}
}

// Equal reports whether two values hold the same variant and content.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.s == o.s
	case KindNumber:
		return v.n == o.n
	case KindBool:
		return v.b == o.b
	case KindMap:
		return v.m.Equal(o.m)
	default:
		return true
	}
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindString:
		return json.Marshal(v.s)
	case KindNumber:
		return json.Marshal(v.n)
	case KindBool:
		return json.Marshal(v.b)
	case KindMap:
		return json.Marshal(v.m)
	default:
		return []byte("null"), nil
	}
}

func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*v = FromAnyValue(raw)
	return nil
}

// Map is a metadata payload keyed by string.
type Map map[string]Value

// Clone returns a deep copy. A nil map clones to nil.
func (m Map) Clone() Map {
	if m == nil {
		return nil
	}
	out := make(Map, len(m))
	for k, v := range m {
		if v.kind == KindMap {
			v.m = v.m.Clone()
		}
		out[k] = v
	}
	return out
}

// Keys returns the keys in sorted order.
func (m Map) Keys() []string {
	return slices.Sorted(maps.Keys(m))
}

// Walk calls fn for every leaf value, descending into nested maps.
// Iteration stops when fn returns false.
func (m Map) Walk(fn func(key string, v Value) bool) bool {
	for _, k := range m.Keys() {
		v := m[k]
		if v.kind == KindMap {
			if !v.m.Walk(fn) {
				return false
			}
			continue
		}
		if !fn(k, v) {
			return false
		}
	}
	return true
}

// String renders the map as [k1:v1 k2:v2] with sorted keys.
func (m Map) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, k := range m.Keys() {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(k)
		sb.WriteByte(':')
		sb.WriteString(m[k].String())
	}
	sb.WriteByte(']')
	return sb.String()
}

func (m Map) Equal(o Map) bool {
	if len(m) != len(o) {
		return false
	}
	for k, v := range m {
		ov, ok := o[k]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}

// FromAny converts a loosely typed map into a Map.
func FromAny(in map[string]any) Map {
	if in == nil {
		return nil
	}
	out := make(Map, len(in))
	for k, v := range in {
		out[k] = FromAnyValue(v)
	}
	return out
}

// FromAnyValue converts a single loosely typed value. Types without a direct
// variant are rendered with fmt.Sprint and stored as strings.
func FromAnyValue(v any) Value {
	switch x := v.(type) {
	case nil:
		return Value{}
	case Value:
		return x
	case string:
		return String(x)
	case bool:
		return Bool(x)
	case int:
		return Number(float64(x))
	case int8:
		return Number(float64(x))
	case int16:
		return Number(float64(x))
	case int32:
		return Number(float64(x))
	case int64:
		return Number(float64(x))
	case uint:
		return Number(float64(x))
	case uint8:
		return Number(float64(x))
	case uint16:
		return Number(float64(x))
	case uint32:
		return Number(float64(x))
	case uint64:
		return Number(float64(x))
	case float32:
		return Number(float64(x))
	case float64:
		return Number(x)
	case Map:
		return Nested(x)
	case map[string]any:
		return Value{kind: KindMap, m: FromAny(x)}
	case fmt.Stringer:
		return String(x.String())
	default:
		return String(fmt.Sprint(x))
	}
}
