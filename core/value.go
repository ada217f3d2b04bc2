package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	gfn "github.com/panyam/goutils/fn"
)

// Value is a runtime value of the remap language. The zero Value is Null.
type Value struct {
	kind Kind
	data any
}

// Null is the absent/null value.
var Null = Value{kind: KindNull}

func NewBytes(b []byte) Value       { return Value{kind: KindBytes, data: bytes.Clone(b)} }
func NewString(s string) Value      { return Value{kind: KindBytes, data: []byte(s)} }
func NewInteger(i int64) Value      { return Value{kind: KindInteger, data: i} }
func NewFloat(f float64) Value      { return Value{kind: KindFloat, data: f} }
func NewBoolean(b bool) Value       { return Value{kind: KindBoolean, data: b} }
func NewTimestamp(t time.Time) Value { return Value{kind: KindTimestamp, data: t} }

// NewArray creates an array value. The slice is owned by the returned value.
func NewArray(items []Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{kind: KindArray, data: items}
}

// NewMap creates a map value. The map is owned by the returned value.
func NewMap(fields map[string]Value) Value {
	if fields == nil {
		fields = map[string]Value{}
	}
	return Value{kind: KindMap, data: fields}
}

// From converts a Go native into a Value.
func From(v any) (Value, error) {
	switch val := v.(type) {
	case nil:
		return Null, nil
	case Value:
		return val, nil
	case *Value:
		if val == nil {
			return Null, nil
		}
		return *val, nil
	case []byte:
		return NewBytes(val), nil
	case string:
		return NewString(val), nil
	case int:
		return NewInteger(int64(val)), nil
	case int8:
		return NewInteger(int64(val)), nil
	case int16:
		return NewInteger(int64(val)), nil
	case int32:
		return NewInteger(int64(val)), nil
	case int64:
		return NewInteger(val), nil
	case uint:
		return fromUnsigned(uint64(val))
	case uint8:
		return NewInteger(int64(val)), nil
	case uint16:
		return NewInteger(int64(val)), nil
	case uint32:
		return NewInteger(int64(val)), nil
	case uint64:
		return fromUnsigned(val)
	case float32:
		return NewFloat(float64(val)), nil
	case float64:
		return NewFloat(val), nil
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return NewInteger(i), nil
		}
		f, err := val.Float64()
		if err != nil {
			return Null, fmt.Errorf("%w: number %q", ErrUnsupportedType, val.String())
		}
		return NewFloat(f), nil
	case bool:
		return NewBoolean(val), nil
	case time.Time:
		return NewTimestamp(val), nil
	case []Value:
		return NewArray(val), nil
	case []any:
		items := make([]Value, 0, len(val))
		for i, item := range val {
			iv, err := From(item)
			if err != nil {
				return Null, fmt.Errorf("index %d: %w", i, err)
			}
			items = append(items, iv)
		}
		return NewArray(items), nil
	case map[string]Value:
		return NewMap(val), nil
	case map[string]any:
		fields := make(map[string]Value, len(val))
		for k, item := range val {
			iv, err := From(item)
			if err != nil {
				return Null, fmt.Errorf("field %q: %w", k, err)
			}
			fields[k] = iv
		}
		return NewMap(fields), nil
	}
	return Null, fmt.Errorf("%w: %T", ErrUnsupportedType, v)
}

// MustFrom is like From but panics on unsupported input. Meant for literals in tests
// and static tables.
func MustFrom(v any) Value {
	out, err := From(v)
	if err != nil {
		panic(err)
	}
	return out
}

func fromUnsigned(u uint64) (Value, error) {
	if u > math.MaxInt64 {
		return Null, fmt.Errorf("%w: %d overflows integer", ErrUnsupportedType, u)
	}
	return NewInteger(int64(u)), nil
}

// Kind returns the single kind of this value.
func (v Value) Kind() Kind {
	if v.kind == 0 {
		return KindNull
	}
	return v.kind
}

func (v Value) IsNull() bool { return v.Kind() == KindNull }

func (v Value) AsBytes() ([]byte, bool) {
	b, ok := v.data.([]byte)
	return b, ok && v.kind == KindBytes
}

func (v Value) AsString() (string, bool) {
	b, ok := v.AsBytes()
	return string(b), ok
}

func (v Value) AsInteger() (int64, bool) {
	i, ok := v.data.(int64)
	return i, ok
}

func (v Value) AsFloat() (float64, bool) {
	f, ok := v.data.(float64)
	return f, ok
}

func (v Value) AsBoolean() (bool, bool) {
	b, ok := v.data.(bool)
	return b, ok
}

func (v Value) AsTimestamp() (time.Time, bool) {
	t, ok := v.data.(time.Time)
	return t, ok
}

func (v Value) AsArray() ([]Value, bool) {
	a, ok := v.data.([]Value)
	return a, ok
}

func (v Value) AsMap() (map[string]Value, bool) {
	m, ok := v.data.(map[string]Value)
	return m, ok
}

// Equal compares two values structurally.
func (v Value) Equal(other Value) bool {
	if v.Kind() != other.Kind() {
		return false
	}
	switch v.Kind() {
	case KindNull:
		return true
	case KindBytes:
		a, _ := v.AsBytes()
		b, _ := other.AsBytes()
		return bytes.Equal(a, b)
	case KindTimestamp:
		a, _ := v.AsTimestamp()
		b, _ := other.AsTimestamp()
		return a.Equal(b)
	case KindArray:
		a, _ := v.AsArray()
		b, _ := other.AsArray()
		return slices.EqualFunc(a, b, func(x, y Value) bool { return x.Equal(y) })
	case KindMap:
		a, _ := v.AsMap()
		b, _ := other.AsMap()
		if len(a) != len(b) {
			return false
		}
		for k, av := range a {
			bv, ok := b[k]
			if !ok || !av.Equal(bv) {
				return false
			}
		}
		return true
	}
	return v.data == other.data
}

// Clone returns a deep copy; the result shares no mutable storage with v.
func (v Value) Clone() Value {
	switch v.Kind() {
	case KindBytes:
		b, _ := v.AsBytes()
		return NewBytes(b)
	case KindArray:
		a, _ := v.AsArray()
		items := make([]Value, len(a))
		for i, item := range a {
			items[i] = item.Clone()
		}
		return NewArray(items)
	case KindMap:
		m, _ := v.AsMap()
		fields := make(map[string]Value, len(m))
		for k, item := range m {
			fields[k] = item.Clone()
		}
		return NewMap(fields)
	}
	return v
}

// Native converts the value back into plain Go data. Bytes become strings.
func (v Value) Native() any {
	switch v.Kind() {
	case KindNull:
		return nil
	case KindBytes:
		s, _ := v.AsString()
		return s
	case KindArray:
		a, _ := v.AsArray()
		return gfn.Map(a, func(item Value) any { return item.Native() })
	case KindMap:
		m, _ := v.AsMap()
		out := make(map[string]any, len(m))
		for k, item := range m {
			out[k] = item.Native()
		}
		return out
	}
	return v.data
}

func (v Value) String() string {
	switch v.Kind() {
	case KindNull:
		return "null"
	case KindBytes:
		s, _ := v.AsString()
		return strconv.Quote(s)
	case KindInteger:
		i, _ := v.AsInteger()
		return strconv.FormatInt(i, 10)
	case KindFloat:
		f, _ := v.AsFloat()
		return strconv.FormatFloat(f, 'g', -1, 64)
	case KindBoolean:
		b, _ := v.AsBoolean()
		return strconv.FormatBool(b)
	case KindTimestamp:
		t, _ := v.AsTimestamp()
		return "t'" + t.Format(time.RFC3339Nano) + "'"
	case KindArray:
		a, _ := v.AsArray()
		return "[" + strings.Join(gfn.Map(a, func(item Value) string { return item.String() }), ", ") + "]"
	case KindMap:
		m, _ := v.AsMap()
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		return "{ " + strings.Join(gfn.Map(keys, func(k string) string {
			return strconv.Quote(k) + ": " + m[k].String()
		}), ", ") + " }"
	}
	return "<invalid>"
}

func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Native())
}

// UnmarshalJSON decodes JSON keeping integers as integers.
func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	out, err := From(raw)
	if err != nil {
		return err
	}
	*v = out
	return nil
}
