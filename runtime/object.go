package runtime

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/kates/vector/core"
	"google.golang.org/protobuf/types/known/structpb"
)

// Event is the map-backed core.Object a Transform runs programs against.
// An Event is not safe for concurrent use; a Transform gives each worker its own.
type Event struct {
	fields core.Value
}

var _ core.Object = (*Event)(nil)

// NewEvent builds an event from plain Go data. A nil map gives an empty event.
func NewEvent(fields map[string]any) (*Event, error) {
	if fields == nil {
		return &Event{fields: core.NewMap(nil)}, nil
	}
	v, err := core.From(fields)
	if err != nil {
		return nil, err
	}
	return &Event{fields: v}, nil
}

// EventFromValue wraps v, which must be a map.
func EventFromValue(v core.Value) (*Event, error) {
	if v.Kind() != core.KindMap {
		return nil, fmt.Errorf("%w, got %s", ErrNotMap, v.Kind())
	}
	return &Event{fields: v}, nil
}

// ParseEvent decodes a single JSON object.
func ParseEvent(data []byte) (*Event, error) {
	ev := &Event{}
	if err := json.Unmarshal(data, ev); err != nil {
		return nil, err
	}
	return ev, nil
}

func (e *Event) Get(path core.Path) (core.Value, bool) {
	return e.fields.Get(path)
}

// Insert writes value at path. Replacing the root with anything but a map is
// rejected so the event stays an object.
func (e *Event) Insert(path core.Path, value core.Value) error {
	if path.IsRoot() && value.Kind() != core.KindMap {
		return fmt.Errorf("%w: cannot replace event root with %s", core.ErrPathConflict, value.Kind())
	}
	return e.fields.Insert(path, value)
}

func (e *Event) Remove(path core.Path) (core.Value, bool) {
	if path.IsRoot() {
		old := e.fields
		e.fields = core.NewMap(nil)
		return old, true
	}
	return e.fields.Remove(path)
}

// Value returns the event contents. The result aliases the event.
func (e *Event) Value() core.Value { return e.fields }

func (e *Event) Clone() *Event { return &Event{fields: e.fields.Clone()} }

func (e *Event) Equal(other *Event) bool {
	return other != nil && e.fields.Equal(other.fields)
}

func (e *Event) String() string { return e.fields.String() }

func (e *Event) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.fields)
}

func (e *Event) UnmarshalJSON(data []byte) error {
	var v core.Value
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if v.Kind() != core.KindMap {
		return fmt.Errorf("%w, got %s", ErrNotMap, v.Kind())
	}
	e.fields = v
	return nil
}

// ToStruct encodes the event as a protobuf Struct. Timestamps become
// RFC 3339 strings and integers become numbers.
func (e *Event) ToStruct() (*structpb.Struct, error) {
	m, _ := wireNative(e.fields).(map[string]any)
	return structpb.NewStruct(m)
}

// EventFromStruct decodes a protobuf Struct. Numbers with no fractional part
// that fit in an int64 decode as integers.
func EventFromStruct(s *structpb.Struct) (*Event, error) {
	fields := make(map[string]core.Value, len(s.GetFields()))
	for k, v := range s.GetFields() {
		fields[k] = fromWire(v)
	}
	return &Event{fields: core.NewMap(fields)}, nil
}

func wireNative(v core.Value) any {
	switch v.Kind() {
	case core.KindTimestamp:
		t, _ := v.AsTimestamp()
		return t.Format(time.RFC3339Nano)
	case core.KindArray:
		items, _ := v.AsArray()
		out := make([]any, len(items))
		for i, item := range items {
			out[i] = wireNative(item)
		}
		return out
	case core.KindMap:
		m, _ := v.AsMap()
		out := make(map[string]any, len(m))
		for k, item := range m {
			out[k] = wireNative(item)
		}
		return out
	}
	return v.Native()
}

func fromWire(v *structpb.Value) core.Value {
	switch kind := v.GetKind().(type) {
	case *structpb.Value_StringValue:
		return core.NewString(kind.StringValue)
	case *structpb.Value_BoolValue:
		return core.NewBoolean(kind.BoolValue)
	case *structpb.Value_NumberValue:
		n := kind.NumberValue
		if n == math.Trunc(n) && n >= math.MinInt64 && n < math.MaxInt64 {
			return core.NewInteger(int64(n))
		}
		return core.NewFloat(n)
	case *structpb.Value_ListValue:
		values := kind.ListValue.GetValues()
		items := make([]core.Value, len(values))
		for i, item := range values {
			items[i] = fromWire(item)
		}
		return core.NewArray(items)
	case *structpb.Value_StructValue:
		fields := make(map[string]core.Value, len(kind.StructValue.GetFields()))
		for k, item := range kind.StructValue.GetFields() {
			fields[k] = fromWire(item)
		}
		return core.NewMap(fields)
	}
	return core.Null
}
