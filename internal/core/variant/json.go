package variant

import (
	"encoding/json"
	"fmt"
)

// MarshalJSON encodes the value with its natural JSON representation. Map keys
// are emitted in sorted order by encoding/json, which keeps encoded output
// deterministic for identical values.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNull:
		return []byte("null"), nil
	case KindBool:
		return json.Marshal(v.b)
	case KindNumber:
		return json.Marshal(v.num)
	case KindString:
		return json.Marshal(v.str)
	case KindList:
		return json.Marshal(v.list)
	case KindMap:
		return json.Marshal(v.m)
	default:
		return nil, fmt.Errorf("variant: cannot marshal kind %s", v.kind)
	}
}

// UnmarshalJSON decodes any JSON value into the matching variant kind.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	decoded, err := FromAny(raw)
	if err != nil {
		return err
	}
	*v = decoded
	return nil
}

// FromAny converts a dynamically typed value, as produced by encoding/json or
// hand-built by game logic, into a Value. Supported inputs are nil, bool,
// all integer and float types, string, []any and map[string]any.
func FromAny(raw any) (Value, error) {
	switch val := raw.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Bool(val), nil
	case float64:
		return Number(val), nil
	case float32:
		return Number(float64(val)), nil
	case int:
		return Number(float64(val)), nil
	case int32:
		return Number(float64(val)), nil
	case int64:
		return Number(float64(val)), nil
	case uint:
		return Number(float64(val)), nil
	case uint32:
		return Number(float64(val)), nil
	case uint64:
		return Number(float64(val)), nil
	case string:
		return String(val), nil
	case []any:
		items := make([]Value, len(val))
		for i, item := range val {
			decoded, err := FromAny(item)
			if err != nil {
				return Null(), err
			}
			items[i] = decoded
		}
		return List(items...), nil
	case map[string]any:
		fields, err := FieldsFromAny(val)
		if err != nil {
			return Null(), err
		}
		return Map(fields), nil
	case Value:
		return val, nil
	default:
		return Null(), fmt.Errorf("variant: unsupported type %T", raw)
	}
}

// FieldsFromAny converts a dynamically typed mapping into a field mapping.
func FieldsFromAny(raw map[string]any) (map[string]Value, error) {
	fields := make(map[string]Value, len(raw))
	for key, item := range raw {
		decoded, err := FromAny(item)
		if err != nil {
			return nil, err
		}
		fields[key] = decoded
	}
	return fields, nil
}

// ToAny converts a Value back into the dynamically typed form game logic
// usually consumes.
func ToAny(v Value) any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindNumber:
		return v.num
	case KindString:
		return v.str
	case KindList:
		items := make([]any, len(v.list))
		for i, item := range v.list {
			items[i] = ToAny(item)
		}
		return items
	case KindMap:
		return FieldsToAny(v.m)
	default:
		return nil
	}
}

// FieldsToAny converts a field mapping into a map[string]any.
func FieldsToAny(fields map[string]Value) map[string]any {
	raw := make(map[string]any, len(fields))
	for key, v := range fields {
		raw[key] = ToAny(v)
	}
	return raw
}
