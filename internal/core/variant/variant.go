package variant

// Kind identifies which member of the Value union is populated.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindList
	KindMap
)

// Kind string representation
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	default:
		return "unknown"
	}
}

// Value is a closed variant over the leaf types a serialized entity field can
// hold: null, bool, number, string, list of values or map of values. The value
// space is closed, so diffing and cloning never need reflection.
type Value struct {
	kind Kind
	b    bool
	num  float64
	str  string
	list []Value
	m    map[string]Value
}

// Null returns the null value.
func Null() Value {
	return Value{kind: KindNull}
}

// Bool wraps a boolean.
func Bool(b bool) Value {
	return Value{kind: KindBool, b: b}
}

// Number wraps a numeric value. All numbers are carried as float64, matching
// their wire representation.
func Number(n float64) Value {
	return Value{kind: KindNumber, num: n}
}

// Int wraps an integer as a Number.
func Int(n int64) Value {
	return Value{kind: KindNumber, num: float64(n)}
}

// String wraps a string.
func String(s string) Value {
	return Value{kind: KindString, str: s}
}

// List wraps an ordered list of values. The slice is used as-is, not copied.
func List(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{kind: KindList, list: items}
}

// Map wraps a nested mapping. The map is used as-is, not copied.
func Map(m map[string]Value) Value {
	if m == nil {
		m = map[string]Value{}
	}
	return Value{kind: KindMap, m: m}
}

// Kind returns the populated union member.
func (v Value) Kind() Kind {
	return v.kind
}

// IsNull reports whether the value is null.
func (v Value) IsNull() bool {
	return v.kind == KindNull
}

// AsBool returns the boolean member. Valid only when Kind() == KindBool.
func (v Value) AsBool() bool {
	return v.b
}

// AsNumber returns the numeric member. Valid only when Kind() == KindNumber.
func (v Value) AsNumber() float64 {
	return v.num
}

// AsString returns the string member. Valid only when Kind() == KindString.
func (v Value) AsString() string {
	return v.str
}

// AsList returns the backing list. Valid only when Kind() == KindList.
func (v Value) AsList() []Value {
	return v.list
}

// AsMap returns the backing map. Valid only when Kind() == KindMap.
func (v Value) AsMap() map[string]Value {
	return v.m
}

// Equal reports deep equality between two values. Values of different kinds
// are never equal, lists compare element-wise and maps compare key-wise.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNull:
		return true
	case KindBool:
		return a.b == b.b
	case KindNumber:
		return a.num == b.num
	case KindString:
		return a.str == b.str
	case KindList:
		if len(a.list) != len(b.list) {
			return false
		}
		for i := range a.list {
			if !Equal(a.list[i], b.list[i]) {
				return false
			}
		}
		return true
	case KindMap:
		return EqualFields(a.m, b.m)
	default:
		return false
	}
}

// EqualFields reports deep equality between two field mappings.
func EqualFields(a, b map[string]Value) bool {
	if len(a) != len(b) {
		return false
	}
	for key, av := range a {
		bv, ok := b[key]
		if !ok || !Equal(av, bv) {
			return false
		}
	}
	return true
}

// Clone returns a deep copy sharing no mutable structure with the source.
func Clone(v Value) Value {
	switch v.kind {
	case KindList:
		items := make([]Value, len(v.list))
		for i, item := range v.list {
			items[i] = Clone(item)
		}
		return Value{kind: KindList, list: items}
	case KindMap:
		return Value{kind: KindMap, m: CloneFields(v.m)}
	default:
		// Null, bool, number and string are immutable; copying the struct
		// is already a full copy.
		return v
	}
}

// CloneFields returns a deep copy of a field mapping.
func CloneFields(fields map[string]Value) map[string]Value {
	cloned := make(map[string]Value, len(fields))
	for key, v := range fields {
		cloned[key] = Clone(v)
	}
	return cloned
}
