package variant

import (
	"encoding/json"
	"testing"
)

func TestEqualKinds(t *testing.T) {
	tests := []struct {
		name string
		a, b Value
		want bool
	}{
		{"null equals null", Null(), Null(), true},
		{"bool equal", Bool(true), Bool(true), true},
		{"bool unequal", Bool(true), Bool(false), false},
		{"number equal", Number(1.5), Number(1.5), true},
		{"number unequal", Number(1.5), Number(2.5), false},
		{"string equal", String("a"), String("a"), true},
		{"no cross-kind equality", Number(42), String("42"), false},
		{"null is not zero", Null(), Number(0), false},
		{"list equal", List(Number(1), String("x")), List(Number(1), String("x")), true},
		{"list length differs", List(Number(1)), List(Number(1), Number(2)), false},
		{"list element differs", List(Number(1)), List(Number(2)), false},
		{
			"map equal",
			Map(map[string]Value{"x": Number(1)}),
			Map(map[string]Value{"x": Number(1)}),
			true,
		},
		{
			"map key missing",
			Map(map[string]Value{"x": Number(1)}),
			Map(map[string]Value{}),
			false,
		},
		{
			"nested unequal",
			Map(map[string]Value{"p": Map(map[string]Value{"x": Number(1)})}),
			Map(map[string]Value{"p": Map(map[string]Value{"x": Number(2)})}),
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Equal(tt.a, tt.b); got != tt.want {
				t.Fatalf("Equal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCloneSharesNothing(t *testing.T) {
	inner := map[string]Value{"x": Number(1)}
	list := []Value{Number(1), Map(inner)}
	original := Map(map[string]Value{
		"items": List(list...),
		"meta":  Map(map[string]Value{"name": String("a")}),
	})

	cloned := Clone(original)
	if !Equal(original, cloned) {
		t.Fatal("clone is not equal to source")
	}

	// Mutating the source must not leak into the clone.
	inner["x"] = Number(99)
	original.AsMap()["meta"].AsMap()["name"] = String("b")
	list[0] = Number(100)

	meta := cloned.AsMap()["meta"].AsMap()
	if got := meta["name"].AsString(); got != "a" {
		t.Fatalf("clone leaked map mutation: %q", got)
	}
	items := cloned.AsMap()["items"].AsList()
	if got := items[0].AsNumber(); got != 1 {
		t.Fatalf("clone leaked list mutation: %v", got)
	}
	if got := items[1].AsMap()["x"].AsNumber(); got != 1 {
		t.Fatalf("clone leaked nested map mutation: %v", got)
	}
}

func TestJSONRoundTrip(t *testing.T) {
	original := Map(map[string]Value{
		"name":   String("Alice"),
		"health": Number(100),
		"alive":  Bool(true),
		"tags":   List(String("a"), String("b")),
		"gear":   Null(),
		"position": Map(map[string]Value{
			"x": Number(1.5),
			"y": Number(-2),
		}),
	})

	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded Value
	if err = json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !Equal(original, decoded) {
		t.Fatalf("round trip mismatch: %s", data)
	}
}

func TestMarshalDeterministic(t *testing.T) {
	v := Map(map[string]Value{
		"b": Number(2),
		"a": Number(1),
		"c": Map(map[string]Value{"z": Number(3), "y": Number(4)}),
	})
	first, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for i := 0; i < 10; i++ {
		next, err := json.Marshal(v)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		if string(next) != string(first) {
			t.Fatalf("non-deterministic encoding: %s vs %s", first, next)
		}
	}
}

func TestFromAny(t *testing.T) {
	raw := map[string]any{
		"id":    int64(7),
		"ratio": 0.5,
		"name":  "x",
		"on":    true,
		"none":  nil,
		"list":  []any{1, "two"},
	}
	fields, err := FieldsFromAny(raw)
	if err != nil {
		t.Fatalf("FieldsFromAny: %v", err)
	}
	if fields["id"].AsNumber() != 7 {
		t.Fatalf("id = %v", fields["id"].AsNumber())
	}
	if !fields["none"].IsNull() {
		t.Fatal("nil did not map to null")
	}
	if fields["list"].AsList()[1].AsString() != "two" {
		t.Fatal("list element mismatch")
	}

	if _, err = FromAny(struct{}{}); err == nil {
		t.Fatal("expected error for unsupported type")
	}
}
