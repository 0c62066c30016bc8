package webstore

import (
	"context"
	"reflect"
	"testing"

	"github.com/goccy/go-json"
)

func TestMap_PutGet(t *testing.T) {
	var m Map
	m.Put("a", 1)
	m.Put(2, "two")
	m.Put("a", 3)

	if m.Len() != 2 {
		t.Fatalf("Len = %d, want 2", m.Len())
	}
	if m[0].Key != "a" || m[0].Value != 3 {
		t.Errorf("Put should keep position and replace value, got %v", m[0])
	}
	if v, ok := m.Get(2); !ok || v != "two" {
		t.Errorf("Get(2) = %v, %v", v, ok)
	}
	if m.Has("missing") {
		t.Error("Has(missing) = true")
	}
}

func TestMapOf(t *testing.T) {
	m := MapOf(map[string]int{"x": 1, "y": 2})
	if m.Len() != 2 {
		t.Fatalf("Len = %d, want 2", m.Len())
	}
	if v, _ := m.Get("y"); v != 2 {
		t.Errorf("Get(y) = %v", v)
	}
}

func TestMap_JSON(t *testing.T) {
	m := Map{{Key: 1, Value: "one"}, {Key: []int{1, 2}, Value: nil}}
	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}
	if string(data) != `[[1,"one"],[[1,2],null]]` {
		t.Errorf("Marshal = %s", data)
	}

	var back Map
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	want := Map{{Key: 1.0, Value: "one"}, {Key: []any{1.0, 2.0}, Value: nil}}
	if !reflect.DeepEqual(back, want) {
		t.Errorf("Unmarshal = %#v", back)
	}

	if err := json.Unmarshal([]byte(`[[1,2,3]]`), &back); err == nil {
		t.Error("Unmarshal of a three-element entry should fail")
	}
}

func TestSetOf_Dedupes(t *testing.T) {
	s := SetOf("a", "b", "a", "c", "b")
	if !reflect.DeepEqual(s, Set{"a", "b", "c"}) {
		t.Errorf("SetOf = %v", s)
	}
}

func TestSet_AddContains(t *testing.T) {
	s := SetOf(1, 2)
	s.Add(2)
	s.Add(3)

	if s.Len() != 3 {
		t.Errorf("Len = %d, want 3", s.Len())
	}
	if !s.Contains(3) || s.Contains(4) {
		t.Errorf("Contains mismatch: %v", s)
	}
}

func TestMap_NativeMapNeedsMapOf(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()
	native := map[int]string{1: "one"}

	_, _ = s.Set(ctx, "native", native)
	got, _ := s.Get(ctx, "native")
	if !reflect.DeepEqual(got, map[string]any{"1": "one"}) {
		t.Errorf("native map Get = %#v, want map[string]any with stringified keys", got)
	}

	_, _ = s.Set(ctx, "converted", MapOf(native))
	got, _ = s.Get(ctx, "converted")
	m, ok := got.(Map)
	if !ok {
		t.Fatalf("MapOf value Get = %T, want Map", got)
	}
	if v, ok := m.Get(1.0); !ok || v != "one" {
		t.Errorf("Get(1) = %v, %v", v, ok)
	}
}
