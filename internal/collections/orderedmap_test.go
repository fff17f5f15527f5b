package collections

import "testing"

func TestOrderedMap_InsertionOrder(t *testing.T) {
	m := NewOrderedMap()
	m.Set("c", 1)
	m.Set("a", 2)
	m.Set("b", 3)

	want := []string{"c", "a", "b"}
	got := m.Keys()
	if len(got) != len(want) {
		t.Fatalf("expected %d keys, got %d", len(want), len(got))
	}
	for i, k := range want {
		if got[i] != k {
			t.Errorf("key %d: expected %q, got %q", i, k, got[i])
		}
	}
}

func TestOrderedMap_ReplaceKeepsPosition(t *testing.T) {
	m := NewOrderedMap()
	m.Set("a", 1)
	m.Set("b", 2)
	m.Set("a", 10)

	if m.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", m.Len())
	}
	if k, v := m.At(0); k != "a" || v != 10 {
		t.Errorf("expected a=10 first, got %s=%v", k, v)
	}
}

func TestOrderedMap_Delete(t *testing.T) {
	m := NewOrderedMap()
	m.Set("a", 1)
	m.Set("b", 2)
	m.Set("c", 3)
	m.Delete("b")

	if m.Has("b") {
		t.Error("b should be gone")
	}
	if k, _ := m.At(1); k != "c" {
		t.Errorf("expected c at index 1, got %q", k)
	}
	m.Set("d", 4)
	if k, _ := m.At(2); k != "d" {
		t.Errorf("expected d appended, got %q", k)
	}
}

func TestOrderedMap_MergeOverride(t *testing.T) {
	a := NewOrderedMap()
	a.Set("x", 1)
	b := NewOrderedMap()
	b.Set("x", 2)
	b.Set("y", 3)

	a.Merge(b, false)
	if v, _ := a.Get("x"); v != 1 {
		t.Errorf("non-override merge should keep x=1, got %v", v)
	}
	a.Merge(b, true)
	if v, _ := a.Get("x"); v != 2 {
		t.Errorf("override merge should set x=2, got %v", v)
	}
	if v, _ := a.Get("y"); v != 3 {
		t.Errorf("merge should add y=3, got %v", v)
	}
}

func TestOrderedMap_NilReceiver(t *testing.T) {
	var m *OrderedMap
	if m.Len() != 0 {
		t.Error("nil map should have zero length")
	}
	if m.Has("x") {
		t.Error("nil map should not contain keys")
	}
	m.Each(func(string, any) bool {
		t.Error("nil map should not iterate")
		return true
	})
}
