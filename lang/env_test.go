package lang

import (
	"slices"
	"testing"
)

func TestEnvironment(t *testing.T) {
	env := NewEnvironment()

	if _, ok := env.Get("a"); ok {
		t.Fatal("empty environment has a binding")
	}

	env.Define("b", NumberValue(2))
	env.Define("a", NumberValue(1))
	env.Define("a", StringValue("one"))

	if env.Len() != 2 {
		t.Errorf("Len = %d, want 2", env.Len())
	}

	if v, _ := env.Get("a"); !v.Equal(StringValue("one")) {
		t.Errorf("a = %v, want last write", v)
	}

	if names := slices.Collect(env.Names()); !slices.Equal(names, []string{"a", "b"}) {
		t.Errorf("Names = %v, want sorted", names)
	}

	var seen []string
	for name, v := range env.All() {
		seen = append(seen, name+"="+v.String())
	}

	if !slices.Equal(seen, []string{"a=one", "b=2"}) {
		t.Errorf("All = %v", seen)
	}
}

func TestEnvironment_Enclose(t *testing.T) {
	outer := NewEnvironment()
	outer.Define("x", NumberValue(1))

	inner := outer.Enclose()
	if inner.Parent() != outer {
		t.Fatal("Parent mismatch")
	}

	if v, ok := inner.Get("x"); !ok || !v.Equal(NumberValue(1)) {
		t.Errorf("inner lookup of x = %v, %v", v, ok)
	}

	inner.Define("x", NumberValue(2))

	if v, _ := outer.Get("x"); !v.Equal(NumberValue(1)) {
		t.Errorf("shadowing changed outer x to %v", v)
	}

	inner.Assign("x", NumberValue(3))
	inner.Assign("y", NumberValue(4))

	if v, _ := inner.Get("x"); !v.Equal(NumberValue(3)) {
		t.Errorf("inner x = %v, want 3", v)
	}

	if v, ok := outer.Get("y"); !ok || !v.Equal(NumberValue(4)) {
		t.Errorf("unbound assignment should define in outermost, got %v, %v", v, ok)
	}

	if inner.Len() != 1 || outer.Len() != 2 {
		t.Errorf("Len = %d, %d; want 1, 2", inner.Len(), outer.Len())
	}
}

func TestEnvironment_Map(t *testing.T) {
	env := NewEnvironment()
	env.Define("k", BoolValue(true))

	m := env.Map()
	m["k"] = BoolValue(false)

	if v, _ := env.Get("k"); !v.Bool() {
		t.Error("Map returned the backing map")
	}
}
