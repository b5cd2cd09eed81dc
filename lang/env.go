package lang

import (
	"iter"
	"maps"
	"slices"
)

// Environment maps variable names to values. Keys are unique and the last
// write wins.
//
// An Environment may enclose a parent; lookups that miss fall through to it.
// Environments are not safe for concurrent use.
type Environment struct {
	values map[string]Value
	parent *Environment
}

// NewEnvironment returns an empty top-level Environment.
func NewEnvironment() *Environment {
	return &Environment{values: make(map[string]Value)}
}

// Enclose returns a new, empty Environment whose parent is e.
func (e *Environment) Enclose() *Environment {
	return &Environment{values: make(map[string]Value), parent: e}
}

// Parent returns the enclosing Environment, or nil for the top level.
func (e *Environment) Parent() *Environment { return e.parent }

// Get returns the value bound to name in e or its nearest ancestor that
// binds it.
func (e *Environment) Get(name string) (Value, bool) {
	for env := e; env != nil; env = env.parent {
		if v, ok := env.values[name]; ok {
			return v, true
		}
	}

	return NullValue(), false
}

// Define binds name to v in e, replacing any existing binding in e.
func (e *Environment) Define(name string, v Value) {
	e.values[name] = v
}

// Assign replaces the binding of name in the nearest environment that binds
// it. If no environment binds name, it is defined in the outermost one.
func (e *Environment) Assign(name string, v Value) {
	env := e

	for ; env.parent != nil; env = env.parent {
		if _, ok := env.values[name]; ok {
			break
		}
	}

	env.values[name] = v
}

// Len returns the number of bindings in e, excluding its ancestors.
func (e *Environment) Len() int { return len(e.values) }

// Names returns the names bound in e in sorted order.
func (e *Environment) Names() iter.Seq[string] {
	return slices.Values(slices.Sorted(maps.Keys(e.values)))
}

// All returns the bindings of e in name order.
func (e *Environment) All() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		for name := range e.Names() {
			if !yield(name, e.values[name]) {
				return
			}
		}
	}
}

// Map returns a copy of the bindings of e.
func (e *Environment) Map() map[string]Value {
	return maps.Clone(e.values)
}
