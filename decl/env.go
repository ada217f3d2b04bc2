package decl

import (
	"fmt"
	"maps"
	"slices"
)

// Env[T] holds the values for identifiers, with an optional read-only outer layer.
// Lookups fall through to the outer environment, writes always land in the
// innermost one.
type Env[T any] struct {
	store map[string]T
	outer *Env[T]
}

// NewEnv[T] creates a new environment nested within an outer one.
// If outer is nil then returns a fresh top-level environment.
func NewEnv[T any](outer *Env[T]) *Env[T] {
	return &Env[T]{store: make(map[string]T), outer: outer}
}

// Get retrieves a value by name. It checks the current environment first,
// then recursively checks outer environments.
func (e *Env[T]) Get(name string) (out T, found bool) {
	if e == nil {
		return
	}
	if out, found = e.store[name]; found {
		return
	}
	return e.outer.Get(name)
}

// Set creates or replaces the value in this layer.
func (e *Env[T]) Set(key string, value T) {
	e.store[key] = value
}

// Set multiple key/values at once.
func (e *Env[T]) SetMany(kvpairs map[string]T) {
	for k, v := range kvpairs {
		e.Set(k, v)
	}
}

// Push returns a new environment layered over this one.
func (e *Env[T]) Push() *Env[T] {
	return NewEnv(e)
}

// Keys returns all keys in this environment (not including outer environments)
func (e *Env[T]) Keys() []string {
	keys := make([]string, 0, len(e.store))
	for k := range e.store {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// All returns all key-value pairs in this environment (not including outer environments)
func (e *Env[T]) All() map[string]T {
	return maps.Clone(e.store)
}

// Flatten returns every visible binding, inner layers shadowing outer ones.
func (e *Env[T]) Flatten() map[string]T {
	if e == nil {
		return map[string]T{}
	}
	out := e.outer.Flatten()
	maps.Copy(out, e.store)
	return out
}

// String representation for debugging
func (e *Env[T]) String() string {
	return fmt.Sprintf("Env{store: %v, outer: %v}", e.Keys(), e.outer != nil)
}
