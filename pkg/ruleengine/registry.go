package ruleengine

import (
	"fmt"
	"sync"
)

// ComparableDecoder reconstructs a Comparable value of a registered
// type from its canonical encoding (the bytes produced by that
// value's Encode method).
type ComparableDecoder func(data []byte) (Comparable, error)

// EquatableDecoder reconstructs an Equatable value of a registered
// type from its canonical encoding.
type EquatableDecoder func(data []byte) (Equatable, error)

// Registry holds the host's extension-type decoders, keyed by
// TypeName, so the serializer can reconstruct Comparable/Equatable
// answers from their tagged-union wire form.
//
// A Registry is the one piece of state this engine would otherwise
// need as a package-level global (spec.md §9 "Global mutable state").
// Rather than a true global, a Registry is an explicit value
// constructed once by the host and passed to the decoders
// (DecodeRuleJSON, DecodePredicateJSON and their YAML twins), so
// tests can register and deregister types without one test's
// extension types leaking into another's.
//
// Safe for concurrent registration and lookup.
type Registry struct {
	mu         sync.RWMutex
	comparable map[string]ComparableDecoder
	equatable  map[string]EquatableDecoder
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		comparable: make(map[string]ComparableDecoder),
		equatable:  make(map[string]EquatableDecoder),
	}
}

// RegisterComparable associates name with dec, overwriting any
// previous registration of the same name.
func (r *Registry) RegisterComparable(name string, dec ComparableDecoder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.comparable[name] = dec
}

// RegisterEquatable associates name with dec, overwriting any
// previous registration of the same name.
func (r *Registry) RegisterEquatable(name string, dec EquatableDecoder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.equatable[name] = dec
}

// DeregisterComparable removes name's Comparable decoder, if any.
func (r *Registry) DeregisterComparable(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.comparable, name)
}

// DeregisterEquatable removes name's Equatable decoder, if any.
func (r *Registry) DeregisterEquatable(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.equatable, name)
}

// DecodeComparable reconstructs a Comparable value of the named type
// from data.
func (r *Registry) DecodeComparable(name string, data []byte) (Comparable, error) {
	r.mu.RLock()
	dec, ok := r.comparable[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("ruleengine: no comparable type registered under %q", name)
	}
	return dec(data)
}

// DecodeEquatable reconstructs an Equatable value of the named type
// from data.
func (r *Registry) DecodeEquatable(name string, data []byte) (Equatable, error) {
	r.mu.RLock()
	dec, ok := r.equatable[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("ruleengine: no equatable type registered under %q", name)
	}
	return dec(data)
}
