package filelock

import (
	"sort"
	"sync"
)

// Registry interns one mutual-exclusion gate per lock key.
// Equal keys always map to the same gate for the registry's lifetime.
type Registry struct {
	mu    sync.Mutex
	gates map[string]*sync.Mutex // key -> gate
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		gates: make(map[string]*sync.Mutex),
	}
}

// Lock blocks until the gate for key is free and returns the function that
// frees it again. The returned function must be called exactly once.
func (r *Registry) Lock(key string) (unlock func()) {
	gate := r.gate(key)
	gate.Lock()
	return gate.Unlock
}

// TryLock acquires the gate for key only if it is free right now.
// The returned unlock is nil when ok is false.
func (r *Registry) TryLock(key string) (unlock func(), ok bool) {
	gate := r.gate(key)
	if !gate.TryLock() {
		return nil, false
	}
	return gate.Unlock, true
}

// gate returns the interned gate for key, creating it on first use.
func (r *Registry) gate(key string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()

	g, ok := r.gates[key]
	if !ok {
		g = &sync.Mutex{}
		r.gates[key] = g
	}
	return g
}

// Len returns the number of interned gates.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.gates)
}

// Keys returns every interned key.
// The returned slice is sorted alphabetically for deterministic output.
func (r *Registry) Keys() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	keys := make([]string, 0, len(r.gates))
	for k := range r.gates {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
