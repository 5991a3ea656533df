package kernel

import (
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Registry is the kernel-owned set of every live task descriptor — the
// "ready list" in the data model's sense of "registry of all live tasks,
// not only the Ready ones". Insertion order is preserved for the
// scheduler's "oldest at that priority" tie-break.
type Registry struct {
	order List[*Task]
	byID  map[Handle]*Task
	next  Handle
}

// NewRegistry constructs an empty task registry.
func NewRegistry() *Registry {
	return &Registry{byID: make(map[Handle]*Task)}
}

// Insert assigns the next handle to t, links it at the tail of the
// registry, and returns the assigned handle.
func (r *Registry) Insert(t *Task) Handle {
	r.next++
	t.handle = r.next
	t.node = NewNode(t)
	r.order.PushBack(t.node)
	r.byID[t.handle] = t
	return t.handle
}

// Remove unlinks t from the registry. A no-op if t is not present.
func (r *Registry) Remove(t *Task) {
	if t.node != nil {
		r.order.Remove(t.node)
		t.node = nil
	}
	delete(r.byID, t.handle)
}

// Lookup resolves a handle to its task descriptor.
func (r *Registry) Lookup(h Handle) (*Task, bool) {
	t, ok := r.byID[h]
	return t, ok
}

// Tasks returns every live task in registry (insertion) order.
func (r *Registry) Tasks() []*Task { return r.order.Slice() }

// Names returns every live task's name, sorted for stable reporting.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.byID))
	for _, t := range maps.Values(r.byID) {
		names = append(names, t.Name())
	}
	slices.Sort(names)
	return names
}
