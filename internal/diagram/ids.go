package diagram

// IDAllocator hands out entity ids. Each Diagram owns exactly one; it is
// created with a fresh diagram and only ever advances — loading a saved
// document preserves the stored ids and moves the allocator past the
// largest one, so ids are never reused.
type IDAllocator struct {
	next int64
}

// NewIDAllocator returns an allocator whose first id is 1.
func NewIDAllocator() *IDAllocator {
	return &IDAllocator{next: 1}
}

// Next returns a fresh id.
func (a *IDAllocator) Next() int64 {
	id := a.next
	a.next++
	return id
}

// Advance ensures future ids are strictly greater than id. Called for every
// explicitly supplied id so restores and loads cannot collide with later
// allocations.
func (a *IDAllocator) Advance(id int64) {
	if id >= a.next {
		a.next = id + 1
	}
}
