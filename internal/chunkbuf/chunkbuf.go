// Package chunkbuf implements a reusable, arena-backed scratch buffer
// indexed by small integer keys (attribute keys in this core), grounded on
// the scoped-resource-release design note (§9 of the design spec):
// "express as a value whose destruction runs cleanup; clients must ensure
// cleanup runs on all paths." Go has no destructors, so cleanup is an
// explicit Release call, conventionally deferred by the caller.
package chunkbuf

// Buffer is a zero-initialized slice of T, grown lazily to accommodate the
// largest key ever accessed, and reused across scopes. It can serve as a
// by-key lookup table for a single object's direct children without
// allocating a fresh map on every AST node visit. The matcher package
// does not use it: object matching merge-joins sorted children instead.
type Buffer[T any] struct {
	slots    []T
	occupied []bool
	set      []int // keys occupied in set order, for scoped clearing
}

func New[T any]() *Buffer[T] {
	return &Buffer[T]{}
}

// grow ensures the buffer can address index key, zero-filling any new
// slots.
func (b *Buffer[T]) grow(key int) {
	if key < len(b.slots) {
		return
	}
	next := make([]T, key+1)
	copy(next, b.slots)
	b.slots = next
	nextOcc := make([]bool, key+1)
	copy(nextOcc, b.occupied)
	b.occupied = nextOcc
}

// Set records value at key and remembers the key for the current scope so
// a matching Release call can clear exactly the slots this scope touched.
func (b *Buffer[T]) Set(key int, value T) {
	b.grow(key)
	b.slots[key] = value
	b.occupied[key] = true
	b.set = append(b.set, key)
}

// Get returns the value at key and whether it was ever Set (without an
// intervening Release) in the current scope.
func (b *Buffer[T]) Get(key int) (T, bool) {
	var zero T
	if key < 0 || key >= len(b.slots) || !b.occupied[key] {
		return zero, false
	}
	return b.slots[key], true
}

// Scope begins a new clearing scope and returns a release function that
// zeroes only the slots Set since Scope was called. Intended usage:
//
//	release := buf.Scope()
//	defer release()
func (b *Buffer[T]) Scope() func() {
	mark := len(b.set)
	return func() {
		var zero T
		for _, k := range b.set[mark:] {
			if k < len(b.slots) {
				b.slots[k] = zero
				b.occupied[k] = false
			}
		}
		b.set = b.set[:mark]
	}
}
