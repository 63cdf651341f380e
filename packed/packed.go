package packed

import (
	"iter"
	"slices"

	"github.com/plus3/pack/packed/holes"
)

// Data is a dense, growable container of values of type T addressed through
// generation-checked Item handles rather than raw indices.
//
// Insert fills the lowest free slot first, so live values stay packed toward
// the front of storage, and appends only when no slot is free. Storage never
// shrinks; a burst of inserts followed by removals leaves the capacity in
// place for the next burst.
type Data[T any] struct {
	slots []slot[T]
	holes holes.Tracker
}

// New returns an empty container. maxCapacity is a hint for the number of
// simultaneously free slots the default hole tracker should expect; it may
// be 0, and the value storage itself always starts empty and grows on
// demand.
func New[T any](maxCapacity int) *Data[T] {
	return NewWithTracker[T](holes.NewBTree(maxCapacity))
}

// NewWithTracker returns an empty container using the given hole tracker.
// The tracker must be empty and must not be shared with another container.
// NewWithTracker panics if tracker is nil or already holds indices.
func NewWithTracker[T any](tracker holes.Tracker) *Data[T] {
	if tracker == nil {
		panic("packed: hole tracker is nil")
	}
	if tracker.Len() != 0 {
		panic("packed: hole tracker is not empty")
	}
	return &Data[T]{holes: tracker}
}

// Capacity returns the allocated capacity of the value storage. It grows
// when an append outruns it and never shrinks.
func (d *Data[T]) Capacity() int {
	return cap(d.slots)
}

// Len returns the number of values currently stored.
func (d *Data[T]) Len() int {
	return len(d.slots) - d.holes.Len()
}

// IsEmpty reports whether no values are stored.
func (d *Data[T]) IsEmpty() bool {
	return d.Len() == 0
}

// Insert stores value and returns the handle for it. The lowest free slot
// is reused if one exists; otherwise the value is appended to storage.
// Reuse costs O(log h) in the number of holes, an append is amortized O(1).
func (d *Data[T]) Insert(value T) Item[T] {
	if index, ok := d.holes.PopMin(); ok {
		generation := d.slots[index].generation
		d.slots[index] = usedSlot(generation, value)
		return Item[T]{index: index, generation: generation}
	}
	index := len(d.slots)
	d.slots = append(d.slots, usedSlot(initialGeneration, value))
	return Item[T]{index: index, generation: initialGeneration}
}

// Remove deletes the value it points at and returns it. The slot is marked
// free for reuse and its generation is advanced, so it and every other
// handle to the removed value are stale from here on. Costs O(log h) in the
// number of holes.
//
// Remove panics with a *NotStoredError if the item is not stored.
func (d *Data[T]) Remove(it Item[T]) T {
	s := d.lookupSlot(it)
	if s == nil {
		panic(&NotStoredError{Index: it.index, Generation: it.generation})
	}
	value := s.value
	*s = emptySlot[T](nextGeneration(s.generation))
	d.holes.Insert(it.index)
	return value
}

// Get returns a pointer to the value it points at, in O(1). The pointer
// mutates the value in place and stays valid until the container's storage
// next grows or the value is removed.
//
// Get panics with a *NotStoredError if the item is not stored; use Lookup
// for handles of uncertain validity.
func (d *Data[T]) Get(it Item[T]) *T {
	s := d.lookupSlot(it)
	if s == nil {
		panic(&NotStoredError{Index: it.index, Generation: it.generation})
	}
	return &s.value
}

// Lookup is Get for handles that may have gone stale: it returns the value
// pointer and true when it is stored, nil and false otherwise.
func (d *Data[T]) Lookup(it Item[T]) (*T, bool) {
	s := d.lookupSlot(it)
	if s == nil {
		return nil, false
	}
	return &s.value, true
}

// Contains reports whether it currently points at a stored value.
func (d *Data[T]) Contains(it Item[T]) bool {
	return d.lookupSlot(it) != nil
}

// Clear removes every stored value. All previously issued handles go stale,
// and capacity stays allocated for reuse.
func (d *Data[T]) Clear() {
	for index := range d.slots {
		s := &d.slots[index]
		if !s.used {
			continue
		}
		*s = emptySlot[T](nextGeneration(s.generation))
		d.holes.Insert(index)
	}
}

// Grow reserves storage for at least n more appended values without
// changing Len. It panics if n is negative.
func (d *Data[T]) Grow(n int) {
	d.slots = slices.Grow(d.slots, n)
}

// All iterates over the stored values in slot order, yielding each value's
// handle and a pointer to it. The container must not be modified during the
// iteration.
func (d *Data[T]) All() iter.Seq2[Item[T], *T] {
	return func(yield func(Item[T], *T) bool) {
		for index := range d.slots {
			s := &d.slots[index]
			if !s.used {
				continue
			}
			if !yield(Item[T]{index: index, generation: s.generation}, &s.value) {
				return
			}
		}
	}
}

// Values iterates over pointers to the stored values in slot order.
func (d *Data[T]) Values() iter.Seq[*T] {
	return func(yield func(*T) bool) {
		for _, value := range d.All() {
			if !yield(value) {
				return
			}
		}
	}
}

// lookupSlot resolves it to its live slot, or nil when the index is out of
// range, the slot is a hole, or the generations disagree.
func (d *Data[T]) lookupSlot(it Item[T]) *slot[T] {
	if it.index < 0 || it.index >= len(d.slots) {
		return nil
	}
	s := &d.slots[it.index]
	if !s.used || s.generation != it.generation {
		return nil
	}
	return s
}
