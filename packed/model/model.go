// Package model provides a deliberately simple, in-memory model of a packed
// container's publicly observable behavior.
//
// The model is intentionally easy to audit: it favors clarity over
// performance, scanning storage linearly where the real container keeps an
// ordered hole set. Differential tests drive it in lockstep with the real
// container and compare every observation.
package model

import "math"

// Entry is one live value together with the slot coordinates a handle to it
// would carry.
type Entry[T any] struct {
	Index      int
	Generation uint32
	Value      T
}

type slotState[T any] struct {
	generation uint32
	used       bool
	value      T
}

// Model mirrors the observable state of one container.
type Model[T any] struct {
	slots []slotState[T]
}

// New returns an empty model.
func New[T any]() *Model[T] {
	return &Model[T]{}
}

// Insert stores value in the lowest free slot, appending when no slot is
// free, and returns the coordinates the real container would issue.
func (m *Model[T]) Insert(value T) (index int, generation uint32) {
	for i := range m.slots {
		if !m.slots[i].used {
			m.slots[i].used = true
			m.slots[i].value = value
			return i, m.slots[i].generation
		}
	}
	m.slots = append(m.slots, slotState[T]{generation: 1, used: true, value: value})
	return len(m.slots) - 1, 1
}

// Remove frees the slot when the coordinates name a live value and returns
// the value it held.
func (m *Model[T]) Remove(index int, generation uint32) (T, bool) {
	var zero T
	if !m.Contains(index, generation) {
		return zero, false
	}
	value := m.slots[index].value
	m.slots[index] = slotState[T]{generation: bump(generation)}
	return value, true
}

// Get returns a copy of the value at the coordinates.
func (m *Model[T]) Get(index int, generation uint32) (T, bool) {
	if !m.Contains(index, generation) {
		var zero T
		return zero, false
	}
	return m.slots[index].value, true
}

// Update overwrites the value at the coordinates.
func (m *Model[T]) Update(index int, generation uint32, value T) bool {
	if !m.Contains(index, generation) {
		return false
	}
	m.slots[index].value = value
	return true
}

// Contains reports whether the coordinates name a live value.
func (m *Model[T]) Contains(index int, generation uint32) bool {
	if index < 0 || index >= len(m.slots) {
		return false
	}
	return m.slots[index].used && m.slots[index].generation == generation
}

// Len returns the number of live values.
func (m *Model[T]) Len() int {
	count := 0
	for _, s := range m.slots {
		if s.used {
			count++
		}
	}
	return count
}

// Clear frees every live slot.
func (m *Model[T]) Clear() {
	for i := range m.slots {
		if m.slots[i].used {
			m.slots[i] = slotState[T]{generation: bump(m.slots[i].generation)}
		}
	}
}

// Live returns the live entries in slot order.
func (m *Model[T]) Live() []Entry[T] {
	entries := make([]Entry[T], 0, m.Len())
	for i, s := range m.slots {
		if s.used {
			entries = append(entries, Entry[T]{Index: i, Generation: s.generation, Value: s.value})
		}
	}
	return entries
}

func bump(generation uint32) uint32 {
	if generation == math.MaxUint32 {
		return 1
	}
	return generation + 1
}
