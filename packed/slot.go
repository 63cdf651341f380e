package packed

import "math"

// initialGeneration is the generation issued to a slot's first occupant.
// Starting at 1 keeps the zero Item permanently invalid.
const initialGeneration uint32 = 1

// slot is one cell of backing storage, either a live value or a hole. While
// the slot is a hole, generation already holds the value its next occupant
// will be issued with; Remove advances it at free time, not Insert at reuse
// time.
type slot[T any] struct {
	generation uint32
	used       bool
	value      T
}

func usedSlot[T any](generation uint32, value T) slot[T] {
	return slot[T]{generation: generation, used: true, value: value}
}

func emptySlot[T any](generation uint32) slot[T] {
	return slot[T]{generation: generation}
}

// nextGeneration advances a generation, wrapping to the lowest valid value
// instead of 0. A handle kept across a full 2^32-1 reuse cycle of its slot
// would collide; that is accepted.
func nextGeneration(g uint32) uint32 {
	if g == math.MaxUint32 {
		return initialGeneration
	}
	return g + 1
}
