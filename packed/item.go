package packed

// Item is a handle to one value in a Data container. It records the slot
// index the value occupies and the generation the slot had when the value
// was inserted; a mismatch on either marks the handle stale.
//
// The type parameter ties a handle to the element type of its container, so
// a handle into a Data[Order] cannot be presented to a Data[Invoice].
type Item[T any] struct {
	index      int
	generation uint32
}

// Index returns the slot index the item points at.
func (it Item[T]) Index() int {
	return it.index
}

// Generation returns the slot generation the item was issued with.
func (it Item[T]) Generation() uint32 {
	return it.generation
}

// Key packs the item into one integer, index in the upper 32 bits and
// generation in the lower 32. Keys make compact map keys and survive being
// handed outside the process.
//
// The packing is defined for indices below 2^32; a larger index is
// truncated and its key does not round-trip.
func (it Item[T]) Key() uint64 {
	return uint64(uint32(it.index))<<32 | uint64(it.generation)
}

// ItemFromKey rebuilds the item a Key was packed from, inverting the
// packing for indices below 2^32.
func ItemFromKey[T any](key uint64) Item[T] {
	return Item[T]{index: int(key >> 32), generation: uint32(key)}
}
