// Package holes tracks the free slot indices of a packed container as an
// ordered integer set with minimum extraction.
//
// The container reuses the lowest free index first, so the whole contract is:
// Insert a freed index, PopMin the smallest one back out, and report how many
// are waiting. Implementations must provide expected O(log n) Insert and
// PopMin in the number of tracked indices. Two backends are provided, a
// B-tree (the container's default, able to pre-allocate from a capacity
// hint) and a probabilistic skip list; both satisfy the container equally.
package holes

// Tracker is an ordered set of free slot indices.
//
// A tracker is single-owner like the container that feeds it. Indices are
// expected to be unique; inserting an index that is already tracked is a
// caller bug and collapses to a no-op in both provided backends.
type Tracker interface {
	// Insert adds a freed index to the set.
	Insert(index int)

	// PopMin removes and returns the smallest tracked index.
	// The second return is false when the set is empty.
	PopMin() (int, bool)

	// Len returns the number of tracked indices.
	Len() int
}
