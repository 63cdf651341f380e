package holes

import "github.com/google/btree"

const btreeDegree = 16

// BTree tracks free indices in a B-tree whose node free list is sized from
// the expected hole count. It is the default tracker of a packed container
// because its constructor can honor the container's capacity hint.
type BTree struct {
	tree *btree.BTreeG[int]
}

// NewBTree returns an empty B-tree tracker. sizeHint is the expected number
// of simultaneously free indices; it sizes the node free list and may be 0
// when unknown.
func NewBTree(sizeHint int) *BTree {
	free := btree.NewFreeListG[int](nodesFor(sizeHint))
	less := func(a, b int) bool { return a < b }
	return &BTree{tree: btree.NewWithFreeListG(btreeDegree, less, free)}
}

// nodesFor converts an expected index count into a free-list length, keeping
// the library default as the floor.
func nodesFor(sizeHint int) int {
	nodes := sizeHint / (btreeDegree - 1)
	if nodes < btree.DefaultFreeListSize {
		return btree.DefaultFreeListSize
	}
	return nodes
}

func (b *BTree) Insert(index int) {
	b.tree.ReplaceOrInsert(index)
}

func (b *BTree) PopMin() (int, bool) {
	return b.tree.DeleteMin()
}

func (b *BTree) Len() int {
	return b.tree.Len()
}
