package holes

import "github.com/huandu/skiplist"

// SkipList tracks free indices in a probabilistic skip list. It needs no
// pre-sizing and therefore takes no capacity hint.
type SkipList struct {
	list *skiplist.SkipList
}

// NewSkipList returns an empty skip list tracker.
func NewSkipList() *SkipList {
	return &SkipList{list: skiplist.New(skiplist.Int)}
}

// Insert adds a freed index. Re-inserting a tracked index is a no-op.
func (s *SkipList) Insert(index int) {
	// The index is stored as both key and value.
	s.list.Set(index, index)
}

// PopMin removes and returns the smallest tracked index.
func (s *SkipList) PopMin() (int, bool) {
	front := s.list.Front()
	if front == nil {
		return 0, false
	}
	index := front.Value.(int)
	s.list.Remove(index)
	return index, true
}

// Len returns the number of tracked indices.
func (s *SkipList) Len() int {
	return s.list.Len()
}
