package packed_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/plus3/pack/packed"
	"github.com/plus3/pack/packed/holes"
)

type task struct {
	name     string
	priority int
}

func trackers() map[string]func(hint int) holes.Tracker {
	return map[string]func(int) holes.Tracker{
		"btree":    func(hint int) holes.Tracker { return holes.NewBTree(hint) },
		"skiplist": func(int) holes.Tracker { return holes.NewSkipList() },
	}
}

// Test basic container operations
func TestInsertAndGet(t *testing.T) {
	data := packed.New[task](8)

	it := data.Insert(task{name: "deploy", priority: 3})
	assert.Equal(t, 1, data.Len())

	got := data.Get(it)
	assert.Equal(t, "deploy", got.name)
	assert.Equal(t, 3, got.priority)
}

func TestGetReturnsPointerForInPlaceMutation(t *testing.T) {

	data := packed.New[task](8)
	it := data.Insert(task{name: "deploy", priority: 3})

	data.Get(it).priority = 9

	// Verify the mutation persisted
	assert.Equal(t, 9, data.Get(it).priority)
}

func TestRemoveReturnsValue(t *testing.T) {
	data := packed.New[string](4)

	it := data.Insert("payload")
	assert.Equal(t, "payload", data.Remove(it))
	assert.True(t, data.IsEmpty())
}

func TestInsertReusesLowestFreeIndexFirst(t *testing.T) {

	data := packed.New[int](8)

	handles := make([]packed.Item[int], 6)
	for i := range 6 {
		handles[i] = data.Insert(i)
		assert.Equal(t, i, handles[i].Index())
	}

	// Free indices out of order; reuse must come back lowest first
	data.Remove(handles[5])
	data.Remove(handles[1])
	data.Remove(handles[3])

	assert.Equal(t, 1, data.Insert(100).Index())
	assert.Equal(t, 3, data.Insert(200).Index())
	assert.Equal(t, 5, data.Insert(300).Index())

	// No holes left, the next insert appends
	assert.Equal(t, 6, data.Insert(400).Index())
}

func TestReusedSlotGetsNewGeneration(t *testing.T) {

	data := packed.New[string](4)

	h0 := data.Insert("A")
	h1 := data.Insert("B")
	h2 := data.Insert("C")
	h3 := data.Insert("D")
	assert.Equal(t, 4, data.Len())

	assert.Equal(t, "B", data.Remove(h1))
	assert.Equal(t, 3, data.Len())

	// The freed slot is reused under a fresh generation
	h4 := data.Insert("E")
	assert.Equal(t, h1.Index(), h4.Index())
	assert.NotEqual(t, h1.Generation(), h4.Generation())
	assert.Equal(t, "E", *data.Get(h4))

	// The old handle is stale
	assert.False(t, data.Contains(h1))
	_, ok := data.Lookup(h1)
	assert.False(t, ok)

	// Neighbors are untouched
	assert.Equal(t, "A", *data.Get(h0))
	assert.Equal(t, "C", *data.Get(h2))
	assert.Equal(t, "D", *data.Get(h3))
}

func TestStaleHandleUsePanics(t *testing.T) {
	data := packed.New[string](4)

	it := data.Insert("gone")
	data.Remove(it)

	assert.PanicsWithError(t, "packed: item (index 0, generation 1) is not stored", func() {
		data.Get(it)
	})
	assert.Panics(t, func() {
		data.Remove(it)
	})
}

func TestStaleHandleProbes(t *testing.T) {
	data := packed.New[string](4)

	it := data.Insert("gone")
	data.Remove(it)

	assert.False(t, data.Contains(it))
	value, ok := data.Lookup(it)
	assert.Nil(t, value)
	assert.False(t, ok)
}

func TestZeroItemIsNeverStored(t *testing.T) {
	data := packed.New[int](4)
	data.Insert(5)

	// Slot 0 is occupied, but the zero handle carries generation 0
	var zero packed.Item[int]
	assert.False(t, data.Contains(zero))
	_, ok := data.Lookup(zero)
	assert.False(t, ok)
	assert.Panics(t, func() {
		data.Get(zero)
	})
}

func TestHandleBeyondStorageIsNotStored(t *testing.T) {
	data := packed.New[int](4)
	data.Insert(1)

	foreign := packed.ItemFromKey[int](uint64(9999)<<32 | 1)
	assert.False(t, data.Contains(foreign))
	assert.Panics(t, func() {
		data.Get(foreign)
	})
}

func TestGenerationsIncreaseMonotonically(t *testing.T) {

	data := packed.New[int](1)

	previous := data.Insert(0)
	assert.Equal(t, uint32(1), previous.Generation())

	for i := 1; i < 10; i++ {
		data.Remove(previous)
		it := data.Insert(i)
		assert.Equal(t, previous.Index(), it.Index())
		assert.Greater(t, it.Generation(), previous.Generation())
		previous = it
	}
}

func TestChurnKeepsSurvivorsIntact(t *testing.T) {

	data := packed.New[int](100)

	handles := make([]packed.Item[int], 100)
	for i := range 100 {
		handles[i] = data.Insert(i * 10)
	}
	assert.Equal(t, 100, data.Len())

	// Mutate everything through the returned pointers
	for _, it := range handles {
		*data.Get(it) += 2
	}

	// Remove the even slots, checking each ejected value
	for i := 0; i < 100; i += 2 {
		assert.Equal(t, i*10+2, data.Remove(handles[i]))
	}
	assert.Equal(t, 50, data.Len())

	// Survivors kept their mutated values
	for i := 1; i < 100; i += 2 {
		assert.Equal(t, i*10+2, *data.Get(handles[i]))
	}
}

func TestCapacityStableThroughChurn(t *testing.T) {

	data := packed.New[int](100)

	handles := make([]packed.Item[int], 100)
	for i := range 100 {
		handles[i] = data.Insert(i)
	}
	capacityAfterFill := data.Capacity()

	for i := 0; i < 100; i += 2 {
		data.Remove(handles[i])
	}
	assert.Equal(t, 50, data.Len())
	assert.Equal(t, capacityAfterFill, data.Capacity())

	// Refill reuses the freed indices in ascending order, no growth
	for i := range 50 {
		it := data.Insert(1000 + i)
		assert.Equal(t, 2*i, it.Index())
	}
	assert.Equal(t, 100, data.Len())
	assert.Equal(t, capacityAfterFill, data.Capacity())
}

func TestLenAndIsEmpty(t *testing.T) {
	data := packed.New[string](4)

	assert.True(t, data.IsEmpty())
	assert.Equal(t, 0, data.Len())

	it := data.Insert("only")
	assert.False(t, data.IsEmpty())
	assert.Equal(t, 1, data.Len())

	data.Remove(it)
	assert.True(t, data.IsEmpty())
	assert.Equal(t, 0, data.Len())
}

func TestZeroCapacityHint(t *testing.T) {
	data := packed.New[string](0)

	it := data.Insert("works")
	assert.Equal(t, "works", *data.Get(it))
	assert.Equal(t, 1, data.Len())
}

func TestClearStalesEveryHandle(t *testing.T) {

	data := packed.New[int](10)

	handles := make([]packed.Item[int], 10)
	for i := range 10 {
		handles[i] = data.Insert(i)
	}
	capacityBefore := data.Capacity()

	data.Clear()
	assert.True(t, data.IsEmpty())
	assert.Equal(t, capacityBefore, data.Capacity())
	for _, it := range handles {
		assert.False(t, data.Contains(it))
	}

	// Cleared slots are reused lowest first with fresh generations
	for i := range 10 {
		it := data.Insert(i)
		assert.Equal(t, i, it.Index())
		assert.Equal(t, handles[i].Generation()+1, it.Generation())
	}
}

func TestGrowReservesCapacityOnly(t *testing.T) {
	data := packed.New[int](0)

	data.Grow(64)
	assert.True(t, data.IsEmpty())
	assert.GreaterOrEqual(t, data.Capacity(), 64)

	capacityAfterGrow := data.Capacity()
	for i := range 64 {
		data.Insert(i)
	}

	// Appends fit in the reservation
	assert.Equal(t, capacityAfterGrow, data.Capacity())
}

func TestAllSkipsHolesInSlotOrder(t *testing.T) {

	data := packed.New[string](5)

	handles := make([]packed.Item[string], 5)
	for i, name := range []string{"a", "b", "c", "d", "e"} {
		handles[i] = data.Insert(name)
	}
	data.Remove(handles[1])
	data.Remove(handles[3])

	var indices []int
	var values []string
	for it, value := range data.All() {
		indices = append(indices, it.Index())
		values = append(values, *value)
	}
	assert.Equal(t, []int{0, 2, 4}, indices)
	assert.Equal(t, []string{"a", "c", "e"}, values)
}

func TestAllYieldsMutablePointers(t *testing.T) {
	data := packed.New[int](4)
	for i := range 4 {
		data.Insert(i)
	}

	for _, value := range data.All() {
		*value *= 10
	}

	var total int
	for value := range data.Values() {
		total += *value
	}
	assert.Equal(t, 60, total)
}

func TestItemKeyRoundTrip(t *testing.T) {
	tests := []struct {
		index      int
		generation uint32
	}{
		{0, 1},
		{1, 1},
		{0, 0xFFFFFFFF},
		{12345, 67890},
		{0xFFFFFFFF, 0xFFFFFFFF},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("index=%d,generation=%d", tt.index, tt.generation), func(t *testing.T) {
			key := uint64(uint32(tt.index))<<32 | uint64(tt.generation)
			it := packed.ItemFromKey[task](key)
			assert.Equal(t, tt.index, it.Index())
			assert.Equal(t, tt.generation, it.Generation())
			assert.Equal(t, key, it.Key())
		})
	}
}

func TestInsertedItemKeyResolves(t *testing.T) {
	data := packed.New[string](4)

	it := data.Insert("keyed")
	rebuilt := packed.ItemFromKey[string](it.Key())
	assert.Equal(t, it, rebuilt)
	assert.Equal(t, "keyed", *data.Get(rebuilt))
}

// Test the container against each hole tracker backend
func TestTrackerBackends(t *testing.T) {
	for name, newTracker := range trackers() {
		t.Run(name, func(t *testing.T) {
			data := packed.NewWithTracker[int](newTracker(64))

			handles := make([]packed.Item[int], 64)
			for i := range 64 {
				handles[i] = data.Insert(i)
			}
			for i := 0; i < 64; i += 2 {
				data.Remove(handles[i])
			}
			assert.Equal(t, 32, data.Len())

			for i := range 32 {
				it := data.Insert(-1)
				assert.Equal(t, 2*i, it.Index())
				assert.NotEqual(t, handles[2*i].Generation(), it.Generation())
			}
			assert.Equal(t, 64, data.Len())

			for i := 1; i < 64; i += 2 {
				assert.Equal(t, i, *data.Get(handles[i]))
			}
		})
	}
}

func TestNewWithTrackerValidation(t *testing.T) {
	assert.Panics(t, func() {
		packed.NewWithTracker[int](nil)
	})

	dirty := holes.NewBTree(0)
	dirty.Insert(1)
	assert.Panics(t, func() {
		packed.NewWithTracker[int](dirty)
	})
}
