package packed_test

import (
	"fmt"

	"github.com/plus3/pack/packed"
	"github.com/plus3/pack/packed/holes"
)

// ExampleData demonstrates the basic API for storing values and addressing
// them through handles. A handle stays valid until its value is removed, no
// matter how much the container grows or churns around it.
func ExampleData() {
	queue := packed.New[string](8)

	build := queue.Insert("build")
	test := queue.Insert("test")
	deploy := queue.Insert("deploy")

	fmt.Printf("stored %d jobs\n", queue.Len())
	fmt.Printf("first job: %s\n", *queue.Get(build))

	*queue.Get(test) = "test (flaky)"
	fmt.Printf("renamed job: %s\n", *queue.Get(test))

	done := queue.Remove(deploy)
	fmt.Printf("finished job: %s, %d left\n", done, queue.Len())

	// Output:
	// stored 3 jobs
	// first job: build
	// renamed job: test (flaky)
	// finished job: deploy, 2 left
}

// ExampleData_reuse shows how a freed slot is handed to the next insert
// while handles to the previous occupant are recognized as stale.
func ExampleData_reuse() {
	data := packed.New[string](4)

	alpha := data.Insert("alpha")
	beta := data.Insert("beta")

	data.Remove(alpha)
	gamma := data.Insert("gamma")

	fmt.Printf("gamma reused slot %d\n", gamma.Index())
	fmt.Printf("old handle still valid: %v\n", data.Contains(alpha))
	fmt.Printf("beta untouched: %s\n", *data.Get(beta))

	// Output:
	// gamma reused slot 0
	// old handle still valid: false
	// beta untouched: beta
}

// ExampleData_All iterates the live values in slot order, skipping holes.
func ExampleData_All() {
	data := packed.New[int](4)

	handles := make([]packed.Item[int], 4)
	for i := range 4 {
		handles[i] = data.Insert(i + 1)
	}
	data.Remove(handles[1])

	for it, value := range data.All() {
		fmt.Printf("slot %d holds %d\n", it.Index(), *value)
	}

	// Output:
	// slot 0 holds 1
	// slot 2 holds 3
	// slot 3 holds 4
}

// ExampleData_Lookup probes a handle of uncertain validity without risking
// the panic Get raises for stale handles.
func ExampleData_Lookup() {
	data := packed.New[int](2)

	it := data.Insert(42)
	data.Remove(it)

	if _, ok := data.Lookup(it); !ok {
		fmt.Println("handle went stale")
	}

	// Output:
	// handle went stale
}

// ExampleNewWithTracker swaps the default B-tree hole tracker for the skip
// list backend.
func ExampleNewWithTracker() {
	data := packed.NewWithTracker[string](holes.NewSkipList())

	it := data.Insert("tracked")
	fmt.Println(*data.Get(it))
	fmt.Println(data.Len())

	// Output:
	// tracked
	// 1
}

// ExampleItem_Key round-trips a handle through its packed integer form, the
// shape used for map keys and for handing handles outside the process.
func ExampleItem_Key() {
	data := packed.New[string](2)

	it := data.Insert("persisted")
	key := it.Key()

	restored := packed.ItemFromKey[string](key)
	fmt.Println(*data.Get(restored))

	// Output:
	// persisted
}
