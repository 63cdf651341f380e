package packed

import "fmt"

// NotStoredError is the panic value raised for every invalid handle use: the
// handle's generation no longer matches its slot, the slot is currently a
// hole, or the index was never allocated. It indicates a use-after-remove or
// cross-container bug in the caller.
type NotStoredError struct {
	Index      int
	Generation uint32
}

func (e *NotStoredError) Error() string {
	return fmt.Sprintf("packed: item (index %d, generation %d) is not stored", e.Index, e.Generation)
}
