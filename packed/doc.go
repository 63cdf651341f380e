// Package packed provides a growable container that stores values in
// contiguous slots and hands out stable, generation-checked handles to them.
//
// # Handles
//
// Insert returns an [Item], a handle pairing the value's slot index with the
// generation the slot had at insertion time. Handles stay valid until the
// value is removed, no matter how many other values come and go around it.
// When a slot is freed its generation is advanced, so handles to the old
// occupant are recognized as stale even after the slot is reused.
//
// The zero Item is never valid; generations start at 1.
//
// # Storage and reuse
//
// Values live in a single slice that grows on demand and never shrinks.
// Insert fills the lowest free slot first and appends only when no slot is
// free, which keeps the live values packed toward the front of storage.
// Freed indices are kept in a [holes.Tracker], an ordered set with minimum
// extraction; Insert and Remove therefore cost O(log h) in the number of
// holes, while handle lookups are O(1).
//
// # Failure semantics
//
// Using a stale or foreign handle is a bug in the caller, not a recoverable
// condition, so [Data.Get] and [Data.Remove] panic with a *[NotStoredError]
// describing the handle. Code that holds handles of uncertain validity, such
// as anything accepting them from outside the process, should probe with
// [Data.Lookup] or [Data.Contains] instead of recovering from the panic.
//
// A Data value is not safe for concurrent use without external locking.
package packed
