// Package cursorcache implements the per-client cursor cache a cursor
// channel uses to avoid re-sending a cursor image the client already holds:
// a bounded, byte-budgeted LRU keyed by cursor ID, with reference-counted
// entries so a cursor still in flight on the wire survives eviction from
// the index until its last reference is released.
package cursorcache

import "sync/atomic"

// Item is one cached cursor: its group (cursors belonging to the same
// surface are invalidated together), its encoded size, and a reference
// count so Cache and any in-flight pipe item can share ownership safely.
type Item struct {
	ID      uint64
	GroupID uint64
	Size    int
	Data    []byte

	refs atomic.Int32
}

// NewItem creates a cursor item with one reference already held by the
// caller, following the create-with-an-implicit-reference convention used
// for callback-released resources.
func NewItem(id, groupID uint64, data []byte) *Item {
	it := &Item{ID: id, GroupID: groupID, Size: len(data), Data: data}
	it.refs.Store(1)
	return it
}

// Ref adds a reference, e.g. while the item is queued as a pipe item
// waiting to be marshalled onto the wire.
func (it *Item) Ref() {
	it.refs.Add(1)
}

// Unref releases a reference and reports whether this was the last one.
func (it *Item) Unref() bool {
	return it.refs.Add(-1) == 0
}
