package cart

import (
	"context"
	"encoding/json"
)

// Snapshot is the durable form of a cart: lines plus the associated
// identity. Transient UI state (last-added line, panel flag) is not
// persisted.
type Snapshot struct {
	Identity string `json:"identity,omitempty"`
	Lines    []Line `json:"lines"`
}

// Store persists cart snapshots keyed by session id. Implementations live in
// internal/repos (sqlite, redis).
type Store interface {
	Load(ctx context.Context, key string) (Snapshot, bool, error)
	Save(ctx context.Context, key string, s Snapshot) error
	Delete(ctx context.Context, key string) error
}

// Snapshot captures the persistable state of the cart.
func (c *Cart) Snapshot() Snapshot {
	return Snapshot{Identity: c.identity, Lines: c.Lines()}
}

// FromSnapshot rebuilds a cart from a previously captured snapshot. Lines
// that could not have been produced by Add (missing product id, qty < 1)
// are dropped rather than trusted, and lines sharing one identity key are
// merged so the restored cart never holds duplicates.
func FromSnapshot(s Snapshot) *Cart {
	c := New()
	c.identity = s.Identity
	for _, l := range s.Lines {
		if l.Product.ID == "" || l.Qty < 1 {
			continue
		}
		if idx := c.find(l.Product.ID, l.variantID()); idx >= 0 {
			c.lines[idx].Qty += l.Qty
			continue
		}
		c.lines = append(c.lines, cloneLine(l))
	}
	return c
}

// EncodeSnapshot serializes a snapshot for storage.
func EncodeSnapshot(s Snapshot) ([]byte, error) {
	return json.Marshal(s)
}

// DecodeSnapshot parses a stored snapshot. Corrupted data yields an empty
// snapshot instead of an error: a broken persisted cart must not take the
// session down, the shopper just starts over.
func DecodeSnapshot(b []byte) Snapshot {
	var s Snapshot
	if err := json.Unmarshal(b, &s); err != nil {
		return Snapshot{}
	}
	return s
}
