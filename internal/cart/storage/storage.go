// Package storage provides the durable slot the cart is persisted to.
//
// Every implementation is best-effort: a missing, corrupted, or
// unwritable slot is reported as "no data" / silently skipped, never as
// an error. The ledger assumes adapters cannot fail.
package storage

import "context"

// Store reads and writes one JSON record under one slot.
type Store interface {
	// Load returns the raw persisted record and whether one exists.
	Load(ctx context.Context) ([]byte, bool)
	// Save replaces the persisted record. Failures are swallowed.
	Save(ctx context.Context, record []byte)
	// Available reports whether a durable slot actually backs this store.
	Available() bool
}

// Noop is the adapter for environments without a durable slot.
type Noop struct{}

func NewNoop() Noop { return Noop{} }

func (Noop) Load(context.Context) ([]byte, bool) { return nil, false }

func (Noop) Save(context.Context, []byte) {}

func (Noop) Available() bool { return false }
