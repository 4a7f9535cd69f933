// Package blob defines the persistence port: a small key-value store holding
// whole JSON documents under fixed keys.
package blob

import "context"

// Keys of the two independent persisted documents.
const (
	KeyTransactions = "transactions"
	KeyUserSettings = "userSettings"
)

// Store is the outbound persistence port. Values are opaque bytes; callers
// own the encoding.
type Store interface {
	// Get returns the value for key. ok is false when the key was never set.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)

	// Set replaces the value stored under key.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Clear removes every key.
	Clear(ctx context.Context) error
}
