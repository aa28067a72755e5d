package session

import (
	"context"
	"errors"
)

// Sentinel errors for store operations.
var (
	ErrKeyNotFound = errors.New("key not found")
	ErrLoadFailed  = errors.New("load failed")
	ErrSaveFailed  = errors.New("save failed")
)

// Entry is one record of the side channel.
type Entry struct {
	Key   string
	Value []byte
}

// Store is the process-local key-value side channel the signed-in identity
// survives restarts in.
type Store interface {
	// Load returns ErrKeyNotFound (wrapped) when any key is missing.
	Load(ctx context.Context, keys ...string) ([]Entry, error)
	Save(ctx context.Context, entries ...Entry) error
	// Delete ignores missing keys.
	Delete(ctx context.Context, keys ...string) error
}
