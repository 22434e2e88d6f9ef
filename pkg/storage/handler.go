package storage

import (
	"context"
	"errors"
)

// KeyPrefix namespaces every persisted record.
const KeyPrefix = "persisted-storage-"

// Key returns the storage key for slice.
func Key(slice string) string {
	return KeyPrefix + slice
}

// Handler is the contract a storage backend must satisfy. GetItem reports
// ok=false for missing keys; RemoveItem on a missing key is not an error.
type Handler interface {
	GetItem(ctx context.Context, key string) (value string, ok bool, err error)
	SetItem(ctx context.Context, key, value string) error
	RemoveItem(ctx context.Context, key string) error
}

// Lister is implemented by backends that can enumerate their keys.
type Lister interface {
	Keys(ctx context.Context) ([]string, error)
}

// Backend is a Handler owning resources that must be released.
type Backend interface {
	Handler
	Close() error
}

// HandlerFuncs adapts three functions into a Handler. Missing functions make
// the corresponding call fail with ErrUnsupported.
type HandlerFuncs struct {
	Get    func(ctx context.Context, key string) (string, bool, error)
	Set    func(ctx context.Context, key, value string) error
	Remove func(ctx context.Context, key string) error
}

// ErrUnsupported is returned by HandlerFuncs for unset functions.
var ErrUnsupported = errors.New("storage: operation not supported")

// GetItem implements Handler.
func (h HandlerFuncs) GetItem(ctx context.Context, key string) (string, bool, error) {
	if h.Get == nil {
		return "", false, ErrUnsupported
	}
	return h.Get(ctx, key)
}

// SetItem implements Handler.
func (h HandlerFuncs) SetItem(ctx context.Context, key, value string) error {
	if h.Set == nil {
		return ErrUnsupported
	}
	return h.Set(ctx, key, value)
}

// RemoveItem implements Handler.
func (h HandlerFuncs) RemoveItem(ctx context.Context, key string) error {
	if h.Remove == nil {
		return ErrUnsupported
	}
	return h.Remove(ctx, key)
}
