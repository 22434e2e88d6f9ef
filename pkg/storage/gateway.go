package storage

import (
	"context"
	"errors"
)

// Gateway reads and writes persisted slices through a Handler.
type Gateway struct {
	handler Handler
}

// NewGateway wraps handler.
func NewGateway(handler Handler) *Gateway {
	return &Gateway{handler: handler}
}

// Handler returns the wrapped backend.
func (g *Gateway) Handler() Handler {
	if g == nil {
		return nil
	}
	return g.handler
}

// Get loads the record for slice. A backend failure is returned as a read
// Error with ok=false; callers treat it the same as a missing record.
func (g *Gateway) Get(ctx context.Context, slice string) (string, bool, error) {
	key := Key(slice)
	if g == nil || g.handler == nil {
		return "", false, wrap(OpRead, slice, key, errors.New("no storage handler"))
	}
	value, ok, err := g.handler.GetItem(ctx, key)
	if err != nil {
		return "", false, wrap(OpRead, slice, key, err)
	}
	return value, ok, nil
}

// Set writes value as the record for slice.
func (g *Gateway) Set(ctx context.Context, slice, value string) error {
	key := Key(slice)
	if g == nil || g.handler == nil {
		return wrap(OpWrite, slice, key, errors.New("no storage handler"))
	}
	return wrap(OpWrite, slice, key, g.handler.SetItem(ctx, key, value))
}

// Remove deletes the record for slice.
func (g *Gateway) Remove(ctx context.Context, slice string) error {
	key := Key(slice)
	if g == nil || g.handler == nil {
		return wrap(OpRemove, slice, key, errors.New("no storage handler"))
	}
	return wrap(OpRemove, slice, key, g.handler.RemoveItem(ctx, key))
}
