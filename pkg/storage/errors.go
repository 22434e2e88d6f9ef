package storage

import (
	"errors"
	"fmt"
)

// Op identifies the storage operation that failed.
type Op string

const (
	OpRead   Op = "read"
	OpWrite  Op = "write"
	OpRemove Op = "remove"
)

// Sentinels matched by Error.Is according to the failing operation.
var (
	ErrRead   = errors.New("storage: read failed")
	ErrWrite  = errors.New("storage: write failed")
	ErrRemove = errors.New("storage: remove failed")
)

// Error wraps a backend failure with the slice and key involved.
type Error struct {
	Op    Op
	Slice string
	Key   string
	Err   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("storage: %s slice=%q key=%q: %v", e.Op, e.Slice, e.Key, e.Err)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches the sentinel for the error's operation.
func (e *Error) Is(target error) bool {
	if e == nil {
		return false
	}
	switch target {
	case ErrRead:
		return e.Op == OpRead
	case ErrWrite:
		return e.Op == OpWrite
	case ErrRemove:
		return e.Op == OpRemove
	}
	return false
}

// IsReadError reports whether err is a StorageReadError.
func IsReadError(err error) bool {
	return errors.Is(err, ErrRead)
}

// IsWriteError reports whether err is a StorageWriteError.
func IsWriteError(err error) bool {
	return errors.Is(err, ErrWrite)
}

func wrap(op Op, slice, key string, err error) error {
	if err == nil {
		return nil
	}
	var storageErr *Error
	if errors.As(err, &storageErr) && storageErr.Op == op {
		return err
	}
	return &Error{Op: op, Slice: slice, Key: key, Err: err}
}
