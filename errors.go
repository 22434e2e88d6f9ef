package persist

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-persist/pkg/storage"
)

var (
	// ErrStorageNotInstalled is returned when persistence is attempted before a
	// storage handler has been installed.
	ErrStorageNotInstalled = errors.New("persist: storage handler not installed")
	// ErrInvalidRegistration covers malformed reducer registrations.
	ErrInvalidRegistration = errors.New("persist: invalid registration")
	// ErrMatcherUnavailable is returned when a matcher engine is not compiled in.
	ErrMatcherUnavailable = errors.New("persist: matcher engine unavailable")

	// ErrStorageRead matches read failures (StorageReadError).
	ErrStorageRead = storage.ErrRead
	// ErrStorageWrite matches write failures (StorageWriteError).
	ErrStorageWrite = storage.ErrWrite
)

// ConfigurationError reports setup mistakes. It is the only error that is
// surfaced synchronously from constructors.
type ConfigurationError struct {
	Op    string
	Slice string
	Err   error
}

func (e *ConfigurationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Slice == "" {
		return fmt.Sprintf("persist: configuration %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("persist: configuration %s slice=%q: %v", e.Op, e.Slice, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func configurationError(op, slice string, err error) error {
	if err == nil {
		return nil
	}
	var cfgErr *ConfigurationError
	if errors.As(err, &cfgErr) {
		return err
	}
	return &ConfigurationError{Op: op, Slice: slice, Err: err}
}

// MatcherError captures matcher metadata alongside the originating error.
type MatcherError struct {
	Engine string
	Expr   string
	Err    error
}

func (e *MatcherError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("persist: %s matcher %s: %v", e.Engine, describeExpression(e.Expr), e.Err)
}

func (e *MatcherError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func describeExpression(expr string) string {
	if expr == "" {
		return "expr=<empty>"
	}
	return fmt.Sprintf("expr=%q", expr)
}

func wrapMatcherError(engine, expr string, err error) error {
	if err == nil {
		return nil
	}

	var matchErr *MatcherError
	if errors.As(err, &matchErr) {
		if matchErr.Engine == "" {
			matchErr.Engine = engine
		}
		if matchErr.Expr == "" {
			matchErr.Expr = expr
		}
		return matchErr
	}
	if errors.Is(err, ErrMatcherUnavailable) {
		return err
	}

	return &MatcherError{
		Engine: engine,
		Expr:   expr,
		Err:    err,
	}
}
