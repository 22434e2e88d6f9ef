package storage

import (
	"errors"
	"strings"
	"time"
)

// Config selects and configures a backend.
//
// Driver values:
//   - "memory" (default): in-process map
//   - "file": directory of JSON files at Path
//   - "sqlite": SQLite database file at Path
type Config struct {
	Driver      string
	Path        string
	BusyTimeout time.Duration // sqlite only; 0 means default
}

// Open initializes the configured backend.
func Open(cfg Config) (Backend, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	switch driver {
	case "", "memory":
		return NewMemoryStorage(), nil
	case "file":
		st, err := OpenFileStorage(cfg.Path)
		if err != nil {
			return nil, err
		}
		return st, nil
	case "sqlite", "sqlite3":
		st, err := OpenSQLiteStorage(cfg.Path, cfg.BusyTimeout)
		if err != nil {
			return nil, err
		}
		return st, nil
	default:
		return nil, errors.New("storage: unknown driver " + driver)
	}
}
