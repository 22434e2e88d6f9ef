// Package storage is the key-value boundary persisted slices are written to.
//
// A Handler is any backend offering GetItem, SetItem and RemoveItem over
// string keys and values. The Gateway namespaces keys per slice and maps
// backend failures onto the read, write and remove error kinds. Three
// backends ship with the package:
//   - "memory": process-local map, useful for tests
//   - "file": one JSON file per key, written atomically
//   - "sqlite": a single-table SQLite database (modernc.org/sqlite)
package storage
