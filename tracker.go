package persist

import (
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v3"
)

// TrackerEntry is the version pair kept for one slice.
type TrackerEntry struct {
	Local  uint64
	Stored uint64
}

// Dirty reports whether the in-memory state is newer than the stored record.
func (e TrackerEntry) Dirty() bool {
	return e.Local > e.Stored
}

// Tracker records, per slice, the version of the last in-memory mutation and
// of the last confirmed save. Versions are ticks of one monotonic counter, so
// two events never share a version.
type Tracker struct {
	clock   atomic.Uint64
	entries *xsync.MapOf[string, TrackerEntry]
}

// NewTracker constructs an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{entries: xsync.NewMapOf[string, TrackerEntry]()}
}

// MarkMutated records a mutation of name and returns its version.
func (t *Tracker) MarkMutated(name string) uint64 {
	version := t.clock.Add(1)
	t.entries.Compute(name, func(entry TrackerEntry, _ bool) (TrackerEntry, bool) {
		entry.Local = max(entry.Local, version)
		return entry, false
	})
	return version
}

// MarkPersisted records that the current in-memory state of name is stored.
// A slice that was never mutated gets both versions set to a fresh tick.
func (t *Tracker) MarkPersisted(name string) {
	t.entries.Compute(name, func(entry TrackerEntry, _ bool) (TrackerEntry, bool) {
		if entry.Local == 0 {
			entry.Local = t.clock.Add(1)
		}
		entry.Stored = max(entry.Stored, entry.Local)
		return entry, false
	})
}

// MarkPersistedAt records that the state observed at version is stored.
// Mutations newer than version keep the slice dirty.
func (t *Tracker) MarkPersistedAt(name string, version uint64) {
	if version == 0 {
		t.MarkPersisted(name)
		return
	}
	t.entries.Compute(name, func(entry TrackerEntry, _ bool) (TrackerEntry, bool) {
		if entry.Local == 0 {
			entry.Local = version
		}
		entry.Stored = max(entry.Stored, version)
		return entry, false
	})
}

// ShouldPersist reports whether name changed since its last confirmed save.
func (t *Tracker) ShouldPersist(name string) bool {
	entry, ok := t.entries.Load(name)
	return ok && entry.Dirty()
}

// StoredVersion returns the version of the last confirmed save, or 0.
func (t *Tracker) StoredVersion(name string) uint64 {
	entry, _ := t.entries.Load(name)
	return entry.Stored
}

// LocalVersion returns the version of the last mutation, or 0.
func (t *Tracker) LocalVersion(name string) uint64 {
	entry, _ := t.entries.Load(name)
	return entry.Local
}

// Entry returns the versions tracked for name.
func (t *Tracker) Entry(name string) (TrackerEntry, bool) {
	return t.entries.Load(name)
}

// Reset forgets every slice.
func (t *Tracker) Reset() {
	t.entries.Clear()
}
