// Package vmsink counts slice lifecycle events in a VictoriaMetrics set.
package vmsink

import (
	"context"
	"fmt"
	"io"

	"github.com/VictoriaMetrics/metrics"

	"github.com/goliatone/go-persist/pkg/activity"
)

// Hook increments per-verb, per-slice counters. It is safe for concurrent use.
type Hook struct {
	set    *metrics.Set
	prefix string
}

// New returns a hook writing into set. A nil set gets a private one; prefix
// is prepended to metric names when set.
func New(set *metrics.Set, prefix string) *Hook {
	if set == nil {
		set = metrics.NewSet()
	}
	if prefix != "" {
		prefix += "_"
	}
	return &Hook{set: set, prefix: prefix}
}

// Notify implements activity.ActivityHook.
func (h *Hook) Notify(_ context.Context, event activity.Event) error {
	if event.Verb == "" || event.ObjectID == "" {
		return nil
	}
	h.set.GetOrCreateCounter(fmt.Sprintf(`%sslice_events_total{verb=%q,slice=%q}`, h.prefix, event.Verb, event.ObjectID)).Inc()

	if event.Verb != activity.VerbSlicePersisted {
		return nil
	}
	if bytes, ok := event.Metadata["bytes"].(int); ok && bytes > 0 {
		h.set.GetOrCreateCounter(fmt.Sprintf(`%sslice_persisted_bytes_total{slice=%q}`, h.prefix, event.ObjectID)).Add(bytes)
	}
	return nil
}

// WritePrometheus writes the counters in Prometheus text format.
func (h *Hook) WritePrometheus(w io.Writer) {
	h.set.WritePrometheus(w)
}
