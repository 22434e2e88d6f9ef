// Package promsink counts slice lifecycle events in Prometheus.
package promsink

import (
	"context"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/goliatone/go-persist/pkg/activity"
)

// Hook increments persist_slice_events_total{verb,slice} per event and
// tracks the last persisted version and record size per slice.
type Hook struct {
	events  *prometheus.CounterVec
	version *prometheus.GaugeVec
	bytes   *prometheus.GaugeVec
}

// New registers the collectors on reg under namespace (default "persist").
func New(reg prometheus.Registerer, namespace string) (*Hook, error) {
	if strings.TrimSpace(namespace) == "" {
		namespace = "persist"
	}
	h := &Hook{
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "slice_events_total",
			Help:      "Persisted slice lifecycle events by verb.",
		}, []string{"verb", "slice"}),
		version: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "slice_persisted_version",
			Help:      "Tracker version of the last confirmed write.",
		}, []string{"slice"}),
		bytes: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "slice_record_bytes",
			Help:      "Size of the last written or hydrated record.",
		}, []string{"slice"}),
	}
	if reg != nil {
		for _, c := range []prometheus.Collector{h.events, h.version, h.bytes} {
			if err := reg.Register(c); err != nil {
				return nil, err
			}
		}
	}
	return h, nil
}

// Notify implements activity.ActivityHook.
func (h *Hook) Notify(_ context.Context, event activity.Event) error {
	if h == nil {
		return nil
	}
	event = activity.NormalizeEvent(event)
	if event.Verb == "" || event.ObjectID == "" {
		return nil
	}
	h.events.WithLabelValues(event.Verb, event.ObjectID).Inc()

	if v, ok := event.Metadata["version"].(uint64); ok && event.Verb == activity.VerbSlicePersisted {
		h.version.WithLabelValues(event.ObjectID).Set(float64(v))
	}
	if n, ok := event.Metadata["bytes"].(int); ok {
		h.bytes.WithLabelValues(event.ObjectID).Set(float64(n))
	}
	return nil
}
