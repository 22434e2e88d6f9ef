package activity

import (
	"strings"
	"time"
)

// Verbs emitted for persisted slices.
const (
	VerbSlicePersisted     = "slice.persisted"
	VerbSlicePersistFailed = "slice.persist_failed"
	VerbSliceHydrated      = "slice.hydrated"
	VerbSliceCleared       = "slice.cleared"

	ObjectTypeSlice = "slice"
)

// SliceEventInput describes the fields shared by slice lifecycle events.
type SliceEventInput struct {
	Slice      string
	Key        string
	StoreID    string
	Version    uint64
	Bytes      int
	Found      bool
	Err        error
	ActorID    string
	TenantID   string
	Channel    string
	Metadata   map[string]any
	OccurredAt time.Time
}

// BuildSlicePersistedEvent reports a confirmed write.
func BuildSlicePersistedEvent(input SliceEventInput) Event {
	event := buildSliceEvent(VerbSlicePersisted, input)
	event.Metadata["version"] = input.Version
	event.Metadata["bytes"] = input.Bytes
	return event
}

// BuildSlicePersistFailedEvent reports a rejected write; the slice stays dirty.
func BuildSlicePersistFailedEvent(input SliceEventInput) Event {
	event := buildSliceEvent(VerbSlicePersistFailed, input)
	event.Metadata["version"] = input.Version
	return event
}

// BuildSliceHydratedEvent reports the outcome of rehydrating a slice.
func BuildSliceHydratedEvent(input SliceEventInput) Event {
	event := buildSliceEvent(VerbSliceHydrated, input)
	event.Metadata["found"] = input.Found
	if input.Found {
		event.Metadata["bytes"] = input.Bytes
	}
	return event
}

// BuildSliceClearedEvent reports removal of a stored record.
func BuildSliceClearedEvent(input SliceEventInput) Event {
	return buildSliceEvent(VerbSliceCleared, input)
}

func buildSliceEvent(verb string, input SliceEventInput) Event {
	metadata := cloneMap(input.Metadata)
	if metadata == nil {
		metadata = map[string]any{}
	}
	if key := strings.TrimSpace(input.Key); key != "" {
		metadata["key"] = key
	}
	if id := strings.TrimSpace(input.StoreID); id != "" {
		metadata["store_id"] = id
	}
	if input.Err != nil {
		metadata["error"] = input.Err.Error()
	}

	return Event{
		Verb:       verb,
		ActorID:    strings.TrimSpace(input.ActorID),
		TenantID:   strings.TrimSpace(input.TenantID),
		ObjectType: ObjectTypeSlice,
		ObjectID:   strings.TrimSpace(input.Slice),
		Channel:    strings.TrimSpace(input.Channel),
		Metadata:   metadata,
		OccurredAt: input.OccurredAt,
	}
}
