package usersink_test

import (
	"context"
	"testing"
	"time"

	"github.com/goliatone/go-persist/pkg/activity"
	"github.com/goliatone/go-persist/pkg/activity/usersink"
	usertypes "github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"
)

type recordingSink struct {
	records []usertypes.ActivityRecord
	err     error
}

func (s *recordingSink) Log(_ context.Context, record usertypes.ActivityRecord) error {
	s.records = append(s.records, record)
	return s.err
}

func TestHookNotifyMapsEvent(t *testing.T) {
	sink := &recordingSink{}
	hook := usersink.Hook{Sink: sink}

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	actorID := uuid.New()
	tenantID := uuid.New()

	event := activity.BuildSlicePersistedEvent(activity.SliceEventInput{
		Slice:      "test-counter",
		Key:        "persisted-storage-test-counter",
		Version:    4,
		Bytes:      13,
		ActorID:    actorID.String(),
		TenantID:   tenantID.String(),
		Channel:    "persist",
		OccurredAt: now,
	})

	if err := hook.Notify(context.Background(), event); err != nil {
		t.Fatalf("notify: %v", err)
	}

	if len(sink.records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(sink.records))
	}
	record := sink.records[0]
	if record.ActorID != actorID {
		t.Fatalf("expected actor %s got %s", actorID, record.ActorID)
	}
	if record.TenantID != tenantID {
		t.Fatalf("expected tenant %s got %s", tenantID, record.TenantID)
	}
	if record.UserID != uuid.Nil {
		t.Fatalf("expected nil user, got %s", record.UserID)
	}
	if record.Verb != activity.VerbSlicePersisted || record.ObjectType != "slice" || record.ObjectID != "test-counter" {
		t.Fatalf("unexpected record payload: %+v", record)
	}
	if record.Channel != "persist" {
		t.Fatalf("expected channel persist got %q", record.Channel)
	}
	if !record.OccurredAt.Equal(now) {
		t.Fatalf("expected occurred_at %v got %v", now, record.OccurredAt)
	}
	if record.Data["key"] != "persisted-storage-test-counter" || record.Data["version"] != uint64(4) {
		t.Fatalf("expected metadata passthrough got %v", record.Data)
	}
}

func TestHookFallsBackToConfiguredActor(t *testing.T) {
	sink := &recordingSink{}
	system := uuid.New()
	hook := usersink.Hook{Sink: sink, Actor: system}

	err := hook.Notify(context.Background(), activity.BuildSliceClearedEvent(activity.SliceEventInput{Slice: "counter"}))
	if err != nil {
		t.Fatalf("notify: %v", err)
	}
	if sink.records[0].ActorID != system {
		t.Fatalf("expected fallback actor %s got %s", system, sink.records[0].ActorID)
	}
}

func TestHookNotifySkipsMissingVerb(t *testing.T) {
	sink := &recordingSink{}
	hook := usersink.Hook{Sink: sink}

	_ = hook.Notify(context.Background(), activity.Event{})

	if len(sink.records) != 0 {
		t.Fatalf("expected no records for empty event, got %d", len(sink.records))
	}
}

func TestHookNotifyDefaultsTimestamp(t *testing.T) {
	sink := &recordingSink{}
	hook := usersink.Hook{Sink: sink}

	err := hook.Notify(context.Background(), activity.Event{
		Verb:       activity.VerbSliceHydrated,
		ObjectType: activity.ObjectTypeSlice,
		ObjectID:   "counter",
	})
	if err != nil {
		t.Fatalf("notify: %v", err)
	}
	if len(sink.records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(sink.records))
	}
	if sink.records[0].OccurredAt.IsZero() {
		t.Fatalf("expected occurred_at to be defaulted")
	}
}
