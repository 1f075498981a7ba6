package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/congsh/haigui-soup/internal/storage"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "telemetry.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestAppendAndListTelemetryEvents(t *testing.T) {
	store := openTestStore(t)

	base := time.Date(2026, 5, 11, 9, 0, 0, 0, time.UTC)
	events := []storage.TelemetryEvent{
		{Timestamp: base, Severity: "INFO", Name: "room_created", RoomID: "room-1", ActorID: "host-1"},
		{Timestamp: base.Add(time.Minute), Severity: "INFO", Name: "participant_joined", RoomID: "room-1", ActorID: "p-1", Detail: "游客42"},
		{Timestamp: base.Add(2 * time.Minute), Severity: "INFO", Name: "room_created", RoomID: "room-2", ActorID: "host-2"},
	}
	for _, evt := range events {
		if err := store.AppendTelemetryEvent(context.Background(), evt); err != nil {
			t.Fatalf("append event: %v", err)
		}
	}

	listed, err := store.ListTelemetryEvents(context.Background(), "room-1", 10)
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(listed) != 2 {
		t.Fatalf("expected 2 events for room-1, got %d", len(listed))
	}
	if listed[0].Name != "room_created" || listed[1].Name != "participant_joined" {
		t.Fatalf("expected oldest-first order, got %q then %q", listed[0].Name, listed[1].Name)
	}
	if !listed[0].Timestamp.Equal(base) {
		t.Fatalf("expected timestamp %v, got %v", base, listed[0].Timestamp)
	}
	if listed[1].Detail != "游客42" {
		t.Fatalf("expected detail round-trip, got %q", listed[1].Detail)
	}
}

func TestListTelemetryEventsLimit(t *testing.T) {
	store := openTestStore(t)

	base := time.Date(2026, 5, 11, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		evt := storage.TelemetryEvent{
			Timestamp: base.Add(time.Duration(i) * time.Second),
			Severity:  "INFO",
			Name:      "message_appended",
			RoomID:    "room-1",
		}
		if err := store.AppendTelemetryEvent(context.Background(), evt); err != nil {
			t.Fatalf("append event: %v", err)
		}
	}

	listed, err := store.ListTelemetryEvents(context.Background(), "room-1", 3)
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(listed) != 3 {
		t.Fatalf("expected 3 events, got %d", len(listed))
	}
}

func TestAppendTelemetryEventEmptyName(t *testing.T) {
	store := openTestStore(t)

	err := store.AppendTelemetryEvent(context.Background(), storage.TelemetryEvent{RoomID: "room-1"})
	if err == nil {
		t.Fatal("expected error")
	}
}
