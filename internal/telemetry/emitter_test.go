package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/congsh/haigui-soup/internal/storage"
)

type fakeTelemetryStore struct {
	events []storage.TelemetryEvent
}

func (f *fakeTelemetryStore) AppendTelemetryEvent(ctx context.Context, evt storage.TelemetryEvent) error {
	f.events = append(f.events, evt)
	return nil
}

func (f *fakeTelemetryStore) ListTelemetryEvents(ctx context.Context, roomID string, limit int) ([]storage.TelemetryEvent, error) {
	return f.events, nil
}

func TestEmitRecordsEvent(t *testing.T) {
	store := &fakeTelemetryStore{}
	emitter := NewEmitter(store)
	now := time.Date(2026, 5, 11, 9, 0, 0, 0, time.UTC)
	emitter.clock = func() time.Time { return now }

	if err := emitter.Emit(context.Background(), SeverityInfo, EventRoomCreated, "room-1", "host-1", ""); err != nil {
		t.Fatalf("emit: %v", err)
	}

	if len(store.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(store.events))
	}
	evt := store.events[0]
	if evt.Name != EventRoomCreated {
		t.Fatalf("expected name %q, got %q", EventRoomCreated, evt.Name)
	}
	if evt.Severity != string(SeverityInfo) {
		t.Fatalf("expected severity INFO, got %q", evt.Severity)
	}
	if !evt.Timestamp.Equal(now) {
		t.Fatalf("expected timestamp %v, got %v", now, evt.Timestamp)
	}
}

func TestEmitNilStoreIsNoOp(t *testing.T) {
	emitter := NewEmitter(nil)
	if err := emitter.Emit(context.Background(), SeverityInfo, EventRoomCreated, "room-1", "", ""); err != nil {
		t.Fatalf("expected no-op, got %v", err)
	}

	var nilEmitter *Emitter
	if err := nilEmitter.Emit(context.Background(), SeverityInfo, EventRoomCreated, "room-1", "", ""); err != nil {
		t.Fatalf("expected nil emitter no-op, got %v", err)
	}
}
