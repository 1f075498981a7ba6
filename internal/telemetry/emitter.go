// Package telemetry records operational events for room activity.
package telemetry

import (
	"context"
	"time"

	"github.com/congsh/haigui-soup/internal/storage"
)

// Severity describes the telemetry severity level.
type Severity string

const (
	SeverityInfo  Severity = "INFO"
	SeverityWarn  Severity = "WARN"
	SeverityError Severity = "ERROR"
)

// Well-known event names emitted by the room service.
const (
	EventRoomCreated       = "room_created"
	EventParticipantJoined = "participant_joined"
	EventMessageAppended   = "message_appended"
	EventStatusChanged     = "status_changed"
	EventHandRaiseChanged  = "hand_raise_changed"
	EventNoteUpserted      = "note_upserted"
)

// Emitter records operational telemetry events.
type Emitter struct {
	store storage.TelemetryStore
	clock func() time.Time
}

// NewEmitter creates a new telemetry emitter.
func NewEmitter(store storage.TelemetryStore) *Emitter {
	return &Emitter{store: store, clock: time.Now}
}

// Emit records a telemetry event. It is a no-op when the store is nil.
func (e *Emitter) Emit(ctx context.Context, severity Severity, name, roomID, actorID, detail string) error {
	if e == nil || e.store == nil {
		return nil
	}
	now := time.Now
	if e.clock != nil {
		now = e.clock
	}
	return e.store.AppendTelemetryEvent(ctx, storage.TelemetryEvent{
		Timestamp: now().UTC(),
		Severity:  string(severity),
		Name:      name,
		RoomID:    roomID,
		ActorID:   actorID,
		Detail:    detail,
	})
}
