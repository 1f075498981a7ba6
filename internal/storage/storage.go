package storage

import (
	"context"
	"errors"
	"time"

	"github.com/congsh/haigui-soup/internal/room"
)

// ErrNotFound indicates a requested record is missing.
var ErrNotFound = errors.New("record not found")

// RoomStore persists room aggregates and the invite-code index.
//
// Writes are whole-aggregate, last-write-wins: callers read the full room,
// transform it in memory, and write it back.
type RoomStore interface {
	// PutRoom persists a full room aggregate.
	PutRoom(ctx context.Context, r room.Room) error
	// GetRoom fetches a room aggregate by ID. Returns ErrNotFound when
	// the room does not exist.
	GetRoom(ctx context.Context, id string) (room.Room, error)
	// BindInviteCode records a code -> room ID index entry.
	BindInviteCode(ctx context.Context, code, roomID string) error
	// ResolveInviteCode maps a code to its room ID. Returns ErrNotFound
	// when no binding exists.
	ResolveInviteCode(ctx context.Context, code string) (string, error)
	// InviteCodeExists reports whether a code is already bound.
	InviteCodeExists(ctx context.Context, code string) (bool, error)
}

// SessionStateStore persists the small scalars used to resume a session
// after restart.
type SessionStateStore interface {
	// SetCurrentRoomID records the active room pointer. An empty room ID
	// clears the pointer.
	SetCurrentRoomID(ctx context.Context, roomID string) error
	// CurrentRoomID returns the active room pointer, or "" when unset.
	CurrentRoomID(ctx context.Context) (string, error)
}

// TelemetryEvent captures one operational event.
type TelemetryEvent struct {
	Timestamp time.Time
	Severity  string
	Name      string
	RoomID    string
	ActorID   string
	Detail    string
}

// TelemetryStore persists operational telemetry events.
type TelemetryStore interface {
	// AppendTelemetryEvent records one event.
	AppendTelemetryEvent(ctx context.Context, evt TelemetryEvent) error
	// ListTelemetryEvents returns events for a room, oldest first,
	// capped at limit.
	ListTelemetryEvents(ctx context.Context, roomID string, limit int) ([]TelemetryEvent, error)
}
