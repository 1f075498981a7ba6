// Package service implements the room repository: the sole authority for
// creating and mutating room aggregates.
//
// Every mutation is a whole-aggregate read-modify-write against the store
// (last write wins), followed by a publish of the updated snapshot on the
// event bus. No other component writes room state.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/congsh/haigui-soup/internal/bus"
	apperrors "github.com/congsh/haigui-soup/internal/errors"
	"github.com/congsh/haigui-soup/internal/id"
	"github.com/congsh/haigui-soup/internal/room"
	"github.com/congsh/haigui-soup/internal/room/invite"
	"github.com/congsh/haigui-soup/internal/storage"
	"github.com/congsh/haigui-soup/internal/telemetry"
)

// ErrRoomNotFound indicates an invite code or room ID that does not resolve.
// A dangling code index entry reports the same error as a missing code; the
// caller cannot distinguish the two causes.
var ErrRoomNotFound = apperrors.New(apperrors.CodeNotFound, "room not found")

// Service mutates room aggregates, writing through to the store and
// publishing snapshots on the bus.
type Service struct {
	store    storage.RoomStore
	eventBus *bus.Bus
	emitter  *telemetry.Emitter

	now         func() time.Time
	idGenerator func() (string, error)
	newCode     func(exists func(code string) (bool, error)) (string, error)
}

// New creates a room service. The emitter may be nil to disable telemetry.
func New(store storage.RoomStore, eventBus *bus.Bus, emitter *telemetry.Emitter) *Service {
	return &Service{
		store:       store,
		eventBus:    eventBus,
		emitter:     emitter,
		now:         time.Now,
		idGenerator: id.NewID,
		newCode:     invite.NewUniqueCode,
	}
}

// CreateRoom creates and persists a new room with a unique invite code. The
// caller becomes the host. Nothing is published: no subscriber can exist for
// a room that did not exist before this call.
func (s *Service) CreateRoom(ctx context.Context, input room.CreateRoomInput) (room.Room, error) {
	r, err := room.CreateRoom(input, s.now, s.idGenerator)
	if err != nil {
		return room.Room{}, err
	}

	code, err := s.newCode(func(code string) (bool, error) {
		return s.store.InviteCodeExists(ctx, code)
	})
	if err != nil {
		return room.Room{}, fmt.Errorf("generate invite code: %w", err)
	}
	r.InviteCode = code

	if err := s.store.PutRoom(ctx, r); err != nil {
		return room.Room{}, fmt.Errorf("persist room: %w", err)
	}
	if err := s.store.BindInviteCode(ctx, code, r.ID); err != nil {
		return room.Room{}, fmt.Errorf("bind invite code: %w", err)
	}

	s.emit(ctx, telemetry.EventRoomCreated, r.ID, r.HostID, code)
	return r, nil
}

// JoinByCode resolves an invite code and adds the user as a participant,
// announcing the join with a system message. Rejoining is idempotent: a user
// already in the room gets the current snapshot back unchanged, with no
// duplicate member, no duplicate announcement, and no publish.
func (s *Service) JoinByCode(ctx context.Context, code, userID, userName string) (room.Room, error) {
	code = strings.TrimSpace(code)
	roomID, err := s.store.ResolveInviteCode(ctx, code)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return room.Room{}, ErrRoomNotFound
		}
		return room.Room{}, fmt.Errorf("resolve invite code: %w", err)
	}

	r, err := s.loadRoom(ctx, roomID)
	if err != nil {
		return room.Room{}, err
	}

	if r.HasUser(userID) {
		return r, nil
	}

	r.Users = append(r.Users, room.User{
		ID:   userID,
		Name: userName,
		Role: room.RoleParticipant,
	})

	joined, err := room.NewSystemMessage(room.JoinContent(userName), s.now, s.idGenerator)
	if err != nil {
		return room.Room{}, err
	}
	r.Messages = append(r.Messages, joined)

	if err := s.persistAndPublish(ctx, r); err != nil {
		return room.Room{}, err
	}
	s.emit(ctx, telemetry.EventParticipantJoined, r.ID, userID, userName)
	return r, nil
}

// AppendMessage appends a message to the room's log. The log is append-only;
// existing messages are never touched. The first question appended to a
// waiting room promotes it to active.
func (s *Service) AppendMessage(ctx context.Context, roomID string, msg room.Message) (room.Room, error) {
	r, err := s.loadRoom(ctx, roomID)
	if err != nil {
		return room.Room{}, err
	}

	r.Messages = append(r.Messages, msg)
	if msg.Type == room.MessageTypeQuestion && r.Status == room.StatusWaiting {
		r, err = room.TransitionStatus(r, room.StatusActive)
		if err != nil {
			return room.Room{}, err
		}
	}

	if err := s.persistAndPublish(ctx, r); err != nil {
		return room.Room{}, err
	}
	s.emit(ctx, telemetry.EventMessageAppended, r.ID, msg.SenderID, string(msg.Type))
	return r, nil
}

// SetStatus applies a room status transition.
func (s *Service) SetStatus(ctx context.Context, roomID string, status room.Status) (room.Room, error) {
	r, err := s.loadRoom(ctx, roomID)
	if err != nil {
		return room.Room{}, err
	}

	r, err = room.TransitionStatus(r, status)
	if err != nil {
		return room.Room{}, err
	}

	if err := s.persistAndPublish(ctx, r); err != nil {
		return room.Room{}, err
	}
	s.emit(ctx, telemetry.EventStatusChanged, r.ID, "", room.StatusLabel(status))
	return r, nil
}

// UpsertNote merges a note into the owner's private notes, inserting or
// overwriting by note ID. Deletion is an upsert of a tombstoned revision.
func (s *Service) UpsertNote(ctx context.Context, roomID, userID string, note room.Note) (room.Room, error) {
	if err := room.ValidateNote(note); err != nil {
		return room.Room{}, err
	}
	if note.UserID != userID {
		return room.Room{}, apperrors.New(apperrors.CodeNoteWrongOwner, "note does not belong to the user")
	}

	r, err := s.loadRoom(ctx, roomID)
	if err != nil {
		return room.Room{}, err
	}

	if r.Notes == nil {
		r.Notes = map[string]map[string]room.Note{}
	}
	if r.Notes[userID] == nil {
		r.Notes[userID] = map[string]room.Note{}
	}
	r.Notes[userID][note.ID] = note

	if err := s.persistAndPublish(ctx, r); err != nil {
		return room.Room{}, err
	}
	s.emit(ctx, telemetry.EventNoteUpserted, r.ID, userID, note.ID)
	return r, nil
}

// SetHandRaise updates the member's hand-raise flag. Raising additionally
// appends the hand-raise announcement; both changes land in one write and
// one publish.
func (s *Service) SetHandRaise(ctx context.Context, roomID, userID string, raising bool) (room.Room, error) {
	r, err := s.loadRoom(ctx, roomID)
	if err != nil {
		return room.Room{}, err
	}

	user, ok := r.UserByID(userID)
	if !ok {
		return room.Room{}, room.ErrUserNotFound
	}

	for i := range r.Users {
		if r.Users[i].ID == userID {
			r.Users[i].IsRaisingHand = raising
		}
	}

	if raising {
		msg, err := room.NewMessage(
			room.MessageTypeHandRaise,
			room.HandRaiseContent(user.Name),
			userID,
			user.Name,
			"",
			s.now,
			s.idGenerator,
		)
		if err != nil {
			return room.Room{}, err
		}
		r.Messages = append(r.Messages, msg)
	}

	if err := s.persistAndPublish(ctx, r); err != nil {
		return room.Room{}, err
	}
	s.emit(ctx, telemetry.EventHandRaiseChanged, r.ID, userID, fmt.Sprintf("raising=%t", raising))
	return r, nil
}

// GetRoom fetches the current room snapshot.
func (s *Service) GetRoom(ctx context.Context, roomID string) (room.Room, error) {
	return s.loadRoom(ctx, roomID)
}

func (s *Service) loadRoom(ctx context.Context, roomID string) (room.Room, error) {
	r, err := s.store.GetRoom(ctx, roomID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return room.Room{}, ErrRoomNotFound
		}
		return room.Room{}, fmt.Errorf("load room: %w", err)
	}
	return r, nil
}

func (s *Service) persistAndPublish(ctx context.Context, r room.Room) error {
	if err := s.store.PutRoom(ctx, r); err != nil {
		return fmt.Errorf("persist room: %w", err)
	}
	if s.eventBus != nil {
		s.eventBus.Publish(r.ID, r)
	}
	return nil
}

// emit records telemetry best-effort; a failed telemetry write never fails
// the room mutation it describes.
func (s *Service) emit(ctx context.Context, name, roomID, actorID, detail string) {
	_ = s.emitter.Emit(ctx, telemetry.SeverityInfo, name, roomID, actorID, detail)
}
