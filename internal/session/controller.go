package session

import (
	"context"
	"sync"

	"github.com/congsh/haigui-soup/internal/bus"
	apperrors "github.com/congsh/haigui-soup/internal/errors"
	"github.com/congsh/haigui-soup/internal/room"
	"github.com/congsh/haigui-soup/internal/room/service"
	"github.com/congsh/haigui-soup/internal/storage"
)

// State tracks the controller's subscription lifecycle.
type State int

const (
	// StateUnsubscribed means no room is attached.
	StateUnsubscribed State = iota
	// StateSubscribing means the initial snapshot fetch is in flight.
	StateSubscribing
	// StateSubscribed means snapshot callbacks are being delivered.
	StateSubscribed
)

// String returns a label for logging.
func (s State) String() string {
	switch s {
	case StateSubscribing:
		return "subscribing"
	case StateSubscribed:
		return "subscribed"
	default:
		return "unsubscribed"
	}
}

// Handler receives room snapshots. The initial snapshot is delivered
// synchronously from Subscribe; subsequent snapshots arrive from whichever
// goroutine mutated the room.
type Handler func(room.Room)

// Controller is the per-client view over one active room. It is safe for
// concurrent use.
type Controller struct {
	service  *service.Service
	eventBus *bus.Bus
	// sessions persists the current-room pointer for resume. Nil disables
	// persistence.
	sessions storage.SessionStateStore

	userID   string
	userName string

	mu     sync.Mutex
	state  State
	roomID string
	cancel func()
}

// New creates a controller for one client identity. sessions may be nil.
func New(svc *service.Service, eventBus *bus.Bus, sessions storage.SessionStateStore, userID, userName string) *Controller {
	return &Controller{
		service:  svc,
		eventBus: eventBus,
		sessions: sessions,
		userID:   userID,
		userName: userName,
	}
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// RoomID returns the attached room ID, or "" when unsubscribed.
func (c *Controller) RoomID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.roomID
}

// Join redeems an invite code for this client and subscribes to the room.
func (c *Controller) Join(ctx context.Context, code string, handler Handler) (room.Room, error) {
	r, err := c.service.JoinByCode(ctx, code, c.userID, c.userName)
	if err != nil {
		return room.Room{}, err
	}
	if err := c.Subscribe(ctx, r.ID, handler); err != nil {
		return room.Room{}, err
	}
	return r, nil
}

// Subscribe attaches the controller to a room. The current snapshot is
// delivered to handler before Subscribe returns, and every later mutation
// delivers a fresh snapshot until Unsubscribe. Subscribing to the room the
// controller is already attached to redelivers the snapshot without adding
// a second subscription. Subscribing to a different room releases the
// previous subscription first.
func (c *Controller) Subscribe(ctx context.Context, roomID string, handler Handler) error {
	if roomID == "" {
		return apperrors.New(apperrors.CodeInvalidState, "room id is required")
	}

	c.mu.Lock()
	if c.state == StateSubscribed && c.roomID == roomID {
		c.mu.Unlock()
		r, err := c.service.GetRoom(ctx, roomID)
		if err != nil {
			return err
		}
		if handler != nil {
			handler(r)
		}
		return nil
	}

	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.state = StateSubscribing
	c.roomID = roomID
	c.mu.Unlock()

	r, err := c.service.GetRoom(ctx, roomID)
	if err != nil {
		c.mu.Lock()
		c.state = StateUnsubscribed
		c.roomID = ""
		c.mu.Unlock()
		return err
	}

	cancel := c.eventBus.Subscribe(roomID, func(snapshot room.Room) {
		if handler != nil {
			handler(snapshot)
		}
	})

	c.mu.Lock()
	c.cancel = cancel
	c.state = StateSubscribed
	c.mu.Unlock()

	if handler != nil {
		handler(r)
	}

	if c.sessions != nil {
		if err := c.sessions.SetCurrentRoomID(ctx, roomID); err != nil {
			return err
		}
	}
	return nil
}

// Resume re-subscribes to the room recorded by the last Subscribe, if any.
// It returns the resumed room ID, or "" when there was nothing to resume.
func (c *Controller) Resume(ctx context.Context, handler Handler) (string, error) {
	if c.sessions == nil {
		return "", nil
	}
	roomID, err := c.sessions.CurrentRoomID(ctx)
	if err != nil {
		return "", err
	}
	if roomID == "" {
		return "", nil
	}
	if err := c.Subscribe(ctx, roomID, handler); err != nil {
		return "", err
	}
	return roomID, nil
}

// Unsubscribe detaches from the current room and clears the resume pointer.
// It is a no-op when already unsubscribed. In-flight intents are not rolled
// back.
func (c *Controller) Unsubscribe(ctx context.Context) error {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.state = StateUnsubscribed
	c.roomID = ""
	c.mu.Unlock()

	if c.sessions != nil {
		return c.sessions.SetCurrentRoomID(ctx, "")
	}
	return nil
}

// AskQuestion posts a yes/no question. replyToID optionally threads the
// question under an earlier message.
func (c *Controller) AskQuestion(ctx context.Context, content, replyToID string) (room.Message, error) {
	r, err := c.currentRoom(ctx)
	if err != nil {
		return room.Message{}, err
	}
	if r.Status == room.StatusEnded {
		return room.Message{}, apperrors.New(apperrors.CodeInvalidState, "room has ended")
	}
	return c.sendMessage(ctx, r.ID, room.MessageTypeQuestion, content, replyToID)
}

// Answer posts the host's verdict on a question. Only the host may answer,
// and the content is fixed by the verdict.
func (c *Controller) Answer(ctx context.Context, verdict room.Verdict, replyToID string) (room.Message, error) {
	r, err := c.currentRoom(ctx)
	if err != nil {
		return room.Message{}, err
	}
	if !r.IsHost(c.userID) {
		return room.Message{}, apperrors.New(apperrors.CodePermissionDenied, "only the host may answer questions")
	}
	if r.Status == room.StatusEnded {
		return room.Message{}, apperrors.New(apperrors.CodeInvalidState, "room has ended")
	}
	content := verdict.Content()
	if content == "" {
		return room.Message{}, apperrors.New(apperrors.CodeInvalidState, "unknown verdict")
	}
	return c.sendMessage(ctx, r.ID, room.MessageTypeAnswer, content, replyToID)
}

// SendInfo posts a host information drop, such as an extra clue.
func (c *Controller) SendInfo(ctx context.Context, content string) (room.Message, error) {
	r, err := c.currentRoom(ctx)
	if err != nil {
		return room.Message{}, err
	}
	if !r.IsHost(c.userID) {
		return room.Message{}, apperrors.New(apperrors.CodePermissionDenied, "only the host may send info")
	}
	return c.sendMessage(ctx, r.ID, room.MessageTypeInfo, content, "")
}

// SendFlower posts a flower reaction.
func (c *Controller) SendFlower(ctx context.Context) (room.Message, error) {
	return c.sendReaction(ctx, room.MessageTypeFlower, room.ContentFlower)
}

// SendTrash posts a trash reaction.
func (c *Controller) SendTrash(ctx context.Context) (room.Message, error) {
	return c.sendReaction(ctx, room.MessageTypeTrash, room.ContentTrash)
}

func (c *Controller) sendReaction(ctx context.Context, msgType room.MessageType, content string) (room.Message, error) {
	r, err := c.currentRoom(ctx)
	if err != nil {
		return room.Message{}, err
	}
	if !r.Rules.AllowFlowersAndTrash {
		return room.Message{}, apperrors.New(apperrors.CodeInvalidState, "reactions are disabled in this room")
	}
	if r.Status == room.StatusEnded {
		return room.Message{}, apperrors.New(apperrors.CodeInvalidState, "room has ended")
	}
	return c.sendMessage(ctx, r.ID, msgType, content, "")
}

// RaiseHand raises or lowers this client's hand. Raising requires the room
// to use hand-raise mode; lowering is always allowed.
func (c *Controller) RaiseHand(ctx context.Context, raising bool) error {
	r, err := c.currentRoom(ctx)
	if err != nil {
		return err
	}
	if raising && !r.Rules.RequireHandRaise {
		return apperrors.New(apperrors.CodeInvalidState, "room does not use hand-raise mode")
	}
	_, err = c.service.SetHandRaise(ctx, r.ID, c.userID, raising)
	return err
}

// EndRoom ends the game and announces it. Host only.
func (c *Controller) EndRoom(ctx context.Context) error {
	r, err := c.currentRoom(ctx)
	if err != nil {
		return err
	}
	if !r.IsHost(c.userID) {
		return apperrors.New(apperrors.CodePermissionDenied, "only the host may end the room")
	}
	if _, err := c.service.SetStatus(ctx, r.ID, room.StatusEnded); err != nil {
		return err
	}
	msg, err := room.NewSystemMessage(room.ContentRoomEnded, nil, nil)
	if err != nil {
		return err
	}
	_, err = c.service.AppendMessage(ctx, r.ID, msg)
	return err
}

// RestartRoom puts an ended room back into play and announces it. Host only.
func (c *Controller) RestartRoom(ctx context.Context) error {
	r, err := c.currentRoom(ctx)
	if err != nil {
		return err
	}
	if !r.IsHost(c.userID) {
		return apperrors.New(apperrors.CodePermissionDenied, "only the host may restart the room")
	}
	if r.Status != room.StatusEnded {
		return apperrors.New(apperrors.CodeInvalidState, "room is still in play")
	}
	if _, err := c.service.SetStatus(ctx, r.ID, room.StatusActive); err != nil {
		return err
	}
	msg, err := room.NewSystemMessage(room.ContentRoomRestart, nil, nil)
	if err != nil {
		return err
	}
	_, err = c.service.AppendMessage(ctx, r.ID, msg)
	return err
}

// AddNote creates a private note for this client.
func (c *Controller) AddNote(ctx context.Context, content string, isImportant bool) (room.Note, error) {
	r, err := c.currentRoom(ctx)
	if err != nil {
		return room.Note{}, err
	}
	note, err := room.NewNote(c.userID, content, isImportant, nil, nil)
	if err != nil {
		return room.Note{}, err
	}
	if _, err := c.service.UpsertNote(ctx, r.ID, c.userID, note); err != nil {
		return room.Note{}, err
	}
	return note, nil
}

// UpdateNote overwrites one of this client's notes.
func (c *Controller) UpdateNote(ctx context.Context, note room.Note) error {
	r, err := c.currentRoom(ctx)
	if err != nil {
		return err
	}
	if note.UserID != c.userID {
		return apperrors.New(apperrors.CodePermissionDenied, "notes may only be edited by their owner")
	}
	_, err = c.service.UpsertNote(ctx, r.ID, c.userID, note)
	return err
}

// DeleteNote tombstones one of this client's notes. The record stays in
// storage but disappears from every read path.
func (c *Controller) DeleteNote(ctx context.Context, noteID string) error {
	r, err := c.currentRoom(ctx)
	if err != nil {
		return err
	}
	note, ok := r.Notes[c.userID][noteID]
	if !ok {
		return apperrors.New(apperrors.CodeNotFound, "note not found")
	}
	_, err = c.service.UpsertNote(ctx, r.ID, c.userID, note.Tombstone(nil))
	return err
}

// Notes returns this client's live notes, newest first.
func (c *Controller) Notes(ctx context.Context) ([]room.Note, error) {
	r, err := c.currentRoom(ctx)
	if err != nil {
		return nil, err
	}
	return r.NotesFor(c.userID), nil
}

func (c *Controller) sendMessage(ctx context.Context, roomID string, msgType room.MessageType, content, replyToID string) (room.Message, error) {
	msg, err := room.NewMessage(msgType, content, c.userID, c.userName, replyToID, nil, nil)
	if err != nil {
		return room.Message{}, err
	}
	if _, err := c.service.AppendMessage(ctx, roomID, msg); err != nil {
		return room.Message{}, err
	}
	return msg, nil
}

func (c *Controller) currentRoom(ctx context.Context) (room.Room, error) {
	c.mu.Lock()
	state := c.state
	roomID := c.roomID
	c.mu.Unlock()

	if state != StateSubscribed {
		return room.Room{}, apperrors.New(apperrors.CodeInvalidState, "no active room subscription")
	}
	return c.service.GetRoom(ctx, roomID)
}
