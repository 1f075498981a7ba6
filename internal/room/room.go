package room

import (
	"fmt"
	"sort"
	"strings"
	"time"

	apperrors "github.com/congsh/haigui-soup/internal/errors"
	"github.com/congsh/haigui-soup/internal/id"
)

// Status describes the lifecycle of a room.
type Status int

const (
	// StatusUnspecified represents an invalid room status value.
	StatusUnspecified Status = iota
	// StatusWaiting indicates the room is open but play has not started.
	StatusWaiting
	// StatusActive indicates play is in progress.
	StatusActive
	// StatusEnded indicates the host has ended the room.
	StatusEnded
)

// ScoringMethod describes who scores answers in a room.
type ScoringMethod int

const (
	// ScoringUnspecified represents an invalid scoring method value.
	ScoringUnspecified ScoringMethod = iota
	// ScoringHost indicates only the host scores.
	ScoringHost
	// ScoringEveryone indicates every participant scores.
	ScoringEveryone
	// ScoringNone indicates no scoring.
	ScoringNone
)

// Role describes a member's role within a room.
type Role int

const (
	// RoleUnspecified represents an invalid role value.
	RoleUnspecified Role = iota
	// RoleHost indicates the single member who poses the scenario and answers.
	RoleHost
	// RoleParticipant indicates any non-host member.
	RoleParticipant
)

var (
	// ErrEmptyTitle indicates a missing room title.
	ErrEmptyTitle = apperrors.New(apperrors.CodeRoomTitleEmpty, "room title is required")
	// ErrEmptyHost indicates a missing host identity.
	ErrEmptyHost = apperrors.New(apperrors.CodeRoomHostEmpty, "host id is required")
	// ErrInvalidScoringMethod indicates a missing or invalid scoring method.
	ErrInvalidScoringMethod = apperrors.New(apperrors.CodeRoomInvalidScoringMethod, "scoring method is required")
	// ErrUserNotFound indicates the referenced member is not in the room.
	ErrUserNotFound = apperrors.New(apperrors.CodeRoomUserNotFound, "user is not a member of the room")
)

// Rules is the immutable rule set chosen at room creation. It governs which
// mutation intents are permitted for the lifetime of the room.
type Rules struct {
	// IsRedSoup marks the darker "red soup" puzzle variant.
	IsRedSoup bool
	// Scoring selects who scores answers.
	Scoring ScoringMethod
	// RequireHandRaise requires participants to raise a hand before answering.
	RequireHandRaise bool
	// AllowFlowersAndTrash permits flower and trash reaction messages.
	AllowFlowersAndTrash bool
}

// User is a room member, unique by ID and ordered by join time.
type User struct {
	ID            string
	Name          string
	Role          Role
	IsRaisingHand bool
}

// Room is the shared game session aggregate.
type Room struct {
	ID          string
	InviteCode  string
	HostID      string
	Title       string
	Description string
	Rules       Rules
	// Users is ordered by join time and unique by ID.
	Users []User
	// Messages is append-only: no edits, no deletions.
	Messages []Message
	// Notes maps user ID to that user's notes by note ID. Never exposed
	// across identities; use NotesFor.
	Notes     map[string]map[string]Note
	Status    Status
	CreatedAt time.Time
}

// CreateRoomInput describes the metadata needed to create a room.
type CreateRoomInput struct {
	HostID      string
	HostName    string
	Title       string
	Description string
	Rules       Rules
}

// CreateRoom creates a new room with a generated ID, the host as its only
// member, an empty message log, and Waiting status. The invite code is
// assigned by the service layer, which owns the uniqueness check.
func CreateRoom(input CreateRoomInput, now func() time.Time, idGenerator func() (string, error)) (Room, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	normalized, err := NormalizeCreateRoomInput(input)
	if err != nil {
		return Room{}, err
	}

	roomID, err := idGenerator()
	if err != nil {
		return Room{}, fmt.Errorf("generate room id: %w", err)
	}

	host := User{
		ID:   normalized.HostID,
		Name: normalized.HostName,
		Role: RoleHost,
	}

	return Room{
		ID:          roomID,
		HostID:      normalized.HostID,
		Title:       normalized.Title,
		Description: normalized.Description,
		Rules:       normalized.Rules,
		Users:       []User{host},
		Messages:    []Message{},
		Notes:       map[string]map[string]Note{},
		Status:      StatusWaiting,
		CreatedAt:   now().UTC(),
	}, nil
}

// NormalizeCreateRoomInput trims and validates room input metadata.
func NormalizeCreateRoomInput(input CreateRoomInput) (CreateRoomInput, error) {
	input.HostID = strings.TrimSpace(input.HostID)
	if input.HostID == "" {
		return CreateRoomInput{}, ErrEmptyHost
	}
	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" {
		return CreateRoomInput{}, ErrEmptyTitle
	}
	if input.Rules.Scoring == ScoringUnspecified {
		return CreateRoomInput{}, ErrInvalidScoringMethod
	}
	input.HostName = strings.TrimSpace(input.HostName)
	input.Description = strings.TrimSpace(input.Description)
	return input, nil
}

// UserByID returns the member with the given ID.
func (r Room) UserByID(userID string) (User, bool) {
	for _, user := range r.Users {
		if user.ID == userID {
			return user, true
		}
	}
	return User{}, false
}

// HasUser reports whether the given identity is a member of the room.
func (r Room) HasUser(userID string) bool {
	_, ok := r.UserByID(userID)
	return ok
}

// IsHost reports whether the given identity is the room's host.
func (r Room) IsHost(userID string) bool {
	return userID != "" && r.HostID == userID
}

// NotesFor returns the given user's live notes, newest first. Tombstoned
// notes and legacy empty-content records are filtered out. This is the only
// accessor for room notes; the raw map is never projected for other users.
func (r Room) NotesFor(userID string) []Note {
	byID := r.Notes[userID]
	if len(byID) == 0 {
		return nil
	}

	notes := make([]Note, 0, len(byID))
	for _, note := range byID {
		if note.Tombstoned() {
			continue
		}
		notes = append(notes, note)
	}
	sort.Slice(notes, func(i, j int) bool {
		return notes[i].Timestamp.After(notes[j].Timestamp)
	})
	return notes
}

// TransitionStatus applies a status transition against the allowed table:
// Waiting->Active, Waiting->Ended, Active->Ended, Ended->Active.
func TransitionStatus(r Room, target Status) (Room, error) {
	if !isStatusTransitionAllowed(r.Status, target) {
		fromStatus := StatusLabel(r.Status)
		toStatus := StatusLabel(target)
		return Room{}, apperrors.WithMetadata(
			apperrors.CodeRoomInvalidStatusTransition,
			fmt.Sprintf("room status transition not allowed: %s -> %s", fromStatus, toStatus),
			map[string]string{"FromStatus": fromStatus, "ToStatus": toStatus},
		)
	}

	updated := r
	updated.Status = target
	return updated, nil
}

func isStatusTransitionAllowed(from, to Status) bool {
	switch from {
	case StatusWaiting:
		return to == StatusActive || to == StatusEnded
	case StatusActive:
		return to == StatusEnded
	case StatusEnded:
		return to == StatusActive
	default:
		return false
	}
}

// StatusLabel returns the string label for a room status.
func StatusLabel(status Status) string {
	switch status {
	case StatusWaiting:
		return "waiting"
	case StatusActive:
		return "active"
	case StatusEnded:
		return "ended"
	default:
		return "unspecified"
	}
}

// StatusFromLabel converts a status label to a Status value.
func StatusFromLabel(label string) Status {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "waiting":
		return StatusWaiting
	case "active":
		return StatusActive
	case "ended":
		return StatusEnded
	default:
		return StatusUnspecified
	}
}

// ScoringLabel returns the string label for a scoring method.
func ScoringLabel(method ScoringMethod) string {
	switch method {
	case ScoringHost:
		return "host"
	case ScoringEveryone:
		return "everyone"
	case ScoringNone:
		return "none"
	default:
		return "unspecified"
	}
}

// ScoringFromLabel converts a scoring label to a ScoringMethod value.
func ScoringFromLabel(label string) ScoringMethod {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "host":
		return ScoringHost
	case "everyone":
		return ScoringEveryone
	case "none":
		return ScoringNone
	default:
		return ScoringUnspecified
	}
}
