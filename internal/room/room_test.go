package room

import (
	"errors"
	"testing"
	"time"

	apperrors "github.com/congsh/haigui-soup/internal/errors"
)

func fixedNow() time.Time {
	return time.Date(2026, 5, 11, 9, 0, 0, 0, time.UTC)
}

func fixedID(value string) func() (string, error) {
	return func() (string, error) { return value, nil }
}

func validInput() CreateRoomInput {
	return CreateRoomInput{
		HostID:      "host-1",
		HostName:    "主持人",
		Title:       "深夜的汤",
		Description: "一个人在深夜喝了一碗汤",
		Rules:       Rules{Scoring: ScoringNone},
	}
}

func TestCreateRoom(t *testing.T) {
	r, err := CreateRoom(validInput(), fixedNow, fixedID("room-1"))
	if err != nil {
		t.Fatalf("create room: %v", err)
	}

	if r.ID != "room-1" {
		t.Fatalf("expected generated id, got %q", r.ID)
	}
	if r.Status != StatusWaiting {
		t.Fatalf("expected waiting, got %v", r.Status)
	}
	if !r.CreatedAt.Equal(fixedNow()) {
		t.Fatalf("unexpected creation time %v", r.CreatedAt)
	}
	if len(r.Users) != 1 {
		t.Fatalf("expected host as sole member, got %d", len(r.Users))
	}
	host := r.Users[0]
	if host.ID != "host-1" || host.Role != RoleHost {
		t.Fatalf("unexpected host member: %+v", host)
	}
	if !r.IsHost("host-1") || r.IsHost("p-1") || r.IsHost("") {
		t.Fatal("host check wrong")
	}
	if len(r.Messages) != 0 || len(r.Notes) != 0 {
		t.Fatal("expected empty log and notes")
	}
}

func TestCreateRoomTrimsFields(t *testing.T) {
	input := validInput()
	input.Title = "  深夜的汤  "
	input.Description = " 提示 "
	input.HostName = " 主持人 "

	r, err := CreateRoom(input, fixedNow, fixedID("room-1"))
	if err != nil {
		t.Fatalf("create room: %v", err)
	}
	if r.Title != "深夜的汤" || r.Description != "提示" || r.Users[0].Name != "主持人" {
		t.Fatalf("expected trimmed fields, got %+v", r)
	}
}

func TestCreateRoomValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*CreateRoomInput)
		wantErr error
	}{
		{"empty host", func(in *CreateRoomInput) { in.HostID = "  " }, ErrEmptyHost},
		{"empty title", func(in *CreateRoomInput) { in.Title = "" }, ErrEmptyTitle},
		{"missing scoring", func(in *CreateRoomInput) { in.Rules.Scoring = ScoringUnspecified }, ErrInvalidScoringMethod},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			input := validInput()
			tc.mutate(&input)
			_, err := CreateRoom(input, fixedNow, fixedID("room-1"))
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestUserByID(t *testing.T) {
	r, err := CreateRoom(validInput(), fixedNow, fixedID("room-1"))
	if err != nil {
		t.Fatalf("create room: %v", err)
	}
	r.Users = append(r.Users, User{ID: "p-1", Name: "游客1", Role: RoleParticipant})

	user, ok := r.UserByID("p-1")
	if !ok || user.Name != "游客1" {
		t.Fatalf("expected participant, got %+v ok=%v", user, ok)
	}
	if _, ok := r.UserByID("stranger"); ok {
		t.Fatal("expected miss for unknown id")
	}
	if !r.HasUser("host-1") || r.HasUser("stranger") {
		t.Fatal("membership check wrong")
	}
}

func TestTransitionStatus(t *testing.T) {
	allowed := []struct{ from, to Status }{
		{StatusWaiting, StatusActive},
		{StatusWaiting, StatusEnded},
		{StatusActive, StatusEnded},
		{StatusEnded, StatusActive},
	}
	for _, tc := range allowed {
		r := Room{Status: tc.from}
		updated, err := TransitionStatus(r, tc.to)
		if err != nil {
			t.Fatalf("%s -> %s: %v", StatusLabel(tc.from), StatusLabel(tc.to), err)
		}
		if updated.Status != tc.to {
			t.Fatalf("%s -> %s: got %v", StatusLabel(tc.from), StatusLabel(tc.to), updated.Status)
		}
	}

	denied := []struct{ from, to Status }{
		{StatusActive, StatusWaiting},
		{StatusEnded, StatusWaiting},
		{StatusEnded, StatusEnded},
		{StatusWaiting, StatusWaiting},
		{StatusUnspecified, StatusActive},
	}
	for _, tc := range denied {
		_, err := TransitionStatus(Room{Status: tc.from}, tc.to)
		if !apperrors.IsCode(err, apperrors.CodeRoomInvalidStatusTransition) {
			t.Fatalf("%s -> %s: expected transition error, got %v", StatusLabel(tc.from), StatusLabel(tc.to), err)
		}
	}
}

func TestNotesForFiltersAndSorts(t *testing.T) {
	base := fixedNow()
	r := Room{Notes: map[string]map[string]Note{
		"p-1": {
			"n-1": {ID: "n-1", UserID: "p-1", Content: "早", Timestamp: base},
			"n-2": {ID: "n-2", UserID: "p-1", Content: "晚", Timestamp: base.Add(time.Minute)},
			"n-3": {ID: "n-3", UserID: "p-1", Deleted: true, Timestamp: base.Add(2 * time.Minute)},
			"n-4": {ID: "n-4", UserID: "p-1", Content: "   ", Timestamp: base.Add(3 * time.Minute)},
		},
		"p-2": {
			"n-5": {ID: "n-5", UserID: "p-2", Content: "别人的", Timestamp: base},
		},
	}}

	notes := r.NotesFor("p-1")
	if len(notes) != 2 {
		t.Fatalf("expected tombstones filtered, got %d notes", len(notes))
	}
	if notes[0].ID != "n-2" || notes[1].ID != "n-1" {
		t.Fatalf("expected newest first, got %q then %q", notes[0].ID, notes[1].ID)
	}

	if got := r.NotesFor("stranger"); got != nil {
		t.Fatalf("expected nil for unknown user, got %+v", got)
	}
}

func TestStatusLabelRoundTrip(t *testing.T) {
	for _, status := range []Status{StatusWaiting, StatusActive, StatusEnded} {
		if got := StatusFromLabel(StatusLabel(status)); got != status {
			t.Fatalf("status %v round-tripped to %v", status, got)
		}
	}
	if StatusFromLabel("bogus") != StatusUnspecified {
		t.Fatal("expected unspecified for unknown label")
	}
	if StatusFromLabel(" Active ") != StatusActive {
		t.Fatal("expected label match to ignore case and spacing")
	}
}

func TestScoringLabelRoundTrip(t *testing.T) {
	for _, method := range []ScoringMethod{ScoringHost, ScoringEveryone, ScoringNone} {
		if got := ScoringFromLabel(ScoringLabel(method)); got != method {
			t.Fatalf("scoring %v round-tripped to %v", method, got)
		}
	}
	if ScoringFromLabel("bogus") != ScoringUnspecified {
		t.Fatal("expected unspecified for unknown label")
	}
}
