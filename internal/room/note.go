package room

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/congsh/haigui-soup/internal/errors"
	"github.com/congsh/haigui-soup/internal/id"
)

// Note is a private scratchpad entry owned exclusively by its creating user.
type Note struct {
	ID          string
	UserID      string
	Content     string
	Timestamp   time.Time
	IsImportant bool
	// Deleted marks the note as tombstoned. Tombstones occupy storage but
	// are filtered at every read site.
	Deleted bool
}

// NewNote creates a note with a generated ID and timestamp.
func NewNote(userID, content string, isImportant bool, now func() time.Time, idGenerator func() (string, error)) (Note, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	noteID, err := idGenerator()
	if err != nil {
		return Note{}, fmt.Errorf("generate note id: %w", err)
	}

	return Note{
		ID:          noteID,
		UserID:      userID,
		Content:     content,
		Timestamp:   now().UTC(),
		IsImportant: isImportant,
	}, nil
}

// Tombstone returns a deleted revision of the note. Content is also cleared
// so records written by older clients read the same way.
func (n Note) Tombstone(now func() time.Time) Note {
	if now == nil {
		now = time.Now
	}
	n.Content = ""
	n.IsImportant = false
	n.Deleted = true
	n.Timestamp = now().UTC()
	return n
}

// Tombstoned reports whether the note should be hidden from read paths.
// Empty-content notes count as tombstones for compatibility with records
// deleted by overwrite.
func (n Note) Tombstoned() bool {
	return n.Deleted || strings.TrimSpace(n.Content) == ""
}

// ValidateNote checks the fields a note must carry before it is merged into
// a room.
func ValidateNote(note Note) error {
	if strings.TrimSpace(note.ID) == "" {
		return apperrors.New(apperrors.CodeNoteIDEmpty, "note id is required")
	}
	if strings.TrimSpace(note.UserID) == "" {
		return apperrors.New(apperrors.CodeNoteWrongOwner, "note owner is required")
	}
	return nil
}
