package errors

import stderrors "errors"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Room errors
	CodeRoomTitleEmpty              Code = "ROOM_TITLE_EMPTY"
	CodeRoomHostEmpty               Code = "ROOM_HOST_EMPTY"
	CodeRoomInvalidStatus           Code = "ROOM_INVALID_STATUS"
	CodeRoomInvalidScoringMethod    Code = "ROOM_INVALID_SCORING_METHOD"
	CodeRoomInvalidStatusTransition Code = "ROOM_INVALID_STATUS_TRANSITION"
	CodeRoomUserNotFound            Code = "ROOM_USER_NOT_FOUND"

	// Message errors
	CodeMessageInvalidType  Code = "MESSAGE_INVALID_TYPE"
	CodeMessageContentEmpty Code = "MESSAGE_CONTENT_EMPTY"

	// Note errors
	CodeNoteIDEmpty    Code = "NOTE_ID_EMPTY"
	CodeNoteWrongOwner Code = "NOTE_WRONG_OWNER"

	// Identity errors
	CodeIdentityDisplayNameEmpty Code = "IDENTITY_DISPLAY_NAME_EMPTY"

	// Invite errors
	CodeInviteCodeExhausted Code = "INVITE_CODE_EXHAUSTED"

	// Intent errors
	CodePermissionDenied Code = "PERMISSION_DENIED"
	CodeInvalidState     Code = "INVALID_STATE"

	// Storage errors
	CodeNotFound Code = "NOT_FOUND"
)

// GetCode extracts the error code from any error.
// Returns CodeUnknown if the error is not a domain error.
func GetCode(err error) Code {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Code
	}
	return CodeUnknown
}

// IsCode checks if the error has the specified code.
func IsCode(err error, code Code) bool {
	return GetCode(err) == code
}
