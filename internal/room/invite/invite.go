// Package invite provides room invite code generation.
package invite

import (
	"crypto/rand"
	"fmt"

	apperrors "github.com/congsh/haigui-soup/internal/errors"
)

// Alphabet is the invite code character set. Easily-confused glyphs
// (0/O, 1/I) are excluded so codes stay human-typeable.
const Alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const (
	// MinLength is the shortest invite code generated.
	MinLength = 5
	// MaxLength is the longest invite code generated.
	MaxLength = 8

	maxAttempts = 10
)

// ErrExhausted indicates code generation failed to find an unused code.
var ErrExhausted = apperrors.New(apperrors.CodeInviteCodeExhausted, "could not generate an unused invite code")

// NewCode generates a random invite code of 5 to 8 characters.
func NewCode() (string, error) {
	var lengthByte [1]byte
	if _, err := rand.Read(lengthByte[:]); err != nil {
		return "", fmt.Errorf("read random length: %w", err)
	}
	length := MinLength + int(lengthByte[0])%(MaxLength-MinLength+1)

	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	for i := range buf {
		buf[i] = Alphabet[int(buf[i])%len(Alphabet)]
	}
	return string(buf), nil
}

// NewUniqueCode generates an invite code not currently in use, retrying
// against the exists check up to a bounded number of attempts.
func NewUniqueCode(exists func(code string) (bool, error)) (string, error) {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		code, err := NewCode()
		if err != nil {
			return "", err
		}
		if exists == nil {
			return code, nil
		}
		taken, err := exists(code)
		if err != nil {
			return "", fmt.Errorf("check invite code: %w", err)
		}
		if !taken {
			return code, nil
		}
	}
	return "", ErrExhausted
}
