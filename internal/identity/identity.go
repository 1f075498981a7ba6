// Package identity provides the stable anonymous identity for a client.
//
// An identity is created on first load, persisted locally, and survives
// sign-out: signing out resets the display name to a fresh guest name but
// keeps the underlying ID so rooms recognize the returning client.
package identity

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"

	apperrors "github.com/congsh/haigui-soup/internal/errors"
	"github.com/congsh/haigui-soup/internal/id"
	"github.com/congsh/haigui-soup/internal/storage"
)

// ErrEmptyDisplayName indicates a missing display name.
var ErrEmptyDisplayName = apperrors.New(apperrors.CodeIdentityDisplayNameEmpty, "display name is required")

// Identity is a stable anonymous identity with a user-chosen display name.
type Identity struct {
	ID          string
	DisplayName string
}

// Store persists the local identity record.
type Store interface {
	// PutIdentity persists the identity record.
	PutIdentity(ctx context.Context, ident Identity) error
	// GetIdentity fetches the identity record. Returns storage.ErrNotFound
	// when none has been created yet.
	GetIdentity(ctx context.Context) (Identity, error)
}

// Provider loads and mutates the client identity.
type Provider struct {
	store       Store
	idGenerator func() (string, error)
	guestName   func() (string, error)
}

// NewProvider creates an identity provider over the given store.
func NewProvider(store Store) *Provider {
	return &Provider{
		store:       store,
		idGenerator: id.NewID,
		guestName:   GuestName,
	}
}

// Load returns the persisted identity, creating and persisting one with a
// generated ID and guest display name on first run.
func (p *Provider) Load(ctx context.Context) (Identity, error) {
	if p == nil || p.store == nil {
		return Identity{}, fmt.Errorf("identity store is not configured")
	}

	ident, err := p.store.GetIdentity(ctx)
	if err == nil {
		return ident, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return Identity{}, fmt.Errorf("load identity: %w", err)
	}

	identityID, err := p.idGenerator()
	if err != nil {
		return Identity{}, fmt.Errorf("generate identity id: %w", err)
	}
	name, err := p.guestName()
	if err != nil {
		return Identity{}, fmt.Errorf("generate guest name: %w", err)
	}

	ident = Identity{ID: identityID, DisplayName: name}
	if err := p.store.PutIdentity(ctx, ident); err != nil {
		return Identity{}, fmt.Errorf("persist identity: %w", err)
	}
	return ident, nil
}

// Rename updates the display name. Only the owning client holds the store,
// so no further authorization applies.
func (p *Provider) Rename(ctx context.Context, displayName string) (Identity, error) {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return Identity{}, ErrEmptyDisplayName
	}

	ident, err := p.Load(ctx)
	if err != nil {
		return Identity{}, err
	}

	ident.DisplayName = displayName
	if err := p.store.PutIdentity(ctx, ident); err != nil {
		return Identity{}, fmt.Errorf("persist identity: %w", err)
	}
	return ident, nil
}

// SignOut resets the display name to a fresh guest name while keeping the
// stable ID.
func (p *Provider) SignOut(ctx context.Context) (Identity, error) {
	ident, err := p.Load(ctx)
	if err != nil {
		return Identity{}, err
	}

	name, err := p.guestName()
	if err != nil {
		return Identity{}, fmt.Errorf("generate guest name: %w", err)
	}

	ident.DisplayName = name
	if err := p.store.PutIdentity(ctx, ident); err != nil {
		return Identity{}, fmt.Errorf("persist identity: %w", err)
	}
	return ident, nil
}

// GuestName generates a random guest display name.
func GuestName() (string, error) {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	n := binary.LittleEndian.Uint32(b[:]) % 10000
	return fmt.Sprintf("游客%d", n), nil
}
