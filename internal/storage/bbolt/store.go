// Package bbolt provides a BoltDB-backed implementation of the storage
// interfaces for rooms, the invite-code index, identity, and session state.
package bbolt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/congsh/haigui-soup/internal/identity"
	"github.com/congsh/haigui-soup/internal/room"
	"github.com/congsh/haigui-soup/internal/storage"
	"go.etcd.io/bbolt"
)

const (
	roomBucket         = "room"
	inviteCodeBucket   = "invite_code"
	identityBucket     = "identity"
	sessionStateBucket = "session_state"

	identityKey    = "identity"
	currentRoomKey = "current_room"
)

// Store provides a BoltDB-backed store for all local game state.
type Store struct {
	db *bbolt.DB
}

// Open opens a BoltDB-backed store at the provided path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	db, err := bbolt.Open(cleanPath, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open storage db: %w", err)
	}

	store := &Store{db: db}
	if err := store.ensureBuckets(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying BoltDB database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// PutRoom persists a full room aggregate.
func (s *Store) PutRoom(ctx context.Context, r room.Room) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.db == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(r.ID) == "" {
		return fmt.Errorf("room id is required")
	}

	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal room: %w", err)
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(roomBucket))
		if bucket == nil {
			return fmt.Errorf("room bucket is missing")
		}
		return bucket.Put([]byte(r.ID), payload)
	})
}

// GetRoom fetches a room aggregate by ID.
func (s *Store) GetRoom(ctx context.Context, id string) (room.Room, error) {
	if err := ctx.Err(); err != nil {
		return room.Room{}, err
	}
	if s == nil || s.db == nil {
		return room.Room{}, fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(id) == "" {
		return room.Room{}, fmt.Errorf("room id is required")
	}

	var r room.Room
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(roomBucket))
		if bucket == nil {
			return fmt.Errorf("room bucket is missing")
		}
		payload := bucket.Get([]byte(id))
		if payload == nil {
			return storage.ErrNotFound
		}
		if err := json.Unmarshal(payload, &r); err != nil {
			return fmt.Errorf("unmarshal room: %w", err)
		}
		return nil
	})
	if err != nil {
		return room.Room{}, err
	}
	return r, nil
}

// BindInviteCode records a code -> room ID index entry.
func (s *Store) BindInviteCode(ctx context.Context, code, roomID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.db == nil {
		return fmt.Errorf("storage is not configured")
	}
	code = strings.TrimSpace(code)
	roomID = strings.TrimSpace(roomID)
	if code == "" {
		return fmt.Errorf("invite code is required")
	}
	if roomID == "" {
		return fmt.Errorf("room id is required")
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(inviteCodeBucket))
		if bucket == nil {
			return fmt.Errorf("invite code bucket is missing")
		}
		return bucket.Put([]byte(code), []byte(roomID))
	})
}

// ResolveInviteCode maps an invite code to its room ID.
func (s *Store) ResolveInviteCode(ctx context.Context, code string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if s == nil || s.db == nil {
		return "", fmt.Errorf("storage is not configured")
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return "", fmt.Errorf("invite code is required")
	}

	var roomID string
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(inviteCodeBucket))
		if bucket == nil {
			return fmt.Errorf("invite code bucket is missing")
		}
		payload := bucket.Get([]byte(code))
		if payload == nil {
			return storage.ErrNotFound
		}
		roomID = string(payload)
		return nil
	})
	if err != nil {
		return "", err
	}
	return roomID, nil
}

// InviteCodeExists reports whether a code is already bound.
func (s *Store) InviteCodeExists(ctx context.Context, code string) (bool, error) {
	_, err := s.ResolveInviteCode(ctx, code)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	return false, err
}

// PutIdentity persists the local identity record.
func (s *Store) PutIdentity(ctx context.Context, ident identity.Identity) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.db == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(ident.ID) == "" {
		return fmt.Errorf("identity id is required")
	}

	payload, err := json.Marshal(ident)
	if err != nil {
		return fmt.Errorf("marshal identity: %w", err)
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(identityBucket))
		if bucket == nil {
			return fmt.Errorf("identity bucket is missing")
		}
		return bucket.Put([]byte(identityKey), payload)
	})
}

// GetIdentity fetches the local identity record.
func (s *Store) GetIdentity(ctx context.Context) (identity.Identity, error) {
	if err := ctx.Err(); err != nil {
		return identity.Identity{}, err
	}
	if s == nil || s.db == nil {
		return identity.Identity{}, fmt.Errorf("storage is not configured")
	}

	var ident identity.Identity
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(identityBucket))
		if bucket == nil {
			return fmt.Errorf("identity bucket is missing")
		}
		payload := bucket.Get([]byte(identityKey))
		if payload == nil {
			return storage.ErrNotFound
		}
		if err := json.Unmarshal(payload, &ident); err != nil {
			return fmt.Errorf("unmarshal identity: %w", err)
		}
		return nil
	})
	if err != nil {
		return identity.Identity{}, err
	}
	return ident, nil
}

// SetCurrentRoomID records the active room pointer. An empty ID clears it.
func (s *Store) SetCurrentRoomID(ctx context.Context, roomID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.db == nil {
		return fmt.Errorf("storage is not configured")
	}

	roomID = strings.TrimSpace(roomID)
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(sessionStateBucket))
		if bucket == nil {
			return fmt.Errorf("session state bucket is missing")
		}
		if roomID == "" {
			return bucket.Delete([]byte(currentRoomKey))
		}
		return bucket.Put([]byte(currentRoomKey), []byte(roomID))
	})
}

// CurrentRoomID returns the active room pointer, or "" when unset.
func (s *Store) CurrentRoomID(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if s == nil || s.db == nil {
		return "", fmt.Errorf("storage is not configured")
	}

	var roomID string
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(sessionStateBucket))
		if bucket == nil {
			return fmt.Errorf("session state bucket is missing")
		}
		roomID = string(bucket.Get([]byte(currentRoomKey)))
		return nil
	})
	if err != nil {
		return "", err
	}
	return roomID, nil
}

func (s *Store) ensureBuckets() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		for _, name := range []string{roomBucket, inviteCodeBucket, identityBucket, sessionStateBucket} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return fmt.Errorf("create %s bucket: %w", name, err)
			}
		}
		return nil
	})
}
