package core

import (
	"context"
	"strings"
	"time"
)

// MaxRoomNameLength is counted in characters, not bytes.
const MaxRoomNameLength = 32

type (
	// Digest is a secret-keyed one-way transformation of a password.
	// The zero value means "no password".
	Digest string

	// Room is a named message channel. PasswordDigest is fixed by the first
	// registration of the name and never changes afterwards.
	Room struct {
		Name           string    `json:"name"`
		PasswordDigest Digest    `json:"-"`
		CreatedAt      time.Time `json:"createdAt"`
	}

	// RoomStore persists rooms.
	RoomStore interface {
		// GetOrCreateRoom inserts room unless a room with the same name exists and
		// returns whatever row is stored afterwards. An existing room is returned
		// unchanged; the supplied digest is then ignored.
		GetOrCreateRoom(ctx context.Context, room *Room) (*Room, error)

		// FindRoom returns ErrNotFound for a name that was never registered.
		FindRoom(ctx context.Context, name string) (*Room, error)

		ListRooms(ctx context.Context) ([]*Room, error)
	}
)

func (d Digest) IsZero() bool {
	return d == ""
}

// Protected reports whether entering the room requires a password.
func (r *Room) Protected() bool {
	return r != nil && !r.PasswordDigest.IsZero()
}

// NormalizeRoomName trims name, falls back to fallback when nothing is left and
// truncates the result to MaxRoomNameLength characters.
func NormalizeRoomName(name, fallback string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		name = strings.TrimSpace(fallback)
	}
	return Truncate(name, MaxRoomNameLength)
}
