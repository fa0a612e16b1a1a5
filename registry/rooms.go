package registry

import (
	"context"
	"errors"
	"time"

	"sohbet-lite/core"

	"github.com/sirupsen/logrus"
)

// Hasher is the part of the credential hasher the Room Registry needs.
type Hasher interface {
	Digest(plaintext string) core.Digest
	Matches(plaintext string, want core.Digest) bool
}

// Rooms is the Room Registry. The first registration of a name decides for the
// room's lifetime whether it is protected and by which password.
type Rooms struct {
	store       core.RoomStore
	hasher      Hasher
	defaultRoom string
	now         func() time.Time
}

func NewRooms(store core.RoomStore, hasher Hasher, defaultRoom string) *Rooms {
	return &Rooms{store: store, hasher: hasher, defaultRoom: defaultRoom, now: time.Now}
}

// Normalize applies the room naming rules, falling back to the default room.
func (r *Rooms) Normalize(name string) string {
	return core.NormalizeRoomName(name, r.defaultRoom)
}

// GetOrCreate returns the room called name, creating it with digest(password) if
// it does not exist. For an existing room the password is ignored; callers can tell
// by comparing the returned digest with their own.
func (r *Rooms) GetOrCreate(ctx context.Context, name, password string) (*core.Room, error) {
	candidate := &core.Room{
		Name:           r.Normalize(name),
		PasswordDigest: r.hasher.Digest(password),
		CreatedAt:      r.now().UTC(),
	}
	room, err := r.store.GetOrCreateRoom(ctx, candidate)
	if err != nil {
		return nil, err
	}
	if password != "" && room.PasswordDigest != candidate.PasswordDigest {
		logrus.WithField("room", room.Name).Debug("Room already registered, password left unchanged")
	}
	return room, nil
}

// Find returns the room or nil if it was never registered.
func (r *Rooms) Find(ctx context.Context, name string) (*core.Room, error) {
	room, err := r.store.FindRoom(ctx, r.Normalize(name))
	if errors.Is(err, core.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return room, nil
}

func (r *Rooms) RequiresPassword(ctx context.Context, name string) (bool, error) {
	room, err := r.Find(ctx, name)
	if err != nil {
		return false, err
	}
	return room.Protected(), nil
}

// VerifyPassword is unconditionally true for open and never-registered rooms.
func (r *Rooms) VerifyPassword(ctx context.Context, name, candidate string) (bool, error) {
	room, err := r.Find(ctx, name)
	if err != nil {
		return false, err
	}
	return r.Check(room, candidate), nil
}

// Check is VerifyPassword for an already loaded room.
func (r *Rooms) Check(room *core.Room, candidate string) bool {
	if !room.Protected() {
		return true
	}
	return r.hasher.Matches(candidate, room.PasswordDigest)
}

// Digest exposes the keyed digest used for this registry's rooms.
func (r *Rooms) Digest(password string) core.Digest {
	return r.hasher.Digest(password)
}

func (r *Rooms) List(ctx context.Context) ([]*core.Room, error) {
	return r.store.ListRooms(ctx)
}
