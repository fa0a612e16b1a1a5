// Package access holds the Access Guard, the single authority deciding whether a
// request may read or post into a room.
package access

import (
	"context"
	"fmt"

	"sohbet-lite/core"
	"sohbet-lite/registry"

	"github.com/sirupsen/logrus"
)

type (
	// Proof is what a caller presents for a room. Both fields are optional.
	Proof struct {
		// CookieDigest is the value of the caller's room-scoped credential cookie.
		CookieDigest core.Digest
		// Password is a cleartext candidate supplied with this request.
		Password string
	}

	// PossessionPolicy decides whether a room cookie presented without a candidate
	// password grants entry.
	PossessionPolicy func(room *core.Room, cookie core.Digest) bool

	Guard struct {
		rooms      *registry.Rooms
		possession PossessionPolicy
	}

	Option func(*Guard)
)

// TrustOnPossession accepts any non-empty cookie without checking it against the
// room's digest. A stale or forged cookie value therefore grants entry. This is
// the default and reproduces the established behavior for returning users.
func TrustOnPossession(_ *core.Room, cookie core.Digest) bool {
	return !cookie.IsZero()
}

// VerifyPossession accepts a cookie only if it equals the room's current digest.
func VerifyPossession(room *core.Room, cookie core.Digest) bool {
	return !cookie.IsZero() && room.Protected() && cookie == room.PasswordDigest
}

func WithPossessionPolicy(p PossessionPolicy) Option {
	return func(g *Guard) {
		g.possession = p
	}
}

func NewGuard(rooms *registry.Rooms, opts ...Option) *Guard {
	g := &Guard{rooms: rooms, possession: TrustOnPossession}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// CanEnter decides access for room:
//  1. a room without a password digest is open to everyone;
//  2. a cookie together with a candidate that re-hashes to the cookie is accepted;
//  3. a cookie without any candidate is judged by the possession policy;
//  4. otherwise the candidate is verified against the room's digest.
func (g *Guard) CanEnter(ctx context.Context, room string, proof Proof) (bool, error) {
	r, err := g.rooms.Find(ctx, room)
	if err != nil {
		return false, err
	}
	return g.decide(r, proof), nil
}

func (g *Guard) decide(room *core.Room, proof Proof) bool {
	if !room.Protected() {
		return true
	}
	cookie := proof.CookieDigest
	if !cookie.IsZero() && proof.Password != "" && g.rooms.Digest(proof.Password) == cookie {
		return true
	}
	if !cookie.IsZero() && proof.Password == "" {
		return g.possession(room, cookie)
	}
	return g.rooms.Check(room, proof.Password)
}

// Authorize is CanEnter reporting a denial as core.ErrNotAuthorized.
func (g *Guard) Authorize(ctx context.Context, room string, proof Proof) error {
	ok, err := g.CanEnter(ctx, room, proof)
	if err != nil {
		return err
	}
	if !ok {
		logrus.WithField("room", room).Debug("Room access denied")
		return fmt.Errorf("%w: wrong password for room %q", core.ErrNotAuthorized, room)
	}
	return nil
}

// Enter handles an explicit password entry. The room is created as an open room
// if it was never seen. The password is checked strictly, cookies play no part.
// On success it returns the digest to hand back as the room cookie, which is zero
// when password is empty.
func (g *Guard) Enter(ctx context.Context, room, password string) (core.Digest, error) {
	r, err := g.rooms.GetOrCreate(ctx, room, "")
	if err != nil {
		return "", err
	}
	if !g.rooms.Check(r, password) {
		logrus.WithField("room", r.Name).Info("Room entry refused")
		return "", fmt.Errorf("%w: wrong password for room %q", core.ErrNotAuthorized, r.Name)
	}
	return g.rooms.Digest(password), nil
}
