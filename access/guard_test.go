package access

import (
	"context"
	"testing"

	"sohbet-lite/core"
	"sohbet-lite/credentials"
	"sohbet-lite/registry"
	"sohbet-lite/stores/memory"

	"github.com/stretchr/testify/require"
)

func setup(t *testing.T, opts ...Option) (*Guard, *registry.Rooms) {
	t.Helper()
	hasher, err := credentials.New([]byte("test-secret"))
	require.NoError(t, err)
	rooms := registry.NewRooms(memory.NewStore(), hasher, "genel")
	return NewGuard(rooms, opts...), rooms
}

func TestCanEnter(t *testing.T) {
	ctx := context.Background()
	guard, rooms := setup(t)

	_, err := rooms.GetOrCreate(ctx, "gizli", "1234")
	require.NoError(t, err)
	_, err = rooms.GetOrCreate(ctx, "acik", "")
	require.NoError(t, err)
	good := rooms.Digest("1234")

	tests := []struct {
		name  string
		room  string
		proof Proof
		want  bool
	}{
		{name: "open room without proof", room: "acik", want: true},
		{name: "never seen room", room: "yeni", want: true},
		{name: "protected without proof", room: "gizli", want: false},
		{name: "correct password", room: "gizli", proof: Proof{Password: "1234"}, want: true},
		{name: "wrong password", room: "gizli", proof: Proof{Password: "0000"}, want: false},
		{name: "cookie matching password", room: "gizli", proof: Proof{CookieDigest: good, Password: "1234"}, want: true},
		{name: "valid cookie alone", room: "gizli", proof: Proof{CookieDigest: good}, want: true},
		{name: "stale cookie with wrong password", room: "gizli", proof: Proof{CookieDigest: "stale", Password: "0000"}, want: false},
		{name: "stale cookie with correct password", room: "gizli", proof: Proof{CookieDigest: "stale", Password: "1234"}, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := guard.CanEnter(ctx, tt.room, tt.proof)
			require.NoError(t, err)
			require.Equal(t, tt.want, ok)
		})
	}
}

// Any non-empty room cookie grants entry under the default policy, even one that
// was never issued for this room.
func TestTrustOnPossession(t *testing.T) {
	ctx := context.Background()
	guard, rooms := setup(t)
	_, err := rooms.GetOrCreate(ctx, "gizli", "1234")
	require.NoError(t, err)

	ok, err := guard.CanEnter(ctx, "gizli", Proof{CookieDigest: "forged"})
	require.NoError(t, err)
	require.True(t, ok)
}

func TestVerifyPossession(t *testing.T) {
	ctx := context.Background()
	guard, rooms := setup(t, WithPossessionPolicy(VerifyPossession))
	_, err := rooms.GetOrCreate(ctx, "gizli", "1234")
	require.NoError(t, err)

	ok, err := guard.CanEnter(ctx, "gizli", Proof{CookieDigest: "forged"})
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = guard.CanEnter(ctx, "gizli", Proof{CookieDigest: rooms.Digest("1234")})
	require.NoError(t, err)
	require.True(t, ok)
}

func TestAuthorize(t *testing.T) {
	ctx := context.Background()
	guard, rooms := setup(t)
	_, err := rooms.GetOrCreate(ctx, "gizli", "1234")
	require.NoError(t, err)

	require.ErrorIs(t, guard.Authorize(ctx, "gizli", Proof{Password: "0000"}), core.ErrNotAuthorized)
	require.NoError(t, guard.Authorize(ctx, "gizli", Proof{Password: "1234"}))
}

func TestEnter(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	guard, rooms := setup(t)
	_, err := rooms.GetOrCreate(ctx, "gizli", "1234")
	req.NoError(err)

	_, err = guard.Enter(ctx, "gizli", "0000")
	req.ErrorIs(err, core.ErrNotAuthorized)

	digest, err := guard.Enter(ctx, "gizli", "1234")
	req.NoError(err)
	req.Equal(rooms.Digest("1234"), digest)

	digest, err = guard.Enter(ctx, "yeni", "")
	req.NoError(err)
	req.True(digest.IsZero())

	room, err := rooms.Find(ctx, "yeni")
	req.NoError(err)
	req.NotNil(room)
	req.False(room.Protected())
}
