package sqlstore

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"sohbet-lite/core"

	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *sqlStore {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "chat.db")
	store, err := Open(context.Background(), "sqlite", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestOpenUnknownDialect(t *testing.T) {
	_, err := Open(context.Background(), "oracle", "")
	require.Error(t, err)
}

func TestRebind(t *testing.T) {
	req := require.New(t)
	req.Equal("SELECT ? , ?", dialects["sqlite"].rebind("SELECT ? , ?"))
	req.Equal("INSERT INTO t VALUES ($1, $2, $3)", dialects["postgres"].rebind("INSERT INTO t VALUES (?, ?, ?)"))
}

func TestUsers(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	store := openTestStore(t)

	now := time.Now().UTC().Truncate(time.Millisecond)
	req.NoError(store.CreateUser(ctx, &core.User{Name: "ayse", Token: "t1", CreatedAt: now}))

	err := store.CreateUser(ctx, &core.User{Name: "ayse", Token: "t2", CreatedAt: now})
	req.True(errors.Is(err, core.ErrConflict))

	user, err := store.FindUserByToken(ctx, "t1")
	req.NoError(err)
	req.Equal("ayse", user.Name)
	req.True(now.Equal(user.CreatedAt))

	_, err = store.FindUserByToken(ctx, "t2")
	req.ErrorIs(err, core.ErrNotFound)
}

func TestConcurrentRegistrationSameName(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		created   int
		conflicts int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := store.CreateUser(ctx, &core.User{Name: "mehmet", Token: string(rune('a' + i)), CreatedAt: time.Now()})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				created++
			case errors.Is(err, core.ErrConflict):
				conflicts++
			}
		}(i)
	}
	wg.Wait()

	require.Equal(t, 1, created)
	require.Equal(t, 7, conflicts)
}

func TestRoomsFirstWriterWins(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	store := openTestStore(t)

	room, err := store.GetOrCreateRoom(ctx, &core.Room{Name: "genel", PasswordDigest: "d1", CreatedAt: time.Now()})
	req.NoError(err)
	req.Equal(core.Digest("d1"), room.PasswordDigest)

	room, err = store.GetOrCreateRoom(ctx, &core.Room{Name: "genel", PasswordDigest: "d2", CreatedAt: time.Now()})
	req.NoError(err)
	req.Equal(core.Digest("d1"), room.PasswordDigest)

	open, err := store.GetOrCreateRoom(ctx, &core.Room{Name: "acik", CreatedAt: time.Now()})
	req.NoError(err)
	req.False(open.Protected())

	_, err = store.FindRoom(ctx, "yok")
	req.ErrorIs(err, core.ErrNotFound)

	rooms, err := store.ListRooms(ctx)
	req.NoError(err)
	req.Len(rooms, 2)
	req.Equal("acik", rooms[0].Name)
	req.Equal("genel", rooms[1].Name)
}

func TestMessages(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	store := openTestStore(t)

	handle := core.NewMediaHandle("png")
	contents := []core.Content{
		core.Text{Body: "bir"},
		core.Image{Handle: handle},
		core.Text{Body: "iki"},
	}
	for _, c := range contents {
		req.NoError(store.AppendMessage(ctx, &core.Message{Room: "genel", Author: "ayse", Content: c, CreatedAt: time.Now()}))
	}
	req.NoError(store.AppendMessage(ctx, &core.Message{Room: "baska", Author: "ali", Content: core.Text{Body: "x"}, CreatedAt: time.Now()}))

	recent, err := store.RecentMessages(ctx, "genel", 2)
	req.NoError(err)
	req.Len(recent, 2)
	req.Equal(core.Text{Body: "iki"}, recent[0].Content)
	req.Equal(core.Image{Handle: handle}, recent[1].Content)
	req.Greater(recent[0].ID, recent[1].ID)

	empty, err := store.RecentMessages(ctx, "bos", 10)
	req.NoError(err)
	req.Empty(empty)

	none, err := store.RecentMessages(ctx, "genel", 0)
	req.NoError(err)
	req.Empty(none)
}
