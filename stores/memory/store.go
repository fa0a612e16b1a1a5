package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"sohbet-lite/core"

	"github.com/sirupsen/logrus"
)

// memStore implements every store interface in process memory. Each instance is
// independent, so tests can run several side by side.
type memStore struct {
	mu       sync.RWMutex
	users    map[string]core.User // by name
	tokens   map[string]string    // token -> name
	rooms    map[string]core.Room
	messages map[string][]core.Message
	media    map[core.MediaHandle][]byte
	lastID   int64
}

// NewStore creates a new in-memory store.
func NewStore() *memStore {
	return &memStore{
		users:    make(map[string]core.User),
		tokens:   make(map[string]string),
		rooms:    make(map[string]core.Room),
		messages: make(map[string][]core.Message),
		media:    make(map[core.MediaHandle][]byte),
	}
}

// CreateUser is part of the UserStore interface.
func (s *memStore) CreateUser(ctx context.Context, user *core.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := logrus.WithField("user", user.Name)
	if _, taken := s.users[user.Name]; taken {
		log.Warn("User name already taken")
		return fmt.Errorf("%w: user %s exists", core.ErrConflict, user.Name)
	}
	if _, taken := s.tokens[user.Token]; taken {
		return fmt.Errorf("token collision for user %s", user.Name)
	}

	s.users[user.Name] = *user
	s.tokens[user.Token] = user.Name
	log.Info("User created successfully")
	return nil
}

// FindUserByToken is part of the UserStore interface.
func (s *memStore) FindUserByToken(ctx context.Context, token string) (*core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	name, ok := s.tokens[token]
	if !ok {
		return nil, core.ErrNotFound
	}
	user := s.users[name]
	return &user, nil
}

// GetOrCreateRoom is part of the RoomStore interface.
func (s *memStore) GetOrCreateRoom(ctx context.Context, room *core.Room) (*core.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.rooms[room.Name]; ok {
		return &existing, nil
	}
	s.rooms[room.Name] = *room
	logrus.WithFields(logrus.Fields{
		"room":      room.Name,
		"protected": room.Protected(),
	}).Info("Room created successfully")

	created := *room
	return &created, nil
}

// FindRoom is part of the RoomStore interface.
func (s *memStore) FindRoom(ctx context.Context, name string) (*core.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	room, ok := s.rooms[name]
	if !ok {
		return nil, core.ErrNotFound
	}
	return &room, nil
}

// ListRooms is part of the RoomStore interface. Rooms are sorted by name.
func (s *memStore) ListRooms(ctx context.Context) ([]*core.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rooms := make([]*core.Room, 0, len(s.rooms))
	for _, room := range s.rooms {
		room := room
		rooms = append(rooms, &room)
	}
	sort.Slice(rooms, func(i, j int) bool {
		return rooms[i].Name < rooms[j].Name
	})
	return rooms, nil
}

// AppendMessage is part of the MessageStore interface. The lock serializes
// appends, so slice order is arrival order.
func (s *memStore) AppendMessage(ctx context.Context, message *core.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastID++
	message.ID = s.lastID
	s.messages[message.Room] = append(s.messages[message.Room], *message)
	logrus.WithFields(logrus.Fields{
		"room": message.Room,
		"kind": message.Content.Kind(),
	}).Debug("Message appended")
	return nil
}

// RecentMessages is part of the MessageStore interface.
func (s *memStore) RecentMessages(ctx context.Context, room string, limit int) ([]*core.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		return []*core.Message{}, nil
	}
	entries := s.messages[room]
	out := make([]*core.Message, 0, min(limit, len(entries)))
	for i := len(entries) - 1; i >= 0 && len(out) < limit; i-- {
		message := entries[i]
		out = append(out, &message)
	}
	return out, nil
}

// SaveMedia is part of the MediaStore interface.
func (s *memStore) SaveMedia(ctx context.Context, ext string, data []byte) (core.MediaHandle, error) {
	handle := core.NewMediaHandle(ext)

	s.mu.Lock()
	s.media[handle] = append([]byte(nil), data...)
	s.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"handle":      handle,
		"data_length": len(data),
	}).Info("Media saved successfully")
	return handle, nil
}

// ReadMedia is part of the MediaStore interface.
func (s *memStore) ReadMedia(ctx context.Context, handle core.MediaHandle) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.media[handle]
	if !ok {
		logrus.WithField("handle", handle).Warn("Media with specified handle not found")
		return nil, fmt.Errorf("%w: media %s", core.ErrNotFound, handle)
	}
	return data, nil
}
