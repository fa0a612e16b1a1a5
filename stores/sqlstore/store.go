package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"sohbet-lite/core"

	"github.com/sirupsen/logrus"
)

type sqlStore struct {
	db      *sql.DB
	dialect dialect
}

// NewStore opens the relational store and creates its schema. It exits the
// process on failure.
func NewStore(dialectName, dataSourceName string) *sqlStore {
	store, err := Open(context.Background(), dialectName, dataSourceName)
	if err != nil {
		log.Fatalf("failed to open %s database: %v", dialectName, err)
	}
	return store
}

// Open connects to dataSourceName using dialectName ("sqlite" or "postgres") and
// migrates the schema.
func Open(ctx context.Context, dialectName, dataSourceName string) (*sqlStore, error) {
	d, err := lookupDialect(dialectName)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(d.driver, dataSourceName)
	if err != nil {
		return nil, err
	}
	if d.singleConn {
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(25)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, err
	}

	for i, stmt := range d.schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrate stmt %d: %w", i, err)
		}
	}

	return &sqlStore{db: db, dialect: d}, nil
}

func (s *sqlStore) Close() error {
	return s.db.Close()
}

// CreateUser is part of the UserStore interface. The UNIQUE constraint on
// username decides concurrent registrations of the same name.
func (s *sqlStore) CreateUser(ctx context.Context, user *core.User) error {
	log := logrus.WithField("user", user.Name)

	res, err := s.db.ExecContext(ctx,
		s.dialect.rebind("INSERT INTO users (username, token, created_at) VALUES (?, ?, ?) ON CONFLICT (username) DO NOTHING"),
		user.Name, user.Token, user.CreatedAt.UnixMilli())
	if err != nil {
		log.WithError(err).Error("Failed to create user")
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		log.Warn("User name already taken")
		return fmt.Errorf("%w: user %s exists", core.ErrConflict, user.Name)
	}

	log.Info("User created successfully")
	return nil
}

// FindUserByToken is part of the UserStore interface.
func (s *sqlStore) FindUserByToken(ctx context.Context, token string) (*core.User, error) {
	var user core.User
	var createdAt int64
	err := s.db.QueryRowContext(ctx,
		s.dialect.rebind("SELECT username, token, created_at FROM users WHERE token = ?"),
		token).Scan(&user.Name, &user.Token, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrNotFound
		}
		logrus.WithError(err).Error("Failed to retrieve user")
		return nil, err
	}
	user.CreatedAt = time.UnixMilli(createdAt).UTC()
	return &user, nil
}

// GetOrCreateRoom is part of the RoomStore interface. ON CONFLICT DO NOTHING keeps
// the first writer's digest; the follow-up select reads whichever row won.
func (s *sqlStore) GetOrCreateRoom(ctx context.Context, room *core.Room) (*core.Room, error) {
	log := logrus.WithField("room", room.Name)

	var passhash sql.NullString
	if !room.PasswordDigest.IsZero() {
		passhash = sql.NullString{String: string(room.PasswordDigest), Valid: true}
	}
	res, err := s.db.ExecContext(ctx,
		s.dialect.rebind("INSERT INTO rooms (name, passhash, created_at) VALUES (?, ?, ?) ON CONFLICT (name) DO NOTHING"),
		room.Name, passhash, room.CreatedAt.UnixMilli())
	if err != nil {
		log.WithError(err).Error("Failed to create room")
		return nil, err
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		log.WithField("protected", room.Protected()).Info("Room created successfully")
	}

	return s.FindRoom(ctx, room.Name)
}

// FindRoom is part of the RoomStore interface.
func (s *sqlStore) FindRoom(ctx context.Context, name string) (*core.Room, error) {
	log := logrus.WithField("room", name)
	log.Debug("Retrieving room by name")

	row := s.db.QueryRowContext(ctx,
		s.dialect.rebind("SELECT name, passhash, created_at FROM rooms WHERE name = ?"), name)
	room, err := scanRoom(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrNotFound
		}
		log.WithError(err).Error("Failed to retrieve room")
		return nil, err
	}
	return room, nil
}

// ListRooms is part of the RoomStore interface.
func (s *sqlStore) ListRooms(ctx context.Context) ([]*core.Room, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT name, passhash, created_at FROM rooms ORDER BY name")
	if err != nil {
		logrus.WithError(err).Error("Failed to list rooms")
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			logrus.WithError(cerr).Warn("Failed to close room rows")
		}
	}()

	rooms := []*core.Room{}
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, room)
	}
	return rooms, rows.Err()
}

// AppendMessage is part of the MessageStore interface.
func (s *sqlStore) AppendMessage(ctx context.Context, message *core.Message) error {
	log := logrus.WithFields(logrus.Fields{
		"room": message.Room,
		"kind": message.Content.Kind(),
	})

	var body, media sql.NullString
	switch c := message.Content.(type) {
	case core.Text:
		body = sql.NullString{String: c.Body, Valid: true}
	case core.Image:
		media = sql.NullString{String: string(c.Handle), Valid: true}
	case core.Video:
		media = sql.NullString{String: string(c.Handle), Valid: true}
	}

	err := s.db.QueryRowContext(ctx,
		s.dialect.rebind("INSERT INTO messages (room, username, type, msg, media, created_at) VALUES (?, ?, ?, ?, ?, ?) RETURNING id"),
		message.Room, message.Author, string(message.Content.Kind()), body, media, message.CreatedAt.UnixMilli(),
	).Scan(&message.ID)
	if err != nil {
		log.WithError(err).Error("Failed to append message")
		return err
	}
	log.WithField("message_id", message.ID).Debug("Message appended")
	return nil
}

// RecentMessages is part of the MessageStore interface.
func (s *sqlStore) RecentMessages(ctx context.Context, room string, limit int) ([]*core.Message, error) {
	log := logrus.WithFields(logrus.Fields{"room": room, "limit": limit})
	log.Debug("Listing recent messages")

	if limit <= 0 {
		return []*core.Message{}, nil
	}

	rows, err := s.db.QueryContext(ctx,
		s.dialect.rebind("SELECT id, room, username, type, msg, media, created_at FROM messages WHERE room = ? ORDER BY id DESC LIMIT ?"),
		room, limit)
	if err != nil {
		log.WithError(err).Error("Failed to list messages")
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			log.WithError(cerr).Warn("Failed to close message rows")
		}
	}()

	messages := []*core.Message{}
	for rows.Next() {
		var (
			m         core.Message
			kind      string
			body      sql.NullString
			media     sql.NullString
			createdAt int64
		)
		if err := rows.Scan(&m.ID, &m.Room, &m.Author, &kind, &body, &media, &createdAt); err != nil {
			log.WithError(err).Error("Failed to scan message")
			return nil, err
		}
		m.Content, err = core.DecodeContent(core.Kind(kind), body.String, core.MediaHandle(media.String))
		if err != nil {
			log.WithError(err).WithField("message_id", m.ID).Warn("Skipping message with unknown kind")
			continue
		}
		m.CreatedAt = time.UnixMilli(createdAt).UTC()
		messages = append(messages, &m)
	}
	return messages, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRoom(row scanner) (*core.Room, error) {
	var (
		room      core.Room
		passhash  sql.NullString
		createdAt int64
	)
	if err := row.Scan(&room.Name, &passhash, &createdAt); err != nil {
		return nil, err
	}
	room.PasswordDigest = core.Digest(passhash.String)
	room.CreatedAt = time.UnixMilli(createdAt).UTC()
	return &room, nil
}
