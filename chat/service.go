// Package chat is the message log service: it normalizes and escapes posts on the
// way in and hands out chronological windows on the way out.
package chat

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"sohbet-lite/core"
	"sohbet-lite/registry"

	"github.com/samber/lo/mutable"
	"github.com/sirupsen/logrus"
)

type Service struct {
	messages  core.MessageStore
	media     core.MediaStore
	rooms     *registry.Rooms
	guestName string
	maxUpload int
	now       func() time.Time
}

type Option func(*Service)

// WithGuestName sets the author used when a post carries no name.
func WithGuestName(name string) Option {
	return func(s *Service) {
		s.guestName = name
	}
}

// WithMaxUpload bounds the size of a single media upload in bytes.
func WithMaxUpload(n int) Option {
	return func(s *Service) {
		s.maxUpload = n
	}
}

func NewService(messages core.MessageStore, media core.MediaStore, rooms *registry.Rooms, opts ...Option) *Service {
	s := &Service{
		messages:  messages,
		media:     media,
		rooms:     rooms,
		guestName: "misafir",
		maxUpload: 10 << 20,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// MaxUpload is the configured upload bound in bytes.
func (s *Service) MaxUpload() int {
	return s.maxUpload
}

// Append stores one message. The room name is normalized and the room is created
// open if it was never seen. Author and text body are truncated and then escaped
// for markup, so readers receive display-ready strings.
func (s *Service) Append(ctx context.Context, room, author string, content core.Content) (*core.Message, error) {
	if content == nil {
		return nil, fmt.Errorf("%w: empty message", core.ErrInvalidInput)
	}

	r, err := s.rooms.GetOrCreate(ctx, room, "")
	if err != nil {
		return nil, err
	}

	author = strings.TrimSpace(author)
	if author == "" {
		author = s.guestName
	}

	if t, ok := content.(core.Text); ok {
		content = core.Text{Body: html.EscapeString(core.Truncate(t.Body, core.MaxBodyLength))}
	}

	message := &core.Message{
		Room:      r.Name,
		Author:    html.EscapeString(core.Truncate(author, core.MaxAuthorLength)),
		Content:   content,
		CreatedAt: s.now().UTC(),
	}
	if err := s.messages.AppendMessage(ctx, message); err != nil {
		return nil, err
	}
	return message, nil
}

// PostText appends a text message. Blank bodies are rejected.
func (s *Service) PostText(ctx context.Context, room, author, body string) (*core.Message, error) {
	if strings.TrimSpace(body) == "" {
		return nil, fmt.Errorf("%w: empty message", core.ErrInvalidInput)
	}
	return s.Append(ctx, room, author, core.Text{Body: body})
}

// Upload stores data in the blob sink and appends an image or video message
// referencing it. Only the filename's extension decides the kind.
func (s *Service) Upload(ctx context.Context, room, author, filename string, data []byte) (*core.Message, error) {
	log := logrus.WithFields(logrus.Fields{
		"room":        room,
		"filename":    filename,
		"data_length": len(data),
	})

	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty upload", core.ErrInvalidInput)
	}
	if len(data) > s.maxUpload {
		return nil, fmt.Errorf("%w: upload of %d bytes exceeds limit of %d", ErrTooLarge, len(data), s.maxUpload)
	}
	ext := core.Extension(filename)
	kind, ok := core.MediaKind(ext)
	if !ok {
		log.Debug("Rejected upload with disallowed extension")
		return nil, fmt.Errorf("%w: file type %q is not allowed", core.ErrInvalidInput, ext)
	}

	handle, err := s.media.SaveMedia(ctx, ext, data)
	if err != nil {
		log.WithError(err).Error("Failed to save media")
		return nil, err
	}

	var content core.Content = core.Image{Handle: handle}
	if kind == core.KindVideo {
		content = core.Video{Handle: handle}
	}
	return s.Append(ctx, room, author, content)
}

// Recent returns up to limit of the newest messages of room, oldest first.
// Reading never creates the room.
func (s *Service) Recent(ctx context.Context, room string, limit int) ([]*core.Message, error) {
	if limit < 1 {
		return nil, fmt.Errorf("%w: limit must be positive", core.ErrInvalidInput)
	}
	newest, err := s.messages.RecentMessages(ctx, s.rooms.Normalize(room), limit)
	if err != nil {
		return nil, err
	}
	mutable.Reverse(newest)
	return newest, nil
}

// ReadMedia returns a stored blob. Malformed handles read as not found.
func (s *Service) ReadMedia(ctx context.Context, handle core.MediaHandle) ([]byte, error) {
	if !handle.Valid() {
		return nil, fmt.Errorf("%w: media %s", core.ErrNotFound, handle)
	}
	return s.media.ReadMedia(ctx, handle)
}
