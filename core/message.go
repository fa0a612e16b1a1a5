package core

import (
	"context"
	"fmt"
	"time"
)

const (
	MaxAuthorLength = 20
	MaxBodyLength   = 500
)

// Kind is the stored discriminator of a message's content.
type Kind string

const (
	KindText  Kind = "text"
	KindImage Kind = "image"
	KindVideo Kind = "video"
)

type (
	// Content is the payload of a message: exactly one of Text, Image or Video.
	// The interface is sealed so no other variant can be constructed.
	Content interface {
		Kind() Kind
		sealed()
	}

	// Text is a display-escaped body of at most MaxBodyLength characters.
	Text struct {
		Body string
	}

	Image struct {
		Handle MediaHandle
	}

	Video struct {
		Handle MediaHandle
	}

	// Message is an immutable entry of a room's append-only log. Author and text
	// bodies are already escaped for direct embedding in markup.
	Message struct {
		ID        int64
		Room      string
		Author    string
		Content   Content
		CreatedAt time.Time
	}

	// MessageStore is the append-only per-room log.
	MessageStore interface {
		AppendMessage(ctx context.Context, message *Message) error

		// RecentMessages returns at most limit messages of room, newest first.
		RecentMessages(ctx context.Context, room string, limit int) ([]*Message, error)
	}
)

func (Text) Kind() Kind  { return KindText }
func (Image) Kind() Kind { return KindImage }
func (Video) Kind() Kind { return KindVideo }

func (Text) sealed()  {}
func (Image) sealed() {}
func (Video) sealed() {}

// Body returns the text body, or "" for media messages.
func (m *Message) Body() string {
	if t, ok := m.Content.(Text); ok {
		return t.Body
	}
	return ""
}

// Media returns the media handle, or "" for text messages.
func (m *Message) Media() MediaHandle {
	switch c := m.Content.(type) {
	case Image:
		return c.Handle
	case Video:
		return c.Handle
	}
	return ""
}

// DecodeContent rebuilds a Content from its stored columns.
func DecodeContent(kind Kind, body string, media MediaHandle) (Content, error) {
	switch kind {
	case KindText, "":
		return Text{Body: body}, nil
	case KindImage:
		return Image{Handle: media}, nil
	case KindVideo:
		return Video{Handle: media}, nil
	}
	return nil, fmt.Errorf("unknown message kind %q", kind)
}
