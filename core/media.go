package core

import (
	"context"
	"path"
	"strings"

	"github.com/oklog/ulid/v2"
	"github.com/samber/lo"
)

// MediaHandle is an opaque reference to an uploaded blob, shaped "<ULID>.<ext>".
type MediaHandle string

var (
	ImageExtensions = []string{"jpg", "jpeg", "png", "gif", "webp"}
	VideoExtensions = []string{"mp4", "webm", "3gp", "mov", "m4v"}
)

// MediaStore is the blob sink for uploaded media.
type MediaStore interface {
	SaveMedia(ctx context.Context, ext string, data []byte) (MediaHandle, error)

	// ReadMedia returns ErrNotFound for unknown handles.
	ReadMedia(ctx context.Context, handle MediaHandle) ([]byte, error)
}

// Extension returns the lower-cased trailing extension of filename, or "".
// Only the name is inspected, never the content.
func Extension(filename string) string {
	i := strings.LastIndex(filename, ".")
	if i < 0 {
		return ""
	}
	return strings.ToLower(filename[i+1:])
}

// MediaKind maps an allow-listed extension to its message kind.
func MediaKind(ext string) (Kind, bool) {
	switch {
	case lo.Contains(ImageExtensions, ext):
		return KindImage, true
	case lo.Contains(VideoExtensions, ext):
		return KindVideo, true
	}
	return "", false
}

func NewMediaHandle(ext string) MediaHandle {
	return MediaHandle(ulid.Make().String() + "." + ext)
}

// Valid reports whether h is a well-formed handle. Stores reject anything else
// so a handle can never address a path outside the sink.
func (h MediaHandle) Valid() bool {
	s := string(h)
	if path.Base(s) != s {
		return false
	}
	id, ext, ok := strings.Cut(s, ".")
	if !ok {
		return false
	}
	if _, err := ulid.ParseStrict(id); err != nil {
		return false
	}
	_, ok = MediaKind(ext)
	return ok
}
