package filesystem

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"sohbet-lite/core"

	"github.com/sirupsen/logrus"
)

type fsStore struct {
	basePath string
}

// NewStore creates a media store writing one file per upload under basePath.
func NewStore(basePath string) *fsStore {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		log.Fatalf("failed to create base directory: %v", err)
	}
	return &fsStore{basePath: basePath}
}

// SaveMedia is part of the MediaStore interface.
func (s *fsStore) SaveMedia(ctx context.Context, ext string, data []byte) (core.MediaHandle, error) {
	handle := core.NewMediaHandle(ext)
	filePath := filepath.Join(s.basePath, string(handle))
	log := logrus.WithFields(logrus.Fields{
		"handle":      handle,
		"file_path":   filePath,
		"data_length": len(data),
	})

	if err := os.WriteFile(filePath, data, 0644); err != nil {
		log.WithError(err).Error("Failed to write media file")
		return "", err
	}

	log.Info("Media saved successfully")
	return handle, nil
}

// ReadMedia is part of the MediaStore interface.
func (s *fsStore) ReadMedia(ctx context.Context, handle core.MediaHandle) ([]byte, error) {
	log := logrus.WithField("handle", handle)
	if !handle.Valid() {
		log.Warn("Rejected malformed media handle")
		return nil, fmt.Errorf("%w: media %s", core.ErrNotFound, handle)
	}

	data, err := os.ReadFile(filepath.Join(s.basePath, string(handle)))
	if err != nil {
		if os.IsNotExist(err) {
			log.Warn("Media with specified handle not found")
			return nil, fmt.Errorf("%w: media %s", core.ErrNotFound, handle)
		}
		log.WithError(err).Error("Failed to read media file")
		return nil, err
	}

	log.Debug("Media retrieved successfully")
	return data, nil
}
