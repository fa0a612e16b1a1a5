package aws

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"sohbet-lite/core"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/gabriel-vasile/mimetype"
	"github.com/sirupsen/logrus"
)

// keyPrefix keeps chat media apart from anything else sharing the bucket.
const keyPrefix = "media/"

type s3Store struct {
	s3Client *s3.Client
	bucket   string
}

// NewStore creates a media store backed by an S3 bucket. Credentials and region
// come from the default AWS configuration chain.
func NewStore(bucketName string) *s3Store {
	cfg, err := config.LoadDefaultConfig(context.TODO())
	if err != nil {
		log.Fatalf("unable to load SDK config, %v", err)
	}

	return &s3Store{
		s3Client: s3.NewFromConfig(cfg),
		bucket:   bucketName,
	}
}

// SaveMedia is part of the MediaStore interface.
func (s *s3Store) SaveMedia(ctx context.Context, ext string, data []byte) (core.MediaHandle, error) {
	handle := core.NewMediaHandle(ext)
	log := logrus.WithFields(logrus.Fields{
		"handle":      handle,
		"bucket":      s.bucket,
		"data_length": len(data),
	})

	_, err := s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(keyPrefix + string(handle)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(mimetype.Detect(data).String()),
	})
	if err != nil {
		log.WithError(err).Error("Failed to upload media")
		return "", fmt.Errorf("failed to upload media: %w", err)
	}

	log.Info("Media saved successfully")
	return handle, nil
}

// ReadMedia is part of the MediaStore interface.
func (s *s3Store) ReadMedia(ctx context.Context, handle core.MediaHandle) ([]byte, error) {
	log := logrus.WithField("handle", handle)
	if !handle.Valid() {
		log.Warn("Rejected malformed media handle")
		return nil, fmt.Errorf("%w: media %s", core.ErrNotFound, handle)
	}

	resp, err := s.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(keyPrefix + string(handle)),
	})
	if err != nil {
		var nsk *s3types.NoSuchKey
		if errors.As(err, &nsk) {
			log.Warn("Media with specified handle not found")
			return nil, fmt.Errorf("%w: media %s", core.ErrNotFound, handle)
		}
		log.WithError(err).Error("Failed to get media")
		return nil, fmt.Errorf("failed to get media %s: %w", handle, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read media data: %w", err)
	}
	return data, nil
}
