package stores

import (
	"sohbet-lite/config"
	"sohbet-lite/core"
	"sohbet-lite/stores/aws"
	"sohbet-lite/stores/filesystem"
	"sohbet-lite/stores/memory"
	"sohbet-lite/stores/sqlstore"

	"github.com/sirupsen/logrus"
)

// Store is a union interface that includes all record store types.
type Store interface {
	core.UserStore
	core.RoomStore
	core.MessageStore
}

func GetStore(cfg *config.Config) Store {
	var store Store

	storageField := logrus.Fields{
		"storageType": cfg.StorageType,
	}

	switch cfg.StorageType {
	case "sqlite":
		dataSourceName := cfg.DataSourceName
		if dataSourceName == "" {
			dataSourceName = "sohbet.db"
		}
		storageField["dataSourceName"] = dataSourceName
		store = sqlstore.NewStore("sqlite", dataSourceName)
	case "postgres":
		if cfg.DataSourceName == "" {
			logrus.Fatal("DATA_SOURCE_NAME environment variable must be set for postgres storage type")
		}
		store = sqlstore.NewStore("postgres", cfg.DataSourceName)
	default:
		store = memory.NewStore()
		storageField["storageType"] = "in-memory"
	}
	logrus.WithFields(storageField).Info("Use storage")
	return store
}

// GetMediaStore picks the blob sink for uploads. The in-memory sink reuses
// fallback when it is itself a media store.
func GetMediaStore(cfg *config.Config, fallback Store) core.MediaStore {
	var media core.MediaStore

	storageField := logrus.Fields{
		"mediaStorageType": cfg.MediaStorageType,
	}

	switch cfg.MediaStorageType {
	case "filesystem":
		storageField["basePath"] = cfg.UploadDir
		media = filesystem.NewStore(cfg.UploadDir)
	case "s3":
		if cfg.S3BucketName == "" {
			logrus.Fatal("S3_BUCKET_NAME environment variable must be set for s3 media storage type")
		}
		storageField["bucketName"] = cfg.S3BucketName
		media = aws.NewStore(cfg.S3BucketName)
	default:
		storageField["mediaStorageType"] = "in-memory"
		if m, ok := fallback.(core.MediaStore); ok {
			media = m
		} else {
			media = memory.NewStore()
		}
	}
	logrus.WithFields(storageField).Info("Use media storage")
	return media
}
