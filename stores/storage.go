package stores

import (
	"context"
	"fmt"
	"io"

	"widget-canvas/config"
	"widget-canvas/core"
	"widget-canvas/stores/aws"
	"widget-canvas/stores/filesystem"
	"widget-canvas/stores/memory"
	"widget-canvas/stores/sqlite"

	"github.com/sirupsen/logrus"
)

// Store is a union interface that includes all store types.
type Store interface {
	core.CanvasStore
	core.HeaderImageStore
}

// Watcher is implemented by stores that can report changes made outside this process.
type Watcher interface {
	Watch(ctx context.Context, onChange func(name string)) error
}

func GetStore(ctx context.Context, cfg config.Storage) (Store, error) {
	var store Store

	storageField := logrus.Fields{
		"storageType": cfg.Type,
	}

	switch cfg.Type {
	case "", "filesystem":
		if cfg.BasePath == "" {
			return nil, fmt.Errorf("filesystem storage requires a base path")
		}
		storageField["storageType"] = "filesystem"
		storageField["basePath"] = cfg.BasePath
		store = filesystem.NewStore(cfg.BasePath)
	case "memory":
		store = memory.NewStore()
		storageField["storageType"] = "in-memory"
	case "sqlite":
		storageField["dataSourceName"] = cfg.DataSourceName
		s, err := sqlite.NewStore(cfg.DataSourceName)
		if err != nil {
			return nil, err
		}
		store = s
	case "s3":
		if cfg.BucketName == "" {
			return nil, fmt.Errorf("S3_BUCKET_NAME environment variable must be set for s3 storage type")
		}
		storageField["bucketName"] = cfg.BucketName
		storageField["prefix"] = cfg.Prefix
		s, err := aws.NewStore(ctx, cfg.BucketName, cfg.Prefix)
		if err != nil {
			return nil, err
		}
		store = s
	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.Type)
	}

	logrus.WithFields(storageField).Info("Use storage")
	return store, nil
}

// Close releases the store's resources when it holds any.
func Close(store Store) error {
	if c, ok := store.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
