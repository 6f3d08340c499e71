package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/feichai0017/resume-portfolio/config"
	"github.com/feichai0017/resume-portfolio/pkg/logger"
	"github.com/feichai0017/resume-portfolio/pkg/storage/minio"
	"github.com/feichai0017/resume-portfolio/pkg/storage/s3"
)

// UploadPrefix holds staged documents awaiting extraction.
const UploadPrefix = "uploads/"

// Storage stages uploaded documents between the API and the worker.
type Storage interface {
	Store(ctx context.Context, reader io.Reader, key string) (string, error)
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	// CleanupBefore deletes objects under prefix last modified before threshold.
	CleanupBefore(ctx context.Context, prefix string, threshold time.Time) error
}

// UploadKey is the object key of a staged upload: uploads/<taskId><ext>.
func UploadKey(taskID, fileName string) string {
	return UploadPrefix + taskID + strings.ToLower(filepath.Ext(fileName))
}

// NewStorage builds the backend selected by storage.backend.
func NewStorage(ctx context.Context, conf *config.Config, log logger.Logger) (Storage, error) {
	switch conf.Storage.Backend {
	case config.StorageS3:
		return s3.NewS3Storage(ctx, conf.S3, log)
	case config.StorageMinio:
		return minio.NewMinioStorage(ctx, conf.Minio, log)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", conf.Storage.Backend)
	}
}
