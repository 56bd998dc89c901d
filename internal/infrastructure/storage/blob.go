package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/St1cky1/haccp-service/internal/config"
	"github.com/St1cky1/haccp-service/internal/entity"
)

// BlobStore - хранилище загруженных файлов (аватары, логотипы).
// Путь всегда относительный, с прямыми слэшами.
type BlobStore interface {
	Put(ctx context.Context, path string, data []byte, contentType string) error
	Get(ctx context.Context, path string) (*entity.DownloadedFile, error)
	Delete(ctx context.Context, path string) error
	URL(path string) string
}

// NewBlobStoreFromConfig выбирает реализацию по STORAGE_MODE
func NewBlobStoreFromConfig(ctx context.Context, cfg config.StorageConfig) (BlobStore, error) {
	switch cfg.Mode {
	case config.StorageModeS3:
		return NewS3BlobStore(ctx, cfg.S3, cfg.PublicBaseURL)
	case config.StorageModeMemory:
		return NewMemoryBlobStore(cfg.PublicBaseURL), nil
	case config.StorageModeLocal:
		return NewLocalBlobStore(cfg.Path, cfg.PublicBaseURL), nil
	default:
		return nil, fmt.Errorf("unsupported storage mode: %s (supported: local, s3, memory)", cfg.Mode)
	}
}

func cleanPath(path string) (string, error) {
	p := strings.TrimLeft(strings.ReplaceAll(path, "\\", "/"), "/")
	if p == "" {
		return "", fmt.Errorf("empty blob path")
	}
	for _, seg := range strings.Split(p, "/") {
		if seg == ".." || seg == "." || seg == "" {
			return "", fmt.Errorf("invalid blob path %q", path)
		}
	}
	return p, nil
}

func publicURL(baseURL, path string) string {
	return strings.TrimRight(baseURL, "/") + "/" + path
}
