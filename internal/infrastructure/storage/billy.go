package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path"

	"github.com/St1cky1/haccp-service/internal/entity"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
)

// BillyBlobStore - файлы на billy.Filesystem: локальный диск или память
type BillyBlobStore struct {
	fs      billy.Filesystem
	baseURL string
}

func NewLocalBlobStore(basePath, baseURL string) *BillyBlobStore {
	return &BillyBlobStore{
		fs:      osfs.New(basePath),
		baseURL: baseURL,
	}
}

func NewMemoryBlobStore(baseURL string) *BillyBlobStore {
	return &BillyBlobStore{
		fs:      memfs.New(),
		baseURL: baseURL,
	}
}

// Put перезаписывает файл целиком
func (s *BillyBlobStore) Put(ctx context.Context, p string, data []byte, contentType string) error {
	p, err := cleanPath(p)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.fs.MkdirAll(path.Dir(p), 0o755); err != nil {
		return fmt.Errorf("create blob dir: %w", err)
	}

	file, err := s.fs.Create(p)
	if err != nil {
		return fmt.Errorf("create blob %s: %w", p, err)
	}
	defer file.Close()

	if _, err := file.Write(data); err != nil {
		return fmt.Errorf("write blob %s: %w", p, err)
	}
	return nil
}

func (s *BillyBlobStore) Get(ctx context.Context, p string) (*entity.DownloadedFile, error) {
	p, err := cleanPath(p)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	file, err := s.fs.Open(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", entity.ErrBlobNotFound, p)
		}
		return nil, fmt.Errorf("open blob %s: %w", p, err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read blob %s: %w", p, err)
	}
	return &entity.DownloadedFile{Data: data, ContentType: contentTypeByExt(p)}, nil
}

// Delete не считает ошибкой отсутствующий файл
func (s *BillyBlobStore) Delete(ctx context.Context, p string) error {
	p, err := cleanPath(p)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.fs.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove blob %s: %w", p, err)
	}
	return nil
}

func (s *BillyBlobStore) URL(p string) string {
	return publicURL(s.baseURL, p)
}

func contentTypeByExt(p string) string {
	if ct := mime.TypeByExtension(path.Ext(p)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
