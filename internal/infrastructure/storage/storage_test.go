package storage

import (
	"context"
	"testing"

	"github.com/St1cky1/haccp-service/internal/config"
	"github.com/St1cky1/haccp-service/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBillyBlobStore(t *testing.T) {
	stores := map[string]*BillyBlobStore{
		"memory": NewMemoryBlobStore("http://localhost:8080/files/"),
		"local":  NewLocalBlobStore(t.TempDir(), "http://localhost:8080/files"),
	}

	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			path := "avatars/u-1/a.png"

			require.NoError(t, store.Put(ctx, path, []byte("png-bytes"), "image/png"))

			file, err := store.Get(ctx, path)
			require.NoError(t, err)
			assert.Equal(t, []byte("png-bytes"), file.Data)
			assert.Equal(t, "image/png", file.ContentType)
			assert.Equal(t, "http://localhost:8080/files/avatars/u-1/a.png", store.URL(path))

			require.NoError(t, store.Put(ctx, path, []byte("v2"), "image/png"))
			file, err = store.Get(ctx, path)
			require.NoError(t, err)
			assert.Equal(t, []byte("v2"), file.Data)

			require.NoError(t, store.Delete(ctx, path))
			require.NoError(t, store.Delete(ctx, path))
			_, err = store.Get(ctx, path)
			assert.ErrorIs(t, err, entity.ErrBlobNotFound)
		})
	}
}

func TestCleanPath(t *testing.T) {
	p, err := cleanPath("/logos/ABC123/x.jpg")
	require.NoError(t, err)
	assert.Equal(t, "logos/ABC123/x.jpg", p)

	for _, bad := range []string{"", "/", "../etc/passwd", "a//b", "a/./b"} {
		_, err := cleanPath(bad)
		assert.Error(t, err, bad)
	}
}

func TestNewBlobStoreFromConfig(t *testing.T) {
	ctx := context.Background()

	store, err := NewBlobStoreFromConfig(ctx, config.StorageConfig{Mode: config.StorageModeMemory})
	require.NoError(t, err)
	assert.IsType(t, &BillyBlobStore{}, store)

	_, err = NewBlobStoreFromConfig(ctx, config.StorageConfig{Mode: "ftp"})
	assert.Error(t, err)
}
