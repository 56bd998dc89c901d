package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "secret")
	t.Setenv("DOCUMENT_STORE", "")
	t.Setenv("STORAGE_MODE", "")
	t.Setenv("DRAFT_TTL", "")
	t.Setenv("HTTP_PORT", "")
	t.Setenv("RABBITMQ_HOST", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, StoreTypePostgres, cfg.DocumentStore)
	assert.Equal(t, StorageModeLocal, cfg.Storage.Mode)
	assert.Equal(t, 30*time.Minute, cfg.DraftTTL)
	assert.False(t, cfg.RabbitMQ.Enabled())
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing jwt secret", map[string]string{"JWT_SECRET_KEY": ""}},
		{"unknown store", map[string]string{"JWT_SECRET_KEY": "s", "DOCUMENT_STORE": "mongo"}},
		{"s3 without bucket", map[string]string{"JWT_SECRET_KEY": "s", "STORAGE_MODE": "s3", "S3_BUCKET_NAME": ""}},
		{"bad ttl", map[string]string{"JWT_SECRET_KEY": "s", "DRAFT_TTL": "soon"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DOCUMENT_STORE", "")
			t.Setenv("STORAGE_MODE", "")
			t.Setenv("DRAFT_TTL", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestDBConfig_URL(t *testing.T) {
	c := DBConfig{Host: "db", Port: "5432", User: "u", Password: "p", Name: "haccp", SSLMode: "disable"}
	assert.Equal(t, "postgresql://u:p@db:5432/haccp?sslmode=disable", c.URL())
}
