package client

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

type SQLiteClient struct {
	DB *sql.DB
}

// NewSQLiteClient открывает файл базы. Для ":memory:" пул ограничен одним соединением.
func NewSQLiteClient(ctx context.Context, path string) (*SQLiteClient, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL; PRAGMA busy_timeout=5000;"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("configure sqlite: %w", err)
	}

	return &SQLiteClient{DB: db}, nil
}

func (c *SQLiteClient) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}

func (c *SQLiteClient) HealthCheck(ctx context.Context) error {
	return c.DB.PingContext(ctx)
}
