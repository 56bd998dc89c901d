package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

//go:embed sqlite_schema.sql
var sqliteSchema string

// SQLiteDocumentStore - то же хранилище поверх modernc.org/sqlite.
// Порядок коллекции - rowid, upsert его не меняет.
type SQLiteDocumentStore struct {
	db *sql.DB
}

// NewSQLiteDocumentStore применяет схему и возвращает хранилище
func NewSQLiteDocumentStore(ctx context.Context, db *sql.DB) (*SQLiteDocumentStore, error) {
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &SQLiteDocumentStore{db: db}, nil
}

var _ IDocumentStore = (*SQLiteDocumentStore)(nil)

func (r *SQLiteDocumentStore) ListCollection(ctx context.Context, collection Path) ([]Document, error) {
	if err := collection.validate(false); err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, data FROM documents WHERE collection = ? ORDER BY rowid`,
		collection.String())
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	defer rows.Close()

	docs := []Document{}
	for rows.Next() {
		var id, data string
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("scan %s: %w", collection, err)
		}
		docs = append(docs, Document{Path: collection.Child(id), ID: id, Data: []byte(data)})
	}
	return docs, rows.Err()
}

func (r *SQLiteDocumentStore) GetDocument(ctx context.Context, doc Path) (*Document, error) {
	if err := doc.validate(true); err != nil {
		return nil, err
	}
	collection, id := doc.Split()

	var data string
	err := r.db.QueryRowContext(ctx,
		`SELECT data FROM documents WHERE collection = ? AND id = ?`,
		collection.String(), id).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get %s: %w", doc, err)
	}
	return &Document{Path: doc, ID: id, Data: []byte(data)}, nil
}

func (r *SQLiteDocumentStore) CreateDocument(ctx context.Context, collection Path, data any) (string, error) {
	if err := collection.validate(false); err != nil {
		return "", err
	}
	b, err := encodeData(data)
	if err != nil {
		return "", err
	}

	id := uuid.NewString()
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO documents (collection, collection_group, id, data) VALUES (?, ?, ?, ?)`,
		collection.String(), collection.Group(), id, string(b))
	if err != nil {
		return "", fmt.Errorf("create in %s: %w", collection, err)
	}
	return id, nil
}

func (r *SQLiteDocumentStore) SetDocument(ctx context.Context, doc Path, data any) error {
	if err := doc.validate(true); err != nil {
		return err
	}
	b, err := encodeData(data)
	if err != nil {
		return err
	}
	collection, id := doc.Split()

	_, err = r.db.ExecContext(ctx, `
	INSERT INTO documents (collection, collection_group, id, data) VALUES (?, ?, ?, ?)
	ON CONFLICT (collection, id) DO UPDATE SET
	    data = excluded.data,
	    updated_at = CURRENT_TIMESTAMP`,
		collection.String(), collection.Group(), id, string(b))
	if err != nil {
		return fmt.Errorf("set %s: %w", doc, err)
	}
	return nil
}

// UpdateDocument читает и переписывает документ в транзакции.
// json_patch сливает вложенные объекты рекурсивно, поэтому здесь не используется.
func (r *SQLiteDocumentStore) UpdateDocument(ctx context.Context, doc Path, partial map[string]any) error {
	if err := doc.validate(true); err != nil {
		return err
	}
	collection, id := doc.Split()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var existing string
	err = tx.QueryRowContext(ctx,
		`SELECT data FROM documents WHERE collection = ? AND id = ?`,
		collection.String(), id).Scan(&existing)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: %s", ErrDocumentNotFound, doc)
		}
		return fmt.Errorf("update %s: %w", doc, err)
	}

	merged, err := mergeTopLevel([]byte(existing), partial)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE documents SET data = ?, updated_at = CURRENT_TIMESTAMP WHERE collection = ? AND id = ?`,
		string(merged), collection.String(), id)
	if err != nil {
		return fmt.Errorf("update %s: %w", doc, err)
	}
	return tx.Commit()
}

func (r *SQLiteDocumentStore) DeleteDocument(ctx context.Context, doc Path) error {
	if err := doc.validate(true); err != nil {
		return err
	}
	collection, id := doc.Split()

	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM documents WHERE collection = ? AND id = ?`,
		collection.String(), id); err != nil {
		return fmt.Errorf("delete %s: %w", doc, err)
	}
	return nil
}

func (r *SQLiteDocumentStore) FindOneWhere(ctx context.Context, collectionGroup, field, value string) (*Document, error) {
	if !fieldNameRe.MatchString(field) {
		return nil, fmt.Errorf("invalid field name %q", field)
	}

	var collection, id, data string
	err := r.db.QueryRowContext(ctx, `
	SELECT collection, id, data FROM documents
	WHERE collection_group = ? AND json_type(data, '$.' || ?) = 'text' AND json_extract(data, '$.' || ?) = ?
	ORDER BY rowid
	LIMIT 1`,
		collectionGroup, field, field, value).Scan(&collection, &id, &data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find in %s by %s: %w", collectionGroup, field, err)
	}
	return &Document{Path: ParsePath(collection).Child(id), ID: id, Data: []byte(data)}, nil
}
