package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var fieldNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// PostgresDocumentStore хранит документы в таблице documents (JSONB)
type PostgresDocumentStore struct {
	db *pgxpool.Pool
}

func NewPostgresDocumentStore(db *pgxpool.Pool) *PostgresDocumentStore {
	return &PostgresDocumentStore{
		db: db,
	}
}

var _ IDocumentStore = (*PostgresDocumentStore)(nil)

func (r *PostgresDocumentStore) ListCollection(ctx context.Context, collection Path) ([]Document, error) {
	if err := collection.validate(false); err != nil {
		return nil, err
	}

	query := `
	SELECT id, data
	FROM documents
	WHERE collection = $1
	ORDER BY seq
	`

	rows, err := r.db.Query(ctx, query, collection.String())
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	defer rows.Close()

	docs := []Document{}
	for rows.Next() {
		var (
			id   string
			data []byte
		)
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("scan %s: %w", collection, err)
		}
		docs = append(docs, Document{Path: collection.Child(id), ID: id, Data: data})
	}

	return docs, rows.Err()
}

func (r *PostgresDocumentStore) GetDocument(ctx context.Context, doc Path) (*Document, error) {
	if err := doc.validate(true); err != nil {
		return nil, err
	}
	collection, id := doc.Split()

	query := `
	SELECT data
	FROM documents
	WHERE collection = $1 AND id = $2
	`

	var data []byte
	err := r.db.QueryRow(ctx, query, collection.String(), id).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get %s: %w", doc, err)
	}

	return &Document{Path: doc, ID: id, Data: data}, nil
}

func (r *PostgresDocumentStore) CreateDocument(ctx context.Context, collection Path, data any) (string, error) {
	if err := collection.validate(false); err != nil {
		return "", err
	}
	b, err := encodeData(data)
	if err != nil {
		return "", err
	}

	query := `
	INSERT INTO documents (collection, collection_group, id, data)
	VALUES ($1, $2, $3, $4::jsonb)
	`

	id := uuid.NewString()
	if _, err := r.db.Exec(ctx, query, collection.String(), collection.Group(), id, string(b)); err != nil {
		return "", fmt.Errorf("create in %s: %w", collection, err)
	}
	return id, nil
}

// SetDocument - полная замена документа; позиция в коллекции сохраняется
func (r *PostgresDocumentStore) SetDocument(ctx context.Context, doc Path, data any) error {
	if err := doc.validate(true); err != nil {
		return err
	}
	b, err := encodeData(data)
	if err != nil {
		return err
	}
	collection, id := doc.Split()

	query := `
	INSERT INTO documents (collection, collection_group, id, data)
	VALUES ($1, $2, $3, $4::jsonb)
	ON CONFLICT (collection, id) DO UPDATE SET
	    data = EXCLUDED.data,
	    updated_at = NOW()
	`

	if _, err := r.db.Exec(ctx, query, collection.String(), collection.Group(), id, string(b)); err != nil {
		return fmt.Errorf("set %s: %w", doc, err)
	}
	return nil
}

// UpdateDocument сливает ключи верхнего уровня (оператор ||)
func (r *PostgresDocumentStore) UpdateDocument(ctx context.Context, doc Path, partial map[string]any) error {
	if err := doc.validate(true); err != nil {
		return err
	}
	b, err := encodeData(partial)
	if err != nil {
		return err
	}
	collection, id := doc.Split()

	query := `
	UPDATE documents
	SET data = data || $3::jsonb, updated_at = NOW()
	WHERE collection = $1 AND id = $2
	`

	tag, err := r.db.Exec(ctx, query, collection.String(), id, string(b))
	if err != nil {
		return fmt.Errorf("update %s: %w", doc, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrDocumentNotFound, doc)
	}
	return nil
}

func (r *PostgresDocumentStore) DeleteDocument(ctx context.Context, doc Path) error {
	if err := doc.validate(true); err != nil {
		return err
	}
	collection, id := doc.Split()

	query := `DELETE FROM documents WHERE collection = $1 AND id = $2`
	if _, err := r.db.Exec(ctx, query, collection.String(), id); err != nil {
		return fmt.Errorf("delete %s: %w", doc, err)
	}
	return nil
}

// FindOneWhere - поиск по группе коллекций; имя поля подставляется в запрос,
// чтобы работали индексы по выражению из миграций
func (r *PostgresDocumentStore) FindOneWhere(ctx context.Context, collectionGroup, field, value string) (*Document, error) {
	if !fieldNameRe.MatchString(field) {
		return nil, fmt.Errorf("invalid field name %q", field)
	}

	query := fmt.Sprintf(`
	SELECT collection, id, data
	FROM documents
	WHERE collection_group = $1 AND data->>'%s' = $2 AND jsonb_typeof(data->'%s') = 'string'
	ORDER BY seq
	LIMIT 1
	`, field, field)

	var (
		collection string
		id         string
		data       []byte
	)
	err := r.db.QueryRow(ctx, query, collectionGroup, value).Scan(&collection, &id, &data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find in %s by %s: %w", collectionGroup, field, err)
	}

	return &Document{Path: ParsePath(collection).Child(id), ID: id, Data: data}, nil
}
