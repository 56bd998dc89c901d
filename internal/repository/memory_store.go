package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

type memCollection struct {
	path Path
	ids  []string
	docs map[string][]byte
}

// MemoryDocumentStore - хранилище в памяти, порядок документов - порядок вставки
type MemoryDocumentStore struct {
	mu          sync.RWMutex
	collections map[string]*memCollection
	order       []string
}

func NewMemoryDocumentStore() *MemoryDocumentStore {
	return &MemoryDocumentStore{
		collections: make(map[string]*memCollection),
	}
}

var _ IDocumentStore = (*MemoryDocumentStore)(nil)

func (s *MemoryDocumentStore) collection(path Path, create bool) *memCollection {
	key := path.String()
	c, ok := s.collections[key]
	if !ok && create {
		c = &memCollection{path: append(Path(nil), path...), docs: make(map[string][]byte)}
		s.collections[key] = c
		s.order = append(s.order, key)
	}
	return c
}

func (s *MemoryDocumentStore) ListCollection(ctx context.Context, collection Path) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := collection.validate(false); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	c := s.collection(collection, false)
	if c == nil {
		return []Document{}, nil
	}
	docs := make([]Document, 0, len(c.ids))
	for _, id := range c.ids {
		docs = append(docs, s.document(c, id))
	}
	return docs, nil
}

func (s *MemoryDocumentStore) GetDocument(ctx context.Context, doc Path) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := doc.validate(true); err != nil {
		return nil, err
	}
	collection, id := doc.Split()

	s.mu.RLock()
	defer s.mu.RUnlock()

	c := s.collection(collection, false)
	if c == nil {
		return nil, nil
	}
	if _, ok := c.docs[id]; !ok {
		return nil, nil
	}
	d := s.document(c, id)
	return &d, nil
}

func (s *MemoryDocumentStore) CreateDocument(ctx context.Context, collection Path, data any) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := collection.validate(false); err != nil {
		return "", err
	}
	b, err := encodeData(data)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.collection(collection, true)
	id := uuid.NewString()
	c.ids = append(c.ids, id)
	c.docs[id] = b
	return id, nil
}

func (s *MemoryDocumentStore) SetDocument(ctx context.Context, doc Path, data any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := doc.validate(true); err != nil {
		return err
	}
	b, err := encodeData(data)
	if err != nil {
		return err
	}
	collection, id := doc.Split()

	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.collection(collection, true)
	if _, ok := c.docs[id]; !ok {
		c.ids = append(c.ids, id)
	}
	c.docs[id] = b
	return nil
}

func (s *MemoryDocumentStore) UpdateDocument(ctx context.Context, doc Path, partial map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := doc.validate(true); err != nil {
		return err
	}
	collection, id := doc.Split()

	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.collection(collection, false)
	if c == nil {
		return fmt.Errorf("%w: %s", ErrDocumentNotFound, doc)
	}
	existing, ok := c.docs[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrDocumentNotFound, doc)
	}
	merged, err := mergeTopLevel(existing, partial)
	if err != nil {
		return err
	}
	c.docs[id] = merged
	return nil
}

func (s *MemoryDocumentStore) DeleteDocument(ctx context.Context, doc Path) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := doc.validate(true); err != nil {
		return err
	}
	collection, id := doc.Split()

	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.collection(collection, false)
	if c == nil {
		return nil
	}
	if _, ok := c.docs[id]; !ok {
		return nil
	}
	delete(c.docs, id)
	for i, v := range c.ids {
		if v == id {
			c.ids = append(c.ids[:i], c.ids[i+1:]...)
			break
		}
	}
	return nil
}

func (s *MemoryDocumentStore) FindOneWhere(ctx context.Context, collectionGroup, field, value string) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, key := range s.order {
		c := s.collections[key]
		if c.path.Group() != collectionGroup {
			continue
		}
		for _, id := range c.ids {
			if fieldEquals(c.docs[id], field, value) {
				d := s.document(c, id)
				return &d, nil
			}
		}
	}
	return nil, nil
}

func (s *MemoryDocumentStore) document(c *memCollection, id string) Document {
	data := make([]byte, len(c.docs[id]))
	copy(data, c.docs[id])
	return Document{Path: c.path.Child(id), ID: id, Data: data}
}
