package repository

import (
	"context"
	"fmt"

	"github.com/St1cky1/haccp-service/internal/entity"
)

// ReferenceRepository - справочники компании
type ReferenceRepository struct {
	store IDocumentStore
}

func NewReferenceRepository(store IDocumentStore) *ReferenceRepository {
	return &ReferenceRepository{
		store: store,
	}
}

func (r *ReferenceRepository) ListSOPs(ctx context.Context, companyCode string) ([]entity.SOP, error) {
	docs, err := r.store.ListCollection(ctx, CompanyCollection(companyCode, entity.CollectionSOPs))
	if err != nil {
		return nil, err
	}

	sops := make([]entity.SOP, 0, len(docs))
	for i := range docs {
		var sop entity.SOP
		if err := docs[i].Decode(&sop); err != nil {
			return nil, fmt.Errorf("decode sop %s: %w", docs[i].ID, err)
		}
		sop.ID = docs[i].ID
		sops = append(sops, sop)
	}
	return sops, nil
}

func (r *ReferenceRepository) ListLocations(ctx context.Context, companyCode string, locationType entity.LocationType) ([]entity.Location, error) {
	collection := locationType.Collection()
	if collection == "" {
		return nil, entity.NewValidationError("locationType", fmt.Errorf("%w: %q", entity.ErrInvalidFieldConfig, locationType))
	}

	docs, err := r.store.ListCollection(ctx, CompanyCollection(companyCode, collection))
	if err != nil {
		return nil, err
	}

	locations := make([]entity.Location, 0, len(docs))
	for i := range docs {
		var loc entity.Location
		if err := docs[i].Decode(&loc); err != nil {
			return nil, fmt.Errorf("decode %s %s: %w", collection, docs[i].ID, err)
		}
		loc.ID = docs[i].ID
		locations = append(locations, loc)
	}
	return locations, nil
}

func (r *ReferenceRepository) ListCatalog(ctx context.Context, companyCode, collection string) ([]entity.CatalogItem, error) {
	docs, err := r.store.ListCollection(ctx, CompanyCollection(companyCode, collection))
	if err != nil {
		return nil, err
	}

	items := make([]entity.CatalogItem, 0, len(docs))
	for i := range docs {
		var item entity.CatalogItem
		if err := docs[i].Decode(&item); err != nil {
			return nil, fmt.Errorf("decode %s %s: %w", collection, docs[i].ID, err)
		}
		item.ID = docs[i].ID
		items = append(items, item)
	}
	return items, nil
}

func (r *ReferenceRepository) GetCatalogItem(ctx context.Context, companyCode, collection, id string) (*entity.CatalogItem, error) {
	doc, err := r.store.GetDocument(ctx, CompanyDoc(companyCode, collection, id))
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, nil
	}

	var item entity.CatalogItem
	if err := doc.Decode(&item); err != nil {
		return nil, fmt.Errorf("decode %s %s: %w", collection, id, err)
	}
	item.ID = doc.ID
	return &item, nil
}

func (r *ReferenceRepository) CreateCatalogItem(ctx context.Context, companyCode, collection string, item *entity.CatalogItem) (string, error) {
	data := *item
	data.ID = ""
	return r.store.CreateDocument(ctx, CompanyCollection(companyCode, collection), &data)
}

func (r *ReferenceRepository) ReplaceCatalogItem(ctx context.Context, companyCode, collection string, item *entity.CatalogItem) error {
	data := *item
	data.ID = ""
	return r.store.SetDocument(ctx, CompanyDoc(companyCode, collection, item.ID), &data)
}

func (r *ReferenceRepository) DeleteCatalogItem(ctx context.Context, companyCode, collection, id string) error {
	return r.store.DeleteDocument(ctx, CompanyDoc(companyCode, collection, id))
}
