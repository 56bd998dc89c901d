package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/St1cky1/haccp-service/internal/entity"
	"github.com/St1cky1/haccp-service/internal/repository"
	"go.uber.org/zap"
)

// ReferenceService - CRUD справочников компании.
// Изменение SOP не трогает задачи: в них хранятся снимки.
type ReferenceService struct {
	refRepo    repository.IReferenceRepository
	resolver   *TenantResolver
	workspaces *WorkspaceManager
	log        *zap.SugaredLogger
}

func NewReferenceService(
	refRepo repository.IReferenceRepository,
	resolver *TenantResolver,
	workspaces *WorkspaceManager,
	log *zap.SugaredLogger,
) *ReferenceService {
	return &ReferenceService{
		refRepo:    refRepo,
		resolver:   resolver,
		workspaces: workspaces,
		log:        log,
	}
}

func checkCollection(collection string) error {
	if !entity.IsCatalogCollection(collection) {
		return entity.NewValidationError("collection", fmt.Errorf("%w: unknown catalog %q", entity.ErrReferenceNotFound, collection))
	}
	return nil
}

// List - записи справочника; query фильтрует по названию без учета регистра
func (s *ReferenceService) List(ctx context.Context, principal entity.Principal, collection, query string) ([]entity.CatalogItem, error) {
	if err := checkCollection(collection); err != nil {
		return nil, err
	}
	tenant, err := s.resolver.Require(ctx, principal.UID)
	if err != nil {
		return nil, err
	}

	items, err := s.refRepo.ListCatalog(ctx, tenant.CompanyCode, collection)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", collection, err)
	}

	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return items, nil
	}
	out := make([]entity.CatalogItem, 0, len(items))
	for _, item := range items {
		if strings.Contains(strings.ToLower(item.DisplayName()), q) {
			out = append(out, item)
		}
	}
	return out, nil
}

func (s *ReferenceService) Create(ctx context.Context, principal entity.Principal, collection string, req *entity.CatalogItemRequest) (*entity.CatalogItem, error) {
	if err := checkCollection(collection); err != nil {
		return nil, err
	}
	if err := validateRequest(req, entity.ErrInvalidTaskData); err != nil {
		return nil, err
	}
	tenant, err := s.resolver.Require(ctx, principal.UID)
	if err != nil {
		return nil, err
	}

	item := catalogItem(collection, req)
	id, err := s.refRepo.CreateCatalogItem(ctx, tenant.CompanyCode, collection, &item)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s item: %w", collection, err)
	}
	item.ID = id

	s.reload(ctx, tenant.CompanyCode)
	return &item, nil
}

func (s *ReferenceService) Replace(ctx context.Context, principal entity.Principal, collection, id string, req *entity.CatalogItemRequest) (*entity.CatalogItem, error) {
	if err := checkCollection(collection); err != nil {
		return nil, err
	}
	if err := validateRequest(req, entity.ErrInvalidTaskData); err != nil {
		return nil, err
	}
	tenant, err := s.resolver.Require(ctx, principal.UID)
	if err != nil {
		return nil, err
	}

	existing, err := s.refRepo.GetCatalogItem(ctx, tenant.CompanyCode, collection, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, fmt.Errorf("%w: %s/%s", entity.ErrReferenceNotFound, collection, id)
	}

	item := catalogItem(collection, req)
	item.ID = id
	if err := s.refRepo.ReplaceCatalogItem(ctx, tenant.CompanyCode, collection, &item); err != nil {
		return nil, fmt.Errorf("failed to update %s item: %w", collection, err)
	}

	s.reload(ctx, tenant.CompanyCode)
	return &item, nil
}

func (s *ReferenceService) Delete(ctx context.Context, principal entity.Principal, collection, id string) error {
	if err := checkCollection(collection); err != nil {
		return err
	}
	tenant, err := s.resolver.Require(ctx, principal.UID)
	if err != nil {
		return err
	}

	existing, err := s.refRepo.GetCatalogItem(ctx, tenant.CompanyCode, collection, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("%w: %s/%s", entity.ErrReferenceNotFound, collection, id)
	}
	if err := s.refRepo.DeleteCatalogItem(ctx, tenant.CompanyCode, collection, id); err != nil {
		return fmt.Errorf("failed to delete %s item: %w", collection, err)
	}

	s.reload(ctx, tenant.CompanyCode)
	return nil
}

// reload обновляет справочники в открытых мастерах; ошибка только логируется
func (s *ReferenceService) reload(ctx context.Context, companyCode string) {
	if s.workspaces == nil {
		return
	}
	if err := s.workspaces.ReloadReferences(ctx, companyCode); err != nil {
		s.log.Warnw("failed to reload references", "company", companyCode, "error", err)
	}
}

// catalogItem - у SOP название хранится в title, у остальных в name
func catalogItem(collection string, req *entity.CatalogItemRequest) entity.CatalogItem {
	item := entity.CatalogItem{
		Description: strings.TrimSpace(req.Description),
	}
	if collection == entity.CollectionSOPs {
		item.Title = strings.TrimSpace(req.Title)
		if item.Title == "" {
			item.Title = strings.TrimSpace(req.Name)
		}
		item.Version = strings.TrimSpace(req.Version)
		item.DocumentURL = req.DocumentURL
		return item
	}
	item.Name = strings.TrimSpace(req.Name)
	if item.Name == "" {
		item.Name = strings.TrimSpace(req.Title)
	}
	return item
}
