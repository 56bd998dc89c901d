package repository

import (
	"context"
	"fmt"

	"github.com/St1cky1/haccp-service/internal/entity"
)

// CompanyRepository - companies/{code} и companies/{code}/users
type CompanyRepository struct {
	store IDocumentStore
}

func NewCompanyRepository(store IDocumentStore) *CompanyRepository {
	return &CompanyRepository{
		store: store,
	}
}

func (r *CompanyRepository) Get(ctx context.Context, code string) (*entity.Company, error) {
	doc, err := r.store.GetDocument(ctx, DocPath(entity.CollectionCompanies, code))
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, nil
	}

	var company entity.Company
	if err := doc.Decode(&company); err != nil {
		return nil, fmt.Errorf("decode company %s: %w", code, err)
	}
	company.Code = doc.ID
	return &company, nil
}

func (r *CompanyRepository) Create(ctx context.Context, company *entity.Company) error {
	return r.store.SetDocument(ctx, DocPath(entity.CollectionCompanies, company.Code), company)
}

func (r *CompanyRepository) Update(ctx context.Context, code string, updates map[string]any) error {
	if len(updates) == 0 {
		return entity.ErrNoFieldsToUpdate
	}
	return r.store.UpdateDocument(ctx, DocPath(entity.CollectionCompanies, code), updates)
}

// FindMemberByUID ищет пользователя во всех компаниях.
// Код компании - второй сегмент пути найденного документа.
func (r *CompanyRepository) FindMemberByUID(ctx context.Context, uid string) (string, *entity.TenantUser, error) {
	doc, err := r.store.FindOneWhere(ctx, entity.CollectionUsers, "uid", uid)
	if err != nil {
		return "", nil, err
	}
	if doc == nil {
		return "", nil, nil
	}
	if len(doc.Path) != 4 || doc.Path[0] != entity.CollectionCompanies {
		return "", nil, fmt.Errorf("unexpected user document path %s", doc.Path)
	}

	var user entity.TenantUser
	if err := doc.Decode(&user); err != nil {
		return "", nil, fmt.Errorf("decode user %s: %w", doc.Path, err)
	}
	user.ID = doc.ID
	return doc.Path[1], &user, nil
}

func (r *CompanyRepository) ListMembers(ctx context.Context, code string) ([]entity.TenantUser, error) {
	docs, err := r.store.ListCollection(ctx, CompanyCollection(code, entity.CollectionUsers))
	if err != nil {
		return nil, err
	}

	users := make([]entity.TenantUser, 0, len(docs))
	for i := range docs {
		var user entity.TenantUser
		if err := docs[i].Decode(&user); err != nil {
			return nil, fmt.Errorf("decode user %s: %w", docs[i].ID, err)
		}
		user.ID = docs[i].ID
		users = append(users, user)
	}
	return users, nil
}

func (r *CompanyRepository) GetMember(ctx context.Context, code, id string) (*entity.TenantUser, error) {
	doc, err := r.store.GetDocument(ctx, CompanyDoc(code, entity.CollectionUsers, id))
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, nil
	}

	var user entity.TenantUser
	if err := doc.Decode(&user); err != nil {
		return nil, fmt.Errorf("decode user %s: %w", id, err)
	}
	user.ID = doc.ID
	return &user, nil
}

func (r *CompanyRepository) AddMember(ctx context.Context, code string, user *entity.TenantUser) (string, error) {
	data := *user
	data.ID = ""
	return r.store.CreateDocument(ctx, CompanyCollection(code, entity.CollectionUsers), &data)
}

func (r *CompanyRepository) UpdateMember(ctx context.Context, code, id string, updates map[string]any) error {
	if len(updates) == 0 {
		return entity.ErrNoFieldsToUpdate
	}
	return r.store.UpdateDocument(ctx, CompanyDoc(code, entity.CollectionUsers, id), updates)
}

func (r *CompanyRepository) RemoveMember(ctx context.Context, code, id string) error {
	return r.store.DeleteDocument(ctx, CompanyDoc(code, entity.CollectionUsers, id))
}
