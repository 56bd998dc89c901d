package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/St1cky1/haccp-service/internal/entity"
)

// AccountRepository - accounts/{uid}
type AccountRepository struct {
	store IDocumentStore
}

func NewAccountRepository(store IDocumentStore) *AccountRepository {
	return &AccountRepository{
		store: store,
	}
}

func (r *AccountRepository) Create(ctx context.Context, account *entity.Account) error {
	if account.UID == "" {
		return fmt.Errorf("%w: account without uid", entity.ErrInvalidUserData)
	}
	account.Email = strings.ToLower(account.Email)
	return r.store.SetDocument(ctx, DocPath(entity.CollectionAccounts, account.UID), account)
}

func (r *AccountRepository) GetByUID(ctx context.Context, uid string) (*entity.Account, error) {
	doc, err := r.store.GetDocument(ctx, DocPath(entity.CollectionAccounts, uid))
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, nil
	}
	return decodeAccount(doc)
}

func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*entity.Account, error) {
	doc, err := r.store.FindOneWhere(ctx, entity.CollectionAccounts, "email", strings.ToLower(email))
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, nil
	}
	return decodeAccount(doc)
}

func (r *AccountRepository) Update(ctx context.Context, uid string, updates map[string]any) error {
	if len(updates) == 0 {
		return entity.ErrNoFieldsToUpdate
	}
	if email, ok := updates["email"].(string); ok {
		updates["email"] = strings.ToLower(email)
	}
	return r.store.UpdateDocument(ctx, DocPath(entity.CollectionAccounts, uid), updates)
}

func decodeAccount(doc *Document) (*entity.Account, error) {
	var account entity.Account
	if err := doc.Decode(&account); err != nil {
		return nil, fmt.Errorf("decode account %s: %w", doc.ID, err)
	}
	account.UID = doc.ID
	return &account, nil
}
