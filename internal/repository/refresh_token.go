package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/St1cky1/haccp-service/internal/entity"
)

// RefreshTokenRepository - accounts/{uid}/refreshTokens
type RefreshTokenRepository struct {
	store IDocumentStore
}

func NewRefreshTokenRepository(store IDocumentStore) *RefreshTokenRepository {
	return &RefreshTokenRepository{
		store: store,
	}
}

func tokensPath(uid string) Path {
	return CollectionPath(entity.CollectionAccounts, uid, entity.CollectionRefreshTokens)
}

// Save - сохраняем хеш refresh token
func (r *RefreshTokenRepository) Save(ctx context.Context, uid, tokenHash string, expiresAt time.Time) error {
	token := entity.RefreshToken{
		TokenHash: tokenHash,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}
	_, err := r.store.CreateDocument(ctx, tokensPath(uid), &token)
	return err
}

func (r *RefreshTokenRepository) list(ctx context.Context, uid string) ([]entity.RefreshToken, error) {
	docs, err := r.store.ListCollection(ctx, tokensPath(uid))
	if err != nil {
		return nil, err
	}

	tokens := make([]entity.RefreshToken, 0, len(docs))
	for i := range docs {
		var token entity.RefreshToken
		if err := docs[i].Decode(&token); err != nil {
			return nil, fmt.Errorf("decode refresh token %s: %w", docs[i].ID, err)
		}
		token.ID = docs[i].ID
		tokens = append(tokens, token)
	}
	return tokens, nil
}

// GetByHash - действующий токен по хешу, nil если отозван или истек
func (r *RefreshTokenRepository) GetByHash(ctx context.Context, uid, tokenHash string) (*entity.RefreshToken, error) {
	tokens, err := r.list(ctx, uid)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	for i := range tokens {
		t := tokens[i]
		if t.TokenHash == tokenHash && !t.Revoked && t.ExpiresAt.After(now) {
			return &t, nil
		}
	}
	return nil, nil
}

// Revoke - откатываем конкретный токен
func (r *RefreshTokenRepository) Revoke(ctx context.Context, uid, id string) error {
	return r.store.UpdateDocument(ctx, tokensPath(uid).Child(id), map[string]any{"revoked": true})
}

// RevokeAll - откатываем все токены пользователя, истекшие удаляем
func (r *RefreshTokenRepository) RevokeAll(ctx context.Context, uid string) error {
	tokens, err := r.list(ctx, uid)
	if err != nil {
		return err
	}

	now := time.Now()
	for _, t := range tokens {
		path := tokensPath(uid).Child(t.ID)
		if t.ExpiresAt.Before(now) {
			if err := r.store.DeleteDocument(ctx, path); err != nil {
				return err
			}
			continue
		}
		if t.Revoked {
			continue
		}
		if err := r.store.UpdateDocument(ctx, path, map[string]any{"revoked": true}); err != nil {
			return err
		}
	}
	return nil
}
