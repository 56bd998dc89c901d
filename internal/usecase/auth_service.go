package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/St1cky1/haccp-service/internal/entity"
	"github.com/St1cky1/haccp-service/internal/infrastructure/auth"
	"github.com/St1cky1/haccp-service/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AuthService struct {
	accountRepo      repository.IAccountRepository
	refreshTokenRepo repository.IRefreshTokenRepository
	passwordManager  *auth.PasswordManager
	jwtManager       *auth.JWTManager
	now              func() time.Time
	log              *zap.SugaredLogger
}

func NewAuthService(
	accountRepo repository.IAccountRepository,
	refreshTokenRepo repository.IRefreshTokenRepository,
	passwordManager *auth.PasswordManager,
	jwtManager *auth.JWTManager,
	log *zap.SugaredLogger,
) *AuthService {
	return &AuthService{
		accountRepo:      accountRepo,
		refreshTokenRepo: refreshTokenRepo,
		passwordManager:  passwordManager,
		jwtManager:       jwtManager,
		now:              time.Now,
		log:              log,
	}
}

// Register регистрирует новую учетную запись
func (s *AuthService) Register(ctx context.Context, req *entity.RegisterRequest) (*entity.LoginResponse, error) {
	if err := validateRequest(req, entity.ErrInvalidUserData); err != nil {
		return nil, err
	}

	// Проверяем, что email свободен
	existing, err := s.accountRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing account: %w", err)
	}
	if existing != nil {
		return nil, entity.ErrEmailTaken
	}

	// Хешируем пароль
	passwordHash, err := s.passwordManager.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	now := s.now()
	account := &entity.Account{
		UID:          uuid.NewString(),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		DisplayName:  strings.TrimSpace(req.DisplayName),
		PasswordHash: passwordHash,
		IsActive:     true,
		LastLogin:    &now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.accountRepo.Create(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	s.log.Infow("account registered", "uid", account.UID)
	return s.issue(ctx, account)
}

// Login проверяет пароль и выдает пару токенов
func (s *AuthService) Login(ctx context.Context, req *entity.LoginRequest) (*entity.LoginResponse, error) {
	if err := validateRequest(req, entity.ErrInvalidUserData); err != nil {
		return nil, err
	}

	account, err := s.accountRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if account == nil {
		return nil, entity.ErrInvalidCredentials
	}

	// Проверяем активность пользователя
	if !account.IsActive {
		return nil, fmt.Errorf("%w: account is disabled", entity.ErrForbidden)
	}
	if !s.passwordManager.VerifyPassword(account.PasswordHash, req.Password) {
		return nil, entity.ErrInvalidCredentials
	}

	resp, err := s.issue(ctx, account)
	if err != nil {
		return nil, err
	}

	// Обновляем lastLogin
	if err := s.accountRepo.Update(ctx, account.UID, map[string]any{"lastLogin": s.now()}); err != nil {
		return nil, fmt.Errorf("failed to update last login: %w", err)
	}
	return resp, nil
}

// RefreshToken меняет refresh token на новую пару; старый отзывается
func (s *AuthService) RefreshToken(ctx context.Context, req *entity.RefreshTokenRequest) (*entity.RefreshTokenResponse, error) {
	if err := validateRequest(req, entity.ErrInvalidUserData); err != nil {
		return nil, err
	}

	claims, err := s.jwtManager.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		return nil, err
	}

	// Проверяем, есть ли этот токен в хранилище
	stored, err := s.refreshTokenRepo.GetByHash(ctx, claims.UID, hashToken(req.RefreshToken))
	if err != nil {
		return nil, fmt.Errorf("failed to get refresh token: %w", err)
	}
	if stored == nil {
		return nil, fmt.Errorf("%w: refresh token revoked or expired", entity.ErrInvalidToken)
	}

	if err := s.refreshTokenRepo.Revoke(ctx, claims.UID, stored.ID); err != nil {
		return nil, fmt.Errorf("failed to revoke old refresh token: %w", err)
	}

	access, refresh, err := s.tokens(ctx, *claims)
	if err != nil {
		return nil, err
	}
	return &entity.RefreshTokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
	}, nil
}

// Logout откатывает все refresh токены пользователя
func (s *AuthService) Logout(ctx context.Context, uid string) error {
	if err := s.refreshTokenRepo.RevokeAll(ctx, uid); err != nil {
		return fmt.Errorf("failed to revoke refresh tokens: %w", err)
	}
	return nil
}

// Authenticate - проверка access token для middleware и interceptor
func (s *AuthService) Authenticate(token string) (entity.Principal, error) {
	claims, err := s.jwtManager.ValidateAccessToken(token)
	if err != nil {
		return entity.Principal{}, err
	}
	return entity.Principal{
		UID:         claims.UID,
		Email:       claims.Email,
		DisplayName: claims.DisplayName,
	}, nil
}

func (s *AuthService) issue(ctx context.Context, account *entity.Account) (*entity.LoginResponse, error) {
	access, refresh, err := s.tokens(ctx, entity.JWTClaims{
		UID:         account.UID,
		Email:       account.Email,
		DisplayName: account.DisplayName,
	})
	if err != nil {
		return nil, err
	}
	return &entity.LoginResponse{
		Profile:      account.Profile(),
		AccessToken:  access,
		RefreshToken: refresh,
	}, nil
}

// tokens генерирует пару и сохраняет хеш refresh token
func (s *AuthService) tokens(ctx context.Context, claims entity.JWTClaims) (string, string, error) {
	access, err := s.jwtManager.GenerateAccessToken(claims)
	if err != nil {
		return "", "", err
	}
	refresh, err := s.jwtManager.GenerateRefreshToken(claims)
	if err != nil {
		return "", "", err
	}

	expiresAt := s.now().Add(auth.RefreshTokenTTL)
	if err := s.refreshTokenRepo.Save(ctx, claims.UID, hashToken(refresh), expiresAt); err != nil {
		return "", "", fmt.Errorf("failed to save refresh token: %w", err)
	}
	return access, refresh, nil
}

// hashToken - в хранилище лежит только sha256 от токена
func hashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}
