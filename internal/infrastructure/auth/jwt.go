package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/St1cky1/haccp-service/internal/entity"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	AccessTokenTTL  = 15 * time.Minute
	RefreshTokenTTL = 7 * 24 * time.Hour

	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

type tokenClaims struct {
	Email       string `json:"email"`
	DisplayName string `json:"displayName,omitempty"`
	Type        string `json:"type"`
	jwt.RegisteredClaims
}

type JWTManager struct {
	secretKey []byte
	now       func() time.Time
}

func NewJWTManager(secretKey string) *JWTManager {
	return &JWTManager{
		secretKey: []byte(secretKey),
		now:       time.Now,
	}
}

// GenerateAccessToken генерирует access token на 15 минут
func (m *JWTManager) GenerateAccessToken(claims entity.JWTClaims) (string, error) {
	return m.sign(claims, tokenTypeAccess, AccessTokenTTL)
}

// GenerateRefreshToken генерирует refresh token на 7 дней.
// jti делает токены уникальными даже внутри одной секунды.
func (m *JWTManager) GenerateRefreshToken(claims entity.JWTClaims) (string, error) {
	return m.sign(claims, tokenTypeRefresh, RefreshTokenTTL)
}

func (m *JWTManager) sign(c entity.JWTClaims, tokenType string, ttl time.Duration) (string, error) {
	now := m.now()
	claims := tokenClaims{
		Email:       c.Email,
		DisplayName: c.DisplayName,
		Type:        tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   c.UID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(m.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign %s token: %w", tokenType, err)
	}
	return tokenString, nil
}

// ValidateAccessToken проверяет access token
func (m *JWTManager) ValidateAccessToken(tokenString string) (*entity.JWTClaims, error) {
	return m.validate(tokenString, tokenTypeAccess)
}

// ValidateRefreshToken проверяет refresh token
func (m *JWTManager) ValidateRefreshToken(tokenString string) (*entity.JWTClaims, error) {
	return m.validate(tokenString, tokenTypeRefresh)
}

func (m *JWTManager) validate(tokenString, tokenType string) (*entity.JWTClaims, error) {
	var claims tokenClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secretKey, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: token expired", entity.ErrInvalidToken)
		}
		return nil, fmt.Errorf("%w: %v", entity.ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, entity.ErrInvalidToken
	}

	// Проверяем тип токена
	if claims.Type != tokenType {
		return nil, fmt.Errorf("%w: expected %s token", entity.ErrInvalidToken, tokenType)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: token without subject", entity.ErrInvalidToken)
	}

	return &entity.JWTClaims{
		UID:         claims.Subject,
		Email:       claims.Email,
		DisplayName: claims.DisplayName,
	}, nil
}
