package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

type PasswordManager struct {
	cost int
}

func NewPasswordManager() *PasswordManager {
	return &PasswordManager{
		cost: bcrypt.DefaultCost,
	}
}

// NewPasswordManagerWithCost - для тестов, где DefaultCost слишком медленный
func NewPasswordManagerWithCost(cost int) *PasswordManager {
	if cost < bcrypt.MinCost {
		cost = bcrypt.MinCost
	}
	return &PasswordManager{
		cost: cost,
	}
}

// HashPassword хеширует пароль
func (m *PasswordManager) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), m.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword проверяет пароль против хеша
func (m *PasswordManager) VerifyPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
