package entity

import "time"

// Account - учетная запись провайдера идентификации (accounts/{uid})
type Account struct {
	UID              string     `json:"uid"`
	Email            string     `json:"email"`
	DisplayName      string     `json:"displayName"`
	PasswordHash     string     `json:"passwordHash"`
	PhotoURL         string     `json:"photoUrl,omitempty"`
	PhotoPath        string     `json:"photoPath,omitempty"`
	TwoFactorEnabled bool       `json:"twoFactorEnabled"`
	IsActive         bool       `json:"isActive"`
	LastLogin        *time.Time `json:"lastLogin,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

// Profile - то, что видит сам пользователь. Пароль никогда не отправляем.
type Profile struct {
	UID              string `json:"uid"`
	Email            string `json:"email"`
	DisplayName      string `json:"displayName"`
	PhotoURL         string `json:"photoUrl,omitempty"`
	TwoFactorEnabled bool   `json:"twoFactorEnabled"`
	CompanyCode      string `json:"companyCode,omitempty"`
	Role             string `json:"role,omitempty"`
	Department       string `json:"department,omitempty"`
}

func (a *Account) Profile() Profile {
	return Profile{
		UID:              a.UID,
		Email:            a.Email,
		DisplayName:      a.DisplayName,
		PhotoURL:         a.PhotoURL,
		TwoFactorEnabled: a.TwoFactorEnabled,
	}
}

// Principal - аутентифицированный пользователь запроса
type Principal struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
}

func (p Principal) Actor() Actor {
	return Actor{UID: p.UID, Email: p.Email, DisplayName: p.DisplayName}
}

type RefreshToken struct {
	ID        string    `json:"id,omitempty"`
	TokenHash string    `json:"tokenHash"`
	ExpiresAt time.Time `json:"expiresAt"`
	Revoked   bool      `json:"revoked"`
	CreatedAt time.Time `json:"createdAt"`
}

// Регистрация
type RegisterRequest struct {
	DisplayName string `json:"displayName" validate:"required,min=1,max=255"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8,max=255"`
}

// Логин
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Profile      Profile `json:"profile"`
	AccessToken  string  `json:"accessToken"`
	RefreshToken string  `json:"refreshToken"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type RefreshTokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// JWT Claims
type JWTClaims struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
}

// профиль и безопасность
type UpdateDisplayNameRequest struct {
	DisplayName string `json:"displayName" validate:"required,min=1,max=255"`
}

type ChangeEmailRequest struct {
	NewEmail        string `json:"newEmail" validate:"required,email"`
	CurrentPassword string `json:"currentPassword" validate:"required"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8,max=255"`
}

type TwoFactorRequest struct {
	Enabled bool `json:"enabled"`
}
