package usecase

import (
	"bytes"
	"context"
	"testing"

	"github.com/St1cky1/haccp-service/internal/entity"
	"github.com/St1cky1/haccp-service/internal/infrastructure/auth"
	"github.com/St1cky1/haccp-service/internal/infrastructure/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// минимальный PNG: сигнатура достаточна для DetectContentType
var pngData = append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 64)...)

type profileFixture struct {
	*fixture
	service   *ProfileService
	blobs     *storage.BillyBlobStore
	passwords *auth.PasswordManager
}

func newProfileFixture(t *testing.T) *profileFixture {
	t.Helper()
	f := newFixture(t)
	f.seedCompany(t)

	passwords := auth.NewPasswordManagerWithCost(4)
	hash, err := passwords.HashPassword("old-password")
	require.NoError(t, err)
	require.NoError(t, f.accounts.Create(context.Background(), &entity.Account{
		UID:          chef.UID,
		Email:        chef.Email,
		DisplayName:  chef.DisplayName,
		PasswordHash: hash,
		IsActive:     true,
	}))

	blobs := storage.NewMemoryBlobStore("http://localhost:8080/files")
	return &profileFixture{
		fixture:   f,
		service:   NewProfileService(f.accounts, f.companies, f.tokens, f.resolver, blobs, passwords, f.log),
		blobs:     blobs,
		passwords: passwords,
	}
}

func TestProfileService_GetProfileIncludesTenant(t *testing.T) {
	f := newProfileFixture(t)

	profile, err := f.service.GetProfile(context.Background(), chef)
	require.NoError(t, err)
	assert.Equal(t, companyCode, profile.CompanyCode)
	assert.Equal(t, RoleManagement, profile.Role)

	_, err = f.service.GetProfile(context.Background(), cook)
	assert.ErrorIs(t, err, entity.ErrUserNotFound)
}

func TestProfileService_UpdateDisplayNameSyncsMember(t *testing.T) {
	f := newProfileFixture(t)
	ctx := context.Background()

	profile, err := f.service.UpdateDisplayName(ctx, chef, &entity.UpdateDisplayNameRequest{DisplayName: "  Head Chef "})
	require.NoError(t, err)
	assert.Equal(t, "Head Chef", profile.DisplayName)

	_, member, err := f.companies.FindMemberByUID(ctx, chef.UID)
	require.NoError(t, err)
	assert.Equal(t, "Head Chef", member.DisplayName)

	_, err = f.service.UpdateDisplayName(ctx, chef, &entity.UpdateDisplayNameRequest{DisplayName: "   "})
	assert.True(t, entity.IsValidation(err))
}

func TestProfileService_ChangeEmail(t *testing.T) {
	f := newProfileFixture(t)
	ctx := context.Background()
	registerAccount(t, f.fixture, cook)

	_, err := f.service.ChangeEmail(ctx, chef, &entity.ChangeEmailRequest{NewEmail: "new@example.com", CurrentPassword: "wrong"})
	assert.ErrorIs(t, err, entity.ErrInvalidCredentials)

	_, err = f.service.ChangeEmail(ctx, chef, &entity.ChangeEmailRequest{NewEmail: cook.Email, CurrentPassword: "old-password"})
	assert.ErrorIs(t, err, entity.ErrEmailTaken)

	profile, err := f.service.ChangeEmail(ctx, chef, &entity.ChangeEmailRequest{NewEmail: "New@Example.com", CurrentPassword: "old-password"})
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", profile.Email)

	account, err := f.accounts.GetByEmail(ctx, "new@example.com")
	require.NoError(t, err)
	require.NotNil(t, account)
	assert.Equal(t, chef.UID, account.UID)
}

func TestProfileService_ChangePasswordRevokesSessions(t *testing.T) {
	f := newProfileFixture(t)
	ctx := context.Background()

	authService := NewAuthService(f.accounts, f.tokens, f.passwords, auth.NewJWTManager("test-secret"), f.log)
	session, err := authService.Login(ctx, &entity.LoginRequest{Email: chef.Email, Password: "old-password"})
	require.NoError(t, err)

	err = f.service.ChangePassword(ctx, chef, &entity.ChangePasswordRequest{CurrentPassword: "nope", NewPassword: "new-password"})
	assert.ErrorIs(t, err, entity.ErrInvalidCredentials)

	require.NoError(t, f.service.ChangePassword(ctx, chef, &entity.ChangePasswordRequest{CurrentPassword: "old-password", NewPassword: "new-password"}))

	_, err = authService.RefreshToken(ctx, &entity.RefreshTokenRequest{RefreshToken: session.RefreshToken})
	assert.ErrorIs(t, err, entity.ErrInvalidToken)

	_, err = authService.Login(ctx, &entity.LoginRequest{Email: chef.Email, Password: "old-password"})
	assert.ErrorIs(t, err, entity.ErrInvalidCredentials)
	_, err = authService.Login(ctx, &entity.LoginRequest{Email: chef.Email, Password: "new-password"})
	assert.NoError(t, err)
}

func TestProfileService_AvatarLifecycle(t *testing.T) {
	f := newProfileFixture(t)
	ctx := context.Background()

	_, err := f.service.DownloadAvatar(ctx, chef)
	assert.ErrorIs(t, err, entity.ErrBlobNotFound)

	first, err := f.service.UploadAvatar(ctx, chef, &entity.UploadImageRequest{Data: pngData, FileName: "me.PNG"})
	require.NoError(t, err)
	assert.Equal(t, "image/png", first.ContentType)
	assert.Contains(t, first.Path, "avatars/"+chef.UID+"/")
	assert.True(t, len(first.Path) > 4 && first.Path[len(first.Path)-4:] == ".png")
	assert.Equal(t, "http://localhost:8080/files/"+first.Path, first.URL)

	file, err := f.service.DownloadAvatar(ctx, chef)
	require.NoError(t, err)
	assert.Equal(t, pngData, file.Data)

	_, member, err := f.companies.FindMemberByUID(ctx, chef.UID)
	require.NoError(t, err)
	assert.Equal(t, first.URL, member.PhotoURL)

	second, err := f.service.UploadAvatar(ctx, chef, &entity.UploadImageRequest{Data: pngData, ContentType: "image/png"})
	require.NoError(t, err)
	assert.NotEqual(t, first.Path, second.Path)

	_, err = f.blobs.Get(ctx, first.Path)
	assert.ErrorIs(t, err, entity.ErrBlobNotFound, "previous avatar is removed")

	opened, err := f.service.OpenFile(ctx, second.Path)
	require.NoError(t, err)
	assert.Equal(t, pngData, opened.Data)
}

func TestProfileService_UploadRejects(t *testing.T) {
	f := newProfileFixture(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		req     *entity.UploadImageRequest
		wantErr error
	}{
		{"empty", &entity.UploadImageRequest{}, entity.ErrUnsupportedFileType},
		{"too large", &entity.UploadImageRequest{Data: make([]byte, entity.MaxImageSize+1), ContentType: "image/png"}, entity.ErrFileTooLarge},
		{"not an image", &entity.UploadImageRequest{Data: []byte("%PDF-1.4 hello"), FileName: "doc.pdf"}, entity.ErrUnsupportedFileType},
		{"declared text", &entity.UploadImageRequest{Data: pngData, ContentType: "text/plain; charset=utf-8"}, entity.ErrUnsupportedFileType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.UploadAvatar(ctx, chef, tt.req)
			require.Error(t, err)
			assert.True(t, entity.IsValidation(err))
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	account, err := f.accounts.GetByUID(ctx, chef.UID)
	require.NoError(t, err)
	assert.Empty(t, account.PhotoURL)
}

func TestProfileService_CompanyLogo(t *testing.T) {
	f := newProfileFixture(t)
	ctx := context.Background()

	blob, err := f.service.UploadCompanyLogo(ctx, chef, &entity.UploadImageRequest{Data: pngData, ContentType: "image/png"})
	require.NoError(t, err)
	assert.Contains(t, blob.Path, "logos/"+companyCode+"/")

	company, err := f.companies.Get(ctx, companyCode)
	require.NoError(t, err)
	assert.Equal(t, blob.URL, company.LogoURL)
	assert.Equal(t, blob.Path, company.LogoPath)

	_, err = f.service.UploadCompanyLogo(ctx, cook, &entity.UploadImageRequest{Data: pngData})
	assert.ErrorIs(t, err, entity.ErrTenantNotProvisioned)
}
