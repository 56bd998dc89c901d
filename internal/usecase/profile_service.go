package usecase

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/St1cky1/haccp-service/internal/entity"
	"github.com/St1cky1/haccp-service/internal/infrastructure/auth"
	"github.com/St1cky1/haccp-service/internal/infrastructure/storage"
	"github.com/St1cky1/haccp-service/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const uploadTimeout = 30 * time.Second

// ProfileService - профиль и безопасность учетной записи.
// Изменения дублируются в документ участника компании, если он есть.
type ProfileService struct {
	accountRepo      repository.IAccountRepository
	companyRepo      repository.ICompanyRepository
	refreshTokenRepo repository.IRefreshTokenRepository
	resolver         *TenantResolver
	blobs            storage.BlobStore
	passwordManager  *auth.PasswordManager
	now              func() time.Time
	log              *zap.SugaredLogger
}

func NewProfileService(
	accountRepo repository.IAccountRepository,
	companyRepo repository.ICompanyRepository,
	refreshTokenRepo repository.IRefreshTokenRepository,
	resolver *TenantResolver,
	blobs storage.BlobStore,
	passwordManager *auth.PasswordManager,
	log *zap.SugaredLogger,
) *ProfileService {
	return &ProfileService{
		accountRepo:      accountRepo,
		companyRepo:      companyRepo,
		refreshTokenRepo: refreshTokenRepo,
		resolver:         resolver,
		blobs:            blobs,
		passwordManager:  passwordManager,
		now:              time.Now,
		log:              log,
	}
}

func (s *ProfileService) account(ctx context.Context, uid string) (*entity.Account, error) {
	account, err := s.accountRepo.GetByUID(ctx, uid)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, entity.ErrUserNotFound
	}
	return account, nil
}

// GetProfile - учетная запись вместе с компанией и ролью
func (s *ProfileService) GetProfile(ctx context.Context, principal entity.Principal) (*entity.Profile, error) {
	account, err := s.account(ctx, principal.UID)
	if err != nil {
		return nil, err
	}
	profile := account.Profile()

	tenant, found, err := s.resolver.Resolve(ctx, principal.UID)
	if err != nil {
		return nil, err
	}
	if found {
		profile.CompanyCode = tenant.CompanyCode
		profile.Role = tenant.User.Role
		profile.Department = tenant.User.Department
	}
	return &profile, nil
}

func (s *ProfileService) UpdateDisplayName(ctx context.Context, principal entity.Principal, req *entity.UpdateDisplayNameRequest) (*entity.Profile, error) {
	if err := validateRequest(req, entity.ErrInvalidUserData); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.DisplayName)
	if name == "" {
		return nil, entity.NewValidationError("displayName", entity.ErrInvalidUserData)
	}
	if err := s.apply(ctx, principal.UID, map[string]any{"displayName": name}); err != nil {
		return nil, err
	}
	return s.GetProfile(ctx, principal)
}

// ChangeEmail требует текущий пароль
func (s *ProfileService) ChangeEmail(ctx context.Context, principal entity.Principal, req *entity.ChangeEmailRequest) (*entity.Profile, error) {
	if err := validateRequest(req, entity.ErrInvalidUserData); err != nil {
		return nil, err
	}
	account, err := s.account(ctx, principal.UID)
	if err != nil {
		return nil, err
	}
	if !s.passwordManager.VerifyPassword(account.PasswordHash, req.CurrentPassword) {
		return nil, entity.ErrInvalidCredentials
	}

	email := strings.ToLower(strings.TrimSpace(req.NewEmail))
	other, err := s.accountRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if other != nil && other.UID != account.UID {
		return nil, entity.ErrEmailTaken
	}

	if err := s.apply(ctx, principal.UID, map[string]any{"email": email}); err != nil {
		return nil, err
	}
	return s.GetProfile(ctx, principal)
}

// ChangePassword отзывает все refresh токены: остальные сессии придется открыть заново
func (s *ProfileService) ChangePassword(ctx context.Context, principal entity.Principal, req *entity.ChangePasswordRequest) error {
	if err := validateRequest(req, entity.ErrInvalidUserData); err != nil {
		return err
	}
	account, err := s.account(ctx, principal.UID)
	if err != nil {
		return err
	}
	if !s.passwordManager.VerifyPassword(account.PasswordHash, req.CurrentPassword) {
		return entity.ErrInvalidCredentials
	}

	hash, err := s.passwordManager.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	updates := map[string]any{"passwordHash": hash, "updatedAt": s.now()}
	if err := s.accountRepo.Update(ctx, principal.UID, updates); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return s.refreshTokenRepo.RevokeAll(ctx, principal.UID)
}

func (s *ProfileService) SetTwoFactor(ctx context.Context, principal entity.Principal, req *entity.TwoFactorRequest) (*entity.Profile, error) {
	if err := s.apply(ctx, principal.UID, map[string]any{"twoFactorEnabled": req.Enabled}); err != nil {
		return nil, err
	}
	return s.GetProfile(ctx, principal)
}

// UploadAvatar - только изображения до 5 МБ; прежний файл удаляется после успешной записи
func (s *ProfileService) UploadAvatar(ctx context.Context, principal entity.Principal, req *entity.UploadImageRequest) (*entity.Blob, error) {
	account, err := s.account(ctx, principal.UID)
	if err != nil {
		return nil, err
	}

	blob, err := s.upload(ctx, "avatars/"+principal.UID, req)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{"photoUrl": blob.URL, "photoPath": blob.Path}
	if err := s.apply(ctx, principal.UID, updates); err != nil {
		s.remove(blob.Path)
		return nil, err
	}

	if account.PhotoPath != "" && account.PhotoPath != blob.Path {
		s.remove(account.PhotoPath)
	}
	return blob, nil
}

func (s *ProfileService) DownloadAvatar(ctx context.Context, principal entity.Principal) (*entity.DownloadedFile, error) {
	account, err := s.account(ctx, principal.UID)
	if err != nil {
		return nil, err
	}
	if account.PhotoPath == "" {
		return nil, entity.ErrBlobNotFound
	}
	return s.blobs.Get(ctx, account.PhotoPath)
}

// UploadCompanyLogo - логотип компании пользователя
func (s *ProfileService) UploadCompanyLogo(ctx context.Context, principal entity.Principal, req *entity.UploadImageRequest) (*entity.Blob, error) {
	tenant, err := s.resolver.Require(ctx, principal.UID)
	if err != nil {
		return nil, err
	}
	company, err := s.companyRepo.Get(ctx, tenant.CompanyCode)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, entity.ErrCompanyNotFound
	}

	blob, err := s.upload(ctx, "logos/"+tenant.CompanyCode, req)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{"logoUrl": blob.URL, "logoPath": blob.Path}
	if err := s.companyRepo.Update(ctx, tenant.CompanyCode, updates); err != nil {
		s.remove(blob.Path)
		return nil, fmt.Errorf("failed to update company logo: %w", err)
	}
	if company.LogoPath != "" && company.LogoPath != blob.Path {
		s.remove(company.LogoPath)
	}
	return blob, nil
}

// OpenFile - публичная раздача загруженных файлов для local и memory режимов
func (s *ProfileService) OpenFile(ctx context.Context, path string) (*entity.DownloadedFile, error) {
	return s.blobs.Get(ctx, path)
}

func (s *ProfileService) upload(ctx context.Context, dir string, req *entity.UploadImageRequest) (*entity.Blob, error) {
	contentType, err := checkImage(req)
	if err != nil {
		return nil, err
	}

	path := dir + "/" + uuid.NewString() + imageExt(req.FileName, contentType)

	uploadCtx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()
	if err := s.blobs.Put(uploadCtx, path, req.Data, contentType); err != nil {
		return nil, fmt.Errorf("failed to upload file: %w", err)
	}

	return &entity.Blob{
		Path:        path,
		URL:         s.blobs.URL(path),
		Size:        len(req.Data),
		ContentType: contentType,
		UploadedAt:  s.now(),
	}, nil
}

// remove - очистка после неудачи, ошибку только пишем в лог
func (s *ProfileService) remove(path string) {
	ctx, cancel := context.WithTimeout(context.Background(), uploadTimeout)
	defer cancel()
	if err := s.blobs.Delete(ctx, path); err != nil {
		s.log.Warnw("failed to remove file", "path", path, "error", err)
	}
}

// apply обновляет учетную запись и, если пользователь в компании, документ участника
func (s *ProfileService) apply(ctx context.Context, uid string, updates map[string]any) error {
	accountUpdates := make(map[string]any, len(updates)+1)
	for k, v := range updates {
		accountUpdates[k] = v
	}
	accountUpdates["updatedAt"] = s.now()
	if err := s.accountRepo.Update(ctx, uid, accountUpdates); err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}

	tenant, found, err := s.resolver.Resolve(ctx, uid)
	if err != nil || !found {
		return err
	}

	memberUpdates := make(map[string]any, len(updates))
	for k, v := range updates {
		if k == "photoPath" {
			continue
		}
		memberUpdates[k] = v
	}
	if err := s.companyRepo.UpdateMember(ctx, tenant.CompanyCode, tenant.User.ID, memberUpdates); err != nil {
		return fmt.Errorf("failed to update team member: %w", err)
	}
	return nil
}

func checkImage(req *entity.UploadImageRequest) (string, error) {
	if len(req.Data) == 0 {
		return "", entity.NewValidationError("file", fmt.Errorf("%w: empty file", entity.ErrUnsupportedFileType))
	}
	if len(req.Data) > entity.MaxImageSize {
		return "", entity.NewValidationError("file", fmt.Errorf("%w: %d bytes, limit %d", entity.ErrFileTooLarge, len(req.Data), entity.MaxImageSize))
	}

	contentType := req.ContentType
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(req.Data)
	}
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
		contentType = mediaType
	}
	if !strings.HasPrefix(contentType, "image/") {
		return "", entity.NewValidationError("file", fmt.Errorf("%w: %s", entity.ErrUnsupportedFileType, contentType))
	}
	return contentType, nil
}

func imageExt(fileName, contentType string) string {
	if ext := strings.ToLower(filepath.Ext(fileName)); ext != "" {
		return ext
	}
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	}
	if exts, err := mime.ExtensionsByType(contentType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ""
}
