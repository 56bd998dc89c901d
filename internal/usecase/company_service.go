package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/St1cky1/haccp-service/internal/entity"
	"github.com/St1cky1/haccp-service/internal/repository"
	"go.uber.org/zap"
)

const RoleManagement = string(entity.ResponsibilityManagement)

// CompanyService - создание компании и управление командой
type CompanyService struct {
	companyRepo repository.ICompanyRepository
	accountRepo repository.IAccountRepository
	resolver    *TenantResolver
	workspaces  *WorkspaceManager
	now         func() time.Time
	log         *zap.SugaredLogger
}

func NewCompanyService(
	companyRepo repository.ICompanyRepository,
	accountRepo repository.IAccountRepository,
	resolver *TenantResolver,
	workspaces *WorkspaceManager,
	log *zap.SugaredLogger,
) *CompanyService {
	return &CompanyService{
		companyRepo: companyRepo,
		accountRepo: accountRepo,
		resolver:    resolver,
		workspaces:  workspaces,
		now:         time.Now,
		log:         log,
	}
}

// Setup создает компанию и делает автора ее первым участником
func (s *CompanyService) Setup(ctx context.Context, principal entity.Principal, req *entity.CompanySetupRequest) (*entity.Company, error) {
	if err := validateRequest(req, entity.ErrInvalidUserData); err != nil {
		return nil, err
	}
	code := strings.ToUpper(req.Code)

	// 1. Пользователь может состоять только в одной компании
	_, found, err := s.resolver.Resolve(ctx, principal.UID)
	if err != nil {
		return nil, err
	}
	if found {
		return nil, entity.ErrMemberExists
	}

	// 2. Код компании уникален
	existing, err := s.companyRepo.Get(ctx, code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, entity.ErrCompanyExists
	}

	now := s.now()
	company := &entity.Company{
		Code:      code,
		Name:      strings.TrimSpace(req.Name),
		Address:   strings.TrimSpace(req.Address),
		CreatedAt: now,
		CreatedBy: principal.Actor(),
	}
	if err := s.companyRepo.Create(ctx, company); err != nil {
		return nil, fmt.Errorf("failed to create company: %w", err)
	}

	owner := &entity.TenantUser{
		UID:         principal.UID,
		Email:       principal.Email,
		DisplayName: principal.DisplayName,
		Role:        RoleManagement,
		JoinedAt:    now,
	}
	if _, err := s.companyRepo.AddMember(ctx, code, owner); err != nil {
		return nil, fmt.Errorf("failed to add company owner: %w", err)
	}

	s.closeWorkspace(principal.UID)
	s.log.Infow("company created", "company", code, "uid", principal.UID)
	return company, nil
}

func (s *CompanyService) GetCompany(ctx context.Context, principal entity.Principal) (*entity.Company, error) {
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
	return company, nil
}

func (s *CompanyService) ListMembers(ctx context.Context, principal entity.Principal) ([]entity.TenantUser, error) {
	tenant, err := s.resolver.Require(ctx, principal.UID)
	if err != nil {
		return nil, err
	}
	return s.companyRepo.ListMembers(ctx, tenant.CompanyCode)
}

// AddMember добавляет зарегистрированного пользователя в команду по email
func (s *CompanyService) AddMember(ctx context.Context, principal entity.Principal, req *entity.AddMemberRequest) (*entity.TenantUser, error) {
	if err := validateRequest(req, entity.ErrInvalidUserData); err != nil {
		return nil, err
	}
	tenant, err := s.resolver.Require(ctx, principal.UID)
	if err != nil {
		return nil, err
	}

	account, err := s.accountRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, entity.ErrUserNotFound
	}

	_, found, err := s.resolver.Resolve(ctx, account.UID)
	if err != nil {
		return nil, err
	}
	if found {
		return nil, entity.ErrMemberExists
	}

	member := &entity.TenantUser{
		UID:              account.UID,
		Email:            account.Email,
		DisplayName:      account.DisplayName,
		Role:             strings.TrimSpace(req.Role),
		Department:       strings.TrimSpace(req.Department),
		PhotoURL:         account.PhotoURL,
		TwoFactorEnabled: account.TwoFactorEnabled,
		JoinedAt:         s.now(),
	}
	id, err := s.companyRepo.AddMember(ctx, tenant.CompanyCode, member)
	if err != nil {
		return nil, fmt.Errorf("failed to add member: %w", err)
	}
	member.ID = id

	s.closeWorkspace(account.UID)
	return member, nil
}

func (s *CompanyService) UpdateMember(ctx context.Context, principal entity.Principal, memberID string, req *entity.UpdateMemberRequest) (*entity.TenantUser, error) {
	if err := validateRequest(req, entity.ErrInvalidUserData); err != nil {
		return nil, err
	}
	tenant, err := s.resolver.Require(ctx, principal.UID)
	if err != nil {
		return nil, err
	}

	member, err := s.companyRepo.GetMember(ctx, tenant.CompanyCode, memberID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, entity.ErrUserNotFound
	}

	updates := make(map[string]any)
	if req.Role != nil {
		updates["role"] = strings.TrimSpace(*req.Role)
		member.Role = strings.TrimSpace(*req.Role)
	}
	if req.Department != nil {
		updates["department"] = strings.TrimSpace(*req.Department)
		member.Department = strings.TrimSpace(*req.Department)
	}
	if len(updates) == 0 {
		return nil, entity.ErrNoFieldsToUpdate
	}

	if err := s.companyRepo.UpdateMember(ctx, tenant.CompanyCode, memberID, updates); err != nil {
		return nil, fmt.Errorf("failed to update member: %w", err)
	}
	return member, nil
}

func (s *CompanyService) RemoveMember(ctx context.Context, principal entity.Principal, memberID string) error {
	tenant, err := s.resolver.Require(ctx, principal.UID)
	if err != nil {
		return err
	}

	member, err := s.companyRepo.GetMember(ctx, tenant.CompanyCode, memberID)
	if err != nil {
		return err
	}
	if member == nil {
		return entity.ErrUserNotFound
	}
	if err := s.companyRepo.RemoveMember(ctx, tenant.CompanyCode, memberID); err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}

	s.closeWorkspace(member.UID)
	return nil
}

func (s *CompanyService) closeWorkspace(uid string) {
	if s.workspaces != nil {
		s.workspaces.Close(uid)
	}
}
