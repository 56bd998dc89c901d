package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/St1cky1/haccp-service/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCompanyService(f *fixture) *CompanyService {
	return NewCompanyService(f.companies, f.accounts, f.resolver, f.workspaces, f.log)
}

func registerAccount(t *testing.T, f *fixture, p entity.Principal) {
	t.Helper()
	require.NoError(t, f.accounts.Create(context.Background(), &entity.Account{
		UID:         p.UID,
		Email:       p.Email,
		DisplayName: p.DisplayName,
		IsActive:    true,
		CreatedAt:   time.Now(),
	}))
}

func TestCompanyService_SetupProvisionsOwner(t *testing.T) {
	f := newFixture(t)
	s := newCompanyService(f)
	ctx := context.Background()

	_, err := f.workspaces.Get(ctx, chef)
	require.ErrorIs(t, err, entity.ErrTenantNotProvisioned)

	company, err := s.Setup(ctx, chef, &entity.CompanySetupRequest{Code: "abc123", Name: "Bistro"})
	require.NoError(t, err)
	assert.Equal(t, "ABC123", company.Code)

	tenant, found, err := f.resolver.Resolve(ctx, chef.UID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "ABC123", tenant.CompanyCode)
	assert.Equal(t, RoleManagement, tenant.User.Role)

	ws, err := f.workspaces.Get(ctx, chef)
	require.NoError(t, err)
	assert.Equal(t, "ABC123", ws.CompanyCode)

	_, err = s.Setup(ctx, chef, &entity.CompanySetupRequest{Code: "OTHER1", Name: "Other"})
	assert.ErrorIs(t, err, entity.ErrMemberExists)
	_, err = s.Setup(ctx, cook, &entity.CompanySetupRequest{Code: "ABC123", Name: "Clone"})
	assert.ErrorIs(t, err, entity.ErrCompanyExists)
	_, err = s.Setup(ctx, cook, &entity.CompanySetupRequest{Code: "a-b", Name: "Bad"})
	assert.True(t, entity.IsValidation(err))
}

func TestCompanyService_Team(t *testing.T) {
	f := newFixture(t)
	f.seedCompany(t)
	registerAccount(t, f, cook)
	s := newCompanyService(f)
	ctx := context.Background()

	_, err := s.AddMember(ctx, chef, &entity.AddMemberRequest{Email: "ghost@example.com", Role: "Staff"})
	assert.ErrorIs(t, err, entity.ErrUserNotFound)

	member, err := s.AddMember(ctx, chef, &entity.AddMemberRequest{Email: "COOK@example.com", Role: "Staff", Department: "Kitchen"})
	require.NoError(t, err)
	assert.Equal(t, cook.UID, member.UID)

	_, err = s.AddMember(ctx, chef, &entity.AddMemberRequest{Email: cook.Email, Role: "Staff"})
	assert.ErrorIs(t, err, entity.ErrMemberExists)

	members, err := s.ListMembers(ctx, chef)
	require.NoError(t, err)
	assert.Len(t, members, 2)

	updated, err := s.UpdateMember(ctx, chef, member.ID, &entity.UpdateMemberRequest{Role: ptr("Quality Assurance")})
	require.NoError(t, err)
	assert.Equal(t, "Quality Assurance", updated.Role)
	assert.Equal(t, "Kitchen", updated.Department)

	_, err = s.UpdateMember(ctx, chef, member.ID, &entity.UpdateMemberRequest{})
	assert.ErrorIs(t, err, entity.ErrNoFieldsToUpdate)

	tenant, found, err := f.resolver.Resolve(ctx, cook.UID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, companyCode, tenant.CompanyCode)

	require.NoError(t, s.RemoveMember(ctx, chef, member.ID))
	_, found, err = f.resolver.Resolve(ctx, cook.UID)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestReferenceService_Catalog(t *testing.T) {
	f := newFixture(t)
	f.seedCompany(t)
	s := NewReferenceService(f.refs, f.resolver, f.workspaces, f.log)
	ctx := context.Background()

	sop, err := s.Create(ctx, chef, entity.CollectionSOPs, &entity.CatalogItemRequest{Title: "Allergens", Version: "1"})
	require.NoError(t, err)
	assert.Equal(t, "Allergens", sop.Title)

	items, err := s.List(ctx, chef, entity.CollectionSOPs, "aller")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, sop.ID, items[0].ID)

	_, err = s.Replace(ctx, chef, entity.CollectionSOPs, sop.ID, &entity.CatalogItemRequest{Title: "Allergen control", Version: "2"})
	require.NoError(t, err)
	sops, err := f.refs.ListSOPs(ctx, companyCode)
	require.NoError(t, err)
	assert.Len(t, sops, 2)

	require.NoError(t, s.Delete(ctx, chef, entity.CollectionSOPs, sop.ID))
	assert.ErrorIs(t, s.Delete(ctx, chef, entity.CollectionSOPs, sop.ID), entity.ErrReferenceNotFound)

	_, err = s.List(ctx, chef, "recipes", "")
	assert.True(t, entity.IsValidation(err))

	_, err = s.Create(ctx, chef, entity.CollectionDepartments, &entity.CatalogItemRequest{})
	assert.True(t, entity.IsValidation(err))

	_, err = s.List(ctx, cook, entity.CollectionRooms, "")
	assert.ErrorIs(t, err, entity.ErrTenantNotProvisioned)
}
