package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/St1cky1/haccp-service/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestTenantResolver_FoundInStore(t *testing.T) {
	f := newFixture(t)
	f.seedCompany(t)

	tenant, found, err := f.resolver.Resolve(context.Background(), chef.UID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "ABC123", tenant.CompanyCode)
	assert.Equal(t, chef.Email, tenant.User.Email)
	assert.NotEmpty(t, tenant.User.ID)
}

func TestTenantResolver_UnknownUID(t *testing.T) {
	f := newFixture(t)
	f.seedCompany(t)

	tenant, found, err := f.resolver.Resolve(context.Background(), "nobody")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, tenant.CompanyCode)

	_, err = f.resolver.Require(context.Background(), "nobody")
	assert.ErrorIs(t, err, entity.ErrTenantNotProvisioned)
}

func TestTenantResolver_Mock(t *testing.T) {
	calls := 0
	repo := &MockCompanyRepository{
		FindMemberByUIDFunc: func(ctx context.Context, uid string) (string, *entity.TenantUser, error) {
			calls++
			if uid == "broken" {
				return "", nil, errors.New("store unavailable")
			}
			return "XYZ", &entity.TenantUser{UID: uid}, nil
		},
	}
	r := NewTenantResolver(repo, zap.NewNop().Sugar())
	ctx := context.Background()

	_, _, err := r.Resolve(ctx, "broken")
	assert.Error(t, err)

	tenant, found, err := r.Resolve(ctx, "u-1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "XYZ", tenant.CompanyCode)

	_, _, _ = r.Resolve(ctx, "u-1")
	assert.Equal(t, 3, calls, "every call goes to the store")
}
