package usecase

import (
	"context"
	"fmt"

	"github.com/St1cky1/haccp-service/internal/entity"
	"github.com/St1cky1/haccp-service/internal/metrics"
	"github.com/St1cky1/haccp-service/internal/repository"
	"go.uber.org/zap"
)

// TenantResolver находит компанию пользователя по uid.
// Результат не кешируется: каждый вызов идет в хранилище.
type TenantResolver struct {
	companyRepo repository.ICompanyRepository
	log         *zap.SugaredLogger
}

func NewTenantResolver(companyRepo repository.ICompanyRepository, log *zap.SugaredLogger) *TenantResolver {
	return &TenantResolver{
		companyRepo: companyRepo,
		log:         log,
	}
}

// Resolve возвращает found=false без ошибки, если пользователь не состоит ни в одной компании
func (r *TenantResolver) Resolve(ctx context.Context, uid string) (entity.Tenant, bool, error) {
	code, user, err := r.companyRepo.FindMemberByUID(ctx, uid)
	if err != nil {
		metrics.TenantResolutions.WithLabelValues(metrics.ResultError).Inc()
		return entity.Tenant{}, false, fmt.Errorf("failed to resolve tenant: %w", err)
	}
	if user == nil {
		metrics.TenantResolutions.WithLabelValues(metrics.ResultNotFound).Inc()
		r.log.Debugw("user has no company", "uid", uid)
		return entity.Tenant{}, false, nil
	}

	metrics.TenantResolutions.WithLabelValues(metrics.ResultFound).Inc()
	return entity.Tenant{CompanyCode: code, User: user}, true, nil
}

// Require - то же, но отсутствие компании это ErrTenantNotProvisioned
func (r *TenantResolver) Require(ctx context.Context, uid string) (entity.Tenant, error) {
	tenant, found, err := r.Resolve(ctx, uid)
	if err != nil {
		return entity.Tenant{}, err
	}
	if !found {
		return entity.Tenant{}, entity.ErrTenantNotProvisioned
	}
	return tenant, nil
}
