package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/St1cky1/haccp-service/internal/composer"
	"github.com/St1cky1/haccp-service/internal/entity"
	"github.com/St1cky1/haccp-service/internal/repository"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// Workspace - рабочее состояние пользователя: список задач компании,
// мастер задачи и загруженные справочники.
type Workspace struct {
	mu sync.Mutex

	Principal   entity.Principal
	CompanyCode string
	Member      *entity.TenantUser
	Tasks       *composer.TaskList
	Composer    *composer.Composer
	SOPs        *composer.SOPPicker
	Locations   composer.LocationOptions
}

// Do выполняет fn под блокировкой рабочего пространства
func (w *Workspace) Do(fn func(w *Workspace) error) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return fn(w)
}

// WorkspaceManager держит рабочие пространства в памяти с истечением по DRAFT_TTL.
// Истекшее пространство теряет черновик, как закрытый диалог.
type WorkspaceManager struct {
	cache    *cache.Cache
	group    singleflight.Group
	resolver *TenantResolver
	taskRepo repository.IMonitoringTaskRepository
	refRepo  repository.IReferenceRepository
	log      *zap.SugaredLogger
}

func NewWorkspaceManager(
	resolver *TenantResolver,
	taskRepo repository.IMonitoringTaskRepository,
	refRepo repository.IReferenceRepository,
	ttl time.Duration,
	log *zap.SugaredLogger,
) *WorkspaceManager {
	return &WorkspaceManager{
		cache:    cache.New(ttl, 2*ttl),
		resolver: resolver,
		taskRepo: taskRepo,
		refRepo:  refRepo,
		log:      log,
	}
}

// Get возвращает открытое пространство или открывает новое.
// Каждое обращение продлевает срок жизни.
func (m *WorkspaceManager) Get(ctx context.Context, principal entity.Principal) (*Workspace, error) {
	if v, ok := m.cache.Get(principal.UID); ok {
		ws := v.(*Workspace)
		m.cache.SetDefault(principal.UID, ws)
		return ws, nil
	}

	v, err, _ := m.group.Do(principal.UID, func() (interface{}, error) {
		if v, ok := m.cache.Get(principal.UID); ok {
			return v, nil
		}
		return m.Open(ctx, principal)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Workspace), nil
}

// Open разрешает компанию заново и загружает задачи и справочники параллельно
func (m *WorkspaceManager) Open(ctx context.Context, principal entity.Principal) (*Workspace, error) {
	tenant, err := m.resolver.Require(ctx, principal.UID)
	if err != nil {
		return nil, err
	}

	var (
		tasks []entity.MonitoringTask
		refs  references
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		tasks, err = m.taskRepo.List(gctx, tenant.CompanyCode)
		if err != nil {
			return fmt.Errorf("failed to load tasks: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		refs, err = m.loadReferences(gctx, tenant.CompanyCode)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	list := composer.NewTaskList(tasks)
	ws := &Workspace{
		Principal:   principal,
		CompanyCode: tenant.CompanyCode,
		Member:      tenant.User,
		Tasks:       list,
		Composer:    composer.New(m.taskRepo, list, tenant.CompanyCode, principal.Actor(), m.log.Named("composer")),
		SOPs:        composer.NewSOPPicker(refs.sops),
		Locations:   refs.locations,
	}
	m.cache.SetDefault(principal.UID, ws)

	m.log.Infow("workspace opened", "uid", principal.UID, "company", tenant.CompanyCode, "tasks", len(tasks))
	return ws, nil
}

// Close отбрасывает пространство вместе с черновиком
func (m *WorkspaceManager) Close(uid string) {
	m.cache.Delete(uid)
}

// ReloadReferences обновляет справочники во всех открытых пространствах компании.
// Открытый выбор SOP не сбрасывается.
func (m *WorkspaceManager) ReloadReferences(ctx context.Context, companyCode string) error {
	var open []*Workspace
	for _, item := range m.cache.Items() {
		if ws, ok := item.Object.(*Workspace); ok && ws.CompanyCode == companyCode {
			open = append(open, ws)
		}
	}
	if len(open) == 0 {
		return nil
	}

	refs, err := m.loadReferences(ctx, companyCode)
	if err != nil {
		return err
	}
	for _, ws := range open {
		_ = ws.Do(func(ws *Workspace) error {
			if !ws.SOPs.IsOpen() {
				ws.SOPs = composer.NewSOPPicker(refs.sops)
			}
			ws.Locations = refs.locations
			return nil
		})
	}
	return nil
}

type references struct {
	sops      []entity.SOP
	locations composer.LocationOptions
}

func (m *WorkspaceManager) loadReferences(ctx context.Context, companyCode string) (references, error) {
	var (
		mu   sync.Mutex
		refs = references{locations: make(composer.LocationOptions, len(entity.LocationTypes))}
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		sops, err := m.refRepo.ListSOPs(gctx, companyCode)
		if err != nil {
			return fmt.Errorf("failed to load sops: %w", err)
		}
		refs.sops = sops
		return nil
	})
	for _, lt := range entity.LocationTypes {
		g.Go(func() error {
			locations, err := m.refRepo.ListLocations(gctx, companyCode, lt)
			if err != nil {
				return fmt.Errorf("failed to load %s locations: %w", lt, err)
			}
			mu.Lock()
			refs.locations[lt] = locations
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return references{}, err
	}
	return refs, nil
}
