package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/St1cky1/haccp-service/internal/entity"
	"github.com/St1cky1/haccp-service/internal/repository"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockCompanyRepository - мок для ICompanyRepository
type MockCompanyRepository struct {
	repository.ICompanyRepository
	FindMemberByUIDFunc func(ctx context.Context, uid string) (string, *entity.TenantUser, error)
}

func (m *MockCompanyRepository) FindMemberByUID(ctx context.Context, uid string) (string, *entity.TenantUser, error) {
	if m.FindMemberByUIDFunc != nil {
		return m.FindMemberByUIDFunc(ctx, uid)
	}
	return "", nil, nil
}

// MockMonitoringTaskRepository оборачивает настоящий репозиторий; заданные функции подменяют методы
type MockMonitoringTaskRepository struct {
	repository.IMonitoringTaskRepository
	CreateFunc func(ctx context.Context, companyCode string, task *entity.MonitoringTask) (string, error)
	DeleteFunc func(ctx context.Context, companyCode, id string) error
	UpdateFunc func(ctx context.Context, companyCode, id string, updates map[string]any) error
}

func (m *MockMonitoringTaskRepository) Create(ctx context.Context, companyCode string, task *entity.MonitoringTask) (string, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, companyCode, task)
	}
	return m.IMonitoringTaskRepository.Create(ctx, companyCode, task)
}

func (m *MockMonitoringTaskRepository) Delete(ctx context.Context, companyCode, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, companyCode, id)
	}
	return m.IMonitoringTaskRepository.Delete(ctx, companyCode, id)
}

func (m *MockMonitoringTaskRepository) Update(ctx context.Context, companyCode, id string, updates map[string]any) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, companyCode, id, updates)
	}
	return m.IMonitoringTaskRepository.Update(ctx, companyCode, id, updates)
}

// MockAuditPublisher складывает сообщения в канал
type MockAuditPublisher struct {
	PublishAuditMessageFunc func(ctx context.Context, message *entity.AuditMessage) error
	messages                chan *entity.AuditMessage
}

func NewMockAuditPublisher() *MockAuditPublisher {
	return &MockAuditPublisher{messages: make(chan *entity.AuditMessage, 16)}
}

func (m *MockAuditPublisher) PublishAuditMessage(ctx context.Context, message *entity.AuditMessage) error {
	m.messages <- message
	if m.PublishAuditMessageFunc != nil {
		return m.PublishAuditMessageFunc(ctx, message)
	}
	return nil
}

func (m *MockAuditPublisher) next(t *testing.T) *entity.AuditMessage {
	t.Helper()
	select {
	case msg := <-m.messages:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("audit message was not published")
		return nil
	}
}

var (
	chef = entity.Principal{UID: "u-chef", Email: "chef@example.com", DisplayName: "Chef"}
	cook = entity.Principal{UID: "u-cook", Email: "cook@example.com", DisplayName: "Cook"}
)

const companyCode = "ABC123"

type fixture struct {
	store      *repository.MemoryDocumentStore
	tasks      *repository.MonitoringTaskRepository
	refs       *repository.ReferenceRepository
	companies  *repository.CompanyRepository
	accounts   *repository.AccountRepository
	tokens     *repository.RefreshTokenRepository
	audits     *repository.TaskAuditRepository
	resolver   *TenantResolver
	workspaces *WorkspaceManager
	publisher  *MockAuditPublisher
	log        *zap.SugaredLogger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := repository.NewMemoryDocumentStore()
	log := zap.NewNop().Sugar()

	f := &fixture{
		store:     store,
		tasks:     repository.NewMonitoringTaskRepository(store),
		refs:      repository.NewReferenceRepository(store),
		companies: repository.NewCompanyRepository(store),
		accounts:  repository.NewAccountRepository(store),
		tokens:    repository.NewRefreshTokenRepository(store),
		audits:    repository.NewTaskAuditRepository(store),
		publisher: NewMockAuditPublisher(),
		log:       log,
	}
	f.resolver = NewTenantResolver(f.companies, log)
	f.workspaces = NewWorkspaceManager(f.resolver, f.tasks, f.refs, time.Minute, log)
	return f
}

// seedCompany создает компанию ABC123, где chef - участник
func (f *fixture) seedCompany(t *testing.T) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, f.companies.Create(ctx, &entity.Company{Code: companyCode, Name: "Bistro"}))
	_, err := f.companies.AddMember(ctx, companyCode, &entity.TenantUser{
		UID:         chef.UID,
		Email:       chef.Email,
		DisplayName: chef.DisplayName,
		Role:        RoleManagement,
	})
	require.NoError(t, err)

	_, err = f.store.CreateDocument(ctx, repository.CompanyCollection(companyCode, entity.CollectionSOPs),
		entity.SOP{Title: "Cooling", Description: "cool fast", Version: "3"})
	require.NoError(t, err)
	_, err = f.store.CreateDocument(ctx, repository.CompanyCollection(companyCode, entity.CollectionRooms),
		entity.Location{Name: "Kitchen"})
	require.NoError(t, err)
}

func (f *fixture) seedTask(t *testing.T, name string) entity.MonitoringTask {
	t.Helper()
	task := entity.MonitoringTask{
		Name:           name,
		Responsibility: entity.ResponsibilityProductionStaff,
		InUse:          true,
		Status:         entity.StatusActive,
		Type:           entity.TaskTypeChecklist,
		Details:        entity.Details{Frequency: entity.FrequencyDaily, StartTime: "08:00"},
		Checklist:      []entity.ChecklistItem{{Title: "Sanitize"}},
		CreatedBy:      chef.Actor(),
	}
	id, err := f.tasks.Create(context.Background(), companyCode, &task)
	require.NoError(t, err)
	task.ID = id
	return task
}
