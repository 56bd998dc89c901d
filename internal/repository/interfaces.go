package repository

import (
	"context"
	"errors"
	"time"

	"github.com/St1cky1/haccp-service/internal/entity"
	"github.com/goccy/go-json"
)

var (
	ErrDocumentNotFound = errors.New("document not found")
	ErrInvalidPath      = errors.New("invalid document path")
)

// Document - документ хранилища, Data хранится в JSON
type Document struct {
	Path Path
	ID   string
	Data []byte
}

func (d *Document) Decode(v any) error {
	return json.Unmarshal(d.Data, v)
}

// IDocumentStore - иерархическое документное хранилище.
// Отсутствующий документ - это (nil, nil), а не ошибка.
type IDocumentStore interface {
	ListCollection(ctx context.Context, collection Path) ([]Document, error)
	GetDocument(ctx context.Context, doc Path) (*Document, error)
	CreateDocument(ctx context.Context, collection Path, data any) (string, error)
	SetDocument(ctx context.Context, doc Path, data any) error
	UpdateDocument(ctx context.Context, doc Path, partial map[string]any) error
	DeleteDocument(ctx context.Context, doc Path) error
	// FindOneWhere сравнивает только строковые поля верхнего уровня; числа и bool не совпадают никогда
	FindOneWhere(ctx context.Context, collectionGroup, field, value string) (*Document, error)
}

// IMonitoringTaskRepository - задачи мониторинга компании
type IMonitoringTaskRepository interface {
	List(ctx context.Context, companyCode string) ([]entity.MonitoringTask, error)
	Get(ctx context.Context, companyCode, id string) (*entity.MonitoringTask, error)
	Create(ctx context.Context, companyCode string, task *entity.MonitoringTask) (string, error)
	Replace(ctx context.Context, companyCode string, task *entity.MonitoringTask) error
	Update(ctx context.Context, companyCode, id string, updates map[string]any) error
	Delete(ctx context.Context, companyCode, id string) error
}

// IReferenceRepository - справочники компании (SOP, локации, отделы, роли)
type IReferenceRepository interface {
	ListSOPs(ctx context.Context, companyCode string) ([]entity.SOP, error)
	ListLocations(ctx context.Context, companyCode string, locationType entity.LocationType) ([]entity.Location, error)
	ListCatalog(ctx context.Context, companyCode, collection string) ([]entity.CatalogItem, error)
	GetCatalogItem(ctx context.Context, companyCode, collection, id string) (*entity.CatalogItem, error)
	CreateCatalogItem(ctx context.Context, companyCode, collection string, item *entity.CatalogItem) (string, error)
	ReplaceCatalogItem(ctx context.Context, companyCode, collection string, item *entity.CatalogItem) error
	DeleteCatalogItem(ctx context.Context, companyCode, collection, id string) error
}

// ICompanyRepository - компании и члены команды
type ICompanyRepository interface {
	Get(ctx context.Context, code string) (*entity.Company, error)
	Create(ctx context.Context, company *entity.Company) error
	Update(ctx context.Context, code string, updates map[string]any) error
	FindMemberByUID(ctx context.Context, uid string) (companyCode string, user *entity.TenantUser, err error)
	ListMembers(ctx context.Context, code string) ([]entity.TenantUser, error)
	GetMember(ctx context.Context, code, id string) (*entity.TenantUser, error)
	AddMember(ctx context.Context, code string, user *entity.TenantUser) (string, error)
	UpdateMember(ctx context.Context, code, id string, updates map[string]any) error
	RemoveMember(ctx context.Context, code, id string) error
}

// IAccountRepository - учетные записи провайдера идентификации
type IAccountRepository interface {
	Create(ctx context.Context, account *entity.Account) error
	GetByUID(ctx context.Context, uid string) (*entity.Account, error)
	GetByEmail(ctx context.Context, email string) (*entity.Account, error)
	Update(ctx context.Context, uid string, updates map[string]any) error
}

// IRefreshTokenRepository - refresh токены учетной записи
type IRefreshTokenRepository interface {
	Save(ctx context.Context, uid, tokenHash string, expiresAt time.Time) error
	GetByHash(ctx context.Context, uid, tokenHash string) (*entity.RefreshToken, error)
	Revoke(ctx context.Context, uid, id string) error
	RevokeAll(ctx context.Context, uid string) error
}

// ITaskAuditRepository - журнал изменений задач
type ITaskAuditRepository interface {
	Create(ctx context.Context, companyCode string, audit *entity.TaskAudit) error
	List(ctx context.Context, companyCode string) ([]entity.TaskAudit, error)
}

var (
	_ IMonitoringTaskRepository = (*MonitoringTaskRepository)(nil)
	_ IReferenceRepository      = (*ReferenceRepository)(nil)
	_ ICompanyRepository        = (*CompanyRepository)(nil)
	_ IAccountRepository        = (*AccountRepository)(nil)
	_ IRefreshTokenRepository   = (*RefreshTokenRepository)(nil)
	_ ITaskAuditRepository      = (*TaskAuditRepository)(nil)
)
