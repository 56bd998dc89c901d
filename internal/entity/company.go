package entity

import "time"

type LocationType string

const (
	LocationArea      LocationType = "area"
	LocationRoom      LocationType = "room"
	LocationEquipment LocationType = "equipment"
)

var LocationTypes = []LocationType{LocationArea, LocationRoom, LocationEquipment}

func (t LocationType) Valid() bool {
	return t == LocationArea || t == LocationRoom || t == LocationEquipment
}

// Collection - имя коллекции компании для категории локаций
func (t LocationType) Collection() string {
	switch t {
	case LocationArea:
		return CollectionAreas
	case LocationRoom:
		return CollectionRooms
	case LocationEquipment:
		return CollectionEquipment
	}
	return ""
}

// коллекции документного хранилища
const (
	CollectionCompanies       = "companies"
	CollectionUsers           = "users"
	CollectionAccounts        = "accounts"
	CollectionRefreshTokens   = "refreshTokens"
	CollectionMonitoringTasks = "monitoringTasks"
	CollectionSOPs            = "sops"
	CollectionAreas           = "areas"
	CollectionRooms           = "rooms"
	CollectionEquipment       = "equipment"
	CollectionDepartments     = "departments"
	CollectionRoles           = "roles"
	CollectionAuditLogs       = "auditLogs"
)

// CatalogCollections - справочники, редактируемые через общий CRUD
var CatalogCollections = []string{
	CollectionSOPs,
	CollectionAreas,
	CollectionRooms,
	CollectionEquipment,
	CollectionDepartments,
	CollectionRoles,
}

func IsCatalogCollection(name string) bool {
	for _, c := range CatalogCollections {
		if c == name {
			return true
		}
	}
	return false
}

type SOP struct {
	ID          string `json:"id,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Version     string `json:"version"`
	DocumentURL string `json:"documentUrl,omitempty"`
}

// Ref делает снимок SOP для прикрепления к задаче
func (s SOP) Ref() SOPRef {
	return SOPRef{ID: s.ID, Title: s.Title, Version: s.Version}
}

type Location struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// CatalogItem - общий вид записи справочника (SOP, локация, отдел, роль)
type CatalogItem struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name,omitempty"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Version     string `json:"version,omitempty"`
	DocumentURL string `json:"documentUrl,omitempty"`
}

// DisplayName - название записи; у SOP это title
func (c CatalogItem) DisplayName() string {
	if c.Title != "" {
		return c.Title
	}
	return c.Name
}

type CatalogItemRequest struct {
	Name        string `json:"name" validate:"required_without=Title,max=255"`
	Title       string `json:"title" validate:"required_without=Name,max=255"`
	Description string `json:"description" validate:"max=2000"`
	Version     string `json:"version" validate:"max=50"`
	DocumentURL string `json:"documentUrl" validate:"omitempty,url"`
}

type Company struct {
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Address   string    `json:"address,omitempty"`
	LogoURL   string    `json:"logoUrl,omitempty"`
	LogoPath  string    `json:"logoPath,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	CreatedBy Actor     `json:"createdBy"`
}

type CompanySetupRequest struct {
	Code    string `json:"code" validate:"required,alphanum,min=3,max=32"`
	Name    string `json:"name" validate:"required,min=1,max=255"`
	Address string `json:"address" validate:"max=500"`
}

// TenantUser - член команды компании (companies/{code}/users/{id})
type TenantUser struct {
	ID               string    `json:"id,omitempty"`
	UID              string    `json:"uid"`
	Email            string    `json:"email"`
	DisplayName      string    `json:"displayName"`
	Role             string    `json:"role"`
	Department       string    `json:"department,omitempty"`
	PhotoURL         string    `json:"photoUrl,omitempty"`
	TwoFactorEnabled bool      `json:"twoFactorEnabled"`
	JoinedAt         time.Time `json:"joinedAt"`
}

type AddMemberRequest struct {
	Email      string `json:"email" validate:"required,email"`
	Role       string `json:"role" validate:"required,max=100"`
	Department string `json:"department" validate:"max=100"`
}

type UpdateMemberRequest struct {
	Role       *string `json:"role" validate:"omitempty,max=100"`
	Department *string `json:"department" validate:"omitempty,max=100"`
}

// Tenant - результат разрешения компании пользователя
type Tenant struct {
	CompanyCode string      `json:"companyCode"`
	User        *TenantUser `json:"user,omitempty"`
}
