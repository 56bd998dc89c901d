package api

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/St1cky1/haccp-service/internal/composer"
	"github.com/St1cky1/haccp-service/internal/entity"
	"github.com/St1cky1/haccp-service/internal/infrastructure/auth"
	"github.com/St1cky1/haccp-service/internal/infrastructure/storage"
	"github.com/St1cky1/haccp-service/internal/repository"
	"github.com/St1cky1/haccp-service/internal/usecase"
	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testAPI struct {
	t      *testing.T
	router *chi.Mux
	token  string
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	log := zap.NewNop().Sugar()
	store := repository.NewMemoryDocumentStore()

	tasks := repository.NewMonitoringTaskRepository(store)
	refs := repository.NewReferenceRepository(store)
	companies := repository.NewCompanyRepository(store)
	accounts := repository.NewAccountRepository(store)
	tokens := repository.NewRefreshTokenRepository(store)
	audits := repository.NewTaskAuditRepository(store)

	passwords := auth.NewPasswordManagerWithCost(4)
	publisher := usecase.NewDirectAuditPublisher(audits)
	resolver := usecase.NewTenantResolver(companies, log)
	workspaces := usecase.NewWorkspaceManager(resolver, tasks, refs, time.Minute, log)

	services := Services{
		Auth:       usecase.NewAuthService(accounts, tokens, passwords, auth.NewJWTManager("test-secret"), log),
		Resolver:   resolver,
		Tasks:      usecase.NewTaskService(tasks, workspaces, publisher, log),
		Composer:   usecase.NewComposerService(workspaces, tasks, publisher, log),
		References: usecase.NewReferenceService(refs, resolver, workspaces, log),
		Companies:  usecase.NewCompanyService(companies, accounts, resolver, workspaces, log),
		Profile:    usecase.NewProfileService(accounts, companies, tokens, resolver, storage.NewMemoryBlobStore("http://test/files"), passwords, log),
	}
	return &testAPI{t: t, router: NewRouter(services, log)}
}

func (a *testAPI) do(method, path string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

// call выполняет запрос, проверяет статус и разбирает ответ в out
func (a *testAPI) call(method, path string, body any, wantStatus int, out any) {
	a.t.Helper()
	rec := a.do(method, path, body)
	require.Equal(a.t, wantStatus, rec.Code, "%s %s: %s", method, path, rec.Body.String())
	if out != nil {
		require.NoError(a.t, json.Unmarshal(rec.Body.Bytes(), out))
	}
}

func (a *testAPI) register(email string) {
	a.t.Helper()
	var resp entity.LoginResponse
	a.call(http.MethodPost, "/api/v1/auth/register", entity.RegisterRequest{
		DisplayName: "Chef",
		Email:       email,
		Password:    "s3cret-pass",
	}, http.StatusCreated, &resp)
	a.token = resp.AccessToken
}

func TestRouter_PublicEndpoints(t *testing.T) {
	a := newTestAPI(t)

	assert.Equal(t, http.StatusOK, a.do(http.MethodGet, "/healthz", nil).Code)
	assert.Equal(t, http.StatusOK, a.do(http.MethodGet, "/metrics", nil).Code)

	rec := a.do(http.MethodGet, "/api/v1/tasks", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	a.token = "garbage"
	assert.Equal(t, http.StatusUnauthorized, a.do(http.MethodGet, "/api/v1/me", nil).Code)
	a.token = ""

	rec = a.do(http.MethodPost, "/api/v1/auth/login", entity.LoginRequest{Email: "ghost@example.com", Password: "whatever"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = a.do(http.MethodPost, "/api/v1/auth/register", entity.RegisterRequest{DisplayName: "X", Email: "bad", Password: "s3cret-pass"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"field":"email"`)
}

func TestRouter_TenantProvisioning(t *testing.T) {
	a := newTestAPI(t)
	a.register("chef@example.com")

	var me map[string]any
	a.call(http.MethodGet, "/api/v1/me", nil, http.StatusOK, &me)
	assert.Equal(t, false, me["provisioned"])
	assert.Equal(t, "", me["companyCode"])

	a.call(http.MethodGet, "/api/v1/tasks", nil, http.StatusForbidden, nil)

	var company entity.Company
	a.call(http.MethodPost, "/api/v1/companies", entity.CompanySetupRequest{Code: "abc123", Name: "Bistro"}, http.StatusCreated, &company)
	assert.Equal(t, "ABC123", company.Code)

	a.call(http.MethodGet, "/api/v1/me", nil, http.StatusOK, &me)
	assert.Equal(t, true, me["provisioned"])
	assert.Equal(t, "ABC123", me["companyCode"])

	a.call(http.MethodPost, "/api/v1/companies", entity.CompanySetupRequest{Code: "other1", Name: "Other"}, http.StatusConflict, nil)
}

func TestRouter_ComposerFlow(t *testing.T) {
	a := newTestAPI(t)
	a.register("chef@example.com")
	a.call(http.MethodPost, "/api/v1/companies", entity.CompanySetupRequest{Code: "ABC123", Name: "Bistro"}, http.StatusCreated, nil)

	var sop, room entity.CatalogItem
	a.call(http.MethodPost, "/api/v1/catalog/sops", entity.CatalogItemRequest{Title: "Cooling", Version: "3"}, http.StatusCreated, &sop)
	a.call(http.MethodPost, "/api/v1/catalog/rooms", entity.CatalogItemRequest{Name: "Kitchen"}, http.StatusCreated, &room)
	a.call(http.MethodPost, "/api/v1/catalog/recipes", entity.CatalogItemRequest{Name: "Soup"}, http.StatusBadRequest, nil)

	// без открытого мастера
	a.call(http.MethodPost, "/api/v1/composer/next", nil, http.StatusConflict, nil)

	var state composer.State
	a.call(http.MethodPost, "/api/v1/composer", nil, http.StatusOK, &state)
	assert.True(t, state.Active)
	assert.Equal(t, composer.StepChooseType, state.Step)

	a.call(http.MethodPut, "/api/v1/composer/details", map[string]any{"name": "Fridge"}, http.StatusConflict, nil)

	a.call(http.MethodPut, "/api/v1/composer/type", map[string]any{"type": "detailed"}, http.StatusOK, &state)
	a.call(http.MethodPost, "/api/v1/composer/next", nil, http.StatusOK, &state)
	assert.Equal(t, composer.StepConfigure, state.Step)

	// пустое название не пускает на review
	a.call(http.MethodPost, "/api/v1/composer/next", nil, http.StatusBadRequest, nil)

	a.call(http.MethodPut, "/api/v1/composer/details", map[string]any{
		"name":    "Fridge temperature",
		"details": entity.Details{Frequency: entity.FrequencyDaily, StartTime: "07:00"},
	}, http.StatusOK, &state)

	a.call(http.MethodPost, "/api/v1/composer/fields", map[string]any{
		"type":   "numeric",
		"label":  "Fridge",
		"config": map[string]any{"min": 0, "max": 10, "decimalPlaces": 7},
	}, http.StatusOK, &state)
	a.call(http.MethodPost, "/api/v1/composer/fields", map[string]any{"type": "location", "label": "Where"}, http.StatusOK, &state)
	require.Len(t, state.Draft.Fields, 2)
	locationField := state.Draft.Fields[1].ID

	a.call(http.MethodPut, "/api/v1/composer/fields/"+locationField+"/location",
		map[string]any{"locationType": "room", "locationId": room.ID}, http.StatusOK, &state)
	a.call(http.MethodPut, "/api/v1/composer/fields/missing", map[string]any{"label": "x"}, http.StatusNotFound, nil)

	var options struct {
		SOPs []usecase.SOPOption `json:"sops"`
	}
	a.call(http.MethodGet, "/api/v1/composer/sops?q=cool", nil, http.StatusOK, &options)
	require.Len(t, options.SOPs, 1)
	assert.False(t, options.SOPs[0].Selected)

	a.call(http.MethodPut, "/api/v1/composer/sops", map[string]any{"ids": []string{sop.ID}}, http.StatusOK, &state)
	require.Len(t, state.Draft.SOPs, 1)
	assert.Equal(t, "3", state.Draft.SOPs[0].Version)

	a.call(http.MethodPost, "/api/v1/composer/next", nil, http.StatusOK, &state)
	assert.Equal(t, composer.StepReview, state.Step)

	var preview entity.MonitoringTask
	a.call(http.MethodGet, "/api/v1/composer/review", nil, http.StatusOK, &preview)
	assert.Equal(t, "Fridge temperature", preview.Name)
	assert.Empty(t, preview.Checklist)

	var saved entity.MonitoringTask
	a.call(http.MethodPost, "/api/v1/composer/save", nil, http.StatusOK, &saved)
	require.NotEmpty(t, saved.ID)

	a.call(http.MethodGet, "/api/v1/composer", nil, http.StatusOK, &state)
	assert.False(t, state.Active)

	var stored entity.MonitoringTask
	a.call(http.MethodGet, "/api/v1/tasks/"+saved.ID, nil, http.StatusOK, &stored)
	require.Len(t, stored.Fields, 2)
	numeric, ok := stored.Fields[0].Config.(entity.NumericConfig)
	require.True(t, ok)
	assert.Equal(t, 4, numeric.DecimalPlaces)
	loc, ok := stored.Fields[1].Config.(entity.LocationConfig)
	require.True(t, ok)
	assert.Equal(t, "Kitchen", loc.LocationName)
}

func TestRouter_TaskOperations(t *testing.T) {
	a := newTestAPI(t)
	a.register("chef@example.com")
	a.call(http.MethodPost, "/api/v1/companies", entity.CompanySetupRequest{Code: "ABC123", Name: "Bistro"}, http.StatusCreated, nil)

	a.call(http.MethodPost, "/api/v1/composer", nil, http.StatusOK, nil)
	a.call(http.MethodPut, "/api/v1/composer/type", map[string]any{"type": "checklist"}, http.StatusOK, nil)
	a.call(http.MethodPost, "/api/v1/composer/next", nil, http.StatusOK, nil)
	a.call(http.MethodPut, "/api/v1/composer/details", map[string]any{"name": "Opening"}, http.StatusOK, nil)
	a.call(http.MethodPost, "/api/v1/composer/checklist", map[string]any{"title": "Sanitize"}, http.StatusOK, nil)
	a.call(http.MethodPut, "/api/v1/composer/checklist/5", map[string]any{"title": "x"}, http.StatusNotFound, nil)
	a.call(http.MethodPost, "/api/v1/composer/next", nil, http.StatusOK, nil)

	var task entity.MonitoringTask
	a.call(http.MethodPost, "/api/v1/composer/save", nil, http.StatusOK, &task)

	var copyTask entity.MonitoringTask
	a.call(http.MethodPost, "/api/v1/tasks/"+task.ID+"/duplicate", nil, http.StatusCreated, &copyTask)
	assert.Equal(t, "Opening (Copy)", copyTask.Name)
	assert.NotEqual(t, task.ID, copyTask.ID)

	var list struct {
		Tasks []entity.MonitoringTask `json:"tasks"`
		Total int                     `json:"total"`
	}
	a.call(http.MethodGet, "/api/v1/tasks", nil, http.StatusOK, &list)
	assert.Equal(t, 2, list.Total)

	a.call(http.MethodGet, "/api/v1/tasks?q=copy", nil, http.StatusOK, &list)
	assert.Equal(t, 1, list.Total)

	a.call(http.MethodPatch, "/api/v1/tasks/"+task.ID+"/in-use", map[string]any{"inUse": false}, http.StatusOK, nil)
	a.call(http.MethodGet, "/api/v1/tasks?inUse=false", nil, http.StatusOK, &list)
	require.Equal(t, 1, list.Total)
	assert.Equal(t, task.ID, list.Tasks[0].ID)
	a.call(http.MethodGet, "/api/v1/tasks?inUse=maybe", nil, http.StatusBadRequest, nil)

	a.call(http.MethodPatch, "/api/v1/tasks/"+task.ID+"/status", map[string]any{"status": "deleted"}, http.StatusBadRequest, nil)

	a.call(http.MethodDelete, "/api/v1/tasks/"+copyTask.ID, nil, http.StatusNoContent, nil)
	a.call(http.MethodGet, "/api/v1/tasks/"+copyTask.ID, nil, http.StatusNotFound, nil)
}

func TestRouter_Avatar(t *testing.T) {
	a := newTestAPI(t)
	a.register("chef@example.com")

	a.call(http.MethodGet, "/api/v1/profile/avatar", nil, http.StatusNotFound, nil)

	png := append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 32)...)
	var body bytes.Buffer
	mw := newMultipart(&body)
	require.NoError(t, mw.file("file", "me.png", png))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/profile/avatar", &body)
	req.Header.Set("Content-Type", mw.contentType())
	req.Header.Set("Authorization", "Bearer "+a.token)
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var blob entity.Blob
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &blob))

	rec = a.do(http.MethodGet, "/api/v1/profile/avatar", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, png, rec.Body.Bytes())

	a.token = ""
	rec = a.do(http.MethodGet, "/files/"+blob.Path, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, png, rec.Body.Bytes())

	assert.Equal(t, http.StatusNotFound, a.do(http.MethodGet, "/files/avatars/nope.png", nil).Code)
}

// startConfigure открывает мастер подробной задачи на шаге configure
func (a *testAPI) startConfigure(name string) composer.State {
	a.t.Helper()
	var state composer.State
	a.call(http.MethodPost, "/api/v1/composer", nil, http.StatusOK, nil)
	a.call(http.MethodPost, "/api/v1/composer/next", nil, http.StatusOK, nil)
	a.call(http.MethodPut, "/api/v1/composer/details", map[string]any{"name": name}, http.StatusOK, &state)
	return state
}

func TestRouter_ComposerRejectedRequestsLeaveDraftUnchanged(t *testing.T) {
	a := newTestAPI(t)
	a.register("chef@example.com")
	a.call(http.MethodPost, "/api/v1/companies", entity.CompanySetupRequest{Code: "ABC123", Name: "Bistro"}, http.StatusCreated, nil)
	a.startConfigure("Fridge")

	var state composer.State
	a.call(http.MethodPost, "/api/v1/composer/fields", map[string]any{
		"type":   "temperature",
		"label":  "Core",
		"config": map[string]any{"min": "abc"},
	}, http.StatusBadRequest, nil)
	a.call(http.MethodGet, "/api/v1/composer", nil, http.StatusOK, &state)
	assert.Empty(t, state.Draft.Fields, "rejected field is not added")

	a.call(http.MethodPut, "/api/v1/composer/details", map[string]any{
		"name":    "Renamed",
		"details": map[string]any{"frequency": "Hourly"},
	}, http.StatusBadRequest, nil)
	a.call(http.MethodGet, "/api/v1/composer", nil, http.StatusOK, &state)
	assert.Equal(t, "Fridge", state.Draft.Name)
	assert.Equal(t, entity.FrequencyDaily, state.Draft.Details.Frequency)

	a.call(http.MethodPost, "/api/v1/composer/fields", map[string]any{"type": "numeric", "label": "Old"}, http.StatusOK, &state)
	require.Len(t, state.Draft.Fields, 1)
	fieldID := state.Draft.Fields[0].ID

	a.call(http.MethodPut, "/api/v1/composer/fields/"+fieldID, map[string]any{
		"label":  "New",
		"type":   "text",
		"config": map[string]any{"maxLength": "x"},
	}, http.StatusBadRequest, nil)
	a.call(http.MethodGet, "/api/v1/composer", nil, http.StatusOK, &state)
	require.Len(t, state.Draft.Fields, 1)
	assert.Equal(t, "Old", state.Draft.Fields[0].Label)
	assert.Equal(t, entity.FieldNumeric, state.Draft.Fields[0].Type)
	assert.Equal(t, composer.StepConfigure, state.Step)
}

func TestRouter_ComposerSOPPicker(t *testing.T) {
	a := newTestAPI(t)
	a.register("chef@example.com")
	a.call(http.MethodPost, "/api/v1/companies", entity.CompanySetupRequest{Code: "ABC123", Name: "Bistro"}, http.StatusCreated, nil)

	var sop entity.CatalogItem
	a.call(http.MethodPost, "/api/v1/catalog/sops", entity.CatalogItemRequest{Title: "Cooling", Version: "3"}, http.StatusCreated, &sop)

	// без мастера выбор не открывается
	a.call(http.MethodPost, "/api/v1/composer/sops/picker", nil, http.StatusConflict, nil)
	a.startConfigure("Fridge")

	var picker usecase.SOPPickerState
	a.call(http.MethodPost, "/api/v1/composer/sops/picker", nil, http.StatusOK, &picker)
	assert.True(t, picker.Open)
	require.Len(t, picker.SOPs, 1)
	assert.False(t, picker.SOPs[0].Selected)

	a.call(http.MethodPost, "/api/v1/composer/sops/picker/toggle/"+sop.ID, nil, http.StatusOK, &picker)
	assert.True(t, picker.SOPs[0].Selected)
	a.call(http.MethodPost, "/api/v1/composer/sops/picker/toggle/missing", nil, http.StatusNotFound, nil)

	var options struct {
		SOPs []usecase.SOPOption `json:"sops"`
	}
	a.call(http.MethodGet, "/api/v1/composer/sops", nil, http.StatusOK, &options)
	require.Len(t, options.SOPs, 1)
	assert.True(t, options.SOPs[0].Selected)

	var state composer.State
	a.call(http.MethodDelete, "/api/v1/composer/sops/picker", nil, http.StatusOK, &picker)
	assert.False(t, picker.Open)
	a.call(http.MethodGet, "/api/v1/composer", nil, http.StatusOK, &state)
	assert.Empty(t, state.Draft.SOPs, "closing the picker discards the selection")
	a.call(http.MethodPost, "/api/v1/composer/sops/picker/done", nil, http.StatusConflict, nil)

	a.call(http.MethodPost, "/api/v1/composer/sops/picker", nil, http.StatusOK, nil)
	a.call(http.MethodPost, "/api/v1/composer/sops/picker/toggle/"+sop.ID, nil, http.StatusOK, nil)
	a.call(http.MethodPost, "/api/v1/composer/sops/picker/done", nil, http.StatusOK, &state)
	require.Len(t, state.Draft.SOPs, 1)
	assert.Equal(t, entity.SOPRef{ID: sop.ID, Title: "Cooling", Version: "3"}, state.Draft.SOPs[0])

	a.call(http.MethodDelete, "/api/v1/composer/sops/"+sop.ID, nil, http.StatusOK, &state)
	assert.Empty(t, state.Draft.SOPs)
	a.call(http.MethodDelete, "/api/v1/composer/sops/"+sop.ID, nil, http.StatusNotFound, nil)
}

func TestRouter_ComposerFieldOptions(t *testing.T) {
	a := newTestAPI(t)
	a.register("chef@example.com")
	a.call(http.MethodPost, "/api/v1/companies", entity.CompanySetupRequest{Code: "ABC123", Name: "Bistro"}, http.StatusCreated, nil)
	a.startConfigure("Prep")

	var types struct {
		FieldTypes []struct {
			Type entity.FieldType `json:"type"`
		} `json:"fieldTypes"`
	}
	a.call(http.MethodGet, "/api/v1/composer/field-types", nil, http.StatusOK, &types)
	require.Len(t, types.FieldTypes, len(entity.FieldTypes))
	assert.Equal(t, entity.FieldTemperature, types.FieldTypes[0].Type)

	var state composer.State
	a.call(http.MethodPost, "/api/v1/composer/fields", map[string]any{"type": "multi", "label": "Allergens"}, http.StatusOK, &state)
	a.call(http.MethodPost, "/api/v1/composer/fields", map[string]any{"type": "text", "label": "Notes"}, http.StatusOK, &state)
	require.Len(t, state.Draft.Fields, 2)
	multiID, textID := state.Draft.Fields[0].ID, state.Draft.Fields[1].ID

	a.call(http.MethodPost, "/api/v1/composer/fields/"+multiID+"/options", map[string]any{"option": " Nuts "}, http.StatusOK, &state)
	multi, ok := state.Draft.Fields[0].Config.(entity.MultiConfig)
	require.True(t, ok)
	assert.Equal(t, []string{"", "Nuts"}, multi.Options)

	a.call(http.MethodDelete, "/api/v1/composer/fields/"+multiID+"/options/0", nil, http.StatusOK, &state)
	multi, ok = state.Draft.Fields[0].Config.(entity.MultiConfig)
	require.True(t, ok)
	assert.Equal(t, []string{"Nuts"}, multi.Options)

	// последний вариант не удаляется
	a.call(http.MethodDelete, "/api/v1/composer/fields/"+multiID+"/options/0", nil, http.StatusBadRequest, nil)
	a.call(http.MethodDelete, "/api/v1/composer/fields/"+multiID+"/options/x", nil, http.StatusBadRequest, nil)
	a.call(http.MethodPost, "/api/v1/composer/fields/"+textID+"/options", map[string]any{"option": "Nuts"}, http.StatusBadRequest, nil)
	a.call(http.MethodPost, "/api/v1/composer/fields/missing/options", map[string]any{"option": "Nuts"}, http.StatusNotFound, nil)
}

func TestRouter_ComposerReviewReportsValidation(t *testing.T) {
	a := newTestAPI(t)
	a.register("chef@example.com")
	a.call(http.MethodPost, "/api/v1/companies", entity.CompanySetupRequest{Code: "ABC123", Name: "Bistro"}, http.StatusCreated, nil)
	a.startConfigure("Fridge")
	a.call(http.MethodPost, "/api/v1/composer/next", nil, http.StatusOK, nil)

	var body struct {
		Error   string                `json:"error"`
		Field   string                `json:"field"`
		Preview entity.MonitoringTask `json:"preview"`
	}
	a.call(http.MethodGet, "/api/v1/composer/review", nil, http.StatusBadRequest, &body)
	assert.Equal(t, "fields", body.Field)
	assert.Equal(t, "Fridge", body.Preview.Name)

	a.call(http.MethodPost, "/api/v1/composer/save", nil, http.StatusBadRequest, nil)
}
