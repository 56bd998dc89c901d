package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/St1cky1/haccp-service/internal/composer"
	"github.com/St1cky1/haccp-service/internal/entity"
	"github.com/St1cky1/haccp-service/internal/usecase"
	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

// ComposerHandler - HTTP интерфейс мастера задачи. Каждый ответ содержит новое состояние мастера.
type ComposerHandler struct {
	composerService *usecase.ComposerService
	log             *zap.SugaredLogger
}

func NewComposerHandler(composerService *usecase.ComposerService, log *zap.SugaredLogger) *ComposerHandler {
	return &ComposerHandler{
		composerService: composerService,
		log:             log,
	}
}

type detailsRequest struct {
	composer.BasicInfo
	Details *entity.Details `json:"details"`
}

type fieldRequest struct {
	Type   entity.FieldType `json:"type"`
	Label  string           `json:"label"`
	Config json.RawMessage  `json:"config"`
}

type updateFieldRequest struct {
	Label  *string           `json:"label"`
	Type   *entity.FieldType `json:"type"`
	Config json.RawMessage   `json:"config"`
}

type checklistRequest struct {
	Title        string `json:"title"`
	AllowNotDone bool   `json:"allowNotDone"`
}

type locationRequest struct {
	LocationType entity.LocationType `json:"locationType"`
	LocationID   string              `json:"locationId"`
}

func (h *ComposerHandler) respond(w http.ResponseWriter, r *http.Request, state composer.State, err error) {
	if err != nil {
		handleErr(w, h.log, r, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// apply - общий путь для действий над черновиком
func (h *ComposerHandler) apply(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, c *composer.Composer) error) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	state, err := h.composerService.Apply(ctx, p, func(c *composer.Composer) error {
		return fn(ctx, c)
	})
	h.respond(w, r, state, err)
}

// GET /api/v1/composer
func (h *ComposerHandler) State(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	state, err := h.composerService.State(r.Context(), p)
	h.respond(w, r, state, err)
}

// POST /api/v1/composer
func (h *ComposerHandler) StartCreate(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	state, err := h.composerService.StartCreate(r.Context(), p)
	h.respond(w, r, state, err)
}

// POST /api/v1/composer/edit/{id}
func (h *ComposerHandler) StartEdit(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	state, err := h.composerService.StartEdit(r.Context(), p, chi.URLParam(r, "id"))
	h.respond(w, r, state, err)
}

// DELETE /api/v1/composer
func (h *ComposerHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	state, err := h.composerService.Cancel(r.Context(), p)
	h.respond(w, r, state, err)
}

func (h *ComposerHandler) Next(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, func(ctx context.Context, c *composer.Composer) error {
		return c.Next(ctx)
	})
}

func (h *ComposerHandler) Back(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, func(ctx context.Context, c *composer.Composer) error {
		return c.Back(ctx)
	})
}

// PUT /api/v1/composer/type
func (h *ComposerHandler) SelectType(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Type entity.TaskType `json:"type"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	h.apply(w, r, func(_ context.Context, c *composer.Composer) error {
		return c.SelectType(req.Type)
	})
}

// PUT /api/v1/composer/details - название, ответственность, статус использования и расписание
func (h *ComposerHandler) SetDetails(w http.ResponseWriter, r *http.Request) {
	var req detailsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Details != nil && !req.Details.Frequency.Valid() {
		handleErr(w, h.log, r, entity.NewValidationError("details.frequency",
			fmt.Errorf("%w: unknown frequency %q", entity.ErrInvalidTaskData, req.Details.Frequency)))
		return
	}
	h.apply(w, r, func(_ context.Context, c *composer.Composer) error {
		if err := c.SetBasicInfo(req.BasicInfo); err != nil {
			return err
		}
		if req.Details != nil {
			return c.SetSchedule(*req.Details)
		}
		return nil
	})
}

// POST /api/v1/composer/fields
func (h *ComposerHandler) AddField(w http.ResponseWriter, r *http.Request) {
	var req fieldRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	var cfg entity.FieldConfig
	if len(req.Config) > 0 {
		decoded, err := entity.DecodeFieldConfig(req.Type, req.Config)
		if err != nil {
			handleErr(w, h.log, r, entity.NewValidationError("config", err))
			return
		}
		cfg = decoded
	}
	h.apply(w, r, func(_ context.Context, c *composer.Composer) error {
		field, err := c.AddField(req.Type, req.Label)
		if err != nil || cfg == nil {
			return err
		}
		return c.SetFieldConfig(field.ID, cfg)
	})
}

// PUT /api/v1/composer/fields/{fieldID}. Смена типа сбрасывает конфигурацию,
// переданный config применяется к уже новому типу.
func (h *ComposerHandler) UpdateField(w http.ResponseWriter, r *http.Request) {
	var req updateFieldRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	id := chi.URLParam(r, "fieldID")

	h.apply(w, r, func(_ context.Context, c *composer.Composer) error {
		if req.Label != nil {
			if err := c.RenameField(id, *req.Label); err != nil {
				return err
			}
		}
		if req.Type != nil {
			if err := c.ChangeFieldType(id, *req.Type); err != nil {
				return err
			}
		}
		if len(req.Config) == 0 {
			return nil
		}

		d, err := c.Draft()
		if err != nil {
			return err
		}
		for _, f := range d.Fields {
			if f.ID != id {
				continue
			}
			cfg, err := entity.DecodeFieldConfig(f.Type, req.Config)
			if err != nil {
				return entity.NewValidationError("config", err)
			}
			return c.SetFieldConfig(id, cfg)
		}
		return fmt.Errorf("%w: %s", entity.ErrFieldNotFound, id)
	})
}

func (h *ComposerHandler) RemoveField(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "fieldID")
	h.apply(w, r, func(_ context.Context, c *composer.Composer) error {
		return c.RemoveField(id)
	})
}

// POST /api/v1/composer/fields/{fieldID}/options
func (h *ComposerHandler) AddFieldOption(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Option string `json:"option"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	id := chi.URLParam(r, "fieldID")
	h.apply(w, r, func(_ context.Context, c *composer.Composer) error {
		return c.AddFieldOption(id, req.Option)
	})
}

// DELETE /api/v1/composer/fields/{fieldID}/options/{index}
func (h *ComposerHandler) RemoveFieldOption(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeErr(w, http.StatusBadRequest, "invalid option index")
		return
	}
	id := chi.URLParam(r, "fieldID")
	h.apply(w, r, func(_ context.Context, c *composer.Composer) error {
		return c.RemoveFieldOption(id, index)
	})
}

// fieldTypeInfo - тип поля с конфигурацией по умолчанию
type fieldTypeInfo struct {
	Type   entity.FieldType   `json:"type"`
	Config entity.FieldConfig `json:"config"`
}

// GET /api/v1/composer/field-types
func (h *ComposerHandler) FieldTypes(w http.ResponseWriter, r *http.Request) {
	types := make([]fieldTypeInfo, 0, len(entity.FieldTypes))
	for _, ft := range entity.FieldTypes {
		cfg, err := entity.NewFieldConfig(ft)
		if err != nil {
			handleErr(w, h.log, r, err)
			return
		}
		types = append(types, fieldTypeInfo{Type: ft, Config: cfg})
	}
	writeJSON(w, http.StatusOK, map[string]any{"fieldTypes": types})
}

// POST /api/v1/composer/fields/{fieldID}/move
func (h *ComposerHandler) MoveField(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Index int `json:"index"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	id := chi.URLParam(r, "fieldID")
	h.apply(w, r, func(_ context.Context, c *composer.Composer) error {
		return c.MoveField(id, req.Index)
	})
}

// PUT /api/v1/composer/fields/{fieldID}/location
func (h *ComposerHandler) SetFieldLocation(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	var req locationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	state, err := h.composerService.SetFieldLocation(r.Context(), p, chi.URLParam(r, "fieldID"), req.LocationType, req.LocationID)
	h.respond(w, r, state, err)
}

// POST /api/v1/composer/checklist
func (h *ComposerHandler) AddChecklistItem(w http.ResponseWriter, r *http.Request) {
	var req checklistRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	h.apply(w, r, func(_ context.Context, c *composer.Composer) error {
		_, err := c.AddChecklistItem(req.Title, req.AllowNotDone)
		return err
	})
}

func (h *ComposerHandler) UpdateChecklistItem(w http.ResponseWriter, r *http.Request) {
	index, ok := checklistIndex(w, r)
	if !ok {
		return
	}
	var req checklistRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	h.apply(w, r, func(_ context.Context, c *composer.Composer) error {
		return c.UpdateChecklistItem(index, req.Title, req.AllowNotDone)
	})
}

func (h *ComposerHandler) RemoveChecklistItem(w http.ResponseWriter, r *http.Request) {
	index, ok := checklistIndex(w, r)
	if !ok {
		return
	}
	h.apply(w, r, func(_ context.Context, c *composer.Composer) error {
		return c.RemoveChecklistItem(index)
	})
}

// PUT /api/v1/composer/checklist/{index}/location
func (h *ComposerHandler) SetChecklistItemLocation(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	index, ok := checklistIndex(w, r)
	if !ok {
		return
	}
	var req locationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	state, err := h.composerService.SetChecklistItemLocation(r.Context(), p, index, req.LocationType, req.LocationID)
	h.respond(w, r, state, err)
}

// GET /api/v1/composer/sops?q=
func (h *ComposerHandler) SOPOptions(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	options, err := h.composerService.SOPOptions(r.Context(), p, r.URL.Query().Get("q"))
	if err != nil {
		handleErr(w, h.log, r, err)
		return
	}
	if options == nil {
		options = []usecase.SOPOption{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"sops": options})
}

// PUT /api/v1/composer/sops - набор целиком, пустой список открепляет все
func (h *ComposerHandler) SelectSOPs(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	var req struct {
		IDs []string `json:"ids"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	state, err := h.composerService.SelectSOPs(r.Context(), p, req.IDs)
	h.respond(w, r, state, err)
}

// DELETE /api/v1/composer/sops/{id}
func (h *ComposerHandler) DetachSOP(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	h.apply(w, r, func(_ context.Context, c *composer.Composer) error {
		return c.DetachSOP(id)
	})
}

func (h *ComposerHandler) respondPicker(w http.ResponseWriter, r *http.Request, state usecase.SOPPickerState, err error) {
	if err != nil {
		handleErr(w, h.log, r, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// POST /api/v1/composer/sops/picker
func (h *ComposerHandler) OpenSOPPicker(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	state, err := h.composerService.OpenSOPPicker(r.Context(), p)
	h.respondPicker(w, r, state, err)
}

// POST /api/v1/composer/sops/picker/toggle/{id}
func (h *ComposerHandler) ToggleSOP(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	state, err := h.composerService.ToggleSOP(r.Context(), p, chi.URLParam(r, "id"))
	h.respondPicker(w, r, state, err)
}

// POST /api/v1/composer/sops/picker/done
func (h *ComposerHandler) ConfirmSOPs(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	state, err := h.composerService.ConfirmSOPs(r.Context(), p)
	h.respond(w, r, state, err)
}

// DELETE /api/v1/composer/sops/picker
func (h *ComposerHandler) CloseSOPPicker(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	state, err := h.composerService.CloseSOPPicker(r.Context(), p)
	h.respondPicker(w, r, state, err)
}

// GET /api/v1/composer/review. Непройденная проверка - 400 с предпросмотром.
func (h *ComposerHandler) Review(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	task, err := h.composerService.Review(r.Context(), p)
	var ve *entity.ValidationError
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, task)
	case errors.As(err, &ve) && task != nil:
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":   err.Error(),
			"field":   ve.Field,
			"preview": task,
		})
	default:
		handleErr(w, h.log, r, err)
	}
}

// POST /api/v1/composer/save
func (h *ComposerHandler) Save(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	task, err := h.composerService.Save(r.Context(), p)
	if err != nil {
		handleErr(w, h.log, r, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// GET /api/v1/locations/{type}
func (h *ComposerHandler) Locations(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	locations, err := h.composerService.Locations(r.Context(), p, entity.LocationType(chi.URLParam(r, "type")))
	if err != nil {
		handleErr(w, h.log, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"locations": locations})
}

func checklistIndex(w http.ResponseWriter, r *http.Request) (int, bool) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeErr(w, http.StatusBadRequest, "invalid checklist index")
		return 0, false
	}
	return index, true
}
