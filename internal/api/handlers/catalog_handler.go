package handlers

import (
	"net/http"

	"github.com/St1cky1/haccp-service/internal/entity"
	"github.com/St1cky1/haccp-service/internal/usecase"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CatalogHandler - справочники компании: SOP, локации, отделы, роли
type CatalogHandler struct {
	referenceService *usecase.ReferenceService
	log              *zap.SugaredLogger
}

func NewCatalogHandler(referenceService *usecase.ReferenceService, log *zap.SugaredLogger) *CatalogHandler {
	return &CatalogHandler{
		referenceService: referenceService,
		log:              log,
	}
}

func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	items, err := h.referenceService.List(r.Context(), p, chi.URLParam(r, "collection"), r.URL.Query().Get("q"))
	if err != nil {
		handleErr(w, h.log, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h *CatalogHandler) Create(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	var req entity.CatalogItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	item, err := h.referenceService.Create(r.Context(), p, chi.URLParam(r, "collection"), &req)
	if err != nil {
		handleErr(w, h.log, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (h *CatalogHandler) Replace(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	var req entity.CatalogItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	item, err := h.referenceService.Replace(r.Context(), p, chi.URLParam(r, "collection"), chi.URLParam(r, "id"), &req)
	if err != nil {
		handleErr(w, h.log, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *CatalogHandler) Delete(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	if err := h.referenceService.Delete(r.Context(), p, chi.URLParam(r, "collection"), chi.URLParam(r, "id")); err != nil {
		handleErr(w, h.log, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
