package handlers

import (
	"net/http"

	"github.com/St1cky1/haccp-service/internal/entity"
	"github.com/St1cky1/haccp-service/internal/usecase"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type CompanyHandler struct {
	companyService *usecase.CompanyService
	log            *zap.SugaredLogger
}

func NewCompanyHandler(companyService *usecase.CompanyService, log *zap.SugaredLogger) *CompanyHandler {
	return &CompanyHandler{
		companyService: companyService,
		log:            log,
	}
}

// POST /api/v1/companies
func (h *CompanyHandler) Setup(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	var req entity.CompanySetupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	company, err := h.companyService.Setup(r.Context(), p, &req)
	if err != nil {
		handleErr(w, h.log, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, company)
}

// GET /api/v1/companies/current
func (h *CompanyHandler) Current(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	company, err := h.companyService.GetCompany(r.Context(), p)
	if err != nil {
		handleErr(w, h.log, r, err)
		return
	}
	writeJSON(w, http.StatusOK, company)
}

// GET /api/v1/team
func (h *CompanyHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	members, err := h.companyService.ListMembers(r.Context(), p)
	if err != nil {
		handleErr(w, h.log, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"members": members})
}

func (h *CompanyHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	var req entity.AddMemberRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	member, err := h.companyService.AddMember(r.Context(), p, &req)
	if err != nil {
		handleErr(w, h.log, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, member)
}

func (h *CompanyHandler) UpdateMember(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	var req entity.UpdateMemberRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	member, err := h.companyService.UpdateMember(r.Context(), p, chi.URLParam(r, "id"), &req)
	if err != nil {
		handleErr(w, h.log, r, err)
		return
	}
	writeJSON(w, http.StatusOK, member)
}

func (h *CompanyHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	if err := h.companyService.RemoveMember(r.Context(), p, chi.URLParam(r, "id")); err != nil {
		handleErr(w, h.log, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
