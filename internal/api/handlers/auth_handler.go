package handlers

import (
	"net/http"

	"github.com/St1cky1/haccp-service/internal/entity"
	"github.com/St1cky1/haccp-service/internal/usecase"
	"go.uber.org/zap"
)

type AuthHandler struct {
	authService *usecase.AuthService
	resolver    *usecase.TenantResolver
	log         *zap.SugaredLogger
}

func NewAuthHandler(authService *usecase.AuthService, resolver *usecase.TenantResolver, log *zap.SugaredLogger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		resolver:    resolver,
		log:         log,
	}
}

// POST /api/v1/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req entity.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}

	resp, err := h.authService.Register(r.Context(), &req)
	if err != nil {
		handleErr(w, h.log, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req entity.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}

	resp, err := h.authService.Login(r.Context(), &req)
	if err != nil {
		handleErr(w, h.log, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// POST /api/v1/auth/refresh
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req entity.RefreshTokenRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}

	resp, err := h.authService.RefreshToken(r.Context(), &req)
	if err != nil {
		handleErr(w, h.log, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	if err := h.authService.Logout(r.Context(), p.UID); err != nil {
		handleErr(w, h.log, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GET /api/v1/me - результат разрешения компании; companyCode пуст, если пользователь не в команде
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	tenant, found, err := h.resolver.Resolve(r.Context(), p.UID)
	if err != nil {
		handleErr(w, h.log, r, err)
		return
	}

	resp := map[string]any{
		"uid":         p.UID,
		"email":       p.Email,
		"displayName": p.DisplayName,
		"provisioned": found,
		"companyCode": tenant.CompanyCode,
	}
	if found {
		resp["user"] = tenant.User
	}
	writeJSON(w, http.StatusOK, resp)
}
