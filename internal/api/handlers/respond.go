package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/St1cky1/haccp-service/internal/entity"
	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

const maxBodySize = 1 << 20

type ctxKey string

const principalKey ctxKey = "haccp.principal"

// WithPrincipal кладет аутентифицированного пользователя в контекст запроса
func WithPrincipal(ctx context.Context, p entity.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFrom - пользователь запроса; false, если middleware не отработал
func PrincipalFrom(ctx context.Context) (entity.Principal, bool) {
	p, ok := ctx.Value(principalKey).(entity.Principal)
	return p, ok && p.UID != ""
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{"error": msg})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, out any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(out)
}

// StatusFor переводит доменную ошибку в HTTP статус
func StatusFor(err error) int {
	switch {
	case errors.Is(err, entity.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case entity.IsValidation(err):
		return http.StatusBadRequest
	case errors.Is(err, entity.ErrInvalidCredentials),
		errors.Is(err, entity.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, entity.ErrForbidden),
		errors.Is(err, entity.ErrTenantNotProvisioned):
		return http.StatusForbidden
	case errors.Is(err, entity.ErrTaskNotFound),
		errors.Is(err, entity.ErrUserNotFound),
		errors.Is(err, entity.ErrCompanyNotFound),
		errors.Is(err, entity.ErrReferenceNotFound),
		errors.Is(err, entity.ErrLocationNotFound),
		errors.Is(err, entity.ErrFieldNotFound),
		errors.Is(err, entity.ErrChecklistItemMissing),
		errors.Is(err, entity.ErrBlobNotFound):
		return http.StatusNotFound
	case errors.Is(err, entity.ErrCompanyExists),
		errors.Is(err, entity.ErrMemberExists),
		errors.Is(err, entity.ErrEmailTaken),
		errors.Is(err, entity.ErrWrongStep),
		errors.Is(err, entity.ErrNoDraft):
		return http.StatusConflict
	case errors.Is(err, entity.ErrNoFieldsToUpdate),
		errors.Is(err, entity.ErrInvalidTaskData),
		errors.Is(err, entity.ErrInvalidUserData),
		errors.Is(err, entity.ErrInvalidFieldConfig),
		errors.Is(err, entity.ErrUnknownFieldType),
		errors.Is(err, entity.ErrUnsupportedFileType):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// handleErr пишет ответ с ошибкой; внутренние ошибки не раскрываем клиенту
func handleErr(w http.ResponseWriter, log *zap.SugaredLogger, r *http.Request, err error) {
	code := StatusFor(err)
	if code == http.StatusInternalServerError {
		log.Errorw("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeErr(w, code, "internal server error")
		return
	}

	body := map[string]any{"error": err.Error()}
	var ve *entity.ValidationError
	if errors.As(err, &ve) {
		body["field"] = ve.Field
	}
	writeJSON(w, code, body)
}

// principal достает пользователя или отвечает 401
func principal(w http.ResponseWriter, r *http.Request) (entity.Principal, bool) {
	p, ok := PrincipalFrom(r.Context())
	if !ok {
		writeErr(w, http.StatusUnauthorized, "unauthorized")
	}
	return p, ok
}
