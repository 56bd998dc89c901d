package handlers

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/St1cky1/haccp-service/internal/entity"
	"github.com/St1cky1/haccp-service/internal/usecase"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const uploadFormField = "file"

type ProfileHandler struct {
	profileService *usecase.ProfileService
	log            *zap.SugaredLogger
}

func NewProfileHandler(profileService *usecase.ProfileService, log *zap.SugaredLogger) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
		log:            log,
	}
}

func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	profile, err := h.profileService.GetProfile(r.Context(), p)
	if err != nil {
		handleErr(w, h.log, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// PUT /api/v1/profile/name
func (h *ProfileHandler) UpdateDisplayName(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	var req entity.UpdateDisplayNameRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	profile, err := h.profileService.UpdateDisplayName(r.Context(), p, &req)
	if err != nil {
		handleErr(w, h.log, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// PUT /api/v1/profile/email
func (h *ProfileHandler) ChangeEmail(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	var req entity.ChangeEmailRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	profile, err := h.profileService.ChangeEmail(r.Context(), p, &req)
	if err != nil {
		handleErr(w, h.log, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// PUT /api/v1/profile/password
func (h *ProfileHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	var req entity.ChangePasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := h.profileService.ChangePassword(r.Context(), p, &req); err != nil {
		handleErr(w, h.log, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PUT /api/v1/profile/2fa
func (h *ProfileHandler) SetTwoFactor(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	var req entity.TwoFactorRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	profile, err := h.profileService.SetTwoFactor(r.Context(), p, &req)
	if err != nil {
		handleErr(w, h.log, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// POST /api/v1/profile/avatar (multipart, поле file)
func (h *ProfileHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	req, ok := readUpload(w, r)
	if !ok {
		return
	}
	blob, err := h.profileService.UploadAvatar(r.Context(), p, req)
	if err != nil {
		handleErr(w, h.log, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, blob)
}

// GET /api/v1/profile/avatar
func (h *ProfileHandler) DownloadAvatar(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	file, err := h.profileService.DownloadAvatar(r.Context(), p)
	if err != nil {
		handleErr(w, h.log, r, err)
		return
	}
	writeFile(w, file)
}

// POST /api/v1/companies/logo
func (h *ProfileHandler) UploadCompanyLogo(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	req, ok := readUpload(w, r)
	if !ok {
		return
	}
	blob, err := h.profileService.UploadCompanyLogo(r.Context(), p, req)
	if err != nil {
		handleErr(w, h.log, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, blob)
}

// GET /files/* - раздача загруженных файлов для local и memory хранилищ
func (h *ProfileHandler) ServeFile(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	file, err := h.profileService.OpenFile(r.Context(), path)
	if err != nil {
		handleErr(w, h.log, r, err)
		return
	}
	w.Header().Set("Cache-Control", "public, max-age=3600")
	writeFile(w, file)
}

// readUpload читает файл из multipart формы; лишний байт сверх лимита
// нужен, чтобы сервис вернул ErrFileTooLarge
func readUpload(w http.ResponseWriter, r *http.Request) (*entity.UploadImageRequest, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, entity.MaxImageSize+maxBodySize)
	file, header, err := r.FormFile(uploadFormField)
	if err != nil {
		writeErr(w, http.StatusBadRequest, "multipart field \"file\" is required")
		return nil, false
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, entity.MaxImageSize+1))
	if err != nil {
		writeErr(w, http.StatusBadRequest, "failed to read file")
		return nil, false
	}
	return &entity.UploadImageRequest{
		Data:        data,
		ContentType: header.Header.Get("Content-Type"),
		FileName:    header.Filename,
	}, true
}

func writeFile(w http.ResponseWriter, file *entity.DownloadedFile) {
	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(file.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(file.Data)
}
