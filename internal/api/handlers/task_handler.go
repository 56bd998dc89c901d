package handlers

import (
	"net/http"
	"strconv"

	"github.com/St1cky1/haccp-service/internal/entity"
	"github.com/St1cky1/haccp-service/internal/usecase"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type TaskHandler struct {
	taskService *usecase.TaskService
	log         *zap.SugaredLogger
}

func NewTaskHandler(taskService *usecase.TaskService, log *zap.SugaredLogger) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		log:         log,
	}
}

// GET /api/v1/tasks?q=&type=&inUse=
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	filter := entity.TaskFilter{
		Query: query.Get("q"),
		Type:  entity.TaskType(query.Get("type")),
	}
	if filter.Type != "" && !filter.Type.Valid() {
		writeErr(w, http.StatusBadRequest, "invalid task type")
		return
	}
	if v := query.Get("inUse"); v != "" {
		inUse, err := strconv.ParseBool(v)
		if err != nil {
			writeErr(w, http.StatusBadRequest, "invalid inUse")
			return
		}
		filter.InUse = &inUse
	}

	tasks, err := h.taskService.ListTasks(r.Context(), p, filter)
	if err != nil {
		handleErr(w, h.log, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tasks": tasks, "total": len(tasks)})
}

func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	task, err := h.taskService.GetTask(r.Context(), p, chi.URLParam(r, "id"))
	if err != nil {
		handleErr(w, h.log, r, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// POST /api/v1/tasks/{id}/duplicate
func (h *TaskHandler) DuplicateTask(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	task, err := h.taskService.DuplicateTask(r.Context(), p, chi.URLParam(r, "id"))
	if err != nil {
		handleErr(w, h.log, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	if err := h.taskService.DeleteTask(r.Context(), p, chi.URLParam(r, "id")); err != nil {
		handleErr(w, h.log, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PATCH /api/v1/tasks/{id}/in-use
func (h *TaskHandler) SetInUse(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	var req struct {
		InUse *bool `json:"inUse"`
	}
	if err := decodeJSON(w, r, &req); err != nil || req.InUse == nil {
		writeErr(w, http.StatusBadRequest, "inUse is required")
		return
	}

	task, err := h.taskService.SetInUse(r.Context(), p, chi.URLParam(r, "id"), *req.InUse)
	if err != nil {
		handleErr(w, h.log, r, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// PATCH /api/v1/tasks/{id}/status
func (h *TaskHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	var req struct {
		Status entity.TaskStatus `json:"status"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}

	task, err := h.taskService.SetStatus(r.Context(), p, chi.URLParam(r, "id"), req.Status)
	if err != nil {
		handleErr(w, h.log, r, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}
