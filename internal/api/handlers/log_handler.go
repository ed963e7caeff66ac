package handlers

import (
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"
	apiContext "hookwatch/internal/api/context"
	"hookwatch/internal/pkg/errors"
	"hookwatch/internal/platform/auth"
	"hookwatch/internal/platform/repositories"
)

type LogHandler struct {
	logs     *repositories.DispatchLogRepository
	triggers *repositories.TriggerRepository
	projects *repositories.ProjectRepository
}

func NewLogHandler(logs *repositories.DispatchLogRepository, triggers *repositories.TriggerRepository, projects *repositories.ProjectRepository) *LogHandler {
	return &LogHandler{logs: logs, triggers: triggers, projects: projects}
}

// List returns a trigger's dispatch logs, newest first, default page size 10.
func (h *LogHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := r.Context().Value(apiContext.Claims).(*auth.Claims)
	params := r.Context().Value(apiContext.Params).(httprouter.Params)
	triggerID := params.ByName("event_id")

	trigger, err := h.triggers.GetByID(triggerID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to load event", nil)
		return
	}
	if trigger == nil {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Event not found", nil)
		return
	}

	project, err := h.projects.GetByID(trigger.ProjectID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to load project", nil)
		return
	}
	if project == nil || project.UserID != claims.UserID {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Event not found", nil)
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 || limit > 100 {
		limit = 10
	}
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * limit

	logs, err := h.logs.ListByTrigger(triggerID, limit, offset)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to load event logs", nil)
		return
	}

	writeJSON(w, http.StatusOK, logs)
}
