package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"
	apiContext "hookwatch/internal/api/context"
	"hookwatch/internal/engine/events"
	"hookwatch/internal/pkg/errors"
	"hookwatch/internal/platform/audit"
	"hookwatch/internal/platform/auth"
	"hookwatch/internal/platform/models"
	"hookwatch/internal/platform/repositories"
)

type TriggerHandler struct {
	triggers *repositories.TriggerRepository
	projects *repositories.ProjectRepository
	audit    *audit.Logger
}

func NewTriggerHandler(triggers *repositories.TriggerRepository, projects *repositories.ProjectRepository, auditLog *audit.Logger) *TriggerHandler {
	return &TriggerHandler{triggers: triggers, projects: projects, audit: auditLog}
}

// ListTypes returns the canonical event types the dashboard offers.
func (h *TriggerHandler) ListTypes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, events.TriggerTypes)
}

func (h *TriggerHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := r.Context().Value(apiContext.Claims).(*auth.Claims)

	var req struct {
		ProjectID    string `json:"project_id"`
		EventType    string `json:"event_type"`
		CodeFilePath string `json:"code_file_path"`
		Description  string `json:"description"`
		IsActive     *bool  `json:"is_active"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}
	if req.EventType == "" || req.CodeFilePath == "" {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "event_type and code_file_path are required", nil)
		return
	}

	project, err := h.projects.GetByID(req.ProjectID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to load project", nil)
		return
	}
	if project == nil || project.UserID != claims.UserID {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Project not found", nil)
		return
	}

	trigger := &models.Trigger{
		ProjectID:    project.ID,
		EventType:    req.EventType,
		CodeFilePath: req.CodeFilePath,
		Description:  req.Description,
		IsActive:     true,
	}
	if req.IsActive != nil {
		trigger.IsActive = *req.IsActive
	}

	if err := h.triggers.Create(trigger); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to create event", nil)
		return
	}

	h.audit.Log(r.Context(), "event.create", "event", trigger.ID, map[string]interface{}{"event_type": trigger.EventType})

	writeJSON(w, http.StatusCreated, trigger)
}

func (h *TriggerHandler) Update(w http.ResponseWriter, r *http.Request) {
	trigger := h.loadOwned(w, r)
	if trigger == nil {
		return
	}

	var req struct {
		EventType    *string `json:"event_type"`
		CodeFilePath *string `json:"code_file_path"`
		Description  *string `json:"description"`
		IsActive     *bool   `json:"is_active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	if req.EventType != nil {
		if *req.EventType == "" {
			errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "event_type cannot be empty", nil)
			return
		}
		trigger.EventType = *req.EventType
	}
	if req.CodeFilePath != nil {
		if *req.CodeFilePath == "" {
			errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "code_file_path cannot be empty", nil)
			return
		}
		trigger.CodeFilePath = *req.CodeFilePath
	}
	if req.Description != nil {
		trigger.Description = *req.Description
	}
	if req.IsActive != nil {
		trigger.IsActive = *req.IsActive
	}

	if err := h.triggers.Update(trigger); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to update event", nil)
		return
	}

	h.audit.Log(r.Context(), "event.update", "event", trigger.ID, nil)

	writeJSON(w, http.StatusOK, trigger)
}

func (h *TriggerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	trigger := h.loadOwned(w, r)
	if trigger == nil {
		return
	}

	if err := h.triggers.Delete(trigger.ID); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to delete event", nil)
		return
	}

	h.audit.Log(r.Context(), "event.delete", "event", trigger.ID, nil)

	w.WriteHeader(http.StatusOK)
}

func (h *TriggerHandler) loadOwned(w http.ResponseWriter, r *http.Request) *models.Trigger {
	claims := r.Context().Value(apiContext.Claims).(*auth.Claims)
	params := r.Context().Value(apiContext.Params).(httprouter.Params)
	triggerID := params.ByName("event_id")

	trigger, err := h.triggers.GetByID(triggerID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to load event", nil)
		return nil
	}
	if trigger == nil {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Event not found", nil)
		return nil
	}

	project, err := h.projects.GetByID(trigger.ProjectID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to load project", nil)
		return nil
	}
	if project == nil || project.UserID != claims.UserID {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Event not found", nil)
		return nil
	}

	return trigger
}
