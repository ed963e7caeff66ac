package handlers

import (
	"encoding/json"
	"net/http"
	"regexp"

	"github.com/julienschmidt/httprouter"
	apiContext "hookwatch/internal/api/context"
	"hookwatch/internal/pkg/errors"
	"hookwatch/internal/platform/audit"
	"hookwatch/internal/platform/auth"
	"hookwatch/internal/platform/models"
	"hookwatch/internal/platform/repositories"
)

// Repositories are addressed as "owner/name", one path segment each.
var repoPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+/[A-Za-z0-9_-]+$`)

type ProjectHandler struct {
	projects *repositories.ProjectRepository
	triggers *repositories.TriggerRepository
	audit    *audit.Logger
}

func NewProjectHandler(projects *repositories.ProjectRepository, triggers *repositories.TriggerRepository, auditLog *audit.Logger) *ProjectHandler {
	return &ProjectHandler{projects: projects, triggers: triggers, audit: auditLog}
}

func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := r.Context().Value(apiContext.Claims).(*auth.Claims)

	var req struct {
		Name        string `json:"name"`
		Repository  string `json:"repository"`
		Description string `json:"description"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}
	if req.Name == "" {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Project name is required", nil)
		return
	}
	if !repoPattern.MatchString(req.Repository) {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Repository must be in owner/name format", nil)
		return
	}

	project := &models.Project{
		UserID:      claims.UserID,
		Name:        req.Name,
		Repository:  req.Repository,
		Description: req.Description,
	}

	if err := h.projects.Create(project); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to create project", nil)
		return
	}

	h.audit.Log(r.Context(), "project.create", "project", project.ID, map[string]interface{}{"repository": project.Repository})

	writeJSON(w, http.StatusCreated, project)
}

func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := r.Context().Value(apiContext.Claims).(*auth.Claims)

	projects, err := h.projects.List(claims.UserID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to list projects", nil)
		return
	}

	writeJSON(w, http.StatusOK, projects)
}

// Get returns the project with its triggers attached, mirroring the
// dashboard's project detail view.
func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	project := h.loadOwned(w, r)
	if project == nil {
		return
	}

	triggers, err := h.triggers.ListByProject(project.ID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to load project events", nil)
		return
	}
	project.Triggers = triggers

	writeJSON(w, http.StatusOK, project)
}

func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	project := h.loadOwned(w, r)
	if project == nil {
		return
	}

	var req struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	if req.Name != nil {
		if *req.Name == "" {
			errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Project name cannot be empty", nil)
			return
		}
		project.Name = *req.Name
	}
	if req.Description != nil {
		project.Description = *req.Description
	}

	if err := h.projects.Update(project); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to update project", nil)
		return
	}

	h.audit.Log(r.Context(), "project.update", "project", project.ID, nil)

	writeJSON(w, http.StatusOK, project)
}

func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	project := h.loadOwned(w, r)
	if project == nil {
		return
	}

	if err := h.projects.Delete(project.ID); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to delete project", nil)
		return
	}

	h.audit.Log(r.Context(), "project.delete", "project", project.ID, map[string]interface{}{"repository": project.Repository})

	w.WriteHeader(http.StatusOK)
}

// loadOwned fetches the project from the URL parameter and enforces that it
// belongs to the caller. Writes the error response and returns nil when the
// project cannot be used.
func (h *ProjectHandler) loadOwned(w http.ResponseWriter, r *http.Request) *models.Project {
	claims := r.Context().Value(apiContext.Claims).(*auth.Claims)
	params := r.Context().Value(apiContext.Params).(httprouter.Params)
	projectID := params.ByName("project_id")

	project, err := h.projects.GetByID(projectID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to load project", nil)
		return nil
	}
	if project == nil || project.UserID != claims.UserID {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Project not found", nil)
		return nil
	}
	return project
}
