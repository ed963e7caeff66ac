package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"hookwatch/internal/engine/github"
	"hookwatch/internal/platform/repositories"
)

// RegistrationHandler creates a webhook subscription on GitHub for a
// project's repository and records the result. Either everything is
// persisted or nothing is; a store failure after the GitHub call succeeded
// is surfaced as a 500 so the caller can detect the inconsistent state.
type RegistrationHandler struct {
	projects      *repositories.ProjectRepository
	github        *github.Client
	publicBaseURL string
}

func NewRegistrationHandler(projects *repositories.ProjectRepository, gh *github.Client, publicBaseURL string) *RegistrationHandler {
	return &RegistrationHandler{
		projects:      projects,
		github:        gh,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}
}

func (h *RegistrationHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Repo   string   `json:"repo"`
		Events []string `json:"events"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || !repoPattern.MatchString(req.Repo) || len(req.Events) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request parameters"})
		return
	}

	// Fresh identifier per registration; it distinguishes this project's
	// inbound deliveries from every other project's.
	deliveryID := uuid.New().String()
	webhookURL := fmt.Sprintf("%s/hooks/github?id=%s", h.publicBaseURL, deliveryID)

	owner, name, _ := strings.Cut(req.Repo, "/")

	hook, err := h.github.CreateHook(r.Context(), owner, name, webhookURL, req.Events)
	if err != nil {
		log.Error().Err(err).Str("repository", req.Repo).Msg("webhook registration failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	webhookID := strconv.FormatInt(hook.ID, 10)
	if err := h.projects.SetWebhook(req.Repo, webhookID, webhookURL, deliveryID); err != nil {
		// The subscription now exists on GitHub but is not recorded locally.
		log.Error().Err(err).Str("repository", req.Repo).Int64("hook_id", hook.ID).Msg("webhook created on GitHub but not persisted")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"webhookId":  hook.ID,
		"webhookUrl": webhookURL,
	})
}
