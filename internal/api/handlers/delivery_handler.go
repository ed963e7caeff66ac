package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"
	"hookwatch/internal/engine/dispatch"
	"hookwatch/internal/engine/events"
	"hookwatch/internal/platform/repositories"
)

// DeliveryHandler is the inbound entry point GitHub posts deliveries to.
// The delivery id query parameter identifies which project's webhook fired,
// since GitHub does not otherwise tag deliveries with the project.
type DeliveryHandler struct {
	projects   *repositories.ProjectRepository
	dispatcher *dispatch.Dispatcher
}

func NewDeliveryHandler(projects *repositories.ProjectRepository, dispatcher *dispatch.Dispatcher) *DeliveryHandler {
	return &DeliveryHandler{projects: projects, dispatcher: dispatcher}
}

func (h *DeliveryHandler) Handle(w http.ResponseWriter, r *http.Request) {
	deliveryID := r.URL.Query().Get("id")
	if deliveryID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Missing webhook ID"})
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid GitHub webhook payload"})
		return
	}

	rawEvent := r.Header.Get("X-GitHub-Event")

	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err != nil || payload == nil || rawEvent == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid GitHub webhook payload"})
		return
	}

	project, err := h.projects.GetByDeliveryID(deliveryID)
	if err != nil {
		log.Error().Err(err).Str("delivery_id", deliveryID).Msg("project lookup failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to process webhook"})
		return
	}
	if project == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Project not found"})
		return
	}

	eventType := events.Normalize(rawEvent, payload)

	results, err := h.dispatcher.Dispatch(project.ID, eventType, json.RawMessage(body))
	if err != nil {
		log.Error().Err(err).Str("project_id", project.ID).Str("event_type", eventType).Msg("trigger match failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Error fetching events"})
		return
	}

	if len(results) == 0 {
		// Zero matches is a success outcome, not an error.
		writeJSON(w, http.StatusOK, map[string]string{"message": "No matching event configurations found"})
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Message string            `json:"message"`
		Results []dispatch.Result `json:"results"`
	}{
		Message: "Webhook processed",
		Results: results,
	})
}
