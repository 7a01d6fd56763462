package handler

import (
	"encoding/json"
	"net/http"

	"challengehub/internal/app/service"
	"challengehub/internal/common"

	"github.com/go-chi/chi/v5"
)

// WebhookHandler receives asynchronous results from the external code executor.
type WebhookHandler struct {
	executionService *service.ExecutionService
}

func NewWebhookHandler(es *service.ExecutionService) *WebhookHandler {
	return &WebhookHandler{executionService: es}
}

func (h *WebhookHandler) RegisterRoutes(r chi.Router) {
	r.Post("/execution", h.handleExecutionResult)
}

func (h *WebhookHandler) handleExecutionResult(w http.ResponseWriter, r *http.Request) {
	var payload service.ExecutionResultPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	if payload.JobID == "" {
		common.RespondWithError(w, http.StatusBadRequest, "job_id is required")
		return
	}

	if err := h.executionService.HandleExecutionResult(r.Context(), payload); err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Result recorded"})
}
