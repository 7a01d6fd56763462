package handler

import (
	"encoding/json"
	"net/http"

	"challengehub/internal/api/middleware"
	"challengehub/internal/app/service"
	"challengehub/internal/common"
	"challengehub/internal/common/security"
	"challengehub/internal/domain/model"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
)

// callerRole resolves the requester's role on public routes. The Verifier
// middleware parses any bearer token globally, so an admin browsing the
// catalog is recognized without the route requiring authentication.
func callerRole(r *http.Request) string {
	if role, ok := middleware.GetUserRoleFromContext(r.Context()); ok {
		return role
	}
	if _, claims, err := jwtauth.FromContext(r.Context()); err == nil {
		if role, err := security.GetUserRoleFromClaims(claims); err == nil {
			return role
		}
	}
	return ""
}

type ChallengeHandler struct {
	challengeService *service.ChallengeService
	executionService *service.ExecutionService
}

func NewChallengeHandler(cs *service.ChallengeService, es *service.ExecutionService) *ChallengeHandler {
	return &ChallengeHandler{challengeService: cs, executionService: es}
}

func (h *ChallengeHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.listChallenges)
	r.Get("/{challengeID}", h.getChallenge)

	r.Group(func(authed chi.Router) {
		authed.Use(middleware.Authenticator)
		authed.Post("/{challengeID}/validate", h.validateCode)
		authed.Get("/validate/{jobID}", h.getValidationReport)
	})

	r.Group(func(adminRouter chi.Router) {
		adminRouter.Use(middleware.Authenticator)
		adminRouter.Use(middleware.AdminOnly)
		adminRouter.Post("/", h.createChallenge)
		adminRouter.Put("/{challengeID}", h.updateChallenge)
		adminRouter.Delete("/{challengeID}", h.deleteChallenge)
	})
}

func (h *ChallengeHandler) listChallenges(w http.ResponseWriter, r *http.Request) {
	category := model.ChallengeCategory(r.URL.Query().Get("category"))
	status := model.ChallengeStatus(r.URL.Query().Get("status"))
	searchTerm := r.URL.Query().Get("search")

	// Empty for anonymous browse; the service forces active status for
	// anyone without the admin role.
	userRole := callerRole(r)

	challenges, err := h.challengeService.ListChallenges(r.Context(), category, status, searchTerm, userRole)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string][]model.Challenge{"challenges": challenges})
}

func (h *ChallengeHandler) getChallenge(w http.ResponseWriter, r *http.Request) {
	challengeID := chi.URLParam(r, "challengeID")
	userRole := callerRole(r)

	challenge, err := h.challengeService.GetChallenge(r.Context(), challengeID, userRole)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]*model.Challenge{"challenge": challenge})
}

func (h *ChallengeHandler) createChallenge(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	var req service.ChallengePayloadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	challenge, err := h.challengeService.CreateChallenge(r.Context(), userID, req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, map[string]*model.Challenge{"challenge": challenge})
}

func (h *ChallengeHandler) updateChallenge(w http.ResponseWriter, r *http.Request) {
	challengeID := chi.URLParam(r, "challengeID")

	var req service.ChallengePayloadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	challenge, err := h.challengeService.UpdateChallenge(r.Context(), challengeID, req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]*model.Challenge{"challenge": challenge})
}

func (h *ChallengeHandler) deleteChallenge(w http.ResponseWriter, r *http.Request) {
	challengeID := chi.URLParam(r, "challengeID")

	if err := h.challengeService.DeleteChallenge(r.Context(), challengeID); err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Challenge deleted successfully"})
}

type validateCodeRequest struct {
	Code     string `json:"code"`
	Language string `json:"language"`
}

func (h *ChallengeHandler) validateCode(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}
	challengeID := chi.URLParam(r, "challengeID")

	var req validateCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	job, err := h.executionService.EnqueueCodeValidation(r.Context(), userID, challengeID, req.Language, req.Code)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	// Accepted (202) as execution is async; poll the report endpoint.
	common.RespondWithJSON(w, http.StatusAccepted, map[string]string{"job_id": job.ID, "status": job.Status})
}

func (h *ChallengeHandler) getValidationReport(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	userRole, _ := middleware.GetUserRoleFromContext(r.Context())

	report, err := h.executionService.GetValidationReport(r.Context(), jobID, userRole)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, report)
}
