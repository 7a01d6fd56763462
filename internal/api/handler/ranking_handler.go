package handler

import (
	"net/http"
	"strconv"

	"challengehub/internal/app/service"
	"challengehub/internal/common"
	"challengehub/internal/domain/model"

	"github.com/go-chi/chi/v5"
)

type RankingHandler struct {
	rankingService *service.RankingService
}

func NewRankingHandler(rs *service.RankingService) *RankingHandler {
	return &RankingHandler{rankingService: rs}
}

func (h *RankingHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.getRankings)
}

func (h *RankingHandler) getRankings(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			common.RespondWithError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	rankings, err := h.rankingService.GetRankings(r.Context(), limit)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string][]model.RankingEntry{"rankings": rankings})
}
