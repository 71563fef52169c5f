package handler

import (
	"context"
	"net/http"

	"contest_judge/internal/common"
	"contest_judge/internal/domain/model"

	"github.com/go-chi/chi/v5"
)

type LeaderboardReader interface {
	GetLeaderboard(ctx context.Context, contestID string) ([]model.LeaderboardEntry, error)
}

type LeaderboardHandler struct {
	leaderboard LeaderboardReader
}

func NewLeaderboardHandler(lb LeaderboardReader) *LeaderboardHandler {
	return &LeaderboardHandler{leaderboard: lb}
}

// RegisterRoutes mounts the public standings. Mounted under /contests.
func (h *LeaderboardHandler) RegisterRoutes(r chi.Router) {
	r.Get("/{contestID}/leaderboard", h.getLeaderboard)
}

func (h *LeaderboardHandler) getLeaderboard(w http.ResponseWriter, r *http.Request) {
	entries, err := h.leaderboard.GetLeaderboard(r.Context(), chi.URLParam(r, "contestID"))
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, entries)
}
