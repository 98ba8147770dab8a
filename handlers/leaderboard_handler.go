package handlers

import (
	"net/http"

	"github.com/Dosada05/contesthub/services"
	"github.com/Dosada05/contesthub/utils"
)

type LeaderboardHandler struct {
	leaderboardService services.LeaderboardService
}

func NewLeaderboardHandler(leaderboardService services.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{leaderboardService: leaderboardService}
}

// Leaderboard godoc
// @Summary Users ranked by contests won
// @Tags leaderboard
// @Produce json
// @Param page query int false "Page" default(1)
// @Param limit query int false "Page size" default(10)
// @Success 200 {object} models.LeaderboardPage
// @Router /leaderboard [get]
func (h *LeaderboardHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := h.leaderboardService.Page(r.Context(), utils.ToInt(q.Get("page"), 1), utils.ToInt(q.Get("limit"), 10))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, page, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
