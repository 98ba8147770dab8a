package handlers

import (
	"net/http"

	"github.com/Dosada05/contesthub/dashboard"
)

type DashboardHandler struct {
	dashboards *dashboard.Router
}

func NewDashboardHandler(dashboards *dashboard.Router) *DashboardHandler {
	return &DashboardHandler{dashboards: dashboards}
}

// Dashboard godoc
// @Summary Resolve the dashboard for the current role
// @Tags dashboard
// @Produce json
// @Success 200 {object} dashboard.Descriptor
// @Failure 403 {object} map[string]string "Unknown role"
// @Security BearerAuth
// @Router /dashboard [get]
func (h *DashboardHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	view, ok := resolveView(w, r, h.dashboards)
	if !ok {
		return
	}
	if err := writeJSON(w, http.StatusOK, view.Descriptor(), nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
