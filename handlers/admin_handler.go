package handlers

import (
	"net/http"
	"strings"

	"github.com/Dosada05/contesthub/dashboard"
	"github.com/Dosada05/contesthub/models"
	"github.com/Dosada05/contesthub/services"
	"github.com/Dosada05/contesthub/utils"
)

type AdminHandler struct {
	dashboards *dashboard.Router
}

func NewAdminHandler(dashboards *dashboard.Router) *AdminHandler {
	return &AdminHandler{dashboards: dashboards}
}

// ListContests godoc
// @Summary List every contest, pending included
// @Tags admin
// @Produce json
// @Param status query string false "pending, confirmed or rejected"
// @Success 200 {object} map[string]interface{} "Contests"
// @Failure 403 {object} map[string]string
// @Security BearerAuth
// @Router /admin/contests [get]
func (h *AdminHandler) ListContests(w http.ResponseWriter, r *http.Request) {
	view, ok := adminView(w, r, h.dashboards)
	if !ok {
		return
	}

	var status *models.ContestStatus
	if s := r.URL.Query().Get("status"); s != "" {
		st := models.ContestStatus(s)
		if !st.Valid() {
			errorResponse(w, r, http.StatusBadRequest, "bad_request", "unknown contest status", nil)
			return
		}
		status = &st
	}

	contests, err := view.ListContests(r.Context(), status)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"contests": contests}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type contestStatusRequest struct {
	Status models.ContestStatus `json:"status"`
}

// SetContestStatus godoc
// @Summary Approve or reject a pending contest
// @Tags admin
// @Accept json
// @Produce json
// @Param contestID path int true "Contest ID"
// @Param body body contestStatusRequest true "confirmed or rejected"
// @Success 200 {object} services.ContestView
// @Failure 409 {object} map[string]string "Contest is not pending"
// @Security BearerAuth
// @Router /admin/contests/{contestID}/status [put]
func (h *AdminHandler) SetContestStatus(w http.ResponseWriter, r *http.Request) {
	contestID, err := getIDFromURL(r, "contestID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	view, ok := adminView(w, r, h.dashboards)
	if !ok {
		return
	}

	var req contestStatusRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	contest, err := view.ReviewContest(r.Context(), contestID, req.Status)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, contest, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *AdminHandler) DeleteContest(w http.ResponseWriter, r *http.Request) {
	contestID, err := getIDFromURL(r, "contestID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	view, ok := adminView(w, r, h.dashboards)
	if !ok {
		return
	}
	var body confirmation
	if !readConfirmed(w, r, &body) {
		return
	}

	if err := view.DeleteContest(r.Context(), contestID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListUsers godoc
// @Summary List users
// @Tags admin
// @Produce json
// @Param search query string false "Name or email search"
// @Param role query string false "Role filter"
// @Param page query int false "Page" default(1)
// @Param limit query int false "Page size" default(20)
// @Success 200 {object} models.UserListResponse
// @Security BearerAuth
// @Router /admin/users [get]
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	view, ok := adminView(w, r, h.dashboards)
	if !ok {
		return
	}

	q := r.URL.Query()
	filter := models.UserFilter{
		Search: strings.TrimSpace(q.Get("search")),
		Page:   utils.ToInt(q.Get("page"), 1),
		Limit:  utils.ToInt(q.Get("limit"), 20),
	}
	if s := q.Get("role"); s != "" {
		role := models.UserRole(s)
		if !role.Valid() {
			errorResponse(w, r, http.StatusBadRequest, "bad_request", "unknown role", nil)
			return
		}
		filter.Role = &role
	}

	resp, err := view.ListUsers(r.Context(), filter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, resp, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type setRoleRequest struct {
	confirmation
	services.SetRoleInput
}

// SetRole godoc
// @Summary Change a user's role
// @Tags admin
// @Accept json
// @Produce json
// @Param userID path int true "User ID"
// @Param body body setRoleRequest true "Role and confirmation"
// @Success 200 {object} models.User
// @Failure 400 {object} map[string]string "Missing confirmation"
// @Failure 403 {object} map[string]string "Own role"
// @Security BearerAuth
// @Router /admin/users/{userID}/role [put]
func (h *AdminHandler) SetRole(w http.ResponseWriter, r *http.Request) {
	userID, err := getIDFromURL(r, "userID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	view, ok := adminView(w, r, h.dashboards)
	if !ok {
		return
	}

	var req setRoleRequest
	if !readConfirmed(w, r, &req) {
		return
	}

	user, err := view.SetRole(r.Context(), userID, req.SetRoleInput)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, user, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	view, ok := adminView(w, r, h.dashboards)
	if !ok {
		return
	}
	stats, err := view.Stats(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, stats, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
