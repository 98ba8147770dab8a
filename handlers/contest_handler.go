package handlers

import (
	"net/http"
	"strings"

	"github.com/Dosada05/contesthub/dashboard"
	"github.com/Dosada05/contesthub/models"
	"github.com/Dosada05/contesthub/services"
)

type ContestHandler struct {
	contestService services.ContestService
	dashboards     *dashboard.Router
}

func NewContestHandler(contestService services.ContestService, dashboards *dashboard.Router) *ContestHandler {
	return &ContestHandler{
		contestService: contestService,
		dashboards:     dashboards,
	}
}

// ListContests godoc
// @Summary List open contests
// @Tags contests
// @Description Only confirmed contests are listed. Search matches the name case-insensitively.
// @Produce json
// @Param search query string false "Name search"
// @Param type query string false "Contest type"
// @Success 200 {object} map[string]interface{} "Contests"
// @Failure 400 {object} map[string]string "Unknown type"
// @Router /contests [get]
func (h *ContestHandler) ListContests(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := services.PublicContestFilter{Search: strings.TrimSpace(q.Get("search"))}
	if t := q.Get("type"); t != "" {
		ct := models.ContestType(t)
		if !ct.Valid() {
			errorResponse(w, r, http.StatusBadRequest, "bad_request", "unknown contest type", nil)
			return
		}
		filter.Type = &ct
	}

	contests, err := h.contestService.ListPublic(r.Context(), filter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"contests": contests}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ContestHandler) Popular(w http.ResponseWriter, r *http.Request) {
	contests, err := h.contestService.Popular(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"contests": contests}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ContestHandler) RecentWinners(w http.ResponseWriter, r *http.Request) {
	winners, err := h.contestService.RecentWinners(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"winners": winners}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetContest godoc
// @Summary Get a contest with its countdown
// @Tags contests
// @Produce json
// @Param contestID path int true "Contest ID"
// @Success 200 {object} services.ContestView
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /contests/{contestID} [get]
func (h *ContestHandler) GetContest(w http.ResponseWriter, r *http.Request) {
	contestID, err := getIDFromURL(r, "contestID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	s, ok := currentSession(w, r)
	if !ok {
		return
	}

	contest, err := h.contestService.Get(r.Context(), s.Actor(), contestID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, contest, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// CreateContest godoc
// @Summary Create a contest
// @Tags contests
// @Description Needs an active package with quota left. New contests wait for admin approval.
// @Accept json
// @Produce json
// @Param body body services.ContestInput true "Contest"
// @Success 201 {object} services.ContestView
// @Failure 402 {object} map[string]interface{} "Quota exceeded"
// @Failure 403 {object} map[string]string
// @Failure 422 {object} map[string]interface{} "Validation failed"
// @Security BearerAuth
// @Router /contests [post]
func (h *ContestHandler) CreateContest(w http.ResponseWriter, r *http.Request) {
	view, ok := creatorView(w, r, h.dashboards)
	if !ok {
		return
	}

	var input services.ContestInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	contest, err := view.CreateContest(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, contest, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UpdateContest dispatches to the admin or the owning creator view.
func (h *ContestHandler) UpdateContest(w http.ResponseWriter, r *http.Request) {
	contestID, err := getIDFromURL(r, "contestID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	v, ok := resolveView(w, r, h.dashboards)
	if !ok {
		return
	}

	var input services.ContestInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var contest *services.ContestView
	if a, isAdmin := dashboard.AsAdmin(v); isAdmin {
		contest, err = a.EditContest(r.Context(), contestID, input)
	} else if c, isCreator := dashboard.AsCreator(v); isCreator {
		contest, err = c.EditContest(r.Context(), contestID, input)
	} else {
		forbiddenResponse(w, r, services.ErrForbidden.Error())
		return
	}
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, contest, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// DeleteContest godoc
// @Summary Delete a contest
// @Tags contests
// @Description Owners may delete pending contests. Admins may delete any contest.
// @Accept json
// @Param contestID path int true "Contest ID"
// @Param body body confirmation true "Must be {\"confirm\": true}"
// @Success 204
// @Failure 400 {object} map[string]string "Missing confirmation"
// @Failure 409 {object} map[string]string "Invalid transition"
// @Security BearerAuth
// @Router /contests/{contestID} [delete]
func (h *ContestHandler) DeleteContest(w http.ResponseWriter, r *http.Request) {
	contestID, err := getIDFromURL(r, "contestID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	v, ok := resolveView(w, r, h.dashboards)
	if !ok {
		return
	}
	var body confirmation
	if !readConfirmed(w, r, &body) {
		return
	}

	if a, isAdmin := dashboard.AsAdmin(v); isAdmin {
		err = a.DeleteContest(r.Context(), contestID)
	} else if c, isCreator := dashboard.AsCreator(v); isCreator {
		err = c.DeleteContest(r.Context(), contestID)
	} else {
		forbiddenResponse(w, r, services.ErrForbidden.Error())
		return
	}
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ContestHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	contestID, err := getIDFromURL(r, "contestID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	view, ok := creatorView(w, r, h.dashboards)
	if !ok {
		return
	}

	file, contentType, ok := readUpload(w, r, "image")
	if !ok {
		return
	}
	defer file.Close()

	contest, err := view.UploadContestImage(r.Context(), contestID, contentType, file)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, contest, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// JoinContest godoc
// @Summary Pay the entry fee and join a contest
// @Tags contests
// @Produce json
// @Param contestID path int true "Contest ID"
// @Success 201 {object} services.JoinResult
// @Failure 402 {object} map[string]string "Payment declined"
// @Failure 409 {object} map[string]string "Already joined or contest closed"
// @Security BearerAuth
// @Router /contests/{contestID}/pay [post]
func (h *ContestHandler) JoinContest(w http.ResponseWriter, r *http.Request) {
	contestID, err := getIDFromURL(r, "contestID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	view, ok := participantView(w, r, h.dashboards)
	if !ok {
		return
	}

	result, err := view.Join(r.Context(), contestID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, result, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ContestHandler) MyContests(w http.ResponseWriter, r *http.Request) {
	view, ok := creatorView(w, r, h.dashboards)
	if !ok {
		return
	}
	contests, err := view.MyContests(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"contests": contests}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
