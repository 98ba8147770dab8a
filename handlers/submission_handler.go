package handlers

import (
	"net/http"

	"github.com/Dosada05/contesthub/dashboard"
	"github.com/Dosada05/contesthub/services"
)

type SubmissionHandler struct {
	dashboards *dashboard.Router
}

func NewSubmissionHandler(dashboards *dashboard.Router) *SubmissionHandler {
	return &SubmissionHandler{dashboards: dashboards}
}

// Submit godoc
// @Summary Submit an entry to a joined contest
// @Tags submissions
// @Accept json
// @Produce json
// @Param contestID path int true "Contest ID"
// @Param body body services.SubmitInput true "Submission"
// @Success 201 {object} models.Submission
// @Failure 403 {object} map[string]string "Not a participant"
// @Failure 409 {object} map[string]string "Deadline passed or already submitted"
// @Security BearerAuth
// @Router /contests/{contestID}/submit [post]
func (h *SubmissionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	contestID, err := getIDFromURL(r, "contestID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	view, ok := participantView(w, r, h.dashboards)
	if !ok {
		return
	}

	var input services.SubmitInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	submission, err := view.Submit(r.Context(), contestID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, submission, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *SubmissionHandler) List(w http.ResponseWriter, r *http.Request) {
	contestID, err := getIDFromURL(r, "contestID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	view, ok := creatorView(w, r, h.dashboards)
	if !ok {
		return
	}

	submissions, err := view.Submissions(r.Context(), contestID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"submissions": submissions}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type declareWinnerRequest struct {
	confirmation
	WinnerID int `json:"winner_id"`
}

// DeclareWinner godoc
// @Summary Declare the winner of a contest
// @Tags submissions
// @Description Only the owning creator, after the deadline, once per contest. The winner must be a participant.
// @Accept json
// @Produce json
// @Param contestID path int true "Contest ID"
// @Param body body declareWinnerRequest true "Winner and confirmation"
// @Success 200 {object} services.ContestView
// @Failure 400 {object} map[string]string "Missing confirmation"
// @Failure 409 {object} map[string]string "Deadline not reached or winner already chosen"
// @Failure 422 {object} map[string]string "Winner is not a participant"
// @Security BearerAuth
// @Router /contests/{contestID}/winner [post]
func (h *SubmissionHandler) DeclareWinner(w http.ResponseWriter, r *http.Request) {
	contestID, err := getIDFromURL(r, "contestID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	view, ok := creatorView(w, r, h.dashboards)
	if !ok {
		return
	}

	var req declareWinnerRequest
	if !readConfirmed(w, r, &req) {
		return
	}
	if req.WinnerID <= 0 {
		failedValidationResponse(w, r, map[string]string{"winner_id": "is required"})
		return
	}

	contest, err := view.DeclareWinner(r.Context(), contestID, req.WinnerID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, contest, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
