package handlers

import (
	"net/http"

	"github.com/Dosada05/contesthub/services"
)

type UserHandler struct {
	userService    services.UserService
	packageService services.PackageService
}

func NewUserHandler(userService services.UserService, packageService services.PackageService) *UserHandler {
	return &UserHandler{
		userService:    userService,
		packageService: packageService,
	}
}

// Stats godoc
// @Summary Participation statistics of the current user
// @Tags users
// @Produce json
// @Success 200 {object} models.UserStats
// @Security BearerAuth
// @Router /user/stats [get]
func (h *UserHandler) Stats(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r)
	if !ok {
		return
	}
	stats, err := h.userService.Stats(r.Context(), s.Actor())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, stats, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *UserHandler) Participated(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r)
	if !ok {
		return
	}
	contests, err := h.userService.Participated(r.Context(), s.Actor())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"contests": contests}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *UserHandler) Winnings(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r)
	if !ok {
		return
	}
	winnings, err := h.userService.Winnings(r.Context(), s.Actor())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, winnings, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UpdateProfile godoc
// @Summary Update the current user's profile
// @Tags users
// @Accept json
// @Produce json
// @Param body body services.UpdateProfileInput true "Fields to change"
// @Success 200 {object} models.User
// @Failure 422 {object} map[string]interface{} "Validation failed"
// @Security BearerAuth
// @Router /user/profile [put]
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r)
	if !ok {
		return
	}

	var input services.UpdateProfileInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	user, err := h.userService.UpdateProfile(r.Context(), s.Actor(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, user, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UploadPhoto godoc
// @Summary Upload a profile photo
// @Tags users
// @Accept multipart/form-data
// @Produce json
// @Param photo formData file true "Image file (jpeg, png, gif, webp)"
// @Success 200 {object} models.User
// @Failure 415 {object} map[string]string
// @Failure 503 {object} map[string]string "Uploads not configured"
// @Security BearerAuth
// @Router /user/profile/photo [post]
func (h *UserHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r)
	if !ok {
		return
	}

	file, contentType, ok := readUpload(w, r, "photo")
	if !ok {
		return
	}
	defer file.Close()

	user, err := h.userService.UploadPhoto(r.Context(), s.Actor(), contentType, file)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, user, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *UserHandler) GetPublic(w http.ResponseWriter, r *http.Request) {
	userID, err := getIDFromURL(r, "userID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	user, err := h.userService.GetPublic(r.Context(), userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, user, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *UserHandler) Package(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r)
	if !ok {
		return
	}
	status, err := h.packageService.Current(r.Context(), s.Actor())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, status, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// CanCreateContest godoc
// @Summary Check whether the current user may create a contest
// @Tags users
// @Produce json
// @Success 200 {object} services.CreateEligibility
// @Security BearerAuth
// @Router /user/can-create-contest [get]
func (h *UserHandler) CanCreateContest(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r)
	if !ok {
		return
	}
	eligibility, err := h.packageService.CanCreate(r.Context(), s.Actor())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, eligibility, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
