package handlers

import (
	"net/http"

	"github.com/Dosada05/contesthub/models"
	"github.com/Dosada05/contesthub/services"
	"github.com/Dosada05/contesthub/session"
)

type AuthHandler struct {
	authService services.AuthService
	tokens      *session.TokenIssuer
}

func NewAuthHandler(authService services.AuthService, tokens *session.TokenIssuer) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		tokens:      tokens,
	}
}

func (h *AuthHandler) issue(w http.ResponseWriter, r *http.Request, status int, user *models.User) {
	token, expiresAt, err := h.tokens.Issue(user)
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}
	response := jsonResponse{
		"token":      token,
		"expires_at": expiresAt,
		"user":       user,
	}
	if err := writeJSON(w, status, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Register godoc
// @Summary Register a new account
// @Tags auth
// @Description New accounts always get the user role.
// @Accept json
// @Produce json
// @Param body body services.RegisterInput true "Account details"
// @Success 201 {object} map[string]interface{} "Token and user"
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string "Email already taken"
// @Failure 422 {object} map[string]interface{} "Validation failed"
// @Router /auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input services.RegisterInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	user, err := h.authService.Register(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.issue(w, r, http.StatusCreated, user)
}

// Login godoc
// @Summary Log in and receive a bearer token
// @Tags auth
// @Accept json
// @Produce json
// @Param body body services.LoginInput true "Credentials"
// @Success 200 {object} map[string]interface{} "Token and user"
// @Failure 401 {object} map[string]string "Invalid credentials"
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input services.LoginInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	user, err := h.authService.Login(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.issue(w, r, http.StatusOK, user)
}

// Me godoc
// @Summary Resolve the current session
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]interface{} "Current user"
// @Failure 401 {object} map[string]string
// @Security BearerAuth
// @Router /auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r)
	if !ok {
		return
	}
	response := jsonResponse{
		"user":       s.User,
		"expires_at": s.ExpiresAt,
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
