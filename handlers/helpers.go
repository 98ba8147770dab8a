package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/Dosada05/contesthub/services"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type jsonResponse map[string]interface{}

const maxUploadBytes = 10 << 20

func readJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	maxBytes := 1_048_576
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err != nil {
		var syntaxError *json.SyntaxError
		var unmarshalTypeError *json.UnmarshalTypeError
		var invalidUnmarshalError *json.InvalidUnmarshalError
		var maxBytesError *http.MaxBytesError

		switch {
		case errors.As(err, &syntaxError):
			return fmt.Errorf("body contains badly-formed JSON (at character %d)", syntaxError.Offset)
		case errors.Is(err, io.ErrUnexpectedEOF):
			return errors.New("body contains badly-formed JSON")
		case errors.As(err, &unmarshalTypeError):
			if unmarshalTypeError.Field != "" {
				return fmt.Errorf("body contains incorrect JSON type for field %q", unmarshalTypeError.Field)
			}
			return fmt.Errorf("body contains incorrect JSON type (at character %d)", unmarshalTypeError.Offset)
		case errors.Is(err, io.EOF):
			return errors.New("body must not be empty")
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			fieldName := strings.TrimPrefix(err.Error(), "json: unknown field ")
			return fmt.Errorf("body contains unknown key %s", fieldName)
		case errors.As(err, &maxBytesError):
			return fmt.Errorf("body must not be larger than %d bytes", maxBytes)
		case errors.As(err, &invalidUnmarshalError):
			panic(err)
		default:
			return err
		}
	}

	err = dec.Decode(&struct{}{})
	if !errors.Is(err, io.EOF) {
		return errors.New("body must only contain a single JSON value")
	}

	return nil
}

func writeJSON(w http.ResponseWriter, status int, data interface{}, headers http.Header) error {
	js, err := json.MarshalIndent(data, "", "\t")
	if err != nil {
		return err
	}
	js = append(js, '\n')

	for key, value := range headers {
		w.Header()[key] = value
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(js)
	return err
}

func getIDFromURL(r *http.Request, paramName string) (int, error) {
	idStr := chi.URLParam(r, paramName)
	if idStr == "" {
		return 0, fmt.Errorf("missing %s in URL path", paramName)
	}
	id, err := strconv.Atoi(idStr)
	if err != nil {
		return 0, fmt.Errorf("invalid %s format: %q", paramName, idStr)
	}
	if id <= 0 {
		return 0, fmt.Errorf("invalid %s value: %d", paramName, id)
	}
	return id, nil
}

// confirmation is the body destructive endpoints require.
type confirmation struct {
	Confirm bool `json:"confirm"`
}

// readConfirmed decodes dst and reports whether the request carried confirm=true.
// dst must embed confirmation or be *confirmation.
func readConfirmed(w http.ResponseWriter, r *http.Request, dst interface{ confirmed() bool }) bool {
	if err := readJSON(w, r, dst); err != nil {
		badRequestResponse(w, r, err)
		return false
	}
	if !dst.confirmed() {
		errorResponse(w, r, http.StatusBadRequest, "confirmation_required", services.ErrConfirmationMiss.Error(), nil)
		return false
	}
	return true
}

func (c *confirmation) confirmed() bool { return c.Confirm }

// readUpload pulls the image part out of a multipart request.
func readUpload(w http.ResponseWriter, r *http.Request, field string) (io.ReadCloser, string, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		badRequestResponse(w, r, fmt.Errorf("failed to parse multipart form: %w", err))
		return nil, "", false
	}
	file, header, err := r.FormFile(field)
	if err != nil {
		badRequestResponse(w, r, fmt.Errorf("failed to get %s file from form: %w", field, err))
		return nil, "", false
	}
	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		file.Close()
		badRequestResponse(w, r, fmt.Errorf("content-type header is required for %s", field))
		return nil, "", false
	}
	return file, contentType, true
}

func errorResponse(w http.ResponseWriter, r *http.Request, status int, code string, message interface{}, extra jsonResponse) {
	env := jsonResponse{"error": message, "code": code}
	for k, v := range extra {
		env[k] = v
	}
	if err := writeJSON(w, status, env, nil); err != nil {
		zap.L().Error("failed to write error response", zap.Error(err), zap.String("path", r.URL.Path))
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	zap.L().Error("internal server error",
		zap.Error(err),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
	)
	message := "the server encountered a problem and could not process your request"
	errorResponse(w, r, http.StatusInternalServerError, "server_error", message, nil)
}

func badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	errorResponse(w, r, http.StatusBadRequest, "bad_request", err.Error(), nil)
}

func failedValidationResponse(w http.ResponseWriter, r *http.Request, fields map[string]string) {
	errorResponse(w, r, http.StatusUnprocessableEntity, "validation_failed", services.ErrValidationFailed.Error(), jsonResponse{"fields": fields})
}

func notFoundResponse(w http.ResponseWriter, r *http.Request, message string) {
	if message == "" {
		message = "the requested resource could not be found"
	}
	errorResponse(w, r, http.StatusNotFound, "not_found", message, nil)
}

func conflictResponse(w http.ResponseWriter, r *http.Request, code, message string) {
	errorResponse(w, r, http.StatusConflict, code, message, nil)
}

func unauthorizedResponse(w http.ResponseWriter, r *http.Request, message string) {
	errorResponse(w, r, http.StatusUnauthorized, "unauthenticated", message, nil)
}

func forbiddenResponse(w http.ResponseWriter, r *http.Request, message string) {
	errorResponse(w, r, http.StatusForbidden, "forbidden", message, nil)
}

// mapServiceErrorToHTTP turns service errors into the API error taxonomy.
func mapServiceErrorToHTTP(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validationErr *services.ValidationError
		quotaErr      *services.QuotaError
	)

	switch {
	case errors.As(err, &validationErr):
		failedValidationResponse(w, r, validationErr.Fields)
	case errors.As(err, &quotaErr):
		errorResponse(w, r, http.StatusPaymentRequired, "quota_exceeded", quotaErr.Reason, jsonResponse{"requires_package": true})

	case errors.Is(err, services.ErrContestNotFound),
		errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrPlanNotFound),
		errors.Is(err, services.ErrNotFound):
		notFoundResponse(w, r, err.Error())

	case errors.Is(err, services.ErrInvalidTransition):
		conflictResponse(w, r, "invalid_transition", err.Error())
	case errors.Is(err, services.ErrAlreadyJoined):
		conflictResponse(w, r, "already_joined", err.Error())
	case errors.Is(err, services.ErrAlreadySubmitted):
		conflictResponse(w, r, "already_submitted", err.Error())
	case errors.Is(err, services.ErrEmailTaken):
		conflictResponse(w, r, "email_taken", err.Error())
	case errors.Is(err, services.ErrPackageActive):
		conflictResponse(w, r, "package_active", err.Error())

	case errors.Is(err, services.ErrInvalidParticipant):
		errorResponse(w, r, http.StatusUnprocessableEntity, "invalid_participant", err.Error(), nil)
	case errors.Is(err, services.ErrValidationFailed):
		errorResponse(w, r, http.StatusUnprocessableEntity, "validation_failed", err.Error(), nil)

	case errors.Is(err, services.ErrInvalidCredentials):
		unauthorizedResponse(w, r, err.Error())
	case errors.Is(err, services.ErrForbidden),
		errors.Is(err, services.ErrSelfRoleChange),
		errors.Is(err, services.ErrNotParticipant):
		forbiddenResponse(w, r, err.Error())

	case errors.Is(err, services.ErrPaymentDeclined):
		errorResponse(w, r, http.StatusPaymentRequired, "payment_declined", err.Error(), nil)
	case errors.Is(err, services.ErrUnsupportedFile):
		errorResponse(w, r, http.StatusUnsupportedMediaType, "unsupported_media_type", err.Error(), nil)
	case errors.Is(err, services.ErrUploadsDisabled):
		errorResponse(w, r, http.StatusServiceUnavailable, "uploads_disabled", err.Error(), nil)

	default:
		serverErrorResponse(w, r, err)
	}
}
