package services

import (
	"errors"
	"sort"
	"strings"

	"github.com/Dosada05/contesthub/lifecycle"
	"github.com/Dosada05/contesthub/payments"
	"github.com/Dosada05/contesthub/storage"
)

var (
	ErrNotFound        = errors.New("requested resource not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrContestNotFound = errors.New("contest not found")
	ErrPlanNotFound    = errors.New("package plan not found")

	ErrValidationFailed   = errors.New("validation failed")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email is already taken")

	ErrForbidden        = errors.New("operation not allowed for the current user")
	ErrSelfRoleChange   = errors.New("admins cannot change their own role")
	ErrNotParticipant   = errors.New("only contest participants can submit")
	ErrConfirmationMiss = errors.New("destructive operation requires confirmation")

	ErrInvalidTransition  = lifecycle.ErrInvalidTransition
	ErrQuotaExceeded      = errors.New("contest creation quota exceeded")
	ErrAlreadyJoined      = errors.New("user has already joined this contest")
	ErrAlreadySubmitted   = errors.New("participant has already submitted to this contest")
	ErrInvalidParticipant = errors.New("winner must be a participant of the contest")
	ErrPackageActive      = errors.New("an active package already exists")

	ErrUploadsDisabled = storage.ErrUploadsDisabled
	ErrUnsupportedFile = storage.ErrUnsupportedMediaType
	ErrPaymentDeclined = payments.ErrPaymentDeclined
)

// QuotaError explains why a creator may not create a contest right now.
type QuotaError struct {
	Reason string
}

func (e *QuotaError) Error() string {
	return ErrQuotaExceeded.Error() + ": " + e.Reason
}

func (e *QuotaError) Unwrap() error {
	return ErrQuotaExceeded
}

// ValidationError carries per-field messages keyed by JSON field name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + e.Fields[k]
	}
	return ErrValidationFailed.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}
