// Package lifecycle holds the contest state machine and the derived countdown.
package lifecycle

import (
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/contesthub/models"
)

type Action string

const (
	ActionEdit          Action = "edit"
	ActionApprove       Action = "approve"
	ActionReject        Action = "reject"
	ActionOwnerDelete   Action = "owner_delete"
	ActionAdminDelete   Action = "admin_delete"
	ActionJoin          Action = "join"
	ActionSubmit        Action = "submit"
	ActionDeclareWinner Action = "declare_winner"
	ActionUploadImage   Action = "upload_image"
)

// Window restricts an action relative to the contest deadline.
type Window int

const (
	Anytime Window = iota
	BeforeDeadline
	AfterDeadline
)

type Rule struct {
	Next            models.ContestStatus
	Window          Window
	RequireNoWinner bool
}

var (
	ErrInvalidTransition   = errors.New("invalid contest state transition")
	ErrDeadlinePassed      = errors.New("contest deadline has passed")
	ErrDeadlineNotReached  = errors.New("contest deadline has not been reached yet")
	ErrWinnerAlreadyChosen = errors.New("contest winner has already been declared")
	ErrActionNotAllowed    = errors.New("action is not allowed in the current status")
)

// Table maps a status and an action to the rule that governs it.
// A missing entry means the action is not allowed in that status.
var Table = map[models.ContestStatus]map[Action]Rule{
	models.StatusPending: {
		ActionEdit:        {Next: models.StatusPending},
		ActionUploadImage: {Next: models.StatusPending},
		ActionApprove:     {Next: models.StatusConfirmed},
		ActionReject:      {Next: models.StatusRejected},
		ActionOwnerDelete: {Next: models.StatusPending},
		ActionAdminDelete: {Next: models.StatusPending},
	},
	models.StatusConfirmed: {
		ActionJoin:          {Next: models.StatusConfirmed, Window: BeforeDeadline},
		ActionSubmit:        {Next: models.StatusConfirmed, Window: BeforeDeadline},
		ActionDeclareWinner: {Next: models.StatusConfirmed, Window: AfterDeadline, RequireNoWinner: true},
		ActionAdminDelete:   {Next: models.StatusConfirmed},
	},
	models.StatusRejected: {
		ActionAdminDelete: {Next: models.StatusRejected},
	},
}

// TransitionError carries the rejected transition. It matches both
// ErrInvalidTransition and the specific reason under errors.Is.
type TransitionError struct {
	From   models.ContestStatus
	Action Action
	Reason error
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s contest in status %q: %v", e.Action, e.From, e.Reason)
}

func (e *TransitionError) Unwrap() []error {
	return []error{ErrInvalidTransition, e.Reason}
}

// Snapshot is the part of a contest the table looks at.
type Snapshot struct {
	Status    models.ContestStatus
	Deadline  time.Time
	HasWinner bool
}

func SnapshotOf(c *models.Contest) Snapshot {
	return Snapshot{
		Status:    c.Status,
		Deadline:  c.Deadline,
		HasWinner: c.WinnerID != nil,
	}
}

// Check returns the status the contest moves to when action is applied at now.
func Check(s Snapshot, action Action, now time.Time) (models.ContestStatus, error) {
	rule, ok := Table[s.Status][action]
	if !ok {
		return s.Status, &TransitionError{From: s.Status, Action: action, Reason: ErrActionNotAllowed}
	}

	switch rule.Window {
	case BeforeDeadline:
		if !now.Before(s.Deadline) {
			return s.Status, &TransitionError{From: s.Status, Action: action, Reason: ErrDeadlinePassed}
		}
	case AfterDeadline:
		if now.Before(s.Deadline) {
			return s.Status, &TransitionError{From: s.Status, Action: action, Reason: ErrDeadlineNotReached}
		}
	}

	if rule.RequireNoWinner && s.HasWinner {
		return s.Status, &TransitionError{From: s.Status, Action: action, Reason: ErrWinnerAlreadyChosen}
	}

	return rule.Next, nil
}

// Allowed lists the actions that Check would accept right now.
func Allowed(s Snapshot, now time.Time) []Action {
	var actions []Action
	for _, a := range []Action{
		ActionEdit, ActionUploadImage, ActionApprove, ActionReject,
		ActionOwnerDelete, ActionAdminDelete, ActionJoin, ActionSubmit, ActionDeclareWinner,
	} {
		if _, err := Check(s, a, now); err == nil {
			actions = append(actions, a)
		}
	}
	return actions
}
