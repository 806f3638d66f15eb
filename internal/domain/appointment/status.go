package appointment

import (
	"strings"

	"github.com/BruksfildServices01/care-scheduler/internal/httperr"
)

// ===============================
// Appointment Status
// ===============================

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusNoShow    Status = "no-show"
	StatusCompleted Status = "completed"
)

// IsTerminal reports whether no further transition is expected from s.
// Confirmed is not terminal: a confirmed appointment can still be cancelled
// or marked as a no-show.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusCancelled, StatusNoShow, StatusCompleted:
		return true
	}
	return false
}

// ===============================
// Actions
// ===============================

type Action string

const (
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
	ActionNoShow  Action = "noshow"
)

func ParseAction(raw string) Action {
	return Action(strings.ToLower(strings.TrimSpace(raw)))
}

// TargetStatus maps an action to the status it drives the appointment into.
// The mapping never looks at the current status.
func TargetStatus(a Action) (Status, error) {
	switch a {
	case ActionApprove:
		return StatusConfirmed, nil
	case ActionReject:
		return StatusCancelled, nil
	case ActionNoShow:
		return StatusNoShow, nil
	}
	return "", httperr.ErrBusiness(CodeInvalidAction)
}
