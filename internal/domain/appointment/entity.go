package appointment

import (
	"strings"

	"github.com/BruksfildServices01/care-scheduler/internal/models"
)

// Transition describes a status change applied to an appointment in memory.
type Transition struct {
	Action   Action
	From     Status
	To       Status
	MeetLink *string
}

// ===============================
// Domain Actions
// ===============================

// Apply moves ap into the status mapped from action. A meeting link is only
// recorded on approve and only when one is supplied; otherwise the stored
// link is left untouched.
func Apply(ap *models.Appointment, action Action, meetLink string, policy Policy) (Transition, error) {
	target, err := TargetStatus(action)
	if err != nil {
		return Transition{}, err
	}

	current := Status(ap.Status)
	if err := policy.Allows(current, target); err != nil {
		return Transition{}, err
	}

	tr := Transition{
		Action: action,
		From:   current,
		To:     target,
	}

	ap.Status = string(target)

	if link := strings.TrimSpace(meetLink); action == ActionApprove && link != "" {
		ap.MeetLink = &link
		tr.MeetLink = &link
	}

	return tr, nil
}
