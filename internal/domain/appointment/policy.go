package appointment

import (
	"fmt"

	"github.com/BruksfildServices01/care-scheduler/internal/httperr"
)

// Policy decides whether the current status of an appointment may be left.
type Policy string

const (
	// PolicyPermissive accepts any prior status, including terminal ones.
	PolicyPermissive Policy = "permissive"
	// PolicyStrict refuses to move an appointment out of a terminal status or
	// into the status it already has.
	PolicyStrict Policy = "strict"
)

func ParsePolicy(raw string) (Policy, error) {
	switch Policy(raw) {
	case "", PolicyPermissive:
		return PolicyPermissive, nil
	case PolicyStrict:
		return PolicyStrict, nil
	}
	return "", fmt.Errorf("unknown transition policy %q", raw)
}

func (p Policy) Allows(current, target Status) error {
	if p != PolicyStrict {
		return nil
	}
	if current.IsTerminal() || current == target {
		return httperr.ErrBusiness(CodeInvalidState)
	}
	return nil
}
