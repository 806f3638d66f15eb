package appointment

// Business codes returned by the transition workflow.
const (
	CodeInvalidRequest = "invalid_request"
	CodeNotFound       = "appointment_not_found"
	CodeInvalidAction  = "invalid_action"
	CodeInvalidState   = "invalid_state"
	CodeConflict       = "conflict"
)
