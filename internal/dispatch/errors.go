package dispatch

import "errors"

// Recoverable assignment outcomes. The incident stays REPORTED and is retried
// on the next dispatch pass.
var (
	ErrNoResponsibleStation = errors.New("no responsible station")
	ErrNoOfficerAvailable   = errors.New("no officer available")
)

// Programming or configuration errors.
var (
	ErrInvalidStatusCode = errors.New("invalid officer status code")
	ErrInvalidPriority   = errors.New("invalid incident priority")
	ErrInvalidShift      = errors.New("invalid shift type")
	ErrInvalidTransition = errors.New("invalid incident status transition")
	ErrOfficerCommitted  = errors.New("officer is committed to an incident")
	ErrSystemStatus      = errors.New("officer status is set by the dispatcher only")
)
