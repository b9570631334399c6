package dispatch

import "fmt"

// IncidentStatus is a step of the incident lifecycle.
type IncidentStatus string

const (
	StatusReported IncidentStatus = "REPORTED"
	StatusEnRoute  IncidentStatus = "EN_ROUTE"
	StatusAttended IncidentStatus = "ATTENDED"
	StatusResolved IncidentStatus = "RESOLVED"
)

// nextStatus is the only transition allowed out of each state.
var nextStatus = map[IncidentStatus]IncidentStatus{
	StatusReported: StatusEnRoute,
	StatusEnRoute:  StatusAttended,
	StatusAttended: StatusResolved,
}

// ParseIncidentStatus resolves a status name.
func ParseIncidentStatus(name string) (IncidentStatus, error) {
	switch s := IncidentStatus(name); s {
	case StatusReported, StatusEnRoute, StatusAttended, StatusResolved:
		return s, nil
	}
	return "", fmt.Errorf("unknown incident status %q", name)
}

func canAdvance(from, to IncidentStatus) bool {
	next, ok := nextStatus[from]
	return ok && next == to
}

// Open reports whether an officer is bound to incidents in this state.
func (s IncidentStatus) Open() bool {
	return s == StatusEnRoute || s == StatusAttended
}

func (s IncidentStatus) String() string {
	return string(s)
}
