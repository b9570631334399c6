package dispatch

import "fmt"

// OfficerStatus is the two-digit operational status code of an officer.
type OfficerStatus string

const (
	OfficerUrgentAssistance       OfficerStatus = "00"
	OfficerOnDuty                 OfficerStatus = "01"
	OfficerOnPatrol               OfficerStatus = "02"
	OfficerAvailableAtStation     OfficerStatus = "03"
	OfficerRefreshments           OfficerStatus = "04"
	OfficerAttendingIncident      OfficerStatus = "05"
	OfficerArrivedAtScene         OfficerStatus = "06"
	OfficerCommittedDeployable    OfficerStatus = "07"
	OfficerCommittedNotDeployable OfficerStatus = "08"
	OfficerPrisonerEscort         OfficerStatus = "09"
	OfficerAtCourt                OfficerStatus = "10"
	OfficerOffDuty                OfficerStatus = "11"
	OfficerConfidentialMessage    OfficerStatus = "12"
	OfficerRadioOn                OfficerStatus = "99"
)

type officerStatusInfo struct {
	description string
	deployable  bool
}

var officerStatuses = map[OfficerStatus]officerStatusInfo{
	OfficerUrgentAssistance:       {"Urgent assistance", false},
	OfficerOnDuty:                 {"On duty", true},
	OfficerOnPatrol:               {"On patrol", true},
	OfficerAvailableAtStation:     {"Available at station", true},
	OfficerRefreshments:           {"Refreshments", true},
	OfficerAttendingIncident:      {"Attending incident", false},
	OfficerArrivedAtScene:         {"Arrived at scene", false},
	OfficerCommittedDeployable:    {"Committed but deployable", true},
	OfficerCommittedNotDeployable: {"Committed not deployable", false},
	OfficerPrisonerEscort:         {"Prisoner escort", false},
	OfficerAtCourt:                {"At court", false},
	OfficerOffDuty:                {"Off duty", false},
	OfficerConfidentialMessage:    {"Confidential message", false},
	OfficerRadioOn:                {"Radio on", false},
}

// OfficerStatusFromCode looks a status up by its exact two-digit code.
func OfficerStatusFromCode(code string) (OfficerStatus, error) {
	st := OfficerStatus(code)
	if _, ok := officerStatuses[st]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatusCode, code)
	}
	return st, nil
}

// Code returns the two-digit code.
func (s OfficerStatus) Code() string { return string(s) }

// Description returns the human-readable label.
func (s OfficerStatus) Description() string { return officerStatuses[s].description }

// SystemSet reports whether the status is only ever set by an assignment or
// arrival.
func (s OfficerStatus) SystemSet() bool {
	return s == OfficerAttendingIncident || s == OfficerArrivedAtScene
}

// Deployable reports whether an officer in this status may take an incident.
func (s OfficerStatus) Deployable() bool { return officerStatuses[s].deployable }

func (s OfficerStatus) String() string {
	return fmt.Sprintf("%s - %s", s.Code(), s.Description())
}
