package dispatch

import (
	"fmt"
	"time"

	"police/fcr/internal/geo"
)

// Officer is a dispatchable resource based at one station.
type Officer struct {
	id        int
	station   *Station
	shift     Shift
	shiftEnds time.Time
	status    OfficerStatus
	location  geo.Point
	assigned  *Incident
}

func (o *Officer) ID() int { return o.id }
func (o *Officer) Station() *Station { return o.station }
func (o *Officer) Shift() Shift { return o.shift }
func (o *Officer) ShiftEnds() time.Time { return o.shiftEnds }
func (o *Officer) Status() OfficerStatus { return o.status }
func (o *Officer) Location() geo.Point { return o.location }
func (o *Officer) AssignedIncident() *Incident { return o.assigned }

// OnDuty reports whether now falls within the officer's shift window.
func (o *Officer) OnDuty(now time.Time) bool {
	return o.shift.Covers(now)
}

// Available reports whether the officer can be given a new incident at now.
func (o *Officer) Available(now time.Time) bool {
	return o.assigned == nil && o.status.Deployable() && o.OnDuty(now)
}

// SetStatus changes the operational status of an unassigned officer. The
// attending and at-scene codes belong to the assignment lifecycle and are
// rejected.
func (o *Officer) SetStatus(status OfficerStatus) error {
	if _, err := OfficerStatusFromCode(status.Code()); err != nil {
		return err
	}
	if status.SystemSet() {
		return fmt.Errorf("officer %d status %s: %w", o.id, status.Code(), ErrSystemStatus)
	}
	if o.assigned != nil {
		return fmt.Errorf("officer %d: %w", o.id, ErrOfficerCommitted)
	}
	o.status = status
	return nil
}
