package dispatch

import (
	"fmt"
	"slices"
	"time"
)

// Arrive moves an EN_ROUTE incident to ATTENDED and starts its on-scene
// countdown.
func (f *FCR) Arrive(inc *Incident, resolution time.Duration, at time.Time) error {
	if !canAdvance(inc.status, StatusAttended) {
		return fmt.Errorf("incident %d %s -> %s: %w", inc.id, inc.status, StatusAttended, ErrInvalidTransition)
	}
	inc.status = StatusAttended
	inc.travelTime = 0
	inc.resolutionTime = resolution
	inc.onSceneTime = resolution
	inc.arrivedAt = at

	o := inc.officer
	o.status = OfficerArrivedAtScene
	o.location = inc.location

	f.log.Info().
		Str("isr", inc.isr).
		Int("officer_id", o.id).
		Dur("response_time", inc.ResponseTime()).
		Dur("resolution_time", resolution).
		Msg("officer arrived at scene")
	f.observer.IncidentArrived(inc)
	return nil
}

// Resolve closes an ATTENDED incident and releases its officer back to the
// station.
func (f *FCR) Resolve(inc *Incident, at time.Time) error {
	if !canAdvance(inc.status, StatusResolved) {
		return fmt.Errorf("incident %d %s -> %s: %w", inc.id, inc.status, StatusResolved, ErrInvalidTransition)
	}
	o := inc.officer
	inc.status = StatusResolved
	inc.resolutionTime = 0
	inc.resolvedAt = at
	inc.officer = nil
	inc.resolvedBy = o.id

	o.assigned = nil
	o.status = OfficerAvailableAtStation
	o.location = o.station.location

	f.active = slices.DeleteFunc(f.active, func(a *Incident) bool { return a == inc })

	f.log.Info().
		Str("isr", inc.isr).
		Int("officer_id", o.id).
		Dur("total_time", at.Sub(inc.reportTime)).
		Msg("incident resolved")
	f.observer.IncidentResolved(inc)
	return nil
}

// Advance ages every active incident by elapsed. now is the end of the
// elapsed interval; transition timestamps are back-dated to the instant the
// countdown reached zero. Time on scene is counted from the back-dated
// arrival, so an incident whose on-scene time runs out within the same
// interval arrives and resolves in one call, and resolvedAt is always
// arrivedAt plus the drawn on-scene time.
func (f *FCR) Advance(elapsed time.Duration, now time.Time, policy ResolutionPolicy) error {
	for _, inc := range slices.Clone(f.active) {
		switch inc.status {
		case StatusEnRoute:
			inc.travelTime -= elapsed
			if inc.travelTime > 0 {
				continue
			}
			overshoot := -inc.travelTime
			if err := f.Arrive(inc, policy.ResolutionTime(inc), now.Add(-overshoot)); err != nil {
				return err
			}
			inc.resolutionTime -= overshoot
		case StatusAttended:
			inc.resolutionTime -= elapsed
		default:
			continue
		}
		if inc.resolutionTime > 0 {
			continue
		}
		if err := f.Resolve(inc, now.Add(inc.resolutionTime)); err != nil {
			return err
		}
	}
	return nil
}
