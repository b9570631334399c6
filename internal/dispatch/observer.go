package dispatch

// Observer receives lifecycle notifications from the FCR. Calls happen on the
// goroutine driving the FCR and must not call back into it.
type Observer interface {
	IncidentReported(inc *Incident)
	IncidentAssigned(inc *Incident)
	IncidentArrived(inc *Incident)
	IncidentResolved(inc *Incident)
	AssignmentFailed(inc *Incident, reason error)
}

// NopObserver ignores every notification.
type NopObserver struct{}

func (NopObserver) IncidentReported(*Incident) {}
func (NopObserver) IncidentAssigned(*Incident) {}
func (NopObserver) IncidentArrived(*Incident) {}
func (NopObserver) IncidentResolved(*Incident) {}
func (NopObserver) AssignmentFailed(*Incident, error) {}
