package dispatch

import (
	"fmt"
	"strings"
	"time"
)

// ShiftType names one of the fixed duty rosters.
type ShiftType string

const (
	ShiftEarly ShiftType = "EARLY"
	ShiftLate  ShiftType = "LATE"
	ShiftNight ShiftType = "NIGHT"
)

type shiftWindow struct {
	name      string
	startHour int
	endHour   int
}

var shiftWindows = map[ShiftType]shiftWindow{
	ShiftEarly: {name: "early", startHour: 7, endHour: 16},
	ShiftLate:  {name: "late", startHour: 15, endHour: 0},
	ShiftNight: {name: "night", startHour: 22, endHour: 7},
}

// ParseShiftType resolves a shift name, ignoring case.
func ParseShiftType(name string) (ShiftType, error) {
	st := ShiftType(strings.ToUpper(strings.TrimSpace(name)))
	if _, ok := shiftWindows[st]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidShift, name)
	}
	return st, nil
}

// Shift is the on/off-duty window of an officer.
type Shift struct {
	Type ShiftType
}

// StartHour is the clock hour the shift begins.
func (s Shift) StartHour() int { return shiftWindows[s.Type].startHour }

// EndHour is the clock hour the shift ends; it may be smaller than StartHour.
func (s Shift) EndHour() int { return shiftWindows[s.Type].endHour }

// Wraps reports whether the window crosses midnight.
func (s Shift) Wraps() bool {
	return s.EndHour() < s.StartHour()
}

// Covers reports whether the clock time of t lies in the duty window. Both
// ends are inclusive.
func (s Shift) Covers(t time.Time) bool {
	sod := t.Hour()*3600 + t.Minute()*60 + t.Second()
	start := s.StartHour() * 3600
	end := s.EndHour() * 3600
	if !s.Wraps() {
		return start <= sod && sod <= end
	}
	return sod >= start || sod <= end
}

// EndAfter returns the first end-of-shift instant strictly after now.
func (s Shift) EndAfter(now time.Time) time.Time {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	end := midnight.Add(time.Duration(s.EndHour()) * time.Hour)
	if !end.After(now) {
		end = end.AddDate(0, 0, 1)
	}
	return end
}

func (s Shift) String() string {
	w := shiftWindows[s.Type]
	return fmt.Sprintf("%s (%02d:00-%02d:00)", w.name, w.startHour, w.endHour)
}
