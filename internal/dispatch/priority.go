package dispatch

import (
	"fmt"
	"sort"
	"strings"
)

// Priority is the graded response an incident requires.
type Priority string

const (
	PriorityImmediate   Priority = "IMMEDIATE"
	PriorityPrompt      Priority = "PROMPT"
	PriorityScheduled   Priority = "SCHEDULED"
	PriorityAppointment Priority = "APPOINTMENT"
	PriorityNoResponse  Priority = "NO_RESPONSE"
)

// priorityRank orders priorities explicitly; a higher rank is more urgent.
var priorityRank = map[Priority]int{
	PriorityImmediate:   5,
	PriorityPrompt:      4,
	PriorityScheduled:   3,
	PriorityAppointment: 2,
	PriorityNoResponse:  1,
}

// Priorities lists every priority from most to least urgent.
func Priorities() []Priority {
	out := make([]Priority, 0, len(priorityRank))
	for p := range priorityRank {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return priorityRank[out[i]] > priorityRank[out[j]] })
	return out
}

// ParsePriority resolves a priority name, ignoring case.
func ParsePriority(name string) (Priority, error) {
	p := Priority(strings.ToUpper(strings.TrimSpace(name)))
	if _, ok := priorityRank[p]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidPriority, name)
	}
	return p, nil
}

// Rank returns the urgency rank, 0 for unknown values.
func (p Priority) Rank() int {
	return priorityRank[p]
}

// Higher reports whether p is more urgent than other.
func (p Priority) Higher(other Priority) bool {
	return p.Rank() > other.Rank()
}

func (p Priority) String() string {
	return string(p)
}
