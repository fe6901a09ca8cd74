package domain

// Priority is the urgency ordinal attached to a request. Only officers
// may change it after submission.
type Priority int

const (
	PriorityLow      Priority = 1
	PriorityNormal   Priority = 2
	PriorityHigh     Priority = 3
	PriorityCritical Priority = 4
)

// DefaultPriority is assigned when the requester does not pick one.
const DefaultPriority = PriorityNormal

var priorityNames = map[Priority]string{
	PriorityLow:      "Low",
	PriorityNormal:   "Normal",
	PriorityHigh:     "High",
	PriorityCritical: "Critical",
}

// IsKnown reports whether the priority is a catalog member.
func (p Priority) IsKnown() bool {
	_, ok := priorityNames[p]
	return ok
}

// DisplayName returns the human-readable priority name.
func (p Priority) DisplayName() string {
	name, ok := priorityNames[p]
	if !ok {
		return "Unknown"
	}
	return name
}

// PriorityFromFilter maps a listing filter value to a priority.
func PriorityFromFilter(value string) (Priority, bool) {
	switch value {
	case "low":
		return PriorityLow, true
	case "normal", "medium":
		return PriorityNormal, true
	case "high":
		return PriorityHigh, true
	case "critical":
		return PriorityCritical, true
	default:
		return 0, false
	}
}
