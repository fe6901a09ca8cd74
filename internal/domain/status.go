package domain

// Status identifies a lifecycle state in the fixed catalog.
type Status int

const (
	StatusPending              Status = 1
	StatusInProgress           Status = 2
	StatusAnswered             Status = 3
	StatusCancelled            Status = 5
	StatusWaitingResponse      Status = 6
	StatusResolvedSuccessfully Status = 7
	StatusResolvedNegatively   Status = 8
)

type statusEntry struct {
	name     string
	terminal bool
}

// statusCatalog is defined at init and never mutated.
var statusCatalog = map[Status]statusEntry{
	StatusPending:              {name: "Pending"},
	StatusInProgress:           {name: "In Progress"},
	StatusAnswered:             {name: "Answered"},
	StatusCancelled:            {name: "Cancelled", terminal: true},
	StatusWaitingResponse:      {name: "Waiting Response"},
	StatusResolvedSuccessfully: {name: "Resolved Successfully", terminal: true},
	StatusResolvedNegatively:   {name: "Resolved Negatively", terminal: true},
}

// IsKnown reports whether the status is a catalog member.
func (s Status) IsKnown() bool {
	_, ok := statusCatalog[s]
	return ok
}

// IsTerminal reports whether the status admits no further transitions.
func (s Status) IsTerminal() bool {
	return statusCatalog[s].terminal
}

// DisplayName returns the human-readable status name.
func (s Status) DisplayName() string {
	entry, ok := statusCatalog[s]
	if !ok {
		return "Unknown"
	}
	return entry.name
}

// CanTransition reports whether a request may move from one status to
// another. Any catalog status is reachable from a non-terminal status,
// including from == to (comment-only updates); terminal statuses admit
// nothing.
func CanTransition(from, to Status) bool {
	if !from.IsKnown() || !to.IsKnown() {
		return false
	}
	return !from.IsTerminal()
}

// StatusFromFilter maps a listing filter value to a status. The second
// return is false for "all" or unrecognized values.
func StatusFromFilter(value string) (Status, bool) {
	switch value {
	case "pending":
		return StatusPending, true
	case "in_progress":
		return StatusInProgress, true
	case "answered":
		return StatusAnswered, true
	case "waiting_response":
		return StatusWaitingResponse, true
	case "resolved_successfully":
		return StatusResolvedSuccessfully, true
	case "resolved_negatively":
		return StatusResolvedNegatively, true
	case "cancelled":
		return StatusCancelled, true
	default:
		return 0, false
	}
}
