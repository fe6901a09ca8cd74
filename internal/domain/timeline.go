package domain

import "time"

// TimelineEntry is one immutable record in a request's append-only
// history. Entries are never updated or deleted; ordered by creation
// they form a walk over the status graph, so entry n's NewStatus is
// entry n+1's PreviousStatus.
type TimelineEntry struct {
	ID             string
	RequestID      string
	ActorID        string
	PreviousStatus *Status
	NewStatus      Status
	Comment        *string
	CreatedAt      time.Time
}
