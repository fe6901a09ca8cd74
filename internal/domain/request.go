package domain

import "time"

// Request is the aggregate for a support request moving through the
// lifecycle. Status and AssignedOfficerID are owned by the lifecycle
// engine; callers never mutate them directly.
type Request struct {
	ID                string
	ExternalKey       string
	RequesterID       string
	UnitID            string
	CategoryID        string
	Priority          Priority
	Status            Status
	AssignedOfficerID *string
	Title             string
	Description       string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Assigned reports whether an officer currently owns the request.
func (r *Request) Assigned() bool {
	return r.AssignedOfficerID != nil
}

// AssignedTo reports whether the given officer owns the request.
func (r *Request) AssignedTo(officerID string) bool {
	return r.AssignedOfficerID != nil && *r.AssignedOfficerID == officerID
}
