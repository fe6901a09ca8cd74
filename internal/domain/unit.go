package domain

import "time"

// Unit is an organizational unit that receives requests. Officers are
// attached to units through assignments; a request always targets
// exactly one unit.
type Unit struct {
	ID          string
	Name        string
	Description string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// OfficerUnitAssignment links an officer to a unit they serve.
type OfficerUnitAssignment struct {
	ID        string
	OfficerID string
	UnitID    string
	CreatedAt time.Time
}
