package events

import (
	"time"

	"github.com/campus-desk/request-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventRequestCreated       EventType = "request_created"
	EventRequestStatusChanged EventType = "request_status_changed"
	EventOwnershipClaimed     EventType = "ownership_claimed"
	EventOwnershipTransferred EventType = "ownership_transferred"
	EventRequestResolved      EventType = "request_resolved"
	EventRequestCancelled     EventType = "request_cancelled"
)

// Event represents a lifecycle event emitted after a committed transition.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	RequestID string      `json:"request_id"`
	ActorID   string      `json:"actor_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// RequestCreatedPayload payload.
type RequestCreatedPayload struct {
	UnitID     string          `json:"unit_id"`
	CategoryID string          `json:"category_id"`
	Priority   domain.Priority `json:"priority"`
	Title      string          `json:"title"`
}

// StatusChangedPayload payload.
type StatusChangedPayload struct {
	PreviousStatus domain.Status `json:"previous_status"`
	NewStatus      domain.Status `json:"new_status"`
	Comment        string        `json:"comment,omitempty"`
}

// OwnershipClaimedPayload payload.
type OwnershipClaimedPayload struct {
	OfficerID       string  `json:"officer_id"`
	PreviousOfficer *string `json:"previous_officer,omitempty"`
}

// OwnershipTransferredPayload payload.
type OwnershipTransferredPayload struct {
	FromOfficerID string `json:"from_officer_id"`
	ToOfficerID   string `json:"to_officer_id"`
}

// RequestResolvedPayload payload.
type RequestResolvedPayload struct {
	Outcome domain.Status `json:"outcome"`
}
