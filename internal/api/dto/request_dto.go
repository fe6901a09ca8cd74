package dto

import (
	"time"

	"github.com/campus-desk/request-service/internal/domain"
)

// CreateRequestPayload opens a new support request.
type CreateRequestPayload struct {
	UnitID      string  `json:"unit_id"`
	CategoryID  string  `json:"category_id"`
	Priority    *string `json:"priority"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
}

// RespondPayload writes a status change with an optional comment.
type RespondPayload struct {
	Status  string  `json:"status"`
	Comment *string `json:"comment"`
}

// TransferPayload hands the assignment to another officer.
type TransferPayload struct {
	ToOfficerID string `json:"to_officer_id"`
}

// ResolvePayload closes a request with a terminal outcome.
type ResolvePayload struct {
	Outcome string `json:"outcome"`
}

// AttachmentPayload registers uploaded file metadata.
type AttachmentPayload struct {
	TimelineEntryID *string `json:"timeline_entry_id"`
	FileName        string  `json:"file_name"`
	StorageKey      string  `json:"storage_key"`
	MimeType        string  `json:"mime_type"`
	SizeBytes       int64   `json:"size_bytes"`
}

// RequestSummary is the listing view of a request.
type RequestSummary struct {
	ID                string    `json:"id"`
	ExternalKey       string    `json:"external_key"`
	RequesterID       string    `json:"requester_id"`
	UnitID            string    `json:"unit_id"`
	CategoryID        string    `json:"category_id"`
	Priority          string    `json:"priority"`
	Status            string    `json:"status"`
	AssignedOfficerID *string   `json:"assigned_officer_id,omitempty"`
	Title             string    `json:"title"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// RequestDetail adds the description to the summary view.
type RequestDetail struct {
	RequestSummary
	Description string `json:"description"`
}

// TimelineEntryResponse is one ledger record.
type TimelineEntryResponse struct {
	ID             string               `json:"id"`
	ActorID        string               `json:"actor_id"`
	PreviousStatus *string              `json:"previous_status,omitempty"`
	NewStatus      string               `json:"new_status"`
	Comment        *string              `json:"comment,omitempty"`
	CreatedAt      time.Time            `json:"created_at"`
	Attachments    []AttachmentResponse `json:"attachments,omitempty"`
}

// AttachmentResponse is the stored file metadata view.
type AttachmentResponse struct {
	ID        string    `json:"id"`
	FileName  string    `json:"file_name"`
	MimeType  string    `json:"mime_type"`
	SizeBytes int64     `json:"size_bytes"`
	CreatedAt time.Time `json:"created_at"`
}

// NewRequestSummary maps a domain request.
func NewRequestSummary(request *domain.Request) RequestSummary {
	return RequestSummary{
		ID:                request.ID,
		ExternalKey:       request.ExternalKey,
		RequesterID:       request.RequesterID,
		UnitID:            request.UnitID,
		CategoryID:        request.CategoryID,
		Priority:          request.Priority.DisplayName(),
		Status:            request.Status.DisplayName(),
		AssignedOfficerID: request.AssignedOfficerID,
		Title:             request.Title,
		CreatedAt:         request.CreatedAt,
		UpdatedAt:         request.UpdatedAt,
	}
}

// NewRequestDetail maps a domain request with its description.
func NewRequestDetail(request *domain.Request) RequestDetail {
	return RequestDetail{
		RequestSummary: NewRequestSummary(request),
		Description:    request.Description,
	}
}

// NewAttachmentResponse maps stored attachment metadata.
func NewAttachmentResponse(attachment domain.Attachment) AttachmentResponse {
	return AttachmentResponse{
		ID:        attachment.ID,
		FileName:  attachment.FileName,
		MimeType:  attachment.MimeType,
		SizeBytes: attachment.SizeBytes,
		CreatedAt: attachment.CreatedAt,
	}
}

// NewTimelineEntryResponse maps a ledger entry with its attachments.
func NewTimelineEntryResponse(entry domain.TimelineEntry, attachments []domain.Attachment) TimelineEntryResponse {
	var previous *string
	if entry.PreviousStatus != nil {
		name := entry.PreviousStatus.DisplayName()
		previous = &name
	}
	items := make([]AttachmentResponse, 0, len(attachments))
	for _, attachment := range attachments {
		items = append(items, NewAttachmentResponse(attachment))
	}
	return TimelineEntryResponse{
		ID:             entry.ID,
		ActorID:        entry.ActorID,
		PreviousStatus: previous,
		NewStatus:      entry.NewStatus.DisplayName(),
		Comment:        entry.Comment,
		CreatedAt:      entry.CreatedAt,
		Attachments:    items,
	}
}
