package domain

import "time"

// Attachment stores metadata for an uploaded file. The file body lives
// in external storage behind the opaque StorageKey; attachments are
// linked to a request, and optionally to the timeline entry they were
// uploaded with, after those records exist.
type Attachment struct {
	ID              string
	RequestID       string
	UploaderID      string
	TimelineEntryID *string
	FileName        string
	StorageKey      string
	MimeType        string
	SizeBytes       int64
	CreatedAt       time.Time
}
