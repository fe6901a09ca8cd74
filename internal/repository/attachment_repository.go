package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campus-desk/request-service/internal/domain"
)

// AttachmentRepository stores file metadata. Attachments are linked to
// a request, and optionally to the timeline entry they arrived with,
// after those records exist.
type AttachmentRepository interface {
	Create(ctx context.Context, attachment *domain.Attachment) error
	ListByRequest(ctx context.Context, requestID string) ([]domain.Attachment, error)
	ListByTimelineEntry(ctx context.Context, entryID string) ([]domain.Attachment, error)
}

type attachmentRepository struct {
	pool *pgxpool.Pool
}

// NewAttachmentRepository instantiates the repository.
func NewAttachmentRepository(pool *pgxpool.Pool) AttachmentRepository {
	return &attachmentRepository{pool: pool}
}

func (r *attachmentRepository) Create(ctx context.Context, attachment *domain.Attachment) error {
	const query = `
        INSERT INTO attachments (request_id, uploader_id, timeline_entry_id, file_name, storage_key, mime_type, size_bytes)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		attachment.RequestID,
		attachment.UploaderID,
		attachment.TimelineEntryID,
		attachment.FileName,
		attachment.StorageKey,
		attachment.MimeType,
		attachment.SizeBytes,
	).Scan(&attachment.ID, &attachment.CreatedAt)
}

func (r *attachmentRepository) ListByRequest(ctx context.Context, requestID string) ([]domain.Attachment, error) {
	const query = `
        SELECT id, request_id, uploader_id, timeline_entry_id, file_name, storage_key, mime_type, size_bytes, created_at
        FROM attachments WHERE request_id=$1 ORDER BY created_at ASC`
	return r.list(ctx, query, requestID)
}

func (r *attachmentRepository) ListByTimelineEntry(ctx context.Context, entryID string) ([]domain.Attachment, error) {
	const query = `
        SELECT id, request_id, uploader_id, timeline_entry_id, file_name, storage_key, mime_type, size_bytes, created_at
        FROM attachments WHERE timeline_entry_id=$1 ORDER BY created_at ASC`
	return r.list(ctx, query, entryID)
}

func (r *attachmentRepository) list(ctx context.Context, query string, arg any) ([]domain.Attachment, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAttachments(rows)
}

func scanAttachments(rows pgx.Rows) ([]domain.Attachment, error) {
	var result []domain.Attachment
	for rows.Next() {
		var attachment domain.Attachment
		if err := rows.Scan(
			&attachment.ID,
			&attachment.RequestID,
			&attachment.UploaderID,
			&attachment.TimelineEntryID,
			&attachment.FileName,
			&attachment.StorageKey,
			&attachment.MimeType,
			&attachment.SizeBytes,
			&attachment.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, attachment)
	}
	return result, rows.Err()
}
