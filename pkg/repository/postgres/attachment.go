package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/themis/pkg/domain/model"
)

type attachmentRepository struct {
	pool *pgxpool.Pool
}

func (r *attachmentRepository) Create(ctx context.Context, a *model.Attachment) (*model.Attachment, error) {
	created := *a
	if created.ID == "" {
		created.ID = model.NewAttachmentID()
	}

	err := r.pool.QueryRow(ctx, `INSERT INTO attachments
		(id, complaint_id, filename, storage_path, mime_type, size, uploader_id, is_proof_of_work)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at`,
		created.ID.String(), created.ComplaintID, created.Filename, created.StoragePath,
		created.MimeType, created.Size, created.UploaderID, created.IsProofOfWork,
	).Scan(&created.CreatedAt)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to insert attachment", goerr.V("complaint_id", created.ComplaintID))
	}
	return &created, nil
}

func (r *attachmentRepository) List(ctx context.Context, complaintID int64, proof *bool) ([]*model.Attachment, error) {
	sql := `SELECT id::text, complaint_id, filename, storage_path, mime_type, size, uploader_id, is_proof_of_work, created_at
		FROM attachments WHERE complaint_id = $1`
	args := []any{complaintID}
	if proof != nil {
		sql += ` AND is_proof_of_work = $2`
		args = append(args, *proof)
	}
	sql += ` ORDER BY created_at`

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query attachments", goerr.V("complaint_id", complaintID))
	}
	defer rows.Close()

	result := []*model.Attachment{}
	for rows.Next() {
		var a model.Attachment
		if err := rows.Scan(&a.ID, &a.ComplaintID, &a.Filename, &a.StoragePath, &a.MimeType,
			&a.Size, &a.UploaderID, &a.IsProofOfWork, &a.CreatedAt); err != nil {
			return nil, goerr.Wrap(err, "failed to scan attachment")
		}
		result = append(result, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate attachments")
	}
	return result, nil
}

func (r *attachmentRepository) Delete(ctx context.Context, id model.AttachmentID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM attachments WHERE id::text = $1`, id.String())
	if err != nil {
		return goerr.Wrap(err, "failed to delete attachment", goerr.V("id", id))
	}
	if tag.RowsAffected() == 0 {
		return goerr.Wrap(ErrNotFound, "attachment not found", goerr.V("id", id))
	}
	return nil
}
