package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/themis/pkg/domain/model"
)

type notificationRepository struct {
	pool *pgxpool.Pool
}

func insertNotifications(ctx context.Context, q querier, notifications []*model.Notification) error {
	for _, n := range notifications {
		if n.ID == "" {
			n.ID = model.NewNotificationID()
		}
		if n.CreatedAt.IsZero() {
			n.CreatedAt = time.Now().UTC()
		}
		_, err := q.Exec(ctx, `INSERT INTO notifications
			(id, recipient_id, complaint_id, title, message, type, is_read, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			n.ID.String(), n.RecipientID, n.ComplaintID, n.Title, n.Message, string(n.Type), n.IsRead, n.CreatedAt,
		)
		if err != nil {
			return goerr.Wrap(err, "failed to insert notification",
				goerr.V("recipient_id", n.RecipientID),
				goerr.V("type", n.Type))
		}
	}
	return nil
}

func (r *notificationRepository) Create(ctx context.Context, notifications ...*model.Notification) error {
	for _, n := range notifications {
		if err := n.Validate(); err != nil {
			return goerr.Wrap(err, "invalid notification")
		}
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return goerr.Wrap(err, "failed to begin transaction")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := insertNotifications(ctx, tx, notifications); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return goerr.Wrap(err, "failed to commit notifications")
	}
	return nil
}

func (r *notificationRepository) List(ctx context.Context, recipientID string, unreadOnly bool, limit int) ([]*model.Notification, error) {
	sql := `SELECT id::text, recipient_id, complaint_id, title, message, type, is_read, created_at
		FROM notifications WHERE recipient_id = $1`
	if unreadOnly {
		sql += ` AND NOT is_read`
	}
	sql += ` ORDER BY created_at DESC`
	args := []any{recipientID}
	if limit > 0 {
		sql += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query notifications", goerr.V("recipient_id", recipientID))
	}
	defer rows.Close()

	result := []*model.Notification{}
	for rows.Next() {
		var n model.Notification
		if err := rows.Scan(&n.ID, &n.RecipientID, &n.ComplaintID, &n.Title, &n.Message, &n.Type, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, goerr.Wrap(err, "failed to scan notification")
		}
		result = append(result, &n)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate notifications")
	}
	return result, nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, id model.NotificationID, recipientID string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE id::text = $1 AND recipient_id = $2`,
		id.String(), recipientID)
	if err != nil {
		return goerr.Wrap(err, "failed to mark notification read", goerr.V("id", id))
	}
	if tag.RowsAffected() == 0 {
		return goerr.Wrap(ErrNotFound, "notification not found", goerr.V("id", id))
	}
	return nil
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, recipientID string) (int, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE recipient_id = $1 AND NOT is_read`,
		recipientID)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to mark notifications read", goerr.V("recipient_id", recipientID))
	}
	return int(tag.RowsAffected()), nil
}
