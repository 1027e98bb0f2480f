package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/themis/pkg/domain/model"
)

type commentRepository struct {
	pool *pgxpool.Pool
}

func (r *commentRepository) Create(ctx context.Context, c *model.Comment) (*model.Comment, error) {
	created := *c
	if created.ID == "" {
		created.ID = model.NewCommentID()
	}

	err := r.pool.QueryRow(ctx, `INSERT INTO comments (id, complaint_id, author_id, body)
		VALUES ($1, $2, $3, $4) RETURNING created_at`,
		string(created.ID), created.ComplaintID, created.AuthorID, created.Body,
	).Scan(&created.CreatedAt)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to insert comment", goerr.V("complaint_id", created.ComplaintID))
	}
	return &created, nil
}

func (r *commentRepository) List(ctx context.Context, complaintID int64) ([]*model.Comment, error) {
	rows, err := r.pool.Query(ctx, `SELECT id::text, complaint_id, author_id, body, created_at
		FROM comments WHERE complaint_id = $1 ORDER BY created_at, id`, complaintID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query comments", goerr.V("complaint_id", complaintID))
	}
	defer rows.Close()

	result := []*model.Comment{}
	for rows.Next() {
		var c model.Comment
		if err := rows.Scan(&c.ID, &c.ComplaintID, &c.AuthorID, &c.Body, &c.CreatedAt); err != nil {
			return nil, goerr.Wrap(err, "failed to scan comment")
		}
		result = append(result, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate comments")
	}
	return result, nil
}
