package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/themis/pkg/domain/interfaces"
	"github.com/secmon-lab/themis/pkg/domain/model"
	"github.com/secmon-lab/themis/pkg/domain/types"
)

const complaintColumns = `id, submitter_id, COALESCE(assignee_id, ''), COALESCE(approver_id, ''),
	title, description, category, location_detail, subcategory, floor, room,
	priority, status, COALESCE(rejection_reason, ''), COALESCE(resolution, ''),
	created_at, updated_at, approved_at, assigned_at, resolved_at, rejected_at, time_taken_hours`

type complaintRepository struct {
	pool *pgxpool.Pool
}

func scanComplaint(row pgx.Row) (*model.Complaint, error) {
	var c model.Complaint
	err := row.Scan(
		&c.ID, &c.SubmitterID, &c.AssigneeID, &c.ApproverID,
		&c.Title, &c.Description, &c.Category, &c.LocationDetail, &c.Subcategory, &c.Floor, &c.Room,
		&c.Priority, &c.Status, &c.RejectionReason, &c.Resolution,
		&c.CreatedAt, &c.UpdatedAt, &c.ApprovedAt, &c.AssignedAt, &c.ResolvedAt, &c.RejectedAt, &c.TimeTakenHours,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (r *complaintRepository) Create(ctx context.Context, c *model.Complaint) (*model.Complaint, error) {
	row := r.pool.QueryRow(ctx, `INSERT INTO complaints (
			submitter_id, assignee_id, approver_id, title, description, category, location_detail,
			subcategory, floor, room, priority, status, rejection_reason, resolution
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING `+complaintColumns,
		c.SubmitterID, nullIfEmpty(c.AssigneeID), nullIfEmpty(c.ApproverID),
		c.Title, c.Description, c.Category, c.LocationDetail,
		c.Subcategory, c.Floor, c.Room, string(c.Priority), string(c.Status),
		nullIfEmpty(c.RejectionReason), nullIfEmpty(c.Resolution),
	)

	created, err := scanComplaint(row)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to insert complaint", goerr.V("submitter_id", c.SubmitterID))
	}
	return created, nil
}

func (r *complaintRepository) Get(ctx context.Context, id int64) (*model.Complaint, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+complaintColumns+` FROM complaints WHERE id = $1`, id)
	c, err := scanComplaint(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, goerr.Wrap(ErrNotFound, "complaint not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get complaint", goerr.V("id", id))
	}
	return c, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// whereClause translates list options into a WHERE clause and its arguments
func whereClause(opts []interfaces.ListComplaintOption) (string, []any) {
	cfg := interfaces.BuildListComplaintConfig(opts...)

	var conds []string
	var args []any
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if s := cfg.Status(); s != nil {
		add("status = $%d", string(*s))
	}
	if statuses := cfg.Statuses(); len(statuses) > 0 {
		values := make([]string, len(statuses))
		for i, s := range statuses {
			values[i] = string(s)
		}
		add("status = ANY($%d)", values)
	}
	if cfg.SubmitterID() != "" {
		add("submitter_id = $%d", cfg.SubmitterID())
	}
	if cfg.AssigneeID() != "" {
		add("assignee_id = $%d", cfg.AssigneeID())
	}
	if category := strings.TrimSpace(cfg.Category()); category != "" {
		add(`category ILIKE $%d ESCAPE '\'`, likeEscaper.Replace(category)+"%")
	}
	if search := strings.TrimSpace(cfg.Search()); search != "" {
		args = append(args, "%"+likeEscaper.Replace(search)+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf(`(title ILIKE $%d ESCAPE '\' OR description ILIKE $%d ESCAPE '\')`, n, n))
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (r *complaintRepository) List(ctx context.Context, opts ...interfaces.ListComplaintOption) ([]*model.Complaint, error) {
	cfg := interfaces.BuildListComplaintConfig(opts...)
	where, args := whereClause(opts)

	sql := `SELECT ` + complaintColumns + ` FROM complaints` + where + ` ORDER BY created_at DESC, id DESC`
	if cfg.Limit() > 0 {
		args = append(args, cfg.Limit())
		sql += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if cfg.Offset() > 0 {
		args = append(args, cfg.Offset())
		sql += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query complaints")
	}
	defer rows.Close()

	result := []*model.Complaint{}
	for rows.Next() {
		c, err := scanComplaint(rows)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to scan complaint")
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate complaints")
	}
	return result, nil
}

func (r *complaintRepository) Count(ctx context.Context, opts ...interfaces.ListComplaintOption) (int, error) {
	where, args := whereClause(opts)

	var count int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM complaints`+where, args...).Scan(&count); err != nil {
		return 0, goerr.Wrap(err, "failed to count complaints")
	}
	return count, nil
}

func (r *complaintRepository) Transition(ctx context.Context, id int64, expected types.ComplaintStatus, patch *model.ComplaintPatch, notifications []*model.Notification) (*model.Complaint, error) {
	for _, n := range notifications {
		if err := n.Validate(); err != nil {
			return nil, goerr.Wrap(err, "invalid notification", goerr.V("complaint_id", id))
		}
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to begin transaction", goerr.V("id", id))
	}
	defer func() { _ = tx.Rollback(ctx) }()

	row := tx.QueryRow(ctx, `UPDATE complaints SET
			status           = COALESCE(NULLIF($3, ''), status),
			assignee_id      = COALESCE($4, assignee_id),
			approver_id      = COALESCE($5, approver_id),
			rejection_reason = COALESCE($6, rejection_reason),
			resolution       = COALESCE($7, resolution),
			approved_at      = COALESCE($8, approved_at),
			assigned_at      = COALESCE($9, assigned_at),
			resolved_at      = COALESCE($10, resolved_at),
			rejected_at      = COALESCE($11, rejected_at),
			time_taken_hours = COALESCE($12, time_taken_hours),
			updated_at       = now()
		WHERE id = $1 AND status = $2
		RETURNING `+complaintColumns,
		id, string(expected), string(patch.Status),
		patch.AssigneeID, patch.ApproverID, patch.RejectionReason, patch.Resolution,
		patch.ApprovedAt, patch.AssignedAt, patch.ResolvedAt, patch.RejectedAt, patch.TimeTakenHours,
	)

	updated, err := scanComplaint(row)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, goerr.Wrap(err, "failed to update complaint", goerr.V("id", id))
		}

		var actual string
		if err := tx.QueryRow(ctx, `SELECT status FROM complaints WHERE id = $1`, id).Scan(&actual); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, goerr.Wrap(ErrNotFound, "complaint not found", goerr.V("id", id))
			}
			return nil, goerr.Wrap(err, "failed to get complaint status", goerr.V("id", id))
		}
		return nil, goerr.Wrap(interfaces.ErrStatusMismatch, "complaint status changed",
			goerr.V("id", id),
			goerr.V("expected", expected),
			goerr.V("actual", actual))
	}

	// The UPDATE is rolled back by the deferred Rollback
	if err := updated.CheckInvariants(); err != nil {
		return nil, goerr.Wrap(interfaces.ErrInvariant, err.Error(), goerr.V("id", id))
	}

	if err := insertNotifications(ctx, tx, notifications); err != nil {
		return nil, goerr.Wrap(err, "failed to store transition notifications", goerr.V("id", id))
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, goerr.Wrap(err, "failed to commit transition", goerr.V("id", id))
	}
	return updated, nil
}
