package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/themis/pkg/domain/model"
	"github.com/secmon-lab/themis/pkg/domain/types"
)

const userColumns = `id, name, email, role, active, created_at`

type userRepository struct {
	pool *pgxpool.Pool
}

func scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.Active, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) Put(ctx context.Context, u *model.User) error {
	if err := u.Validate(); err != nil {
		return goerr.Wrap(err, "invalid user")
	}

	_, err := r.pool.Exec(ctx, `INSERT INTO users (id, name, email, role, active)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name, email = EXCLUDED.email,
			role = EXCLUDED.role, active = EXCLUDED.active`,
		u.ID, u.Name, u.Email, string(u.Role), u.Active)
	if err != nil {
		return goerr.Wrap(err, "failed to upsert user", goerr.V("id", u.ID))
	}
	return nil
}

func (r *userRepository) Get(ctx context.Context, id string) (*model.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, goerr.Wrap(ErrNotFound, "user not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get user", goerr.V("id", id))
	}
	return u, nil
}

func (r *userRepository) GetMany(ctx context.Context, ids []string) (map[string]*model.User, error) {
	result := make(map[string]*model.User, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query users", goerr.V("count", len(ids)))
	}
	defer rows.Close()

	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to scan user")
		}
		result[u.ID] = u
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate users")
	}
	return result, nil
}

func (r *userRepository) ListByRole(ctx context.Context, role types.Role, includeInactive bool) ([]*model.User, error) {
	sql := `SELECT ` + userColumns + ` FROM users WHERE role = $1`
	if !includeInactive {
		sql += ` AND active`
	}
	sql += ` ORDER BY name`

	rows, err := r.pool.Query(ctx, sql, string(role))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query users", goerr.V("role", role))
	}
	defer rows.Close()

	result := []*model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to scan user")
		}
		result = append(result, u)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate users")
	}
	return result, nil
}
