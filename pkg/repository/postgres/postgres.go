package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/themis/pkg/domain/interfaces"
)

// ErrNotFound is returned when a requested row does not exist
var ErrNotFound = interfaces.ErrNotFound

type Postgres struct {
	pool         *pgxpool.Pool
	complaint    *complaintRepository
	attachment   *attachmentRepository
	comment      *commentRepository
	notification *notificationRepository
	user         *userRepository
}

var _ interfaces.Repository = &Postgres{}

type Option func(*pgxpool.Config)

// WithMaxConns bounds the size of the connection pool
func WithMaxConns(n int32) Option {
	return func(cfg *pgxpool.Config) {
		cfg.MaxConns = n
	}
}

// WithSchema places every table in schema instead of the default search path
func WithSchema(schema string) Option {
	return func(cfg *pgxpool.Config) {
		cfg.ConnConfig.RuntimeParams["search_path"] = schema
	}
}

// New connects to dsn and returns a repository backed by PostgreSQL
func New(ctx context.Context, dsn string, opts ...Option) (*Postgres, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse postgres DSN")
	}
	cfg.MaxConnIdleTime = 5 * time.Minute
	cfg.HealthCheckPeriod = time.Minute
	cfg.ConnConfig.ConnectTimeout = 10 * time.Second
	for _, opt := range opts {
		opt(cfg)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create postgres pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, goerr.Wrap(err, "failed to connect to postgres")
	}

	return &Postgres{
		pool:         pool,
		complaint:    &complaintRepository{pool: pool},
		attachment:   &attachmentRepository{pool: pool},
		comment:      &commentRepository{pool: pool},
		notification: &notificationRepository{pool: pool},
		user:         &userRepository{pool: pool},
	}, nil
}

func (p *Postgres) Complaint() interfaces.ComplaintRepository {
	return p.complaint
}

func (p *Postgres) Attachment() interfaces.AttachmentRepository {
	return p.attachment
}

func (p *Postgres) Comment() interfaces.CommentRepository {
	return p.comment
}

func (p *Postgres) Notification() interfaces.NotificationRepository {
	return p.notification
}

func (p *Postgres) User() interfaces.UserRepository {
	return p.user
}

// Migrate creates the tables and indexes if they do not exist yet
func (p *Postgres) Migrate(ctx context.Context) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return goerr.Wrap(err, "failed to begin migration")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if schema := p.pool.Config().ConnConfig.RuntimeParams["search_path"]; schema != "" {
		if _, err := tx.Exec(ctx, "CREATE SCHEMA IF NOT EXISTS "+pgx.Identifier{schema}.Sanitize()); err != nil {
			return goerr.Wrap(err, "failed to create schema", goerr.V("schema", schema))
		}
	}

	for i, stmt := range schema {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return goerr.Wrap(err, "failed to apply schema statement", goerr.V("index", i))
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return goerr.Wrap(err, "failed to commit migration")
	}
	return nil
}

func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

// querier is satisfied by both the pool and a transaction
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}
