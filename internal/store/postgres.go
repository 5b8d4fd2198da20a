package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is the subset of *pgxpool.Pool the store uses.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}

// Postgres keeps records in the process_records table. The TTL is applied
// when reading; rows are not deleted.
type Postgres struct {
	db  Querier
	ttl time.Duration
	now func() time.Time
}

func NewPostgres(db Querier, ttl time.Duration) *Postgres {
	return &Postgres{db: db, ttl: ttl, now: time.Now}
}

func (p *Postgres) Name() string { return "postgres" }

func (p *Postgres) Put(ctx context.Context, rec Record) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = p.now().UTC()
	}
	tag, err := p.db.Exec(ctx,
		`INSERT INTO process_records (process_id, transcript, summary, language, created_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (process_id) DO NOTHING`,
		rec.ProcessID, rec.Transcript, rec.Summary, rec.Language, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert process record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrExists
	}
	return nil
}

func (p *Postgres) Get(ctx context.Context, id string) (Record, error) {
	var rec Record
	err := p.db.QueryRow(ctx,
		`SELECT process_id, transcript, summary, language, created_at
		 FROM process_records WHERE process_id = $1`,
		id,
	).Scan(&rec.ProcessID, &rec.Transcript, &rec.Summary, &rec.Language, &rec.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("get process record: %w", err)
	}
	if expired(rec, p.ttl, p.now()) {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

func (p *Postgres) Ping(ctx context.Context) error {
	return p.db.Ping(ctx)
}
