package store

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// fakeQuerier keeps rows in a map and answers the two statements the store issues.
type fakeQuerier struct {
	rows    map[string]Record
	execErr error
	pingErr error
	lastSQL string
}

func newFakeQuerier() *fakeQuerier {
	return &fakeQuerier{rows: map[string]Record{}}
}

func (q *fakeQuerier) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	q.lastSQL = sql
	if q.execErr != nil {
		return pgconn.CommandTag{}, q.execErr
	}
	id := args[0].(string)
	if _, ok := q.rows[id]; ok {
		return pgconn.NewCommandTag("INSERT 0 0"), nil
	}
	q.rows[id] = Record{
		ProcessID:  id,
		Transcript: args[1].(string),
		Summary:    args[2].(string),
		Language:   args[3].(string),
		CreatedAt:  args[4].(time.Time),
	}
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (q *fakeQuerier) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	q.lastSQL = sql
	rec, ok := q.rows[args[0].(string)]
	if !ok {
		return fakeRow{err: pgx.ErrNoRows}
	}
	return fakeRow{rec: rec}
}

func (q *fakeQuerier) Ping(context.Context) error { return q.pingErr }

type fakeRow struct {
	rec Record
	err error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*dest[0].(*string) = r.rec.ProcessID
	*dest[1].(*string) = r.rec.Transcript
	*dest[2].(*string) = r.rec.Summary
	*dest[3].(*string) = r.rec.Language
	*dest[4].(*time.Time) = r.rec.CreatedAt
	return nil
}

func TestPostgresPutGet(t *testing.T) {
	q := newFakeQuerier()
	s := NewPostgres(q, 0)
	ctx := context.Background()

	if err := s.Put(ctx, Record{ProcessID: "p1", Transcript: "hello", Summary: "hi", Language: "en"}); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if !strings.Contains(q.lastSQL, "ON CONFLICT (process_id) DO NOTHING") {
		t.Fatalf("insert must not overwrite: %s", q.lastSQL)
	}

	got, err := s.Get(ctx, "p1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Transcript != "hello" || got.Summary != "hi" || got.Language != "en" || got.CreatedAt.IsZero() {
		t.Fatalf("Get() = %+v", got)
	}
}

func TestPostgresWriteOnce(t *testing.T) {
	q := newFakeQuerier()
	s := NewPostgres(q, 0)
	ctx := context.Background()

	if err := s.Put(ctx, Record{ProcessID: "p1", Transcript: "first"}); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := s.Put(ctx, Record{ProcessID: "p1", Transcript: "second"}); !errors.Is(err, ErrExists) {
		t.Fatalf("second Put() error = %v, want ErrExists", err)
	}
	if q.rows["p1"].Transcript != "first" {
		t.Fatalf("record was overwritten: %+v", q.rows["p1"])
	}
}

func TestPostgresUnknownID(t *testing.T) {
	s := NewPostgres(newFakeQuerier(), 0)
	if _, err := s.Get(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestPostgresTTLOnRead(t *testing.T) {
	q := newFakeQuerier()
	s := NewPostgres(q, time.Minute)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }
	ctx := context.Background()

	if err := s.Put(ctx, Record{ProcessID: "p1", Transcript: "t"}); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	now = now.Add(59 * time.Second)
	if _, err := s.Get(ctx, "p1"); err != nil {
		t.Fatalf("fresh Get() error = %v", err)
	}
	now = now.Add(time.Second)
	if _, err := s.Get(ctx, "p1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expired Get() error = %v, want ErrNotFound", err)
	}
}

func TestPostgresBackendErrors(t *testing.T) {
	q := newFakeQuerier()
	q.execErr = errors.New("connection reset")
	q.pingErr = errors.New("connection refused")
	s := NewPostgres(q, 0)

	err := s.Put(context.Background(), Record{ProcessID: "p1"})
	if err == nil || errors.Is(err, ErrExists) {
		t.Fatalf("Put() error = %v, want wrapped backend error", err)
	}
	if err := s.Ping(context.Background()); err == nil {
		t.Fatal("Ping() should report the backend error")
	}
}

// TestPostgresIntegration runs against a real database when
// TEST_DATABASE_URL points at one with the process_records migration applied.
func TestPostgresIntegration(t *testing.T) {
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer pool.Close()

	s := NewPostgres(pool, time.Hour)
	if err := s.Ping(ctx); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}

	id := uuid.NewString()
	t.Cleanup(func() {
		pool.Exec(context.Background(), "DELETE FROM process_records WHERE process_id = $1", id)
	})
	if err := s.Put(ctx, Record{ProcessID: id, Transcript: "first"}); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := s.Put(ctx, Record{ProcessID: id, Transcript: "second"}); !errors.Is(err, ErrExists) {
		t.Fatalf("second Put() error = %v, want ErrExists", err)
	}
	got, err := s.Get(ctx, id)
	if err != nil || got.Transcript != "first" {
		t.Fatalf("Get() = %+v, %v", got, err)
	}
	if _, err := s.Get(ctx, uuid.NewString()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get(unknown) error = %v, want ErrNotFound", err)
	}
}
