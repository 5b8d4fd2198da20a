// Package store keeps the result of each completed job, keyed by process id.
package store

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("process record not found")
	ErrExists   = errors.New("process record already exists")
)

// Record is the stored outcome of one job. Records are written once and
// never updated.
type Record struct {
	ProcessID  string    `json:"process_id"`
	Transcript string    `json:"transcript"`
	Summary    string    `json:"summary"`
	Language   string    `json:"language,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Store is safe for concurrent use.
type Store interface {
	// Put saves rec. It returns ErrExists if the id is already taken.
	Put(ctx context.Context, rec Record) error
	// Get returns ErrNotFound for unknown and expired ids.
	Get(ctx context.Context, id string) (Record, error)
	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error
	Name() string
}

func expired(rec Record, ttl time.Duration, now time.Time) bool {
	return ttl > 0 && now.Sub(rec.CreatedAt) >= ttl
}
