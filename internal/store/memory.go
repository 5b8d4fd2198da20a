package store

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Memory is an in-process store. Entries older than the TTL are dropped on
// read and by a periodic sweep; a zero TTL keeps them for the process lifetime.
type Memory struct {
	mu      sync.RWMutex
	records map[string]Record
	ttl     time.Duration
	now     func() time.Time
}

func NewMemory(ttl time.Duration) *Memory {
	return &Memory{
		records: make(map[string]Record),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (m *Memory) Name() string { return "memory" }

func (m *Memory) Put(_ context.Context, rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = m.now()
	}
	if old, ok := m.records[rec.ProcessID]; ok && !expired(old, m.ttl, m.now()) {
		return ErrExists
	}
	m.records[rec.ProcessID] = rec
	return nil
}

func (m *Memory) Get(_ context.Context, id string) (Record, error) {
	m.mu.RLock()
	rec, ok := m.records[id]
	m.mu.RUnlock()

	if !ok {
		return Record{}, ErrNotFound
	}
	if expired(rec, m.ttl, m.now()) {
		m.mu.Lock()
		if cur, ok := m.records[id]; ok && expired(cur, m.ttl, m.now()) {
			delete(m.records, id)
		}
		m.mu.Unlock()
		return Record{}, ErrNotFound
	}
	return rec, nil
}

func (m *Memory) Ping(context.Context) error { return nil }

// Len returns the number of held records, expired ones included.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

// Sweep removes expired records and returns how many were dropped.
func (m *Memory) Sweep() int {
	if m.ttl <= 0 {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	var n int
	for id, rec := range m.records {
		if expired(rec, m.ttl, now) {
			delete(m.records, id)
			n++
		}
	}
	return n
}

// Run sweeps every interval until ctx is done. It returns immediately when
// the store has no TTL.
func (m *Memory) Run(ctx context.Context, interval time.Duration) {
	if m.ttl <= 0 {
		return
	}
	if interval <= 0 {
		interval = m.ttl
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.Sweep(); n > 0 {
				slog.Debug("swept expired process records", "count", n)
			}
		}
	}
}
