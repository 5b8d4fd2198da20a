package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestMemoryPutGet(t *testing.T) {
	s := NewMemory(0)
	ctx := context.Background()

	rec := Record{ProcessID: "p1", Transcript: "hello", Summary: "hi"}
	if err := s.Put(ctx, rec); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	got, err := s.Get(ctx, "p1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Transcript != "hello" || got.Summary != "hi" {
		t.Fatalf("Get() = %+v", got)
	}
	if got.CreatedAt.IsZero() {
		t.Fatal("CreatedAt should be set on Put")
	}
}

func TestMemoryWriteOnce(t *testing.T) {
	s := NewMemory(0)
	ctx := context.Background()

	if err := s.Put(ctx, Record{ProcessID: "p1", Transcript: "first"}); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := s.Put(ctx, Record{ProcessID: "p1", Transcript: "second"}); !errors.Is(err, ErrExists) {
		t.Fatalf("second Put() error = %v, want ErrExists", err)
	}
	got, _ := s.Get(ctx, "p1")
	if got.Transcript != "first" {
		t.Fatalf("record was overwritten: %+v", got)
	}
}

func TestMemoryUnknownID(t *testing.T) {
	s := NewMemory(0)
	if _, err := s.Get(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestMemoryTTL(t *testing.T) {
	s := NewMemory(time.Minute)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }
	ctx := context.Background()

	if err := s.Put(ctx, Record{ProcessID: "old"}); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	now = now.Add(30 * time.Second)
	if err := s.Put(ctx, Record{ProcessID: "new"}); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	now = now.Add(45 * time.Second)
	if _, err := s.Get(ctx, "old"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expired Get() error = %v, want ErrNotFound", err)
	}
	if _, err := s.Get(ctx, "new"); err != nil {
		t.Fatalf("fresh Get() error = %v", err)
	}
	if s.Len() != 1 {
		t.Fatalf("Len() = %d, want 1 after lazy expiry", s.Len())
	}

	now = now.Add(time.Minute)
	if n := s.Sweep(); n != 1 {
		t.Fatalf("Sweep() = %d, want 1", n)
	}
	if s.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", s.Len())
	}
}

func TestMemoryExpiredIDCanBeReused(t *testing.T) {
	s := NewMemory(time.Minute)
	now := time.Now()
	s.now = func() time.Time { return now }
	ctx := context.Background()

	s.Put(ctx, Record{ProcessID: "p", Transcript: "a"})
	now = now.Add(2 * time.Minute)
	if err := s.Put(ctx, Record{ProcessID: "p", Transcript: "b"}); err != nil {
		t.Fatalf("Put() over expired record error = %v", err)
	}
}

func TestMemoryConcurrentAccess(t *testing.T) {
	s := NewMemory(0)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("p%d", i)
			if err := s.Put(ctx, Record{ProcessID: id, Transcript: id}); err != nil {
				t.Errorf("Put(%s) error = %v", id, err)
			}
			if _, err := s.Get(ctx, id); err != nil {
				t.Errorf("Get(%s) error = %v", id, err)
			}
		}(i)
	}
	wg.Wait()

	if s.Len() != 50 {
		t.Fatalf("Len() = %d, want 50", s.Len())
	}
}

func TestMemoryRunStopsOnCancel(t *testing.T) {
	s := NewMemory(time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx, time.Millisecond)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
