package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestGetUnbound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Get(context.Background(), 42)
	if !errors.Is(err, ErrNotBound) {
		t.Fatalf("Get on empty store = %v, want ErrNotBound", err)
	}
}

func TestPutGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.Put(ctx, 42, "76561198059961776"); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, err := s.Get(ctx, 42)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != "76561198059961776" {
		t.Errorf("Get = %q, want bound player id", got)
	}
}

func TestPutReplaces(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.Put(ctx, 42, "old"); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := s.Put(ctx, 42, "new"); err != nil {
		t.Fatalf("Put replace: %v", err)
	}

	got, err := s.Get(ctx, 42)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != "new" {
		t.Errorf("Get after rebind = %q, want %q", got, "new")
	}

	n, err := s.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 1 {
		t.Errorf("Count after rebind = %d, want 1", n)
	}
}

func TestAllOrdered(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, qq := range []int64{30, 10, 20} {
		if err := s.Put(ctx, qq, "p"); err != nil {
			t.Fatalf("Put(%d): %v", qq, err)
		}
	}

	all, err := s.All(ctx)
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("All returned %d bindings, want 3", len(all))
	}
	for i, want := range []int64{10, 20, 30} {
		if all[i].QQ != want {
			t.Errorf("All[%d].QQ = %d, want %d", i, all[i].QQ, want)
		}
	}
}

func TestOpenCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "bindings.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	if err := s.Put(context.Background(), 1, "p"); err != nil {
		t.Fatalf("Put on file-backed store: %v", err)
	}
}
