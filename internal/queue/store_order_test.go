package queue

import (
	"context"
	"path/filepath"
	"testing"

	"podforge/internal/config"
)

func openOrderStore(t *testing.T) *Store {
	t.Helper()
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.AudioDir = filepath.Join(base, "audio")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	store, err := Open(&cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

// RFC 3339 drops trailing fraction zeros, so an exact-second timestamp and
// a fractional one from the same second compare wrongly as text. Ordering
// must follow insertion order regardless of the stored created_at text.
func TestOrderingIgnoresTimestampTextCollisions(t *testing.T) {
	ctx := context.Background()
	store := openOrderStore(t)

	first, err := store.Create(ctx, "First Topic", nil)
	if err != nil {
		t.Fatalf("Create first: %v", err)
	}
	second, err := store.Create(ctx, "Second Topic", nil)
	if err != nil {
		t.Fatalf("Create second: %v", err)
	}

	// "...00Z" sorts after "...00.000000001Z" lexicographically even
	// though it names the earlier instant.
	for id, stamp := range map[string]string{
		first.ID:  "2026-03-01T12:00:00Z",
		second.ID: "2026-03-01T12:00:00.000000001Z",
	} {
		if _, err := store.db.ExecContext(ctx,
			`UPDATE jobs SET created_at = ? WHERE id = ?`, stamp, id); err != nil {
			t.Fatalf("rewrite created_at: %v", err)
		}
	}

	next, err := store.NextQueued(ctx)
	if err != nil {
		t.Fatalf("NextQueued: %v", err)
	}
	if next == nil || next.ID != first.ID {
		t.Fatalf("NextQueued returned %+v, want first job %s", next, first.ID)
	}

	jobs, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(jobs) != 2 {
		t.Fatalf("List returned %d jobs", len(jobs))
	}
	if jobs[0].ID != second.ID || jobs[1].ID != first.ID {
		t.Fatalf("List order = [%s, %s], want newest first", jobs[0].ID, jobs[1].ID)
	}
}
