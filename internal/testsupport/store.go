package testsupport

import (
	"context"
	"testing"

	"podforge/internal/config"
	"podforge/internal/queue"
)

// MustOpenStore opens a queue.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *queue.Store {
	t.Helper()

	store, err := queue.Open(cfg)
	if err != nil {
		t.Fatalf("queue.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewJob creates a queued job for tests using the provided store.
func NewJob(t testing.TB, store *queue.Store, topic string, hosts ...string) *queue.Job {
	t.Helper()

	job, err := store.Create(context.Background(), topic, hosts)
	if err != nil {
		t.Fatalf("store.Create: %v", err)
	}
	return job
}
