package queue_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"podforge/internal/config"
	"podforge/internal/queue"
	"podforge/internal/services"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.AudioDir = filepath.Join(base, "audio")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	return &cfg
}

func openStore(t *testing.T) *queue.Store {
	t.Helper()
	store, err := queue.Open(testConfig(t))
	if err != nil {
		t.Fatalf("queue.Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestCreateAppliesDefaults(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	job, err := store.Create(ctx, "", nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if job.ID == "" {
		t.Fatal("expected generated job id")
	}
	if job.Topic != queue.DefaultTopic {
		t.Fatalf("topic = %q, want default", job.Topic)
	}
	if job.Hosts != [2]string{queue.DefaultHostOne, queue.DefaultHostTwo} {
		t.Fatalf("hosts = %v, want defaults", job.Hosts)
	}
	if job.Status != queue.StatusQueued {
		t.Fatalf("status = %s, want queued", job.Status)
	}
	if job.Progress != 0 {
		t.Fatalf("progress = %d, want 0", job.Progress)
	}
}

func TestCreateFillsBlankHosts(t *testing.T) {
	store := openStore(t)

	job, err := store.Create(context.Background(), "AI Trends", []string{"", "Morgan"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if job.Hosts != [2]string{queue.DefaultHostOne, "Morgan"} {
		t.Fatalf("hosts = %v", job.Hosts)
	}
}

func TestCreateRejectsWrongHostCount(t *testing.T) {
	store := openStore(t)

	for _, hosts := range [][]string{{"Solo"}, {"A", "B", "C"}} {
		_, err := store.Create(context.Background(), "Topic", hosts)
		if !errors.Is(err, services.ErrValidation) {
			t.Fatalf("Create(%v) error = %v, want validation error", hosts, err)
		}
	}
}

func TestGetByIDUnknownReturnsNil(t *testing.T) {
	store := openStore(t)

	job, err := store.GetByID(context.Background(), "no-such-id")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if job != nil {
		t.Fatalf("expected nil job, got %+v", job)
	}
}

func TestListNewestFirst(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	first, err := store.Create(ctx, "first", nil)
	if err != nil {
		t.Fatalf("Create first: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	second, err := store.Create(ctx, "second", nil)
	if err != nil {
		t.Fatalf("Create second: %v", err)
	}

	jobs, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(jobs))
	}
	if jobs[0].ID != second.ID || jobs[1].ID != first.ID {
		t.Fatalf("expected newest-first ordering, got %s then %s", jobs[0].ID, jobs[1].ID)
	}
}

func TestNextQueuedIsFIFO(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	first, err := store.Create(ctx, "first", nil)
	if err != nil {
		t.Fatalf("Create first: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, err := store.Create(ctx, "second", nil); err != nil {
		t.Fatalf("Create second: %v", err)
	}

	next, err := store.NextQueued(ctx)
	if err != nil {
		t.Fatalf("NextQueued: %v", err)
	}
	if next == nil || next.ID != first.ID {
		t.Fatalf("expected first submission to dequeue first")
	}
}

func TestUpdateIsAtomicAndPersists(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	job, err := store.Create(ctx, "topic", nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	updated, err := store.Update(ctx, job.ID, func(j *queue.Job) error {
		now := time.Now().UTC()
		j.Status = queue.StatusRunning
		j.StartedAt = &now
		j.AppendUpdate("", "Starting podcast generation")
		return nil
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Status != queue.StatusRunning {
		t.Fatalf("status = %s", updated.Status)
	}

	reloaded, err := store.GetByID(ctx, job.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if reloaded.Status != queue.StatusRunning {
		t.Fatalf("persisted status = %s", reloaded.Status)
	}
	if len(reloaded.Updates) != 1 || reloaded.Updates[0].Message != "Starting podcast generation" {
		t.Fatalf("unexpected updates: %+v", reloaded.Updates)
	}
	if reloaded.StartedAt == nil {
		t.Fatal("expected started_at persisted")
	}
}

func TestUpdateMutatorErrorAborts(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	job, err := store.Create(ctx, "topic", nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	sentinel := errors.New("refuse")
	_, err = store.Update(ctx, job.ID, func(j *queue.Job) error {
		j.Status = queue.StatusFailed
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected mutator error, got %v", err)
	}

	reloaded, err := store.GetByID(ctx, job.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if reloaded.Status != queue.StatusQueued {
		t.Fatalf("aborted update should not persist, status = %s", reloaded.Status)
	}
}

func TestUpdateUnknownJob(t *testing.T) {
	store := openStore(t)

	_, err := store.Update(context.Background(), "missing", func(j *queue.Job) error { return nil })
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestRunningDerivedFromStatus(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	running, err := store.Running(ctx)
	if err != nil {
		t.Fatalf("Running: %v", err)
	}
	if running != nil {
		t.Fatalf("expected no running job, got %+v", running)
	}

	job, err := store.Create(ctx, "topic", nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := store.Update(ctx, job.ID, func(j *queue.Job) error {
		j.Status = queue.StatusRunning
		return nil
	}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	running, err = store.Running(ctx)
	if err != nil {
		t.Fatalf("Running: %v", err)
	}
	if running == nil || running.ID != job.ID {
		t.Fatal("expected running job to be derived from status")
	}
}

func TestReadsReturnIndependentSnapshots(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	job, err := store.Create(ctx, "topic", nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	before, err := store.GetByID(ctx, job.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}

	if _, err := store.Update(ctx, job.ID, func(j *queue.Job) error {
		j.Progress = 50
		j.AppendUpdate(queue.StageSummarize, "Summary ready")
		return nil
	}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	if before.Progress != 0 || len(before.Updates) != 0 {
		t.Fatal("earlier snapshot mutated by concurrent update")
	}
}

func TestStats(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := store.Create(ctx, "topic", nil); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats[queue.StatusQueued] != 3 {
		t.Fatalf("queued count = %d, want 3", stats[queue.StatusQueued])
	}
}
