package jobs_test

import (
	"context"
	"sync"
	"testing"

	"clipper/internal/jobs"
)

func newStore(t *testing.T) *jobs.Store {
	t.Helper()
	store, err := jobs.Open()
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestCreateAndGet(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	job, err := store.Create(ctx, jobs.Request{
		VideoURL: "https://example.com/video.mp4",
		ShapeID:  "shape-1",
		Options:  jobs.Options{NoiseThreshold: "-25dB"},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if job.ID == "" {
		t.Fatal("expected generated job id")
	}
	if job.Stage != jobs.StagePending || job.Progress != 0 {
		t.Fatalf("new job stage=%s progress=%d, want pending/0", job.Stage, job.Progress)
	}

	fetched, err := store.GetByID(ctx, job.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if fetched == nil || fetched.ID != job.ID {
		t.Fatalf("fetched = %+v", fetched)
	}
	opts, err := fetched.DecodedOptions()
	if err != nil {
		t.Fatalf("DecodedOptions: %v", err)
	}
	if opts.NoiseThreshold != "-25dB" {
		t.Fatalf("options round trip failed: %+v", opts)
	}
}

func TestGetUnknownIDReturnsNil(t *testing.T) {
	store := newStore(t)
	job, err := store.GetByID(context.Background(), "no-such-job")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if job != nil {
		t.Fatalf("expected nil for unknown id, got %+v", job)
	}
}

func TestUpdatePersistsStageAndResult(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	job, err := store.Create(ctx, jobs.Request{VideoURL: "https://example.com/v.mp4", ShapeID: "s"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := job.Advance(jobs.StageDownloading, "Downloading video..."); err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if err := store.Update(ctx, job); err != nil {
		t.Fatalf("Update: %v", err)
	}

	fetched, err := store.GetByID(ctx, job.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if fetched.Stage != jobs.StageDownloading || fetched.Progress != 10 {
		t.Fatalf("stage=%s progress=%d after update", fetched.Stage, fetched.Progress)
	}
	if fetched.Message != "Downloading video..." {
		t.Fatalf("message = %q", fetched.Message)
	}
}

func TestConcurrentCreatesYieldDistinctIDs(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	const n = 16
	ids := make(chan string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			job, err := store.Create(ctx, jobs.Request{VideoURL: "https://example.com/v.mp4", ShapeID: "s"})
			if err != nil {
				t.Errorf("Create: %v", err)
				return
			}
			ids <- job.ID
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[string]bool)
	for id := range ids {
		if seen[id] {
			t.Fatalf("duplicate job id %s", id)
		}
		seen[id] = true
	}
	if len(seen) != n {
		t.Fatalf("expected %d distinct ids, got %d", n, len(seen))
	}
}

func TestListFiltersAndOrders(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	first, _ := store.Create(ctx, jobs.Request{VideoURL: "u1", ShapeID: "s1"})
	second, _ := store.Create(ctx, jobs.Request{VideoURL: "u2", ShapeID: "s2"})
	second.SetFailed("download refused")
	if err := store.Update(ctx, second); err != nil {
		t.Fatalf("Update: %v", err)
	}

	failed, err := store.List(ctx, jobs.StageFailed)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(failed) != 1 || failed[0].ID != second.ID {
		t.Fatalf("failed list = %+v", failed)
	}

	all, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List all: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(all))
	}
	_ = first
}

func TestHealthCounts(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	pending, _ := store.Create(ctx, jobs.Request{VideoURL: "u", ShapeID: "a"})
	active, _ := store.Create(ctx, jobs.Request{VideoURL: "u", ShapeID: "b"})
	done, _ := store.Create(ctx, jobs.Request{VideoURL: "u", ShapeID: "c"})

	_ = active.Advance(jobs.StageDownloading, "")
	if err := store.Update(ctx, active); err != nil {
		t.Fatalf("Update: %v", err)
	}
	done.SetCompleted(`{}`, "done")
	// Direct terminal write is fine for the test; the orchestrator walks stages.
	if err := store.Update(ctx, done); err != nil {
		t.Fatalf("Update: %v", err)
	}

	health, err := store.Health(ctx)
	if err != nil {
		t.Fatalf("Health: %v", err)
	}
	want := jobs.HealthSummary{Total: 3, Pending: 1, Processing: 1, Completed: 1}
	if health != want {
		t.Fatalf("health = %+v, want %+v", health, want)
	}
	_ = pending
}
