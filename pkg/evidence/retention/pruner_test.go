package retention

import (
	"context"
	"fmt"
	"testing"
	"time"

	"mercator-hq/ganymede/pkg/evidence"
	"mercator-hq/ganymede/pkg/evidence/storage"
)

func seed(t *testing.T, store evidence.Storage, ages ...time.Duration) {
	t.Helper()
	now := time.Now().UTC()
	for i, age := range ages {
		record := &evidence.VerdictRecord{
			ID:         fmt.Sprintf("r%d", i),
			Stage:      "pre_return",
			Passed:     true,
			InputHash:  "x",
			OutputHash: "x",
			RecordedAt: now.Add(-age),
		}
		if err := store.Store(context.Background(), record); err != nil {
			t.Fatal(err)
		}
	}
}

func TestPruner_AgeBased(t *testing.T) {
	store := storage.NewMemoryStorage()
	seed(t, store, 40*24*time.Hour, 35*24*time.Hour, time.Hour)

	pruner := NewPruner(store, &Config{RetentionDays: 30}, nil, nil)

	deleted, err := pruner.Prune(context.Background())
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if deleted != 2 {
		t.Errorf("deleted = %d, want 2", deleted)
	}

	count, _ := store.Count(context.Background(), nil)
	if count != 1 {
		t.Errorf("remaining = %d, want 1", count)
	}
}

func TestPruner_CountBased(t *testing.T) {
	store := storage.NewMemoryStorage()
	seed(t, store, 5*time.Hour, 4*time.Hour, 3*time.Hour, 2*time.Hour, time.Hour)

	pruner := NewPruner(store, &Config{RetentionDays: 0, MaxRecords: 2}, nil, nil)

	deleted, err := pruner.Prune(context.Background())
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if deleted != 3 {
		t.Errorf("deleted = %d, want 3", deleted)
	}

	records, _ := store.Query(context.Background(), nil)
	if len(records) != 2 {
		t.Fatalf("remaining = %d, want 2", len(records))
	}
	// The newest records survive.
	if records[0].ID != "r4" || records[1].ID != "r3" {
		t.Errorf("wrong survivors: %s, %s", records[0].ID, records[1].ID)
	}
}

func TestPruner_DisabledDoesNothing(t *testing.T) {
	store := storage.NewMemoryStorage()
	seed(t, store, 400*24*time.Hour)

	pruner := NewPruner(store, &Config{RetentionDays: 0, MaxRecords: 0}, nil, nil)

	deleted, err := pruner.Prune(context.Background())
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if deleted != 0 {
		t.Errorf("deleted = %d, want 0", deleted)
	}
}

func TestScheduler_EmptyScheduleIsNoop(t *testing.T) {
	pruner := NewPruner(storage.NewMemoryStorage(), &Config{PruneSchedule: ""}, nil, nil)
	scheduler := NewScheduler(pruner)

	if err := scheduler.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	scheduler.Stop()
}

func TestScheduler_InvalidSchedule(t *testing.T) {
	pruner := NewPruner(storage.NewMemoryStorage(), &Config{PruneSchedule: "not a cron"}, nil, nil)
	scheduler := NewScheduler(pruner)

	if err := scheduler.Start(context.Background()); err == nil {
		t.Fatal("expected error for invalid schedule")
	}
}
