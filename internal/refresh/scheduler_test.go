package refresh

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"roster/internal/cache"
	"roster/internal/logging"
	"roster/internal/registry"
)

type fixedFetcher struct{}

func (fixedFetcher) Fetch(context.Context) ([]registry.Record, error) {
	return nil, nil
}

func TestNextRun(t *testing.T) {
	base := time.Date(2026, time.March, 10, 1, 15, 42, 0, time.Local)

	tests := []struct {
		name   string
		now    time.Time
		hour   int
		minute int
		want   time.Time
	}{
		{
			name:   "before scheduled time fires same day",
			now:    base,
			hour:   3,
			minute: 0,
			want:   time.Date(2026, time.March, 10, 3, 0, 0, 0, time.Local),
		},
		{
			name:   "after scheduled time fires next day",
			now:    time.Date(2026, time.March, 10, 4, 30, 0, 0, time.Local),
			hour:   3,
			minute: 0,
			want:   time.Date(2026, time.March, 11, 3, 0, 0, 0, time.Local),
		},
		{
			name:   "exactly at scheduled time fires next day",
			now:    time.Date(2026, time.March, 10, 3, 0, 0, 0, time.Local),
			hour:   3,
			minute: 0,
			want:   time.Date(2026, time.March, 11, 3, 0, 0, 0, time.Local),
		},
		{
			name:   "minute granularity respected",
			now:    time.Date(2026, time.March, 10, 3, 10, 0, 0, time.Local),
			hour:   3,
			minute: 30,
			want:   time.Date(2026, time.March, 10, 3, 30, 0, 0, time.Local),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := nextRun(tc.now, tc.hour, tc.minute)
			if !got.Equal(tc.want) {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestSchedulerStartStop(t *testing.T) {
	store := cache.NewStore(logging.NewNop())
	mirror := cache.NewMirror(filepath.Join(t.TempDir(), "snapshot.json"), logging.NewNop())
	coordinator := NewCoordinator(store, mirror, fixedFetcher{}, nil, nil, time.Hour, logging.NewNop())

	scheduler := NewScheduler(coordinator, 3, 0, logging.NewNop())
	if err := scheduler.Start(context.Background()); err != nil {
		t.Fatalf("start scheduler: %v", err)
	}
	if err := scheduler.Start(context.Background()); err == nil {
		t.Fatal("expected error starting scheduler twice")
	}

	scheduler.Stop()
	scheduler.Stop()

	if err := scheduler.Start(context.Background()); err != nil {
		t.Fatalf("restart scheduler: %v", err)
	}
	scheduler.Stop()
}

func TestNewSchedulerRequiresCoordinator(t *testing.T) {
	if s := NewScheduler(nil, 3, 0, logging.NewNop()); s != nil {
		t.Fatal("expected nil scheduler without coordinator")
	}
}
