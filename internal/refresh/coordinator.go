package refresh

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"roster/internal/cache"
	"roster/internal/journal"
	"roster/internal/logging"
	"roster/internal/notifications"
	"roster/internal/registry"
	"roster/internal/services"
)

// Trigger names recorded in logs, the journal, and API responses.
const (
	TriggerScheduled = "scheduled"
	TriggerForced    = "forced"
	TriggerLazy      = "lazy"
)

// Skip reasons reported when a refresh request does not start a run.
const (
	SkipFresh    = "fresh"
	SkipInFlight = "already-loading"
)

// Fetcher retrieves the current register contents from upstream.
type Fetcher interface {
	Fetch(ctx context.Context) ([]registry.Record, error)
}

// Result describes the outcome of a refresh request.
type Result struct {
	Trigger    string
	Started    bool
	SkipReason string
	Entries    int
	Err        error
}

// Coordinator serializes cache refreshes. At most one refresh runs at a
// time; concurrent requests are reported as skipped rather than queued.
type Coordinator struct {
	store    *cache.Store
	mirror   *cache.Mirror
	fetcher  Fetcher
	journal  *journal.Journal
	notifier notifications.Service
	ttl      time.Duration
	logger   *slog.Logger
}

// NewCoordinator wires the refresh pipeline. The journal and notifier may
// be nil; the store, mirror, and fetcher are required.
func NewCoordinator(store *cache.Store, mirror *cache.Mirror, fetcher Fetcher, jrnl *journal.Journal, notifier notifications.Service, ttl time.Duration, logger *slog.Logger) *Coordinator {
	return &Coordinator{
		store:    store,
		mirror:   mirror,
		fetcher:  fetcher,
		journal:  jrnl,
		notifier: notifier,
		ttl:      ttl,
		logger:   logging.NewComponentLogger(logger, "refresh"),
	}
}

// Refresh fetches a new register snapshot and installs it. Non-forced
// triggers are skipped while the cached snapshot is younger than the TTL.
// A failed run leaves the previous snapshot in place.
func (c *Coordinator) Refresh(ctx context.Context, trigger string) Result {
	if trigger != TriggerForced {
		if last := c.store.LastUpdate(); !last.IsZero() && time.Since(last) < c.ttl {
			c.logger.Debug("refresh skipped; cache still fresh",
				logging.String(logging.FieldTrigger, trigger),
				logging.Duration("age", time.Since(last)),
			)
			return Result{Trigger: trigger, SkipReason: SkipFresh}
		}
	}

	if !c.store.BeginLoading() {
		c.logger.Debug("refresh skipped; another refresh is running",
			logging.String(logging.FieldTrigger, trigger),
		)
		return Result{Trigger: trigger, SkipReason: SkipInFlight}
	}
	defer c.store.EndLoading()

	refreshID := uuid.NewString()
	ctx = services.WithRefreshID(ctx, refreshID)
	ctx = services.WithTrigger(ctx, trigger)
	log := logging.WithContext(ctx, c.logger)

	started := time.Now()
	log.Info("refreshing register cache")

	records, err := c.fetcher.Fetch(ctx)
	if err != nil {
		return c.fail(ctx, trigger, refreshID, started, err)
	}

	snapshot := registry.NewSnapshot(records, time.Now().UTC())
	c.store.Install(snapshot)

	if err := c.mirror.Save(snapshot); err != nil {
		logging.WarnWithContext(log, "snapshot save failed; cache starts empty after a restart", "snapshot_save_failed",
			logging.Error(err),
			logging.String("path", c.mirror.Path()),
		)
	}

	finished := time.Now()
	c.record(ctx, journal.Entry{
		ID:         refreshID,
		Trigger:    trigger,
		StartedAt:  started,
		FinishedAt: finished,
		Outcome:    journal.OutcomeSuccess,
		Entries:    snapshot.Len(),
	})

	if c.notifier != nil {
		if err := c.notifier.NotifyRefreshCompleted(ctx, trigger, snapshot.Len(), finished.Sub(started)); err != nil {
			log.Warn("refresh completion notification failed", logging.Error(err))
		}
	}

	log.Info("register cache refreshed",
		logging.Int("entries", snapshot.Len()),
		logging.Duration("elapsed", finished.Sub(started)),
	)
	return Result{Trigger: trigger, Started: true, Entries: snapshot.Len()}
}

func (c *Coordinator) fail(ctx context.Context, trigger, refreshID string, started time.Time, err error) Result {
	log := logging.WithContext(ctx, c.logger)

	attrs := []logging.Attr{
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "check upstream availability and credentials"),
	}
	if trigger == TriggerScheduled {
		attrs = append(attrs, logging.Alert("refresh_failed"))
	}
	logging.ErrorWithContext(log, "register refresh failed; serving previous snapshot", "refresh_failed", attrs...)

	c.record(ctx, journal.Entry{
		ID:         refreshID,
		Trigger:    trigger,
		StartedAt:  started,
		FinishedAt: time.Now(),
		Outcome:    journal.OutcomeFailure,
		Entries:    c.store.Len(),
		Error:      err.Error(),
	})

	if c.notifier != nil {
		if notifyErr := c.notifier.NotifyRefreshFailed(ctx, trigger, err); notifyErr != nil {
			log.Warn("refresh failure notification failed", logging.Error(notifyErr))
		}
	}

	return Result{Trigger: trigger, Started: true, Err: err}
}

func (c *Coordinator) record(ctx context.Context, entry journal.Entry) {
	if c.journal == nil {
		return
	}
	if err := c.journal.Record(ctx, entry); err != nil {
		logging.WithContext(ctx, c.logger).Warn("journal write failed", logging.Error(err))
	}
}
