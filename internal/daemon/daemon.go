package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"roster/internal/cache"
	"roster/internal/config"
	"roster/internal/journal"
	"roster/internal/logging"
	"roster/internal/notifications"
	"roster/internal/refresh"
)

// Daemon coordinates the cache, refresh services, and HTTP API, and
// enforces single-instance execution.
type Daemon struct {
	cfg         *config.Config
	logger      *slog.Logger
	store       *cache.Store
	mirror      *cache.Mirror
	journal     *journal.Journal
	coordinator *refresh.Coordinator
	scheduler   *refresh.Scheduler

	lockPath string
	lock     *flock.Flock

	api *apiServer

	running atomic.Bool
	started time.Time
	ctx     context.Context
	cancel  context.CancelFunc
}

// New constructs a daemon with initialized dependencies. The journal and
// scheduler may be nil; everything else is required.
func New(cfg *config.Config, store *cache.Store, mirror *cache.Mirror, jrnl *journal.Journal, coordinator *refresh.Coordinator, scheduler *refresh.Scheduler, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || store == nil || mirror == nil || coordinator == nil || logger == nil {
		return nil, errors.New("daemon requires config, store, mirror, coordinator, and logger")
	}

	lockPath := filepath.Join(cfg.Cache.Dir, "rosterd.lock")
	d := &Daemon{
		cfg:         cfg,
		logger:      logger,
		store:       store,
		mirror:      mirror,
		journal:     jrnl,
		coordinator: coordinator,
		scheduler:   scheduler,
		lockPath:    lockPath,
		lock:        flock.New(lockPath),
	}

	srv, err := newAPIServer(cfg, d, logger)
	if err != nil {
		return nil, err
	}
	d.api = srv
	return d, nil
}

// Start acquires the daemon lock and launches the API server and the
// refresh scheduler.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another roster daemon instance is already running")
	}

	d.ctx, d.cancel = context.WithCancel(ctx)
	if err := d.api.start(d.ctx); err != nil {
		_ = d.lock.Unlock()
		d.cancel()
		d.ctx = nil
		d.cancel = nil
		return fmt.Errorf("start api server: %w", err)
	}
	if d.scheduler != nil {
		if err := d.scheduler.Start(d.ctx); err != nil {
			d.api.stop()
			_ = d.lock.Unlock()
			d.cancel()
			d.ctx = nil
			d.cancel = nil
			return fmt.Errorf("start scheduler: %w", err)
		}
	}

	d.running.Store(true)
	d.started = time.Now()
	d.logger.Info("roster daemon started",
		logging.String("lock", d.lockPath),
		logging.String("bind", d.cfg.Server.Bind),
	)
	return nil
}

// Stop stops background services and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	if d.scheduler != nil {
		d.scheduler.Stop()
	}
	d.api.stop()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.ctx = nil
	d.running.Store(false)
	d.logger.Info("roster daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.journal != nil {
		return d.journal.Close()
	}
	return nil
}

// Running reports whether the daemon has been started.
func (d *Daemon) Running() bool {
	return d.running.Load()
}

// Addr returns the address the API server is listening on, or empty when
// the daemon is stopped.
func (d *Daemon) Addr() string {
	if d.api == nil {
		return ""
	}
	return d.api.addr()
}

// Uptime reports how long the daemon has been running, zero when stopped.
func (d *Daemon) Uptime() time.Duration {
	if !d.running.Load() || d.started.IsZero() {
		return 0
	}
	return time.Since(d.started)
}

// Refresh delegates to the refresh coordinator and waits for the outcome.
func (d *Daemon) Refresh(ctx context.Context, trigger string) refresh.Result {
	return d.coordinator.Refresh(ctx, trigger)
}

// ForceRefresh launches a forced refresh in the background and reports
// whether a new run was started, along with the current entry count. The
// caller does not wait: the outcome lands in the log, the journal, and the
// stats endpoint.
func (d *Daemon) ForceRefresh() (bool, int) {
	entries := d.store.Len()
	if d.store.Loading() {
		return false, entries
	}

	ctx := d.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	go d.coordinator.Refresh(ctx, refresh.TriggerForced)
	return true, entries
}

// History returns recent refresh journal rows, newest first.
func (d *Daemon) History(ctx context.Context, limit int) ([]journal.Entry, error) {
	if d.journal == nil {
		return nil, nil
	}
	return d.journal.Recent(ctx, limit)
}

// LastRefresh returns the most recent journal row, if any.
func (d *Daemon) LastRefresh(ctx context.Context) (*journal.Entry, error) {
	if d.journal == nil {
		return nil, nil
	}
	return d.journal.Last(ctx)
}

// TestNotification triggers a test notification using the current configuration.
func (d *Daemon) TestNotification(ctx context.Context) (bool, string, error) {
	if d.cfg == nil {
		return false, "configuration unavailable", errors.New("configuration unavailable")
	}
	if strings.TrimSpace(d.cfg.Notifications.NtfyTopic) == "" {
		return false, "ntfy topic not configured", nil
	}
	notifier := notifications.NewService(d.cfg)
	if err := notifier.TestNotification(ctx); err != nil {
		return false, "failed to send notification", err
	}
	return true, "test notification sent", nil
}
