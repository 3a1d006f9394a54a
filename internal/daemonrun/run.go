// Package daemonrun wires the daemon process runtime: logging, the
// persisted snapshot, the refresh pipeline, and signal handling.
package daemonrun

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"roster/internal/cache"
	"roster/internal/config"
	"roster/internal/daemon"
	"roster/internal/journal"
	"roster/internal/logging"
	"roster/internal/notifications"
	"roster/internal/refresh"
	"roster/internal/services"
	"roster/internal/services/register"
)

// Options configures daemon process runtime behavior.
type Options struct {
	LogLevel    string
	Development bool
}

// Run starts the roster daemon runtime loop and blocks until SIGINT or
// SIGTERM arrives.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("prepare directories: %w", err)
	}

	runID := time.Now().UTC().Format("20060102T150405.000Z")
	logPath := filepath.Join(cfg.LogDir(), fmt.Sprintf("roster-%s.log", runID))

	level := opts.LogLevel
	if level == "" {
		level = cfg.Logging.Level
	}
	logger, err := logging.New(logging.Options{
		Level:            level,
		Format:           cfg.Logging.Format,
		OutputPaths:      []string{"stdout", logPath},
		ErrorOutputPaths: []string{"stderr", logPath},
		Development:      opts.Development,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	if err := ensureCurrentLogPointer(cfg.LogDir(), logPath); err != nil {
		fmt.Fprintf(os.Stderr, "warn: unable to update roster.log link: %v\n", err)
	}
	logging.CleanupOldLogs(logger, cfg.Logging.RetentionDays,
		logging.RetentionTarget{Dir: cfg.LogDir(), Pattern: "roster-*.log", Exclude: []string{logPath}},
	)

	pidPath := filepath.Join(cfg.Cache.Dir, "rosterd.pid")
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	store := cache.NewStore(logger)
	mirror := cache.NewMirror(cfg.SnapshotPath(), logger)
	restoreSnapshot(store, mirror, logger)

	jrnl, err := journal.Open(cfg.JournalPath())
	if err != nil {
		logger.Error("open refresh journal", logging.Error(err))
		return err
	}
	defer jrnl.Close()

	notifier := notifications.NewService(cfg)
	source := register.NewSource(register.NewClient(cfg, nil, logger))
	coordinator := refresh.NewCoordinator(store, mirror, source, jrnl, notifier, cfg.CacheTTL(), logger)

	hour, minute, err := cfg.RefreshClock()
	if err != nil {
		return fmt.Errorf("parse refresh time: %w", err)
	}
	scheduler := refresh.NewScheduler(coordinator, hour, minute, logger)

	d, err := daemon.New(cfg, store, mirror, jrnl, coordinator, scheduler, logger)
	if err != nil {
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()

	// A lookup daemon that cannot bind its API serves nothing, so a start
	// failure is fatal rather than a warning.
	if err := d.Start(signalCtx); err != nil {
		return fmt.Errorf("start daemon: %w", err)
	}

	<-signalCtx.Done()
	logger.Info("roster daemon shutting down")
	return nil
}

// restoreSnapshot loads the persisted snapshot so a restarted process
// serves the last known data immediately.
func restoreSnapshot(store *cache.Store, mirror *cache.Mirror, logger *slog.Logger) {
	snap, err := mirror.Load()
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			logger.Info("no persisted snapshot; cache starts empty")
			return
		}
		logger.Warn("persisted snapshot unreadable; cache starts empty", logging.Error(err))
		return
	}
	store.Install(snap)
	logger.Info("persisted snapshot restored",
		logging.Int("entries", snap.Len()),
		logging.String("fetched_at", snap.FetchedAt.UTC().Format(time.RFC3339)),
	)
}

func ensureCurrentLogPointer(logDir, target string) error {
	if logDir == "" || target == "" {
		return nil
	}
	current := filepath.Join(logDir, "roster.log")
	if err := os.Remove(current); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing log pointer: %w", err)
	}
	if err := os.Symlink(target, current); err == nil {
		return nil
	}
	if err := os.Link(target, current); err != nil {
		return fmt.Errorf("link log pointer: %w", err)
	}
	return nil
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}
