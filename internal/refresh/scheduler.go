package refresh

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"roster/internal/logging"
)

// Scheduler fires a refresh once a day at a fixed local wall-clock time.
type Scheduler struct {
	coordinator *Coordinator
	hour        int
	minute      int
	logger      *slog.Logger

	mu      sync.Mutex
	running bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewScheduler builds a scheduler for the given daily refresh time.
func NewScheduler(coordinator *Coordinator, hour, minute int, logger *slog.Logger) *Scheduler {
	if coordinator == nil {
		return nil
	}
	return &Scheduler{
		coordinator: coordinator,
		hour:        hour,
		minute:      minute,
		logger:      logging.NewComponentLogger(logger, "scheduler"),
	}
}

// Start launches the scheduling loop. It returns an error when the
// scheduler is already running.
func (s *Scheduler) Start(ctx context.Context) error {
	if s == nil {
		return errors.New("refresh scheduler unavailable")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return errors.New("refresh scheduler already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.ctx = runCtx
	s.cancel = cancel
	s.running = true

	s.wg.Add(1)
	go s.loop()
	return nil
}

// Stop cancels the scheduling loop and waits for it to exit.
func (s *Scheduler) Stop() {
	if s == nil {
		return
	}
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	cancel := s.cancel
	s.running = false
	s.cancel = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.wg.Wait()
}

func (s *Scheduler) loop() {
	defer s.wg.Done()

	for {
		next := nextRun(time.Now(), s.hour, s.minute)
		s.logger.Info("next scheduled refresh",
			logging.String("at", next.Format(time.RFC3339)),
		)

		timer := time.NewTimer(time.Until(next))
		select {
		case <-s.ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			s.coordinator.Refresh(s.ctx, TriggerScheduled)
		}
	}
}

// nextRun returns the next wall-clock occurrence of hour:minute after now.
func nextRun(now time.Time, hour, minute int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
