package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// tickInterval is how often the scheduler checks whether the
// configured sweep time has been reached
const tickInterval = time.Minute

// ErrInvalidSchedule is returned when the cron expression cannot be
// reduced to a daily hour and minute.
var ErrInvalidSchedule = errors.New("invalid sweep schedule")

// OverdueSweeper marks unpaid bills past their due date as overdue
// and reports how many bills were transitioned.
type OverdueSweeper interface {
	SweepOverdueBills(ctx context.Context, now time.Time) (int, error)
}

// Config holds the sweep scheduler settings
type Config struct {
	Enabled    bool
	Schedule   string // "minute hour * * *", daily
	JobTimeout time.Duration
}

// OverdueSweepScheduler runs the overdue sweep once a day at the
// configured local time. A minute ticker drives it; the sweep fires
// when the wall clock crosses the scheduled hour and minute, at most
// once per calendar day.
type OverdueSweepScheduler struct {
	config Config
	hour   int
	minute int

	sweeper OverdueSweeper
	logger  *zap.Logger
	clock   func() time.Time

	mu        sync.Mutex
	running   bool
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	lastRunAt time.Time
}

// NewOverdueSweepScheduler creates a scheduler for the given sweeper
func NewOverdueSweepScheduler(config Config, sweeper OverdueSweeper, logger *zap.Logger) (*OverdueSweepScheduler, error) {
	hour, minute, err := parseDailySchedule(config.Schedule)
	if err != nil {
		return nil, err
	}
	if config.JobTimeout <= 0 {
		config.JobTimeout = 10 * time.Minute
	}

	return &OverdueSweepScheduler{
		config:  config,
		hour:    hour,
		minute:  minute,
		sweeper: sweeper,
		logger:  logger,
		clock:   time.Now,
	}, nil
}

// parseDailySchedule extracts hour and minute from a five-field cron
// expression whose day, month and weekday fields are "*"
func parseDailySchedule(expr string) (hour, minute int, err error) {
	fields := strings.Fields(expr)
	if len(fields) != 5 {
		return 0, 0, fmt.Errorf("%w: want 5 fields, got %d", ErrInvalidSchedule, len(fields))
	}
	for _, f := range fields[2:] {
		if f != "*" {
			return 0, 0, fmt.Errorf("%w: only daily schedules are supported", ErrInvalidSchedule)
		}
	}

	minute, err = strconv.Atoi(fields[0])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("%w: minute %q", ErrInvalidSchedule, fields[0])
	}
	hour, err = strconv.Atoi(fields[1])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("%w: hour %q", ErrInvalidSchedule, fields[1])
	}
	return hour, minute, nil
}

// Start begins the ticker loop. A disabled scheduler starts as a no-op
// so callers do not have to special-case it.
func (s *OverdueSweepScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}
	if !s.config.Enabled {
		s.logger.Info("overdue sweep scheduler disabled")
		return nil
	}
	s.running = true

	ctx, s.cancel = context.WithCancel(ctx)
	s.wg.Add(1)
	go s.loop(ctx)

	s.logger.Info("overdue sweep scheduler started",
		zap.Int("hour", s.hour),
		zap.Int("minute", s.minute))
	return nil
}

// Stop cancels the loop and waits for an in-progress sweep
func (s *OverdueSweepScheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	cancel := s.cancel
	s.mu.Unlock()

	cancel()
	s.wg.Wait()
	s.logger.Info("overdue sweep scheduler stopped")
}

func (s *OverdueSweepScheduler) loop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if s.due(s.clock()) {
				s.runSweep(ctx)
			}
		}
	}
}

// due reports whether the scheduled time has passed today and no
// sweep has run yet this calendar day
func (s *OverdueSweepScheduler) due(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	scheduled := time.Date(now.Year(), now.Month(), now.Day(), s.hour, s.minute, 0, 0, now.Location())
	if now.Before(scheduled) {
		return false
	}

	last := s.lastRunAt
	if !last.IsZero() &&
		last.Year() == now.Year() && last.YearDay() == now.YearDay() {
		return false
	}

	s.lastRunAt = now
	return true
}

// RunNow triggers a sweep immediately, outside the daily schedule
func (s *OverdueSweepScheduler) RunNow(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.config.JobTimeout)
	defer cancel()

	return s.sweeper.SweepOverdueBills(ctx, s.clock())
}

func (s *OverdueSweepScheduler) runSweep(ctx context.Context) {
	start := s.clock()
	count, err := s.RunNow(ctx)
	if err != nil {
		s.logger.Error("overdue sweep failed",
			zap.Duration("elapsed", s.clock().Sub(start)),
			zap.Error(err))
		return
	}

	s.logger.Info("overdue sweep completed",
		zap.Int("bills_marked_overdue", count),
		zap.Duration("elapsed", s.clock().Sub(start)))
}
