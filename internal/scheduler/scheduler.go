package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"rental-portal/internal/cleanup"
	"rental-portal/internal/config"
	"rental-portal/internal/geocode"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// ErrAlreadyRunning is returned when a job is triggered while it runs
var ErrAlreadyRunning = errors.New("job is already running")

const jobTimeout = 30 * time.Minute

// Backfiller fills in missing property coordinates
type Backfiller interface {
	Backfill(ctx context.Context) (*geocode.BackfillResult, error)
}

// Sweeper removes orphan photo directories
type Sweeper interface {
	Sweep(ctx context.Context, cfg cleanup.CleanupConfig) (*cleanup.CleanupResult, error)
}

// Scheduler runs the nightly maintenance jobs
type Scheduler struct {
	cron       *cron.Cron
	config     config.SchedulerConfig
	backfiller Backfiller
	sweeper    Sweeper
	log        *zap.Logger

	mu        sync.Mutex
	running   map[string]bool
	isRunning bool
}

// NewScheduler creates a new scheduler. backfiller or sweeper may be nil
// to leave that job out
func NewScheduler(cfg config.SchedulerConfig, backfiller Backfiller, sweeper Sweeper, log *zap.Logger) (*Scheduler, error) {
	if log == nil {
		log = zap.NewNop()
	}
	loc := time.Local
	if cfg.Timezone != "" {
		l, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			return nil, fmt.Errorf("invalid scheduler timezone %q: %w", cfg.Timezone, err)
		}
		loc = l
	}
	return &Scheduler{
		cron:       cron.New(cron.WithLocation(loc)),
		config:     cfg,
		backfiller: backfiller,
		sweeper:    sweeper,
		log:        log,
		running:    make(map[string]bool),
	}, nil
}

// Start registers the enabled jobs and starts the cron loop
func (s *Scheduler) Start() error {
	jobs := 0
	if s.config.GeocodeEnabled && s.backfiller != nil {
		if err := s.add("geocode", s.config.GeocodeTime, func(ctx context.Context) error {
			_, err := s.RunGeocodeNow(ctx)
			return err
		}); err != nil {
			return err
		}
		jobs++
	}
	if s.config.SweepEnabled && s.sweeper != nil {
		if err := s.add("sweep", s.config.SweepTime, func(ctx context.Context) error {
			cfg := cleanup.DefaultCleanupConfig()
			cfg.DryRun = s.config.SweepDryRun
			_, err := s.RunSweepNow(ctx, cfg)
			return err
		}); err != nil {
			return err
		}
		jobs++
	}
	if jobs == 0 {
		s.log.Info("Scheduler: no jobs enabled")
		return nil
	}

	s.cron.Start()
	s.isRunning = true
	return nil
}

func (s *Scheduler) add(name, at string, run func(ctx context.Context) error) error {
	spec := s.parseDailyRunTime(at)
	_, err := s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		s.log.Info("Scheduler: starting job", zap.String("job", name))
		if err := run(ctx); err != nil {
			s.log.Error("Scheduler: job failed", zap.String("job", name), zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("schedule %s: %w", name, err)
	}
	s.log.Info("Scheduler: job registered", zap.String("job", name), zap.String("at", at), zap.String("cron", spec))
	return nil
}

// Stop stops the scheduler and waits for running jobs
func (s *Scheduler) Stop() {
	if s.isRunning {
		<-s.cron.Stop().Done()
		s.isRunning = false
		s.log.Info("Scheduler: stopped")
	}
}

func (s *Scheduler) acquire(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running[name] {
		return false
	}
	s.running[name] = true
	return true
}

func (s *Scheduler) release(name string) {
	s.mu.Lock()
	delete(s.running, name)
	s.mu.Unlock()
}

// RunGeocodeNow runs the coordinate backfill immediately
func (s *Scheduler) RunGeocodeNow(ctx context.Context) (*geocode.BackfillResult, error) {
	if s.backfiller == nil {
		return nil, errors.New("geocoding is not configured")
	}
	if !s.acquire("geocode") {
		return nil, ErrAlreadyRunning
	}
	defer s.release("geocode")
	return s.backfiller.Backfill(ctx)
}

// RunSweepNow runs the orphan photo sweep immediately
func (s *Scheduler) RunSweepNow(ctx context.Context, cfg cleanup.CleanupConfig) (*cleanup.CleanupResult, error) {
	if s.sweeper == nil {
		return nil, errors.New("photo sweep is not configured")
	}
	if !s.acquire("sweep") {
		return nil, ErrAlreadyRunning
	}
	defer s.release("sweep")
	return s.sweeper.Sweep(ctx, cfg)
}

// parseDailyRunTime converts HH:MM format to cron specification
// Example: "02:00" -> "0 2 * * *"
func (s *Scheduler) parseDailyRunTime(timeStr string) string {
	var hour, minute int
	n, _ := fmt.Sscanf(timeStr, "%d:%d", &hour, &minute)
	if n == 2 && hour >= 0 && hour < 24 && minute >= 0 && minute < 60 {
		return fmt.Sprintf("%d %d * * *", minute, hour)
	}

	s.log.Warn("Scheduler: failed to parse time, using default 02:00", zap.String("time", timeStr))
	return "0 2 * * *"
}
