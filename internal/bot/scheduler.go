package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/jonboulle/clockwork"

	"github.com/edgard/guardbot/internal/bot/tasks"
	"github.com/edgard/guardbot/internal/config"
)

// ErrSchedulerRunning is returned by Start when the scheduler already runs.
var ErrSchedulerRunning = errors.New("scheduler is already running")

// Scheduler runs the recurring maintenance tasks and the one-shot deferred
// jobs (warning cleanup) on a single gocron scheduler.
type Scheduler struct {
	scheduler gocron.Scheduler
	clock     clockwork.Clock
	logger    *slog.Logger
	cfg       *config.SchedulerConfig
	taskMap   map[string]tasks.ScheduledTaskFunc
	mu        sync.Mutex
	running   bool
}

// NewScheduler creates a scheduler driven by clock. Passing nil uses the
// real clock.
func NewScheduler(logger *slog.Logger, cfg *config.SchedulerConfig, taskMap map[string]tasks.ScheduledTaskFunc, clock clockwork.Clock) (*Scheduler, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	log := logger.With("component", "scheduler")
	s, err := gocron.NewScheduler(
		gocron.WithClock(clock),
		gocron.WithStopTimeout(stopTimeout(cfg)),
		gocron.WithLogger(gocronLogger{inner: log}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}

	return &Scheduler{
		scheduler: s,
		clock:     clock,
		logger:    log,
		cfg:       cfg,
		taskMap:   taskMap,
	}, nil
}

// gocronLogger routes gocron's internal logging to slog. gocron logs every
// job run at INFO, which is demoted to DEBUG here.
type gocronLogger struct {
	inner *slog.Logger
}

func (l gocronLogger) Debug(msg string, args ...any) { l.inner.Debug(msg, args...) }
func (l gocronLogger) Info(msg string, args ...any)  { l.inner.Debug(msg, args...) }
func (l gocronLogger) Warn(msg string, args ...any)  { l.inner.Warn(msg, args...) }
func (l gocronLogger) Error(msg string, args ...any) { l.inner.Error(msg, args...) }

func stopTimeout(cfg *config.SchedulerConfig) time.Duration {
	if cfg == nil || cfg.JobTimeout <= 0 {
		return config.DefaultJobTimeout
	}
	return cfg.JobTimeout
}

// Start schedules every enabled task and starts ticking.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return ErrSchedulerRunning
	}

	s.logger.Debug("Configuring scheduler jobs...")

	scheduledCount := 0
	if s.cfg == nil || len(s.cfg.Tasks) == 0 {
		s.logger.Warn("No scheduler tasks configured.")
	} else {
		for taskName, taskConfig := range s.cfg.Tasks {
			if !taskConfig.Enabled {
				s.logger.Info("Skipping disabled task", "task_name", taskName)
				continue
			}

			taskFunc, exists := s.taskMap[taskName]
			if !exists {
				s.logger.Warn("Scheduled task configured but not found in registry, skipping", "task_name", taskName)
				continue
			}

			_, err := s.scheduler.NewJob(
				gocron.CronJob(taskConfig.Schedule, true),
				gocron.NewTask(s.runTask, taskName, taskFunc),
				gocron.WithName(taskName),
				gocron.WithSingletonMode(gocron.LimitModeReschedule),
			)
			if err != nil {
				s.logger.Error("Failed to schedule task", "task_name", taskName, "schedule", taskConfig.Schedule, "error", err)
				continue
			}

			s.logger.Info("Scheduled task", "task_name", taskName, "schedule", taskConfig.Schedule)
			scheduledCount++
		}
	}

	s.scheduler.Start()
	s.running = true
	s.logger.Info("Scheduler started", "tasks_scheduled", scheduledCount)

	return nil
}

func (s *Scheduler) runTask(name string, taskFunc tasks.ScheduledTaskFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout(s.cfg))
	defer cancel()

	s.logger.Info("Running scheduled task", "task_name", name)
	startTime := s.clock.Now()
	if err := taskFunc(ctx); err != nil {
		s.logger.Error("Scheduled task failed", "task_name", name, "error", err)
	}
	s.logger.Info("Finished scheduled task", "task_name", name, "duration", s.clock.Since(startTime))
}

// Defer runs fn once, delay from now. The job removes itself after it runs.
// Jobs deferred before Start run once the scheduler starts.
func (s *Scheduler) Defer(name string, delay time.Duration, fn func(ctx context.Context)) error {
	_, err := s.scheduler.NewJob(
		gocron.OneTimeJob(gocron.OneTimeJobStartDateTime(s.clock.Now().Add(delay))),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), stopTimeout(s.cfg))
			defer cancel()
			fn(ctx)
		}),
		gocron.WithName(name),
		gocron.WithLimitedRuns(1),
	)
	if err != nil {
		return fmt.Errorf("failed to defer job %q: %w", name, err)
	}

	s.logger.Debug("Deferred job", "job_name", name, "delay", delay)
	return nil
}

// Stop shuts the scheduler down, waiting for running jobs up to the job
// timeout. Deferred jobs that have not fired yet are dropped.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		s.logger.Info("Scheduler is not running, nothing to stop.")
		return nil
	}

	s.logger.Debug("Stopping scheduler gracefully (waiting for jobs)...")
	err := s.scheduler.Shutdown()
	if err != nil {
		s.logger.Error("Error during scheduler shutdown", "error", err)
	} else {
		s.logger.Info("Scheduler stopped gracefully.")
	}

	s.running = false
	return err
}
