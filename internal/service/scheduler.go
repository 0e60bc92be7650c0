package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

type GraduationRunner interface {
	Run(ctx context.Context) (GraduationResult, error)
}

type ExpiringNotesLister interface {
	ListExpiringSoon(ctx context.Context, windowHours int) ([]ExpiringNote, error)
}

type TaskMetrics interface {
	StartTick()
	FinishTick(duration time.Duration, failed bool)
	SkipTick()
	ObserveGraduation(graduated, failed int)
	SetExpiringNotes(count int)
}

// TaskRunner executes one scheduled tick. At most one tick runs at a time;
// a tick that arrives while another is in flight is skipped.
type TaskRunner struct {
	graduation GraduationRunner
	notes      ExpiringNotesLister
	metrics    TaskMetrics
	log        zerolog.Logger

	mu sync.Mutex
}

type TaskSummary struct {
	StartedAt     time.Time
	Duration      time.Duration
	Graduation    GraduationResult
	ExpiringNotes int
	Errors        []string
}

func NewTaskRunner(graduation GraduationRunner, notes ExpiringNotesLister, metrics TaskMetrics, log zerolog.Logger) *TaskRunner {
	return &TaskRunner{
		graduation: graduation,
		notes:      notes,
		metrics:    metrics,
		log:        log.With().Str("component", "scheduler").Logger(),
	}
}

// RunScheduledTasks runs graduation and then the pin expiry check. Step
// failures are logged and reported in the summary; they are not returned.
func (r *TaskRunner) RunScheduledTasks(ctx context.Context) (*TaskSummary, error) {
	if !r.mu.TryLock() {
		r.metrics.SkipTick()
		r.log.Warn().Msg("previous scheduled tick still running, skipping")
		return nil, ErrTaskInProgress
	}
	defer r.mu.Unlock()

	summary := &TaskSummary{StartedAt: time.Now()}
	r.metrics.StartTick()

	if err := r.runStep(ctx, "graduation", func(ctx context.Context) error {
		result, err := r.graduation.Run(ctx)
		summary.Graduation = result
		r.metrics.ObserveGraduation(result.Graduated, result.Failed)
		return err
	}); err != nil {
		summary.Errors = append(summary.Errors, err.Error())
	}

	if err := r.runStep(ctx, "expiring_notes", func(ctx context.Context) error {
		expiring, err := r.notes.ListExpiringSoon(ctx, 0)
		if err != nil {
			return err
		}
		summary.ExpiringNotes = len(expiring)
		r.metrics.SetExpiringNotes(len(expiring))
		for _, note := range expiring {
			r.log.Debug().
				Str("note_id", note.ID.String()).
				Str("author", note.AuthorName).
				Str("expires_in", note.ExpiresIn).
				Msg("pinned note expiring soon")
		}
		return nil
	}); err != nil {
		summary.Errors = append(summary.Errors, err.Error())
	}

	summary.Duration = time.Since(summary.StartedAt)
	r.metrics.FinishTick(summary.Duration, len(summary.Errors) > 0)

	r.log.Info().
		Int("students_scanned", summary.Graduation.Scanned).
		Int("students_graduated", summary.Graduation.Graduated).
		Int("students_failed", summary.Graduation.Failed).
		Int("notes_expiring_soon", summary.ExpiringNotes).
		Int("step_errors", len(summary.Errors)).
		Dur("duration", summary.Duration).
		Msg("scheduled tasks completed")

	return summary, nil
}

func (r *TaskRunner) runStep(ctx context.Context, name string, fn func(context.Context) error) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%s: panic: %v", name, rec)
			r.log.Error().Err(err).Str("step", name).Msg("scheduled step panicked")
		}
	}()

	if err := fn(ctx); err != nil {
		r.log.Error().Err(err).Str("step", name).Msg("scheduled step failed")
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// Scheduler drives a TaskRunner on a fixed interval.
type Scheduler struct {
	cron     *cron.Cron
	runner   *TaskRunner
	interval time.Duration
	log      zerolog.Logger

	startup sync.WaitGroup
}

func NewScheduler(runner *TaskRunner, interval time.Duration, log zerolog.Logger) *Scheduler {
	log = log.With().Str("component", "scheduler").Logger()
	return &Scheduler{
		cron:     cron.New(cron.WithChain(cron.Recover(cronLogger{log: log}))),
		runner:   runner,
		interval: interval,
		log:      log,
	}
}

func (s *Scheduler) Start(ctx context.Context, runOnStart bool) error {
	if s.interval <= 0 {
		return fmt.Errorf("scheduler interval must be positive, got %s", s.interval)
	}
	if _, err := s.cron.AddFunc("@every "+s.interval.String(), func() { s.tick(ctx) }); err != nil {
		return fmt.Errorf("register scheduled tasks: %w", err)
	}
	s.cron.Start()
	s.log.Info().Dur("interval", s.interval).Msg("scheduler started")

	if runOnStart {
		s.startup.Add(1)
		go func() {
			defer s.startup.Done()
			s.tick(ctx)
		}()
	}
	return nil
}

// Stop prevents new ticks and waits for running ones, including the startup
// tick, until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) error {
	cronDone := s.cron.Stop()
	done := make(chan struct{})
	go func() {
		<-cronDone.Done()
		s.startup.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.log.Info().Msg("scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if _, err := s.runner.RunScheduledTasks(ctx); err != nil && !errors.Is(err, ErrTaskInProgress) {
		s.log.Error().Err(err).Msg("scheduled tick failed")
	}
}

type cronLogger struct {
	log zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
