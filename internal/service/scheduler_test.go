package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type graduationRunnerFake struct {
	result  GraduationResult
	err     error
	panics  bool
	started chan struct{}
	release chan struct{}
	mu      sync.Mutex
	calls   int
}

func (f *graduationRunnerFake) Run(context.Context) (GraduationResult, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.release != nil {
		<-f.release
	}
	if f.panics {
		panic("renderer exploded")
	}
	return f.result, f.err
}

func (f *graduationRunnerFake) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type expiringListerFake struct {
	notes []ExpiringNote
	err   error
}

func (f *expiringListerFake) ListExpiringSoon(context.Context, int) ([]ExpiringNote, error) {
	return f.notes, f.err
}

func TestRunScheduledTasksSummary(t *testing.T) {
	metrics := &metricsFake{}
	runner := NewTaskRunner(
		&graduationRunnerFake{result: GraduationResult{Scanned: 4, Eligible: 2, Graduated: 2}},
		&expiringListerFake{notes: []ExpiringNote{{Content: "a"}, {Content: "b"}}},
		metrics,
		zerolog.Nop(),
	)

	summary, err := runner.RunScheduledTasks(context.Background())
	if err != nil {
		t.Fatalf("RunScheduledTasks() error = %v", err)
	}
	if summary.Graduation.Graduated != 2 || summary.ExpiringNotes != 2 || len(summary.Errors) != 0 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if metrics.started != 1 || metrics.finished != 1 || metrics.failed != 0 || metrics.graduated != 2 || metrics.expiring != 2 {
		t.Fatalf("unexpected metrics %+v", metrics)
	}
}

func TestRunScheduledTasksCollectsStepErrors(t *testing.T) {
	metrics := &metricsFake{}
	runner := NewTaskRunner(
		&graduationRunnerFake{err: errors.New("db down")},
		&expiringListerFake{notes: []ExpiringNote{{Content: "a"}}},
		metrics,
		zerolog.Nop(),
	)

	summary, err := runner.RunScheduledTasks(context.Background())
	if err != nil {
		t.Fatalf("step failures must not be returned, got %v", err)
	}
	if len(summary.Errors) != 1 || !strings.Contains(summary.Errors[0], "graduation") {
		t.Fatalf("unexpected errors %v", summary.Errors)
	}
	if summary.ExpiringNotes != 1 {
		t.Fatalf("expiring notes step must still run, got %d", summary.ExpiringNotes)
	}
	if metrics.failed != 1 {
		t.Fatalf("expected failed tick to be recorded")
	}
}

func TestRunScheduledTasksRecoversPanic(t *testing.T) {
	runner := NewTaskRunner(
		&graduationRunnerFake{panics: true},
		&expiringListerFake{},
		&metricsFake{},
		zerolog.Nop(),
	)

	summary, err := runner.RunScheduledTasks(context.Background())
	if err != nil {
		t.Fatalf("RunScheduledTasks() error = %v", err)
	}
	if len(summary.Errors) != 1 || !strings.Contains(summary.Errors[0], "panic") {
		t.Fatalf("expected recovered panic in summary, got %v", summary.Errors)
	}

	if _, err := runner.RunScheduledTasks(context.Background()); err != nil {
		t.Fatalf("lock must be released after a panic, got %v", err)
	}
}

func TestRunScheduledTasksSkipsWhileBusy(t *testing.T) {
	graduation := &graduationRunnerFake{started: make(chan struct{}), release: make(chan struct{})}
	metrics := &metricsFake{}
	runner := NewTaskRunner(graduation, &expiringListerFake{}, metrics, zerolog.Nop())

	done := make(chan error, 1)
	go func() {
		_, err := runner.RunScheduledTasks(context.Background())
		done <- err
	}()
	<-graduation.started

	if _, err := runner.RunScheduledTasks(context.Background()); !errors.Is(err, ErrTaskInProgress) {
		t.Fatalf("expected ErrTaskInProgress, got %v", err)
	}
	close(graduation.release)
	if err := <-done; err != nil {
		t.Fatalf("first tick error = %v", err)
	}

	if graduation.callCount() != 1 {
		t.Fatalf("overlapping tick must not run graduation, got %d calls", graduation.callCount())
	}
	if metrics.skipped != 1 || metrics.started != 1 {
		t.Fatalf("unexpected metrics %+v", metrics)
	}
}

func TestSchedulerRunOnStart(t *testing.T) {
	graduation := &graduationRunnerFake{started: make(chan struct{}, 1)}
	runner := NewTaskRunner(graduation, &expiringListerFake{}, &metricsFake{}, zerolog.Nop())
	scheduler := NewScheduler(runner, time.Hour, zerolog.Nop())

	if err := scheduler.Start(context.Background(), true); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	select {
	case <-graduation.started:
	case <-time.After(2 * time.Second):
		t.Fatalf("expected a tick at startup")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := scheduler.Stop(ctx); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
}

func TestSchedulerRejectsZeroInterval(t *testing.T) {
	runner := NewTaskRunner(&graduationRunnerFake{}, &expiringListerFake{}, &metricsFake{}, zerolog.Nop())
	if err := NewScheduler(runner, 0, zerolog.Nop()).Start(context.Background(), false); err == nil {
		t.Fatalf("expected error for zero interval")
	}
}

func TestSchedulerStopWaitsForStartupTick(t *testing.T) {
	graduation := &graduationRunnerFake{started: make(chan struct{}, 1), release: make(chan struct{})}
	runner := NewTaskRunner(graduation, &expiringListerFake{}, &metricsFake{}, zerolog.Nop())
	scheduler := NewScheduler(runner, time.Hour, zerolog.Nop())

	if err := scheduler.Start(context.Background(), true); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	<-graduation.started

	short, cancelShort := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancelShort()
	if err := scheduler.Stop(short); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Stop() must wait for the startup tick, got %v", err)
	}

	close(graduation.release)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := scheduler.Stop(ctx); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
}
