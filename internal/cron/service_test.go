package cron

import (
	"context"
	"errors"
	"testing"
	"time"
)

type stubLock struct {
	acquired  bool
	acquires  int
	releases  int
	acquireEr error
}

func (s *stubLock) Acquire(_ context.Context) (bool, error) {
	s.acquires++
	return s.acquired, s.acquireEr
}

func (s *stubLock) Release(_ context.Context) error {
	s.releases++
	return nil
}

type countingJob struct {
	name string
	runs int
	err  error
}

func (j *countingJob) Name() string { return j.name }

func (j *countingJob) Run(_ context.Context) error {
	j.runs++
	return j.err
}

func TestRunCycleExecutesJobs(t *testing.T) {
	lock := &stubLock{acquired: true}
	good := &countingJob{name: "good"}
	bad := &countingJob{name: "bad", err: errors.New("boom")}
	svc, err := NewService(ServiceParams{
		Logger:   quietLogger(),
		Registry: NewRegistry(good, bad),
		Lock:     lock,
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	if err := svc.runCycle(context.Background()); err != nil {
		t.Fatalf("run cycle: %v", err)
	}
	if good.runs != 1 || bad.runs != 1 {
		t.Fatalf("expected each job to run once, got %d/%d", good.runs, bad.runs)
	}
	if lock.releases != 1 {
		t.Fatalf("expected lock release, got %d", lock.releases)
	}
}

func TestRunCycleSkipsWhenLockHeld(t *testing.T) {
	lock := &stubLock{acquired: false}
	job := &countingJob{name: "noop"}
	svc, err := NewService(ServiceParams{
		Logger:   quietLogger(),
		Registry: NewRegistry(job),
		Lock:     lock,
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	if err := svc.runCycle(context.Background()); err != nil {
		t.Fatalf("run cycle: %v", err)
	}
	if job.runs != 0 {
		t.Fatalf("expected no job runs while lock is held elsewhere")
	}
	if lock.releases != 0 {
		t.Fatalf("expected no release of an unacquired lock")
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	lock := &stubLock{acquired: true}
	svc, err := NewService(ServiceParams{
		Logger:   quietLogger(),
		Lock:     lock,
		Interval: time.Millisecond,
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := svc.Run(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestRegistrySkipsNilJobs(t *testing.T) {
	registry := NewRegistry(nil, &countingJob{name: "only"})
	if len(registry.Jobs()) != 1 {
		t.Fatalf("expected single registered job")
	}
}
