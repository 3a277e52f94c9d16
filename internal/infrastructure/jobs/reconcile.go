// Package jobs runs background maintenance on a cron schedule.
package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"nutriflow/pkg/logger"
)

// ChatReconciler repairs chat summaries. usecase.Synchronizer implements it.
type ChatReconciler interface {
	ReconcileAll(ctx context.Context) (int, error)
}

type ReconcileJob struct {
	reconciler ChatReconciler
	timeout    time.Duration
	// running guards against overlapping runs on short schedules.
	running sync.Mutex
}

func NewReconcileJob(reconciler ChatReconciler, timeout time.Duration) *ReconcileJob {
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &ReconcileJob{
		reconciler: reconciler,
		timeout:    timeout,
	}
}

// Run performs one pass. A pass that starts while another is still going is
// skipped.
func (j *ReconcileJob) Run(ctx context.Context) (int, error) {
	if !j.running.TryLock() {
		logger.Warn("Reconcile pass skipped: previous pass still running")
		return 0, nil
	}
	defer j.running.Unlock()

	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	start := time.Now()
	repaired, err := j.reconciler.ReconcileAll(ctx)
	if err != nil {
		logger.Error("Reconcile pass finished with error after %v: repaired=%d, error=%v", time.Since(start), repaired, err)
		return repaired, err
	}
	logger.Info("Reconcile pass finished in %v: repaired=%d", time.Since(start), repaired)
	return repaired, nil
}

// Scheduler wraps the cron runner. An empty schedule yields a scheduler that
// does nothing.
type Scheduler struct {
	cron *cron.Cron
}

func NewScheduler(ctx context.Context, schedule string, job *ReconcileJob) (*Scheduler, error) {
	if schedule == "" {
		logger.Info("Reconcile job disabled (RECONCILE_SCHEDULE is empty)")
		return &Scheduler{}, nil
	}

	c := cron.New()
	if _, err := c.AddFunc(schedule, func() {
		job.Run(ctx)
	}); err != nil {
		return nil, err
	}
	logger.Info("Reconcile job scheduled: %s", schedule)
	return &Scheduler{cron: c}, nil
}

func (s *Scheduler) Start() {
	if s.cron != nil {
		s.cron.Start()
	}
}

// Stop halts the schedule and waits for a running pass to return.
func (s *Scheduler) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
}

func (s *Scheduler) Enabled() bool {
	return s.cron != nil
}
