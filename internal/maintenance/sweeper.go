package maintenance

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"jobportal/internal/metrics"
)

type JobExpirer interface {
	ExpireOldJobs(ctx context.Context, now time.Time) (int64, error)
}

type SubscriptionExpirer interface {
	ExpireSubscriptions(ctx context.Context, now time.Time) (int64, error)
}

type Result struct {
	JobsExpired          int64     `json:"jobs_expired"`
	SubscriptionsExpired int64     `json:"subscriptions_expired"`
	RanAt                time.Time `json:"ran_at"`
}

// Sweeper persists expiry for jobs and subscriptions whose dates have passed.
type Sweeper struct {
	jobs    JobExpirer
	subs    SubscriptionExpirer
	metrics *metrics.Collector
	logger  logrus.FieldLogger
	clock   func() time.Time
}

func NewSweeper(jobs JobExpirer, subs SubscriptionExpirer, collector *metrics.Collector, logger logrus.FieldLogger) *Sweeper {
	return &Sweeper{jobs: jobs, subs: subs, metrics: collector, logger: logger, clock: time.Now}
}

// RunOnce expires jobs first, then subscriptions. Subscriptions are still
// swept when the job sweep fails.
func (s *Sweeper) RunOnce(ctx context.Context) (Result, error) {
	now := s.clock().UTC()
	result := Result{RanAt: now}

	jobs, jobErr := s.jobs.ExpireOldJobs(ctx, now)
	if jobErr == nil {
		result.JobsExpired = jobs
		s.metrics.AddJobsExpired(jobs)
	}
	subs, subErr := s.subs.ExpireSubscriptions(ctx, now)
	if subErr == nil {
		result.SubscriptionsExpired = subs
	}

	switch {
	case jobErr != nil:
		return result, fmt.Errorf("expire jobs: %w", jobErr)
	case subErr != nil:
		return result, fmt.Errorf("expire subscriptions: %w", subErr)
	}
	s.logger.WithFields(logrus.Fields{
		"jobs_expired":          result.JobsExpired,
		"subscriptions_expired": result.SubscriptionsExpired,
	}).Info("expiry sweep finished")
	return result, nil
}

// Run sweeps immediately and then every interval until ctx is done. A
// non-positive interval disables the loop.
func (s *Sweeper) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	if _, err := s.RunOnce(ctx); err != nil {
		s.logger.WithError(err).Error("expiry sweep failed")
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.RunOnce(ctx); err != nil {
				s.logger.WithError(err).Error("expiry sweep failed")
			}
		}
	}
}
