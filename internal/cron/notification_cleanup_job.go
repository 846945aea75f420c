package cron

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/angelmondragon/gasflow-backend/pkg/logger"
)

const (
	defaultRetentionDays = 30
	defaultSweepEvery    = time.Hour
)

type notificationCleaner interface {
	DeleteReadOlderThan(ctx context.Context, age time.Duration) (int64, error)
}

type NotificationCleanupJobParams struct {
	Logger  *logger.Logger
	Cleaner notificationCleaner
	// Retention is in days.
	Retention  int
	SweepEvery time.Duration
	Now        func() time.Time
}

// NewNotificationCleanupJob deletes reminders read more than Retention days
// ago. The worker ticks far more often than rows age out, so the job sweeps at
// most once per SweepEvery and returns early otherwise.
func NewNotificationCleanupJob(params NotificationCleanupJobParams) (Job, error) {
	switch {
	case params.Logger == nil:
		return nil, errors.New("logger required")
	case params.Cleaner == nil:
		return nil, errors.New("notifications service required")
	}
	job := &notificationCleanupJob{
		logg:      params.Logger,
		cleaner:   params.Cleaner,
		retention: time.Duration(params.Retention) * 24 * time.Hour,
		every:     params.SweepEvery,
		now:       params.Now,
	}
	if params.Retention <= 0 {
		job.retention = defaultRetentionDays * 24 * time.Hour
	}
	if job.every <= 0 {
		job.every = defaultSweepEvery
	}
	if job.now == nil {
		job.now = time.Now
	}
	return job, nil
}

type notificationCleanupJob struct {
	logg      *logger.Logger
	cleaner   notificationCleaner
	retention time.Duration
	every     time.Duration
	now       func() time.Time

	mu        sync.Mutex
	lastSweep time.Time
}

func (j *notificationCleanupJob) Name() string { return "notification-cleanup" }

func (j *notificationCleanupJob) Run(ctx context.Context) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	now := j.now()
	if !j.lastSweep.IsZero() && now.Sub(j.lastSweep) < j.every {
		return nil
	}
	deleted, err := j.cleaner.DeleteReadOlderThan(ctx, j.retention)
	if err != nil {
		// lastSweep stays put so the next tick retries.
		return fmt.Errorf("notification cleanup: %w", err)
	}
	j.lastSweep = now
	if deleted > 0 {
		j.logg.Info(j.logg.WithFields(ctx, map[string]any{
			"retention_days": int(j.retention.Hours() / 24),
			"rows_deleted":   deleted,
		}), "read notifications purged")
	}
	return nil
}
