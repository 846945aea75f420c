package cron

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/angelmondragon/gasflow-backend/pkg/logger"
)

type NotificationDueJobParams struct {
	Logger  *logger.Logger
	Counter dueCounter
	Now     func() time.Time
}

type dueCounter interface {
	CountDue(ctx context.Context, from, to time.Time) (int64, error)
	UnreadCount(ctx context.Context) (int, error)
}

// NewNotificationDueJob logs reminders whose schedule passed since the
// previous run. The first run only records the watermark.
func NewNotificationDueJob(params NotificationDueJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Counter == nil {
		return nil, fmt.Errorf("notifications service required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &notificationDueJob{
		logg:    params.Logger,
		counter: params.Counter,
		now:     now,
	}, nil
}

type notificationDueJob struct {
	logg    *logger.Logger
	counter dueCounter
	now     func() time.Time

	mu      sync.Mutex
	lastRun time.Time
}

func (j *notificationDueJob) Name() string { return "notification-due" }

func (j *notificationDueJob) Run(ctx context.Context) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	now := j.now().UTC()
	if j.lastRun.IsZero() {
		j.lastRun = now
		return nil
	}

	due, err := j.counter.CountDue(ctx, j.lastRun, now)
	if err != nil {
		return fmt.Errorf("count due notifications: %w", err)
	}
	j.lastRun = now
	if due == 0 {
		return nil
	}

	unread, err := j.counter.UnreadCount(ctx)
	if err != nil {
		return fmt.Errorf("count unread notifications: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"became_due": due,
		"unread":     unread,
	})
	j.logg.Info(logCtx, "notifications due")
	return nil
}
