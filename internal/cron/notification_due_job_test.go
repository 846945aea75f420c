package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/angelmondragon/gasflow-backend/pkg/logger"
)

type fakeDueCounter struct {
	windows [][2]time.Time
	due     int64
	err     error
}

func (f *fakeDueCounter) CountDue(ctx context.Context, from, to time.Time) (int64, error) {
	f.windows = append(f.windows, [2]time.Time{from, to})
	return f.due, f.err
}

func (f *fakeDueCounter) UnreadCount(ctx context.Context) (int, error) {
	return int(f.due), nil
}

func TestNotificationDueJobTracksWatermark(t *testing.T) {
	start := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := start
	counter := &fakeDueCounter{due: 2}
	job, err := NewNotificationDueJob(NotificationDueJobParams{
		Logger:  logger.Nop(),
		Counter: counter,
		Now:     func() time.Time { return clock },
	})
	if err != nil {
		t.Fatalf("NewNotificationDueJob: %v", err)
	}

	ctx := context.Background()
	if err := job.Run(ctx); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if len(counter.windows) != 0 {
		t.Fatalf("first run should only set the watermark")
	}

	clock = start.Add(time.Minute)
	if err := job.Run(ctx); err != nil {
		t.Fatalf("second run: %v", err)
	}
	clock = start.Add(2 * time.Minute)
	if err := job.Run(ctx); err != nil {
		t.Fatalf("third run: %v", err)
	}

	if len(counter.windows) != 2 {
		t.Fatalf("expected 2 windows, got %d", len(counter.windows))
	}
	if !counter.windows[0][0].Equal(start) || !counter.windows[1][0].Equal(start.Add(time.Minute)) {
		t.Fatalf("windows not contiguous: %v", counter.windows)
	}
}

func TestNotificationDueJobKeepsWatermarkOnError(t *testing.T) {
	start := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := start
	counter := &fakeDueCounter{err: errors.New("db down")}
	job, _ := NewNotificationDueJob(NotificationDueJobParams{
		Logger:  logger.Nop(),
		Counter: counter,
		Now:     func() time.Time { return clock },
	})

	ctx := context.Background()
	_ = job.Run(ctx)
	clock = start.Add(time.Minute)
	if err := job.Run(ctx); err == nil {
		t.Fatal("expected error")
	}
	counter.err = nil
	clock = start.Add(2 * time.Minute)
	if err := job.Run(ctx); err != nil {
		t.Fatalf("recovery run: %v", err)
	}
	if !counter.windows[1][0].Equal(start) {
		t.Fatalf("expected retry from the original watermark, got %v", counter.windows[1][0])
	}
}
