package notifications

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/gasflow-backend/pkg/db/dbtest"
	"github.com/angelmondragon/gasflow-backend/pkg/db/models"
	"github.com/angelmondragon/gasflow-backend/pkg/enums"
)

func seedNotification(t *testing.T, repo Repository, message string, scheduled time.Time) *models.Notification {
	t.Helper()
	n := &models.Notification{
		Kind:        enums.NotificationKindGeneral,
		Title:       "Lembrete",
		Message:     message,
		ScheduledAt: scheduled,
	}
	require.NoError(t, repo.Create(context.Background(), n))
	return n
}

func TestRepository_ActiveOnlyDueAndUnread(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(dbtest.Open(t))

	older := seedNotification(t, repo, "older", fixedNow.Add(-2*time.Hour))
	newer := seedNotification(t, repo, "newer", fixedNow.Add(-time.Hour))
	seedNotification(t, repo, "future", fixedNow.Add(time.Hour))
	read := seedNotification(t, repo, "read", fixedNow.Add(-3*time.Hour))

	mark, err := repo.MarkRead(ctx, read.ID, fixedNow)
	require.NoError(t, err)
	assert.True(t, mark.Found)
	assert.True(t, mark.Updated)

	active, err := repo.Active(ctx, fixedNow)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, newer.ID, active[0].ID)
	assert.Equal(t, older.ID, active[1].ID)

	due, err := repo.CountDue(ctx, fixedNow.Add(-90*time.Minute), fixedNow)
	require.NoError(t, err)
	assert.Equal(t, int64(1), due)
}

func TestRepository_MarkReadTwiceStillFound(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(dbtest.Open(t))
	n := seedNotification(t, repo, "x", fixedNow)

	_, err := repo.MarkRead(ctx, n.ID, fixedNow)
	require.NoError(t, err)
	mark, err := repo.MarkRead(ctx, n.ID, fixedNow)
	require.NoError(t, err)
	assert.True(t, mark.Found)
	assert.False(t, mark.Updated)
}

func TestRepository_MarkAllReadAndCleanup(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(dbtest.Open(t))
	seedNotification(t, repo, "a", fixedNow)
	seedNotification(t, repo, "b", fixedNow)

	count, err := repo.MarkAllRead(ctx, fixedNow.Add(-72*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	fresh := seedNotification(t, repo, "c", fixedNow)
	_, err = repo.MarkRead(ctx, fresh.ID, fixedNow)
	require.NoError(t, err)

	deleted, err := repo.DeleteReadBefore(ctx, fixedNow.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	ok, err := repo.Delete(ctx, fresh.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = repo.Delete(ctx, fresh.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestService_ListWalksEveryPageOnce(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(dbtest.Open(t))
	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Create(ctx, &models.Notification{
			Kind:        enums.NotificationKindGeneral,
			Title:       "Lembrete",
			Message:     "pagina",
			ScheduledAt: fixedNow,
			CreatedAt:   fixedNow.Add(time.Duration(i) * time.Minute),
		}))
	}
	svc := newServiceWithRepo(repo)

	seen := map[string]bool{}
	cursor := ""
	pages := 0
	for {
		page, err := svc.List(ctx, ListParams{Limit: 2, Cursor: cursor})
		require.NoError(t, err)
		pages++
		for _, n := range page.Items {
			require.False(t, seen[n.ID.String()], "notification listed twice")
			seen[n.ID.String()] = true
		}
		if page.Cursor == "" {
			break
		}
		cursor = page.Cursor
	}
	assert.Equal(t, 3, pages)
	assert.Len(t, seen, 5)
}
