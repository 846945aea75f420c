package notifications

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/gasflow-backend/pkg/db/models"
	"github.com/angelmondragon/gasflow-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/gasflow-backend/pkg/errors"
	paginationpkg "github.com/angelmondragon/gasflow-backend/pkg/pagination"
)

var fixedNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

type fakeRepository struct {
	createFn      func(ctx context.Context, notification *models.Notification) error
	listFn        func(ctx context.Context, params listNotificationsParams) ([]models.Notification, error)
	activeFn      func(ctx context.Context, now time.Time) ([]models.Notification, error)
	markReadFn    func(ctx context.Context, notificationID uuid.UUID, now time.Time) (notificationMarkResult, error)
	markAllReadFn func(ctx context.Context, now time.Time) (int64, error)
	deleteFn      func(ctx context.Context, notificationID uuid.UUID) (bool, error)
	deleteReadFn  func(ctx context.Context, cutoff time.Time) (int64, error)
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository {
	return f
}

func (f *fakeRepository) Create(ctx context.Context, notification *models.Notification) error {
	if f.createFn != nil {
		return f.createFn(ctx, notification)
	}
	return nil
}

func (f *fakeRepository) List(ctx context.Context, params listNotificationsParams) ([]models.Notification, error) {
	if f.listFn != nil {
		return f.listFn(ctx, params)
	}
	return nil, nil
}

func (f *fakeRepository) Active(ctx context.Context, now time.Time) ([]models.Notification, error) {
	if f.activeFn != nil {
		return f.activeFn(ctx, now)
	}
	return nil, nil
}

func (f *fakeRepository) CountDue(ctx context.Context, from, to time.Time) (int64, error) {
	return 0, nil
}

func (f *fakeRepository) MarkRead(ctx context.Context, notificationID uuid.UUID, now time.Time) (notificationMarkResult, error) {
	if f.markReadFn != nil {
		return f.markReadFn(ctx, notificationID, now)
	}
	return notificationMarkResult{}, nil
}

func (f *fakeRepository) MarkAllRead(ctx context.Context, now time.Time) (int64, error) {
	if f.markAllReadFn != nil {
		return f.markAllReadFn(ctx, now)
	}
	return 0, nil
}

func (f *fakeRepository) Delete(ctx context.Context, notificationID uuid.UUID) (bool, error) {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, notificationID)
	}
	return false, nil
}

func (f *fakeRepository) DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	if f.deleteReadFn != nil {
		return f.deleteReadFn(ctx, cutoff)
	}
	return 0, nil
}

func newServiceWithRepo(repo Repository) Service {
	svc, _ := NewService(repo, func() time.Time { return fixedNow })
	return svc
}

func TestService_CreateDefaults(t *testing.T) {
	var stored *models.Notification
	repo := &fakeRepository{
		createFn: func(ctx context.Context, notification *models.Notification) error {
			stored = notification
			return nil
		},
	}
	svc := newServiceWithRepo(repo)

	saleID := uuid.New()
	amount := decimal.RequireFromString("110.005")
	created, err := svc.Create(context.Background(), CreateInput{
		Message:      "  cobrar fiado  ",
		SaleID:       &saleID,
		CustomerName: "Maria",
		Amount:       &amount,
	})
	if err != nil {
		t.Fatalf("unexpected create error: %v", err)
	}
	if stored != created {
		t.Fatal("expected the created notification to be persisted")
	}
	if created.Kind != enums.NotificationKindSaleReminder {
		t.Fatalf("expected sale reminder kind, got %s", created.Kind)
	}
	if created.Message != "cobrar fiado" || created.Title != "Lembrete" {
		t.Fatalf("unexpected text %q / %q", created.Title, created.Message)
	}
	if !created.ScheduledAt.Equal(fixedNow) {
		t.Fatalf("expected schedule to default to now, got %v", created.ScheduledAt)
	}
	if !created.Amount.Valid || !created.Amount.Decimal.Equal(decimal.RequireFromString("110.01")) {
		t.Fatalf("unexpected amount %v", created.Amount)
	}
}

func TestService_CreateRequiresMessage(t *testing.T) {
	svc := newServiceWithRepo(&fakeRepository{})
	_, err := svc.Create(context.Background(), CreateInput{Message: "   "})
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	_, err = svc.Create(context.Background(), CreateInput{Message: "x", Kind: "outro"})
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for kind, got %v", err)
	}
}

func TestService_ListNotifications(t *testing.T) {
	first := models.Notification{ID: uuid.New(), CreatedAt: fixedNow}
	second := models.Notification{ID: uuid.New(), CreatedAt: fixedNow.Add(-time.Hour)}

	repo := &fakeRepository{
		listFn: func(ctx context.Context, params listNotificationsParams) ([]models.Notification, error) {
			if params.Limit != 1 || !params.UnreadOnly {
				t.Fatalf("unexpected params %+v", params)
			}
			return []models.Notification{first, second}, nil
		},
	}

	svc := newServiceWithRepo(repo)
	result, err := svc.List(context.Background(), ListParams{Limit: 1, UnreadOnly: true})
	if err != nil {
		t.Fatalf("unexpected list error: %v", err)
	}
	if len(result.Items) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(result.Items))
	}
	decoded, err := paginationpkg.ParseCursor(result.Cursor)
	if err != nil {
		t.Fatalf("invalid cursor %q: %v", result.Cursor, err)
	}
	if decoded.ID != first.ID {
		t.Fatalf("expected cursor id %s got %s", first.ID, decoded.ID)
	}
}

func TestService_ListNotificationsInvalidCursor(t *testing.T) {
	svc := newServiceWithRepo(&fakeRepository{})
	_, err := svc.List(context.Background(), ListParams{Cursor: "bad"})
	if err == nil {
		t.Fatal("expected error for invalid cursor")
	}
	if code := pkgerrors.As(err).Code(); code != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %s", code)
	}
}

func TestService_UnreadCountUsesClock(t *testing.T) {
	repo := &fakeRepository{
		activeFn: func(ctx context.Context, now time.Time) ([]models.Notification, error) {
			if !now.Equal(fixedNow) {
				t.Fatalf("expected injected clock, got %v", now)
			}
			return []models.Notification{{ID: uuid.New()}, {ID: uuid.New()}}, nil
		},
	}
	svc := newServiceWithRepo(repo)
	count, err := svc.UnreadCount(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 unread, got %d", count)
	}
}

func TestService_MarkRead(t *testing.T) {
	repo := &fakeRepository{
		markReadFn: func(ctx context.Context, notificationID uuid.UUID, now time.Time) (notificationMarkResult, error) {
			return notificationMarkResult{Found: true, Updated: true}, nil
		},
	}
	svc := newServiceWithRepo(repo)
	if err := svc.MarkRead(context.Background(), uuid.New()); err != nil {
		t.Fatalf("unexpected mark read error: %v", err)
	}
}

func TestService_MarkReadNotFound(t *testing.T) {
	repo := &fakeRepository{
		markReadFn: func(ctx context.Context, notificationID uuid.UUID, now time.Time) (notificationMarkResult, error) {
			return notificationMarkResult{Found: false}, nil
		},
	}
	svc := newServiceWithRepo(repo)
	if err := svc.MarkRead(context.Background(), uuid.New()); err == nil {
		t.Fatal("expected not found error")
	} else if pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestService_MarkAllRead(t *testing.T) {
	repo := &fakeRepository{
		markAllReadFn: func(ctx context.Context, now time.Time) (int64, error) {
			return 3, nil
		},
	}
	svc := newServiceWithRepo(repo)
	count, err := svc.MarkAllRead(context.Background())
	if err != nil {
		t.Fatalf("unexpected mark all read error: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 updated rows, got %d", count)
	}
}

func TestService_MarkAllReadError(t *testing.T) {
	repo := &fakeRepository{
		markAllReadFn: func(ctx context.Context, now time.Time) (int64, error) {
			return 0, errors.New("boom")
		},
	}
	svc := newServiceWithRepo(repo)
	if _, err := svc.MarkAllRead(context.Background()); !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestService_RemoveMissing(t *testing.T) {
	svc := newServiceWithRepo(&fakeRepository{})
	if err := svc.Remove(context.Background(), uuid.New()); !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestService_DeleteReadOlderThan(t *testing.T) {
	repo := &fakeRepository{
		deleteReadFn: func(ctx context.Context, cutoff time.Time) (int64, error) {
			if !cutoff.Equal(fixedNow.Add(-48 * time.Hour)) {
				t.Fatalf("unexpected cutoff %v", cutoff)
			}
			return 4, nil
		},
	}
	svc := newServiceWithRepo(repo)
	count, err := svc.DeleteReadOlderThan(context.Background(), 48*time.Hour)
	if err != nil || count != 4 {
		t.Fatalf("expected 4 deleted, got %d (%v)", count, err)
	}
	if _, err := svc.DeleteReadOlderThan(context.Background(), 0); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
