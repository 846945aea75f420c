package notifications

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/gasflow-backend/pkg/db/models"
	"github.com/angelmondragon/gasflow-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/gasflow-backend/pkg/errors"
	"github.com/angelmondragon/gasflow-backend/pkg/pagination"
)

// Service defines reminder scheduling and read-state operations.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Notification, error)
	List(ctx context.Context, params ListParams) (*ListResult, error)
	Active(ctx context.Context) ([]models.Notification, error)
	UnreadCount(ctx context.Context) (int, error)
	CountDue(ctx context.Context, from, to time.Time) (int64, error)
	MarkRead(ctx context.Context, notificationID uuid.UUID) error
	MarkAllRead(ctx context.Context) (int64, error)
	Remove(ctx context.Context, notificationID uuid.UUID) error
	DeleteReadOlderThan(ctx context.Context, age time.Duration) (int64, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

// CreateInput describes a reminder. ScheduledAt defaults to now.
type CreateInput struct {
	Kind         enums.NotificationKind `json:"kind" validate:"omitempty,oneof=lembrete-venda geral"`
	Title        string                 `json:"title" validate:"omitempty,max=120"`
	Message      string                 `json:"message" validate:"required"`
	SaleID       *uuid.UUID             `json:"saleId"`
	CustomerName string                 `json:"customerName"`
	Amount       *decimal.Decimal       `json:"amount"`
	ScheduledAt  *time.Time             `json:"scheduledAt"`
}

// ListParams configures pagination for notifications.
type ListParams struct {
	Limit      int
	Cursor     string
	UnreadOnly bool
}

// ListResult wraps returned notifications and the cursor for the next page.
type ListResult struct {
	Items  []models.Notification `json:"items"`
	Cursor string                `json:"cursor"`
}

// NewService wires notifications dependencies. A nil clock uses time.Now.
func NewService(repo Repository, now func() time.Time) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications repository required")
	}
	if now == nil {
		now = time.Now
	}
	return &service{repo: repo, now: now}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Notification, error) {
	message := strings.TrimSpace(input.Message)
	if message == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "message is required")
	}

	kind := input.Kind
	if kind == "" {
		kind = enums.NotificationKindGeneral
		if input.SaleID != nil {
			kind = enums.NotificationKindSaleReminder
		}
	}
	if !kind.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid notification kind")
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		title = "Lembrete"
	}

	scheduled := s.now()
	if input.ScheduledAt != nil {
		scheduled = *input.ScheduledAt
	}

	notification := &models.Notification{
		Kind:         kind,
		Title:        title,
		Message:      message,
		SaleID:       input.SaleID,
		CustomerName: strings.TrimSpace(input.CustomerName),
		ScheduledAt:  scheduled.UTC(),
	}
	if input.Amount != nil {
		notification.Amount = decimal.NewNullDecimal(input.Amount.Round(2))
	}

	if err := s.repo.Create(ctx, notification); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create notification")
	}
	return notification, nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	query := listNotificationsParams{
		Limit:      params.Limit,
		UnreadOnly: params.UnreadOnly,
	}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	rows, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list notifications")
	}
	page := pagination.Paginate(rows, params.Limit, func(n models.Notification) pagination.Cursor {
		return pagination.Cursor{CreatedAt: n.CreatedAt, ID: n.ID}
	})

	return &ListResult{Items: page.Items, Cursor: page.NextCursor}, nil
}

func (s *service) Active(ctx context.Context) ([]models.Notification, error) {
	rows, err := s.repo.Active(ctx, s.now())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list active notifications")
	}
	return rows, nil
}

func (s *service) UnreadCount(ctx context.Context) (int, error) {
	rows, err := s.Active(ctx)
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}

func (s *service) CountDue(ctx context.Context, from, to time.Time) (int64, error) {
	if !to.After(from) {
		return 0, nil
	}
	count, err := s.repo.CountDue(ctx, from, to)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count due notifications")
	}
	return count, nil
}

func (s *service) MarkRead(ctx context.Context, notificationID uuid.UUID) error {
	if notificationID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "notification id required")
	}

	result, err := s.repo.MarkRead(ctx, notificationID, s.now())
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark notification read")
	}
	if !result.Found {
		return pkgerrors.NotFound("notification")
	}
	return nil
}

func (s *service) MarkAllRead(ctx context.Context) (int64, error) {
	count, err := s.repo.MarkAllRead(ctx, s.now())
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark notifications read")
	}
	return count, nil
}

func (s *service) Remove(ctx context.Context, notificationID uuid.UUID) error {
	if notificationID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "notification id required")
	}
	deleted, err := s.repo.Delete(ctx, notificationID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete notification")
	}
	if !deleted {
		return pkgerrors.NotFound("notification")
	}
	return nil
}

// DeleteReadOlderThan drops reminders that were read more than age ago.
func (s *service) DeleteReadOlderThan(ctx context.Context, age time.Duration) (int64, error) {
	if age <= 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "retention must be positive")
	}
	count, err := s.repo.DeleteReadBefore(ctx, s.now().Add(-age))
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete read notifications")
	}
	return count, nil
}
