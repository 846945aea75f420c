package advances

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/gasflow-backend/pkg/daterange"
	"github.com/angelmondragon/gasflow-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/gasflow-backend/pkg/errors"
)

type repository interface {
	Create(ctx context.Context, advance *models.CashAdvance) error
	Update(ctx context.Context, advance *models.CashAdvance) error
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.CashAdvance, error)
	List(ctx context.Context, filter Filter) ([]models.CashAdvance, error)
	TotalsByCourier(ctx context.Context, filter Filter) (map[uuid.UUID]decimal.Decimal, error)
}

type courierLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Courier, error)
}

// Service records money handed to couriers ahead of settlement.
type Service interface {
	List(ctx context.Context, filter Filter) ([]AdvanceDTO, error)
	Create(ctx context.Context, input AdvanceInput) (*AdvanceDTO, error)
	Update(ctx context.Context, id uuid.UUID, input AdvanceInput) (*AdvanceDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Totals(ctx context.Context, from, to *time.Time) ([]CourierTotal, error)
}

type service struct {
	repo     repository
	couriers courierLookup
	loc      *time.Location
	now      func() time.Time
}

func NewService(repo repository, couriers courierLookup, loc *time.Location, now func() time.Time) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "advance repository required")
	}
	if couriers == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "courier lookup required")
	}
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &service{repo: repo, couriers: couriers, loc: loc, now: now}, nil
}

// List widens the filter bounds to whole days in the business timezone.
func (s *service) List(ctx context.Context, filter Filter) ([]AdvanceDTO, error) {
	r := daterange.Days(filter.From, filter.To, s.loc)
	filter.From, filter.To = r.From, r.To
	rows, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list advances")
	}
	return FromModels(rows), nil
}

func (s *service) Create(ctx context.Context, input AdvanceInput) (*AdvanceDTO, error) {
	row := &models.CashAdvance{}
	if err := s.apply(ctx, row, input); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, row); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create advance")
	}
	dto := FromModel(*row)
	return &dto, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input AdvanceInput) (*AdvanceDTO, error) {
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.NotFound("advance")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load advance")
	}
	if input.AdvancedAt == nil {
		at := row.AdvancedAt
		input.AdvancedAt = &at
	}
	if err := s.apply(ctx, row, input); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, row); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update advance")
	}
	dto := FromModel(*row)
	return &dto, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete advance")
	}
	if !deleted {
		return pkgerrors.NotFound("advance")
	}
	return nil
}

// Totals sums advances per courier, largest first.
func (s *service) Totals(ctx context.Context, from, to *time.Time) ([]CourierTotal, error) {
	r := daterange.Days(from, to, s.loc)
	totals, err := s.repo.TotalsByCourier(ctx, Filter{From: r.From, To: r.To})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum advances")
	}
	out := make([]CourierTotal, 0, len(totals))
	for courierID, total := range totals {
		out = append(out, CourierTotal{CourierID: courierID, Total: total})
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Total.Cmp(out[j].Total); c != 0 {
			return c > 0
		}
		return out[i].CourierID.String() < out[j].CourierID.String()
	})
	return out, nil
}

func (s *service) apply(ctx context.Context, row *models.CashAdvance, input AdvanceInput) error {
	if input.CourierID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "courier_id is required")
	}
	if !input.Amount.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive").
			WithDetails(map[string]any{"amount": input.Amount.String()})
	}
	if _, err := s.couriers.FindByID(ctx, input.CourierID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeValidation, "unknown courier").
				WithDetails(map[string]any{"courier_id": input.CourierID})
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load courier")
	}

	row.CourierID = input.CourierID
	row.Amount = input.Amount
	row.Description = strings.TrimSpace(input.Description)
	row.AdvancedAt = s.now().UTC()
	if input.AdvancedAt != nil {
		row.AdvancedAt = input.AdvancedAt.UTC()
	}
	return nil
}
