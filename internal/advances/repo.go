package advances

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/gasflow-backend/pkg/db/models"
)

// Filter narrows advance listings. Zero values match everything.
type Filter struct {
	CourierID uuid.UUID
	From      *time.Time
	To        *time.Time
}

// Repository persists courier cash advances.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

func (r *Repository) Create(ctx context.Context, advance *models.CashAdvance) error {
	if advance.ID == uuid.Nil {
		advance.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(advance).Error
}

func (r *Repository) Update(ctx context.Context, advance *models.CashAdvance) error {
	return r.db.WithContext(ctx).
		Model(&models.CashAdvance{}).
		Where("id = ?", advance.ID).
		Updates(map[string]any{
			"courier_id":  advance.CourierID,
			"amount":      advance.Amount,
			"advanced_at": advance.AdvancedAt,
			"description": advance.Description,
		}).Error
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&models.CashAdvance{}, "id = ?", id)
	return result.RowsAffected > 0, result.Error
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.CashAdvance, error) {
	var advance models.CashAdvance
	if err := r.db.WithContext(ctx).First(&advance, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &advance, nil
}

// List returns advances matching filter, newest first.
func (r *Repository) List(ctx context.Context, filter Filter) ([]models.CashAdvance, error) {
	var rows []models.CashAdvance
	if err := r.filtered(ctx, filter).
		Order("advanced_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// TotalsByCourier sums the advances matching filter per courier.
func (r *Repository) TotalsByCourier(ctx context.Context, filter Filter) (map[uuid.UUID]decimal.Decimal, error) {
	var rows []models.CashAdvance
	if err := r.filtered(ctx, filter).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]decimal.Decimal)
	for _, row := range rows {
		out[row.CourierID] = out[row.CourierID].Add(row.Amount)
	}
	return out, nil
}

func (r *Repository) filtered(ctx context.Context, filter Filter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.CashAdvance{})
	if filter.CourierID != uuid.Nil {
		query = query.Where("courier_id = ?", filter.CourierID)
	}
	if filter.From != nil {
		query = query.Where("advanced_at >= ?", filter.From.UTC())
	}
	if filter.To != nil {
		query = query.Where("advanced_at <= ?", filter.To.UTC())
	}
	return query
}
