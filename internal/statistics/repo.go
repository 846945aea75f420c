package statistics

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/gasflow-backend/pkg/db/models"
)

// Repository persists per-line sales records.
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

// Record stores one statistics entry.
func (r *Repository) Record(ctx context.Context, record *models.SalesRecord) error {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(record).Error
}

// RemoveBySale deletes every record produced by saleID.
func (r *Repository) RemoveBySale(ctx context.Context, saleID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Where("sale_id = ?", saleID).Delete(&models.SalesRecord{})
	return result.RowsAffected, result.Error
}

// BySale lists the records of one sale in line order.
func (r *Repository) BySale(ctx context.Context, saleID uuid.UUID) ([]models.SalesRecord, error) {
	var rows []models.SalesRecord
	if err := r.db.WithContext(ctx).
		Where("sale_id = ?", saleID).
		Order("line_index ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// TotalQuantityInRange sums the quantity sold of productID with inclusive,
// optionally open bounds.
func (r *Repository) TotalQuantityInRange(ctx context.Context, productID uuid.UUID, from, to *time.Time) (int64, error) {
	var total int64
	err := inRange(r.db.WithContext(ctx).Model(&models.SalesRecord{}), from, to).
		Where("product_id = ?", productID).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&total).Error
	return total, err
}

// InRange lists the records sold inside the bounds.
func (r *Repository) InRange(ctx context.Context, from, to *time.Time) ([]models.SalesRecord, error) {
	var rows []models.SalesRecord
	if err := inRange(r.db.WithContext(ctx), from, to).
		Order("sold_at ASC, line_index ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func inRange(query *gorm.DB, from, to *time.Time) *gorm.DB {
	if from != nil {
		query = query.Where("sold_at >= ?", from.UTC())
	}
	if to != nil {
		query = query.Where("sold_at <= ?", to.UTC())
	}
	return query
}
