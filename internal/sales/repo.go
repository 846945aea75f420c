package sales

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/gasflow-backend/pkg/db/models"
	"github.com/angelmondragon/gasflow-backend/pkg/enums"
	"github.com/angelmondragon/gasflow-backend/pkg/pagination"
)

// ListFilter narrows sale listings. Zero values match everything.
type ListFilter struct {
	Status         enums.SaleStatus
	CourierID      uuid.UUID
	CustomerID     uuid.UUID
	PaymentPending *bool
	From           *time.Time
	To             *time.Time
	Limit          int
	Cursor         *pagination.Cursor
}

// Repository persists sales with their ordered items and payments.
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

// Create inserts the sale and its lines.
func (r *Repository) Create(ctx context.Context, sale *models.Sale) error {
	if sale.ID == uuid.Nil {
		sale.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Omit("Items", "Payments").Create(sale).Error; err != nil {
		return err
	}
	return r.insertLines(ctx, sale)
}

// Save writes the top-level columns and replaces items and payments wholesale.
func (r *Repository) Save(ctx context.Context, sale *models.Sale) error {
	err := r.db.WithContext(ctx).
		Model(&models.Sale{}).
		Where("id = ?", sale.ID).
		Updates(map[string]any{
			"customer_id":        sale.CustomerID,
			"address_id":         sale.AddressID,
			"courier_id":         sale.CourierID,
			"customer_name":      sale.CustomerName,
			"customer_phone":     sale.CustomerPhone,
			"address_text":       sale.AddressText,
			"courier_identifier": sale.CourierIdentifier,
			"total":              sale.Total,
			"notes":              sale.Notes,
		}).Error
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Where("sale_id = ?", sale.ID).Delete(&models.SaleItem{}).Error; err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Where("sale_id = ?", sale.ID).Delete(&models.SalePayment{}).Error; err != nil {
		return err
	}
	return r.insertLines(ctx, sale)
}

func (r *Repository) insertLines(ctx context.Context, sale *models.Sale) error {
	for i := range sale.Items {
		item := &sale.Items[i]
		item.ID = uuid.New()
		item.SaleID = sale.ID
		item.Position = i
	}
	for i := range sale.Payments {
		payment := &sale.Payments[i]
		payment.ID = uuid.New()
		payment.SaleID = sale.ID
		payment.Position = i
	}
	if len(sale.Items) > 0 {
		if err := r.db.WithContext(ctx).Create(&sale.Items).Error; err != nil {
			return err
		}
	}
	if len(sale.Payments) > 0 {
		if err := r.db.WithContext(ctx).Create(&sale.Payments).Error; err != nil {
			return err
		}
	}
	return nil
}

// UpdateFlags sets status and/or the pending flag. It reports false when the
// sale does not exist.
func (r *Repository) UpdateFlags(ctx context.Context, id uuid.UUID, flags Flags) (bool, error) {
	updates := map[string]any{}
	if flags.Status != nil {
		updates["status"] = *flags.Status
	}
	if flags.PaymentPending != nil {
		updates["payment_pending"] = *flags.PaymentPending
	}
	if len(updates) == 0 {
		var count int64
		err := r.db.WithContext(ctx).Model(&models.Sale{}).Where("id = ?", id).Count(&count).Error
		return count > 0, err
	}
	result := r.db.WithContext(ctx).Model(&models.Sale{}).Where("id = ?", id).Updates(updates)
	return result.RowsAffected > 0, result.Error
}

// Delete removes the sale with its lines.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	if err := r.db.WithContext(ctx).Where("sale_id = ?", id).Delete(&models.SaleItem{}).Error; err != nil {
		return false, err
	}
	if err := r.db.WithContext(ctx).Where("sale_id = ?", id).Delete(&models.SalePayment{}).Error; err != nil {
		return false, err
	}
	result := r.db.WithContext(ctx).Delete(&models.Sale{}, "id = ?", id)
	return result.RowsAffected > 0, result.Error
}

// FindByID loads a sale with items and payments in their stored order.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Sale, error) {
	var sale models.Sale
	if err := r.withLines(r.db.WithContext(ctx)).First(&sale, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &sale, nil
}

// List returns sales newest first, reading one row past the limit so callers
// can detect another page.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]models.Sale, error) {
	query := r.withLines(r.db.WithContext(ctx))
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.CourierID != uuid.Nil {
		query = query.Where("courier_id = ?", filter.CourierID)
	}
	if filter.CustomerID != uuid.Nil {
		query = query.Where("customer_id = ?", filter.CustomerID)
	}
	if filter.PaymentPending != nil {
		query = query.Where("payment_pending = ?", *filter.PaymentPending)
	}
	query = inRange(query, filter.From, filter.To)
	if filter.Cursor != nil {
		clause, args := filter.Cursor.Keyset()
		query = query.Where(clause, args...)
	}

	var rows []models.Sale
	if err := query.
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(filter.Limit)).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// InRange lists every sale created inside the bounds, oldest first.
func (r *Repository) InRange(ctx context.Context, from, to *time.Time) ([]models.Sale, error) {
	var rows []models.Sale
	if err := inRange(r.withLines(r.db.WithContext(ctx)), from, to).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) withLines(query *gorm.DB) *gorm.DB {
	return query.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Payments", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") })
}

func inRange(query *gorm.DB, from, to *time.Time) *gorm.DB {
	if from != nil {
		query = query.Where("created_at >= ?", from.UTC())
	}
	if to != nil {
		query = query.Where("created_at <= ?", to.UTC())
	}
	return query
}
