package stock

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/gasflow-backend/pkg/db/models"
)

// Repository persists stock variables. Quantity changes made on behalf of
// sales go through Increase and Decrease only.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to stock operations.
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

// Create inserts a stock variable.
func (r *Repository) Create(ctx context.Context, variable *models.StockVariable) error {
	if variable.ID == uuid.Nil {
		variable.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(variable).Error
}

// Update saves name and quantity of an existing variable.
func (r *Repository) Update(ctx context.Context, variable *models.StockVariable) error {
	if variable == nil {
		return fmt.Errorf("stock variable is required")
	}
	return r.db.WithContext(ctx).
		Model(&models.StockVariable{}).
		Where("id = ?", variable.ID).
		Updates(map[string]any{"name": variable.Name, "quantity": variable.Quantity}).Error
}

// Delete removes a stock variable.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&models.StockVariable{}, "id = ?", id)
	return result.RowsAffected > 0, result.Error
}

// FindByID loads one stock variable.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.StockVariable, error) {
	var variable models.StockVariable
	if err := r.db.WithContext(ctx).First(&variable, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &variable, nil
}

// FindByIDs loads the requested variables keyed by id.
func (r *Repository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.StockVariable, error) {
	out := make(map[uuid.UUID]models.StockVariable, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []models.StockVariable
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.ID] = row
	}
	return out, nil
}

// NameTaken reports whether another variable already uses name, ignoring case.
func (r *Repository) NameTaken(ctx context.Context, name string, exclude uuid.UUID) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.StockVariable{}).Where("LOWER(name) = LOWER(?)", name)
	if exclude != uuid.Nil {
		query = query.Where("id <> ?", exclude)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountBindings returns how many product bindings point at the variable.
func (r *Repository) CountBindings(ctx context.Context, id uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.StockBinding{}).Where("stock_variable_id = ?", id).Count(&count).Error
	return count, err
}

// List returns every variable ordered by name.
func (r *Repository) List(ctx context.Context) ([]models.StockVariable, error) {
	var rows []models.StockVariable
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListAtOrBelow returns variables whose quantity is at most threshold, lowest first.
func (r *Repository) ListAtOrBelow(ctx context.Context, threshold int) ([]models.StockVariable, error) {
	var rows []models.StockVariable
	if err := r.db.WithContext(ctx).
		Where("quantity <= ?", threshold).
		Order("quantity ASC, name ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Decrease subtracts qty when the variable exists and holds at least qty.
// It reports false without touching the row otherwise.
func (r *Repository) Decrease(ctx context.Context, id uuid.UUID, qty int) (bool, error) {
	if qty < 0 {
		return false, fmt.Errorf("negative decrease %d", qty)
	}
	result := r.db.WithContext(ctx).
		Model(&models.StockVariable{}).
		Where("id = ? AND quantity >= ?", id, qty).
		UpdateColumn("quantity", gorm.Expr("quantity - ?", qty))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// Increase adds qty to the variable. Unknown ids are ignored.
func (r *Repository) Increase(ctx context.Context, id uuid.UUID, qty int) error {
	if qty < 0 {
		return fmt.Errorf("negative increase %d", qty)
	}
	return r.db.WithContext(ctx).
		Model(&models.StockVariable{}).
		Where("id = ?", id).
		UpdateColumn("quantity", gorm.Expr("quantity + ?", qty)).Error
}
