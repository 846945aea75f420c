package products

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/gasflow-backend/pkg/db/models"
)

// Repository persists products together with their ordered stock bindings.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
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

// Create inserts the product and its bindings.
func (r *Repository) Create(ctx context.Context, product *models.Product) error {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	bindings := product.Bindings
	product.Bindings = nil
	if err := r.db.WithContext(ctx).Omit("Bindings").Create(product).Error; err != nil {
		return err
	}
	if err := r.ReplaceBindings(ctx, product.ID, bindings); err != nil {
		return err
	}
	product.Bindings = bindings
	return nil
}

// Update saves prices and name, then replaces the binding list.
func (r *Repository) Update(ctx context.Context, product *models.Product) error {
	if product == nil {
		return fmt.Errorf("product is required")
	}
	if err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", product.ID).
		Updates(map[string]any{
			"name":         product.Name,
			"price_credit": product.PriceCredit,
			"price_debit":  product.PriceDebit,
			"price_cash":   product.PriceCash,
			"price_pix":    product.PricePix,
		}).Error; err != nil {
		return err
	}
	return r.ReplaceBindings(ctx, product.ID, product.Bindings)
}

// ReplaceBindings swaps the product's bindings for the provided ordered list.
func (r *Repository) ReplaceBindings(ctx context.Context, productID uuid.UUID, bindings []models.StockBinding) error {
	tx := r.db.WithContext(ctx)
	if err := tx.Where("product_id = ?", productID).Delete(&models.StockBinding{}).Error; err != nil {
		return err
	}
	if len(bindings) == 0 {
		return nil
	}
	for i := range bindings {
		if bindings[i].ID == uuid.Nil {
			bindings[i].ID = uuid.New()
		}
		bindings[i].ProductID = productID
		bindings[i].Position = i
	}
	return tx.Create(&bindings).Error
}

// Delete removes the product and its bindings.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tx := r.db.WithContext(ctx)
	if err := tx.Where("product_id = ?", id).Delete(&models.StockBinding{}).Error; err != nil {
		return false, err
	}
	result := tx.Delete(&models.Product{}, "id = ?", id)
	return result.RowsAffected > 0, result.Error
}

// FindByID loads a product with its bindings in declared order.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).
		Preload("Bindings", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// List returns every product ordered by name.
func (r *Repository) List(ctx context.Context) ([]models.Product, error) {
	var rows []models.Product
	if err := r.db.WithContext(ctx).
		Preload("Bindings", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Order("name ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
