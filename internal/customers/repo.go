package customers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/gasflow-backend/pkg/db/models"
)

// Repository persists customers and their purchase history.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to customer operations.
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

func (r *Repository) Create(ctx context.Context, customer *models.Customer) error {
	if customer.ID == uuid.Nil {
		customer.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(customer).Error
}

func (r *Repository) Update(ctx context.Context, customer *models.Customer) error {
	if customer == nil {
		return fmt.Errorf("customer is required")
	}
	return r.db.WithContext(ctx).
		Model(&models.Customer{}).
		Where("id = ?", customer.ID).
		Updates(map[string]any{
			"name":  customer.Name,
			"phone": customer.Phone,
			"notes": customer.Notes,
		}).Error
}

// Delete removes the customer together with purchase history and address links.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	var deleted bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("customer_id = ?", id).Delete(&models.Purchase{}).Error; err != nil {
			return err
		}
		if err := tx.Where("customer_id = ?", id).Delete(&models.CustomerAddress{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Customer{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		deleted = result.RowsAffected > 0
		return nil
	})
	return deleted, err
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	var customer models.Customer
	if err := r.db.WithContext(ctx).First(&customer, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

// Exists reports whether a customer with id is registered.
func (r *Repository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Customer{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// List returns customers ordered by name, optionally filtered by a name or
// phone fragment.
func (r *Repository) List(ctx context.Context, search string) ([]models.Customer, error) {
	query := r.db.WithContext(ctx).Model(&models.Customer{})
	if search = strings.TrimSpace(search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR phone LIKE ?", like, like)
	}
	var rows []models.Customer
	if err := query.Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// AppendPurchase stores one purchase history entry.
func (r *Repository) AppendPurchase(ctx context.Context, purchase *models.Purchase) error {
	if purchase.ID == uuid.Nil {
		purchase.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(purchase).Error
}

// RemovePurchasesBySale deletes every history entry that originated from saleID.
func (r *Repository) RemovePurchasesBySale(ctx context.Context, saleID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Where("sale_id = ?", saleID).Delete(&models.Purchase{})
	return result.RowsAffected, result.Error
}

// PurchaseHistory lists a customer's purchases, newest first.
func (r *Repository) PurchaseHistory(ctx context.Context, customerID uuid.UUID) ([]models.Purchase, error) {
	var rows []models.Purchase
	if err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("purchased_at DESC, line_index ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// PurchasesBySale lists the history entries of one sale in line order.
func (r *Repository) PurchasesBySale(ctx context.Context, saleID uuid.UUID) ([]models.Purchase, error) {
	var rows []models.Purchase
	if err := r.db.WithContext(ctx).
		Where("sale_id = ?", saleID).
		Order("line_index ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// LastPurchaseTimes returns the most recent purchase time of every customer
// that has bought at least once.
func (r *Repository) LastPurchaseTimes(ctx context.Context) (map[uuid.UUID]time.Time, error) {
	var rows []struct {
		CustomerID  uuid.UUID
		PurchasedAt time.Time
	}
	if err := r.db.WithContext(ctx).
		Model(&models.Purchase{}).
		Select("customer_id, purchased_at").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]time.Time, len(rows))
	for _, row := range rows {
		if last, ok := out[row.CustomerID]; !ok || row.PurchasedAt.After(last) {
			out[row.CustomerID] = row.PurchasedAt
		}
	}
	return out, nil
}
