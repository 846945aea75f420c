package address

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/gasflow-backend/pkg/db/models"
)

// Repository persists addresses and their links to customers.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to address operations.
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

// QuadraCount is the number of registered addresses in one quadra.
type QuadraCount struct {
	Quadra string `json:"quadra"`
	Total  int64  `json:"total_addresses"`
}

func (r *Repository) Create(ctx context.Context, address *models.Address) error {
	if address.ID == uuid.Nil {
		address.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(address).Error
}

func (r *Repository) Update(ctx context.Context, address *models.Address) error {
	if address == nil {
		return fmt.Errorf("address is required")
	}
	return r.db.WithContext(ctx).
		Model(&models.Address{}).
		Where("id = ?", address.ID).
		Updates(map[string]any{
			"quadra":      address.Quadra,
			"alameda":     address.Alameda,
			"qi":          address.QI,
			"lote":        address.Lote,
			"casa":        address.Casa,
			"complemento": address.Complemento,
		}).Error
}

// Delete removes the address and every customer link to it.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tx := r.db.WithContext(ctx)
	if err := tx.Where("address_id = ?", id).Delete(&models.CustomerAddress{}).Error; err != nil {
		return false, err
	}
	result := tx.Delete(&models.Address{}, "id = ?", id)
	return result.RowsAffected > 0, result.Error
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Address, error) {
	var address models.Address
	if err := r.db.WithContext(ctx).First(&address, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &address, nil
}

// List returns addresses sorted by quadra, alameda and lote.
func (r *Repository) List(ctx context.Context) ([]models.Address, error) {
	var rows []models.Address
	if err := r.db.WithContext(ctx).
		Order("quadra ASC, alameda ASC, lote ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// QuadraSummary counts addresses per non-empty quadra, busiest first.
func (r *Repository) QuadraSummary(ctx context.Context) ([]QuadraCount, error) {
	var rows []QuadraCount
	if err := r.db.WithContext(ctx).
		Model(&models.Address{}).
		Select("quadra, COUNT(*) AS total").
		Where("quadra IS NOT NULL AND quadra <> ''").
		Group("quadra").
		Order("total DESC, quadra ASC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Link attaches an address to a customer. Linking twice is a no-op.
func (r *Repository) Link(ctx context.Context, customerID, addressID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.CustomerAddress{CustomerID: customerID, AddressID: addressID}).Error
}

// Unlink detaches an address from a customer.
func (r *Repository) Unlink(ctx context.Context, customerID, addressID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("customer_id = ? AND address_id = ?", customerID, addressID).
		Delete(&models.CustomerAddress{}).Error
}

// UnlinkCustomer removes every address link of a customer.
func (r *Repository) UnlinkCustomer(ctx context.Context, customerID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Delete(&models.CustomerAddress{}).Error
}

// ForCustomer lists the addresses linked to a customer in link order.
func (r *Repository) ForCustomer(ctx context.Context, customerID uuid.UUID) ([]models.Address, error) {
	var rows []models.Address
	if err := r.db.WithContext(ctx).
		Joins("JOIN customer_addresses ca ON ca.address_id = addresses.id").
		Where("ca.customer_id = ?", customerID).
		Order("ca.created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// CustomersAt lists the ids of customers linked to an address.
func (r *Repository) CustomersAt(ctx context.Context, addressID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&models.CustomerAddress{}).
		Where("address_id = ?", addressID).
		Order("created_at ASC").
		Pluck("customer_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}
