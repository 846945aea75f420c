package couriers

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/gasflow-backend/pkg/db/models"
)

// Repository persists couriers.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to courier operations.
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

func (r *Repository) Create(ctx context.Context, courier *models.Courier) error {
	if courier.ID == uuid.Nil {
		courier.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(courier).Error
}

func (r *Repository) Update(ctx context.Context, courier *models.Courier) error {
	return r.db.WithContext(ctx).
		Model(&models.Courier{}).
		Where("id = ?", courier.ID).
		Updates(map[string]any{
			"identifier": courier.Identifier,
			"name":       courier.Name,
			"phone":      courier.Phone,
			"active":     courier.Active,
		}).Error
}

// SetActive flips the availability flag without touching the other columns.
func (r *Repository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	return r.db.WithContext(ctx).
		Model(&models.Courier{}).
		Where("id = ?", id).
		UpdateColumn("active", active).Error
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&models.Courier{}, "id = ?", id)
	return result.RowsAffected > 0, result.Error
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Courier, error) {
	var courier models.Courier
	if err := r.db.WithContext(ctx).First(&courier, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &courier, nil
}

// IdentifierTaken reports whether another courier uses identifier, ignoring case.
func (r *Repository) IdentifierTaken(ctx context.Context, identifier string, exclude uuid.UUID) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).
		Model(&models.Courier{}).
		Where("LOWER(identifier) = LOWER(?)", identifier)
	if exclude != uuid.Nil {
		query = query.Where("id <> ?", exclude)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// List returns couriers ordered by identifier, optionally only the active ones.
func (r *Repository) List(ctx context.Context, activeOnly bool) ([]models.Courier, error) {
	var rows []models.Courier
	query := r.db.WithContext(ctx)
	if activeOnly {
		query = query.Where("active = ?", true)
	}
	if err := query.Order("identifier ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
