package models

import (
	"time"

	"github.com/google/uuid"
)

// Address is a delivery location in the quadra/alameda/lote grid used by the
// service area.
type Address struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Quadra      string    `gorm:"column:quadra;type:text"`
	Alameda     string    `gorm:"column:alameda;type:text"`
	QI          string    `gorm:"column:qi;type:text"`
	Lote        string    `gorm:"column:lote;type:text"`
	Casa        string    `gorm:"column:casa;type:text"`
	Complemento string    `gorm:"column:complemento;type:text"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
