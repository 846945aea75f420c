package models

import (
	"time"

	"github.com/google/uuid"
)

// Courier delivers sales and collects non-instant payments.
type Courier struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Identifier string    `gorm:"column:identifier;type:text;not null"`
	Name       string    `gorm:"column:name;type:text"`
	Phone      string    `gorm:"column:phone;type:text"`
	Active     bool      `gorm:"column:active;not null;default:true"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
