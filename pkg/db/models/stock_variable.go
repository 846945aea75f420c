package models

import (
	"time"

	"github.com/google/uuid"
)

// StockVariable is a countable inventory bucket (full cylinders, water jugs,
// hoses...). Quantity is only moved through the stock ledger.
type StockVariable struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Name      string    `gorm:"column:name;type:text;not null"`
	Quantity  int       `gorm:"column:quantity;not null;default:0;check:chk_stock_variables_quantity,quantity >= 0"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
