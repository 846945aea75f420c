package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CashAdvance is money handed to a courier ahead of settlement.
type CashAdvance struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	CourierID   uuid.UUID       `gorm:"column:courier_id;type:uuid;not null;index"`
	Amount      decimal.Decimal `gorm:"column:amount;type:numeric(12,2);not null"`
	AdvancedAt  time.Time       `gorm:"column:advanced_at;not null;index"`
	Description string          `gorm:"column:description;type:text"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
}
