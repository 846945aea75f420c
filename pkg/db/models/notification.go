package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/gasflow-backend/pkg/enums"
)

// Notification is a reminder that surfaces once ScheduledAt has passed.
type Notification struct {
	ID           uuid.UUID              `gorm:"column:id;type:uuid;primaryKey"`
	Kind         enums.NotificationKind `gorm:"column:kind;type:text;not null"`
	Title        string                 `gorm:"column:title;type:text;not null"`
	Message      string                 `gorm:"column:message;type:text;not null"`
	SaleID       *uuid.UUID             `gorm:"column:sale_id;type:uuid"`
	CustomerName string                 `gorm:"column:customer_name;type:text"`
	Amount       decimal.NullDecimal    `gorm:"column:amount;type:numeric(12,2)"`
	ScheduledAt  time.Time              `gorm:"column:scheduled_at;not null;index"`
	ReadAt       *time.Time             `gorm:"column:read_at"`
	CreatedAt    time.Time              `gorm:"column:created_at;autoCreateTime"`
}
