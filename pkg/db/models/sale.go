package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/gasflow-backend/pkg/enums"
)

// Sale is a delivery order. Customer, address and courier fields are snapshots
// taken when the sale was written and are never live-joined.
type Sale struct {
	ID                uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	CustomerID        uuid.UUID        `gorm:"column:customer_id;type:uuid;not null;index"`
	AddressID         uuid.UUID        `gorm:"column:address_id;type:uuid"`
	CourierID         uuid.UUID        `gorm:"column:courier_id;type:uuid;index"`
	CustomerName      string           `gorm:"column:customer_name;type:text;not null"`
	CustomerPhone     string           `gorm:"column:customer_phone;type:text"`
	AddressText       string           `gorm:"column:address_text;type:text"`
	CourierIdentifier string           `gorm:"column:courier_identifier;type:text"`
	Total             decimal.Decimal  `gorm:"column:total;type:numeric(12,2);not null"`
	Status            enums.SaleStatus `gorm:"column:status;type:text;not null"`
	PaymentPending    bool             `gorm:"column:payment_pending;not null;default:false"`
	Notes             string           `gorm:"column:notes;type:text"`
	Items             []SaleItem       `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE"`
	Payments          []SalePayment    `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE"`
	CreatedAt         time.Time        `gorm:"column:created_at;not null;index"`
	UpdatedAt         time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

// SaleItem is one line of a sale, priced at capture time.
type SaleItem struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	SaleID      uuid.UUID       `gorm:"column:sale_id;type:uuid;not null;index"`
	Position    int             `gorm:"column:position;not null"`
	ProductID   uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	ProductName string          `gorm:"column:product_name;type:text;not null"`
	Quantity    int             `gorm:"column:quantity;not null"`
	UnitPrice   decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	Subtotal    decimal.Decimal `gorm:"column:subtotal;type:numeric(12,2);not null"`
}

// SalePayment is one tender of a sale.
type SalePayment struct {
	ID       uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	SaleID   uuid.UUID           `gorm:"column:sale_id;type:uuid;not null;index"`
	Position int                 `gorm:"column:position;not null"`
	Method   enums.PaymentMethod `gorm:"column:method;type:text;not null"`
	Amount   decimal.Decimal     `gorm:"column:amount;type:numeric(12,2);not null"`
}
