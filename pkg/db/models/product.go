package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/gasflow-backend/pkg/enums"
)

// Product is a sellable item priced per payment method.
type Product struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	Name        string          `gorm:"column:name;type:text;not null"`
	PriceCredit decimal.Decimal `gorm:"column:price_credit;type:numeric(12,2);not null"`
	PriceDebit  decimal.Decimal `gorm:"column:price_debit;type:numeric(12,2);not null"`
	PriceCash   decimal.Decimal `gorm:"column:price_cash;type:numeric(12,2);not null"`
	PricePix    decimal.Decimal `gorm:"column:price_pix;type:numeric(12,2);not null"`
	Bindings    []StockBinding  `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// PriceFor returns the unit price charged for the given payment method.
func (p Product) PriceFor(method enums.PaymentMethod) (decimal.Decimal, bool) {
	switch method {
	case enums.PaymentMethodCredit:
		return p.PriceCredit, true
	case enums.PaymentMethodDebit:
		return p.PriceDebit, true
	case enums.PaymentMethodCash:
		return p.PriceCash, true
	case enums.PaymentMethodPix:
		return p.PricePix, true
	}
	return decimal.Zero, false
}

// StockBinding declares how one sold unit of a product moves one stock variable.
type StockBinding struct {
	ID              uuid.UUID              `gorm:"column:id;type:uuid;primaryKey"`
	ProductID       uuid.UUID              `gorm:"column:product_id;type:uuid;not null;index"`
	Position        int                    `gorm:"column:position;not null"`
	StockVariableID uuid.UUID              `gorm:"column:stock_variable_id;type:uuid;not null;index"`
	Interaction     enums.StockInteraction `gorm:"column:interaction;type:text;not null"`
}
