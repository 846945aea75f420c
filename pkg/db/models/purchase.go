package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/gasflow-backend/pkg/enums"
)

// Purchase is a customer's history entry for one line of a sale.
type Purchase struct {
	ID              uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	CustomerID      uuid.UUID           `gorm:"column:customer_id;type:uuid;not null;index:idx_purchases_customer_date,priority:1"`
	SaleID          uuid.UUID           `gorm:"column:sale_id;type:uuid;not null;uniqueIndex:idx_purchases_sale_line,priority:1"`
	LineIndex       int                 `gorm:"column:line_index;not null;uniqueIndex:idx_purchases_sale_line,priority:2"`
	ProductID       uuid.UUID           `gorm:"column:product_id;type:uuid;not null"`
	ProductName     string              `gorm:"column:product_name;type:text;not null"`
	Quantity        int                 `gorm:"column:quantity;not null"`
	Value           decimal.Decimal     `gorm:"column:value;type:numeric(12,2);not null"`
	PaymentMethod   enums.PaymentMethod `gorm:"column:payment_method;type:text;not null"`
	PurchasedAt     time.Time           `gorm:"column:purchased_at;not null;index:idx_purchases_customer_date,priority:2"`
	DeliveryAddress string              `gorm:"column:delivery_address;type:text"`
}

// Reference renders the display id {saleId}_item_{lineIndex}_{productId}.
func (p Purchase) Reference() string {
	return fmt.Sprintf("%s_item_%d_%s", p.SaleID, p.LineIndex, p.ProductID)
}
