package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/gasflow-backend/pkg/enums"
)

// SalesRecord is one statistics entry: the quantity of a product sold by one
// line of a sale. (SaleID, LineIndex) identifies the originating line.
type SalesRecord struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	ProductID     uuid.UUID           `gorm:"column:product_id;type:uuid;not null;index:idx_sales_records_product_sold,priority:1"`
	SaleID        uuid.UUID           `gorm:"column:sale_id;type:uuid;not null;uniqueIndex:idx_sales_records_sale_line,priority:1"`
	LineIndex     int                 `gorm:"column:line_index;not null;uniqueIndex:idx_sales_records_sale_line,priority:2"`
	Quantity      int                 `gorm:"column:quantity;not null"`
	SoldAt        time.Time           `gorm:"column:sold_at;not null;index:idx_sales_records_product_sold,priority:2"`
	PaymentMethod enums.PaymentMethod `gorm:"column:payment_method;type:text;not null"`
	Value         decimal.Decimal     `gorm:"column:value;type:numeric(12,2);not null"`
}
