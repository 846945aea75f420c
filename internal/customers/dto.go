package customers

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/gasflow-backend/pkg/db/models"
	"github.com/angelmondragon/gasflow-backend/pkg/enums"
	"github.com/angelmondragon/gasflow-backend/pkg/phone"
)

// CustomerDTO is the API view of a customer.
type CustomerDTO struct {
	ID             uuid.UUID  `json:"id"`
	Name           string     `json:"name"`
	Phone          string     `json:"phone"`
	PhoneDisplay   string     `json:"phone_display,omitempty"`
	Notes          string     `json:"notes"`
	RegisteredAt   time.Time  `json:"registered_at"`
	LastPurchaseAt *time.Time `json:"last_purchase_at,omitempty"`
}

// CustomerInput carries editable customer fields.
type CustomerInput struct {
	Name  string `json:"name" validate:"required,max=160"`
	Phone string `json:"phone" validate:"max=40"`
	Notes string `json:"notes" validate:"max=1000"`
}

// PurchaseDTO is one purchase history entry.
type PurchaseDTO struct {
	Reference       string              `json:"reference"`
	SaleID          uuid.UUID           `json:"sale_id"`
	LineIndex       int                 `json:"line_index"`
	ProductID       uuid.UUID           `json:"product_id"`
	ProductName     string              `json:"product_name"`
	Quantity        int                 `json:"quantity"`
	Value           decimal.Decimal     `json:"value"`
	PaymentMethod   enums.PaymentMethod `json:"payment_method"`
	PurchasedAt     time.Time           `json:"purchased_at"`
	DeliveryAddress string              `json:"delivery_address"`
}

// FromModel maps a customer into its DTO.
func FromModel(m models.Customer, region string) CustomerDTO {
	dto := CustomerDTO{
		ID:           m.ID,
		Name:         m.Name,
		Phone:        m.Phone,
		Notes:        m.Notes,
		RegisteredAt: m.CreatedAt,
	}
	if m.Phone != "" {
		dto.PhoneDisplay = phone.Display(m.Phone, region)
	}
	return dto
}

// PurchaseFromModel maps a history entry.
func PurchaseFromModel(m models.Purchase) PurchaseDTO {
	return PurchaseDTO{
		Reference:       m.Reference(),
		SaleID:          m.SaleID,
		LineIndex:       m.LineIndex,
		ProductID:       m.ProductID,
		ProductName:     m.ProductName,
		Quantity:        m.Quantity,
		Value:           m.Value,
		PaymentMethod:   m.PaymentMethod,
		PurchasedAt:     m.PurchasedAt,
		DeliveryAddress: m.DeliveryAddress,
	}
}
