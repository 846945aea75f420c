package sales

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/gasflow-backend/pkg/db/models"
	"github.com/angelmondragon/gasflow-backend/pkg/enums"
)

// ItemInput is one requested line. A nil UnitPrice is read from the product
// price table for the sale's first payment method.
type ItemInput struct {
	ProductID uuid.UUID        `json:"product_id" validate:"required"`
	Quantity  int              `json:"quantity" validate:"gt=0"`
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty"`
}

type PaymentInput struct {
	Method enums.PaymentMethod `json:"method" validate:"required"`
	Amount decimal.Decimal     `json:"amount"`
}

// CreateInput describes a new sale. A nil Total defaults to the item sum.
type CreateInput struct {
	CustomerID uuid.UUID        `json:"customer_id" validate:"required"`
	AddressID  uuid.UUID        `json:"address_id"`
	CourierID  uuid.UUID        `json:"courier_id"`
	Items      []ItemInput      `json:"items" validate:"required,min=1,dive"`
	Payments   []PaymentInput   `json:"payments" validate:"required,min=1,dive"`
	Total      *decimal.Decimal `json:"total,omitempty"`
	Notes      string           `json:"notes" validate:"omitempty,max=2000"`
}

// EditInput is a partial update. Nil fields keep their stored value; an empty
// Items slice leaves the lines and their stock effects untouched.
type EditInput struct {
	CustomerID *uuid.UUID       `json:"customer_id,omitempty"`
	AddressID  *uuid.UUID       `json:"address_id,omitempty"`
	CourierID  *uuid.UUID       `json:"courier_id,omitempty"`
	Items      []ItemInput      `json:"items,omitempty" validate:"omitempty,dive"`
	Payments   []PaymentInput   `json:"payments,omitempty" validate:"omitempty,dive"`
	Total      *decimal.Decimal `json:"total,omitempty"`
	Notes      *string          `json:"notes,omitempty"`
}

type ItemDTO struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

type PaymentDTO struct {
	Method enums.PaymentMethod `json:"method"`
	Amount decimal.Decimal     `json:"amount"`
}

type SaleDTO struct {
	ID                uuid.UUID        `json:"id"`
	CustomerID        uuid.UUID        `json:"customer_id"`
	AddressID         uuid.UUID        `json:"address_id"`
	CourierID         uuid.UUID        `json:"courier_id"`
	CustomerName      string           `json:"customer_name"`
	CustomerPhone     string           `json:"customer_phone,omitempty"`
	AddressText       string           `json:"address_text"`
	CourierIdentifier string           `json:"courier_identifier,omitempty"`
	Items             []ItemDTO        `json:"items"`
	Payments          []PaymentDTO     `json:"payments"`
	Total             decimal.Decimal  `json:"total"`
	CourierCash       decimal.Decimal  `json:"courier_cash"`
	Status            enums.SaleStatus `json:"status"`
	PaymentPending    bool             `json:"payment_pending"`
	Notes             string           `json:"notes,omitempty"`
	CreatedAt         time.Time        `json:"created_at"`
}

func FromModel(m models.Sale) SaleDTO {
	dto := SaleDTO{
		ID:                m.ID,
		CustomerID:        m.CustomerID,
		AddressID:         m.AddressID,
		CourierID:         m.CourierID,
		CustomerName:      m.CustomerName,
		CustomerPhone:     m.CustomerPhone,
		AddressText:       m.AddressText,
		CourierIdentifier: m.CourierIdentifier,
		Items:             make([]ItemDTO, 0, len(m.Items)),
		Payments:          make([]PaymentDTO, 0, len(m.Payments)),
		Total:             m.Total,
		CourierCash:       CourierCashValue(m.Payments),
		Status:            m.Status,
		PaymentPending:    m.PaymentPending,
		Notes:             m.Notes,
		CreatedAt:         m.CreatedAt,
	}
	for _, item := range m.Items {
		dto.Items = append(dto.Items, ItemDTO{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Subtotal:    item.Subtotal,
		})
	}
	for _, p := range m.Payments {
		dto.Payments = append(dto.Payments, PaymentDTO{Method: p.Method, Amount: p.Amount})
	}
	return dto
}

func FromModels(rows []models.Sale) []SaleDTO {
	out := make([]SaleDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromModel(row))
	}
	return out
}
