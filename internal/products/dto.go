package products

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/gasflow-backend/pkg/db/models"
	"github.com/angelmondragon/gasflow-backend/pkg/enums"
)

// Prices is the price table of a product, one entry per payment method.
type Prices struct {
	Credit decimal.Decimal `json:"credito"`
	Debit  decimal.Decimal `json:"debito"`
	Cash   decimal.Decimal `json:"dinheiro"`
	Pix    decimal.Decimal `json:"pix"`
}

// BindingDTO describes one stock binding.
type BindingDTO struct {
	StockVariableID uuid.UUID              `json:"stock_variable_id" validate:"required"`
	Interaction     enums.StockInteraction `json:"interaction" validate:"required"`
}

// ProductDTO is the API view of a product.
type ProductDTO struct {
	ID       uuid.UUID    `json:"id"`
	Name     string       `json:"name"`
	Prices   Prices       `json:"prices"`
	Bindings []BindingDTO `json:"bindings"`
}

// ProductInput carries the full set of editable product fields.
type ProductInput struct {
	Name     string       `json:"name" validate:"required,max=160"`
	Prices   Prices       `json:"prices"`
	Bindings []BindingDTO `json:"bindings" validate:"required,min=1,dive"`
}

// Quote is the price of qty units for one payment method.
type Quote struct {
	ProductID uuid.UUID           `json:"product_id"`
	Method    enums.PaymentMethod `json:"payment_method"`
	Quantity  int                 `json:"quantity"`
	UnitPrice decimal.Decimal     `json:"unit_price"`
	Subtotal  decimal.Decimal     `json:"subtotal"`
}

// FromModel maps a product and its bindings.
func FromModel(m models.Product) ProductDTO {
	dto := ProductDTO{
		ID:   m.ID,
		Name: m.Name,
		Prices: Prices{
			Credit: m.PriceCredit,
			Debit:  m.PriceDebit,
			Cash:   m.PriceCash,
			Pix:    m.PricePix,
		},
		Bindings: make([]BindingDTO, 0, len(m.Bindings)),
	}
	for _, b := range m.Bindings {
		dto.Bindings = append(dto.Bindings, BindingDTO{StockVariableID: b.StockVariableID, Interaction: b.Interaction})
	}
	return dto
}

func (in ProductInput) toModel() *models.Product {
	product := &models.Product{
		Name:        in.Name,
		PriceCredit: in.Prices.Credit,
		PriceDebit:  in.Prices.Debit,
		PriceCash:   in.Prices.Cash,
		PricePix:    in.Prices.Pix,
	}
	for i, b := range in.Bindings {
		product.Bindings = append(product.Bindings, models.StockBinding{
			Position:        i,
			StockVariableID: b.StockVariableID,
			Interaction:     b.Interaction,
		})
	}
	return product
}
