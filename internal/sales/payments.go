package sales

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/gasflow-backend/pkg/db/models"
	"github.com/angelmondragon/gasflow-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/gasflow-backend/pkg/errors"
)

// paymentTolerance is the shortfall ignored when completing payments.
var paymentTolerance = decimal.NewFromFloat(0.01)

// CompletePayments pads payments so they cover total. An empty list becomes a
// single payment of the whole total; a shortfall above one cent is appended
// with the default method. Overpayment is left as is.
func CompletePayments(payments []PaymentInput, total decimal.Decimal, defaultMethod enums.PaymentMethod) []PaymentInput {
	if !defaultMethod.IsValid() {
		defaultMethod = enums.PaymentMethodCash
	}
	if len(payments) == 0 {
		return []PaymentInput{{Method: defaultMethod, Amount: total}}
	}
	out := make([]PaymentInput, len(payments), len(payments)+1)
	copy(out, payments)

	paid := decimal.Zero
	for _, p := range payments {
		paid = paid.Add(p.Amount)
	}
	if missing := total.Sub(paid); missing.GreaterThan(paymentTolerance) {
		out = append(out, PaymentInput{Method: defaultMethod, Amount: missing})
	}
	return out
}

// Subtotal is quantity times unit price.
func Subtotal(qty int, unitPrice decimal.Decimal) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(qty)))
}

// ItemsTotal sums the item subtotals.
func ItemsTotal(items []models.SaleItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal)
	}
	return total
}

// PriceItems builds priced lines from the catalog. Explicit unit prices are
// kept; missing ones come from the product's price for method.
func PriceItems(catalog map[uuid.UUID]*models.Product, method enums.PaymentMethod, items []ItemInput) ([]models.SaleItem, error) {
	out := make([]models.SaleItem, 0, len(items))
	for i, in := range items {
		product, ok := catalog[in.ProductID]
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown product").
				WithDetails(map[string]any{"product_id": in.ProductID, "line": i})
		}
		var unit decimal.Decimal
		if in.UnitPrice != nil {
			unit = *in.UnitPrice
		} else {
			price, ok := product.PriceFor(method)
			if !ok {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method").
					WithDetails(map[string]any{"method": method})
			}
			unit = price
		}
		out = append(out, models.SaleItem{
			ProductID:   product.ID,
			ProductName: product.Name,
			Quantity:    in.Quantity,
			UnitPrice:   unit,
			Subtotal:    Subtotal(in.Quantity, unit),
		})
	}
	return out, nil
}

// Reprice recalculates every line for a new payment method, the way prices
// are refreshed when the customer changes how they pay.
func Reprice(catalog map[uuid.UUID]*models.Product, method enums.PaymentMethod, items []models.SaleItem) ([]models.SaleItem, error) {
	inputs := make([]ItemInput, 0, len(items))
	for _, item := range items {
		inputs = append(inputs, ItemInput{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	return PriceItems(catalog, method, inputs)
}

func toPayments(in []PaymentInput) []models.SalePayment {
	out := make([]models.SalePayment, 0, len(in))
	for _, p := range in {
		out = append(out, models.SalePayment{Method: p.Method, Amount: p.Amount})
	}
	return out
}

func validatePayments(in []PaymentInput) error {
	for i, p := range in {
		if !p.Method.IsValid() {
			return pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method").
				WithDetails(map[string]any{"method": p.Method, "payment": i})
		}
		if p.Amount.IsNegative() {
			return pkgerrors.New(pkgerrors.CodeValidation, "payment amount must not be negative").
				WithDetails(map[string]any{"payment": i})
		}
	}
	return nil
}

func validateItems(in []ItemInput) error {
	for i, item := range in {
		if item.ProductID == uuid.Nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "product_id is required").
				WithDetails(map[string]any{"line": i})
		}
		if item.Quantity <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive").
				WithDetails(map[string]any{"line": i, "quantity": item.Quantity})
		}
		if item.UnitPrice != nil && item.UnitPrice.IsNegative() {
			return pkgerrors.New(pkgerrors.CodeValidation, "unit price must not be negative").
				WithDetails(map[string]any{"line": i})
		}
	}
	return nil
}
