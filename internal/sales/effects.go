package sales

import (
	"context"
	"errors"
	"sort"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/gasflow-backend/pkg/db/models"
	"github.com/angelmondragon/gasflow-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/gasflow-backend/pkg/errors"
)

const (
	saleKeyPrefix  = "sale:"
	stockKeyPrefix = "stock:"
)

func saleKey(id uuid.UUID) string {
	return saleKeyPrefix + id.String()
}

// stockKeys lists the lock keys of every stock variable bound to the products.
func stockKeys(catalog map[uuid.UUID]*models.Product) []string {
	keys := make([]string, 0)
	for _, product := range catalog {
		for _, binding := range product.Bindings {
			keys = append(keys, stockKeyPrefix+binding.StockVariableID.String())
		}
	}
	return keys
}

// resolveCatalog loads every product referenced by ids. Unknown products are a
// validation failure when strict, and skipped otherwise.
func resolveCatalog(ctx context.Context, products ProductCatalog, ids []uuid.UUID, strict bool) (map[uuid.UUID]*models.Product, error) {
	catalog := make(map[uuid.UUID]*models.Product, len(ids))
	for _, id := range ids {
		if _, ok := catalog[id]; ok {
			continue
		}
		product, err := products.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				if strict {
					return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown product").
						WithDetails(map[string]any{"product_id": id})
				}
				continue
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
		}
		catalog[id] = product
	}
	return catalog, nil
}

func inputProductIDs(items []ItemInput) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}
	return ids
}

func lineProductIDs(items []models.SaleItem) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}
	return ids
}

// ensureStock verifies every reducing binding can be served before anything is
// written. Quantities are summed per stock variable so two lines drawing on
// the same variable are checked together.
func ensureStock(ctx context.Context, ledger StockLedger, catalog map[uuid.UUID]*models.Product, items []models.SaleItem) error {
	required := make(map[uuid.UUID]int)
	for _, item := range items {
		product := catalog[item.ProductID]
		if product == nil {
			continue
		}
		for _, binding := range product.Bindings {
			if binding.Interaction == enums.StockInteractionReduces {
				required[binding.StockVariableID] += item.Quantity
			}
		}
	}
	if len(required) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, 0, len(required))
	for id := range required {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

	levels, err := ledger.FindByIDs(ctx, ids)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load stock levels")
	}
	for _, id := range ids {
		level, ok := levels[id]
		if !ok {
			return pkgerrors.New(pkgerrors.CodeValidation, "unknown stock variable").
				WithDetails(map[string]any{"stock_variable_id": id})
		}
		if level.Quantity < required[id] {
			return insufficientStock(level, required[id])
		}
	}
	return nil
}

func insufficientStock(level models.StockVariable, required int) error {
	return pkgerrors.Newf(pkgerrors.CodeValidation, "insufficient stock for %s", level.Name).
		WithDetails(map[string]any{
			"stock_variable_id": level.ID,
			"stock_name":        level.Name,
			"available":         level.Quantity,
			"required":          required,
		})
}

// adjustments counts the units moved per direction for metrics.
type adjustments struct {
	increased  int
	decreased  int
	shortfalls []shortfall
}

// shortfall is an undo the ledger could not cover because the stock was
// already used elsewhere.
type shortfall struct {
	stockVariableID uuid.UUID
	units           int
}

// applyLine performs the forward stock effect of one sold line.
func applyLine(ctx context.Context, ledger StockLedger, product *models.Product, qty int, adj *adjustments) error {
	for _, binding := range product.Bindings {
		switch binding.Interaction {
		case enums.StockInteractionReduces:
			ok, err := ledger.Decrease(ctx, binding.StockVariableID, qty)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decrease stock")
			}
			if !ok {
				return pkgerrors.New(pkgerrors.CodeValidation, "insufficient stock").
					WithDetails(map[string]any{"stock_variable_id": binding.StockVariableID, "required": qty})
			}
			adj.decreased += qty
		case enums.StockInteractionIncrease:
			if err := ledger.Increase(ctx, binding.StockVariableID, qty); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "increase stock")
			}
			adj.increased += qty
		}
	}
	return nil
}

// reverseLine undoes applyLine. An increase the ledger can no longer take
// back is left in place and noted as a shortfall; Decrease has already
// refused it, so the variable keeps its current quantity.
func reverseLine(ctx context.Context, ledger StockLedger, product *models.Product, qty int, adj *adjustments) error {
	for _, binding := range product.Bindings {
		switch binding.Interaction {
		case enums.StockInteractionReduces:
			if err := ledger.Increase(ctx, binding.StockVariableID, qty); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "restore stock")
			}
			adj.increased += qty
		case enums.StockInteractionIncrease:
			ok, err := ledger.Decrease(ctx, binding.StockVariableID, qty)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "withdraw stock")
			}
			if !ok {
				adj.shortfalls = append(adj.shortfalls, shortfall{stockVariableID: binding.StockVariableID, units: qty})
				continue
			}
			adj.decreased += qty
		}
	}
	return nil
}

// reverseLines undoes every line whose product still exists.
func reverseLines(ctx context.Context, ledger StockLedger, catalog map[uuid.UUID]*models.Product, items []models.SaleItem, adj *adjustments) error {
	for _, item := range items {
		product, ok := catalog[item.ProductID]
		if !ok {
			continue
		}
		if err := reverseLine(ctx, ledger, product, item.Quantity, adj); err != nil {
			return err
		}
	}
	return nil
}

func purchaseEntry(sale *models.Sale, line int, item models.SaleItem, method enums.PaymentMethod) *models.Purchase {
	return &models.Purchase{
		CustomerID:      sale.CustomerID,
		SaleID:          sale.ID,
		LineIndex:       line,
		ProductID:       item.ProductID,
		ProductName:     item.ProductName,
		Quantity:        item.Quantity,
		Value:           item.Subtotal,
		PaymentMethod:   method,
		PurchasedAt:     sale.CreatedAt,
		DeliveryAddress: sale.AddressText,
	}
}

func statisticsEntry(sale *models.Sale, line int, item models.SaleItem, method enums.PaymentMethod) *models.SalesRecord {
	return &models.SalesRecord{
		ProductID:     item.ProductID,
		SaleID:        sale.ID,
		LineIndex:     line,
		Quantity:      item.Quantity,
		SoldAt:        sale.CreatedAt,
		PaymentMethod: method,
		Value:         item.Subtotal,
	}
}

// firstMethod is the payment method lines are attributed to.
func firstMethod(payments []models.SalePayment, fallback enums.PaymentMethod) enums.PaymentMethod {
	if len(payments) > 0 {
		return payments[0].Method
	}
	return fallback
}
