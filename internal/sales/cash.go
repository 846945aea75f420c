package sales

import (
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/gasflow-backend/pkg/db/models"
)

// CourierCashValue sums the payments a courier physically collects. PIX goes
// straight to the business account and is excluded.
func CourierCashValue(payments []models.SalePayment) decimal.Decimal {
	total := decimal.Zero
	for _, p := range payments {
		if p.Method.CountsAsCourierCash() {
			total = total.Add(p.Amount)
		}
	}
	return total
}

// CourierTotal is the cash one courier collected over a set of sales.
type CourierTotal struct {
	CourierID  uuid.UUID       `json:"courier_id"`
	Identifier string          `json:"identifier"`
	Total      decimal.Decimal `json:"total"`
}

// CourierCashTotals groups collected cash per courier. Couriers with nothing
// collected are omitted; the rest are sorted by total, largest first.
func CourierCashTotals(sales []models.Sale) []CourierTotal {
	byCourier := make(map[uuid.UUID]*CourierTotal)
	order := make([]uuid.UUID, 0)
	for _, sale := range sales {
		if sale.CourierID == uuid.Nil {
			continue
		}
		total, ok := byCourier[sale.CourierID]
		if !ok {
			total = &CourierTotal{CourierID: sale.CourierID}
			byCourier[sale.CourierID] = total
			order = append(order, sale.CourierID)
		}
		if sale.CourierIdentifier != "" {
			total.Identifier = sale.CourierIdentifier
		}
		total.Total = total.Total.Add(CourierCashValue(sale.Payments))
	}

	out := make([]CourierTotal, 0, len(order))
	for _, id := range order {
		if total := byCourier[id]; total.Total.IsPositive() {
			out = append(out, *total)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Total.GreaterThan(out[j].Total)
	})
	return out
}

// CourierCashRow reconciles one courier over a period: cash collected on
// sales against salary advances already paid out.
type CourierCashRow struct {
	CourierID  uuid.UUID       `json:"courier_id"`
	Identifier string          `json:"identifier"`
	Collected  decimal.Decimal `json:"collected"`
	Advanced   decimal.Decimal `json:"advanced"`
	Balance    decimal.Decimal `json:"balance"`
}

// reconcile merges collected totals with advances. Couriers that only have
// advances are included too.
func reconcile(collected []CourierTotal, advanced map[uuid.UUID]decimal.Decimal, identifiers map[uuid.UUID]string) []CourierCashRow {
	rows := make([]CourierCashRow, 0, len(collected)+len(advanced))
	seen := make(map[uuid.UUID]struct{}, len(collected))
	for _, c := range collected {
		seen[c.CourierID] = struct{}{}
		adv := advanced[c.CourierID]
		identifier := c.Identifier
		if name, ok := identifiers[c.CourierID]; ok && name != "" {
			identifier = name
		}
		rows = append(rows, CourierCashRow{
			CourierID:  c.CourierID,
			Identifier: identifier,
			Collected:  c.Total,
			Advanced:   adv,
			Balance:    c.Total.Sub(adv),
		})
	}
	for courierID, adv := range advanced {
		if _, ok := seen[courierID]; ok {
			continue
		}
		rows = append(rows, CourierCashRow{
			CourierID:  courierID,
			Identifier: identifiers[courierID],
			Collected:  decimal.Zero,
			Advanced:   adv,
			Balance:    adv.Neg(),
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if c := rows[i].Collected.Cmp(rows[j].Collected); c != 0 {
			return c > 0
		}
		return rows[i].Identifier < rows[j].Identifier
	})
	return rows
}
