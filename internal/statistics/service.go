package statistics

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/gasflow-backend/pkg/daterange"
	"github.com/angelmondragon/gasflow-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/gasflow-backend/pkg/errors"
)

type repository interface {
	TotalQuantityInRange(ctx context.Context, productID uuid.UUID, from, to *time.Time) (int64, error)
	InRange(ctx context.Context, from, to *time.Time) ([]models.SalesRecord, error)
}

type productNames interface {
	List(ctx context.Context) ([]models.Product, error)
}

// ProductTotal is the amount of one product sold in a period.
type ProductTotal struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name,omitempty"`
	Quantity    int64           `json:"quantity"`
	Value       decimal.Decimal `json:"value"`
}

// Service answers read-only questions over the sales records. Records are
// written by the sales engine only.
type Service interface {
	ProductQuantity(ctx context.Context, productID uuid.UUID, from, to *time.Time) (int64, error)
	Totals(ctx context.Context, from, to *time.Time) ([]ProductTotal, error)
}

type service struct {
	repo     repository
	products productNames
	loc      *time.Location
}

// NewService wires the statistics reader. products may be nil, in which case
// totals carry ids only.
func NewService(repo repository, products productNames, loc *time.Location) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "statistics repository required")
	}
	if loc == nil {
		loc = time.UTC
	}
	return &service{repo: repo, products: products, loc: loc}, nil
}

// ProductQuantity counts units sold between the start of from's day and the
// end of to's day.
func (s *service) ProductQuantity(ctx context.Context, productID uuid.UUID, from, to *time.Time) (int64, error) {
	r := daterange.Days(from, to, s.loc)
	total, err := s.repo.TotalQuantityInRange(ctx, productID, r.From, r.To)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum product sales")
	}
	return total, nil
}

// Totals groups the period's records per product, best sellers first.
func (s *service) Totals(ctx context.Context, from, to *time.Time) ([]ProductTotal, error) {
	r := daterange.Days(from, to, s.loc)
	rows, err := s.repo.InRange(ctx, r.From, r.To)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load sales records")
	}

	byProduct := make(map[uuid.UUID]*ProductTotal)
	for _, row := range rows {
		total, ok := byProduct[row.ProductID]
		if !ok {
			total = &ProductTotal{ProductID: row.ProductID}
			byProduct[row.ProductID] = total
		}
		total.Quantity += int64(row.Quantity)
		total.Value = total.Value.Add(row.Value)
	}

	if s.products != nil && len(byProduct) > 0 {
		products, err := s.products.List(ctx)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product names")
		}
		for _, p := range products {
			if total, ok := byProduct[p.ID]; ok {
				total.ProductName = p.Name
			}
		}
	}

	out := make([]ProductTotal, 0, len(byProduct))
	for _, total := range byProduct {
		out = append(out, *total)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Quantity != out[j].Quantity {
			return out[i].Quantity > out[j].Quantity
		}
		return out[i].ProductName < out[j].ProductName
	})
	return out, nil
}
