package reports

import (
	"context"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/angelmondragon/gasflow-backend/internal/sales"
	"github.com/angelmondragon/gasflow-backend/internal/statistics"
	pkgerrors "github.com/angelmondragon/gasflow-backend/pkg/errors"
)

type courierCashSource interface {
	CourierCash(ctx context.Context, from, to *time.Time) ([]sales.CourierCashRow, error)
}

type productTotalsSource interface {
	Totals(ctx context.Context, from, to *time.Time) ([]statistics.ProductTotal, error)
}

// Service builds spreadsheet exports from live sales data.
type Service interface {
	CourierCash(ctx context.Context, from, to *time.Time) (*excelize.File, error)
	ProductSales(ctx context.Context, from, to *time.Time) (*excelize.File, error)
}

type service struct {
	cash     courierCashSource
	products productTotalsSource
	loc      *time.Location
}

func NewService(cash courierCashSource, products productTotalsSource, loc *time.Location) (Service, error) {
	if cash == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "courier cash source required")
	}
	if products == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "product totals source required")
	}
	if loc == nil {
		loc = time.UTC
	}
	return &service{cash: cash, products: products, loc: loc}, nil
}

func (s *service) CourierCash(ctx context.Context, from, to *time.Time) (*excelize.File, error) {
	rows, err := s.cash.CourierCash(ctx, from, to)
	if err != nil {
		return nil, pkgerrors.Passthrough(err, pkgerrors.CodeDependency, "load courier cash")
	}
	file, err := BuildCourierCash(rows, Period{From: from, To: to}, s.loc)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build courier cash workbook")
	}
	return file, nil
}

func (s *service) ProductSales(ctx context.Context, from, to *time.Time) (*excelize.File, error) {
	rows, err := s.products.Totals(ctx, from, to)
	if err != nil {
		return nil, pkgerrors.Passthrough(err, pkgerrors.CodeDependency, "load product totals")
	}
	file, err := BuildProductSales(rows, Period{From: from, To: to}, s.loc)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build product sales workbook")
	}
	return file, nil
}
