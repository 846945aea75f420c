package controllers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/angelmondragon/gasflow-backend/api/responses"
	"github.com/angelmondragon/gasflow-backend/api/validators"
	internalreports "github.com/angelmondragon/gasflow-backend/internal/reports"
	"github.com/angelmondragon/gasflow-backend/pkg/logger"
)

type workbookBuilder func(ctx context.Context, from, to *time.Time) (*excelize.File, error)

func CourierCashReport(svc internalreports.Service, loc *time.Location, logg *logger.Logger) http.HandlerFunc {
	return workbookHandler("caixa-entregadores", func(ctx context.Context, from, to *time.Time) (*excelize.File, error) {
		return svc.CourierCash(ctx, from, to)
	}, loc, logg)
}

func ProductSalesReport(svc internalreports.Service, loc *time.Location, logg *logger.Logger) http.HandlerFunc {
	return workbookHandler("vendas-produtos", func(ctx context.Context, from, to *time.Time) (*excelize.File, error) {
		return svc.ProductSales(ctx, from, to)
	}, loc, logg)
}

func workbookHandler(prefix string, build workbookBuilder, loc *time.Location, logg *logger.Logger) http.HandlerFunc {
	if loc == nil {
		loc = time.UTC
	}
	return func(w http.ResponseWriter, r *http.Request) {
		from, to, err := validators.ParseDayRange(r, loc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		file, err := build(r.Context(), from, to)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filename := fmt.Sprintf("%s-%s.xlsx", prefix, time.Now().In(loc).Format("20060102"))
		err = responses.WriteFile(w, internalreports.ContentType, filename, func(out io.Writer) error {
			return internalreports.Write(file, out)
		})
		if err != nil && logg != nil {
			logg.Error(r.Context(), "report.write_failed", err)
		}
	}
}
