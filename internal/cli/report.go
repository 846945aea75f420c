package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/xuri/excelize/v2"

	"github.com/angelmondragon/gasflow-backend/internal/reports"
	"github.com/angelmondragon/gasflow-backend/pkg/daterange"
)

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.AddCommand(reportCourierCashCmd)
	reportCmd.AddCommand(reportProductSalesCmd)

	for _, cmd := range []*cobra.Command{reportCourierCashCmd, reportProductSalesCmd} {
		cmd.Flags().String("from", "", "first day, YYYY-MM-DD")
		cmd.Flags().String("to", "", "last day, YYYY-MM-DD")
		cmd.Flags().StringP("out", "o", "", "output .xlsx path")
	}
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Export spreadsheets",
}

var reportCourierCashCmd = &cobra.Command{
	Use:   "courier-cash",
	Short: "Cash collected, advances and balance per courier",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runReport(cmd, "caixa-entregadores", func(ctx context.Context, from, to *time.Time) (*excelize.File, error) {
			return current.services.Reports.CourierCash(ctx, from, to)
		})
	},
}

var reportProductSalesCmd = &cobra.Command{
	Use:   "product-sales",
	Short: "Quantity and value sold per product",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runReport(cmd, "vendas-produtos", func(ctx context.Context, from, to *time.Time) (*excelize.File, error) {
			return current.services.Reports.ProductSales(ctx, from, to)
		})
	},
}

type reportBuilder func(ctx context.Context, from, to *time.Time) (*excelize.File, error)

func runReport(cmd *cobra.Command, prefix string, build reportBuilder) error {
	fromRaw, _ := cmd.Flags().GetString("from")
	toRaw, _ := cmd.Flags().GetString("to")
	out, _ := cmd.Flags().GetString("out")

	from, to, err := parsePeriod(fromRaw, toRaw, current.loc)
	if err != nil {
		return err
	}
	if out == "" {
		out = fmt.Sprintf("%s-%s.xlsx", prefix, time.Now().In(current.loc).Format("20060102"))
	}

	file, err := build(cmd.Context(), from, to)
	if err != nil {
		return err
	}
	dest, err := os.Create(out)
	if err != nil {
		_ = file.Close()
		return fmt.Errorf("create %s: %w", out, err)
	}
	if err := reports.Write(file, dest); err != nil {
		_ = dest.Close()
		return err
	}
	if err := dest.Close(); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "wrote", out)
	return nil
}

func parsePeriod(fromRaw, toRaw string, loc *time.Location) (*time.Time, *time.Time, error) {
	from, err := daterange.ParseDay(fromRaw, loc)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid --from: %w", err)
	}
	to, err := daterange.ParseDay(toRaw, loc)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid --to: %w", err)
	}
	if from != nil && to != nil && to.Before(*from) {
		return nil, nil, fmt.Errorf("--to must not be before --from")
	}
	return from, to, nil
}
