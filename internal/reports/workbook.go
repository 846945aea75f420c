package reports

import (
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/angelmondragon/gasflow-backend/internal/sales"
	"github.com/angelmondragon/gasflow-backend/internal/statistics"
)

const (
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	CourierCashSheet  = "Caixa"
	ProductSalesSheet = "Vendas"

	headerRow = 3
)

// Period is the optional date window printed at the top of a report.
type Period struct {
	From *time.Time
	To   *time.Time
}

func (p Period) label(loc *time.Location) string {
	day := func(t *time.Time) string { return t.In(loc).Format("02/01/2006") }
	switch {
	case p.From != nil && p.To != nil:
		return fmt.Sprintf("Período: %s a %s", day(p.From), day(p.To))
	case p.From != nil:
		return "Período: a partir de " + day(p.From)
	case p.To != nil:
		return "Período: até " + day(p.To)
	default:
		return "Período: todo o histórico"
	}
}

// BuildCourierCash renders collected, advanced and balance per courier.
func BuildCourierCash(rows []sales.CourierCashRow, period Period, loc *time.Location) (*excelize.File, error) {
	sheet := newSheet(CourierCashSheet, "Caixa por entregador", period, loc)
	if sheet.err != nil {
		return nil, sheet.close()
	}

	sheet.header("Entregador", "Recebido", "Vales", "Saldo")
	collected, advanced, balance := decimal.Zero, decimal.Zero, decimal.Zero
	for _, row := range rows {
		sheet.row(row.Identifier, money(row.Collected), money(row.Advanced), money(row.Balance))
		collected = collected.Add(row.Collected)
		advanced = advanced.Add(row.Advanced)
		balance = balance.Add(row.Balance)
	}
	sheet.row("Total", money(collected), money(advanced), money(balance))
	sheet.widths(22, 14)
	return sheet.finish()
}

// BuildProductSales renders sold quantity and value per product.
func BuildProductSales(rows []statistics.ProductTotal, period Period, loc *time.Location) (*excelize.File, error) {
	sheet := newSheet(ProductSalesSheet, "Vendas por produto", period, loc)
	if sheet.err != nil {
		return nil, sheet.close()
	}

	sheet.header("Produto", "Quantidade", "Valor")
	var quantity int64
	value := decimal.Zero
	for _, row := range rows {
		name := row.ProductName
		if name == "" {
			name = row.ProductID.String()
		}
		sheet.row(name, row.Quantity, money(row.Value))
		quantity += row.Quantity
		value = value.Add(row.Value)
	}
	sheet.row("Total", quantity, money(value))
	sheet.widths(30, 14)
	return sheet.finish()
}

// Write streams the workbook and closes it.
func Write(f *excelize.File, w io.Writer) error {
	defer f.Close()
	return f.Write(w)
}

func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

// sheetWriter accumulates the first error so builders stay linear.
type sheetWriter struct {
	file    *excelize.File
	name    string
	next    int
	columns int
	bold    int
	err     error
}

func newSheet(name, title string, period Period, loc *time.Location) *sheetWriter {
	if loc == nil {
		loc = time.UTC
	}
	s := &sheetWriter{file: excelize.NewFile(), name: name, next: headerRow}
	if s.err = s.file.SetSheetName("Sheet1", name); s.err != nil {
		return s
	}
	s.bold, s.err = s.file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	s.set(1, 1, title)
	s.set(1, 2, period.label(loc))
	return s
}

func (s *sheetWriter) set(col, row int, value any) {
	if s.err != nil {
		return
	}
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		s.err = err
		return
	}
	s.err = s.file.SetCellValue(s.name, cell, value)
}

func (s *sheetWriter) header(titles ...string) {
	s.columns = len(titles)
	for i, title := range titles {
		s.set(i+1, s.next, title)
	}
	s.boldRow(s.next)
	s.next++
}

func (s *sheetWriter) row(values ...any) {
	for i, value := range values {
		s.set(i+1, s.next, value)
	}
	s.next++
}

func (s *sheetWriter) boldRow(row int) {
	if s.err != nil || s.columns == 0 {
		return
	}
	first, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		s.err = err
		return
	}
	last, err := excelize.CoordinatesToCellName(s.columns, row)
	if err != nil {
		s.err = err
		return
	}
	s.err = s.file.SetCellStyle(s.name, first, last, s.bold)
}

func (s *sheetWriter) widths(first, rest float64) {
	if s.err != nil || s.columns == 0 {
		return
	}
	s.err = s.file.SetColWidth(s.name, "A", "A", first)
	if s.err != nil || s.columns < 2 {
		return
	}
	last, err := excelize.ColumnNumberToName(s.columns)
	if err != nil {
		s.err = err
		return
	}
	s.err = s.file.SetColWidth(s.name, "B", last, rest)
}

func (s *sheetWriter) finish() (*excelize.File, error) {
	s.boldRow(s.next - 1)
	if s.err != nil {
		return nil, s.close()
	}
	return s.file, nil
}

func (s *sheetWriter) close() error {
	err := s.err
	_ = s.file.Close()
	return err
}
