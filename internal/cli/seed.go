package cli

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/angelmondragon/gasflow-backend/internal/products"
	"github.com/angelmondragon/gasflow-backend/internal/stock"
	"github.com/angelmondragon/gasflow-backend/pkg/enums"
)

func init() {
	rootCmd.AddCommand(seedCmd)
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the starter catalog into an empty database",
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := seedCatalog(cmd.Context(), current.services.Stock, current.services.Products)
		if err != nil {
			return err
		}
		if result.skipped {
			fmt.Fprintln(cmd.OutOrStdout(), "catalog already present, nothing to do")
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created %d stock variables and %d products\n", result.variables, result.products)
		return nil
	},
}

type seedVariable struct {
	key      string
	name     string
	quantity int
}

type seedBinding struct {
	variable    string
	interaction enums.StockInteraction
}

type seedProduct struct {
	name                     string
	credit, debit, cash, pix string
	bindings                 []seedBinding
}

var starterVariables = []seedVariable{
	{key: "gas", name: "Gás P13", quantity: 70},
	{key: "water", name: "Água 20L", quantity: 100},
	{key: "regulator", name: "Registro/Mangueira", quantity: 15},
	{key: "gift", name: "Brindes", quantity: 50},
}

var starterProducts = []seedProduct{
	{name: "Gás de Cozinha P13 - Troca", credit: "145", debit: "140", cash: "140", pix: "140",
		bindings: []seedBinding{{"gas", enums.StockInteractionNoEffect}}},
	{name: "Gás de Cozinha P13 - Completo", credit: "350", debit: "350", cash: "350", pix: "350",
		bindings: []seedBinding{{"gas", enums.StockInteractionReduces}}},
	{name: "Água Mineral 20L - Troca", credit: "17", debit: "17", cash: "17", pix: "17",
		bindings: []seedBinding{{"water", enums.StockInteractionNoEffect}}},
	{name: "Água Mineral 20L - Completo", credit: "47", debit: "47", cash: "47", pix: "47",
		bindings: []seedBinding{{"water", enums.StockInteractionReduces}}},
	{name: "Registro Regulador - Com Mangueira", credit: "100", debit: "100", cash: "90", pix: "90",
		bindings: []seedBinding{{"regulator", enums.StockInteractionReduces}}},
	{name: "Gás P13 + Brinde (Isqueiro)", credit: "150", debit: "145", cash: "145", pix: "145",
		bindings: []seedBinding{{"gas", enums.StockInteractionNoEffect}, {"gift", enums.StockInteractionReduces}}},
}

type seedResult struct {
	variables int
	products  int
	skipped   bool
}

// seedCatalog creates the starter stock variables and products. A database
// that already has stock variables is left untouched.
func seedCatalog(ctx context.Context, stockSvc stock.Service, productSvc products.Service) (seedResult, error) {
	existing, err := stockSvc.List(ctx)
	if err != nil {
		return seedResult{}, err
	}
	if len(existing) > 0 {
		return seedResult{skipped: true}, nil
	}

	var result seedResult
	ids := make(map[string]uuid.UUID, len(starterVariables))
	for _, v := range starterVariables {
		created, err := stockSvc.Create(ctx, stock.CreateInput{Name: v.name, Quantity: v.quantity})
		if err != nil {
			return result, fmt.Errorf("seed stock %q: %w", v.name, err)
		}
		ids[v.key] = created.ID
		result.variables++
	}

	for _, p := range starterProducts {
		input := products.ProductInput{
			Name: p.name,
			Prices: products.Prices{
				Credit: decimal.RequireFromString(p.credit),
				Debit:  decimal.RequireFromString(p.debit),
				Cash:   decimal.RequireFromString(p.cash),
				Pix:    decimal.RequireFromString(p.pix),
			},
		}
		for _, b := range p.bindings {
			input.Bindings = append(input.Bindings, products.BindingDTO{StockVariableID: ids[b.variable], Interaction: b.interaction})
		}
		if _, err := productSvc.Create(ctx, input); err != nil {
			return result, fmt.Errorf("seed product %q: %w", p.name, err)
		}
		result.products++
	}
	return result, nil
}
