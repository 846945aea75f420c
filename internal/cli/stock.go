package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/angelmondragon/gasflow-backend/internal/stock"
)

func init() {
	rootCmd.AddCommand(stockCmd)
	stockCmd.AddCommand(stockListCmd)

	stockListCmd.Flags().Int("below", 0, "only show variables at or below this quantity")
}

var stockCmd = &cobra.Command{
	Use:   "stock",
	Short: "Inspect stock variables",
}

var stockListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print every stock variable with its level",
	RunE: func(cmd *cobra.Command, args []string) error {
		below, _ := cmd.Flags().GetInt("below")

		var (
			rows []stock.VariableDTO
			err  error
		)
		if below > 0 {
			rows, err = current.services.Stock.Low(cmd.Context(), below)
		} else {
			rows, err = current.services.Stock.List(cmd.Context())
		}
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NOME\tQUANTIDADE\tNÍVEL")
		for _, row := range rows {
			fmt.Fprintf(w, "%s\t%d\t%s\n", row.Name, row.Quantity, row.Level)
		}
		return w.Flush()
	},
}
