package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/receipt-generator/internal/currency"
	"github.com/ginjaninja78/receipt-generator/internal/history"
)

var (
	historyLimit    int
	historyRunID    string
	historyCustomer string
)

// historyCmd lists receipts recorded by earlier render runs.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List previously rendered receipts",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !mainConfig.History.Enabled {
			return fmt.Errorf("render history is disabled in %s", cfgFile)
		}

		store, err := history.Open(cmd.Context(), mainConfig.History.Path)
		if err != nil {
			return err
		}
		defer store.Close()

		entries, err := store.List(cmd.Context(), history.Filter{
			RunID:      historyRunID,
			CustomerID: historyCustomer,
			Limit:      historyLimit,
		})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(entries) == 0 {
			fmt.Fprintln(out, "No receipts recorded.")
			return nil
		}

		f := currency.New(mainConfig.Receipt.CurrencySymbol)
		rows := make([][]string, 0, len(entries))
		for _, e := range entries {
			overflow := ""
			if e.Overflow {
				overflow = "yes"
			}
			rows = append(rows, []string{
				e.RenderedAt.Local().Format(time.DateTime),
				e.Date,
				e.CustomerID,
				e.CustomerName,
				strconv.Itoa(e.Items),
				f.Format(e.Total),
				overflow,
				e.Path,
			})
		}

		fmt.Fprintln(out, renderTable(
			[]string{"Rendered", "Date", "Customer ID", "Customer", "Items", "Total", "Overflow", "Path"},
			rows,
			[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft, alignLeft},
		))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of receipts to list (0 for all)")
	historyCmd.Flags().StringVar(&historyRunID, "run", "", "Only list receipts from this run ID")
	historyCmd.Flags().StringVar(&historyCustomer, "customer", "", "Only list receipts for this customer ID")
}
