package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"cryptofolio/internal/models"
	"cryptofolio/internal/trading"
	"cryptofolio/pkg/utils"
)

func newCalcCmd(app *App) *cobra.Command {
	var (
		coin        string
		entry       float64
		exit        float64
		investment  float64
		entryFees   float64
		exitFees    float64
		networkFees float64
		notes       string
		save        bool
	)

	cmd := &cobra.Command{
		Use:   "calc",
		Short: "Run a what-if trade simulation",
		Long: `Compute the outcome of a hypothetical trade.

Quantity is derived from the investment at the entry price. Entry and exit
fees are percentages of the traded value; the network fee is a flat amount
charged on both legs. Use --save to keep the inputs for history browsing.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			sim := models.Simulation{
				Coin:        coin,
				EntryPrice:  entry,
				ExitPrice:   exit,
				Investment:  investment,
				EntryFees:   entryFees,
				ExitFees:    exitFees,
				NetworkFees: networkFees,
				Notes:       notes,
			}

			var result models.SimulationResult
			var err error
			if save {
				if app.Trading == nil {
					return fmt.Errorf("store is not available")
				}
				sim, result, err = app.Trading.SaveSimulation(cmd.Context(), localUserID, sim)
			} else {
				result, err = trading.Simulate(sim)
			}
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"simulation": sim,
					"result":     result,
				})
			}

			output.Bold("Simulation: %s", coin)
			output.Printf("  Investment:  %s @ %s\n", utils.FormatUSD(investment), utils.FormatUSD(entry))
			output.Printf("  Quantity:    %s\n", utils.FormatQuantity(result.Quantity))
			output.Printf("  Entry Fees:  %s\n", utils.FormatUSD(result.EntryFeesPaid))
			output.Printf("  Exit Value:  %s @ %s\n", utils.FormatUSD(result.ExitValue), utils.FormatUSD(exit))
			output.Printf("  Exit Fees:   %s\n", utils.FormatUSD(result.ExitFeesPaid))
			output.Printf("  Profit:      %s (%s)\n",
				output.FormatPnL(result.Profit), output.FormatPercent(result.ProfitPercent))
			if save {
				output.Dim("Saved as %s", sim.ID)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&coin, "coin", "", "coin name (required)")
	cmd.Flags().Float64Var(&entry, "entry", 0, "entry price (required)")
	cmd.Flags().Float64Var(&exit, "exit", 0, "exit price (required)")
	cmd.Flags().Float64Var(&investment, "investment", 0, "amount invested (required)")
	cmd.Flags().Float64Var(&entryFees, "entry-fees", 0, "entry fees percent")
	cmd.Flags().Float64Var(&exitFees, "exit-fees", 0, "exit fees percent")
	cmd.Flags().Float64Var(&networkFees, "network-fees", 0, "flat network fee per leg")
	cmd.Flags().StringVar(&notes, "notes", "", "free-form notes")
	cmd.Flags().BoolVar(&save, "save", false, "persist the simulation")
	cmd.MarkFlagRequired("coin")
	cmd.MarkFlagRequired("entry")
	cmd.MarkFlagRequired("exit")
	cmd.MarkFlagRequired("investment")

	cmd.AddCommand(&cobra.Command{
		Use:   "history",
		Short: "List saved simulations",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Trading == nil {
				return fmt.Errorf("store is not available")
			}

			sims, err := app.Trading.ListSimulations(cmd.Context(), localUserID)
			if err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(sims)
			}
			if len(sims) == 0 {
				output.Dim("No saved simulations.")
				return nil
			}

			table := NewTable(output, "COIN", "ENTRY", "EXIT", "INVESTED", "PROFIT", "SAVED")
			for _, sim := range sims {
				result, err := trading.Simulate(sim)
				if err != nil {
					continue
				}
				table.AddRow(
					sim.Coin,
					utils.FormatUSD(sim.EntryPrice),
					utils.FormatUSD(sim.ExitPrice),
					utils.FormatUSD(sim.Investment),
					output.FormatPnL(result.Profit),
					sim.CreatedAt.Format("2006-01-02 15:04"),
				)
			}
			table.Render()
			return nil
		},
	})

	return cmd
}
