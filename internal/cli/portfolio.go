package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/spf13/cobra"

	apperrors "cryptofolio/internal/errors"
	"cryptofolio/internal/models"
	"cryptofolio/internal/portfolio"
	"cryptofolio/internal/trading"
	"cryptofolio/pkg/utils"
)

func newPortfolioCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "portfolio",
		Short: "Manage the trading journal",
		Long:  "Record trades, plan exits, close positions and review performance.",
	}

	cmd.AddCommand(newPortfolioListCmd(app))
	cmd.AddCommand(newPortfolioAddCmd(app))
	cmd.AddCommand(newPortfolioPlanCmd(app))
	cmd.AddCommand(newPortfolioExecuteCmd(app))
	cmd.AddCommand(newPortfolioDeleteCmd(app))
	cmd.AddCommand(newPortfolioStatsCmd(app))
	cmd.AddCommand(newPortfolioExportCmd(app))

	return cmd
}

func newPortfolioListCmd(app *App) *cobra.Command {
	var openOnly bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List trades",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Trading == nil {
				return fmt.Errorf("store is not available")
			}

			trades, err := app.Trading.ListTrades(cmd.Context(), localUserID)
			if err != nil {
				return err
			}
			if openOnly {
				filtered := trades[:0]
				for _, t := range trades {
					if t.IsOpen() {
						filtered = append(filtered, t)
					}
				}
				trades = filtered
			}

			if output.IsJSON() {
				return output.JSON(trades)
			}
			if len(trades) == 0 {
				output.Dim("No trades recorded.")
				return nil
			}

			table := NewTable(output, "ID", "COIN", "ENTRY", "QTY", "EXIT", "PROFIT", "ROI", "PLANS", "STATUS")
			for _, t := range trades {
				table.AddRow(
					shortID(t.ID),
					t.Coin,
					utils.FormatUSD(t.EntryPrice),
					utils.FormatQuantity(t.Quantity),
					utils.FormatUSD(portfolio.ProxyExitPrice(t)),
					output.FormatPnL(portfolio.Profit(t)),
					output.FormatPercent(portfolio.ProfitPercent(t)),
					fmt.Sprintf("%d", len(t.ExitPlans)),
					output.StatusTag(string(t.Status)),
				)
			}
			table.Render()
			return nil
		},
	}

	cmd.Flags().BoolVar(&openOnly, "open", false, "only show open trades")
	return cmd
}

func newPortfolioAddCmd(app *App) *cobra.Command {
	var (
		coin     string
		entry    float64
		quantity float64
		fees     float64
		date     string
		clock    string
		notes    string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a new trade",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Trading == nil {
				return fmt.Errorf("store is not available")
			}

			trade, err := app.Trading.CreateTrade(cmd.Context(), localUserID,
				coin, entry, quantity, fees, date, clock, notes)
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(trade)
			}
			output.Success("Trade recorded: %s %s @ %s", trade.Coin,
				utils.FormatQuantity(trade.Quantity), utils.FormatUSD(trade.EntryPrice))
			output.Dim("ID: %s", trade.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&coin, "coin", "", "coin name (required)")
	cmd.Flags().Float64Var(&entry, "entry", 0, "entry price (required)")
	cmd.Flags().Float64Var(&quantity, "quantity", 0, "quantity bought (required)")
	cmd.Flags().Float64Var(&fees, "fees", 0, "entry fees percent")
	cmd.Flags().StringVar(&date, "date", "", "entry date YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&clock, "time", "", "entry time HH:MM (default now)")
	cmd.Flags().StringVar(&notes, "notes", "", "free-form notes")
	cmd.MarkFlagRequired("coin")
	cmd.MarkFlagRequired("entry")
	cmd.MarkFlagRequired("quantity")

	return cmd
}

func newPortfolioPlanCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Manage exit plans",
	}

	var (
		target   float64
		quantity float64
		stop     float64
		notes    string
	)
	addCmd := &cobra.Command{
		Use:   "add <trade-id>",
		Short: "Add an exit plan to an open trade",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			trade, err := resolveTrade(cmd, app, args[0])
			if err != nil {
				return err
			}

			updated, err := app.Trading.AddExitPlan(cmd.Context(), localUserID, trade.ID,
				target, quantity, stop, notes)
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(updated)
			}
			output.Success("Exit plan added to %s (%d plans)", updated.Coin, len(updated.ExitPlans))
			printPlans(output, updated)
			return nil
		},
	}
	addCmd.Flags().Float64Var(&target, "target", 0, "target price (required)")
	addCmd.Flags().Float64Var(&quantity, "quantity", 0, "quantity to sell (required)")
	addCmd.Flags().Float64Var(&stop, "stop", 0, "stop loss price")
	addCmd.Flags().StringVar(&notes, "notes", "", "free-form notes")
	addCmd.MarkFlagRequired("target")
	addCmd.MarkFlagRequired("quantity")
	cmd.AddCommand(addCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "remove <trade-id> <plan-id>",
		Short: "Remove an exit plan from an open trade",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			trade, err := resolveTrade(cmd, app, args[0])
			if err != nil {
				return err
			}

			updated, err := app.Trading.RemoveExitPlan(cmd.Context(), localUserID, trade.ID, args[1])
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(updated)
			}
			output.Success("Exit plan removed from %s (%d plans left)", updated.Coin, len(updated.ExitPlans))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list <trade-id>",
		Short: "List a trade's exit plans",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			trade, err := resolveTrade(cmd, app, args[0])
			if err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(trade.ExitPlans)
			}
			printPlans(output, *trade)
			return nil
		},
	})

	return cmd
}

func newPortfolioExecuteCmd(app *App) *cobra.Command {
	var (
		planID    string
		outcome   string
		exitPrice float64
	)

	cmd := &cobra.Command{
		Use:   "execute <trade-id>",
		Short: "Close a trade through one of its exit plans",
		Long: `Close an open trade by executing one of its exit plans.

The chosen plan is marked executed, every other plan is cancelled, and the
trade moves to won or lost at the given exit price.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			trade, err := resolveTrade(cmd, app, args[0])
			if err != nil {
				return err
			}

			updated, err := app.Trading.ExecutePlan(cmd.Context(), localUserID, trade.ID,
				planID, trading.Outcome(outcome), exitPrice)
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(updated)
			}
			output.Success("Trade %s closed as %s @ %s", updated.Coin,
				output.StatusTag(string(updated.Status)), utils.FormatUSD(exitPrice))
			output.Printf("  Profit: %s (%s)\n",
				output.FormatPnL(portfolio.Profit(updated)),
				output.FormatPercent(portfolio.ProfitPercent(updated)))
			return nil
		},
	}

	cmd.Flags().StringVar(&planID, "plan", "", "exit plan id to execute (required)")
	cmd.Flags().StringVar(&outcome, "outcome", "", "won or lost (required)")
	cmd.Flags().Float64Var(&exitPrice, "price", 0, "realized exit price (required)")
	cmd.MarkFlagRequired("plan")
	cmd.MarkFlagRequired("outcome")
	cmd.MarkFlagRequired("price")

	return cmd
}

func newPortfolioDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <trade-id>",
		Short: "Delete a trade and its exit plans",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Trading == nil {
				return fmt.Errorf("store is not available")
			}

			trade, err := resolveTrade(cmd, app, args[0])
			if err != nil {
				if apperrors.Is(err, apperrors.ErrTradeNotFound) {
					// Delete is idempotent; an unknown id is not an error.
					output.Dim("Trade not found, nothing to delete.")
					return nil
				}
				return err
			}

			if err := app.Trading.DeleteTrade(cmd.Context(), localUserID, trade.ID); err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(map[string]string{"deleted": trade.ID})
			}
			output.Success("Trade %s deleted", trade.Coin)
			return nil
		},
	}
}

func newPortfolioStatsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show portfolio summary and value history",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Trading == nil {
				return fmt.Errorf("store is not available")
			}

			view, err := app.Trading.Portfolio(cmd.Context(), localUserID)
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(view)
			}

			output.Bold("Portfolio Summary")
			output.Printf("  Invested:      %s\n", utils.FormatUSD(view.Summary.TotalInvestment))
			output.Printf("  Current Value: %s\n", utils.FormatUSD(view.Summary.CurrentValue))
			output.Printf("  Total Profit:  %s\n", output.FormatPnL(view.Summary.TotalProfit))
			output.Printf("  Total ROI:     %s\n", output.FormatPercent(view.Summary.TotalROI))
			output.Println()

			open, won, lost := 0, 0, 0
			for _, t := range view.Trades {
				switch t.Status {
				case models.TradeOpen:
					open++
				case models.TradeWon:
					won++
				case models.TradeLost:
					lost++
				}
			}
			output.Printf("  Trades: %d open, %s won, %s lost\n",
				open, output.Green(fmt.Sprintf("%d", won)), output.Red(fmt.Sprintf("%d", lost)))

			if len(view.Chart) > 0 {
				output.Println()
				output.Bold("Value History")
				table := NewTable(output, "DATE", "COIN", "INVESTED", "VALUE", "PROFIT")
				for _, p := range view.Chart {
					date := "-"
					if !p.Timestamp.IsZero() {
						date = p.Timestamp.Format("2006-01-02 15:04")
					}
					table.AddRow(
						date,
						p.Coin,
						utils.FormatUSD(p.Investment),
						utils.FormatUSD(p.ExitValue),
						output.FormatPnL(p.Profit),
					)
				}
				table.Render()
			}
			return nil
		},
	}
}

// tradeCSVRow is the flat export shape, one row per trade.
type tradeCSVRow struct {
	ID         string  `csv:"id"`
	Coin       string  `csv:"coin"`
	Status     string  `csv:"status"`
	EntryPrice float64 `csv:"entry_price"`
	Quantity   float64 `csv:"quantity"`
	Fees       float64 `csv:"fees_percent"`
	Date       string  `csv:"date"`
	Time       string  `csv:"time"`
	ExitPrice  float64 `csv:"exit_price"`
	Profit     float64 `csv:"profit"`
	ProfitPct  float64 `csv:"profit_percent"`
	PlanCount  int     `csv:"plan_count"`
	Notes      string  `csv:"notes"`
}

func newPortfolioExportCmd(app *App) *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export trades to CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Trading == nil {
				return fmt.Errorf("store is not available")
			}

			trades, err := app.Trading.ListTrades(cmd.Context(), localUserID)
			if err != nil {
				return err
			}

			rows := make([]tradeCSVRow, 0, len(trades))
			for _, t := range trades {
				row := tradeCSVRow{
					ID:         t.ID,
					Coin:       t.Coin,
					Status:     string(t.Status),
					EntryPrice: t.EntryPrice,
					Quantity:   t.Quantity,
					Fees:       t.Fees,
					Date:       t.Date,
					Time:       t.Time,
					Profit:     portfolio.Profit(t),
					ProfitPct:  portfolio.ProfitPercent(t),
					PlanCount:  len(t.ExitPlans),
					Notes:      t.Notes,
				}
				if t.ClosedAt != nil {
					row.ExitPrice = t.ClosedAt.Price
				}
				rows = append(rows, row)
			}

			if outPath == "" || outPath == "-" {
				return gocsv.Marshal(&rows, cmd.OutOrStdout())
			}

			file, err := os.Create(outPath)
			if err != nil {
				return fmt.Errorf("creating export file: %w", err)
			}
			defer file.Close()

			if err := gocsv.Marshal(&rows, file); err != nil {
				return fmt.Errorf("writing export: %w", err)
			}
			output.Success("Exported %d trades to %s", len(rows), outPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outPath, "output", "o", "", "output file (default stdout)")
	return cmd
}

func printPlans(output *Output, trade models.Trade) {
	if len(trade.ExitPlans) == 0 {
		output.Dim("No exit plans.")
		return
	}
	table := NewTable(output, "PLAN ID", "TARGET", "QTY", "STOP", "STATUS", "NOTES")
	for _, p := range trade.ExitPlans {
		table.AddRow(
			shortID(p.ID),
			utils.FormatUSD(p.TargetPrice),
			utils.FormatQuantity(p.Quantity),
			utils.FormatUSD(p.StopLoss),
			output.StatusTag(string(p.Status)),
			p.Notes,
		)
	}
	table.Render()
}

// resolveTrade finds a trade by full id or unique id prefix.
func resolveTrade(cmd *cobra.Command, app *App, idOrPrefix string) (*models.Trade, error) {
	if app.Trading == nil {
		return nil, fmt.Errorf("store is not available")
	}
	trades, err := app.Trading.ListTrades(cmd.Context(), localUserID)
	if err != nil {
		return nil, err
	}

	var match *models.Trade
	for i := range trades {
		if trades[i].ID == idOrPrefix {
			return &trades[i], nil
		}
		if strings.HasPrefix(trades[i].ID, idOrPrefix) {
			if match != nil {
				return nil, fmt.Errorf("trade id prefix %q is ambiguous", idOrPrefix)
			}
			match = &trades[i]
		}
	}
	if match == nil {
		return nil, apperrors.ErrTradeNotFound
	}
	return match, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
