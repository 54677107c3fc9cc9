package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"cryptofolio/pkg/utils"
)

func newMarketCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "market <query>",
		Short: "Look up market data for a coin",
		Long: `Search CoinGecko for a coin and show its current market snapshot.

The public API rate-limits aggressively; lookups are paced and a 429 is
reported as a retryable condition rather than an error in your data.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			query := strings.Join(args, " ")

			snapshot, err := app.Market.Lookup(cmd.Context(), query)
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(snapshot)
			}

			output.Bold("%s (%s)", snapshot.Name, strings.ToUpper(snapshot.Symbol))
			if snapshot.MarketCapRank > 0 {
				output.Dim("Rank #%d", snapshot.MarketCapRank)
			}
			output.Println()

			output.Printf("  Price:        %s (%s 24h)\n",
				utils.FormatUSD(snapshot.CurrentPrice),
				output.FormatPercent(snapshot.PriceChangePct24h))
			output.Printf("  Market Cap:   %s\n", utils.FormatCompact(snapshot.MarketCap))
			output.Printf("  Volume 24h:   %s\n", utils.FormatCompact(snapshot.TotalVolume))
			output.Printf("  ATH:          %s (%s)\n",
				utils.FormatUSD(snapshot.ATH), output.FormatPercent(snapshot.ATHChangePct))
			output.Printf("  ATL:          %s (%s)\n",
				utils.FormatUSD(snapshot.ATL), output.FormatPercent(snapshot.ATLChangePct))
			if snapshot.CirculatingSupply > 0 {
				output.Printf("  Circulating:  %s\n", utils.FormatCompact(snapshot.CirculatingSupply))
			}
			if snapshot.MaxSupply > 0 {
				output.Printf("  Max Supply:   %s\n", utils.FormatCompact(snapshot.MaxSupply))
			}
			if snapshot.Homepage != "" {
				output.Dim("  %s", snapshot.Homepage)
			}
			return nil
		},
	}
}
