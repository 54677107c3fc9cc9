package portfolio

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"cryptofolio/internal/models"
)

func genPrice() gopter.Gen {
	return gen.Float64Range(0.0001, 1e6)
}

func genQuantity() gopter.Gen {
	return gen.Float64Range(0.00000001, 1e6)
}

// Summary totals must equal the sum of per-trade figures, and ROI must be
// consistent with profit over investment.
func TestSummaryConsistency(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("summary totals are the sum of trade values", prop.ForAll(
		func(entries, quantities []float64) bool {
			n := len(entries)
			if len(quantities) < n {
				n = len(quantities)
			}
			trades := make([]models.Trade, 0, n)
			for i := 0; i < n; i++ {
				trades = append(trades, models.Trade{
					Coin:       "coin",
					EntryPrice: entries[i],
					Quantity:   quantities[i],
					Status:     models.TradeOpen,
				})
			}

			s := Summarize(trades)

			var invested, value float64
			for _, tr := range trades {
				invested += EntryValue(tr)
				value += ExitValue(tr)
			}

			if !approxEqual(s.TotalInvestment, invested) || !approxEqual(s.CurrentValue, value) {
				return false
			}
			if !approxEqual(s.TotalProfit, s.CurrentValue-s.TotalInvestment) {
				return false
			}
			if s.TotalInvestment == 0 {
				return s.TotalROI == 0
			}
			return approxEqual(s.TotalROI, s.TotalProfit/s.TotalInvestment*100)
		},
		gen.SliceOf(genPrice()),
		gen.SliceOf(genQuantity()),
	))

	properties.TestingRun(t)
}

// An open trade with no exit plans carries no unrealized profit.
func TestPlanlessTradeHasZeroProfit(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("planless open trade profit is zero", prop.ForAll(
		func(entry, qty float64) bool {
			tr := models.Trade{
				Coin:       "coin",
				EntryPrice: entry,
				Quantity:   qty,
				Status:     models.TradeOpen,
			}
			return approxEqual(Profit(tr), 0)
		},
		genPrice(),
		genQuantity(),
	))

	properties.TestingRun(t)
}

// A closed trade is valued at its close price no matter what plans it holds.
func TestClosedTradeValuedAtClosePrice(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("closed trade uses closedAt price", prop.ForAll(
		func(entry, qty, closePrice, planTarget float64) bool {
			tr := models.Trade{
				Coin:       "coin",
				EntryPrice: entry,
				Quantity:   qty,
				Status:     models.TradeWon,
				ExitPlans: []models.ExitPlan{
					{ID: "p1", TargetPrice: planTarget, Status: models.PlanCancelled},
				},
				ClosedAt: &models.ClosedAt{Date: "2025-01-01", Time: "10:00", Price: closePrice},
			}
			return ProxyExitPrice(tr) == closePrice && approxEqual(ExitValue(tr), closePrice*qty)
		},
		genPrice(),
		genQuantity(),
		genPrice(),
		genPrice(),
	))

	properties.TestingRun(t)
}

func approxEqual(a, b float64) bool {
	if a == b {
		return true
	}
	diff := math.Abs(a - b)
	scale := math.Max(math.Abs(a), math.Abs(b))
	return diff <= 1e-9*math.Max(scale, 1)
}
