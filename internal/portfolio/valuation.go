// Package portfolio derives aggregate statistics from trade snapshots.
//
// Everything in this package is pure: functions take trades as values and
// never touch storage, so callers re-run them over whatever snapshot the
// store handed back.
package portfolio

import (
	"sort"
	"time"

	"cryptofolio/internal/models"
)

// Summary holds the aggregate figures for a set of trades.
type Summary struct {
	TotalInvestment float64 `json:"totalInvestment"`
	CurrentValue    float64 `json:"currentValue"`
	TotalProfit     float64 `json:"totalProfit"`
	TotalROI        float64 `json:"totalROI"` // percent
}

// ChartPoint is one trade's contribution to the portfolio chart.
type ChartPoint struct {
	Coin       string             `json:"coin"`
	Timestamp  time.Time          `json:"timestamp"`
	Investment float64            `json:"investment"`
	ExitValue  float64            `json:"exitValue"`
	Profit     float64            `json:"profit"`
	Status     models.TradeStatus `json:"status"`
}

// EntryValue returns the value of the trade at entry.
func EntryValue(t models.Trade) float64 {
	return t.EntryPrice * t.Quantity
}

// ProxyExitPrice returns the price used to value the trade right now.
// A closed trade is valued at its realized close price. An open trade is
// valued at the target of its last exit plan in insertion order (not the
// best-priced one), falling back to the entry price when no plan exists,
// so a planless open trade carries zero unrealized profit.
func ProxyExitPrice(t models.Trade) float64 {
	if !t.IsOpen() && t.ClosedAt != nil {
		return t.ClosedAt.Price
	}
	if n := len(t.ExitPlans); n > 0 {
		return t.ExitPlans[n-1].TargetPrice
	}
	return t.EntryPrice
}

// ExitValue returns the trade's current or realized exit value.
func ExitValue(t models.Trade) float64 {
	return ProxyExitPrice(t) * t.Quantity
}

// Profit returns the trade's unrealized or realized profit.
func Profit(t models.Trade) float64 {
	return ExitValue(t) - EntryValue(t)
}

// ProfitPercent returns the trade's profit as a percentage of its entry
// value, or 0 when the entry value is zero.
func ProfitPercent(t models.Trade) float64 {
	entry := EntryValue(t)
	if entry == 0 {
		return 0
	}
	return Profit(t) / entry * 100
}

// Summarize computes the aggregate portfolio figures. An empty portfolio
// yields an all-zero summary; ROI never divides by zero.
func Summarize(trades []models.Trade) Summary {
	var s Summary
	for _, t := range trades {
		s.TotalInvestment += EntryValue(t)
		s.CurrentValue += ExitValue(t)
	}
	s.TotalProfit = s.CurrentValue - s.TotalInvestment
	if s.TotalInvestment > 0 {
		s.TotalROI = s.TotalProfit / s.TotalInvestment * 100
	}
	return s
}

// ChartSeries returns one point per trade, sorted ascending by entry
// timestamp. The sort is stable, so trades sharing a timestamp keep
// their input order.
func ChartSeries(trades []models.Trade) []ChartPoint {
	points := make([]ChartPoint, 0, len(trades))
	for _, t := range trades {
		entry := EntryValue(t)
		exit := ExitValue(t)
		points = append(points, ChartPoint{
			Coin:       t.Coin,
			Timestamp:  parseEntryTime(t.Date, t.Time),
			Investment: entry,
			ExitValue:  exit,
			Profit:     exit - entry,
			Status:     t.Status,
		})
	}
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Timestamp.Before(points[j].Timestamp)
	})
	return points
}

var entryTimeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// parseEntryTime combines the date and time fields into a timestamp.
// Unparseable values sort to the front rather than failing the chart.
func parseEntryTime(date, clock string) time.Time {
	candidate := date
	if clock != "" {
		candidate = date + " " + clock
	}
	for _, layout := range entryTimeLayouts {
		if ts, err := time.Parse(layout, candidate); err == nil {
			return ts
		}
	}
	return time.Time{}
}
