package models

import "time"

// Simulation is a saved what-if calculation. Unlike a Trade it has no
// lifecycle: each record is a single compute-and-persist snapshot kept
// for history browsing.
type Simulation struct {
	ID          string    `json:"id"`
	Coin        string    `json:"coin"`
	EntryPrice  float64   `json:"entryPrice"`
	ExitPrice   float64   `json:"exitPrice"`
	Investment  float64   `json:"investment"`
	EntryFees   float64   `json:"entryFees"` // percent
	ExitFees    float64   `json:"exitFees"`  // percent
	NetworkFees float64   `json:"networkFees"`
	Date        string    `json:"date"`
	Time        string    `json:"time"`
	Notes       string    `json:"notes"`
	CreatedAt   time.Time `json:"createdAt"`
}

// SimulationResult holds the derived figures for a simulation.
type SimulationResult struct {
	Quantity      float64 `json:"quantity"`
	EntryFeesPaid float64 `json:"entryFeesPaid"`
	ExitValue     float64 `json:"exitValue"`
	ExitFeesPaid  float64 `json:"exitFeesPaid"`
	Profit        float64 `json:"profit"`
	ProfitPercent float64 `json:"profitPercent"`
}
