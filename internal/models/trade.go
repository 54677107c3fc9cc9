package models

import "time"

// TradeStatus represents the lifecycle state of a trade.
type TradeStatus string

const (
	TradeOpen TradeStatus = "open"
	TradeWon  TradeStatus = "won"
	TradeLost TradeStatus = "lost"
)

// PlanStatus represents the status of an exit plan.
type PlanStatus string

const (
	PlanPending   PlanStatus = "pending"
	PlanExecuted  PlanStatus = "executed"
	PlanCancelled PlanStatus = "cancelled"
)

// ExitPlan represents a planned partial exit of a trade.
type ExitPlan struct {
	ID          string     `json:"id"`
	TargetPrice float64    `json:"targetPrice"`
	Quantity    float64    `json:"quantity"`
	StopLoss    float64    `json:"stopLoss"`
	Notes       string     `json:"notes"`
	Status      PlanStatus `json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// ClosedAt records how an executed trade was closed.
type ClosedAt struct {
	Date  string  `json:"date"`
	Time  string  `json:"time"`
	Price float64 `json:"price"`
}

// Trade represents an open or closed position in a crypto asset.
// ExitPlans preserves insertion order; the plan order is significant
// because an open trade is valued by its last plan's target price.
type Trade struct {
	ID             string      `json:"id"`
	Coin           string      `json:"coin"`
	EntryPrice     float64     `json:"entryPrice"`
	Quantity       float64     `json:"quantity"`
	Fees           float64     `json:"fees"` // percent of entry value, 0-100
	ExitPlans      []ExitPlan  `json:"exitPlans"`
	Date           string      `json:"date"`
	Time           string      `json:"time"`
	Notes          string      `json:"notes"`
	Status         TradeStatus `json:"status"`
	SelectedPlanID string      `json:"selectedPlanId,omitempty"`
	ClosedAt       *ClosedAt   `json:"closedAt,omitempty"`
	CreatedAt      time.Time   `json:"createdAt"`
}

// IsOpen reports whether the trade is still open.
func (t *Trade) IsOpen() bool {
	return t.Status == TradeOpen
}

// Plan returns the exit plan with the given id, or nil.
func (t *Trade) Plan(planID string) *ExitPlan {
	for i := range t.ExitPlans {
		if t.ExitPlans[i].ID == planID {
			return &t.ExitPlans[i]
		}
	}
	return nil
}

// PendingQuantity returns the total quantity held by pending exit plans.
func (t *Trade) PendingQuantity() float64 {
	var total float64
	for _, p := range t.ExitPlans {
		if p.Status == PlanPending {
			total += p.Quantity
		}
	}
	return total
}

// Clone returns a deep copy of the trade. Lifecycle operations work on
// copies so callers keep their snapshots unchanged on failure.
func (t *Trade) Clone() Trade {
	out := *t
	out.ExitPlans = make([]ExitPlan, len(t.ExitPlans))
	copy(out.ExitPlans, t.ExitPlans)
	if t.ClosedAt != nil {
		closed := *t.ClosedAt
		out.ClosedAt = &closed
	}
	return out
}
