// Package trading implements the trade lifecycle and the what-if calculator.
//
// Lifecycle operations are snapshot in, snapshot out: they validate, clone
// and return the mutated trade, leaving the caller's copy untouched. The
// Service in service.go persists the result before handing it back.
package trading

import (
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "cryptofolio/internal/errors"
	"cryptofolio/internal/models"
)

// now is swapped out in tests.
var now = time.Now

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// Outcome is the terminal result of a trade.
type Outcome string

const (
	OutcomeWon  Outcome = "won"
	OutcomeLost Outcome = "lost"
)

// NewTrade validates the inputs and builds an open trade with no exit plans.
func NewTrade(coin string, entryPrice, quantity, fees float64, date, clock, notes string) (models.Trade, error) {
	coin = strings.TrimSpace(coin)
	if coin == "" {
		return models.Trade{}, apperrors.NewValidationError("coin", coin, "coin name must not be empty")
	}
	if entryPrice <= 0 {
		return models.Trade{}, apperrors.NewValidationError("entryPrice", entryPrice, "entry price must be positive")
	}
	if quantity <= 0 {
		return models.Trade{}, apperrors.NewValidationError("quantity", quantity, "quantity must be positive")
	}
	if fees < 0 || fees > 100 {
		return models.Trade{}, apperrors.NewValidationError("fees", fees, "fees must be a percentage between 0 and 100")
	}

	ts := now()
	if date == "" {
		date = ts.Format(dateLayout)
	}
	if clock == "" {
		clock = ts.Format(timeLayout)
	}

	return models.Trade{
		ID:         uuid.NewString(),
		Coin:       coin,
		EntryPrice: entryPrice,
		Quantity:   quantity,
		Fees:       fees,
		ExitPlans:  []models.ExitPlan{},
		Date:       date,
		Time:       clock,
		Notes:      notes,
		Status:     models.TradeOpen,
		CreatedAt:  ts,
	}, nil
}

// AddExitPlan appends a pending exit plan to an open trade. The combined
// quantity of pending plans may not exceed the trade quantity.
func AddExitPlan(t models.Trade, targetPrice, quantity, stopLoss float64, notes string) (models.Trade, error) {
	if !t.IsOpen() {
		return models.Trade{}, apperrors.ErrTradeClosed
	}
	if targetPrice <= 0 {
		return models.Trade{}, apperrors.NewValidationError("targetPrice", targetPrice, "target price must be positive")
	}
	if quantity <= 0 {
		return models.Trade{}, apperrors.NewValidationError("quantity", quantity, "quantity must be positive")
	}
	if stopLoss < 0 {
		return models.Trade{}, apperrors.NewValidationError("stopLoss", stopLoss, "stop loss must not be negative")
	}
	if t.PendingQuantity()+quantity > t.Quantity {
		return models.Trade{}, apperrors.NewValidationError("quantity", quantity,
			"combined exit plan quantity exceeds the trade quantity")
	}

	out := t.Clone()
	out.ExitPlans = append(out.ExitPlans, models.ExitPlan{
		ID:          uuid.NewString(),
		TargetPrice: targetPrice,
		Quantity:    quantity,
		StopLoss:    stopLoss,
		Notes:       notes,
		Status:      models.PlanPending,
		CreatedAt:   now(),
	})
	return out, nil
}

// RemoveExitPlan removes the plan with the given id from an open trade,
// preserving the order of the remaining plans. Removing an unknown plan id
// is a no-op.
func RemoveExitPlan(t models.Trade, planID string) (models.Trade, error) {
	if !t.IsOpen() {
		return models.Trade{}, apperrors.ErrTradeClosed
	}
	out := t.Clone()
	plans := out.ExitPlans[:0]
	for _, p := range out.ExitPlans {
		if p.ID != planID {
			plans = append(plans, p)
		}
	}
	out.ExitPlans = plans
	return out, nil
}

// ExecutePlan closes an open trade through one of its exit plans. The chosen
// plan becomes executed, every other plan is cancelled, and the trade records
// its outcome and close price. The transition is applied on a clone, so it is
// all-or-nothing.
func ExecutePlan(t models.Trade, planID string, outcome Outcome, exitPrice float64) (models.Trade, error) {
	if !t.IsOpen() {
		return models.Trade{}, apperrors.ErrTradeClosed
	}
	if outcome != OutcomeWon && outcome != OutcomeLost {
		return models.Trade{}, apperrors.NewValidationError("outcome", outcome, "outcome must be won or lost")
	}
	if exitPrice <= 0 {
		return models.Trade{}, apperrors.NewValidationError("exitPrice", exitPrice, "exit price must be positive")
	}
	if t.Plan(planID) == nil {
		return models.Trade{}, apperrors.ErrPlanNotFound
	}

	out := t.Clone()
	for i := range out.ExitPlans {
		if out.ExitPlans[i].ID == planID {
			out.ExitPlans[i].Status = models.PlanExecuted
		} else {
			out.ExitPlans[i].Status = models.PlanCancelled
		}
	}

	ts := now()
	out.Status = models.TradeStatus(outcome)
	out.SelectedPlanID = planID
	out.ClosedAt = &models.ClosedAt{
		Date:  ts.Format(dateLayout),
		Time:  ts.Format(timeLayout),
		Price: exitPrice,
	}
	return out, nil
}

// TradePatch describes an edit to an open trade. Nil fields are left alone;
// a non-nil ExitPlans replaces the whole collection.
type TradePatch struct {
	Coin       *string
	EntryPrice *float64
	Quantity   *float64
	Fees       *float64
	Date       *string
	Time       *string
	Notes      *string
	ExitPlans  *[]models.ExitPlan
}

// EditTrade applies a patch to an open trade and re-validates the result.
func EditTrade(t models.Trade, patch TradePatch) (models.Trade, error) {
	if !t.IsOpen() {
		return models.Trade{}, apperrors.ErrTradeClosed
	}

	out := t.Clone()
	if patch.Coin != nil {
		out.Coin = strings.TrimSpace(*patch.Coin)
	}
	if patch.EntryPrice != nil {
		out.EntryPrice = *patch.EntryPrice
	}
	if patch.Quantity != nil {
		out.Quantity = *patch.Quantity
	}
	if patch.Fees != nil {
		out.Fees = *patch.Fees
	}
	if patch.Date != nil {
		out.Date = *patch.Date
	}
	if patch.Time != nil {
		out.Time = *patch.Time
	}
	if patch.Notes != nil {
		out.Notes = *patch.Notes
	}
	if patch.ExitPlans != nil {
		out.ExitPlans = make([]models.ExitPlan, len(*patch.ExitPlans))
		copy(out.ExitPlans, *patch.ExitPlans)
	}

	if out.Coin == "" {
		return models.Trade{}, apperrors.NewValidationError("coin", out.Coin, "coin name must not be empty")
	}
	if out.EntryPrice <= 0 {
		return models.Trade{}, apperrors.NewValidationError("entryPrice", out.EntryPrice, "entry price must be positive")
	}
	if out.Quantity <= 0 {
		return models.Trade{}, apperrors.NewValidationError("quantity", out.Quantity, "quantity must be positive")
	}
	if out.Fees < 0 || out.Fees > 100 {
		return models.Trade{}, apperrors.NewValidationError("fees", out.Fees, "fees must be a percentage between 0 and 100")
	}
	if out.PendingQuantity() > out.Quantity {
		return models.Trade{}, apperrors.NewValidationError("exitPlans", out.PendingQuantity(),
			"combined exit plan quantity exceeds the trade quantity")
	}
	return out, nil
}
