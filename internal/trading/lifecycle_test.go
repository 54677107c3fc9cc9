package trading

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "cryptofolio/internal/errors"
	"cryptofolio/internal/models"
)

func TestNewTrade(t *testing.T) {
	t.Run("valid inputs", func(t *testing.T) {
		trade, err := NewTrade("bitcoin", 50000, 0.5, 0.1, "2025-01-10", "09:30", "dca buy")
		require.NoError(t, err)
		assert.NotEmpty(t, trade.ID)
		assert.Equal(t, "bitcoin", trade.Coin)
		assert.Equal(t, models.TradeOpen, trade.Status)
		assert.Empty(t, trade.ExitPlans)
		assert.Equal(t, "2025-01-10", trade.Date)
		assert.Nil(t, trade.ClosedAt)
	})

	t.Run("defaults date and time to now", func(t *testing.T) {
		fixed := time.Date(2025, 3, 14, 15, 9, 0, 0, time.UTC)
		restore := now
		now = func() time.Time { return fixed }
		defer func() { now = restore }()

		trade, err := NewTrade("bitcoin", 50000, 0.5, 0, "", "", "")
		require.NoError(t, err)
		assert.Equal(t, "2025-03-14", trade.Date)
		assert.Equal(t, "15:09", trade.Time)
	})

	t.Run("rejects invalid inputs", func(t *testing.T) {
		cases := []struct {
			name  string
			coin  string
			entry float64
			qty   float64
			fees  float64
		}{
			{"empty coin", "", 100, 1, 0},
			{"whitespace coin", "   ", 100, 1, 0},
			{"zero entry price", "btc", 0, 1, 0},
			{"negative entry price", "btc", -1, 1, 0},
			{"zero quantity", "btc", 100, 0, 0},
			{"negative fees", "btc", 100, 1, -1},
			{"fees above 100", "btc", 100, 1, 101},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				_, err := NewTrade(tc.coin, tc.entry, tc.qty, tc.fees, "", "", "")
				var validationErr *apperrors.ValidationError
				assert.ErrorAs(t, err, &validationErr)
			})
		}
	})
}

func TestAddExitPlan(t *testing.T) {
	base, err := NewTrade("bitcoin", 50000, 1, 0, "2025-01-10", "09:30", "")
	require.NoError(t, err)

	t.Run("appends a pending plan", func(t *testing.T) {
		updated, err := AddExitPlan(base, 60000, 0.5, 45000, "first target")
		require.NoError(t, err)
		require.Len(t, updated.ExitPlans, 1)
		assert.Equal(t, models.PlanPending, updated.ExitPlans[0].Status)
		assert.Equal(t, 60000.0, updated.ExitPlans[0].TargetPrice)
		// The input snapshot is untouched.
		assert.Empty(t, base.ExitPlans)
	})

	t.Run("rejects plans that oversell the position", func(t *testing.T) {
		withPlan, err := AddExitPlan(base, 60000, 0.7, 0, "")
		require.NoError(t, err)
		_, err = AddExitPlan(withPlan, 65000, 0.4, 0, "")
		var validationErr *apperrors.ValidationError
		assert.ErrorAs(t, err, &validationErr)
	})

	t.Run("cancelled plans do not count against the quantity", func(t *testing.T) {
		withPlan := base.Clone()
		withPlan.ExitPlans = []models.ExitPlan{
			{ID: "old", TargetPrice: 60000, Quantity: 0.9, Status: models.PlanCancelled},
		}
		_, err := AddExitPlan(withPlan, 65000, 0.5, 0, "")
		assert.NoError(t, err)
	})

	t.Run("rejects closed trades", func(t *testing.T) {
		closed := base.Clone()
		closed.Status = models.TradeWon
		_, err := AddExitPlan(closed, 60000, 0.5, 0, "")
		assert.ErrorIs(t, err, apperrors.ErrTradeClosed)
	})
}

func TestRemoveExitPlan(t *testing.T) {
	base, err := NewTrade("bitcoin", 50000, 1, 0, "", "", "")
	require.NoError(t, err)
	withPlans, err := AddExitPlan(base, 60000, 0.4, 0, "")
	require.NoError(t, err)
	withPlans, err = AddExitPlan(withPlans, 70000, 0.4, 0, "")
	require.NoError(t, err)

	t.Run("removes by id and keeps order", func(t *testing.T) {
		updated, err := RemoveExitPlan(withPlans, withPlans.ExitPlans[0].ID)
		require.NoError(t, err)
		require.Len(t, updated.ExitPlans, 1)
		assert.Equal(t, 70000.0, updated.ExitPlans[0].TargetPrice)
	})

	t.Run("unknown plan id is a no-op", func(t *testing.T) {
		updated, err := RemoveExitPlan(withPlans, "does-not-exist")
		require.NoError(t, err)
		assert.Len(t, updated.ExitPlans, 2)
	})

	t.Run("rejects closed trades", func(t *testing.T) {
		closed := withPlans.Clone()
		closed.Status = models.TradeLost
		_, err := RemoveExitPlan(closed, withPlans.ExitPlans[0].ID)
		assert.ErrorIs(t, err, apperrors.ErrTradeClosed)
	})
}

func TestExecutePlan(t *testing.T) {
	base, err := NewTrade("bitcoin", 50000, 1, 0, "", "", "")
	require.NoError(t, err)
	withPlans, err := AddExitPlan(base, 60000, 0.5, 0, "")
	require.NoError(t, err)
	withPlans, err = AddExitPlan(withPlans, 70000, 0.5, 0, "")
	require.NoError(t, err)
	chosen := withPlans.ExitPlans[0].ID
	other := withPlans.ExitPlans[1].ID

	t.Run("closes the trade through the chosen plan", func(t *testing.T) {
		closed, err := ExecutePlan(withPlans, chosen, OutcomeWon, 61000)
		require.NoError(t, err)

		assert.Equal(t, models.TradeWon, closed.Status)
		assert.Equal(t, chosen, closed.SelectedPlanID)
		require.NotNil(t, closed.ClosedAt)
		assert.Equal(t, 61000.0, closed.ClosedAt.Price)

		assert.Equal(t, models.PlanExecuted, closed.Plan(chosen).Status)
		assert.Equal(t, models.PlanCancelled, closed.Plan(other).Status)

		// The input snapshot stays open; the transition is all-or-nothing.
		assert.Equal(t, models.TradeOpen, withPlans.Status)
		assert.Equal(t, models.PlanPending, withPlans.ExitPlans[0].Status)
	})

	t.Run("exactly one plan ends up executed", func(t *testing.T) {
		closed, err := ExecutePlan(withPlans, other, OutcomeLost, 40000)
		require.NoError(t, err)
		executed := 0
		for _, p := range closed.ExitPlans {
			switch p.Status {
			case models.PlanExecuted:
				executed++
			case models.PlanCancelled:
			default:
				t.Fatalf("plan %s left in status %s", p.ID, p.Status)
			}
		}
		assert.Equal(t, 1, executed)
	})

	t.Run("rejects unknown plan", func(t *testing.T) {
		_, err := ExecutePlan(withPlans, "nope", OutcomeWon, 61000)
		assert.ErrorIs(t, err, apperrors.ErrPlanNotFound)
	})

	t.Run("rejects invalid outcome and price", func(t *testing.T) {
		var validationErr *apperrors.ValidationError
		_, err := ExecutePlan(withPlans, chosen, Outcome("breakeven"), 61000)
		assert.ErrorAs(t, err, &validationErr)
		_, err = ExecutePlan(withPlans, chosen, OutcomeWon, 0)
		assert.ErrorAs(t, err, &validationErr)
	})

	t.Run("rejects an already closed trade", func(t *testing.T) {
		closed, err := ExecutePlan(withPlans, chosen, OutcomeWon, 61000)
		require.NoError(t, err)
		_, err = ExecutePlan(closed, other, OutcomeWon, 62000)
		assert.ErrorIs(t, err, apperrors.ErrTradeClosed)
	})
}

func TestEditTrade(t *testing.T) {
	base, err := NewTrade("bitcoin", 50000, 1, 0.1, "2025-01-10", "09:30", "original")
	require.NoError(t, err)

	t.Run("patches only the given fields", func(t *testing.T) {
		notes := "updated"
		entry := 51000.0
		updated, err := EditTrade(base, TradePatch{Notes: &notes, EntryPrice: &entry})
		require.NoError(t, err)
		assert.Equal(t, "updated", updated.Notes)
		assert.Equal(t, 51000.0, updated.EntryPrice)
		assert.Equal(t, "bitcoin", updated.Coin)
		assert.Equal(t, "original", base.Notes)
	})

	t.Run("replaces exit plans wholesale", func(t *testing.T) {
		plans := []models.ExitPlan{
			{ID: "p1", TargetPrice: 60000, Quantity: 0.5, Status: models.PlanPending},
		}
		updated, err := EditTrade(base, TradePatch{ExitPlans: &plans})
		require.NoError(t, err)
		require.Len(t, updated.ExitPlans, 1)
		assert.Equal(t, "p1", updated.ExitPlans[0].ID)
	})

	t.Run("re-validates the result", func(t *testing.T) {
		var validationErr *apperrors.ValidationError
		empty := ""
		_, err := EditTrade(base, TradePatch{Coin: &empty})
		assert.ErrorAs(t, err, &validationErr)

		// Shrinking the quantity below the pending plan total is rejected.
		plans := []models.ExitPlan{
			{ID: "p1", TargetPrice: 60000, Quantity: 1, Status: models.PlanPending},
		}
		smaller := 0.5
		_, err = EditTrade(base, TradePatch{ExitPlans: &plans, Quantity: &smaller})
		assert.ErrorAs(t, err, &validationErr)
	})

	t.Run("rejects closed trades", func(t *testing.T) {
		closed := base.Clone()
		closed.Status = models.TradeWon
		notes := "nope"
		_, err := EditTrade(closed, TradePatch{Notes: &notes})
		assert.ErrorIs(t, err, apperrors.ErrTradeClosed)
	})
}
