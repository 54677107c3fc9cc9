package trading

import (
	apperrors "cryptofolio/internal/errors"
	"cryptofolio/internal/models"
)

// Simulate computes the what-if figures for a simulation. Entry and exit
// fees are percentages of the respective leg's value; the flat network fee
// is charged on both legs.
func Simulate(s models.Simulation) (models.SimulationResult, error) {
	if s.EntryPrice <= 0 {
		return models.SimulationResult{}, apperrors.NewValidationError("entryPrice", s.EntryPrice, "entry price must be positive")
	}
	if s.Investment <= 0 {
		return models.SimulationResult{}, apperrors.NewValidationError("investment", s.Investment, "investment must be positive")
	}
	if s.ExitPrice < 0 {
		return models.SimulationResult{}, apperrors.NewValidationError("exitPrice", s.ExitPrice, "exit price must not be negative")
	}
	if s.EntryFees < 0 || s.EntryFees > 100 {
		return models.SimulationResult{}, apperrors.NewValidationError("entryFees", s.EntryFees, "entry fees must be a percentage between 0 and 100")
	}
	if s.ExitFees < 0 || s.ExitFees > 100 {
		return models.SimulationResult{}, apperrors.NewValidationError("exitFees", s.ExitFees, "exit fees must be a percentage between 0 and 100")
	}
	if s.NetworkFees < 0 {
		return models.SimulationResult{}, apperrors.NewValidationError("networkFees", s.NetworkFees, "network fees must not be negative")
	}

	quantity := s.Investment / s.EntryPrice
	entryFees := s.Investment*s.EntryFees/100 + s.NetworkFees
	exitValue := quantity * s.ExitPrice
	exitFees := exitValue*s.ExitFees/100 + s.NetworkFees
	profit := exitValue - s.Investment - entryFees - exitFees

	return models.SimulationResult{
		Quantity:      quantity,
		EntryFeesPaid: entryFees,
		ExitValue:     exitValue,
		ExitFeesPaid:  exitFees,
		Profit:        profit,
		ProfitPercent: profit / s.Investment * 100,
	}, nil
}
