package trading

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	apperrors "cryptofolio/internal/errors"
	"cryptofolio/internal/logging"
	"cryptofolio/internal/models"
	"cryptofolio/internal/portfolio"
	"cryptofolio/internal/store"
)

// Service applies lifecycle operations and persists them. Every mutation
// goes to the store first; the in-memory result is only returned once the
// write succeeded, so callers never hold state the store rejected.
type Service struct {
	store  store.DataStore
	logger zerolog.Logger
}

// NewService creates a trading service over the given store.
func NewService(dataStore store.DataStore, logger zerolog.Logger) *Service {
	return &Service{
		store:  dataStore,
		logger: logger.With().Str("component", "trading").Logger(),
	}
}

// ListTrades returns the user's trades, newest first.
func (s *Service) ListTrades(ctx context.Context, userID string) ([]models.Trade, error) {
	trades, err := s.store.ListTrades(ctx, userID)
	if err != nil {
		return nil, apperrors.NewRemoteError("store", "list trades", "could not load trades", err)
	}
	return trades, nil
}

// CreateTrade validates and persists a new open trade.
func (s *Service) CreateTrade(ctx context.Context, userID, coin string, entryPrice, quantity, fees float64, date, clock, notes string) (models.Trade, error) {
	trade, err := NewTrade(coin, entryPrice, quantity, fees, date, clock, notes)
	if err != nil {
		return models.Trade{}, err
	}
	if err := s.store.SaveTrade(ctx, userID, trade); err != nil {
		return models.Trade{}, apperrors.NewRemoteError("store", "create trade", "could not save trade", err)
	}
	logging.LogTradeOpened(s.logger, trade.ID, trade.Coin, trade.EntryPrice, trade.Quantity)
	return trade, nil
}

// EditTrade applies a patch to an open trade and persists the result.
func (s *Service) EditTrade(ctx context.Context, userID, tradeID string, patch TradePatch) (models.Trade, error) {
	current, err := s.store.GetTrade(ctx, userID, tradeID)
	if err != nil {
		return models.Trade{}, err
	}
	updated, err := EditTrade(*current, patch)
	if err != nil {
		return models.Trade{}, err
	}
	if err := s.store.UpdateTrade(ctx, userID, updated); err != nil {
		return models.Trade{}, apperrors.NewRemoteError("store", "edit trade", "could not update trade", err)
	}
	return updated, nil
}

// DeleteTrade removes a trade and its exit plans. Idempotent.
func (s *Service) DeleteTrade(ctx context.Context, userID, tradeID string) error {
	if err := s.store.DeleteTrade(ctx, userID, tradeID); err != nil {
		return apperrors.NewRemoteError("store", "delete trade", "could not delete trade", err)
	}
	return nil
}

// AddExitPlan appends an exit plan to an open trade and persists it.
func (s *Service) AddExitPlan(ctx context.Context, userID, tradeID string, targetPrice, quantity, stopLoss float64, notes string) (models.Trade, error) {
	current, err := s.store.GetTrade(ctx, userID, tradeID)
	if err != nil {
		return models.Trade{}, err
	}
	updated, err := AddExitPlan(*current, targetPrice, quantity, stopLoss, notes)
	if err != nil {
		return models.Trade{}, err
	}
	if err := s.store.UpdateTrade(ctx, userID, updated); err != nil {
		return models.Trade{}, apperrors.NewRemoteError("store", "add exit plan", "could not update trade", err)
	}
	return updated, nil
}

// RemoveExitPlan removes an exit plan from an open trade and persists it.
func (s *Service) RemoveExitPlan(ctx context.Context, userID, tradeID, planID string) (models.Trade, error) {
	current, err := s.store.GetTrade(ctx, userID, tradeID)
	if err != nil {
		return models.Trade{}, err
	}
	updated, err := RemoveExitPlan(*current, planID)
	if err != nil {
		return models.Trade{}, err
	}
	if err := s.store.UpdateTrade(ctx, userID, updated); err != nil {
		return models.Trade{}, apperrors.NewRemoteError("store", "remove exit plan", "could not update trade", err)
	}
	return updated, nil
}

// ExecutePlan closes a trade through one of its plans and persists the
// terminal state.
func (s *Service) ExecutePlan(ctx context.Context, userID, tradeID, planID string, outcome Outcome, exitPrice float64) (models.Trade, error) {
	current, err := s.store.GetTrade(ctx, userID, tradeID)
	if err != nil {
		return models.Trade{}, err
	}
	updated, err := ExecutePlan(*current, planID, outcome, exitPrice)
	if err != nil {
		return models.Trade{}, err
	}
	if err := s.store.UpdateTrade(ctx, userID, updated); err != nil {
		return models.Trade{}, apperrors.NewRemoteError("store", "execute plan", "could not update trade", err)
	}
	logging.LogPlanExecuted(s.logger, tradeID, planID, string(outcome), exitPrice)
	return updated, nil
}

// PortfolioView bundles the trades with their derived statistics.
type PortfolioView struct {
	Trades  []models.Trade         `json:"trades"`
	Summary portfolio.Summary      `json:"summary"`
	Chart   []portfolio.ChartPoint `json:"chart"`
}

// Portfolio loads the user's trades and derives the aggregate view.
func (s *Service) Portfolio(ctx context.Context, userID string) (PortfolioView, error) {
	trades, err := s.ListTrades(ctx, userID)
	if err != nil {
		return PortfolioView{}, err
	}
	return PortfolioView{
		Trades:  trades,
		Summary: portfolio.Summarize(trades),
		Chart:   portfolio.ChartSeries(trades),
	}, nil
}

// SaveSimulation computes a simulation's figures and persists the inputs
// for history browsing.
func (s *Service) SaveSimulation(ctx context.Context, userID string, sim models.Simulation) (models.Simulation, models.SimulationResult, error) {
	result, err := Simulate(sim)
	if err != nil {
		return models.Simulation{}, models.SimulationResult{}, err
	}
	if sim.ID == "" {
		sim.ID = uuid.NewString()
	}
	if sim.CreatedAt.IsZero() {
		sim.CreatedAt = time.Now()
	}
	if err := s.store.SaveSimulation(ctx, userID, sim); err != nil {
		return models.Simulation{}, models.SimulationResult{}, apperrors.NewRemoteError("store", "save simulation", "could not save simulation", err)
	}
	return sim, result, nil
}

// ListSimulations returns the user's saved simulations, newest first.
func (s *Service) ListSimulations(ctx context.Context, userID string) ([]models.Simulation, error) {
	sims, err := s.store.ListSimulations(ctx, userID)
	if err != nil {
		return nil, apperrors.NewRemoteError("store", "list simulations", "could not load simulations", err)
	}
	return sims, nil
}
