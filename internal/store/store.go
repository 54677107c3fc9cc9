// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"

	"cryptofolio/internal/models"
)

// DataStore defines the interface for data persistence. Every entity list
// is scoped to a user and ordered by creation time descending, newest
// first, matching what the dashboard displays. Implementations own the
// translation between the in-memory records and their storage shape.
type DataStore interface {
	// Trades. Saving or updating a trade persists its exit plans in the
	// same transaction; deleting a trade removes them with it.
	ListTrades(ctx context.Context, userID string) ([]models.Trade, error)
	GetTrade(ctx context.Context, userID, tradeID string) (*models.Trade, error)
	SaveTrade(ctx context.Context, userID string, trade models.Trade) error
	UpdateTrade(ctx context.Context, userID string, trade models.Trade) error
	DeleteTrade(ctx context.Context, userID, tradeID string) error

	// Idea board
	ListIdeas(ctx context.Context, userID string) ([]models.IdeaNote, error)
	SaveIdea(ctx context.Context, userID string, idea models.IdeaNote) error
	UpdateIdea(ctx context.Context, userID string, idea models.IdeaNote) error
	DeleteIdea(ctx context.Context, userID, ideaID string) error

	// Videos
	ListVideos(ctx context.Context, userID string) ([]models.Video, error)
	SaveVideo(ctx context.Context, userID string, video models.Video) error
	DeleteVideo(ctx context.Context, userID, videoID string) error

	// Signals
	ListSignals(ctx context.Context, userID string) ([]models.Signal, error)
	SaveSignal(ctx context.Context, userID string, signal models.Signal) error
	UpdateSignalStatus(ctx context.Context, userID, signalID string, status models.SignalStatus) error
	DeleteSignal(ctx context.Context, userID, signalID string) error

	// Simulations
	ListSimulations(ctx context.Context, userID string) ([]models.Simulation, error)
	SaveSimulation(ctx context.Context, userID string, sim models.Simulation) error

	// Community messages are shared across users.
	ListMessages(ctx context.Context, limit int) ([]models.Message, error)
	SaveMessage(ctx context.Context, msg models.Message) error

	// Users & sessions
	CreateUser(ctx context.Context, user models.User) error
	GetUser(ctx context.Context, userID string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateSession(ctx context.Context, session models.Session) error
	GetSession(ctx context.Context, token string) (*models.Session, error)
	DeleteSession(ctx context.Context, token string) error
	DeleteExpiredSessions(ctx context.Context) error

	// Lifecycle
	Close() error
}
