// Package server exposes the journal over an HTTP API.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"cryptofolio/internal/auth"
	"cryptofolio/internal/coach"
	"cryptofolio/internal/community"
	"cryptofolio/internal/market"
	"cryptofolio/internal/store"
	"cryptofolio/internal/trading"
)

// Config holds server dependencies and settings.
type Config struct {
	Port           int
	AllowedOrigins []string
	Log            zerolog.Logger
	Store          store.DataStore
	Auth           auth.Provider
	Trading        *trading.Service
	Market         *market.Client
	Hub            *community.Hub
	Coach          *coach.Coach // nil when no API key is configured
}

// Server is the HTTP API server.
type Server struct {
	router  *chi.Mux
	server  *http.Server
	log     zerolog.Logger
	store   store.DataStore
	auth    auth.Provider
	trading *trading.Service
	market  *market.Client
	hub     *community.Hub
	coach   *coach.Coach
}

// New creates a new HTTP server.
func New(cfg Config) *Server {
	s := &Server{
		router:  chi.NewRouter(),
		log:     cfg.Log.With().Str("component", "server").Logger(),
		store:   cfg.Store,
		auth:    cfg.Auth,
		trading: cfg.Trading,
		market:  cfg.Market,
		hub:     cfg.Hub,
		coach:   cfg.Coach,
	}

	s.setupMiddleware(cfg.AllowedOrigins)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

func (s *Server) setupMiddleware(allowedOrigins []string) {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}

	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/signup", s.handleSignUp)
		r.Post("/auth/signin", s.handleSignIn)

		// Everything below requires a session.
		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			r.Post("/auth/signout", s.handleSignOut)
			r.Get("/auth/me", s.handleMe)

			r.Route("/trades", func(r chi.Router) {
				r.Get("/", s.handleListTrades)
				r.Post("/", s.handleCreateTrade)
				r.Patch("/{tradeID}", s.handleEditTrade)
				r.Delete("/{tradeID}", s.handleDeleteTrade)
				r.Post("/{tradeID}/plans", s.handleAddExitPlan)
				r.Delete("/{tradeID}/plans/{planID}", s.handleRemoveExitPlan)
				r.Post("/{tradeID}/execute", s.handleExecutePlan)
			})

			r.Get("/portfolio", s.handlePortfolio)

			r.Route("/ideas", func(r chi.Router) {
				r.Get("/", s.handleListIdeas)
				r.Post("/", s.handleCreateIdea)
				r.Put("/{ideaID}", s.handleUpdateIdea)
				r.Delete("/{ideaID}", s.handleDeleteIdea)
			})

			r.Route("/videos", func(r chi.Router) {
				r.Get("/", s.handleListVideos)
				r.Post("/", s.handleCreateVideo)
				r.Delete("/{videoID}", s.handleDeleteVideo)
			})

			r.Route("/signals", func(r chi.Router) {
				r.Get("/", s.handleListSignals)
				r.Post("/", s.handleCreateSignal)
				r.Patch("/{signalID}/status", s.handleUpdateSignalStatus)
				r.Delete("/{signalID}", s.handleDeleteSignal)
			})

			r.Route("/simulations", func(r chi.Router) {
				r.Get("/", s.handleListSimulations)
				r.Post("/", s.handleSaveSimulation)
			})

			r.Get("/market/{query}", s.handleMarketLookup)

			r.Route("/messages", func(r chi.Router) {
				r.Get("/", s.handleListMessages)
				r.Post("/", s.handleSendMessage)
			})
			r.Get("/ws", s.handleChatSocket)

			r.Post("/coach", s.handleCoach)
		})
	})
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("Request")
	})
}
