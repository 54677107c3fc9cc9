package server

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"cryptofolio/internal/coach"
	apperrors "cryptofolio/internal/errors"
	"cryptofolio/internal/models"
	"cryptofolio/internal/trading"
)

// ============================================================================
// Auth
// ============================================================================

type signUpRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
}

func (s *Server) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	user, err := s.auth.SignUp(r.Context(), req.Email, req.Password, req.DisplayName)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signInResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      *models.User `json:"user"`
}

func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	session, user, err := s.auth.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, signInResponse{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		User:      user,
	})
}

func (s *Server) handleSignOut(w http.ResponseWriter, r *http.Request) {
	if err := s.auth.SignOut(r.Context(), bearerToken(r)); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, currentUser(r))
}

// ============================================================================
// Trades & portfolio
// ============================================================================

type createTradeRequest struct {
	Coin       string  `json:"coin"`
	EntryPrice float64 `json:"entryPrice"`
	Quantity   float64 `json:"quantity"`
	Fees       float64 `json:"fees"`
	Date       string  `json:"date"`
	Time       string  `json:"time"`
	Notes      string  `json:"notes"`
}

func (s *Server) handleListTrades(w http.ResponseWriter, r *http.Request) {
	trades, err := s.trading.ListTrades(r.Context(), currentUser(r).ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, trades)
}

func (s *Server) handleCreateTrade(w http.ResponseWriter, r *http.Request) {
	var req createTradeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	trade, err := s.trading.CreateTrade(r.Context(), currentUser(r).ID,
		req.Coin, req.EntryPrice, req.Quantity, req.Fees, req.Date, req.Time, req.Notes)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, trade)
}

type editTradeRequest struct {
	Coin       *string            `json:"coin"`
	EntryPrice *float64           `json:"entryPrice"`
	Quantity   *float64           `json:"quantity"`
	Fees       *float64           `json:"fees"`
	Date       *string            `json:"date"`
	Time       *string            `json:"time"`
	Notes      *string            `json:"notes"`
	ExitPlans  *[]models.ExitPlan `json:"exitPlans"`
}

func (s *Server) handleEditTrade(w http.ResponseWriter, r *http.Request) {
	var req editTradeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	trade, err := s.trading.EditTrade(r.Context(), currentUser(r).ID, chi.URLParam(r, "tradeID"), trading.TradePatch{
		Coin:       req.Coin,
		EntryPrice: req.EntryPrice,
		Quantity:   req.Quantity,
		Fees:       req.Fees,
		Date:       req.Date,
		Time:       req.Time,
		Notes:      req.Notes,
		ExitPlans:  req.ExitPlans,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, trade)
}

func (s *Server) handleDeleteTrade(w http.ResponseWriter, r *http.Request) {
	if err := s.trading.DeleteTrade(r.Context(), currentUser(r).ID, chi.URLParam(r, "tradeID")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type addExitPlanRequest struct {
	TargetPrice float64 `json:"targetPrice"`
	Quantity    float64 `json:"quantity"`
	StopLoss    float64 `json:"stopLoss"`
	Notes       string  `json:"notes"`
}

func (s *Server) handleAddExitPlan(w http.ResponseWriter, r *http.Request) {
	var req addExitPlanRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	trade, err := s.trading.AddExitPlan(r.Context(), currentUser(r).ID, chi.URLParam(r, "tradeID"),
		req.TargetPrice, req.Quantity, req.StopLoss, req.Notes)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, trade)
}

func (s *Server) handleRemoveExitPlan(w http.ResponseWriter, r *http.Request) {
	trade, err := s.trading.RemoveExitPlan(r.Context(), currentUser(r).ID,
		chi.URLParam(r, "tradeID"), chi.URLParam(r, "planID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, trade)
}

type executePlanRequest struct {
	PlanID    string  `json:"planId"`
	Outcome   string  `json:"outcome"`
	ExitPrice float64 `json:"exitPrice"`
}

func (s *Server) handleExecutePlan(w http.ResponseWriter, r *http.Request) {
	var req executePlanRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	trade, err := s.trading.ExecutePlan(r.Context(), currentUser(r).ID, chi.URLParam(r, "tradeID"),
		req.PlanID, trading.Outcome(req.Outcome), req.ExitPrice)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, trade)
}

func (s *Server) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	view, err := s.trading.Portfolio(r.Context(), currentUser(r).ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// ============================================================================
// Ideas
// ============================================================================

type ideaRequest struct {
	Content   string  `json:"content"`
	Color     string  `json:"color"`
	PositionX float64 `json:"positionX"`
	PositionY float64 `json:"positionY"`
}

func (s *Server) handleListIdeas(w http.ResponseWriter, r *http.Request) {
	ideas, err := s.store.ListIdeas(r.Context(), currentUser(r).ID)
	if err != nil {
		writeError(w, apperrors.NewRemoteError("store", "list ideas", "could not load ideas", err))
		return
	}
	writeJSON(w, http.StatusOK, ideas)
}

func (s *Server) handleCreateIdea(w http.ResponseWriter, r *http.Request) {
	var req ideaRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		writeError(w, apperrors.NewValidationError("content", req.Content, "idea content must not be empty"))
		return
	}
	idea := models.IdeaNote{
		ID:        uuid.NewString(),
		Content:   req.Content,
		Color:     req.Color,
		PositionX: req.PositionX,
		PositionY: req.PositionY,
		CreatedAt: time.Now(),
	}
	if err := s.store.SaveIdea(r.Context(), currentUser(r).ID, idea); err != nil {
		writeError(w, apperrors.NewRemoteError("store", "create idea", "could not save idea", err))
		return
	}
	writeJSON(w, http.StatusCreated, idea)
}

func (s *Server) handleUpdateIdea(w http.ResponseWriter, r *http.Request) {
	var req ideaRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		writeError(w, apperrors.NewValidationError("content", req.Content, "idea content must not be empty"))
		return
	}
	idea := models.IdeaNote{
		ID:        chi.URLParam(r, "ideaID"),
		Content:   req.Content,
		Color:     req.Color,
		PositionX: req.PositionX,
		PositionY: req.PositionY,
	}
	if err := s.store.UpdateIdea(r.Context(), currentUser(r).ID, idea); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, idea)
}

func (s *Server) handleDeleteIdea(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteIdea(r.Context(), currentUser(r).ID, chi.URLParam(r, "ideaID")); err != nil {
		writeError(w, apperrors.NewRemoteError("store", "delete idea", "could not delete idea", err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ============================================================================
// Videos
// ============================================================================

type videoRequest struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

func (s *Server) handleListVideos(w http.ResponseWriter, r *http.Request) {
	videos, err := s.store.ListVideos(r.Context(), currentUser(r).ID)
	if err != nil {
		writeError(w, apperrors.NewRemoteError("store", "list videos", "could not load videos", err))
		return
	}
	writeJSON(w, http.StatusOK, videos)
}

func (s *Server) handleCreateVideo(w http.ResponseWriter, r *http.Request) {
	var req videoRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.URL) == "" {
		writeError(w, apperrors.NewValidationError("title", req.Title, "title and url are required"))
		return
	}
	category := models.VideoCategory(req.Category)
	if category != models.CategoryFormation && category != models.CategoryAnalyse {
		writeError(w, apperrors.NewValidationError("category", req.Category, "category must be formation or analyse"))
		return
	}
	video := models.Video{
		ID:          uuid.NewString(),
		Title:       req.Title,
		URL:         req.URL,
		Description: req.Description,
		Category:    category,
		CreatedAt:   time.Now(),
	}
	if err := s.store.SaveVideo(r.Context(), currentUser(r).ID, video); err != nil {
		writeError(w, apperrors.NewRemoteError("store", "create video", "could not save video", err))
		return
	}
	writeJSON(w, http.StatusCreated, video)
}

func (s *Server) handleDeleteVideo(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteVideo(r.Context(), currentUser(r).ID, chi.URLParam(r, "videoID")); err != nil {
		writeError(w, apperrors.NewRemoteError("store", "delete video", "could not delete video", err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ============================================================================
// Signals
// ============================================================================

type signalRequest struct {
	Coin        string  `json:"coin"`
	Type        string  `json:"type"`
	EntryPrice  float64 `json:"entryPrice"`
	TargetPrice float64 `json:"targetPrice"`
	StopLoss    float64 `json:"stopLoss"`
	Description string  `json:"description"`
	Risk        string  `json:"risk"`
}

func (s *Server) handleListSignals(w http.ResponseWriter, r *http.Request) {
	signals, err := s.store.ListSignals(r.Context(), currentUser(r).ID)
	if err != nil {
		writeError(w, apperrors.NewRemoteError("store", "list signals", "could not load signals", err))
		return
	}
	writeJSON(w, http.StatusOK, signals)
}

func (s *Server) handleCreateSignal(w http.ResponseWriter, r *http.Request) {
	var req signalRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	signal, err := buildSignal(req)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.store.SaveSignal(r.Context(), currentUser(r).ID, signal); err != nil {
		writeError(w, apperrors.NewRemoteError("store", "create signal", "could not save signal", err))
		return
	}
	writeJSON(w, http.StatusCreated, signal)
}

func buildSignal(req signalRequest) (models.Signal, error) {
	if strings.TrimSpace(req.Coin) == "" {
		return models.Signal{}, apperrors.NewValidationError("coin", req.Coin, "coin name must not be empty")
	}
	sigType := models.SignalType(req.Type)
	if sigType != models.SignalLong && sigType != models.SignalShort {
		return models.Signal{}, apperrors.NewValidationError("type", req.Type, "type must be long or short")
	}
	if req.EntryPrice <= 0 || req.TargetPrice <= 0 {
		return models.Signal{}, apperrors.NewValidationError("entryPrice", req.EntryPrice, "entry and target prices must be positive")
	}
	risk := models.Risk(req.Risk)
	if risk != models.RiskLow && risk != models.RiskMedium && risk != models.RiskHigh {
		return models.Signal{}, apperrors.NewValidationError("risk", req.Risk, "risk must be low, medium or high")
	}
	return models.Signal{
		ID:          uuid.NewString(),
		Coin:        strings.TrimSpace(req.Coin),
		Type:        sigType,
		EntryPrice:  req.EntryPrice,
		TargetPrice: req.TargetPrice,
		StopLoss:    req.StopLoss,
		Description: req.Description,
		Risk:        risk,
		Status:      models.SignalActive,
		CreatedAt:   time.Now(),
	}, nil
}

type signalStatusRequest struct {
	Status string `json:"status"`
}

func (s *Server) handleUpdateSignalStatus(w http.ResponseWriter, r *http.Request) {
	var req signalStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	status := models.SignalStatus(req.Status)
	if status != models.SignalActive && status != models.SignalCompleted && status != models.SignalCancelled {
		writeError(w, apperrors.NewValidationError("status", req.Status, "status must be active, completed or cancelled"))
		return
	}
	if err := s.store.UpdateSignalStatus(r.Context(), currentUser(r).ID, chi.URLParam(r, "signalID"), status); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteSignal(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteSignal(r.Context(), currentUser(r).ID, chi.URLParam(r, "signalID")); err != nil {
		writeError(w, apperrors.NewRemoteError("store", "delete signal", "could not delete signal", err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ============================================================================
// Simulations
// ============================================================================

func (s *Server) handleListSimulations(w http.ResponseWriter, r *http.Request) {
	sims, err := s.trading.ListSimulations(r.Context(), currentUser(r).ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sims)
}

type saveSimulationResponse struct {
	Simulation models.Simulation       `json:"simulation"`
	Result     models.SimulationResult `json:"result"`
}

func (s *Server) handleSaveSimulation(w http.ResponseWriter, r *http.Request) {
	var sim models.Simulation
	if err := decodeJSON(r, &sim); err != nil {
		writeError(w, err)
		return
	}
	saved, result, err := s.trading.SaveSimulation(r.Context(), currentUser(r).ID, sim)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, saveSimulationResponse{Simulation: saved, Result: result})
}

// ============================================================================
// Market data
// ============================================================================

func (s *Server) handleMarketLookup(w http.ResponseWriter, r *http.Request) {
	snapshot, err := s.market.Lookup(r.Context(), chi.URLParam(r, "query"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

// ============================================================================
// Messages
// ============================================================================

func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	msgs, err := s.hub.History(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, msgs)
}

type sendMessageRequest struct {
	Content string `json:"content"`
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var req sendMessageRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	user := currentUser(r)
	sender := user.DisplayName
	if sender == "" {
		sender = user.Email
	}
	msg, err := s.hub.Send(r.Context(), user.ID, sender, req.Content)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}

// ============================================================================
// Coach
// ============================================================================

type coachRequest struct {
	History  []coach.Turn `json:"history"`
	Question string       `json:"question"`
}

func (s *Server) handleCoach(w http.ResponseWriter, r *http.Request) {
	if s.coach == nil {
		writeError(w, apperrors.NewRemoteError("openai", "chat completion", "coach is not configured", nil))
		return
	}
	var req coachRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	answer, err := s.coach.Ask(r.Context(), req.History, req.Question)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"answer": answer})
}
