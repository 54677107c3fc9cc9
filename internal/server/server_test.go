package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cryptofolio/internal/auth"
	"cryptofolio/internal/community"
	"cryptofolio/internal/models"
	"cryptofolio/internal/store"
	"cryptofolio/internal/trading"
)

type testAPI struct {
	server *httptest.Server
	token  string
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	dataStore, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { dataStore.Close() })

	logger := zerolog.Nop()
	srv := New(Config{
		Port:    0,
		Log:     logger,
		Store:   dataStore,
		Auth:    auth.NewLocalProvider(dataStore, time.Hour),
		Trading: trading.NewService(dataStore, logger),
		Hub:     community.NewHub(dataStore, logger),
	})

	ts := httptest.NewServer(srv.router)
	t.Cleanup(ts.Close)

	api := &testAPI{server: ts}
	api.signUpAndIn(t, "alice@example.com", "correct horse", "Alice")
	return api
}

func (a *testAPI) signUpAndIn(t *testing.T, email, password, name string) {
	t.Helper()
	resp := a.do(t, "POST", "/api/v1/auth/signup", map[string]string{
		"email": email, "password": password, "displayName": name,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = a.do(t, "POST", "/api/v1/auth/signin", map[string]string{
		"email": email, "password": password,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var signIn struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&signIn))
	resp.Body.Close()
	require.NotEmpty(t, signIn.Token)
	a.token = signIn.Token
}

func (a *testAPI) do(t *testing.T, method, path string, body interface{}) *http.Response {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, a.server.URL+path, reader)
	require.NoError(t, err)
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(target))
}

func TestHealthEndpoint(t *testing.T) {
	api := newTestAPI(t)
	resp, err := http.Get(api.server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAuthRequired(t *testing.T) {
	api := newTestAPI(t)
	api.token = ""
	resp := api.do(t, "GET", "/api/v1/trades", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestTradeLifecycleOverHTTP(t *testing.T) {
	api := newTestAPI(t)

	// Create a trade.
	resp := api.do(t, "POST", "/api/v1/trades", map[string]interface{}{
		"coin": "bitcoin", "entryPrice": 50000, "quantity": 1.0, "fees": 0.1,
		"date": "2025-01-10", "time": "09:30",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var trade models.Trade
	decodeBody(t, resp, &trade)
	require.NotEmpty(t, trade.ID)

	// Add two exit plans.
	resp = api.do(t, "POST", "/api/v1/trades/"+trade.ID+"/plans", map[string]interface{}{
		"targetPrice": 60000, "quantity": 0.5,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	decodeBody(t, resp, &trade)

	resp = api.do(t, "POST", "/api/v1/trades/"+trade.ID+"/plans", map[string]interface{}{
		"targetPrice": 70000, "quantity": 0.5, "stopLoss": 45000,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	decodeBody(t, resp, &trade)
	require.Len(t, trade.ExitPlans, 2)

	// Overselling is rejected with 400.
	resp = api.do(t, "POST", "/api/v1/trades/"+trade.ID+"/plans", map[string]interface{}{
		"targetPrice": 80000, "quantity": 0.5,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	// The portfolio values the trade at the last plan's target.
	resp = api.do(t, "GET", "/api/v1/portfolio", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var view trading.PortfolioView
	decodeBody(t, resp, &view)
	assert.InDelta(t, 50000.0, view.Summary.TotalInvestment, 1e-9)
	assert.InDelta(t, 70000.0, view.Summary.CurrentValue, 1e-9)

	// Execute the first plan.
	resp = api.do(t, "POST", "/api/v1/trades/"+trade.ID+"/execute", map[string]interface{}{
		"planId": trade.ExitPlans[0].ID, "outcome": "won", "exitPrice": 61000,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var closed models.Trade
	decodeBody(t, resp, &closed)
	assert.Equal(t, models.TradeWon, closed.Status)
	assert.Equal(t, models.PlanExecuted, closed.ExitPlans[0].Status)
	assert.Equal(t, models.PlanCancelled, closed.ExitPlans[1].Status)

	// Closed trades reject further plan operations with 409.
	resp = api.do(t, "POST", "/api/v1/trades/"+trade.ID+"/plans", map[string]interface{}{
		"targetPrice": 90000, "quantity": 0.1,
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	// Delete is idempotent.
	resp = api.do(t, "DELETE", "/api/v1/trades/"+trade.ID, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()
	resp = api.do(t, "DELETE", "/api/v1/trades/"+trade.ID, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()
}

func TestTradesAreScopedPerUser(t *testing.T) {
	api := newTestAPI(t)

	resp := api.do(t, "POST", "/api/v1/trades", map[string]interface{}{
		"coin": "bitcoin", "entryPrice": 50000, "quantity": 1.0,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	// A second account sees an empty journal.
	api.signUpAndIn(t, "bob@example.com", "battery staple", "Bob")
	resp = api.do(t, "GET", "/api/v1/trades", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var trades []models.Trade
	decodeBody(t, resp, &trades)
	assert.Empty(t, trades)
}

func TestUnknownTradeReturns404(t *testing.T) {
	api := newTestAPI(t)
	resp := api.do(t, "PATCH", "/api/v1/trades/does-not-exist", map[string]interface{}{
		"notes": "hello",
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSignalsEndpoint(t *testing.T) {
	api := newTestAPI(t)

	resp := api.do(t, "POST", "/api/v1/signals", map[string]interface{}{
		"coin": "ethereum", "type": "long", "entryPrice": 2000,
		"targetPrice": 2500, "stopLoss": 1800, "risk": "medium",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var signal models.Signal
	decodeBody(t, resp, &signal)
	assert.Equal(t, models.SignalActive, signal.Status)

	resp = api.do(t, "PATCH", fmt.Sprintf("/api/v1/signals/%s/status", signal.ID), map[string]string{
		"status": "completed",
	})
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	resp = api.do(t, "POST", "/api/v1/signals", map[string]interface{}{
		"coin": "ethereum", "type": "sideways", "entryPrice": 2000, "targetPrice": 2500, "risk": "medium",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestSimulationEndpoint(t *testing.T) {
	api := newTestAPI(t)

	resp := api.do(t, "POST", "/api/v1/simulations", map[string]interface{}{
		"coin": "bitcoin", "entryPrice": 50000, "exitPrice": 60000, "investment": 1000,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var result struct {
		Simulation models.Simulation       `json:"simulation"`
		Result     models.SimulationResult `json:"result"`
	}
	decodeBody(t, resp, &result)
	assert.InDelta(t, 200.0, result.Result.Profit, 1e-9)
	assert.NotEmpty(t, result.Simulation.ID)
}

func TestMessagesEndpoint(t *testing.T) {
	api := newTestAPI(t)

	resp := api.do(t, "POST", "/api/v1/messages", map[string]string{"content": "gm"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var msg models.Message
	decodeBody(t, resp, &msg)
	assert.Equal(t, "Alice", msg.Sender)

	resp = api.do(t, "GET", "/api/v1/messages?limit=10", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var msgs []models.Message
	decodeBody(t, resp, &msgs)
	require.Len(t, msgs, 1)
	assert.Equal(t, "gm", msgs[0].Content)
}

func TestSignOut(t *testing.T) {
	api := newTestAPI(t)

	resp := api.do(t, "POST", "/api/v1/auth/signout", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	resp = api.do(t, "GET", "/api/v1/auth/me", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}
