package market

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "cryptofolio/internal/errors"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(Config{
		BaseURL:     server.URL,
		Timeout:     2 * time.Second,
		PacingDelay: 0,
	}, zerolog.Nop())
}

func TestLookup(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/search":
			assert.Equal(t, "bitcoin", r.URL.Query().Get("query"))
			w.Write([]byte(`{"coins":[{"id":"bitcoin","symbol":"btc","name":"Bitcoin"},{"id":"bitcoin-cash","symbol":"bch","name":"Bitcoin Cash"}]}`))
		case "/coins/bitcoin":
			assert.Equal(t, "true", r.URL.Query().Get("market_data"))
			w.Write([]byte(`{
				"id":"bitcoin","symbol":"btc","name":"Bitcoin",
				"description":{"en":"digital gold"},
				"image":{"large":"https://example.com/btc.png"},
				"links":{"homepage":["https://bitcoin.org"]},
				"market_data":{
					"current_price":{"usd":60123.45},
					"market_cap":{"usd":1200000000000},
					"market_cap_rank":1,
					"total_volume":{"usd":35000000000},
					"price_change_24h":-500.5,
					"price_change_percentage_24h":-0.82,
					"ath":{"usd":69000},
					"ath_change_percentage":{"usd":-12.8},
					"ath_date":{"usd":"2021-11-10T14:24:11.849Z"},
					"atl":{"usd":67.81},
					"atl_change_percentage":{"usd":88500.1},
					"atl_date":{"usd":"2013-07-06T00:00:00.000Z"},
					"circulating_supply":19500000,
					"total_supply":21000000,
					"max_supply":21000000,
					"last_updated":"2025-01-10T10:00:00.000Z"
				}
			}`))
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))

	snapshot, err := client.Lookup(context.Background(), "bitcoin")
	require.NoError(t, err)

	assert.Equal(t, "bitcoin", snapshot.ID)
	assert.Equal(t, "Bitcoin", snapshot.Name)
	assert.Equal(t, 60123.45, snapshot.CurrentPrice)
	assert.Equal(t, 1, snapshot.MarketCapRank)
	assert.Equal(t, 69000.0, snapshot.ATH)
	assert.Equal(t, "https://bitcoin.org", snapshot.Homepage)
	assert.Equal(t, "digital gold", snapshot.Description)
}

func TestSearchNoMatch(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"coins":[]}`))
	}))

	_, err := client.Lookup(context.Background(), "definitely-not-a-coin")
	assert.ErrorIs(t, err, apperrors.ErrCoinNotFound)
}

func TestSearchEmptyQuery(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	}))

	_, err := client.Search(context.Background(), "")
	var validationErr *apperrors.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestRateLimitClassification(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))

	_, err := client.Lookup(context.Background(), "bitcoin")

	var marketErr *apperrors.MarketDataError
	require.ErrorAs(t, err, &marketErr)
	assert.Equal(t, "rate_limited", marketErr.Kind)
	assert.ErrorIs(t, err, apperrors.ErrRateLimited)
}

func TestTimeoutClassification(t *testing.T) {
	slow := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	})
	server := httptest.NewServer(slow)
	t.Cleanup(server.Close)
	client := NewClient(Config{
		BaseURL: server.URL,
		Timeout: 20 * time.Millisecond,
	}, zerolog.Nop())

	_, err := client.Search(context.Background(), "bitcoin")

	var marketErr *apperrors.MarketDataError
	require.ErrorAs(t, err, &marketErr)
	assert.Equal(t, "timeout", marketErr.Kind)
}

func TestServerErrorClassification(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	_, err := client.Search(context.Background(), "bitcoin")

	var marketErr *apperrors.MarketDataError
	require.ErrorAs(t, err, &marketErr)
	assert.Equal(t, "fetch", marketErr.Kind)
}
