// Package market provides the CoinGecko market-data client.
package market

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	apperrors "cryptofolio/internal/errors"
	"cryptofolio/internal/logging"
)

// User-facing messages for each failure class.
const (
	msgRateLimited = "Too many requests. Please try again in a few minutes."
	msgTimeout     = "The request took too long. Please try again."
	msgFetch       = "Could not fetch market data. Please try again."
	msgUnexpected  = "An unexpected error occurred."
)

// CoinSnapshot is the market snapshot shown for a coin.
type CoinSnapshot struct {
	ID                string  `json:"id"`
	Symbol            string  `json:"symbol"`
	Name              string  `json:"name"`
	Image             string  `json:"image"`
	Description       string  `json:"description"`
	CurrentPrice      float64 `json:"currentPrice"`
	MarketCap         float64 `json:"marketCap"`
	MarketCapRank     int     `json:"marketCapRank"`
	TotalVolume       float64 `json:"totalVolume"`
	PriceChange24h    float64 `json:"priceChange24h"`
	PriceChangePct24h float64 `json:"priceChangePct24h"`
	ATH               float64 `json:"ath"`
	ATHChangePct      float64 `json:"athChangePct"`
	ATHDate           string  `json:"athDate"`
	ATL               float64 `json:"atl"`
	ATLChangePct      float64 `json:"atlChangePct"`
	ATLDate           string  `json:"atlDate"`
	CirculatingSupply float64 `json:"circulatingSupply"`
	TotalSupply       float64 `json:"totalSupply"`
	MaxSupply         float64 `json:"maxSupply"`
	LastUpdated       string  `json:"lastUpdated"`
	Homepage          string  `json:"homepage"`
}

// Config holds client configuration.
type Config struct {
	BaseURL       string
	APIKey        string
	Timeout       time.Duration
	PacingDelay   time.Duration
	QuoteCurrency string
}

// Client talks to the CoinGecko API. The public API rate-limits hard, so
// Lookup serializes its two calls with a fixed pacing delay between them.
type Client struct {
	http   *resty.Client
	pacing time.Duration
	quote  string
	logger zerolog.Logger
}

// NewClient creates a CoinGecko client.
func NewClient(cfg Config, logger zerolog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.coingecko.com/api/v3"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.PacingDelay < 0 {
		cfg.PacingDelay = 0
	}
	if cfg.QuoteCurrency == "" {
		cfg.QuoteCurrency = "usd"
	}

	client := resty.New()
	client.SetBaseURL(cfg.BaseURL)
	client.SetTimeout(cfg.Timeout)
	client.SetHeader("Accept", "application/json")
	if cfg.APIKey != "" {
		client.SetHeader("x-cg-demo-api-key", cfg.APIKey)
	}

	return &Client{
		http:   client,
		pacing: cfg.PacingDelay,
		quote:  cfg.QuoteCurrency,
		logger: logger.With().Str("component", "market").Logger(),
	}
}

type searchResponse struct {
	Coins []struct {
		ID     string `json:"id"`
		Symbol string `json:"symbol"`
		Name   string `json:"name"`
	} `json:"coins"`
}

type detailsResponse struct {
	ID          string `json:"id"`
	Symbol      string `json:"symbol"`
	Name        string `json:"name"`
	Description struct {
		EN string `json:"en"`
	} `json:"description"`
	Image struct {
		Large string `json:"large"`
	} `json:"image"`
	Links struct {
		Homepage []string `json:"homepage"`
	} `json:"links"`
	MarketData struct {
		CurrentPrice      map[string]float64 `json:"current_price"`
		MarketCap         map[string]float64 `json:"market_cap"`
		MarketCapRank     int                `json:"market_cap_rank"`
		TotalVolume       map[string]float64 `json:"total_volume"`
		PriceChange24h    float64            `json:"price_change_24h"`
		PriceChangePct24h float64            `json:"price_change_percentage_24h"`
		ATH               map[string]float64 `json:"ath"`
		ATHChangePct      map[string]float64 `json:"ath_change_percentage"`
		ATHDate           map[string]string  `json:"ath_date"`
		ATL               map[string]float64 `json:"atl"`
		ATLChangePct      map[string]float64 `json:"atl_change_percentage"`
		ATLDate           map[string]string  `json:"atl_date"`
		CirculatingSupply float64            `json:"circulating_supply"`
		TotalSupply       float64            `json:"total_supply"`
		MaxSupply         float64            `json:"max_supply"`
		LastUpdated       string             `json:"last_updated"`
	} `json:"market_data"`
}

// Search resolves a free-text query to the best-matching coin id.
func (c *Client) Search(ctx context.Context, query string) (string, error) {
	if query == "" {
		return "", apperrors.NewValidationError("query", query, "search query must not be empty")
	}

	var result searchResponse
	start := time.Now()
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("query", query).
		SetResult(&result).
		Get("/search")
	logging.LogAPICall(c.logger, http.MethodGet, "/search", time.Since(start), err)
	if err := classify(resp, err); err != nil {
		return "", err
	}
	if len(result.Coins) == 0 {
		return "", apperrors.ErrCoinNotFound
	}
	return result.Coins[0].ID, nil
}

// Details fetches the market snapshot for a coin id.
func (c *Client) Details(ctx context.Context, coinID string) (*CoinSnapshot, error) {
	var result detailsResponse
	start := time.Now()
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"localization":   "false",
			"tickers":        "false",
			"market_data":    "true",
			"community_data": "false",
			"developer_data": "false",
			"sparkline":      "false",
		}).
		SetResult(&result).
		Get(fmt.Sprintf("/coins/%s", coinID))
	logging.LogAPICall(c.logger, http.MethodGet, "/coins/"+coinID, time.Since(start), err)
	if err := classify(resp, err); err != nil {
		return nil, err
	}

	md := result.MarketData
	snapshot := &CoinSnapshot{
		ID:                result.ID,
		Symbol:            result.Symbol,
		Name:              result.Name,
		Image:             result.Image.Large,
		Description:       result.Description.EN,
		CurrentPrice:      md.CurrentPrice[c.quote],
		MarketCap:         md.MarketCap[c.quote],
		MarketCapRank:     md.MarketCapRank,
		TotalVolume:       md.TotalVolume[c.quote],
		PriceChange24h:    md.PriceChange24h,
		PriceChangePct24h: md.PriceChangePct24h,
		ATH:               md.ATH[c.quote],
		ATHChangePct:      md.ATHChangePct[c.quote],
		ATHDate:           md.ATHDate[c.quote],
		ATL:               md.ATL[c.quote],
		ATLChangePct:      md.ATLChangePct[c.quote],
		ATLDate:           md.ATLDate[c.quote],
		CirculatingSupply: md.CirculatingSupply,
		TotalSupply:       md.TotalSupply,
		MaxSupply:         md.MaxSupply,
		LastUpdated:       md.LastUpdated,
	}
	if len(result.Links.Homepage) > 0 {
		snapshot.Homepage = result.Links.Homepage[0]
	}
	return snapshot, nil
}

// Lookup runs the full search-then-details flow for a query, waiting the
// pacing delay between the two calls to stay under the rate limit.
func (c *Client) Lookup(ctx context.Context, query string) (*CoinSnapshot, error) {
	coinID, err := c.Search(ctx, query)
	if err != nil {
		return nil, err
	}

	select {
	case <-time.After(c.pacing):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	return c.Details(ctx, coinID)
}

// classify maps a resty response/error pair to the failure taxonomy.
func classify(resp *resty.Response, err error) error {
	if err != nil {
		var netErr net.Error
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
			return apperrors.NewMarketDataError("timeout", msgTimeout, errors.Join(apperrors.ErrTimeout, err))
		}
		return apperrors.NewMarketDataError("fetch", msgFetch, err)
	}
	if resp == nil {
		return apperrors.NewMarketDataError("unexpected", msgUnexpected, nil)
	}
	if resp.StatusCode() == http.StatusTooManyRequests {
		return apperrors.NewMarketDataError("rate_limited", msgRateLimited, apperrors.ErrRateLimited)
	}
	if resp.IsError() {
		return apperrors.NewMarketDataError("fetch", msgFetch,
			fmt.Errorf("unexpected status %d", resp.StatusCode()))
	}
	return nil
}
