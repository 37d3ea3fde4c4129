// Package market fetches candle series and live quotes from the twelvedata
// REST API, degrading to synthetic data when the provider is unreachable.
package market

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpclient "github.com/islatechai-lang/cryptoomind/internal/platform/http"
	"github.com/islatechai-lang/cryptoomind/models"
)

// Client is the twelvedata API client.
type Client struct {
	apiKey  string
	baseURL string
	http    *httpclient.Client
	logger  zerolog.Logger
}

// ClientOptions holds options for creating a new twelvedata client
type ClientOptions struct {
	APIKey          string
	BaseURL         string
	RequestTimeout  time.Duration
	RequestsPerSec  int
	MaxRetries      int
	MaxRetryTimeout time.Duration
}

// NewClient creates a new twelvedata API client
func NewClient(opts ClientOptions) *Client {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = "https://api.twelvedata.com"
	}

	return &Client{
		apiKey:  opts.APIKey,
		baseURL: baseURL,
		http: httpclient.NewClient(httpclient.ClientOptions{
			Timeout:         opts.RequestTimeout,
			RequestsPerSec:  opts.RequestsPerSec,
			MaxRetries:      opts.MaxRetries,
			MaxRetryTimeout: opts.MaxRetryTimeout,
		}),
		logger: log.With().Str("component", "twelvedata_client").Logger(),
	}
}

// timeSeriesResponse mirrors the twelvedata time_series payload. Numeric
// fields arrive as strings.
type timeSeriesResponse struct {
	Values []struct {
		Datetime string  `json:"datetime"`
		Open     float64 `json:"open,string"`
		High     float64 `json:"high,string"`
		Low      float64 `json:"low,string"`
		Close    float64 `json:"close,string"`
		Volume   float64 `json:"volume,string,omitempty"`
	} `json:"values"`
	Status string `json:"status"`
}

type priceResponse struct {
	Price float64 `json:"price,string"`
}

// GetCandles fetches up to count candles for the symbol, oldest first.
func (c *Client) GetCandles(ctx context.Context, symbol, interval string, count int) ([]models.Candle, error) {
	url := fmt.Sprintf("%s/time_series?symbol=%s&interval=%s&outputsize=%d&apikey=%s",
		c.baseURL, symbol, interval, count, c.apiKey)

	c.logger.Debug().Str("symbol", symbol).Str("interval", interval).Int("count", count).
		Msg("Fetching candles")

	body, err := c.http.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}

	candles, err := parseTimeSeries(body)
	if err != nil {
		c.logger.Error().Err(err).Str("symbol", symbol).Msg("Candle response rejected")
		return nil, err
	}

	c.logger.Debug().Int("count", len(candles)).Msg("Fetched candles")
	return candles, nil
}

// GetPrice fetches the current quote for the symbol.
func (c *Client) GetPrice(ctx context.Context, symbol string) (float64, error) {
	url := fmt.Sprintf("%s/price?symbol=%s&apikey=%s", c.baseURL, symbol, c.apiKey)

	body, err := c.http.Get(ctx, url)
	if err != nil {
		return 0, fmt.Errorf("HTTP request failed: %w", err)
	}
	if strings.Contains(string(body), `"status":"error"`) {
		return 0, fmt.Errorf("twelvedata API error: %s", body)
	}

	var q priceResponse
	if err := json.Unmarshal(body, &q); err != nil {
		return 0, fmt.Errorf("parsing JSON: %w", err)
	}
	if q.Price <= 0 {
		return 0, fmt.Errorf("empty price returned")
	}
	return q.Price, nil
}

// parseTimeSeries validates and converts a time_series body into candles
// sorted ascending with duplicate timestamps dropped.
func parseTimeSeries(body []byte) ([]models.Candle, error) {
	if strings.Contains(string(body), `"status":"error"`) {
		return nil, fmt.Errorf("twelvedata API error: %s", body)
	}

	var data timeSeriesResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}
	if len(data.Values) == 0 {
		return nil, fmt.Errorf("empty data returned")
	}

	// Oldest first for proper calculations
	sort.Slice(data.Values, func(i, j int) bool {
		return data.Values[i].Datetime < data.Values[j].Datetime
	})

	candles := make([]models.Candle, 0, len(data.Values))
	for _, v := range data.Values {
		ts, err := parseDatetime(v.Datetime)
		if err != nil {
			return nil, fmt.Errorf("parsing datetime %q: %w", v.Datetime, err)
		}
		if n := len(candles); n > 0 && candles[n-1].Timestamp == ts {
			continue
		}
		candles = append(candles, models.Candle{
			Timestamp: ts,
			Open:      v.Open,
			High:      v.High,
			Low:       v.Low,
			Close:     v.Close,
			Volume:    v.Volume,
		})
	}
	return candles, nil
}

// parseDatetime accepts both layouts twelvedata uses, intraday and daily.
func parseDatetime(s string) (int64, error) {
	for _, layout := range []string{"2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Unix(), nil
		}
	}
	return 0, fmt.Errorf("unrecognized datetime layout")
}
