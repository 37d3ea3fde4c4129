// Package news fetches recent headlines for a trading pair from the
// marketaux REST API. An empty result is a normal outcome, never an error.
package news

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpclient "github.com/islatechai-lang/cryptoomind/internal/platform/http"
	"github.com/islatechai-lang/cryptoomind/models"
)

// Sentiment labels derived from the aggregate entity score.
const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
)

// sentimentThreshold separates a directional label from neutral. Scores at
// the threshold stay neutral.
const sentimentThreshold = 0.15

// Client is the marketaux API client.
type Client struct {
	apiKey  string
	baseURL string
	http    *httpclient.Client
	logger  zerolog.Logger
}

// ClientOptions holds options for creating a new marketaux client
type ClientOptions struct {
	APIKey          string
	BaseURL         string
	RequestTimeout  time.Duration
	RequestsPerSec  int
	MaxRetries      int
	MaxRetryTimeout time.Duration
}

// NewClient creates a new marketaux API client
func NewClient(opts ClientOptions) *Client {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = "https://api.marketaux.com"
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
		logger: log.With().Str("component", "news_client").Logger(),
	}
}

type newsResponse struct {
	Data []struct {
		Title       string    `json:"title"`
		Source      string    `json:"source"`
		PublishedAt time.Time `json:"published_at"`
		Entities    []struct {
			SentimentScore float64 `json:"sentiment_score"`
		} `json:"entities"`
	} `json:"data"`
}

// FetchHeadlines returns up to limit recent headlines for the pair.
func (c *Client) FetchHeadlines(ctx context.Context, pair string, limit int) ([]models.NewsHeadline, error) {
	symbol := strings.ReplaceAll(pair, "/", "")
	url := fmt.Sprintf("%s/v1/news/all?symbols=%s&filter_entities=true&language=en&limit=%d&api_token=%s",
		c.baseURL, symbol, limit, c.apiKey)

	c.logger.Debug().Str("pair", pair).Int("limit", limit).Msg("Fetching headlines")

	body, err := c.http.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}

	headlines, err := parseHeadlines(body, limit)
	if err != nil {
		c.logger.Error().Err(err).Str("pair", pair).Msg("News response rejected")
		return nil, err
	}

	c.logger.Debug().Int("count", len(headlines)).Msg("Fetched headlines")
	return headlines, nil
}

func parseHeadlines(body []byte, limit int) ([]models.NewsHeadline, error) {
	var data newsResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}

	headlines := make([]models.NewsHeadline, 0, len(data.Data))
	for _, item := range data.Data {
		if limit > 0 && len(headlines) >= limit {
			break
		}

		score := 0.0
		if n := len(item.Entities); n > 0 {
			for _, e := range item.Entities {
				score += e.SentimentScore
			}
			score /= float64(n)
		}

		headlines = append(headlines, models.NewsHeadline{
			Title:       item.Title,
			Source:      item.Source,
			Sentiment:   sentimentLabel(score),
			PublishedAt: item.PublishedAt,
		})
	}
	return headlines, nil
}

func sentimentLabel(score float64) string {
	switch {
	case score > sentimentThreshold:
		return SentimentPositive
	case score < -sentimentThreshold:
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}
