package models

import "context"

// MarketProvider supplies candle series and the current price for a pair.
// Implementations degrade to synthetic data instead of failing hard.
type MarketProvider interface {
	FetchMarketData(ctx context.Context, pair, timeframe string) (*MarketData, error)
}

// NewsProvider supplies recent headlines for a pair. An empty result is
// valid and must not be treated as an error.
type NewsProvider interface {
	FetchHeadlines(ctx context.Context, pair string, limit int) ([]NewsHeadline, error)
}
