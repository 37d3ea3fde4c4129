package market

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/islatechai-lang/cryptoomind/internal/cache"
	"github.com/islatechai-lang/cryptoomind/models"
)

const daySeconds = 24 * 60 * 60

// candleSource is the slice of the twelvedata client the provider needs.
type candleSource interface {
	GetCandles(ctx context.Context, symbol, interval string, count int) ([]models.Candle, error)
	GetPrice(ctx context.Context, symbol string) (float64, error)
}

// Provider implements models.MarketProvider: a cache in front of the
// twelvedata client, a synthetic fallback behind it. Provider failure only
// surfaces when not even a live quote is available.
type Provider struct {
	source      candleSource
	cache       cache.Store
	cacheTTL    time.Duration
	candleCount int
	logger      zerolog.Logger
	now         func() time.Time
}

// ProviderOptions configures a Provider.
type ProviderOptions struct {
	Client      *Client
	Cache       cache.Store
	CacheTTL    time.Duration
	CandleCount int
}

func NewProvider(opts ProviderOptions) *Provider {
	count := opts.CandleCount
	if count <= 0 {
		count = 300
	}
	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = 45 * time.Second
	}

	return &Provider{
		source:      opts.Client,
		cache:       opts.Cache,
		cacheTTL:    ttl,
		candleCount: count,
		logger:      log.With().Str("component", "market_provider").Logger(),
		now:         time.Now,
	}
}

// FetchMarketData returns a full market snapshot for the pair. Real data is
// cached; synthetic fallbacks are not, so the next run retries the provider.
func (p *Provider) FetchMarketData(ctx context.Context, pair, timeframe string) (*models.MarketData, error) {
	key := fmt.Sprintf("market:%s:%s", pair, timeframe)
	if p.cache != nil {
		var cached models.MarketData
		if err := p.cache.Get(ctx, key, &cached); err == nil {
			p.logger.Debug().Str("pair", pair).Msg("Market data served from cache")
			return &cached, nil
		}
	}

	data, err := p.fetch(ctx, pair, timeframe)
	if err != nil {
		return nil, err
	}

	if p.cache != nil && !data.Synthetic {
		if err := p.cache.Set(ctx, key, data, p.cacheTTL); err != nil {
			p.logger.Warn().Err(err).Str("pair", pair).Msg("Caching market data failed")
		}
	}
	return data, nil
}

func (p *Provider) fetch(ctx context.Context, pair, timeframe string) (*models.MarketData, error) {
	price, priceErr := p.source.GetPrice(ctx, pair)
	candles, candleErr := p.source.GetCandles(ctx, pair, timeframe, p.candleCount)

	synthetic := false
	switch {
	case candleErr == nil && len(candles) > 0:
		if priceErr != nil || price <= 0 {
			price = candles[len(candles)-1].Close
		}
	case priceErr == nil:
		p.logger.Warn().Err(candleErr).Str("pair", pair).
			Msg("Candle fetch failed, degrading to synthetic series")
		candles = SyntheticSeries(price, p.candleCount, timeframe, p.now())
		synthetic = true
	default:
		return nil, fmt.Errorf("fetching market data for %s: %w", pair, candleErr)
	}

	var padded bool
	if len(candles) < p.candleCount {
		candles, padded = PadSeries(candles, p.candleCount, timeframe)
		if padded {
			p.logger.Debug().Str("pair", pair).Int("count", len(candles)).
				Msg("Short series padded to target window")
		}
	}

	priceChange, volumeChange := change24h(candles)

	return &models.MarketData{
		Pair:            pair,
		Timeframe:       timeframe,
		CurrentPrice:    price,
		Candles:         candles,
		PriceChange24h:  priceChange,
		VolumeChange24h: volumeChange,
		Synthetic:       synthetic || padded,
	}, nil
}

// change24h derives day-over-day price and volume change from the series
// itself. Series too short to cover a day yield zeros.
func change24h(candles []models.Candle) (priceChange, volumeChange float64) {
	if len(candles) == 0 {
		return 0, 0
	}

	last := candles[len(candles)-1]
	cutoff := last.Timestamp - daySeconds

	ref := -1
	for i := len(candles) - 1; i >= 0; i-- {
		if candles[i].Timestamp <= cutoff {
			ref = i
			break
		}
	}
	if ref < 0 {
		return 0, 0
	}

	if candles[ref].Close != 0 {
		priceChange = (last.Close - candles[ref].Close) / candles[ref].Close * 100
	}

	var recent, prior float64
	for _, c := range candles[ref+1:] {
		recent += c.Volume
	}
	prevCutoff := cutoff - daySeconds
	for i := ref; i >= 0 && candles[i].Timestamp > prevCutoff; i-- {
		prior += candles[i].Volume
	}
	if prior > 0 {
		volumeChange = (recent - prior) / prior * 100
	}
	return priceChange, volumeChange
}
