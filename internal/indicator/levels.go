package indicator

import (
	"math"
	"sort"

	"github.com/islatechai-lang/cryptoomind/models"
)

// identifySupportResistance clusters swing highs and lows into price levels
// and splits them around the current price. Levels come back nearest first,
// at most three per side.
func identifySupportResistance(candles []models.Candle) ([]float64, []float64) {
	if len(candles) < 20 {
		return nil, nil
	}

	currentPrice := candles[len(candles)-1].Close

	// Cluster tolerance scales with the instrument so the same code works
	// for FX pairs and crypto alike (~2 basis points).
	priceTolerance := currentPrice * 0.0002
	if priceTolerance <= 0 {
		return nil, nil
	}

	pricePoints := make(map[float64]int)

	for i := 2; i < len(candles)-2; i++ {
		// Swing low
		if candles[i].Low < candles[i-1].Low &&
			candles[i].Low < candles[i-2].Low &&
			candles[i].Low < candles[i+1].Low &&
			candles[i].Low < candles[i+2].Low {
			level := math.Round(candles[i].Low/priceTolerance) * priceTolerance
			pricePoints[level]++
		}

		// Swing high
		if candles[i].High > candles[i-1].High &&
			candles[i].High > candles[i-2].High &&
			candles[i].High > candles[i+1].High &&
			candles[i].High > candles[i+2].High {
			level := math.Round(candles[i].High/priceTolerance) * priceTolerance
			pricePoints[level]++
		}
	}

	// Recent closes near a level reinforce it
	for i := len(candles) - 10; i < len(candles); i++ {
		for price := range pricePoints {
			if math.Abs(candles[i].Close-price) < priceTolerance*2 {
				pricePoints[price]++
			}
		}
	}

	type priceLevel struct {
		price    float64
		strength int
	}

	var levels []priceLevel
	for price, strength := range pricePoints {
		levels = append(levels, priceLevel{price: price, strength: strength})
	}

	sort.Slice(levels, func(i, j int) bool {
		if levels[i].strength != levels[j].strength {
			return levels[i].strength > levels[j].strength
		}
		return levels[i].price < levels[j].price
	})

	var support, resistance []float64
	for _, level := range levels {
		if level.price < currentPrice {
			support = append(support, level.price)
		} else if level.price > currentPrice {
			resistance = append(resistance, level.price)
		}
	}

	sort.Slice(support, func(i, j int) bool { return support[i] > support[j] })
	sort.Slice(resistance, func(i, j int) bool { return resistance[i] < resistance[j] })

	const maxLevels = 3
	if len(support) > maxLevels {
		support = support[:maxLevels]
	}
	if len(resistance) > maxLevels {
		resistance = resistance[:maxLevels]
	}

	return support, resistance
}

// levelDistances returns the absolute and percentage distance from price to
// the nearest support and resistance. Missing levels yield zero distances.
func levelDistances(price float64, support, resistance []float64) (float64, float64, float64, float64) {
	var supDist, resDist, supPct, resPct float64

	if len(support) > 0 && price > 0 {
		supDist = price - support[0]
		supPct = supDist / price * 100
	}
	if len(resistance) > 0 && price > 0 {
		resDist = resistance[0] - price
		resPct = resDist / price * 100
	}

	return supDist, resDist, supPct, resPct
}
