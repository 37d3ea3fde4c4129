package indicator

import "github.com/islatechai-lang/cryptoomind/models"

func closePrices(candles []models.Candle) []float64 {
	closes := make([]float64, len(candles))
	for i, c := range candles {
		closes[i] = c.Close
	}
	return closes
}

// calculateSMA averages the last period closes. Shorter series fall back to
// the last close.
func calculateSMA(candles []models.Candle, period int) float64 {
	if len(candles) == 0 {
		return 0
	}
	if len(candles) < period {
		return candles[len(candles)-1].Close
	}

	var sum float64
	for i := len(candles) - period; i < len(candles); i++ {
		sum += candles[i].Close
	}
	return sum / float64(period)
}

// calculateEMAFromPrices seeds with an SMA of the first period values and
// walks the rest of the series.
func calculateEMAFromPrices(prices []float64, period int) float64 {
	if len(prices) == 0 {
		return 0
	}
	if len(prices) < period {
		return prices[len(prices)-1]
	}

	var sum float64
	for i := 0; i < period; i++ {
		sum += prices[i]
	}
	ema := sum / float64(period)

	multiplier := 2.0 / float64(period+1)
	for i := period; i < len(prices); i++ {
		ema = (prices[i]-ema)*multiplier + ema
	}

	return ema
}

func calculateEMA(candles []models.Candle, period int) float64 {
	return calculateEMAFromPrices(closePrices(candles), period)
}
