package indicator

import (
	"math"

	"github.com/islatechai-lang/cryptoomind/models"
)

// calculateBollingerBands returns upper, middle, lower band and the
// normalized band width. Short series collapse to the last close.
func calculateBollingerBands(candles []models.Candle, period int, stdDev float64) (float64, float64, float64, float64) {
	if len(candles) == 0 {
		return 0, 0, 0, 0
	}
	if len(candles) < period {
		last := candles[len(candles)-1].Close
		return last, last, last, 0
	}

	var sum float64
	for i := len(candles) - period; i < len(candles); i++ {
		sum += candles[i].Close
	}
	middle := sum / float64(period)

	var variance float64
	for i := len(candles) - period; i < len(candles); i++ {
		variance += math.Pow(candles[i].Close-middle, 2)
	}
	sd := math.Sqrt(variance / float64(period))

	upper := middle + (sd * stdDev)
	lower := middle - (sd * stdDev)

	width := 0.0
	if middle != 0 {
		width = (upper - lower) / middle
	}

	return upper, middle, lower, width
}
