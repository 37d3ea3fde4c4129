package indicator

import "github.com/islatechai-lang/cryptoomind/models"

// calculateMACD returns the MACD line, its signal line and the histogram.
// The signal line is the EMA of the MACD history rebuilt with a sliding
// window over the close series.
func calculateMACD(candles []models.Candle, fastPeriod, slowPeriod, signalPeriod int) (float64, float64, float64) {
	closes := closePrices(candles)

	if len(closes) < slowPeriod+signalPeriod {
		return 0, 0, 0
	}

	macdLine := calculateEMAFromPrices(closes, fastPeriod) - calculateEMAFromPrices(closes, slowPeriod)

	macdHistory := make([]float64, 0, len(closes)-slowPeriod+1)
	for i := slowPeriod - 1; i < len(closes); i++ {
		window := closes[:i+1]
		macdHistory = append(macdHistory,
			calculateEMAFromPrices(window, fastPeriod)-calculateEMAFromPrices(window, slowPeriod))
	}

	signalLine := 0.0
	if len(macdHistory) >= signalPeriod {
		signalLine = calculateEMAFromPrices(macdHistory, signalPeriod)
	}

	return macdLine, signalLine, macdLine - signalLine
}
