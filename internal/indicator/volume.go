package indicator

import "github.com/islatechai-lang/cryptoomind/models"

// calculateOBV walks the series adding volume on up closes and subtracting
// it on down closes. Series without volume data return 0.
func calculateOBV(candles []models.Candle) float64 {
	if len(candles) < 2 {
		return 0.0
	}
	if candles[len(candles)-1].Volume == 0 {
		return 0.0
	}

	obv := candles[0].Volume
	for i := 1; i < len(candles); i++ {
		if candles[i].Close > candles[i-1].Close {
			obv += candles[i].Volume
		} else if candles[i].Close < candles[i-1].Close {
			obv -= candles[i].Volume
		}
	}
	return obv
}

// calculateVolumeRatio compares the last bar's volume to the average of the
// preceding period bars. Returns 1 when volume data is missing so the
// downstream bonus stays neutral.
func calculateVolumeRatio(candles []models.Candle, period int) float64 {
	if len(candles) < period+1 {
		return 1.0
	}

	last := candles[len(candles)-1].Volume
	if last == 0 {
		return 1.0
	}

	var sum float64
	for i := len(candles) - period - 1; i < len(candles)-1; i++ {
		sum += candles[i].Volume
	}
	avg := sum / float64(period)
	if avg == 0 {
		return 1.0
	}

	return last / avg
}
