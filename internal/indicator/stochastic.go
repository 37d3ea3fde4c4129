package indicator

import "github.com/islatechai-lang/cryptoomind/models"

// calculateStochastic returns %K and %D. %D is the simple average of the
// last dPeriod individual %K values. Short series default to 50/50.
func calculateStochastic(candles []models.Candle, kPeriod, dPeriod int) (float64, float64) {
	if len(candles) < kPeriod {
		return 50.0, 50.0
	}

	k := stochasticK(candles, len(candles)-1, kPeriod)

	count := dPeriod
	if count > len(candles) {
		count = len(candles)
	}

	var kSum float64
	for i := 0; i < count; i++ {
		idx := len(candles) - count + i
		if idx-kPeriod+1 < 0 {
			kSum += k
			continue
		}
		kSum += stochasticK(candles, idx, kPeriod)
	}

	return k, kSum / float64(count)
}

// stochasticK computes %K for the candle at idx over the preceding kPeriod
// bars. A flat range defaults to the middle of the scale.
func stochasticK(candles []models.Candle, idx, kPeriod int) float64 {
	start := idx - kPeriod + 1
	if start < 0 {
		start = 0
	}

	highest := candles[start].High
	lowest := candles[start].Low
	for i := start + 1; i <= idx; i++ {
		if candles[i].High > highest {
			highest = candles[i].High
		}
		if candles[i].Low < lowest {
			lowest = candles[i].Low
		}
	}

	if highest-lowest <= 0 {
		return 50.0
	}
	return ((candles[idx].Close - lowest) / (highest - lowest)) * 100
}
