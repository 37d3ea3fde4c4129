package indicator

import (
	"math"

	"github.com/islatechai-lang/cryptoomind/models"
)

// calculateATR averages the true range over the last period bars.
func calculateATR(candles []models.Candle, period int) float64 {
	if len(candles) < period+1 {
		return 0
	}

	var trueRanges []float64
	for i := 1; i < len(candles); i++ {
		highLow := candles[i].High - candles[i].Low
		highPrevClose := math.Abs(candles[i].High - candles[i-1].Close)
		lowPrevClose := math.Abs(candles[i].Low - candles[i-1].Close)
		trueRanges = append(trueRanges, math.Max(highLow, math.Max(highPrevClose, lowPrevClose)))
	}

	periodToUse := period
	if len(trueRanges) < period {
		periodToUse = len(trueRanges)
	}

	var sum float64
	for i := len(trueRanges) - periodToUse; i < len(trueRanges); i++ {
		sum += trueRanges[i]
	}
	return sum / float64(periodToUse)
}

// calculateADX returns ADX, +DI and -DI using Wilder smoothing of the
// directional movement and true range series. Needs 2*period bars.
func calculateADX(candles []models.Candle, period int) (float64, float64, float64) {
	if len(candles) < period*2 {
		return 0, 0, 0
	}

	var plusDM, minusDM, trueRange []float64
	for i := 1; i < len(candles); i++ {
		upMove := candles[i].High - candles[i-1].High
		downMove := candles[i-1].Low - candles[i].Low

		pDM := 0.0
		if upMove > downMove && upMove > 0 {
			pDM = upMove
		}
		plusDM = append(plusDM, pDM)

		mDM := 0.0
		if downMove > upMove && downMove > 0 {
			mDM = downMove
		}
		minusDM = append(minusDM, mDM)

		tr1 := candles[i].High - candles[i].Low
		tr2 := math.Abs(candles[i].High - candles[i-1].Close)
		tr3 := math.Abs(candles[i].Low - candles[i-1].Close)
		trueRange = append(trueRange, math.Max(tr1, math.Max(tr2, tr3)))
	}

	var smoothedPlusDM, smoothedMinusDM, smoothedTR float64
	for i := 0; i < period; i++ {
		smoothedPlusDM += plusDM[i]
		smoothedMinusDM += minusDM[i]
		smoothedTR += trueRange[i]
	}

	if smoothedTR == 0 {
		return 0, 0, 0
	}

	plusDI := (smoothedPlusDM / smoothedTR) * 100
	minusDI := (smoothedMinusDM / smoothedTR) * 100

	adx := 0.0
	if plusDI+minusDI > 0 {
		adx = math.Abs(plusDI-minusDI) / (plusDI + minusDI) * 100
	}

	for i := period; i < len(trueRange); i++ {
		smoothedPlusDM = smoothedPlusDM - (smoothedPlusDM / float64(period)) + plusDM[i]
		smoothedMinusDM = smoothedMinusDM - (smoothedMinusDM / float64(period)) + minusDM[i]
		smoothedTR = smoothedTR - (smoothedTR / float64(period)) + trueRange[i]

		if smoothedTR == 0 {
			continue
		}

		newPlusDI := (smoothedPlusDM / smoothedTR) * 100
		newMinusDI := (smoothedMinusDM / smoothedTR) * 100

		newDX := 0.0
		if newPlusDI+newMinusDI > 0 {
			newDX = math.Abs(newPlusDI-newMinusDI) / (newPlusDI + newMinusDI) * 100
		}

		adx = ((float64(period-1) * adx) + newDX) / float64(period)

		plusDI = newPlusDI
		minusDI = newMinusDI
	}

	return adx, plusDI, minusDI
}
