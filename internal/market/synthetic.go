package market

import (
	"math"
	"time"

	"github.com/islatechai-lang/cryptoomind/models"
)

// syntheticVariance bounds the flat-series wobble at 0.1% of price.
const syntheticVariance = 0.001

// SyntheticSeries builds a flat candle series oscillating around price,
// ending at the bar containing now. The wobble is deterministic so repeated
// fallbacks for the same quote produce comparable indicator output.
func SyntheticSeries(price float64, count int, timeframe string, now time.Time) []models.Candle {
	if count <= 0 {
		return nil
	}

	step := models.TimeframeStep(timeframe)
	end := now.Truncate(step)

	candles := make([]models.Candle, count)
	for i := 0; i < count; i++ {
		close := syntheticClose(price, i)
		spread := price * syntheticVariance / 2
		candles[i] = models.Candle{
			Timestamp: end.Add(-time.Duration(count-1-i) * step).Unix(),
			Open:      close,
			High:      close + spread,
			Low:       close - spread,
			Close:     close,
		}
	}
	return candles
}

// PadSeries front-fills a short series up to count bars by extending the
// oldest close backwards with the same wobble. Reports whether padding
// happened. Series already at length are returned untouched.
func PadSeries(candles []models.Candle, count int, timeframe string) ([]models.Candle, bool) {
	if len(candles) >= count || len(candles) == 0 {
		return candles, false
	}

	step := int64(models.TimeframeStep(timeframe) / time.Second)
	missing := count - len(candles)
	first := candles[0]

	pad := make([]models.Candle, missing)
	for i := 0; i < missing; i++ {
		close := syntheticClose(first.Close, i)
		spread := first.Close * syntheticVariance / 2
		pad[i] = models.Candle{
			Timestamp: first.Timestamp - step*int64(missing-i),
			Open:      close,
			High:      close + spread,
			Low:       close - spread,
			Close:     close,
			Volume:    first.Volume,
		}
	}

	padded := make([]models.Candle, 0, count)
	padded = append(padded, pad...)
	padded = append(padded, candles...)
	return padded, true
}

func syntheticClose(price float64, i int) float64 {
	return price * (1 + syntheticVariance*math.Sin(float64(i)))
}
