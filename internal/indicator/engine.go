package indicator

import (
	"errors"
	"math"

	"github.com/islatechai-lang/cryptoomind/models"
)

// Lookback periods. These are fixed contracts with the signal analyzers,
// not tunables.
const (
	rsiPeriod        = 14
	stochKPeriod     = 14
	stochDPeriod     = 3
	macdFastPeriod   = 12
	macdSlowPeriod   = 26
	macdSignalPeriod = 9
	bbPeriod         = 20
	bbStdDev         = 2.0
	adxPeriod        = 14
	atrPeriod        = 14
	momentumPeriod   = 10
	volumeAvgPeriod  = 20
)

// Regime thresholds shared with the analyzers (strict comparisons).
const (
	ADXStrongTrending = 50.0
	ADXTrending       = 30.0
)

// ErrNotEnoughData is returned for series too short to say anything at all.
// Short-but-usable series degrade to neutral defaults instead.
var ErrNotEnoughData = errors.New("not enough candles for analysis")

const minCandles = 5

// Compute derives the full indicator snapshot from one candle series.
// Pure: no I/O, no clock, no state across calls.
func Compute(candles []models.Candle) (*models.TechnicalIndicators, error) {
	if len(candles) < minCandles {
		return nil, ErrNotEnoughData
	}

	lastClose := candles[len(candles)-1].Close

	rsi := calculateRSI(candles, rsiPeriod)
	stochK, stochD := calculateStochastic(candles, stochKPeriod, stochDPeriod)
	macd, macdSignal, macdHist := calculateMACD(candles, macdFastPeriod, macdSlowPeriod, macdSignalPeriod)

	sma20 := calculateSMA(candles, 20)
	sma50 := calculateSMA(candles, 50)
	sma100 := calculateSMA(candles, 100)
	sma200 := calculateSMA(candles, 200)
	ema12 := calculateEMA(candles, 12)
	ema26 := calculateEMA(candles, 26)
	ema50 := calculateEMA(candles, 50)

	bbUpper, bbMiddle, bbLower, bbWidth := calculateBollingerBands(candles, bbPeriod, bbStdDev)

	adx, plusDI, minusDI := calculateADX(candles, adxPeriod)
	atr := calculateATR(candles, atrPeriod)

	momentum := 0.0
	roc := 0.0
	if len(candles) > momentumPeriod {
		base := candles[len(candles)-momentumPeriod].Close
		momentum = lastClose - base
		if base != 0 {
			roc = momentum / base * 100
		}
	}

	obv := calculateOBV(candles)
	volumeRatio := calculateVolumeRatio(candles, volumeAvgPeriod)

	support, resistance := identifySupportResistance(candles)
	supDist, resDist, supPct, resPct := levelDistances(lastClose, support, resistance)

	ind := &models.TechnicalIndicators{
		RSI:        rsi,
		StochK:     stochK,
		StochD:     stochD,
		MACD:       macd,
		MACDSignal: macdSignal,
		MACDHist:   macdHist,

		SMA20:  sma20,
		SMA50:  sma50,
		SMA100: sma100,
		SMA200: sma200,
		EMA12:  ema12,
		EMA26:  ema26,
		EMA50:  ema50,

		BBUpper:  bbUpper,
		BBMiddle: bbMiddle,
		BBLower:  bbLower,
		BBWidth:  bbWidth,

		ADX:     adx,
		PlusDI:  plusDI,
		MinusDI: minusDI,
		ATR:     atr,

		Momentum:    momentum,
		ROC:         roc,
		OBV:         obv,
		VolumeRatio: volumeRatio,

		Support:           support,
		Resistance:        resistance,
		SupportDist:       supDist,
		ResistanceDist:    resDist,
		SupportDistPct:    supPct,
		ResistanceDistPct: resPct,
	}

	ind.MarketRegime = classifyRegime(adx)
	ind.TrendBias = classifyTrendBias(lastClose, sma50, ema12, ema26)
	ind.TrendStrength = trendStrength(adx, plusDI, minusDI)

	return ind, nil
}

// classifyRegime maps ADX to the coarse regime the analyzers and the
// aggregator multiplier key off.
func classifyRegime(adx float64) string {
	switch {
	case adx > ADXStrongTrending:
		return models.RegimeStrongTrending
	case adx > ADXTrending:
		return models.RegimeTrending
	default:
		return models.RegimeRanging
	}
}

func classifyTrendBias(close, sma50, ema12, ema26 float64) string {
	switch {
	case close > sma50 && ema12 > ema26:
		return models.BiasBullish
	case close < sma50 && ema12 < ema26:
		return models.BiasBearish
	default:
		return models.BiasNeutral
	}
}

// trendStrength folds ADX and the DI spread into a 0-100 score.
func trendStrength(adx, plusDI, minusDI float64) float64 {
	strength := adx + math.Abs(plusDI-minusDI)/2
	if strength > 100 {
		return 100
	}
	if strength < 0 {
		return 0
	}
	return strength
}
