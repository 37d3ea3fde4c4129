package signal

import (
	"fmt"
	"math"

	"github.com/islatechai-lang/cryptoomind/models"
)

// Analyzer categories, in emission order.
const (
	CategoryMomentum    = "momentum"
	CategoryStochastic  = "stochastic"
	CategoryMACD        = "macd"
	CategoryMAConsensus = "ma_consensus"
	CategoryBollinger   = "bollinger"
	CategoryTrend       = "trend"
	CategoryROC         = "rate_of_change"
	CategoryLevels      = "support_resistance"
)

// AnalyzeAll runs every analyzer against one indicator snapshot and returns
// their signals in a fixed order.
func AnalyzeAll(ind *models.TechnicalIndicators, price float64) []models.WeightedSignal {
	return []models.WeightedSignal{
		AnalyzeMomentum(ind, price),
		AnalyzeStochastic(ind, price),
		AnalyzeMACD(ind, price),
		AnalyzeMAConsensus(ind, price),
		AnalyzeBollinger(ind, price),
		AnalyzeTrend(ind, price),
		AnalyzeRateOfChange(ind, price),
		AnalyzeSupportResistance(ind, price),
	}
}

func neutral(category, reason string) models.WeightedSignal {
	return models.WeightedSignal{
		Direction: models.DirectionNeutral,
		Strength:  0,
		Weight:    1.0,
		Category:  category,
		Reason:    reason,
	}
}

// AnalyzeMomentum tiers RSI with strict boundaries. Oversold readings vote
// UP, overbought readings vote DOWN.
func AnalyzeMomentum(ind *models.TechnicalIndicators, _ float64) models.WeightedSignal {
	rsi := ind.RSI

	switch {
	case rsi < 20:
		return signalOf(CategoryMomentum, models.DirectionUp, 95, 1.3,
			fmt.Sprintf("RSI %.1f deeply oversold", rsi))
	case rsi < 30:
		return signalOf(CategoryMomentum, models.DirectionUp, 85, 1.2,
			fmt.Sprintf("RSI %.1f oversold", rsi))
	case rsi < 40:
		return signalOf(CategoryMomentum, models.DirectionUp, 55, 1.0,
			fmt.Sprintf("RSI %.1f approaching oversold", rsi))
	case rsi > 80:
		return signalOf(CategoryMomentum, models.DirectionDown, 95, 1.3,
			fmt.Sprintf("RSI %.1f deeply overbought", rsi))
	case rsi > 70:
		return signalOf(CategoryMomentum, models.DirectionDown, 85, 1.2,
			fmt.Sprintf("RSI %.1f overbought", rsi))
	case rsi > 60:
		return signalOf(CategoryMomentum, models.DirectionDown, 55, 1.0,
			fmt.Sprintf("RSI %.1f approaching overbought", rsi))
	}

	return neutral(CategoryMomentum, fmt.Sprintf("RSI %.1f in neutral zone", rsi))
}

// AnalyzeStochastic reads %K with %D confirmation at the extremes.
func AnalyzeStochastic(ind *models.TechnicalIndicators, _ float64) models.WeightedSignal {
	k, d := ind.StochK, ind.StochD

	switch {
	case k < 20 && d < 20:
		return signalOf(CategoryStochastic, models.DirectionUp, 90, 1.2,
			fmt.Sprintf("stochastic %.1f/%.1f both oversold", k, d))
	case k < 20:
		return signalOf(CategoryStochastic, models.DirectionUp, 72, 1.0,
			fmt.Sprintf("stochastic K %.1f oversold", k))
	case k < 30:
		return signalOf(CategoryStochastic, models.DirectionUp, 48, 0.8,
			fmt.Sprintf("stochastic K %.1f near oversold", k))
	case k > 80 && d > 80:
		return signalOf(CategoryStochastic, models.DirectionDown, 90, 1.2,
			fmt.Sprintf("stochastic %.1f/%.1f both overbought", k, d))
	case k > 80:
		return signalOf(CategoryStochastic, models.DirectionDown, 72, 1.0,
			fmt.Sprintf("stochastic K %.1f overbought", k))
	case k > 70:
		return signalOf(CategoryStochastic, models.DirectionDown, 48, 0.8,
			fmt.Sprintf("stochastic K %.1f near overbought", k))
	}

	return neutral(CategoryStochastic, fmt.Sprintf("stochastic K %.1f mid-range", k))
}

// AnalyzeMACD votes with the crossover and tiers strength by the histogram
// magnitude relative to the MACD line itself.
func AnalyzeMACD(ind *models.TechnicalIndicators, _ float64) models.WeightedSignal {
	macd, sig, hist := ind.MACD, ind.MACDSignal, ind.MACDHist

	if macd == sig {
		return neutral(CategoryMACD, "MACD flat against signal line")
	}

	base := math.Abs(macd)
	if base == 0 {
		base = math.Abs(sig)
	}
	ratio := 0.0
	if base > 0 {
		ratio = math.Abs(hist) / base
	}

	if macd > sig {
		switch {
		case ratio > 0.5:
			return signalOf(CategoryMACD, models.DirectionUp, 80, 1.2,
				fmt.Sprintf("MACD %.5f above signal with wide histogram", macd))
		case ratio > 0.1:
			return signalOf(CategoryMACD, models.DirectionUp, 65, 1.1,
				fmt.Sprintf("MACD %.5f above signal", macd))
		default:
			return signalOf(CategoryMACD, models.DirectionUp, 45, 0.9,
				fmt.Sprintf("MACD %.5f barely above signal", macd))
		}
	}

	switch {
	case ratio > 0.5:
		return signalOf(CategoryMACD, models.DirectionDown, 80, 1.2,
			fmt.Sprintf("MACD %.5f below signal with wide histogram", macd))
	case ratio > 0.1:
		return signalOf(CategoryMACD, models.DirectionDown, 65, 1.1,
			fmt.Sprintf("MACD %.5f below signal", macd))
	default:
		return signalOf(CategoryMACD, models.DirectionDown, 45, 0.9,
			fmt.Sprintf("MACD %.5f barely below signal", macd))
	}
}

// AnalyzeMAConsensus counts directional agreement across six
// sub-comparisons: price vs each SMA, the EMA crossover and the SMA20/50
// ordering. Escalates sharply once five of six agree. Equal prices vote for
// neither side.
func AnalyzeMAConsensus(ind *models.TechnicalIndicators, price float64) models.WeightedSignal {
	bull, bear := 0, 0

	vote := func(a, b float64) {
		if a > b {
			bull++
		} else if a < b {
			bear++
		}
	}

	vote(price, ind.SMA20)
	vote(price, ind.SMA50)
	vote(price, ind.SMA100)
	vote(price, ind.SMA200)
	vote(ind.EMA12, ind.EMA26)
	vote(ind.SMA20, ind.SMA50)

	direction := models.DirectionUp
	agree, against := bull, bear
	if bear > bull {
		direction = models.DirectionDown
		agree, against = bear, bull
	}

	switch {
	case agree >= 5:
		return signalOf(CategoryMAConsensus, direction, 90, 1.5,
			fmt.Sprintf("moving averages aligned %d of 6", agree))
	case agree == 4:
		return signalOf(CategoryMAConsensus, direction, 68, 1.1,
			fmt.Sprintf("moving averages lean %d of 6", agree))
	case agree == 3 && against < 3:
		return signalOf(CategoryMAConsensus, direction, 45, 0.8,
			fmt.Sprintf("weak moving-average lean %d of 6", agree))
	}

	return neutral(CategoryMAConsensus,
		fmt.Sprintf("moving averages split %d bull / %d bear", bull, bear))
}

// AnalyzeBollinger scores the close's position inside the band.
func AnalyzeBollinger(ind *models.TechnicalIndicators, price float64) models.WeightedSignal {
	width := ind.BBUpper - ind.BBLower
	if width <= 0 {
		return neutral(CategoryBollinger, "bands collapsed, no read")
	}

	pos := (price - ind.BBLower) / width

	switch {
	case pos < 0.05:
		return signalOf(CategoryBollinger, models.DirectionUp, 85, 1.1,
			fmt.Sprintf("price at lower band (position %.2f)", pos))
	case pos < 0.2:
		return signalOf(CategoryBollinger, models.DirectionUp, 60, 0.9,
			fmt.Sprintf("price near lower band (position %.2f)", pos))
	case pos > 0.95:
		return signalOf(CategoryBollinger, models.DirectionDown, 85, 1.1,
			fmt.Sprintf("price at upper band (position %.2f)", pos))
	case pos > 0.8:
		return signalOf(CategoryBollinger, models.DirectionDown, 60, 0.9,
			fmt.Sprintf("price near upper band (position %.2f)", pos))
	}

	return neutral(CategoryBollinger, fmt.Sprintf("price inside bands (position %.2f)", pos))
}

// AnalyzeTrend only speaks when ADX shows a tradable trend, then takes the
// side of the dominant DI.
func AnalyzeTrend(ind *models.TechnicalIndicators, _ float64) models.WeightedSignal {
	adx := ind.ADX
	if adx <= 25 {
		return neutral(CategoryTrend, fmt.Sprintf("ADX %.1f shows no tradable trend", adx))
	}
	if ind.PlusDI == ind.MinusDI {
		return neutral(CategoryTrend, "directional indicators balanced")
	}

	direction := models.DirectionUp
	if ind.MinusDI > ind.PlusDI {
		direction = models.DirectionDown
	}

	switch {
	case adx > 50:
		return signalOf(CategoryTrend, direction, 90, 1.4,
			fmt.Sprintf("ADX %.1f extremely strong trend", adx))
	case adx > 40:
		return signalOf(CategoryTrend, direction, 78, 1.2,
			fmt.Sprintf("ADX %.1f strong trend", adx))
	default:
		return signalOf(CategoryTrend, direction, 62, 1.0,
			fmt.Sprintf("ADX %.1f developing trend", adx))
	}
}

// AnalyzeRateOfChange tiers the 10-period rate of change.
func AnalyzeRateOfChange(ind *models.TechnicalIndicators, _ float64) models.WeightedSignal {
	roc := ind.ROC
	abs := math.Abs(roc)

	direction := models.DirectionUp
	if roc < 0 {
		direction = models.DirectionDown
	}

	switch {
	case abs > 3:
		return signalOf(CategoryROC, direction, 85, 1.2,
			fmt.Sprintf("price moved %.2f%% over 10 bars", roc))
	case abs > 1.5:
		return signalOf(CategoryROC, direction, 65, 1.0,
			fmt.Sprintf("price moved %.2f%% over 10 bars", roc))
	case abs > 0.5:
		return signalOf(CategoryROC, direction, 45, 0.8,
			fmt.Sprintf("price moved %.2f%% over 10 bars", roc))
	}

	return neutral(CategoryROC, fmt.Sprintf("momentum flat at %.2f%%", roc))
}

// AnalyzeSupportResistance scores proximity to the nearest mapped levels.
func AnalyzeSupportResistance(ind *models.TechnicalIndicators, _ float64) models.WeightedSignal {
	hasSupport := len(ind.Support) > 0
	hasResistance := len(ind.Resistance) > 0

	if !hasSupport && !hasResistance {
		return neutral(CategoryLevels, "no mapped price levels")
	}

	supPct, resPct := ind.SupportDistPct, ind.ResistanceDistPct

	switch {
	case hasSupport && hasResistance && supPct < 1.5 && resPct < 1.5:
		return neutral(CategoryLevels,
			fmt.Sprintf("squeezed between levels (%.2f%% / %.2f%%)", supPct, resPct))
	case hasSupport && supPct < 1.5:
		return signalOf(CategoryLevels, models.DirectionUp, 70, 1.0,
			fmt.Sprintf("price %.2f%% above support", supPct))
	case hasResistance && resPct < 1.5:
		return signalOf(CategoryLevels, models.DirectionDown, 70, 1.0,
			fmt.Sprintf("price %.2f%% below resistance", resPct))
	case hasSupport && supPct < 3:
		return signalOf(CategoryLevels, models.DirectionUp, 50, 0.8,
			fmt.Sprintf("price %.2f%% above support", supPct))
	case hasResistance && resPct < 3:
		return signalOf(CategoryLevels, models.DirectionDown, 50, 0.8,
			fmt.Sprintf("price %.2f%% below resistance", resPct))
	}

	return neutral(CategoryLevels, "price mid-range between levels")
}

func signalOf(category, direction string, strength, weight float64, reason string) models.WeightedSignal {
	return models.WeightedSignal{
		Direction: direction,
		Strength:  strength,
		Weight:    weight,
		Category:  category,
		Reason:    reason,
	}
}
