package signal

import (
	"fmt"
	"math"

	"github.com/islatechai-lang/cryptoomind/models"
)

// Band is the confidence range one call site scales into.
type Band struct {
	Min float64
	Max float64
}

// Two bands exist on purpose and stay separate: the standard band is used
// by standalone scoring, the live band matches the AI decision clamp used
// by the streamed pipeline. Do not unify them.
var (
	BandStandard = Band{Min: 70, Max: 99}
	BandLive     = Band{Min: 80, Max: 99}
)

// scoreCeiling is the empirical raw-score ceiling the normalization divides
// by. Raising it recalibrates every confidence the system emits.
const scoreCeiling = 180.0

// Regime multipliers applied to the scaled confidence.
const (
	strongTrendingMult = 1.15
	trendingMult       = 1.05
	rangingMult        = 0.9
)

// VolumeBonus converts the volume ratio (last bar vs 20-period average)
// into the signed bonus fed to Aggregate. Capped to [-10, +15].
func VolumeBonus(volumeRatio float64) float64 {
	bonus := (volumeRatio - 1.0) * 25
	if bonus > 15 {
		return 15
	}
	if bonus < -10 {
		return -10
	}
	return bonus
}

// Aggregate combines one signal set into a direction and a calibrated
// confidence. Deterministic for identical inputs.
func Aggregate(signals []models.WeightedSignal, volumeBonus float64, regime string, band Band) models.AggregationResult {
	var upScore, downScore float64
	var upCount, downCount int
	reasons := make([]string, 0, len(signals)+3)

	for _, s := range signals {
		switch s.Direction {
		case models.DirectionUp:
			upScore += s.Strength * s.Weight
			upCount++
		case models.DirectionDown:
			downScore += s.Strength * s.Weight
			downCount++
		default:
			continue
		}
		reasons = append(reasons, fmt.Sprintf("%s %s (strength %.0f, weight %.1f): %s",
			s.Category, s.Direction, s.Strength, s.Weight, s.Reason))
	}

	total := upCount + downCount
	if total == 0 {
		return models.AggregationResult{
			Direction: models.DirectionNeutral,
			Reasons:   []string{"no directional signals"},
		}
	}

	direction := models.DirectionNeutral
	var winningScore, losingScore float64
	var winnerCount int

	switch {
	case upScore > downScore:
		direction, winningScore, losingScore, winnerCount = models.DirectionUp, upScore, downScore, upCount
	case downScore > upScore:
		direction, winningScore, losingScore, winnerCount = models.DirectionDown, downScore, upScore, downCount
	case upCount > downCount:
		direction, winningScore, losingScore, winnerCount = models.DirectionUp, upScore, downScore, upCount
	case downCount > upCount:
		direction, winningScore, losingScore, winnerCount = models.DirectionDown, downScore, upScore, downCount
	default:
		// Dead heat on both score and count
		return models.AggregationResult{
			Direction:       models.DirectionNeutral,
			SignalAlignment: 50,
			Reasons:         append(reasons, "signals perfectly split, standing aside"),
		}
	}

	alignment := float64(winnerCount) / float64(total) * 100

	penalty := alignmentPenalty(alignment, losingScore)
	if penalty > 0 {
		reasons = append(reasons, fmt.Sprintf("conflict penalty %.1f applied", penalty))
	}
	if volumeBonus != 0 {
		reasons = append(reasons, fmt.Sprintf("volume bonus %+.1f", volumeBonus))
	}

	raw := winningScore + volumeBonus - penalty
	if raw < 0 {
		raw = 0
	}

	normalized := raw / scoreCeiling
	if normalized > 1 {
		normalized = 1
	}

	scaled := band.Min + normalized*(band.Max-band.Min)

	switch regime {
	case models.RegimeStrongTrending:
		scaled *= strongTrendingMult
		reasons = append(reasons, "strong trending regime amplifies conviction")
	case models.RegimeTrending:
		scaled *= trendingMult
	default:
		scaled *= rangingMult
		reasons = append(reasons, "ranging market tempers conviction")
	}

	if alignment >= 95 {
		scaled += 3
	} else if alignment >= 88 {
		scaled += 2
	}

	confidence := int(math.Round(clamp(scaled, band.Min, band.Max)))

	quality := alignment*0.4 + (float64(confidence)-band.Min)/(band.Max-band.Min)*60

	return models.AggregationResult{
		Direction:       direction,
		Confidence:      confidence,
		SignalAlignment: alignment,
		QualityScore:    quality,
		Reasons:         reasons,
		WinningScore:    winningScore,
		LosingScore:     losingScore,
		RawScore:        raw,
	}
}

// alignmentPenalty charges for disagreement: a linear term below the 85%
// alignment threshold plus half of any losing score above 50.
func alignmentPenalty(alignment, losingScore float64) float64 {
	penalty := 0.0
	if alignment < 85 {
		penalty = (85 - alignment) * 1.2
	}
	if losingScore > 50 {
		penalty += losingScore * 0.5
	}
	return penalty
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
