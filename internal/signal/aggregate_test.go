package signal

import (
	"math"
	"testing"

	"github.com/islatechai-lang/cryptoomind/models"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func TestAggregateWorkedExample(t *testing.T) {
	// Deep oversold momentum carries the whole decision.
	momentum := AnalyzeMomentum(&models.TechnicalIndicators{RSI: 18}, 100)
	if momentum.Direction != models.DirectionUp || momentum.Strength != 95 || momentum.Weight != 1.3 {
		t.Fatalf("momentum signal = %v/%v/%v, want UP/95/1.3",
			momentum.Direction, momentum.Strength, momentum.Weight)
	}

	got := Aggregate([]models.WeightedSignal{momentum}, 0, models.RegimeStrongTrending, BandLive)

	if got.Direction != models.DirectionUp {
		t.Errorf("direction = %v, want UP", got.Direction)
	}
	if got.Confidence != 99 {
		t.Errorf("confidence = %v, want 99", got.Confidence)
	}
	if !almostEqual(got.WinningScore, 123.5) {
		t.Errorf("winning score = %v, want 123.5", got.WinningScore)
	}
	if !almostEqual(got.SignalAlignment, 100) {
		t.Errorf("alignment = %v, want 100", got.SignalAlignment)
	}
	if !almostEqual(got.QualityScore, 100) {
		t.Errorf("quality = %v, want 100", got.QualityScore)
	}
}

func TestAggregateRegimeMultiplier(t *testing.T) {
	// A mild signal keeps the scaled value far from the cap so the
	// multiplier stays visible in the final confidence.
	mild := []models.WeightedSignal{
		{Category: CategoryMomentum, Direction: models.DirectionUp, Strength: 40, Weight: 1.0},
	}

	tests := []struct {
		name   string
		regime string
		want   int
	}{
		{"strong trending amplifies", models.RegimeStrongTrending, 91},
		{"trending nudges up", models.RegimeTrending, 83},
		{"ranging tempers", models.RegimeRanging, 72},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Aggregate(mild, 0, tt.regime, BandStandard)
			if got.Confidence != tt.want {
				t.Errorf("confidence = %v, want %v", got.Confidence, tt.want)
			}
		})
	}
}

func TestAggregateNoDirectionalSignals(t *testing.T) {
	signals := []models.WeightedSignal{
		{Category: CategoryMomentum, Direction: models.DirectionNeutral, Weight: 1.0},
		{Category: CategoryTrend, Direction: models.DirectionNeutral, Weight: 1.0},
	}

	got := Aggregate(signals, 5, models.RegimeTrending, BandStandard)

	if got.Direction != models.DirectionNeutral {
		t.Errorf("direction = %v, want NEUTRAL", got.Direction)
	}
	if got.Confidence != 0 {
		t.Errorf("confidence = %v, want 0", got.Confidence)
	}
}

func TestAggregateWinnerByScore(t *testing.T) {
	// One heavy UP signal outscores two lighter DOWN signals despite
	// being outnumbered.
	signals := []models.WeightedSignal{
		{Category: CategoryMomentum, Direction: models.DirectionUp, Strength: 80, Weight: 1.0},
		{Category: CategoryStochastic, Direction: models.DirectionDown, Strength: 50, Weight: 1.0},
		{Category: CategoryMACD, Direction: models.DirectionDown, Strength: 20, Weight: 1.0},
	}

	got := Aggregate(signals, 0, models.RegimeRanging, BandStandard)

	if got.Direction != models.DirectionUp {
		t.Errorf("direction = %v, want UP", got.Direction)
	}
	// Alignment 1/3 and a losing score above 50 wipe the raw score out,
	// so confidence pins at the band floor.
	if got.Confidence != 70 {
		t.Errorf("confidence = %v, want 70", got.Confidence)
	}
	if got.RawScore != 0 {
		t.Errorf("raw score = %v, want 0", got.RawScore)
	}
	if !almostEqual(got.LosingScore, 70) {
		t.Errorf("losing score = %v, want 70", got.LosingScore)
	}
}

func TestAggregateCountTieBreak(t *testing.T) {
	signals := []models.WeightedSignal{
		{Category: CategoryMomentum, Direction: models.DirectionUp, Strength: 60, Weight: 1.0},
		{Category: CategoryStochastic, Direction: models.DirectionUp, Strength: 20, Weight: 1.0},
		{Category: CategoryMACD, Direction: models.DirectionDown, Strength: 80, Weight: 1.0},
	}

	got := Aggregate(signals, 0, models.RegimeRanging, BandStandard)

	if got.Direction != models.DirectionUp {
		t.Errorf("scores tied at 80, count 2v1 should break toward UP, got %v", got.Direction)
	}
}

func TestAggregateDeadHeat(t *testing.T) {
	signals := []models.WeightedSignal{
		{Category: CategoryMomentum, Direction: models.DirectionUp, Strength: 80, Weight: 1.0},
		{Category: CategoryMACD, Direction: models.DirectionDown, Strength: 80, Weight: 1.0},
	}

	got := Aggregate(signals, 0, models.RegimeStrongTrending, BandLive)

	if got.Direction != models.DirectionNeutral {
		t.Errorf("direction = %v, want NEUTRAL", got.Direction)
	}
	if got.Confidence != 0 {
		t.Errorf("confidence = %v, want 0", got.Confidence)
	}
	if !almostEqual(got.SignalAlignment, 50) {
		t.Errorf("alignment = %v, want 50", got.SignalAlignment)
	}
}

func TestAggregateConfidenceWithinBand(t *testing.T) {
	sets := [][]models.WeightedSignal{
		{{Category: CategoryMomentum, Direction: models.DirectionUp, Strength: 95, Weight: 1.3}},
		{{Category: CategoryMomentum, Direction: models.DirectionUp, Strength: 10, Weight: 0.8}},
		{
			{Category: CategoryMomentum, Direction: models.DirectionUp, Strength: 90, Weight: 1.5},
			{Category: CategoryMACD, Direction: models.DirectionDown, Strength: 85, Weight: 1.2},
		},
	}
	regimes := []string{models.RegimeStrongTrending, models.RegimeTrending, models.RegimeRanging}
	bands := []Band{BandStandard, BandLive}
	bonuses := []float64{-10, 0, 15}

	for _, set := range sets {
		for _, regime := range regimes {
			for _, band := range bands {
				for _, bonus := range bonuses {
					got := Aggregate(set, bonus, regime, band)
					if got.Direction == models.DirectionNeutral {
						continue
					}
					if float64(got.Confidence) < band.Min || float64(got.Confidence) > band.Max {
						t.Errorf("confidence %v escaped band [%v, %v] (regime %v, bonus %v)",
							got.Confidence, band.Min, band.Max, regime, bonus)
					}
				}
			}
		}
	}
}

func TestAggregateMonotonicStrength(t *testing.T) {
	// Raising the winning signal's strength must never lower confidence.
	prev := -1
	for s := 40.0; s <= 95; s += 5 {
		signals := []models.WeightedSignal{
			{Category: CategoryMomentum, Direction: models.DirectionUp, Strength: s, Weight: 1.0},
			{Category: CategoryMACD, Direction: models.DirectionDown, Strength: 30, Weight: 1.0},
		}
		got := Aggregate(signals, 0, models.RegimeStrongTrending, BandStandard)
		if got.Confidence < prev {
			t.Fatalf("confidence dropped from %v to %v at strength %v", prev, got.Confidence, s)
		}
		prev = got.Confidence
	}
}

func TestAlignmentPenalty(t *testing.T) {
	tests := []struct {
		name              string
		alignment, losing float64
		want              float64
	}{
		{"full alignment no cost", 100, 0, 0},
		{"threshold itself is free", 85, 0, 0},
		{"just under threshold charges", 84.999, 0, 0.0012},
		{"losing score at fifty is free", 90, 50, 0},
		{"losing score past fifty charges half", 90, 50.01, 25.005},
		{"both terms stack", 60, 80, 70},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := alignmentPenalty(tt.alignment, tt.losing)
			if math.Abs(got-tt.want) > 1e-3 {
				t.Errorf("alignmentPenalty(%v, %v) = %v, want %v", tt.alignment, tt.losing, got, tt.want)
			}
		})
	}
}

func TestConfidenceBandsStayDistinct(t *testing.T) {
	// The standard and live paths intentionally calibrate into different
	// ranges. Identical inputs must not converge.
	if BandStandard == BandLive {
		t.Fatal("standard and live bands must differ")
	}

	signals := []models.WeightedSignal{
		{Category: CategoryMomentum, Direction: models.DirectionUp, Strength: 40, Weight: 1.0},
	}
	std := Aggregate(signals, 0, models.RegimeRanging, BandStandard)
	live := Aggregate(signals, 0, models.RegimeRanging, BandLive)

	if std.Confidence == live.Confidence {
		t.Errorf("standard and live confidences both %v, want distinct values", std.Confidence)
	}
	if live.Confidence < 80 {
		t.Errorf("live confidence = %v, want at least 80", live.Confidence)
	}
}

func TestVolumeBonus(t *testing.T) {
	tests := []struct {
		name  string
		ratio float64
		want  float64
	}{
		{"average volume", 1.0, 0},
		{"mild expansion", 1.2, 5},
		{"cap at fifteen", 2.0, 15},
		{"exactly at cap", 1.6, 15},
		{"mild contraction", 0.8, -5},
		{"floor at minus ten", 0.5, -10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := VolumeBonus(tt.ratio); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("VolumeBonus(%v) = %v, want %v", tt.ratio, got, tt.want)
			}
		})
	}
}
