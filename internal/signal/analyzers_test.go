package signal

import (
	"testing"

	"github.com/islatechai-lang/cryptoomind/models"
)

func TestAnalyzeMomentum(t *testing.T) {
	tests := []struct {
		name         string
		rsi          float64
		wantDir      string
		wantStrength float64
		wantWeight   float64
	}{
		{"deeply oversold", 18, models.DirectionUp, 95, 1.3},
		{"boundary 20 drops to next tier", 20, models.DirectionUp, 85, 1.2},
		{"oversold", 25, models.DirectionUp, 85, 1.2},
		{"boundary 30 drops to next tier", 30, models.DirectionUp, 55, 1.0},
		{"approaching oversold", 35, models.DirectionUp, 55, 1.0},
		{"boundary 40 is neutral", 40, models.DirectionNeutral, 0, 1.0},
		{"dead center", 50, models.DirectionNeutral, 0, 1.0},
		{"boundary 60 is neutral", 60, models.DirectionNeutral, 0, 1.0},
		{"approaching overbought", 65, models.DirectionDown, 55, 1.0},
		{"boundary 70 stays lower tier", 70, models.DirectionDown, 55, 1.0},
		{"overbought", 75, models.DirectionDown, 85, 1.2},
		{"boundary 80 stays lower tier", 80, models.DirectionDown, 85, 1.2},
		{"deeply overbought", 85, models.DirectionDown, 95, 1.3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ind := &models.TechnicalIndicators{RSI: tt.rsi}
			got := AnalyzeMomentum(ind, 100)

			if got.Direction != tt.wantDir {
				t.Errorf("direction = %v, want %v", got.Direction, tt.wantDir)
			}
			if got.Strength != tt.wantStrength {
				t.Errorf("strength = %v, want %v", got.Strength, tt.wantStrength)
			}
			if got.Weight != tt.wantWeight {
				t.Errorf("weight = %v, want %v", got.Weight, tt.wantWeight)
			}
			if got.Category != CategoryMomentum {
				t.Errorf("category = %v, want %v", got.Category, CategoryMomentum)
			}
		})
	}
}

func TestAnalyzeStochastic(t *testing.T) {
	tests := []struct {
		name         string
		k, d         float64
		wantDir      string
		wantStrength float64
	}{
		{"both oversold", 15, 12, models.DirectionUp, 90},
		{"k oversold alone", 15, 35, models.DirectionUp, 72},
		{"near oversold", 25, 40, models.DirectionUp, 48},
		{"both overbought", 88, 86, models.DirectionDown, 90},
		{"k overbought alone", 85, 60, models.DirectionDown, 72},
		{"near overbought", 75, 60, models.DirectionDown, 48},
		{"mid range", 50, 50, models.DirectionNeutral, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ind := &models.TechnicalIndicators{StochK: tt.k, StochD: tt.d}
			got := AnalyzeStochastic(ind, 100)

			if got.Direction != tt.wantDir || got.Strength != tt.wantStrength {
				t.Errorf("got %v/%v, want %v/%v", got.Direction, got.Strength, tt.wantDir, tt.wantStrength)
			}
		})
	}
}

func TestAnalyzeMACD(t *testing.T) {
	tests := []struct {
		name               string
		macd, signal, hist float64
		wantDir            string
		wantStrength       float64
	}{
		{"wide bullish histogram", 1.0, 0.4, 0.6, models.DirectionUp, 80},
		{"clear bullish cross", 1.0, 0.85, 0.15, models.DirectionUp, 65},
		{"marginal bullish cross", 1.0, 0.95, 0.05, models.DirectionUp, 45},
		{"wide bearish histogram", -1.0, -0.4, -0.6, models.DirectionDown, 80},
		{"flat lines", 0.5, 0.5, 0, models.DirectionNeutral, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ind := &models.TechnicalIndicators{MACD: tt.macd, MACDSignal: tt.signal, MACDHist: tt.hist}
			got := AnalyzeMACD(ind, 100)

			if got.Direction != tt.wantDir || got.Strength != tt.wantStrength {
				t.Errorf("got %v/%v, want %v/%v", got.Direction, got.Strength, tt.wantDir, tt.wantStrength)
			}
		})
	}
}

func TestAnalyzeMAConsensus(t *testing.T) {
	tests := []struct {
		name         string
		ind          models.TechnicalIndicators
		price        float64
		wantDir      string
		wantStrength float64
		wantWeight   float64
	}{
		{
			name: "all six agree up",
			ind: models.TechnicalIndicators{
				SMA20: 100, SMA50: 99, SMA100: 98, SMA200: 97,
				EMA12: 105, EMA26: 100,
			},
			price:        110,
			wantDir:      models.DirectionUp,
			wantStrength: 90,
			wantWeight:   1.5,
		},
		{
			name: "five of six agree up",
			ind: models.TechnicalIndicators{
				SMA20: 98, SMA50: 99, SMA100: 97, SMA200: 96,
				EMA12: 105, EMA26: 100,
			},
			price:        110,
			wantDir:      models.DirectionUp,
			wantStrength: 90,
			wantWeight:   1.5,
		},
		{
			name: "four of six lean down",
			ind: models.TechnicalIndicators{
				SMA20: 101, SMA50: 102, SMA100: 103, SMA200: 99,
				EMA12: 100, EMA26: 99,
			},
			price:        100,
			wantDir:      models.DirectionDown,
			wantStrength: 68,
			wantWeight:   1.1,
		},
		{
			name: "three three split is neutral",
			ind: models.TechnicalIndicators{
				SMA20: 99, SMA50: 98, SMA100: 101, SMA200: 102,
				EMA12: 99, EMA26: 100,
			},
			price:        100,
			wantDir:      models.DirectionNeutral,
			wantStrength: 0,
			wantWeight:   1.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AnalyzeMAConsensus(&tt.ind, tt.price)

			if got.Direction != tt.wantDir {
				t.Errorf("direction = %v, want %v", got.Direction, tt.wantDir)
			}
			if got.Strength != tt.wantStrength || got.Weight != tt.wantWeight {
				t.Errorf("strength/weight = %v/%v, want %v/%v",
					got.Strength, got.Weight, tt.wantStrength, tt.wantWeight)
			}
		})
	}
}

func TestAnalyzeBollinger(t *testing.T) {
	ind := &models.TechnicalIndicators{BBUpper: 110, BBMiddle: 100, BBLower: 90}

	tests := []struct {
		name         string
		price        float64
		wantDir      string
		wantStrength float64
	}{
		{"hugging lower band", 90.5, models.DirectionUp, 85},
		{"near lower band", 92, models.DirectionUp, 60},
		{"hugging upper band", 109.5, models.DirectionDown, 85},
		{"near upper band", 107, models.DirectionDown, 60},
		{"mid band", 100, models.DirectionNeutral, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AnalyzeBollinger(ind, tt.price)
			if got.Direction != tt.wantDir || got.Strength != tt.wantStrength {
				t.Errorf("got %v/%v, want %v/%v", got.Direction, got.Strength, tt.wantDir, tt.wantStrength)
			}
		})
	}

	t.Run("collapsed bands", func(t *testing.T) {
		flat := &models.TechnicalIndicators{BBUpper: 100, BBMiddle: 100, BBLower: 100}
		if got := AnalyzeBollinger(flat, 100); got.Direction != models.DirectionNeutral {
			t.Errorf("collapsed bands direction = %v, want NEUTRAL", got.Direction)
		}
	})
}

func TestAnalyzeTrend(t *testing.T) {
	tests := []struct {
		name          string
		adx, pdi, mdi float64
		wantDir       string
		wantStrength  float64
	}{
		{"no trend below gate", 20, 30, 10, models.DirectionNeutral, 0},
		{"gate boundary stays neutral", 25, 30, 10, models.DirectionNeutral, 0},
		{"developing uptrend", 30, 30, 10, models.DirectionUp, 62},
		{"strong uptrend", 45, 30, 10, models.DirectionUp, 78},
		{"extreme uptrend", 55, 30, 10, models.DirectionUp, 90},
		{"extreme downtrend", 55, 10, 30, models.DirectionDown, 90},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ind := &models.TechnicalIndicators{ADX: tt.adx, PlusDI: tt.pdi, MinusDI: tt.mdi}
			got := AnalyzeTrend(ind, 100)
			if got.Direction != tt.wantDir || got.Strength != tt.wantStrength {
				t.Errorf("got %v/%v, want %v/%v", got.Direction, got.Strength, tt.wantDir, tt.wantStrength)
			}
		})
	}
}

func TestAnalyzeRateOfChange(t *testing.T) {
	tests := []struct {
		name         string
		roc          float64
		wantDir      string
		wantStrength float64
	}{
		{"sharp rally", 3.5, models.DirectionUp, 85},
		{"steady climb", 2.0, models.DirectionUp, 65},
		{"drift up", 0.7, models.DirectionUp, 45},
		{"boundary half percent is neutral", 0.5, models.DirectionNeutral, 0},
		{"flat", 0.1, models.DirectionNeutral, 0},
		{"steady decline", -2.0, models.DirectionDown, 65},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ind := &models.TechnicalIndicators{ROC: tt.roc}
			got := AnalyzeRateOfChange(ind, 100)
			if got.Direction != tt.wantDir || got.Strength != tt.wantStrength {
				t.Errorf("got %v/%v, want %v/%v", got.Direction, got.Strength, tt.wantDir, tt.wantStrength)
			}
		})
	}
}

func TestAnalyzeSupportResistance(t *testing.T) {
	tests := []struct {
		name         string
		ind          models.TechnicalIndicators
		wantDir      string
		wantStrength float64
	}{
		{
			name: "sitting on support",
			ind: models.TechnicalIndicators{
				Support: []float64{99}, SupportDistPct: 1.0,
				Resistance: []float64{107}, ResistanceDistPct: 7.0,
			},
			wantDir:      models.DirectionUp,
			wantStrength: 70,
		},
		{
			name: "pressed under resistance",
			ind: models.TechnicalIndicators{
				Resistance: []float64{101}, ResistanceDistPct: 1.0,
			},
			wantDir:      models.DirectionDown,
			wantStrength: 70,
		},
		{
			name: "squeezed between levels",
			ind: models.TechnicalIndicators{
				Support: []float64{99.2}, SupportDistPct: 0.8,
				Resistance: []float64{100.9}, ResistanceDistPct: 0.9,
			},
			wantDir:      models.DirectionNeutral,
			wantStrength: 0,
		},
		{
			name: "loosely above support",
			ind: models.TechnicalIndicators{
				Support: []float64{97.5}, SupportDistPct: 2.5,
			},
			wantDir:      models.DirectionUp,
			wantStrength: 50,
		},
		{
			name:         "no levels mapped",
			ind:          models.TechnicalIndicators{},
			wantDir:      models.DirectionNeutral,
			wantStrength: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AnalyzeSupportResistance(&tt.ind, 100)
			if got.Direction != tt.wantDir || got.Strength != tt.wantStrength {
				t.Errorf("got %v/%v, want %v/%v", got.Direction, got.Strength, tt.wantDir, tt.wantStrength)
			}
		})
	}
}

func TestAnalyzeAllOrderAndCount(t *testing.T) {
	ind := &models.TechnicalIndicators{RSI: 50, StochK: 50, StochD: 50}
	signals := AnalyzeAll(ind, 100)

	wantOrder := []string{
		CategoryMomentum, CategoryStochastic, CategoryMACD, CategoryMAConsensus,
		CategoryBollinger, CategoryTrend, CategoryROC, CategoryLevels,
	}

	if len(signals) != len(wantOrder) {
		t.Fatalf("AnalyzeAll() returned %d signals, want %d", len(signals), len(wantOrder))
	}
	for i, want := range wantOrder {
		if signals[i].Category != want {
			t.Errorf("signals[%d].Category = %v, want %v", i, signals[i].Category, want)
		}
	}
}
