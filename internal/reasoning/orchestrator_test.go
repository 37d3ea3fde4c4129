package reasoning

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/islatechai-lang/cryptoomind/models"
)

type script struct {
	chunks []Chunk
	err    error
}

type scriptedStream struct {
	scripts map[string]script
	calls   []string
}

func (s *scriptedStream) Stream(_ context.Context, model, _ string, emit func(Chunk)) error {
	s.calls = append(s.calls, model)
	sc, ok := s.scripts[model]
	if !ok {
		return errors.New("model offline")
	}
	for _, c := range sc.chunks {
		emit(c)
	}
	return sc.err
}

type thoughtRecorder struct {
	texts []string
}

func (r *thoughtRecorder) Thought(text string) { r.texts = append(r.texts, text) }

func decisionJSON(t *testing.T, mutate func(m map[string]any)) string {
	t.Helper()
	m := map[string]any{
		"direction":   "UP",
		"confidence":  87,
		"rationale":   "Momentum and trend agree while price holds above support.",
		"riskFactors": []string{"thin liquidity into the close", "payroll release tomorrow"},
		"keyFactors":  []string{"RSI recovering from oversold", "MACD crossover", "price above SMA20"},
		"tradeTargets": map[string]any{
			"entry":  map[string]any{"low": 1.0800, "high": 1.0820},
			"target": map[string]any{"low": 1.0860, "high": 1.0900},
			"stop":   1.0760,
		},
		"duration": "4-6 hours",
	}
	if mutate != nil {
		mutate(m)
	}
	b, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal test decision: %v", err)
	}
	return string(b)
}

func contentChunks(text string) []Chunk {
	// Split so the JSON arrives in several pieces like a real stream.
	mid := len(text) / 2
	return []Chunk{{Text: text[:mid]}, {Text: text[mid:]}}
}

func testSnapshot() *models.ReasoningSnapshot {
	return &models.ReasoningSnapshot{
		Pair:         "EUR/USD",
		Timeframe:    "1h",
		CurrentPrice: 1.0842,
		Aggregation: models.AggregationResult{
			Direction:       models.DirectionUp,
			Confidence:      84,
			SignalAlignment: 90,
		},
	}
}

func TestDecideFallbackCascade(t *testing.T) {
	stream := &scriptedStream{scripts: map[string]script{
		"alpha": {err: errors.New("rate limited")},
		"beta":  {chunks: []Chunk{{Text: "I cannot answer in the requested format."}}},
		"gamma": {chunks: contentChunks(decisionJSON(t, nil))},
	}}
	o := New(Options{Stream: stream, Models: []string{"alpha", "beta", "gamma"}, AttemptTimeout: time.Second})

	decision, model, err := o.Decide(context.Background(), testSnapshot(), nil)
	if err != nil {
		t.Fatalf("Decide() error = %v, earlier failures must stay internal", err)
	}

	if model != "gamma" {
		t.Errorf("model = %q, want gamma", model)
	}
	if decision.Direction != models.DirectionUp {
		t.Errorf("direction = %v, want UP", decision.Direction)
	}
	if want := []string{"alpha", "beta", "gamma"}; !reflect.DeepEqual(stream.calls, want) {
		t.Errorf("attempt order = %v, want %v", stream.calls, want)
	}
}

func TestDecideAllModelsFail(t *testing.T) {
	stream := &scriptedStream{scripts: map[string]script{}}
	o := New(Options{Stream: stream, Models: []string{"alpha", "beta", "gamma"}, AttemptTimeout: time.Second})

	_, _, err := o.Decide(context.Background(), testSnapshot(), nil)
	if !errors.Is(err, ErrNoDecision) {
		t.Fatalf("Decide() error = %v, want ErrNoDecision", err)
	}
	if len(stream.calls) != 3 {
		t.Errorf("attempted %d models, want all 3", len(stream.calls))
	}
}

func TestDecideForwardsSanitizedThoughts(t *testing.T) {
	stream := &scriptedStream{scripts: map[string]script{
		"alpha": {chunks: append([]Chunk{
			{Thought: true, Text: "Momentum looks stretched "},
			{Thought: true, Text: "```json\n{\"direction\":\"UP\"}\n```"},
			{Thought: true, Text: "but trend supports longs."},
		}, contentChunks(decisionJSON(t, nil))...)},
	}}
	o := New(Options{Stream: stream, Models: []string{"alpha"}, AttemptTimeout: time.Second})

	sink := &thoughtRecorder{}
	decision, _, err := o.Decide(context.Background(), testSnapshot(), sink)
	if err != nil {
		t.Fatalf("Decide() error = %v", err)
	}

	all := strings.Join(sink.texts, "")
	if strings.Contains(all, "direction") || strings.Contains(all, "`") {
		t.Errorf("unsanitized thought reached the sink: %q", all)
	}
	if !strings.Contains(all, "Momentum looks stretched") || !strings.Contains(all, "trend supports longs") {
		t.Errorf("thought prose lost: %q", all)
	}
	if !strings.Contains(decision.ThinkingProcess, "trend supports longs") {
		t.Errorf("ThinkingProcess = %q, want accumulated thoughts", decision.ThinkingProcess)
	}
}

func TestDecideStopsWhenContextCancelled(t *testing.T) {
	stream := &scriptedStream{scripts: map[string]script{}}
	o := New(Options{Stream: stream, Models: []string{"alpha", "beta", "gamma"}, AttemptTimeout: time.Second})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := o.Decide(ctx, testSnapshot(), nil)
	if err == nil {
		t.Fatal("Decide() error = nil, want cancellation")
	}
	if len(stream.calls) > 1 {
		t.Errorf("attempted %d models after cancel, want at most 1", len(stream.calls))
	}
}

func TestParseDecision(t *testing.T) {
	tests := []struct {
		name           string
		raw            string
		wantErr        bool
		wantDirection  string
		wantConfidence float64
	}{
		{
			name:           "plain json",
			raw:            decisionJSON(t, nil),
			wantDirection:  "UP",
			wantConfidence: 87,
		},
		{
			name:           "fenced json",
			raw:            "```json\n" + decisionJSON(t, nil) + "\n```",
			wantDirection:  "UP",
			wantConfidence: 87,
		},
		{
			name:           "prose wrapped",
			raw:            "Here is my call:\n" + decisionJSON(t, nil) + "\nGood luck.",
			wantDirection:  "UP",
			wantConfidence: 87,
		},
		{
			name:           "lowballed confidence clamps up",
			raw:            decisionJSON(t, func(m map[string]any) { m["confidence"] = 40 }),
			wantDirection:  "UP",
			wantConfidence: 80,
		},
		{
			name:           "overconfident clamps down",
			raw:            decisionJSON(t, func(m map[string]any) { m["confidence"] = 150 }),
			wantDirection:  "UP",
			wantConfidence: 99,
		},
		{
			name:           "lowercase direction normalized",
			raw:            decisionJSON(t, func(m map[string]any) { m["direction"] = "down" }),
			wantDirection:  "DOWN",
			wantConfidence: 87,
		},
		{
			name:    "unknown direction rejected",
			raw:     decisionJSON(t, func(m map[string]any) { m["direction"] = "SIDEWAYS" }),
			wantErr: true,
		},
		{
			name:    "too few risk factors",
			raw:     decisionJSON(t, func(m map[string]any) { m["riskFactors"] = []string{"only one"} }),
			wantErr: true,
		},
		{
			name: "too many key factors",
			raw: decisionJSON(t, func(m map[string]any) {
				m["keyFactors"] = []string{"a", "b", "c", "d", "e", "f", "g"}
			}),
			wantErr: true,
		},
		{
			name: "missing stop",
			raw: decisionJSON(t, func(m map[string]any) {
				m["tradeTargets"] = map[string]any{
					"entry":  map[string]any{"low": 1.08, "high": 1.082},
					"target": map[string]any{"low": 1.086, "high": 1.09},
				}
			}),
			wantErr: true,
		},
		{
			name:    "not json",
			raw:     "the market will probably go up",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDecision(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDecision() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got.Direction != tt.wantDirection {
				t.Errorf("direction = %v, want %v", got.Direction, tt.wantDirection)
			}
			if got.Confidence != tt.wantConfidence {
				t.Errorf("confidence = %v, want %v", got.Confidence, tt.wantConfidence)
			}
		})
	}
}

func TestBuildPromptCarriesContext(t *testing.T) {
	snap := testSnapshot()
	snap.Synthetic = true
	snap.Indicators = &models.TechnicalIndicators{RSI: 28.4, MarketRegime: models.RegimeTrending}
	snap.Signals = []models.WeightedSignal{
		{Category: "momentum", Direction: models.DirectionUp, Strength: 85, Weight: 1.2, Reason: "RSI 28.4 oversold"},
	}
	snap.News = []models.NewsHeadline{
		{Title: "Euro climbs after inflation surprise", Source: "wire", Sentiment: "positive"},
	}

	prompt := BuildPrompt(snap)

	for _, want := range []string{
		"EUR/USD",
		"RSI 28.4 oversold",
		"Euro climbs after inflation surprise",
		"reconstructed",
		`"direction": "UP" | "DOWN" | "NEUTRAL"`,
		`"riskFactors"`,
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}
