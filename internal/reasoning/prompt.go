package reasoning

import (
	"fmt"
	"strings"

	"github.com/islatechai-lang/cryptoomind/models"
)

// decisionSchema is the exact JSON contract appended to every prompt. Field
// names must stay in lockstep with models.ReasoningDecision tags.
const decisionSchema = `Respond with a single JSON object and nothing else:
{
  "direction": "UP" | "DOWN" | "NEUTRAL",
  "confidence": <integer between 80 and 99>,
  "rationale": "<2-4 sentences>",
  "riskFactors": ["<2 to 4 short items>"],
  "keyFactors": ["<3 to 6 short items>"],
  "tradeTargets": {
    "entry": {"low": <number>, "high": <number>},
    "target": {"low": <number>, "high": <number>},
    "stop": <number>
  },
  "duration": "<expected hold duration>"
}`

// BuildPrompt renders the analyst brief one model answers. Everything the
// pipeline knows goes in; the schema contract closes the prompt.
func BuildPrompt(snap *models.ReasoningSnapshot) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "You are a senior currency analyst. Evaluate %s on the %s timeframe and call the next move.\n\n",
		snap.Pair, snap.Timeframe)
	fmt.Fprintf(&sb, "Current price: %.5f\n", snap.CurrentPrice)
	if snap.Synthetic {
		sb.WriteString("Data quality: the price feed degraded and parts of the series were reconstructed. Weigh indicator readings accordingly.\n")
	}

	if ind := snap.Indicators; ind != nil {
		sb.WriteString("\nTechnical picture:\n")
		fmt.Fprintf(&sb, "- RSI %.1f, stochastic %.1f/%.1f\n", ind.RSI, ind.StochK, ind.StochD)
		fmt.Fprintf(&sb, "- MACD %.5f vs signal %.5f (histogram %.5f)\n", ind.MACD, ind.MACDSignal, ind.MACDHist)
		fmt.Fprintf(&sb, "- SMA20 %.5f, SMA50 %.5f, SMA200 %.5f, EMA12 %.5f, EMA26 %.5f\n",
			ind.SMA20, ind.SMA50, ind.SMA200, ind.EMA12, ind.EMA26)
		fmt.Fprintf(&sb, "- Bollinger %.5f / %.5f / %.5f\n", ind.BBUpper, ind.BBMiddle, ind.BBLower)
		fmt.Fprintf(&sb, "- ADX %.1f (+DI %.1f, -DI %.1f), ATR %.5f\n", ind.ADX, ind.PlusDI, ind.MinusDI, ind.ATR)
		fmt.Fprintf(&sb, "- Regime %s, bias %s, trend strength %.0f\n", ind.MarketRegime, ind.TrendBias, ind.TrendStrength)
		if len(ind.Support) > 0 {
			fmt.Fprintf(&sb, "- Nearest support %.5f (%.2f%% below)\n", ind.Support[0], ind.SupportDistPct)
		}
		if len(ind.Resistance) > 0 {
			fmt.Fprintf(&sb, "- Nearest resistance %.5f (%.2f%% above)\n", ind.Resistance[0], ind.ResistanceDistPct)
		}
	}

	if len(snap.Signals) > 0 {
		sb.WriteString("\nSignal votes:\n")
		for _, s := range snap.Signals {
			fmt.Fprintf(&sb, "- %s: %s (strength %.0f, weight %.1f) %s\n",
				s.Category, s.Direction, s.Strength, s.Weight, s.Reason)
		}
	}

	agg := snap.Aggregation
	fmt.Fprintf(&sb, "\nAggregated read: %s at %d%% confidence, alignment %.0f%%, quality %.0f.\n",
		agg.Direction, agg.Confidence, agg.SignalAlignment, agg.QualityScore)

	if snap.Audit != nil {
		fmt.Fprintf(&sb, "\nSafety audit (score %.0f):\n", snap.Audit.Score)
		for _, c := range snap.Audit.Checks {
			fmt.Fprintf(&sb, "- %s: %s (%s)\n", c.Name, c.Status, c.Detail)
		}
	}

	if len(snap.News) > 0 {
		sb.WriteString("\nRecent headlines:\n")
		for _, h := range snap.News {
			fmt.Fprintf(&sb, "- [%s] %s (%s)\n", h.Sentiment, h.Title, h.Source)
		}
	}

	sb.WriteString("\nThink through the evidence first, then commit. ")
	sb.WriteString(decisionSchema)
	return sb.String()
}
