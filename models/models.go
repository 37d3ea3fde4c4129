package models

import "time"

// Signal directions shared by analyzers, aggregation and verdicts
const (
	DirectionUp      = "UP"
	DirectionDown    = "DOWN"
	DirectionNeutral = "NEUTRAL"
)

// Market regime classification derived from ADX
const (
	RegimeStrongTrending = "STRONG_TRENDING"
	RegimeTrending       = "TRENDING"
	RegimeRanging        = "RANGING"
)

// Trend bias derived from the moving-average stack
const (
	BiasBullish = "BULLISH"
	BiasBearish = "BEARISH"
	BiasNeutral = "NEUTRAL"
)

// Pipeline stage names. Remote consumers key off these exact strings.
const (
	StageDataCollection    = "data_collection"
	StageProtocolExecution = "protocol_execution"
	StageTechnicalCalc     = "technical_calculation"
	StageHedgeFundAudit    = "hedge_fund_audit"
	StageSentimentAnalysis = "sentiment_analysis"
	StageSignalAggregation = "signal_aggregation"
	StageAIThinking        = "ai_thinking"
	StageFinalVerdict      = "final_verdict"
)

// StageOrder is the strict execution order of one pipeline run.
var StageOrder = []string{
	StageDataCollection,
	StageProtocolExecution,
	StageTechnicalCalc,
	StageHedgeFundAudit,
	StageSentimentAnalysis,
	StageSignalAggregation,
	StageAIThinking,
	StageFinalVerdict,
}

// Stage status values
const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusComplete   = "complete"
)

// Audit check outcomes
const (
	AuditPass = "pass"
	AuditWarn = "warn"
	AuditFail = "fail"
)

// Candle represents a single OHLCV bar. Timestamp is unix seconds; series
// are kept ascending with no duplicate timestamps.
type Candle struct {
	Timestamp int64   `json:"timestamp"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume,omitempty"`
}

// MarketData is the provider snapshot one analysis run starts from.
// Synthetic marks series that were padded or generated around the current
// price after a provider failure.
type MarketData struct {
	Pair            string   `json:"pair"`
	Timeframe       string   `json:"timeframe"`
	CurrentPrice    float64  `json:"current_price"`
	Candles         []Candle `json:"candles"`
	PriceChange24h  float64  `json:"price_change_24h"`
	VolumeChange24h float64  `json:"volume_change_24h"`
	Synthetic       bool     `json:"synthetic"`
}

// TechnicalIndicators holds the full indicator snapshot for one series
type TechnicalIndicators struct {
	RSI        float64 `json:"rsi"`
	StochK     float64 `json:"stoch_k"`
	StochD     float64 `json:"stoch_d"`
	MACD       float64 `json:"macd"`
	MACDSignal float64 `json:"macd_signal"`
	MACDHist   float64 `json:"macd_hist"`

	SMA20  float64 `json:"sma_20"`
	SMA50  float64 `json:"sma_50"`
	SMA100 float64 `json:"sma_100"`
	SMA200 float64 `json:"sma_200"`
	EMA12  float64 `json:"ema_12"`
	EMA26  float64 `json:"ema_26"`
	EMA50  float64 `json:"ema_50"`

	BBUpper  float64 `json:"bb_upper"`
	BBMiddle float64 `json:"bb_middle"`
	BBLower  float64 `json:"bb_lower"`
	BBWidth  float64 `json:"bb_width"`

	ADX     float64 `json:"adx"`
	PlusDI  float64 `json:"plus_di"`
	MinusDI float64 `json:"minus_di"`
	ATR     float64 `json:"atr"`

	Momentum    float64 `json:"momentum"` // close - close n periods ago
	ROC         float64 `json:"roc"`      // momentum as % of the older close
	OBV         float64 `json:"obv"`
	VolumeRatio float64 `json:"volume_ratio"` // last volume vs 20-period average

	Support           []float64 `json:"support,omitempty"`
	Resistance        []float64 `json:"resistance,omitempty"`
	SupportDist       float64   `json:"support_dist"`
	ResistanceDist    float64   `json:"resistance_dist"`
	SupportDistPct    float64   `json:"support_dist_pct"`
	ResistanceDistPct float64   `json:"resistance_dist_pct"`

	TrendBias     string  `json:"trend_bias"`
	MarketRegime  string  `json:"market_regime"`
	TrendStrength float64 `json:"trend_strength"` // 0-100
}

// WeightedSignal is a single analyzer's directional opinion. Never mutated
// after creation.
type WeightedSignal struct {
	Direction string  `json:"direction"`
	Strength  float64 `json:"strength"` // 0-100
	Weight    float64 `json:"weight"`   // typically 0.5-1.6
	Category  string  `json:"category"`
	Reason    string  `json:"reason"`
}

// AggregationResult is the calibrated combination of one signal set.
// Deterministic for identical inputs.
type AggregationResult struct {
	Direction       string   `json:"direction"`
	Confidence      int      `json:"confidence"`
	SignalAlignment float64  `json:"signal_alignment"`
	QualityScore    float64  `json:"quality_score"`
	Reasons         []string `json:"reasons"`

	WinningScore float64 `json:"winning_score"`
	LosingScore  float64 `json:"losing_score"`
	RawScore     float64 `json:"raw_score"`
}

// NewsHeadline is one item from the news collaborator
type NewsHeadline struct {
	Title       string    `json:"title"`
	Source      string    `json:"source"`
	Sentiment   string    `json:"sentiment"`
	PublishedAt time.Time `json:"published_at"`
}

type AuditCheck struct {
	Name   string `json:"name"`
	Status string `json:"status"` // pass, warn, fail
	Detail string `json:"detail"`
}

// AuditReport carries the audit checks plus their displayed score
type AuditReport struct {
	Checks []AuditCheck `json:"checks"`
	Score  float64      `json:"score"`
}

// ReasoningSnapshot is the complete context handed to the reasoning model.
// Immutable once built.
type ReasoningSnapshot struct {
	Pair         string               `json:"pair"`
	Timeframe    string               `json:"timeframe"`
	CurrentPrice float64              `json:"current_price"`
	Synthetic    bool                 `json:"synthetic"`
	Indicators   *TechnicalIndicators `json:"indicators"`
	Signals      []WeightedSignal     `json:"signals"`
	Aggregation  AggregationResult    `json:"aggregation"`
	Audit        *AuditReport         `json:"audit,omitempty"`
	News         []NewsHeadline       `json:"news,omitempty"`
}

type PriceRange struct {
	Low  float64 `json:"low" validate:"required"`
	High float64 `json:"high" validate:"required"`
}

type TradeTargets struct {
	Entry  PriceRange `json:"entry"`
	Target PriceRange `json:"target"`
	Stop   float64    `json:"stop" validate:"required"`
}

// ReasoningDecision is the structured model output. Confidence is clamped
// into [80,99] after parsing regardless of what the model returned, so it
// carries no range constraint here.
type ReasoningDecision struct {
	Direction       string       `json:"direction" validate:"required,oneof=UP DOWN NEUTRAL"`
	Confidence      float64      `json:"confidence"`
	Rationale       string       `json:"rationale" validate:"required"`
	RiskFactors     []string     `json:"riskFactors" validate:"required,min=2,max=4,dive,required"`
	KeyFactors      []string     `json:"keyFactors" validate:"required,min=3,max=6,dive,required"`
	TradeTargets    TradeTargets `json:"tradeTargets"`
	Duration        string       `json:"duration" validate:"required"`
	ThinkingProcess string       `json:"thinkingProcess,omitempty"`
}

// AnalysisStage is one externally visible pipeline step. A later update for
// the same stage name replaces the earlier one, never duplicates.
type AnalysisStage struct {
	Stage    string         `json:"stage"`
	Progress int            `json:"progress"` // 0-100
	Status   string         `json:"status"`
	Duration int64          `json:"duration,omitempty"` // ms, set once complete
	Data     map[string]any `json:"data,omitempty"`
}

// PredictionResult stores the terminal verdict of one run. Model is empty
// when the reasoning cascade was exhausted and the aggregator result stood.
type PredictionResult struct {
	Pair            string        `json:"pair"`
	Timeframe       string        `json:"timeframe"`
	Direction       string        `json:"direction"`
	Confidence      int           `json:"confidence"`
	SignalAlignment float64       `json:"signal_alignment"`
	QualityScore    float64       `json:"quality_score"`
	Rationale       string        `json:"rationale"`
	RiskFactors     []string      `json:"risk_factors,omitempty"`
	KeyFactors      []string      `json:"key_factors,omitempty"`
	TradeTargets    *TradeTargets `json:"trade_targets,omitempty"`
	Duration        string        `json:"duration,omitempty"`
	ThinkingProcess string        `json:"thinking_process,omitempty"`
	Model           string        `json:"model,omitempty"`
	Synthetic       bool          `json:"synthetic,omitempty"`
	Degraded        bool          `json:"degraded,omitempty"`
	GeneratedAt     time.Time     `json:"generated_at"`
}
