// Package pipeline drives one analysis run through its fixed stage
// sequence. Collaborator failures degrade the run instead of aborting it;
// every run that starts ends with exactly one final verdict.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/islatechai-lang/cryptoomind/internal/audit"
	"github.com/islatechai-lang/cryptoomind/internal/indicator"
	"github.com/islatechai-lang/cryptoomind/internal/metrics"
	"github.com/islatechai-lang/cryptoomind/internal/reasoning"
	"github.com/islatechai-lang/cryptoomind/internal/signal"
	"github.com/islatechai-lang/cryptoomind/models"
)

// ErrNoAllowance rejects a run before its first stage event.
var ErrNoAllowance = errors.New("pipeline: no analysis allowance remaining")

// Subscriber receives the live trace of one run. Calls arrive from the
// run's goroutine in stage order; implementations should return quickly.
type Subscriber interface {
	StageUpdate(stage models.AnalysisStage)
	Thought(text string)
}

// Gate controls who may start a run and charges directional verdicts.
// Consume reports false when the allowance raced to zero since the check.
type Gate interface {
	HasAllowance(ctx context.Context, userID string) (bool, error)
	Consume(ctx context.Context, userID string) (bool, error)
}

// DecisionMaker produces the reasoned decision for one snapshot.
// reasoning.ErrNoDecision means every model failed and the aggregator
// result stands.
type DecisionMaker interface {
	Decide(ctx context.Context, snap *models.ReasoningSnapshot, sink reasoning.ThoughtSink) (*models.ReasoningDecision, string, error)
}

// Request describes one analysis run. Ack, when set, bounds the pause
// between the thinking stream ending and the final verdict.
type Request struct {
	UserID    string
	Pair      string
	Timeframe string
	Ack       *Ack
}

// Runner wires the collaborators every analysis run needs.
type Runner struct {
	market  models.MarketProvider
	news    models.NewsProvider
	decider DecisionMaker
	gate    Gate
	metrics *metrics.Metrics
	logger  zerolog.Logger

	ackTimeout time.Duration
	newsLimit  int
	paceDelay  time.Duration
	now        func() time.Time
}

type Options struct {
	Market  models.MarketProvider
	News    models.NewsProvider
	Decider DecisionMaker
	Gate    Gate
	Metrics *metrics.Metrics

	// AckTimeout bounds the wait for the aiThinkingComplete signal so an
	// absent client cannot hang a run. Defaults to 25s.
	AckTimeout time.Duration
	// NewsLimit caps headlines fetched per run. Defaults to 5.
	NewsLimit int
	// PaceDelay spaces the protocol log lines for narrated playback.
	// Zero means no pacing.
	PaceDelay time.Duration
}

func New(opts Options) *Runner {
	if opts.AckTimeout <= 0 {
		opts.AckTimeout = 25 * time.Second
	}
	if opts.NewsLimit <= 0 {
		opts.NewsLimit = 5
	}
	return &Runner{
		market:     opts.Market,
		news:       opts.News,
		decider:    opts.Decider,
		gate:       opts.Gate,
		metrics:    opts.Metrics,
		logger:     log.With().Str("component", "pipeline").Logger(),
		ackTimeout: opts.AckTimeout,
		newsLimit:  opts.NewsLimit,
		paceDelay:  opts.PaceDelay,
		now:        time.Now,
	}
}

// protocolSteps is the narrated checklist shown between data collection and
// the technical stages. Cosmetic; consumers key off the stage name, not the
// text.
var protocolSteps = []string{
	"Initializing execution protocol",
	"Syncing institutional data feeds",
	"Loading risk management matrix",
	"Calibrating signal thresholds",
	"Protocol ready",
}

// runState accumulates what each stage produced for the stages after it.
type runState struct {
	market      *models.MarketData
	indicators  *models.TechnicalIndicators
	signals     []models.WeightedSignal
	aggregation models.AggregationResult
	audit       *models.AuditReport
	headlines   []models.NewsHeadline
	decision    *models.ReasoningDecision
	model       string
	consumed    bool
	final       *models.PredictionResult
}

// Run executes one analysis for req. A missing allowance or an unknown
// timeframe is refused before any stage event; after that, every failure
// path still terminates in a final verdict.
func (r *Runner) Run(ctx context.Context, req Request, sub Subscriber) (*models.PredictionResult, error) {
	if !models.ValidTimeframe(req.Timeframe) {
		return nil, fmt.Errorf("pipeline: unsupported timeframe %q", req.Timeframe)
	}
	if r.gate != nil {
		ok, err := r.gate.HasAllowance(ctx, req.UserID)
		if err != nil {
			return nil, fmt.Errorf("allowance check failed: %w", err)
		}
		if !ok {
			return nil, ErrNoAllowance
		}
	}

	r.metrics.RunStarted()
	startedAt := r.now()
	result := r.execute(ctx, req, sub)
	r.metrics.RunFinished(result.Direction, result.Degraded, r.now().Sub(startedAt).Seconds())

	r.logger.Info().
		Str("pair", req.Pair).
		Str("timeframe", req.Timeframe).
		Str("direction", result.Direction).
		Int("confidence", result.Confidence).
		Bool("degraded", result.Degraded).
		Msg("Analysis run finished")
	return result, nil
}

func (r *Runner) execute(ctx context.Context, req Request, sub Subscriber) (result *models.PredictionResult) {
	st := &runState{}
	track := &stageTracker{sub: sub, now: r.now}

	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error().
				Interface("panic", rec).
				Str("pair", req.Pair).
				Msg("Analysis run panicked, emitting degraded verdict")
			result = r.degradedVerdict(req, track, st)
		}
	}()

	// data_collection
	track.pending(models.StageDataCollection)
	track.begin(models.StageDataCollection)
	market, err := r.market.FetchMarketData(ctx, req.Pair, req.Timeframe)
	if err != nil {
		r.logger.Error().Err(err).
			Str("pair", req.Pair).
			Str("timeframe", req.Timeframe).
			Msg("Market data unavailable")
		return r.degradedVerdict(req, track, st)
	}
	st.market = market
	if market.Synthetic {
		r.metrics.MarketFallback()
	}
	track.complete(models.StageDataCollection, map[string]any{
		"current_price": market.CurrentPrice,
		"candles":       len(market.Candles),
		"synthetic":     market.Synthetic,
	})

	// protocol_execution
	track.pending(models.StageProtocolExecution)
	track.begin(models.StageProtocolExecution)
	lines := make([]string, 0, len(protocolSteps))
	for _, step := range protocolSteps {
		lines = append(lines, step)
		track.update(models.StageProtocolExecution, map[string]any{
			"log": append([]string(nil), lines...),
		})
		r.pause(ctx)
	}
	track.complete(models.StageProtocolExecution, map[string]any{"log": lines})

	// technical_calculation
	track.pending(models.StageTechnicalCalc)
	track.begin(models.StageTechnicalCalc)
	ind, err := indicator.Compute(st.market.Candles)
	if err != nil {
		r.logger.Error().Err(err).Str("pair", req.Pair).Msg("Indicator computation failed")
		return r.degradedVerdict(req, track, st)
	}
	st.indicators = ind
	track.complete(models.StageTechnicalCalc, map[string]any{
		"rsi":        round2(ind.RSI),
		"adx":        round2(ind.ADX),
		"macd_hist":  round2(ind.MACDHist),
		"regime":     ind.MarketRegime,
		"trend_bias": ind.TrendBias,
	})

	// hedge_fund_audit
	track.pending(models.StageHedgeFundAudit)
	track.begin(models.StageHedgeFundAudit)
	st.audit = audit.Run(st.indicators)
	track.complete(models.StageHedgeFundAudit, map[string]any{
		"score":  st.audit.Score,
		"checks": st.audit.Checks,
	})

	// sentiment_analysis
	track.pending(models.StageSentimentAnalysis)
	track.begin(models.StageSentimentAnalysis)
	if r.news != nil {
		headlines, err := r.news.FetchHeadlines(ctx, req.Pair, r.newsLimit)
		if err != nil {
			r.logger.Warn().Err(err).
				Str("pair", req.Pair).
				Msg("Headline fetch failed, continuing without sentiment")
		} else {
			st.headlines = headlines
		}
	}
	track.complete(models.StageSentimentAnalysis, map[string]any{
		"headlines": len(st.headlines),
	})

	// signal_aggregation
	track.pending(models.StageSignalAggregation)
	track.begin(models.StageSignalAggregation)
	st.signals = signal.AnalyzeAll(st.indicators, st.market.CurrentPrice)
	bonus := signal.VolumeBonus(st.indicators.VolumeRatio)
	st.aggregation = signal.Aggregate(st.signals, bonus, st.indicators.MarketRegime, signal.BandLive)
	track.complete(models.StageSignalAggregation, map[string]any{
		"direction":  st.aggregation.Direction,
		"confidence": st.aggregation.Confidence,
		"alignment":  round2(st.aggregation.SignalAlignment),
	})

	// ai_thinking
	track.pending(models.StageAIThinking)
	track.begin(models.StageAIThinking)
	if r.decider != nil {
		snap := &models.ReasoningSnapshot{
			Pair:         req.Pair,
			Timeframe:    req.Timeframe,
			CurrentPrice: st.market.CurrentPrice,
			Synthetic:    st.market.Synthetic,
			Indicators:   st.indicators,
			Signals:      st.signals,
			Aggregation:  st.aggregation,
			Audit:        st.audit,
			News:         st.headlines,
		}
		var sink reasoning.ThoughtSink
		if sub != nil {
			sink = reasoning.ThoughtFunc(sub.Thought)
		}
		// The reasoning call outlives a closed transport: it runs to
		// completion or its own timeout even when nobody is listening.
		decision, model, err := r.decider.Decide(context.WithoutCancel(ctx), snap, sink)
		switch {
		case err == nil:
			st.decision = decision
			st.model = model
		case errors.Is(err, reasoning.ErrNoDecision):
			r.logger.Warn().
				Str("pair", req.Pair).
				Msg("Reasoning cascade exhausted, standing on aggregator result")
		default:
			r.logger.Warn().Err(err).
				Str("pair", req.Pair).
				Msg("Reasoning unavailable, standing on aggregator result")
		}
		r.metrics.ReasoningOutcome(st.model, st.decision != nil)
	}
	track.complete(models.StageAIThinking, map[string]any{"model": st.model})

	r.waitAck(ctx, req.Ack)

	// final_verdict
	result = r.buildResult(req, st)
	r.consumeIfDirectional(ctx, req, st, result)
	r.emitVerdict(track, st, result)
	return result
}

// buildResult merges the reasoned decision over the aggregator baseline.
// Without a decision the run is marked degraded and the aggregator numbers
// stand as-is.
func (r *Runner) buildResult(req Request, st *runState) *models.PredictionResult {
	result := &models.PredictionResult{
		Pair:            req.Pair,
		Timeframe:       req.Timeframe,
		Direction:       st.aggregation.Direction,
		Confidence:      st.aggregation.Confidence,
		SignalAlignment: st.aggregation.SignalAlignment,
		QualityScore:    st.aggregation.QualityScore,
		Synthetic:       st.market.Synthetic,
		GeneratedAt:     r.now(),
	}
	if st.decision == nil {
		result.Degraded = true
		if len(st.aggregation.Reasons) > 0 {
			result.Rationale = strings.Join(st.aggregation.Reasons, "; ")
		}
		return result
	}

	d := st.decision
	result.Direction = d.Direction
	result.Confidence = int(math.Round(d.Confidence))
	result.Rationale = d.Rationale
	result.RiskFactors = d.RiskFactors
	result.KeyFactors = d.KeyFactors
	targets := d.TradeTargets
	result.TradeTargets = &targets
	result.Duration = d.Duration
	result.ThinkingProcess = d.ThinkingProcess
	result.Model = st.model
	return result
}

// consumeIfDirectional charges the run for UP and DOWN verdicts only.
// NEUTRAL never consumes, and a run never charges twice.
func (r *Runner) consumeIfDirectional(ctx context.Context, req Request, st *runState, result *models.PredictionResult) {
	if r.gate == nil || st.consumed || result.Direction == models.DirectionNeutral {
		return
	}
	st.consumed = true
	// Billing must survive a transport close mid-run.
	ok, err := r.gate.Consume(context.WithoutCancel(ctx), req.UserID)
	if err != nil {
		r.logger.Error().Err(err).Str("user", req.UserID).Msg("Allowance consume failed")
		return
	}
	if !ok {
		r.logger.Warn().Str("user", req.UserID).Msg("Allowance exhausted between check and consume")
		return
	}
	r.metrics.CreditConsumed()
}

// degradedVerdict short-circuits to final_verdict when a run cannot
// continue. NEUTRAL never consumes allowance, so billing stays untouched.
func (r *Runner) degradedVerdict(req Request, track *stageTracker, st *runState) *models.PredictionResult {
	if st.final != nil {
		return st.final
	}
	result := &models.PredictionResult{
		Pair:        req.Pair,
		Timeframe:   req.Timeframe,
		Direction:   models.DirectionNeutral,
		Confidence:  0,
		Rationale:   "data unavailable",
		Degraded:    true,
		GeneratedAt: r.now(),
	}
	r.emitVerdict(track, st, result)
	return result
}

func (r *Runner) emitVerdict(track *stageTracker, st *runState, result *models.PredictionResult) {
	track.pending(models.StageFinalVerdict)
	track.begin(models.StageFinalVerdict)
	track.complete(models.StageFinalVerdict, map[string]any{"result": result})
	st.final = result
}

// waitAck pauses before the verdict so the client can finish narrating the
// thinking text.
func (r *Runner) waitAck(ctx context.Context, ack *Ack) {
	if ack == nil {
		return
	}
	timer := time.NewTimer(r.ackTimeout)
	defer timer.Stop()
	select {
	case <-ack.Done():
	case <-timer.C:
		r.logger.Warn().
			Dur("timeout", r.ackTimeout).
			Msg("Ack wait timed out, proceeding to verdict")
	case <-ctx.Done():
	}
}

// pause spaces narrated updates without ignoring cancellation.
func (r *Runner) pause(ctx context.Context) {
	if r.paceDelay <= 0 {
		return
	}
	select {
	case <-time.After(r.paceDelay):
	case <-ctx.Done():
	}
}

// stageTracker emits the pending/in_progress/complete transitions and
// measures per-stage duration. Stages run sequentially, so a single start
// mark suffices.
type stageTracker struct {
	sub   Subscriber
	now   func() time.Time
	start time.Time
}

func (t *stageTracker) emit(stage models.AnalysisStage) {
	if t.sub != nil {
		t.sub.StageUpdate(stage)
	}
}

func (t *stageTracker) pending(name string) {
	t.emit(models.AnalysisStage{
		Stage:    name,
		Progress: stageProgress(name, models.StatusPending),
		Status:   models.StatusPending,
	})
}

func (t *stageTracker) begin(name string) {
	t.start = t.now()
	t.emit(models.AnalysisStage{
		Stage:    name,
		Progress: stageProgress(name, models.StatusInProgress),
		Status:   models.StatusInProgress,
	})
}

func (t *stageTracker) update(name string, data map[string]any) {
	t.emit(models.AnalysisStage{
		Stage:    name,
		Progress: stageProgress(name, models.StatusInProgress),
		Status:   models.StatusInProgress,
		Data:     data,
	})
}

func (t *stageTracker) complete(name string, data map[string]any) {
	t.emit(models.AnalysisStage{
		Stage:    name,
		Progress: stageProgress(name, models.StatusComplete),
		Status:   models.StatusComplete,
		Duration: t.now().Sub(t.start).Milliseconds(),
		Data:     data,
	})
}

// stageProgress maps a stage and status onto overall run progress 0-100.
func stageProgress(name, status string) int {
	idx := 0
	for i, s := range models.StageOrder {
		if s == name {
			idx = i
			break
		}
	}
	n := len(models.StageOrder)
	switch status {
	case models.StatusPending:
		return idx * 100 / n
	case models.StatusInProgress:
		return (idx*100 + 50) / n
	default:
		return (idx + 1) * 100 / n
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
