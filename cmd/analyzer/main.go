package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/islatechai-lang/cryptoomind/config"
	"github.com/islatechai-lang/cryptoomind/internal/cache"
	"github.com/islatechai-lang/cryptoomind/internal/market"
	"github.com/islatechai-lang/cryptoomind/internal/news"
	"github.com/islatechai-lang/cryptoomind/internal/pipeline"
	"github.com/islatechai-lang/cryptoomind/internal/reasoning"
	"github.com/islatechai-lang/cryptoomind/models"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Setup context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	setupSignalHandling(cancel)

	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// 2. Configure logging
	setupLogging(cfg.LogLevel)
	log.Info().Str("pair", cfg.Pair).Str("timeframe", cfg.Timeframe).Msg("Starting one-shot analysis")

	// 3. Providers. Console runs keep the cache in memory and skip the
	// credit gate entirely.
	marketClient := market.NewClient(market.ClientOptions{
		APIKey:         cfg.TwelveAPIKey,
		RequestTimeout: time.Duration(cfg.RequestTimeout) * time.Second,
		RequestsPerSec: 5,
		MaxRetries:     3,
	})
	provider := market.NewProvider(market.ProviderOptions{
		Client:      marketClient,
		Cache:       cache.NewMemory(),
		CacheTTL:    time.Duration(cfg.CacheTTL) * time.Second,
		CandleCount: cfg.CandleCount,
	})

	var newsProvider models.NewsProvider
	if cfg.NewsAPIKey != "" {
		newsProvider = news.NewClient(news.ClientOptions{
			APIKey:         cfg.NewsAPIKey,
			BaseURL:        cfg.NewsBaseURL,
			RequestTimeout: time.Duration(cfg.RequestTimeout) * time.Second,
			RequestsPerSec: 2,
			MaxRetries:     2,
		})
	}

	var decider pipeline.DecisionMaker
	if cfg.OpenAIKey != "" {
		decider = reasoning.New(reasoning.Options{
			Stream:         reasoning.NewOpenAIStream(cfg.OpenAIKey, cfg.OpenAIBaseURL),
			Models:         cfg.ReasoningModels,
			AttemptTimeout: time.Duration(cfg.ReasoningTimeout) * time.Second,
		})
	}

	runner := pipeline.New(pipeline.Options{
		Market:    provider,
		News:      newsProvider,
		Decider:   decider,
		NewsLimit: cfg.NewsLimit,
		PaceDelay: 250 * time.Millisecond,
	})

	// 4. Run the pipeline with a console subscriber. No ack handshake on
	// the console path, so the verdict follows the thinking stream directly.
	sub := &consoleSubscriber{}
	result, err := runner.Run(ctx, pipeline.Request{
		UserID:    "console",
		Pair:      cfg.Pair,
		Timeframe: cfg.Timeframe,
	}, sub)
	if err != nil {
		log.Fatal().Err(err).Msg("Analysis failed")
	}

	printResult(result)
}

// setupSignalHandling configures signal handling for graceful shutdown
func setupSignalHandling(cancel context.CancelFunc) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		log.Info().Msg("Shutdown signal received, exiting...")
		cancel()
		os.Exit(0)
	}()
}

// setupLogging configures the logger
func setupLogging(logLevel string) {
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	log.Logger = log.Output(output)

	level, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log.Logger = log.Logger.Level(level)
}

// consoleSubscriber renders the stage trail as checklist lines and streams
// the thinking text straight to stdout.
type consoleSubscriber struct {
	trail    []models.AnalysisStage
	thinking bool
}

func (c *consoleSubscriber) StageUpdate(stage models.AnalysisStage) {
	c.trail = models.MergeStage(c.trail, stage)

	switch stage.Status {
	case models.StatusInProgress:
		if lines, ok := stage.Data["log"].([]string); ok && len(lines) > 0 {
			fmt.Printf("        %s\n", lines[len(lines)-1])
		}
	case models.StatusComplete:
		fmt.Printf("[%3d%%] %s (%d ms)\n", stage.Progress, stage.Stage, stage.Duration)
	}
}

func (c *consoleSubscriber) Thought(text string) {
	if !c.thinking {
		fmt.Println("\n===== AI THINKING =====")
		c.thinking = true
	}
	fmt.Print(text)
}

// printResult outputs the final verdict
func printResult(result *models.PredictionResult) {
	fmt.Println("\n===== VERDICT =====")
	fmt.Printf("Pair: %s (%s)\n", result.Pair, result.Timeframe)
	fmt.Printf("Direction: %s | Confidence: %d%% | Quality: %.0f | Alignment: %.1f%%\n",
		result.Direction, result.Confidence, result.QualityScore, result.SignalAlignment)

	if result.Rationale != "" {
		fmt.Printf("\nRationale: %s\n", result.Rationale)
	}

	if len(result.KeyFactors) > 0 {
		fmt.Println("\nKey Factors:")
		for _, factor := range result.KeyFactors {
			fmt.Printf("- %s\n", factor)
		}
	}

	if len(result.RiskFactors) > 0 {
		fmt.Println("\nRisk Factors:")
		for _, factor := range result.RiskFactors {
			fmt.Printf("- %s\n", factor)
		}
	}

	if result.TradeTargets != nil {
		fmt.Printf("\nEntry: %.5f-%.5f | Target: %.5f-%.5f | Stop: %.5f\n",
			result.TradeTargets.Entry.Low, result.TradeTargets.Entry.High,
			result.TradeTargets.Target.Low, result.TradeTargets.Target.High,
			result.TradeTargets.Stop)
	}
	if result.Duration != "" {
		fmt.Printf("Expected Duration: %s\n", result.Duration)
	}

	if result.Synthetic {
		fmt.Println("\nNote: synthetic market data was used for this run")
	}
	if result.Degraded {
		fmt.Println("\nNote: degraded result, data was unavailable")
	}
	if result.Model != "" {
		fmt.Printf("\nModel: %s\n", result.Model)
	}
	fmt.Printf("Generated: %s\n", result.GeneratedAt.Format(time.RFC3339))
}
