package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/islatechai-lang/cryptoomind/config"
	"github.com/islatechai-lang/cryptoomind/internal/cache"
	"github.com/islatechai-lang/cryptoomind/internal/entitlement"
	"github.com/islatechai-lang/cryptoomind/internal/live"
	"github.com/islatechai-lang/cryptoomind/internal/market"
	"github.com/islatechai-lang/cryptoomind/internal/metrics"
	"github.com/islatechai-lang/cryptoomind/internal/news"
	"github.com/islatechai-lang/cryptoomind/internal/notify"
	"github.com/islatechai-lang/cryptoomind/internal/pipeline"
	"github.com/islatechai-lang/cryptoomind/internal/reasoning"
	"github.com/islatechai-lang/cryptoomind/models"

	_ "github.com/lib/pq"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// protocolPace spaces the narrated protocol log lines so the stream reads
// as a live checklist instead of one burst.
const protocolPace = 350 * time.Millisecond

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// 2. Configure logging
	setupLogging(cfg.LogLevel)
	log.Info().Msg("Starting analysis server")

	m := metrics.New(nil)

	// 3. Candle cache: layered over Redis when configured, memory-only otherwise
	var candleCache cache.Store = cache.NewMemory()
	var redisStore *cache.Redis
	if cfg.RedisAddr != "" {
		redisStore = cache.NewRedis(cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := redisStore.Ping(context.Background()); err != nil {
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("Redis unreachable, continuing with it anyway")
		}
		candleCache = cache.NewLayered(cache.NewMemory(), redisStore, time.Duration(cfg.CacheTTL)*time.Second)
		log.Info().Str("addr", cfg.RedisAddr).Msg("Candle cache layered over Redis")
	}

	// 4. Market and news providers
	marketClient := market.NewClient(market.ClientOptions{
		APIKey:         cfg.TwelveAPIKey,
		RequestTimeout: time.Duration(cfg.RequestTimeout) * time.Second,
		RequestsPerSec: 5,
		MaxRetries:     3,
	})
	provider := market.NewProvider(market.ProviderOptions{
		Client:      marketClient,
		Cache:       candleCache,
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
	} else {
		log.Warn().Msg("NEWS_API_KEY not set, sentiment stage will run without headlines")
	}

	// 5. Reasoning cascade
	var decider pipeline.DecisionMaker
	if cfg.OpenAIKey != "" {
		decider = reasoning.New(reasoning.Options{
			Stream:         reasoning.NewOpenAIStream(cfg.OpenAIKey, cfg.OpenAIBaseURL),
			Models:         cfg.ReasoningModels,
			AttemptTimeout: time.Duration(cfg.ReasoningTimeout) * time.Second,
		})
	} else {
		log.Warn().Msg("OPENAI_KEY not set, verdicts fall back to the signal aggregator")
	}

	// 6. Credit ledger
	var gate pipeline.Gate
	var ledger *entitlement.Postgres
	if cfg.DBHost != "" {
		ledger, err = entitlement.NewPostgres(entitlement.ConnectionParams{
			Host:     cfg.DBHost,
			Port:     cfg.DBPort,
			User:     cfg.DBUser,
			Password: cfg.DBPassword,
			DBName:   cfg.DBName,
			SSLMode:  cfg.DBSSLMode,
		}, cfg.FreeCredits)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize credit ledger")
		}
		defer ledger.Close()
		gate = ledger
		log.Info().Str("host", cfg.DBHost).Str("dbname", cfg.DBName).Msg("Credit ledger connected")
	} else {
		log.Warn().Msg("DB_HOST not set, using in-memory credit ledger")
		gate = entitlement.NewMemory(cfg.FreeCredits)
	}

	// 7. Verdict notifier
	var notifier notify.Notifier
	if cfg.TelegramToken != "" && cfg.TelegramChatID != 0 {
		tg, err := notify.NewTelegram(cfg.TelegramToken, cfg.TelegramChatID, log.Logger)
		if err != nil {
			log.Warn().Err(err).Msg("Telegram notifier unavailable, falling back to log")
		} else {
			notifier = tg
		}
	}
	if notifier == nil {
		notifier = notify.NewLog(log.Logger)
	}

	// 8. Pipeline and transport
	runner := pipeline.New(pipeline.Options{
		Market:     provider,
		News:       newsProvider,
		Decider:    decider,
		Gate:       gate,
		Metrics:    m,
		AckTimeout: time.Duration(cfg.AckTimeout) * time.Second,
		NewsLimit:  cfg.NewsLimit,
		PaceDelay:  protocolPace,
	})

	mux := http.NewServeMux()
	mux.Handle("/ws", live.NewHandler(&notifyingRunner{next: runner, notifier: notifier}, m))
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		status := map[string]string{"status": "ok"}
		code := http.StatusOK
		if redisStore != nil {
			if err := redisStore.Ping(r.Context()); err != nil {
				status["redis"] = err.Error()
				status["status"] = "degraded"
				code = http.StatusServiceUnavailable
			} else {
				status["redis"] = "ok"
			}
		}
		if ledger != nil {
			if err := ledger.Ping(r.Context()); err != nil {
				status["postgres"] = err.Error()
				status["status"] = "degraded"
				code = http.StatusServiceUnavailable
			} else {
				status["postgres"] = "ok"
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		json.NewEncoder(w).Encode(status)
	})

	srv := &http.Server{Addr: cfg.ServerAddr, Handler: mux}

	// 9. Serve until interrupted
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info().Str("addr", cfg.ServerAddr).Msg("Serving websocket transport")
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	<-sigCh
	log.Info().Msg("Shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Shutdown incomplete")
	}
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

// notifyingRunner pushes completed directional verdicts to the operator
// channel after the run. Neutral and degraded outcomes stay quiet.
type notifyingRunner struct {
	next     *pipeline.Runner
	notifier notify.Notifier
}

func (n *notifyingRunner) Run(ctx context.Context, req pipeline.Request, sub pipeline.Subscriber) (*models.PredictionResult, error) {
	result, err := n.next.Run(ctx, req, sub)
	if err == nil && result != nil && result.Direction != models.DirectionNeutral && !result.Degraded {
		// The client may already be gone; the notification still goes out.
		if nerr := n.notifier.Notify(context.WithoutCancel(ctx), formatVerdict(result)); nerr != nil {
			log.Warn().Err(nerr).Msg("Verdict notification failed")
		}
	}
	return result, err
}

func formatVerdict(result *models.PredictionResult) string {
	emoji := "📈"
	if result.Direction == models.DirectionDown {
		emoji = "📉"
	}
	return fmt.Sprintf("%s *%s %s*\nDirection: *%s* (%d%% confidence)\nQuality: %.0f | Alignment: %.1f%%",
		emoji, result.Pair, result.Timeframe, result.Direction, result.Confidence,
		result.QualityScore, result.SignalAlignment)
}
