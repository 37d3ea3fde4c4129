package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds every runtime knob. Values come from the environment with a
// .env file as optional local override.
type Config struct {
	LogLevel string

	// Candle provider
	TwelveAPIKey   string
	CandleCount    int
	RequestTimeout int // seconds
	CacheTTL       int // seconds
	RedisAddr      string
	RedisPassword  string
	RedisDB        int

	// News provider
	NewsAPIKey  string
	NewsBaseURL string
	NewsLimit   int

	// Reasoning model
	OpenAIKey        string
	OpenAIBaseURL    string
	ReasoningModels  []string
	ReasoningTimeout int // seconds, per attempt
	AckTimeout       int // seconds, ai_thinking handshake bound

	// Entitlement ledger
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	DBSSLMode   string
	FreeCredits int

	// Payments
	StripeSecretKey     string
	StripeWebhookSecret string
	StripePriceID       string
	StripeSuccessURL    string
	StripeCancelURL     string
	CreditsPerPurchase  int

	// Notifications
	TelegramToken  string
	TelegramChatID int64

	// Transport
	ServerAddr string

	// One-shot analyzer defaults
	Pair      string
	Timeframe string
}

// Load reads configuration from the environment. A missing .env file is not
// an error.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		LogLevel: getEnv("LOG_LEVEL", "info"),

		TwelveAPIKey:   getEnv("TWELVE_API_KEY", ""),
		CandleCount:    getEnvInt("CANDLE_COUNT", 300),
		RequestTimeout: getEnvInt("REQUEST_TIMEOUT", 30),
		CacheTTL:       getEnvInt("CACHE_TTL", 45),
		RedisAddr:      getEnv("REDIS_ADDR", ""),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),
		RedisDB:        getEnvInt("REDIS_DB", 0),

		NewsAPIKey:  getEnv("NEWS_API_KEY", ""),
		NewsBaseURL: getEnv("NEWS_BASE_URL", "https://api.marketaux.com/v1"),
		NewsLimit:   getEnvInt("NEWS_LIMIT", 5),

		OpenAIKey:        getEnv("OPENAI_KEY", ""),
		OpenAIBaseURL:    getEnv("OPENAI_BASE_URL", ""),
		ReasoningModels:  getEnvList("REASONING_MODELS", "deepseek-reasoner,deepseek-chat,gpt-4o"),
		ReasoningTimeout: getEnvInt("REASONING_TIMEOUT", 90),
		AckTimeout:       getEnvInt("ACK_TIMEOUT", 25),

		DBHost:      getEnv("DB_HOST", ""),
		DBPort:      getEnv("DB_PORT", "5432"),
		DBUser:      getEnv("DB_USER", ""),
		DBPassword:  getEnv("DB_PASSWORD", ""),
		DBName:      getEnv("DB_NAME", ""),
		DBSSLMode:   getEnv("DB_SSLMODE", "disable"),
		FreeCredits: getEnvInt("FREE_CREDITS", 3),

		StripeSecretKey:     getEnv("STRIPE_SECRET_KEY", ""),
		StripeWebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),
		StripePriceID:       getEnv("STRIPE_PRICE_ID", ""),
		StripeSuccessURL:    getEnv("STRIPE_SUCCESS_URL", "https://cryptoomind.app/success"),
		StripeCancelURL:     getEnv("STRIPE_CANCEL_URL", "https://cryptoomind.app/cancel"),
		CreditsPerPurchase:  getEnvInt("CREDITS_PER_PURCHASE", 10),

		TelegramToken:  getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramChatID: getEnvInt64("TELEGRAM_CHAT_ID", 0),

		ServerAddr: getEnv("SERVER_ADDR", ":8080"),

		Pair:      getEnv("PAIR", "EUR/USD"),
		Timeframe: getEnv("TIMEFRAME", "5min"),
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvList(key, defaultValue string) []string {
	raw := getEnv(key, defaultValue)
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
