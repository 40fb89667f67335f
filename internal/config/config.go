package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Config holds all configuration for the service
type Config struct {
	// Mode
	Debug bool

	// HTTP API
	ListenAddr string

	// Market data API
	MarketDataURL    string
	MarketDataAPIKey string
	MarketDataRPS    float64 // requests per second allowed against the API
	MarketDataBurst  int
	MarketDataWSURL  string // streaming endpoint for the underlying price feed

	// Engine knobs
	Engine EngineConfig

	// Telegram alerts (optional)
	TelegramToken  string
	TelegramChatID int64

	// Database
	DatabaseURL  string // postgres; empty means sqlite
	DatabasePath string // sqlite fallback
}

// EngineConfig carries the selection-policy constants. One copy is created at
// startup and handed to the engine; scans never mutate it.
type EngineConfig struct {
	MinDTE              int             // minimum days to expiration (generic variant)
	MaxSpreadWidth      decimal.Decimal // widest acceptable strike distance
	ROIMin              decimal.Decimal // lower bound of the target ROI band, percent
	ROIMax              decimal.Decimal // upper bound of the target ROI band, percent
	MaxBidAskSpreadPct  decimal.Decimal // per-leg ask-bid ceiling as % of spread width
	EarlyExitValidCount int             // stop evaluating once this many candidates qualify
	QuoteBatchSize      int             // concurrent quote fetches per evaluation batch

	// Fixed-window ITM variant
	ITMSpreadWidth   decimal.Decimal // strike distance between the two legs
	MaxCostThreshold decimal.Decimal // absolute ceiling on the mid-style entry cost
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Debug: getEnvBool("DEBUG", false),

		ListenAddr: getEnv("LISTEN_ADDR", ":8080"),

		MarketDataURL:    getEnv("MARKET_DATA_URL", "https://api.polygon.io"),
		MarketDataAPIKey: os.Getenv("MARKET_DATA_API_KEY"),
		MarketDataRPS:    getEnvFloat("MARKET_DATA_RPS", 5),
		MarketDataBurst:  getEnvInt("MARKET_DATA_BURST", 10),
		MarketDataWSURL:  getEnv("MARKET_DATA_WS_URL", "wss://socket.polygon.io/stocks"),

		Engine: EngineConfig{
			MinDTE:              getEnvInt("MIN_DTE", 3),
			MaxSpreadWidth:      getEnvDecimal("MAX_SPREAD_WIDTH", decimal.NewFromInt(10)),
			ROIMin:              getEnvDecimal("ROI_MIN", decimal.NewFromInt(7)),
			ROIMax:              getEnvDecimal("ROI_MAX", decimal.NewFromInt(15)),
			MaxBidAskSpreadPct:  getEnvDecimal("MAX_BID_ASK_SPREAD_PCT", decimal.NewFromInt(10)),
			EarlyExitValidCount: getEnvInt("EARLY_EXIT_VALID_COUNT", 5),
			QuoteBatchSize:      getEnvInt("QUOTE_BATCH_SIZE", 10),
			ITMSpreadWidth:      getEnvDecimal("ITM_SPREAD_WIDTH", decimal.NewFromInt(1)),
			MaxCostThreshold:    getEnvDecimal("MAX_COST_THRESHOLD", decimal.NewFromFloat(0.74)),
		},

		TelegramToken: os.Getenv("TELEGRAM_BOT_TOKEN"),

		DatabaseURL:  os.Getenv("DATABASE_URL"),
		DatabasePath: getEnv("DATABASE_PATH", "data/spreadscan.db"),
	}

	// Parse chat ID
	if chatID := os.Getenv("TELEGRAM_CHAT_ID"); chatID != "" {
		id, err := strconv.ParseInt(chatID, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_CHAT_ID: %w", err)
		}
		cfg.TelegramChatID = id
	}

	if cfg.MarketDataAPIKey == "" {
		return nil, fmt.Errorf("MARKET_DATA_API_KEY is required")
	}

	if err := cfg.Engine.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects knob combinations the engine cannot run with.
func (e EngineConfig) Validate() error {
	if e.MinDTE < 0 {
		return fmt.Errorf("MIN_DTE must be >= 0")
	}
	if !e.MaxSpreadWidth.IsPositive() {
		return fmt.Errorf("MAX_SPREAD_WIDTH must be positive")
	}
	if e.ROIMin.GreaterThanOrEqual(e.ROIMax) {
		return fmt.Errorf("ROI_MIN must be below ROI_MAX")
	}
	if e.EarlyExitValidCount < 1 {
		return fmt.Errorf("EARLY_EXIT_VALID_COUNT must be >= 1")
	}
	if e.QuoteBatchSize < 1 {
		return fmt.Errorf("QUOTE_BATCH_SIZE must be >= 1")
	}
	if !e.ITMSpreadWidth.IsPositive() {
		return fmt.Errorf("ITM_SPREAD_WIDTH must be positive")
	}
	if !e.MaxCostThreshold.IsPositive() {
		return fmt.Errorf("MAX_COST_THRESHOLD must be positive")
	}
	return nil
}

// Default returns the engine policy used when no environment overrides exist.
// Tests build on this so knob defaults live in exactly one place.
func Default() EngineConfig {
	return EngineConfig{
		MinDTE:              3,
		MaxSpreadWidth:      decimal.NewFromInt(10),
		ROIMin:              decimal.NewFromInt(7),
		ROIMax:              decimal.NewFromInt(15),
		MaxBidAskSpreadPct:  decimal.NewFromInt(10),
		EarlyExitValidCount: 5,
		QuoteBatchSize:      10,
		ITMSpreadWidth:      decimal.NewFromInt(1),
		MaxCostThreshold:    decimal.NewFromFloat(0.74),
	}
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvDecimal(key string, defaultValue decimal.Decimal) decimal.Decimal {
	if value := os.Getenv(key); value != "" {
		if d, err := decimal.NewFromString(value); err == nil {
			return d
		}
	}
	return defaultValue
}
