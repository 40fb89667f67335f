package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/quantbird/spreadscan/bot"
	"github.com/quantbird/spreadscan/internal/config"
	"github.com/quantbird/spreadscan/internal/database"
	"github.com/quantbird/spreadscan/internal/engine"
	"github.com/quantbird/spreadscan/internal/feed"
	"github.com/quantbird/spreadscan/internal/marketdata"
	"github.com/quantbird/spreadscan/internal/server"
	"github.com/quantbird/spreadscan/internal/trend"
)

func main() {
	// ═══════════════════════════════════════════════════════════════════════════════
	// BOOTSTRAP
	// ═══════════════════════════════════════════════════════════════════════════════

	// Load environment
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("No .env file found")
	}

	// Setup logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})

	if os.Getenv("DEBUG") == "true" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	log.Info().Msg("═══════════════════════════════════════════════════════════════")
	log.Info().Msg("              SPREADSCAN - CREDIT SPREAD SCANNER")
	log.Info().Msg("═══════════════════════════════════════════════════════════════")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	// ═══════════════════════════════════════════════════════════════════════════════
	// INITIALIZE COMPONENTS
	// ═══════════════════════════════════════════════════════════════════════════════

	// 1. Storage (scan history + claims)
	db, err := database.New(cfg.DatabaseURL, cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	log.Info().Msg("✅ Storage layer initialized")

	// 2. Market data client (rate limited, circuit broken)
	provider := marketdata.NewClient(cfg.MarketDataURL, cfg.MarketDataAPIKey, cfg.MarketDataRPS, cfg.MarketDataBurst)
	log.Info().Str("url", cfg.MarketDataURL).Msg("✅ Market data client initialized")

	// 3. Selection engine
	eng := engine.New(provider, cfg.Engine)
	log.Info().Msg("✅ Selection engine initialized")

	// 4. Price feed + trend detector (optional, enables trend auto-detect)
	var detector *trend.Detector
	var priceFeed *feed.Feed
	if symbols := os.Getenv("FEED_SYMBOLS"); symbols != "" {
		priceFeed = feed.NewFeed(cfg.MarketDataWSURL, cfg.MarketDataAPIKey, strings.Split(symbols, ","))
		priceFeed.Start()
		detector = trend.NewDetector(priceFeed)
		log.Info().Msg("✅ Price feed and trend detector initialized")
	}

	// 5. Telegram alerts (optional)
	notifier, err := bot.NewNotifier(cfg.TelegramToken, cfg.TelegramChatID)
	if err != nil {
		log.Warn().Err(err).Msg("Telegram alerts disabled")
	}

	// 6. HTTP API
	srv := server.New(cfg.ListenAddr, eng, db, detector, notifier)

	// ═══════════════════════════════════════════════════════════════════════════════
	// START
	// ═══════════════════════════════════════════════════════════════════════════════

	go func() {
		if err := srv.Run(); err != nil {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	log.Info().Msg("🚀 All systems running...")

	// ═══════════════════════════════════════════════════════════════════════════════
	// GRACEFUL SHUTDOWN
	// ═══════════════════════════════════════════════════════════════════════════════

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info().Msg("🛑 Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("HTTP shutdown failed")
	}

	if priceFeed != nil {
		priceFeed.Stop()
	}
	if err := db.Close(); err != nil {
		log.Error().Err(err).Msg("Database close failed")
	}

	log.Info().Msg("👋 Goodbye!")
}
