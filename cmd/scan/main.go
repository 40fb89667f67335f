// One-shot scanner: runs a single scan from the command line and prints the
// result as JSON. Useful for cron jobs and eyeballing the engine without the
// HTTP layer.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/quantbird/spreadscan/internal/config"
	"github.com/quantbird/spreadscan/internal/engine"
	"github.com/quantbird/spreadscan/internal/marketdata"
	"github.com/quantbird/spreadscan/types"
)

func main() {
	symbol := flag.String("symbol", "", "underlying symbol (required)")
	trendFlag := flag.String("trend", "uptrend", "uptrend or downtrend")
	itm := flag.Bool("itm", false, "run the fixed-window deep-ITM scanner instead")
	timeout := flag.Duration("timeout", 60*time.Second, "scan timeout")
	flag.Parse()

	zerolog.SetGlobalLevel(zerolog.WarnLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})

	if *symbol == "" {
		flag.Usage()
		os.Exit(2)
	}

	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("No .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	provider := marketdata.NewClient(cfg.MarketDataURL, cfg.MarketDataAPIKey, cfg.MarketDataRPS, cfg.MarketDataBurst)
	eng := engine.New(provider, cfg.Engine)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	var result interface{}
	if *itm {
		result, err = eng.FindITMSpread(ctx, *symbol)
	} else {
		var tr types.Trend
		switch *trendFlag {
		case string(types.TrendUp):
			tr = types.TrendUp
		case string(types.TrendDown):
			tr = types.TrendDown
		default:
			log.Fatal().Str("trend", *trendFlag).Msg("trend must be uptrend or downtrend")
		}
		result, err = eng.FindCreditSpread(ctx, *symbol, tr)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Scan failed")
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		log.Fatal().Err(err).Msg("Failed to print result")
	}
}
