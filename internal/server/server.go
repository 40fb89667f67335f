// Package server exposes the scanners over HTTP. It owns validation and
// status-code mapping; scan semantics live entirely in the engine.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/quantbird/spreadscan/bot"
	"github.com/quantbird/spreadscan/internal/database"
	"github.com/quantbird/spreadscan/internal/engine"
	"github.com/quantbird/spreadscan/internal/marketdata"
	"github.com/quantbird/spreadscan/internal/trend"
	"github.com/quantbird/spreadscan/types"
)

const scanTimeout = 60 * time.Second

// Server wires the engine, persistence and alerts behind a mux router.
type Server struct {
	engine   *engine.Engine
	db       *database.Database
	detector *trend.Detector // optional, enables trend auto-detection
	notifier *bot.Notifier   // nil-safe

	http *http.Server
}

// New builds the server. db is required; detector and notifier may be nil.
func New(addr string, eng *engine.Engine, db *database.Database, detector *trend.Detector, notifier *bot.Notifier) *Server {
	s := &Server{engine: eng, db: db, detector: detector, notifier: notifier}

	r := mux.NewRouter()
	r.HandleFunc("/api/v1/scan", s.handleScan).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/scan/itm", s.handleScanITM).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/scans", s.handleRecentScans).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/claims", s.handleCreateClaim).Methods(http.MethodPost)
	r.HandleFunc("/api/v1/claims", s.handleListClaims).Methods(http.MethodGet)
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	s.http = &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 90 * time.Second,
	}
	return s
}

// Run serves until the listener fails or Shutdown is called.
func (s *Server) Run() error {
	log.Info().Str("addr", s.http.Addr).Msg("🌐 HTTP API listening")
	err := s.http.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// Handlers

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	symbol := r.URL.Query().Get("symbol")
	if symbol == "" {
		writeError(w, http.StatusBadRequest, "symbol is required")
		return
	}

	tr, ok := s.resolveTrend(w, r.URL.Query().Get("trend"), symbol)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), scanTimeout)
	defer cancel()

	result, err := s.engine.FindCreditSpread(ctx, symbol, tr)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	s.persistScan(result, "credit", string(tr))
	s.notifier.SpreadFound(result)
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleScanITM(w http.ResponseWriter, r *http.Request) {
	symbol := r.URL.Query().Get("symbol")
	if symbol == "" {
		writeError(w, http.StatusBadRequest, "symbol is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), scanTimeout)
	defer cancel()

	result, err := s.engine.FindITMSpread(ctx, symbol)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	s.persistScan(&result.ScanResult, "itm", "")
	s.notifier.SpreadFound(&result.ScanResult)
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleRecentScans(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	records, err := s.db.RecentScans(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load scans")
		return
	}
	writeJSON(w, http.StatusOK, records)
}

type claimRequest struct {
	UserID          string `json:"user_id"`
	Symbol          string `json:"symbol"`
	SpreadType      string `json:"spread_type"`
	Expiration      string `json:"expiration"`
	ShortContractID string `json:"short_contract_id"`
	BuyContractID   string `json:"buy_contract_id"`
	NetCredit       string `json:"net_credit"`
	MaxRisk         string `json:"max_risk"`
	Quantity        int    `json:"quantity"`
}

func (s *Server) handleCreateClaim(w http.ResponseWriter, r *http.Request) {
	var req claimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.UserID == "" || req.Symbol == "" || req.ShortContractID == "" || req.BuyContractID == "" {
		writeError(w, http.StatusBadRequest, "user_id, symbol and both contract ids are required")
		return
	}
	if req.Quantity <= 0 {
		req.Quantity = 1
	}

	claim := &database.ClaimedSpread{
		UserID:          req.UserID,
		Symbol:          req.Symbol,
		SpreadType:      req.SpreadType,
		Expiration:      req.Expiration,
		ShortContractID: req.ShortContractID,
		BuyContractID:   req.BuyContractID,
		NetCredit:       parseDecimal(req.NetCredit),
		MaxRisk:         parseDecimal(req.MaxRisk),
		Quantity:        req.Quantity,
	}
	if err := s.db.Claim(claim); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save claim")
		return
	}
	writeJSON(w, http.StatusCreated, claim)
}

func (s *Server) handleListClaims(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "user is required")
		return
	}

	claims, err := s.db.ClaimsForUser(userID, 100)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load claims")
		return
	}
	writeJSON(w, http.StatusOK, claims)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Helpers

// resolveTrend parses the trend parameter, falling back to detection when it
// is omitted and a detector is wired.
func (s *Server) resolveTrend(w http.ResponseWriter, raw, symbol string) (types.Trend, bool) {
	switch raw {
	case string(types.TrendUp):
		return types.TrendUp, true
	case string(types.TrendDown):
		return types.TrendDown, true
	case "":
		if s.detector == nil {
			writeError(w, http.StatusBadRequest, "trend is required (uptrend or downtrend)")
			return "", false
		}
		tr, err := s.detector.Detect(symbol)
		if err != nil {
			writeError(w, http.StatusConflict, "no clear trend for "+symbol+"; pass trend explicitly")
			return "", false
		}
		return tr, true
	default:
		writeError(w, http.StatusBadRequest, "trend must be uptrend or downtrend")
		return "", false
	}
}

func (s *Server) persistScan(res *engine.ScanResult, variant, tr string) {
	rec := &database.ScanRecord{
		Symbol:          res.Symbol,
		Variant:         variant,
		Trend:           tr,
		Found:           res.Found,
		Reason:          res.Reason,
		SpreadType:      string(res.SpreadType),
		Expiration:      res.Expiration,
		ShortStrike:     res.ShortStrike,
		BuyStrike:       res.BuyStrike,
		ShortContractID: res.ShortContractID,
		BuyContractID:   res.BuyContractID,
		NetCredit:       res.NetCredit,
		MaxRisk:         res.MaxRisk,
		MaxProfit:       res.MaxProfit,
		ROIPercent:      res.ROIPercent,
		Breakeven:       res.Breakeven,
		SafetyMarginPct: res.SafetyMarginPct,
		QuoteCalls:      res.QuoteCalls,
	}
	if err := s.db.SaveScan(rec); err != nil {
		log.Error().Err(err).Str("symbol", res.Symbol).Msg("Failed to persist scan")
	}
}

func writeEngineError(w http.ResponseWriter, err error) {
	var calcErr *engine.CalculationError
	switch {
	case errors.Is(err, marketdata.ErrExternalAPI):
		writeError(w, http.StatusBadGateway, "market data unavailable")
	case errors.As(err, &calcErr):
		writeError(w, http.StatusUnprocessableEntity, calcErr.Error())
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusGatewayTimeout, "scan timed out")
	default:
		log.Error().Err(err).Msg("Scan failed")
		writeError(w, http.StatusInternalServerError, "scan failed")
	}
}

func parseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
