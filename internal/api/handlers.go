package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/kvaidya/stockfolio/internal/auth"
	"github.com/kvaidya/stockfolio/internal/ledger"
	"github.com/kvaidya/stockfolio/internal/models"
	"github.com/kvaidya/stockfolio/internal/portfolio"
	"github.com/kvaidya/stockfolio/internal/quotes"
)

// Pinger reports whether a backing service is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	auth   *auth.Service
	trades *ledger.Service
	quotes *quotes.Pipeline

	// Health probes. db is nil on the in-memory backend; cache is nil
	// when Redis is not configured.
	db           Pinger
	cache        Pinger
	kafkaEnabled bool

	logger zerolog.Logger
}

// NewHandler creates a new Handler.
func NewHandler(authSvc *auth.Service, trades *ledger.Service, pipeline *quotes.Pipeline, db, cache Pinger, kafkaEnabled bool, logger zerolog.Logger) *Handler {
	return &Handler{
		auth:         authSvc,
		trades:       trades,
		quotes:       pipeline,
		db:           db,
		cache:        cache,
		kafkaEnabled: kafkaEnabled,
		logger:       logger,
	}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register handles POST /api/v1/auth/register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.auth.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, user)
}

// Login handles POST /api/v1/auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, user, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"token": token,
		"user":  user,
	})
}

// GetQuote handles GET /api/v1/quotes/{symbol}
func (h *Handler) GetQuote(w http.ResponseWriter, r *http.Request) {
	symbol := models.CanonicalSymbol(mux.Vars(r)["symbol"])
	if symbol == "" {
		respondError(w, http.StatusBadRequest, "symbol is required")
		return
	}

	quote, err := h.quotes.Fetch(r.Context(), symbol)
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, "quote lookup interrupted")
		return
	}

	respondJSON(w, http.StatusOK, quote)
}

// GetQuotes handles GET /api/v1/quotes?symbols=RELIANCE,TCS
func (h *Handler) GetQuotes(w http.ResponseWriter, r *http.Request) {
	symbols := splitSymbols(r.URL.Query().Get("symbols"))
	if len(symbols) == 0 {
		respondError(w, http.StatusBadRequest, "symbols query parameter is required")
		return
	}

	results := h.quotes.FetchBatch(r.Context(), symbols)
	respondJSON(w, http.StatusOK, results)
}

// CreateTrade handles POST /api/v1/trades
func (h *Handler) CreateTrade(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := auth.OwnerFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "missing owner")
		return
	}

	var input ledger.TradeInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	trade, err := h.trades.Append(r.Context(), ownerID, input)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, trade)
}

// GetTrades handles GET /api/v1/trades?symbol=RELIANCE
func (h *Handler) GetTrades(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := auth.OwnerFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "missing owner")
		return
	}

	trades, err := h.trades.Trades(r.Context(), ownerID, r.URL.Query().Get("symbol"))
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	if trades == nil {
		trades = []models.TradeEvent{}
	}

	respondJSON(w, http.StatusOK, trades)
}

// GetPositions handles GET /api/v1/positions
func (h *Handler) GetPositions(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := auth.OwnerFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "missing owner")
		return
	}

	positions, err := h.trades.Positions(r.Context(), ownerID)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	if positions == nil {
		positions = []models.Position{}
	}

	respondJSON(w, http.StatusOK, positions)
}

// GetPosition handles GET /api/v1/positions/{symbol}
func (h *Handler) GetPosition(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := auth.OwnerFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "missing owner")
		return
	}

	symbol := mux.Vars(r)["symbol"]
	position, err := h.trades.Position(r.Context(), ownerID, symbol)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, position)
}

// GetPortfolio handles GET /api/v1/portfolio. It values every open
// position at its current quote and totals the result.
func (h *Handler) GetPortfolio(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := auth.OwnerFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "missing owner")
		return
	}

	positions, err := h.trades.Positions(r.Context(), ownerID)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	open := make([]models.Position, 0, len(positions))
	symbols := make([]string, 0, len(positions))
	for _, pos := range positions {
		if pos.Quantity <= 0 {
			continue
		}
		open = append(open, pos)
		symbols = append(symbols, pos.Symbol)
	}

	results := h.quotes.FetchBatch(r.Context(), symbols)
	bySymbol := make(map[string]models.QuoteResult, len(results))
	for _, res := range results {
		bySymbol[res.Symbol] = res
	}

	valuations := make([]models.PositionValuation, 0, len(open))
	for _, pos := range open {
		res, ok := bySymbol[pos.Symbol]
		if !ok || res.Quote == nil {
			respondError(w, http.StatusServiceUnavailable, "quote lookup interrupted")
			return
		}
		valuations = append(valuations, portfolio.Evaluate(pos, res.Quote))
	}

	respondJSON(w, http.StatusOK, portfolio.Summarize(valuations))
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	health := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"services":  map[string]string{},
	}
	services := health["services"].(map[string]string)
	allHealthy := true

	if h.db != nil {
		if err := h.db.Ping(ctx); err != nil {
			services["storage"] = "unhealthy: " + err.Error()
			allHealthy = false
		} else {
			services["storage"] = "healthy"
		}
	} else {
		services["storage"] = "in-memory"
	}

	if h.cache != nil {
		if err := h.cache.Ping(ctx); err != nil {
			services["redis"] = "unhealthy: " + err.Error()
		} else {
			services["redis"] = "healthy"
		}
	} else {
		services["redis"] = "not configured"
	}

	if h.kafkaEnabled {
		services["kafka"] = "configured"
	} else {
		services["kafka"] = "not configured"
	}

	if !allHealthy {
		health["status"] = "degraded"
	}

	respondJSON(w, http.StatusOK, health)
}

// respondServiceError maps service-level errors onto HTTP statuses.
func (h *Handler) respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ledger.ErrInvalidTrade), errors.Is(err, auth.ErrInvalidInput):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ledger.ErrStoreUnavailable):
		respondError(w, http.StatusServiceUnavailable, "trade store unavailable, retry shortly")
	case errors.Is(err, auth.ErrEmailTaken):
		respondError(w, http.StatusConflict, "email already registered")
	case errors.Is(err, auth.ErrInvalidCredentials):
		respondError(w, http.StatusUnauthorized, "invalid email or password")
	default:
		h.logger.Error().Err(err).Msg("Unhandled API error")
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}

func splitSymbols(raw string) []string {
	parts := strings.Split(raw, ",")
	symbols := make([]string, 0, len(parts))
	for _, part := range parts {
		if symbol := models.CanonicalSymbol(part); symbol != "" {
			symbols = append(symbols, symbol)
		}
	}
	return symbols
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
