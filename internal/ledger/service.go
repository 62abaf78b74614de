// Package ledger owns the append-only trade record and the path from
// a submitted trade to its recomputed position.
package ledger

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/kvaidya/stockfolio/internal/metrics"
	"github.com/kvaidya/stockfolio/internal/models"
	"github.com/kvaidya/stockfolio/internal/portfolio"
)

// TradeInput is the caller-supplied form of a trade before validation.
// Price accepts both JSON numbers and strings; TradeDate is YYYY-MM-DD
// and defaults to today when empty.
type TradeInput struct {
	Symbol    string          `json:"symbol"`
	Action    string          `json:"action"`
	Quantity  int64           `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	TradeDate string          `json:"trade_date"`
	Note      string          `json:"note"`
}

// EventPublisher pushes ledger events to downstream consumers. A nil
// publisher disables publishing; publish failures never fail the
// append.
type EventPublisher interface {
	PublishTradeRecorded(ctx context.Context, trade models.TradeEvent) error
}

// Service validates trades, appends them, and recomputes the affected
// position. Append and recompute for one (owner, symbol) run under a
// single writer: a keyed mutex serializes submissions so recomputation
// always sees a consistent prefix of the ledger.
type Service struct {
	store  TradeStore
	events EventPublisher
	logger zerolog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewService wires the ledger service over a store.
func NewService(store TradeStore, events EventPublisher, logger zerolog.Logger) *Service {
	return &Service{
		store:  store,
		events: events,
		logger: logger,
		locks:  make(map[string]*sync.Mutex),
	}
}

func (s *Service) lockFor(ownerID, symbol string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := ownerID + "|" + symbol
	l, ok := s.locks[key]
	if !ok {
		l = &sync.Mutex{}
		s.locks[key] = l
	}
	return l
}

// Append validates input, appends the trade, and recomputes the
// (owner, symbol) position from the full history. Validation failures
// leave the ledger untouched; store failures surface as
// ErrStoreUnavailable and are safe to retry.
func (s *Service) Append(ctx context.Context, ownerID string, input TradeInput) (*models.TradeEvent, error) {
	trade, err := buildTrade(ownerID, input)
	if err != nil {
		metrics.TradesRejected.Inc()
		return nil, err
	}

	lock := s.lockFor(ownerID, trade.Symbol)
	lock.Lock()
	defer lock.Unlock()

	history, err := s.store.ListTrades(ctx, ownerID, trade.Symbol)
	if err != nil {
		return nil, fmt.Errorf("%w: load history: %v", ErrStoreUnavailable, err)
	}
	pos := portfolio.Recompute(ownerID, trade.Symbol, orderedAppend(history, *trade))
	if err := s.store.RecordTrade(ctx, *trade, pos); err != nil {
		return nil, fmt.Errorf("%w: record trade: %v", ErrStoreUnavailable, err)
	}

	metrics.TradesAppended.WithLabelValues(string(trade.Action)).Inc()
	s.logger.Info().
		Str("owner_id", ownerID).
		Str("symbol", trade.Symbol).
		Str("action", string(trade.Action)).
		Int64("quantity", trade.Quantity).
		Str("price", trade.Price.String()).
		Msg("Trade appended")

	if s.events != nil {
		if err := s.events.PublishTradeRecorded(ctx, *trade); err != nil {
			s.logger.Warn().Err(err).Str("trade_id", trade.ID).Msg("Failed to publish trade event")
		}
	}
	return trade, nil
}

// orderedAppend inserts the new trade into its chronological slot so a
// backdated trade folds at its trade date, not at submission time.
func orderedAppend(history []models.TradeEvent, trade models.TradeEvent) []models.TradeEvent {
	i := len(history)
	for i > 0 && history[i-1].TradeDate.After(trade.TradeDate) {
		i--
	}
	out := make([]models.TradeEvent, 0, len(history)+1)
	out = append(out, history[:i]...)
	out = append(out, trade)
	out = append(out, history[i:]...)
	return out
}

// Trades lists the owner's history, optionally filtered to one symbol.
func (s *Service) Trades(ctx context.Context, ownerID, symbol string) ([]models.TradeEvent, error) {
	if symbol != "" {
		symbol = models.CanonicalSymbol(symbol)
	}
	trades, err := s.store.ListTrades(ctx, ownerID, symbol)
	if err != nil {
		return nil, fmt.Errorf("%w: list trades: %v", ErrStoreUnavailable, err)
	}
	return trades, nil
}

// Position returns the owner's aggregate for one symbol. A symbol the
// owner never traded folds to the empty position rather than an error.
func (s *Service) Position(ctx context.Context, ownerID, symbol string) (*models.Position, error) {
	symbol = models.CanonicalSymbol(symbol)
	pos, err := s.store.GetPosition(ctx, ownerID, symbol)
	if err != nil {
		return nil, fmt.Errorf("%w: get position: %v", ErrStoreUnavailable, err)
	}
	if pos == nil {
		empty := portfolio.Recompute(ownerID, symbol, nil)
		return &empty, nil
	}
	return pos, nil
}

// Positions returns every aggregate the owner holds.
func (s *Service) Positions(ctx context.Context, ownerID string) ([]models.Position, error) {
	positions, err := s.store.ListPositions(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("%w: list positions: %v", ErrStoreUnavailable, err)
	}
	return positions, nil
}

func buildTrade(ownerID string, input TradeInput) (*models.TradeEvent, error) {
	if ownerID == "" {
		return nil, invalidField("owner", "is required")
	}
	symbol := models.CanonicalSymbol(input.Symbol)
	if symbol == "" {
		return nil, invalidField("symbol", "is required")
	}
	action := models.TradeAction(strings.ToUpper(strings.TrimSpace(input.Action)))
	if !action.Valid() {
		return nil, invalidField("action", "must be BUY or SELL")
	}
	if input.Quantity <= 0 {
		return nil, invalidField("quantity", "must be positive")
	}
	if input.Price.Sign() <= 0 {
		return nil, invalidField("price", "must be positive")
	}

	now := time.Now().UTC()
	tradeDate := now.Truncate(24 * time.Hour)
	if input.TradeDate != "" {
		parsed, err := time.Parse("2006-01-02", input.TradeDate)
		if err != nil {
			return nil, invalidField("trade_date", "must be YYYY-MM-DD")
		}
		tradeDate = parsed
	}

	return &models.TradeEvent{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Symbol:    symbol,
		Action:    action,
		Quantity:  input.Quantity,
		Price:     input.Price,
		TradeDate: tradeDate,
		Note:      strings.TrimSpace(input.Note),
		CreatedAt: now,
	}, nil
}
