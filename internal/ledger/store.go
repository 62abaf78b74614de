package ledger

import (
	"context"

	"github.com/kvaidya/stockfolio/internal/models"
)

// TradeStore is the persistence boundary for the append-only ledger
// and its derived positions. One interface, swappable backings: the
// Postgres implementation lives in internal/database, MemoryStore
// below serves tests and offline mode.
//
// Retrieval contract: ListTrades returns events in chronological
// order (trade date ascending, insertion order breaking ties), which
// is the order the fold replays them in. RecordTrade persists the
// trade and its recomputed position atomically.
type TradeStore interface {
	RecordTrade(ctx context.Context, trade models.TradeEvent, pos models.Position) error
	ListTrades(ctx context.Context, ownerID, symbol string) ([]models.TradeEvent, error)
	GetPosition(ctx context.Context, ownerID, symbol string) (*models.Position, error)
	ListPositions(ctx context.Context, ownerID string) ([]models.Position, error)
}
