package ledger

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/kvaidya/stockfolio/internal/models"
)

// MemoryStore is the in-memory TradeStore backing used by tests and
// offline mode. Everything lives in maps keyed by owner|symbol.
type MemoryStore struct {
	mu        sync.RWMutex
	trades    map[string][]models.TradeEvent
	positions map[string]models.Position
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		trades:    make(map[string][]models.TradeEvent),
		positions: make(map[string]models.Position),
	}
}

func storeKey(ownerID, symbol string) string {
	return ownerID + "|" + symbol
}

// RecordTrade appends the trade and replaces the position under one
// lock, mirroring the transactional append of the Postgres backing.
func (m *MemoryStore) RecordTrade(ctx context.Context, trade models.TradeEvent, pos models.Position) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := storeKey(trade.OwnerID, trade.Symbol)
	m.trades[key] = append(m.trades[key], trade)
	m.positions[key] = pos
	return nil
}

// ListTrades returns the owner's trades in chronological order, all
// symbols when symbol is empty. Appends within the same trade date
// keep their insertion order.
func (m *MemoryStore) ListTrades(ctx context.Context, ownerID, symbol string) ([]models.TradeEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []models.TradeEvent
	if symbol != "" {
		out = append(out, m.trades[storeKey(ownerID, symbol)]...)
	} else {
		for key, events := range m.trades {
			if strings.HasPrefix(key, ownerID+"|") {
				out = append(out, events...)
			}
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].TradeDate.Equal(out[j].TradeDate) {
			return out[i].TradeDate.Before(out[j].TradeDate)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// GetPosition returns the stored aggregate, or nil when the owner has
// never traded the symbol.
func (m *MemoryStore) GetPosition(ctx context.Context, ownerID, symbol string) (*models.Position, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	pos, ok := m.positions[storeKey(ownerID, symbol)]
	if !ok {
		return nil, nil
	}
	return &pos, nil
}

// ListPositions returns all of the owner's aggregates sorted by
// symbol, closed positions included.
func (m *MemoryStore) ListPositions(ctx context.Context, ownerID string) ([]models.Position, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []models.Position
	for key, pos := range m.positions {
		if strings.HasPrefix(key, ownerID+"|") {
			out = append(out, pos)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out, nil
}
