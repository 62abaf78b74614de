package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TradeAction is the direction of a trade.
type TradeAction string

const (
	TradeActionBuy  TradeAction = "BUY"
	TradeActionSell TradeAction = "SELL"
)

// Valid reports whether the action is one of the recognized values.
func (a TradeAction) Valid() bool {
	return a == TradeActionBuy || a == TradeActionSell
}

// TradeEvent is an immutable record of one buy or sell. Corrections
// are appended as new compensating events, never edited in place.
type TradeEvent struct {
	ID        string          `json:"id"`
	OwnerID   string          `json:"owner_id"`
	Symbol    string          `json:"symbol"`
	Action    TradeAction     `json:"action"`
	Quantity  int64           `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	TradeDate time.Time       `json:"trade_date"`
	Note      string          `json:"note,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// TradeRecordedEvent is the Kafka message published after a trade is
// appended to the ledger.
type TradeRecordedEvent struct {
	EventType string     `json:"event_type"`
	Source    string     `json:"source"`
	Timestamp string     `json:"timestamp"`
	Data      TradeEvent `json:"data"`
}

// TradeImportEvent is a Kafka message carrying trades exported from an
// external broker account, to be replayed into the ledger.
type TradeImportEvent struct {
	EventType string          `json:"event_type"`
	Source    string          `json:"source"`
	Timestamp string          `json:"timestamp"`
	Data      TradeImportData `json:"data"`
}

// TradeImportData contains the owner and the trades of one import.
type TradeImportData struct {
	OwnerID string          `json:"owner_id"`
	Trades  []ImportedTrade `json:"trades"`
}

// ImportedTrade is a single trade as exported by a broker. Brokers
// send all numerics as strings; the consumer parses and validates.
type ImportedTrade struct {
	Symbol    string `json:"symbol"`
	Action    string `json:"action"`
	Quantity  string `json:"quantity"`
	Price     string `json:"price"`
	TradeDate string `json:"trade_date"`
	Note      string `json:"note,omitempty"`
}
