package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Position is the per (owner, symbol) aggregate derived from the trade
// ledger. It is recomputed from the event history, never hand-edited.
type Position struct {
	OwnerID      string          `json:"-"`
	Symbol       string          `json:"symbol"`
	Quantity     int64           `json:"quantity"`
	AveragePrice decimal.Decimal `json:"average_price"`
	Invested     decimal.Decimal `json:"invested"`
	TradeCount   int             `json:"trade_count"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// PositionValuation is a Position joined with a current quote.
type PositionValuation struct {
	Symbol           string          `json:"symbol"`
	Quantity         int64           `json:"quantity"`
	AveragePrice     decimal.Decimal `json:"average_price"`
	CurrentPrice     decimal.Decimal `json:"current_price"`
	CurrentValue     decimal.Decimal `json:"current_value"`
	Invested         decimal.Decimal `json:"invested"`
	ProfitAndLoss    decimal.Decimal `json:"profit_and_loss"`
	ProfitAndLossPct decimal.Decimal `json:"profit_and_loss_pct"`
	QuoteSource      string          `json:"quote_source"`
	QuoteIsReal      bool            `json:"quote_is_real"`
}

// PortfolioSummary is the full valued portfolio for one owner.
type PortfolioSummary struct {
	Positions     []PositionValuation `json:"positions"`
	TotalInvested decimal.Decimal     `json:"total_invested"`
	TotalValue    decimal.Decimal     `json:"total_value"`
	TotalPnl      decimal.Decimal     `json:"total_pnl"`
	TotalPnlPct   decimal.Decimal     `json:"total_pnl_pct"`
	AsOf          time.Time           `json:"as_of"`
}
