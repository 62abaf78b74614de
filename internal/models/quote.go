package models

import (
	"strings"
	"time"
)

// SyntheticSource identifies quotes produced by the synthetic
// generator rather than a live provider.
const SyntheticSource = "SYNTHETIC"

// DefaultCurrency is assumed whenever a provider omits the currency.
const DefaultCurrency = "INR"

// Quote is a point-in-time snapshot for one ticker symbol, normalized
// across providers.
type Quote struct {
	Symbol        string    `json:"symbol"`
	Price         float64   `json:"price"`
	Change        float64   `json:"change"`
	ChangePercent float64   `json:"change_percent"`
	Volume        int64     `json:"volume"`
	DayHigh       float64   `json:"day_high"`
	DayLow        float64   `json:"day_low"`
	Open          float64   `json:"open"`
	PrevClose     float64   `json:"prev_close"`
	Currency      string    `json:"currency"`
	MarketCap     float64   `json:"market_cap,omitempty"`
	Source        string    `json:"source"`
	IsRealData    bool      `json:"is_real_data"`
	RetrievedAt   time.Time `json:"retrieved_at"`
}

// IsSynthetic reports whether the quote was fabricated as a fallback.
func (q Quote) IsSynthetic() bool {
	return !q.IsRealData && q.Source == SyntheticSource
}

// CanonicalSymbol maps user input to the uppercase, trimmed form used
// as the join key across sources, ledger, and positions. Provider
// suffixes are a per-source concern and never part of the canonical
// form.
func CanonicalSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// QuoteResult is one entry of a batch lookup. Either Quote or Error is
// set; batch callers get partial results instead of an aborted slice.
type QuoteResult struct {
	Symbol string `json:"symbol"`
	Quote  *Quote `json:"quote,omitempty"`
	Error  string `json:"error,omitempty"`
}
