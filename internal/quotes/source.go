package quotes

import (
	"context"
	"time"

	"github.com/kvaidya/stockfolio/internal/models"
)

// browserUserAgent is sent on every provider request. NSE and BSE
// reject clients that do not look like a browser.
const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

// Source fetches one provider's quote for a canonical symbol. Each
// implementation owns its symbol translation, its request identity,
// and its response parsing, and classifies failures through
// SourceError so the pipeline can log and count them.
type Source interface {
	Name() string
	Fetch(ctx context.Context, symbol string) (*models.Quote, error)
}

// newQuote assembles a normalized quote. The change fields are always
// recomputed from price and previous close; provider-reported change
// values are ignored so the derived-field invariant holds regardless
// of provider rounding.
func newQuote(symbol, source, currency string, price, prevClose, open, high, low float64, volume int64, marketCap float64) *models.Quote {
	change := price - prevClose
	changePercent := 0.0
	if prevClose != 0 {
		changePercent = change / prevClose * 100
	}
	if currency == "" {
		currency = models.DefaultCurrency
	}
	return &models.Quote{
		Symbol:        symbol,
		Price:         price,
		Change:        change,
		ChangePercent: changePercent,
		Volume:        volume,
		DayHigh:       high,
		DayLow:        low,
		Open:          open,
		PrevClose:     prevClose,
		Currency:      currency,
		MarketCap:     marketCap,
		Source:        source,
		IsRealData:    true,
		RetrievedAt:   time.Now().UTC(),
	}
}
