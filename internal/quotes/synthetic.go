package quotes

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/kvaidya/stockfolio/internal/models"
)

// syntheticBasePrices holds plausible INR base prices for the NSE
// large caps this app is usually pointed at. Unknown symbols fall back
// to defaultBasePrice.
var syntheticBasePrices = map[string]float64{
	"RELIANCE":   2856,
	"TCS":        4120,
	"INFY":       1815,
	"HDFCBANK":   1648,
	"ICICIBANK":  1242,
	"SBIN":       822,
	"BHARTIARTL": 1510,
	"ITC":        462,
	"WIPRO":      508,
	"TATAMOTORS": 948,
	"LT":         3624,
	"AXISBANK":   1178,
}

const (
	defaultBasePrice = 1000.0
	maxDrift         = 0.03 // synthetic price stays within ±3% of base
)

// Synthetic fabricates a clearly flagged quote for symbol. It is the
// pipeline's terminal fallback: the figures look plausible and stay
// internally consistent (high ≥ max(open, price), low ≤ min(open,
// price)) but carry IsRealData=false and the SYNTHETIC source id so
// downstream consumers can refuse to treat them as real.
func Synthetic(symbol string) *models.Quote {
	base, ok := syntheticBasePrices[symbol]
	if !ok {
		base = defaultBasePrice
	}

	prevClose := base
	price := base * (1 + (rand.Float64()*2-1)*maxDrift)
	open := prevClose * (1 + (rand.Float64()*2-1)*0.01)
	high := math.Max(open, price) * (1 + rand.Float64()*0.01)
	low := math.Min(open, price) * (1 - rand.Float64()*0.01)
	change := price - prevClose

	return &models.Quote{
		Symbol:        symbol,
		Price:         price,
		Change:        change,
		ChangePercent: change / prevClose * 100,
		Volume:        100_000 + rand.Int64N(4_900_001),
		DayHigh:       high,
		DayLow:        low,
		Open:          open,
		PrevClose:     prevClose,
		Currency:      models.DefaultCurrency,
		Source:        models.SyntheticSource,
		IsRealData:    false,
		RetrievedAt:   time.Now().UTC(),
	}
}
