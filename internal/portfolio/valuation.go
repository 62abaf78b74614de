package portfolio

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/kvaidya/stockfolio/internal/models"
)

var hundred = decimal.NewFromInt(100)

// Evaluate joins a position with its current quote. Pure function:
// profit and loss is current value minus invested capital, and the
// percentage is zero when nothing is invested.
func Evaluate(pos models.Position, quote *models.Quote) models.PositionValuation {
	price := decimal.NewFromFloat(quote.Price)
	value := price.Mul(decimal.NewFromInt(pos.Quantity))
	pnl := value.Sub(pos.Invested)

	pct := decimal.Zero
	if !pos.Invested.IsZero() {
		pct = pnl.Div(pos.Invested).Mul(hundred)
	}

	return models.PositionValuation{
		Symbol:           pos.Symbol,
		Quantity:         pos.Quantity,
		AveragePrice:     pos.AveragePrice,
		CurrentPrice:     price,
		CurrentValue:     value,
		Invested:         pos.Invested,
		ProfitAndLoss:    pnl,
		ProfitAndLossPct: pct,
		QuoteSource:      quote.Source,
		QuoteIsReal:      quote.IsRealData,
	}
}

// Summarize totals a set of valuations into one portfolio view.
func Summarize(valuations []models.PositionValuation) models.PortfolioSummary {
	totalInvested := decimal.Zero
	totalValue := decimal.Zero
	for _, v := range valuations {
		totalInvested = totalInvested.Add(v.Invested)
		totalValue = totalValue.Add(v.CurrentValue)
	}

	totalPnl := totalValue.Sub(totalInvested)
	totalPct := decimal.Zero
	if !totalInvested.IsZero() {
		totalPct = totalPnl.Div(totalInvested).Mul(hundred)
	}

	return models.PortfolioSummary{
		Positions:     valuations,
		TotalInvested: totalInvested,
		TotalValue:    totalValue,
		TotalPnl:      totalPnl,
		TotalPnlPct:   totalPct,
		AsOf:          time.Now().UTC(),
	}
}
