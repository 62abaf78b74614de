// Package portfolio holds the pure position math: folding a trade
// history into a holding and valuing holdings against current quotes.
package portfolio

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/kvaidya/stockfolio/internal/models"
)

// Apply advances a position by one trade event.
//
// A BUY adds quantity and cost and recomputes the weighted average. A
// SELL reduces quantity at the standing average, leaving the average
// untouched; selling the position to (or past) zero wipes the cost
// basis entirely, so the realized gain on the closing trade is not
// retained here.
func Apply(pos models.Position, ev models.TradeEvent) models.Position {
	switch ev.Action {
	case models.TradeActionBuy:
		pos.Quantity += ev.Quantity
		pos.Invested = pos.Invested.Add(ev.Price.Mul(decimal.NewFromInt(ev.Quantity)))
		pos.AveragePrice = pos.Invested.Div(decimal.NewFromInt(pos.Quantity))
	case models.TradeActionSell:
		pos.Quantity -= ev.Quantity
		if pos.Quantity <= 0 {
			pos.Quantity = 0
			pos.Invested = decimal.Zero
			pos.AveragePrice = decimal.Zero
		} else {
			pos.Invested = pos.AveragePrice.Mul(decimal.NewFromInt(pos.Quantity))
		}
	}
	pos.TradeCount++
	return pos
}

// Recompute folds a full trade history into the (owner, symbol)
// position. Events must arrive in chronological order with ties broken
// by insertion order; the stores guarantee that retrieval contract.
// Folding the whole history here and folding events one at a time
// through Apply produce the same position.
func Recompute(ownerID, symbol string, events []models.TradeEvent) models.Position {
	pos := models.Position{
		OwnerID:      ownerID,
		Symbol:       symbol,
		AveragePrice: decimal.Zero,
		Invested:     decimal.Zero,
	}
	for _, ev := range events {
		pos = Apply(pos, ev)
	}
	pos.UpdatedAt = time.Now().UTC()
	return pos
}
