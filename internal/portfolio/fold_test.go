package portfolio

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kvaidya/stockfolio/internal/models"
)

func buy(quantity int64, price string, day int) models.TradeEvent {
	return models.TradeEvent{
		Action:    models.TradeActionBuy,
		Quantity:  quantity,
		Price:     decimal.RequireFromString(price),
		TradeDate: time.Date(2025, 1, day, 0, 0, 0, 0, time.UTC),
	}
}

func sell(quantity int64, price string, day int) models.TradeEvent {
	ev := buy(quantity, price, day)
	ev.Action = models.TradeActionSell
	return ev
}

// ---------------------------------------------------------------------------
// Recompute
// ---------------------------------------------------------------------------

func TestRecompute_TwoBuysAveragePrice(t *testing.T) {
	pos := Recompute("owner-1", "RELIANCE", []models.TradeEvent{
		buy(100, "250", 1),
		buy(50, "245", 2),
	})

	assert.Equal(t, int64(150), pos.Quantity)
	assert.True(t, pos.Invested.Equal(decimal.NewFromInt(37250)), "invested = %s", pos.Invested)
	assert.True(t, pos.AveragePrice.Round(2).Equal(decimal.RequireFromString("248.33")),
		"average = %s", pos.AveragePrice)
	assert.Equal(t, 2, pos.TradeCount)
}

func TestRecompute_FullLiquidationResetsPosition(t *testing.T) {
	pos := Recompute("owner-1", "TCS", []models.TradeEvent{
		buy(100, "250", 1),
		sell(100, "280", 2),
	})

	assert.Equal(t, int64(0), pos.Quantity)
	assert.True(t, pos.AveragePrice.IsZero())
	assert.True(t, pos.Invested.IsZero())
	assert.Equal(t, 2, pos.TradeCount)
}

func TestRecompute_PartialSellKeepsAverage(t *testing.T) {
	pos := Recompute("owner-1", "INFY", []models.TradeEvent{
		buy(100, "250", 1),
		sell(40, "300", 2),
	})

	assert.Equal(t, int64(60), pos.Quantity)
	assert.True(t, pos.AveragePrice.Equal(decimal.NewFromInt(250)), "average = %s", pos.AveragePrice)
	assert.True(t, pos.Invested.Equal(decimal.NewFromInt(15000)), "invested = %s", pos.Invested)
}

func TestRecompute_OversellResetsToFlat(t *testing.T) {
	pos := Recompute("owner-1", "SBIN", []models.TradeEvent{
		buy(10, "100", 1),
		sell(50, "100", 2),
	})

	assert.Equal(t, int64(0), pos.Quantity)
	assert.True(t, pos.Invested.IsZero())
	assert.True(t, pos.AveragePrice.IsZero())
}

func TestRecompute_SellWithNoHoldingStaysFlat(t *testing.T) {
	pos := Recompute("owner-1", "ITC", []models.TradeEvent{
		sell(10, "462", 1),
	})

	assert.Equal(t, int64(0), pos.Quantity)
	assert.True(t, pos.Invested.IsZero())
	assert.Equal(t, 1, pos.TradeCount)
}

func TestRecompute_RebuyAfterFlatStartsFresh(t *testing.T) {
	pos := Recompute("owner-1", "WIPRO", []models.TradeEvent{
		buy(10, "100", 1),
		sell(10, "120", 2),
		buy(5, "200", 3),
	})

	assert.Equal(t, int64(5), pos.Quantity)
	assert.True(t, pos.AveragePrice.Equal(decimal.NewFromInt(200)), "average = %s", pos.AveragePrice)
	assert.True(t, pos.Invested.Equal(decimal.NewFromInt(1000)), "invested = %s", pos.Invested)
	assert.Equal(t, 3, pos.TradeCount)
}

func TestRecompute_EmptyHistory(t *testing.T) {
	pos := Recompute("owner-1", "LT", nil)

	assert.Equal(t, "owner-1", pos.OwnerID)
	assert.Equal(t, "LT", pos.Symbol)
	assert.Equal(t, int64(0), pos.Quantity)
	assert.True(t, pos.Invested.IsZero())
	assert.True(t, pos.AveragePrice.IsZero())
	assert.Equal(t, 0, pos.TradeCount)
	assert.False(t, pos.UpdatedAt.IsZero())
}

func TestRecompute_FractionalPrices(t *testing.T) {
	pos := Recompute("owner-1", "AXISBANK", []models.TradeEvent{
		buy(3, "100.10", 1),
		buy(7, "99.95", 2),
	})

	require.Equal(t, int64(10), pos.Quantity)
	// 3*100.10 + 7*99.95 = 999.95
	assert.True(t, pos.Invested.Equal(decimal.RequireFromString("999.95")), "invested = %s", pos.Invested)
	assert.True(t, pos.AveragePrice.Round(4).Equal(decimal.RequireFromString("99.995")),
		"average = %s", pos.AveragePrice)
}

// ---------------------------------------------------------------------------
// Apply
// ---------------------------------------------------------------------------

func TestApply_MatchesIncrementalFold(t *testing.T) {
	events := []models.TradeEvent{
		buy(100, "250", 1),
		buy(50, "245", 2),
		sell(30, "260", 3),
		buy(20, "255", 4),
	}

	full := Recompute("owner-1", "RELIANCE", events)

	step := models.Position{OwnerID: "owner-1", Symbol: "RELIANCE", AveragePrice: decimal.Zero, Invested: decimal.Zero}
	for _, ev := range events {
		step = Apply(step, ev)
	}

	assert.Equal(t, full.Quantity, step.Quantity)
	assert.True(t, full.Invested.Equal(step.Invested))
	assert.True(t, full.AveragePrice.Equal(step.AveragePrice))
	assert.Equal(t, full.TradeCount, step.TradeCount)
}
