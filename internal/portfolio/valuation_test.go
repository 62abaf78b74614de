package portfolio

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kvaidya/stockfolio/internal/models"
)

func TestEvaluate_GainingPosition(t *testing.T) {
	pos := models.Position{
		Symbol:       "RELIANCE",
		Quantity:     100,
		AveragePrice: decimal.NewFromInt(250),
		Invested:     decimal.NewFromInt(25000),
	}
	quote := &models.Quote{Symbol: "RELIANCE", Price: 260, Source: "yahoo", IsRealData: true}

	val := Evaluate(pos, quote)

	assert.True(t, val.CurrentValue.Equal(decimal.NewFromInt(26000)), "value = %s", val.CurrentValue)
	assert.True(t, val.ProfitAndLoss.Equal(decimal.NewFromInt(1000)), "pnl = %s", val.ProfitAndLoss)
	assert.True(t, val.ProfitAndLossPct.Equal(decimal.NewFromInt(4)), "pct = %s", val.ProfitAndLossPct)
	assert.Equal(t, "yahoo", val.QuoteSource)
	assert.True(t, val.QuoteIsReal)
}

func TestEvaluate_LosingPosition(t *testing.T) {
	pos := models.Position{
		Symbol:       "TCS",
		Quantity:     10,
		AveragePrice: decimal.NewFromInt(4000),
		Invested:     decimal.NewFromInt(40000),
	}
	quote := &models.Quote{Symbol: "TCS", Price: 3800, Source: "nse", IsRealData: true}

	val := Evaluate(pos, quote)

	assert.True(t, val.CurrentValue.Equal(decimal.NewFromInt(38000)))
	assert.True(t, val.ProfitAndLoss.Equal(decimal.NewFromInt(-2000)))
	assert.True(t, val.ProfitAndLossPct.Equal(decimal.NewFromInt(-5)), "pct = %s", val.ProfitAndLossPct)
}

func TestEvaluate_ZeroInvestedHasZeroPercent(t *testing.T) {
	pos := models.Position{
		Symbol:       "INFY",
		Quantity:     10,
		AveragePrice: decimal.Zero,
		Invested:     decimal.Zero,
	}
	quote := &models.Quote{Symbol: "INFY", Price: 50, Source: "bse", IsRealData: true}

	val := Evaluate(pos, quote)

	assert.True(t, val.ProfitAndLoss.Equal(decimal.NewFromInt(500)))
	assert.True(t, val.ProfitAndLossPct.IsZero(), "pct = %s", val.ProfitAndLossPct)
}

func TestEvaluate_SyntheticQuoteIsVisible(t *testing.T) {
	pos := models.Position{Symbol: "SBIN", Quantity: 1, Invested: decimal.NewFromInt(800)}
	quote := &models.Quote{Symbol: "SBIN", Price: 810.5, Source: models.SyntheticSource, IsRealData: false}

	val := Evaluate(pos, quote)

	assert.Equal(t, models.SyntheticSource, val.QuoteSource)
	assert.False(t, val.QuoteIsReal)
}

func TestSummarize_Totals(t *testing.T) {
	valuations := []models.PositionValuation{
		{
			Symbol:        "RELIANCE",
			Invested:      decimal.NewFromInt(25000),
			CurrentValue:  decimal.NewFromInt(26000),
			ProfitAndLoss: decimal.NewFromInt(1000),
		},
		{
			Symbol:        "TCS",
			Invested:      decimal.NewFromInt(40000),
			CurrentValue:  decimal.NewFromInt(38000),
			ProfitAndLoss: decimal.NewFromInt(-2000),
		},
	}

	summary := Summarize(valuations)

	require.Len(t, summary.Positions, 2)
	assert.True(t, summary.TotalInvested.Equal(decimal.NewFromInt(65000)))
	assert.True(t, summary.TotalValue.Equal(decimal.NewFromInt(64000)))
	assert.True(t, summary.TotalPnl.Equal(decimal.NewFromInt(-1000)))
	// -1000 / 65000 * 100
	assert.True(t, summary.TotalPnlPct.Round(4).Equal(decimal.RequireFromString("-1.5385")),
		"pct = %s", summary.TotalPnlPct)
	assert.False(t, summary.AsOf.IsZero())
}

func TestSummarize_Empty(t *testing.T) {
	summary := Summarize(nil)

	assert.Empty(t, summary.Positions)
	assert.True(t, summary.TotalInvested.IsZero())
	assert.True(t, summary.TotalValue.IsZero())
	assert.True(t, summary.TotalPnl.IsZero())
	assert.True(t, summary.TotalPnlPct.IsZero())
}
