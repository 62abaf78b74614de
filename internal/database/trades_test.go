package database

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kvaidya/stockfolio/internal/models"
)

func newMockDB(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return NewFromConn(conn), mock
}

func sampleTrade() models.TradeEvent {
	return models.TradeEvent{
		ID:        "7f4d2c9a-1b3e-4f5a-8c6d-2e1f0a9b8c7d",
		OwnerID:   "owner-1",
		Symbol:    "RELIANCE",
		Action:    models.TradeActionBuy,
		Quantity:  100,
		Price:     decimal.RequireFromString("250"),
		TradeDate: time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		Note:      "long term",
		CreatedAt: time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC),
	}
}

func samplePosition() models.Position {
	return models.Position{
		OwnerID:      "owner-1",
		Symbol:       "RELIANCE",
		Quantity:     100,
		AveragePrice: decimal.RequireFromString("250"),
		Invested:     decimal.RequireFromString("25000"),
		TradeCount:   1,
		UpdatedAt:    time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC),
	}
}

func TestDB_RecordTrade_CommitsTradeAndPosition(t *testing.T) {
	db, mock := newMockDB(t)
	trade := sampleTrade()
	pos := samplePosition()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO trades").
		WithArgs(trade.ID, trade.OwnerID, trade.Symbol, "BUY",
			trade.Quantity, trade.Price, trade.TradeDate, trade.Note, trade.CreatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO positions").
		WithArgs(pos.OwnerID, pos.Symbol, pos.Quantity, pos.AveragePrice,
			pos.Invested, pos.TradeCount, pos.UpdatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := db.RecordTrade(context.Background(), trade, pos)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDB_RecordTrade_RollsBackOnTradeInsertFailure(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO trades").WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err := db.RecordTrade(context.Background(), sampleTrade(), samplePosition())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to insert trade")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDB_RecordTrade_RollsBackOnPositionUpsertFailure(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO trades").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO positions").WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err := db.RecordTrade(context.Background(), sampleTrade(), samplePosition())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to upsert position")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func tradeColumns() []string {
	return []string{"id", "owner_id", "symbol", "action", "quantity", "price", "trade_date", "note", "created_at"}
}

func TestDB_ListTrades_AllSymbols(t *testing.T) {
	db, mock := newMockDB(t)

	day1 := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	day2 := time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(tradeColumns()).
		AddRow("t-1", "owner-1", "RELIANCE", "BUY", int64(100), "250", day1, "", day1).
		AddRow("t-2", "owner-1", "TCS", "SELL", int64(5), "4120.55", day2, "profit booking", day2)
	mock.ExpectQuery(`ORDER BY trade_date, seq`).
		WithArgs("owner-1").
		WillReturnRows(rows)

	trades, err := db.ListTrades(context.Background(), "owner-1", "")
	require.NoError(t, err)
	require.Len(t, trades, 2)

	assert.Equal(t, "t-1", trades[0].ID)
	assert.Equal(t, models.TradeActionBuy, trades[0].Action)
	assert.True(t, trades[0].Price.Equal(decimal.NewFromInt(250)))

	assert.Equal(t, models.TradeActionSell, trades[1].Action)
	assert.Equal(t, int64(5), trades[1].Quantity)
	assert.True(t, trades[1].Price.Equal(decimal.RequireFromString("4120.55")))
	assert.Equal(t, "profit booking", trades[1].Note)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDB_ListTrades_FiltersBySymbol(t *testing.T) {
	db, mock := newMockDB(t)

	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(tradeColumns()).
		AddRow("t-1", "owner-1", "TCS", "BUY", int64(10), "4100", day, "", day)
	mock.ExpectQuery(`AND symbol = \$2`).
		WithArgs("owner-1", "TCS").
		WillReturnRows(rows)

	trades, err := db.ListTrades(context.Background(), "owner-1", "TCS")
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, "TCS", trades[0].Symbol)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDB_ListTrades_EmptyHistory(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery("FROM trades").
		WithArgs("owner-1").
		WillReturnRows(sqlmock.NewRows(tradeColumns()))

	trades, err := db.ListTrades(context.Background(), "owner-1", "")
	require.NoError(t, err)
	assert.Empty(t, trades)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDB_ListTrades_QueryFailure(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery("FROM trades").WillReturnError(assert.AnError)

	trades, err := db.ListTrades(context.Background(), "owner-1", "")
	require.Error(t, err)
	assert.Nil(t, trades)
	assert.Contains(t, err.Error(), "failed to list trades")
}
