package database

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func positionColumns() []string {
	return []string{"owner_id", "symbol", "quantity", "average_price", "invested", "trade_count", "updated_at"}
}

func TestDB_GetPosition_Found(t *testing.T) {
	db, mock := newMockDB(t)

	updated := time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)
	rows := sqlmock.NewRows(positionColumns()).
		AddRow("owner-1", "RELIANCE", int64(150), "248.3333333333333333", "37250", 2, updated)
	mock.ExpectQuery("FROM positions").
		WithArgs("owner-1", "RELIANCE").
		WillReturnRows(rows)

	pos, err := db.GetPosition(context.Background(), "owner-1", "RELIANCE")
	require.NoError(t, err)
	require.NotNil(t, pos)
	assert.Equal(t, int64(150), pos.Quantity)
	assert.True(t, pos.AveragePrice.Round(2).Equal(decimal.RequireFromString("248.33")))
	assert.True(t, pos.Invested.Equal(decimal.NewFromInt(37250)))
	assert.Equal(t, 2, pos.TradeCount)
	assert.Equal(t, updated, pos.UpdatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDB_GetPosition_AbsentIsNil(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery("FROM positions").
		WithArgs("owner-1", "WIPRO").
		WillReturnRows(sqlmock.NewRows(positionColumns()))

	pos, err := db.GetPosition(context.Background(), "owner-1", "WIPRO")
	require.NoError(t, err)
	assert.Nil(t, pos)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDB_GetPosition_QueryFailure(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery("FROM positions").WillReturnError(assert.AnError)

	pos, err := db.GetPosition(context.Background(), "owner-1", "RELIANCE")
	require.Error(t, err)
	assert.Nil(t, pos)
	assert.Contains(t, err.Error(), "failed to get position")
}

func TestDB_ListPositions_ReturnsAll(t *testing.T) {
	db, mock := newMockDB(t)

	updated := time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)
	rows := sqlmock.NewRows(positionColumns()).
		AddRow("owner-1", "INFY", int64(0), "0", "0", 4, updated).
		AddRow("owner-1", "RELIANCE", int64(150), "248.33", "37250", 2, updated)
	mock.ExpectQuery(`ORDER BY symbol`).
		WithArgs("owner-1").
		WillReturnRows(rows)

	positions, err := db.ListPositions(context.Background(), "owner-1")
	require.NoError(t, err)
	require.Len(t, positions, 2)

	// Closed positions stay listed; the API layer decides what to show.
	assert.Equal(t, "INFY", positions[0].Symbol)
	assert.Equal(t, int64(0), positions[0].Quantity)
	assert.Equal(t, "RELIANCE", positions[1].Symbol)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDB_ListPositions_Empty(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery("FROM positions").
		WithArgs("owner-1").
		WillReturnRows(sqlmock.NewRows(positionColumns()))

	positions, err := db.ListPositions(context.Background(), "owner-1")
	require.NoError(t, err)
	assert.Empty(t, positions)
}

func TestDB_ListPositions_QueryFailure(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery("FROM positions").WillReturnError(assert.AnError)

	positions, err := db.ListPositions(context.Background(), "owner-1")
	require.Error(t, err)
	assert.Nil(t, positions)
	assert.Contains(t, err.Error(), "failed to list positions")
}
