package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kvaidya/stockfolio/internal/models"
)

// GetPosition retrieves the (owner, symbol) aggregate. A symbol the
// owner never traded yields (nil, nil), not an error; the ledger
// service folds that into the empty position.
func (db *DB) GetPosition(ctx context.Context, ownerID, symbol string) (*models.Position, error) {
	query := `
		SELECT owner_id, symbol, quantity, average_price, invested, trade_count, updated_at
		FROM positions
		WHERE owner_id = $1 AND symbol = $2
	`
	var p models.Position
	err := db.conn.QueryRowContext(ctx, query, ownerID, symbol).Scan(
		&p.OwnerID, &p.Symbol, &p.Quantity, &p.AveragePrice,
		&p.Invested, &p.TradeCount, &p.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get position %s: %w", symbol, err)
	}
	return &p, nil
}

// ListPositions retrieves all of the owner's aggregates, closed
// positions included.
func (db *DB) ListPositions(ctx context.Context, ownerID string) ([]models.Position, error) {
	query := `
		SELECT owner_id, symbol, quantity, average_price, invested, trade_count, updated_at
		FROM positions
		WHERE owner_id = $1
		ORDER BY symbol
	`
	rows, err := db.conn.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list positions: %w", err)
	}
	defer rows.Close()

	var positions []models.Position
	for rows.Next() {
		var p models.Position
		if err := rows.Scan(
			&p.OwnerID, &p.Symbol, &p.Quantity, &p.AveragePrice,
			&p.Invested, &p.TradeCount, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan position: %w", err)
		}
		positions = append(positions, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate positions: %w", err)
	}
	return positions, nil
}
