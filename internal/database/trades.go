package database

import (
	"context"
	"fmt"

	"github.com/kvaidya/stockfolio/internal/models"
)

// RecordTrade appends the trade and replaces the derived position in
// one transaction, so a crash between the two writes can never leave
// the aggregate out of step with the ledger.
func (db *DB) RecordTrade(ctx context.Context, trade models.TradeEvent, pos models.Position) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	insertTrade := `
		INSERT INTO trades (id, owner_id, symbol, action, quantity, price, trade_date, note, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	if _, err := tx.ExecContext(ctx, insertTrade,
		trade.ID, trade.OwnerID, trade.Symbol, string(trade.Action),
		trade.Quantity, trade.Price, trade.TradeDate, trade.Note, trade.CreatedAt,
	); err != nil {
		return fmt.Errorf("failed to insert trade %s: %w", trade.ID, err)
	}

	upsertPosition := `
		INSERT INTO positions (owner_id, symbol, quantity, average_price, invested, trade_count, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (owner_id, symbol)
		DO UPDATE SET
			quantity = EXCLUDED.quantity,
			average_price = EXCLUDED.average_price,
			invested = EXCLUDED.invested,
			trade_count = EXCLUDED.trade_count,
			updated_at = EXCLUDED.updated_at
	`
	if _, err := tx.ExecContext(ctx, upsertPosition,
		pos.OwnerID, pos.Symbol, pos.Quantity, pos.AveragePrice,
		pos.Invested, pos.TradeCount, pos.UpdatedAt,
	); err != nil {
		return fmt.Errorf("failed to upsert position %s: %w", pos.Symbol, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ListTrades returns the owner's trades in fold order: trade date
// ascending with the seq column breaking same-day ties in insertion
// order. An empty symbol returns all of the owner's trades.
func (db *DB) ListTrades(ctx context.Context, ownerID, symbol string) ([]models.TradeEvent, error) {
	query := `
		SELECT id, owner_id, symbol, action, quantity, price, trade_date, note, created_at
		FROM trades
		WHERE owner_id = $1
	`
	args := []any{ownerID}
	if symbol != "" {
		query += ` AND symbol = $2`
		args = append(args, symbol)
	}
	query += ` ORDER BY trade_date, seq`

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list trades: %w", err)
	}
	defer rows.Close()

	var trades []models.TradeEvent
	for rows.Next() {
		var t models.TradeEvent
		if err := rows.Scan(
			&t.ID, &t.OwnerID, &t.Symbol, &t.Action, &t.Quantity,
			&t.Price, &t.TradeDate, &t.Note, &t.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan trade: %w", err)
		}
		trades = append(trades, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate trades: %w", err)
	}
	return trades, nil
}
