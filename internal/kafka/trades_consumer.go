package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"

	"github.com/kvaidya/stockfolio/internal/ledger"
	"github.com/kvaidya/stockfolio/internal/models"
)

// EventTypeTradesImported marks broker export messages carrying trades
// to replay into the ledger.
const EventTypeTradesImported = "TRADES_IMPORTED"

// TradeAppender is the slice of the ledger service the import consumer
// needs.
type TradeAppender interface {
	Append(ctx context.Context, ownerID string, input ledger.TradeInput) (*models.TradeEvent, error)
}

// messageReader is the part of kafka.Reader the consumer loop uses.
type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Config() kafka.ReaderConfig
	Close() error
}

// ImportConsumer replays broker trade exports from Kafka into the
// ledger. Every imported trade goes through the same validation and
// recompute path as an API submission; invalid rows are skipped.
type ImportConsumer struct {
	reader messageReader
	trades TradeAppender
	logger zerolog.Logger
}

// NewImportConsumer creates a Kafka consumer for broker import events.
func NewImportConsumer(brokers []string, topic, groupID string, trades TradeAppender, logger zerolog.Logger) *ImportConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID + "-imports",
		MinBytes:       10e3, // 10KB
		MaxBytes:       10e6, // 10MB
		MaxWait:        1 * time.Second,
		StartOffset:    kafka.FirstOffset,
		CommitInterval: time.Second,
	})

	return &ImportConsumer{
		reader: reader,
		trades: trades,
		logger: logger,
	}
}

// Start begins consuming messages from Kafka. It blocks until ctx is
// cancelled.
func (c *ImportConsumer) Start(ctx context.Context) error {
	c.logger.Info().Str("topic", c.reader.Config().Topic).Msg("Starting trade import consumer")

	for {
		select {
		case <-ctx.Done():
			c.logger.Info().Msg("Trade import consumer shutting down")
			return c.reader.Close()
		default:
			msg, err := c.reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				c.logger.Error().Err(err).Msg("Error reading import message")
				continue
			}

			if err := c.processMessage(ctx, msg); err != nil {
				c.logger.Error().Err(err).Msg("Error processing import message")
				// Continue processing other messages
			}
		}
	}
}

// processMessage handles a single Kafka message.
func (c *ImportConsumer) processMessage(ctx context.Context, msg kafka.Message) error {
	var event models.TradeImportEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return fmt.Errorf("failed to unmarshal import event: %w", err)
	}

	if event.EventType != EventTypeTradesImported {
		c.logger.Debug().Str("event_type", event.EventType).Msg("Ignoring event type")
		return nil
	}
	if event.Data.OwnerID == "" {
		return fmt.Errorf("import event missing owner_id")
	}

	c.logger.Info().
		Str("owner_id", event.Data.OwnerID).
		Str("source", event.Source).
		Int("trades", len(event.Data.Trades)).
		Msg("Processing trade import")

	appended := 0
	for _, imported := range event.Data.Trades {
		input, err := convertImportedTrade(imported)
		if err != nil {
			c.logger.Warn().Err(err).Str("symbol", imported.Symbol).Msg("Skipping unparseable imported trade")
			continue
		}
		if _, err := c.trades.Append(ctx, event.Data.OwnerID, input); err != nil {
			c.logger.Warn().Err(err).Str("symbol", imported.Symbol).Msg("Failed to append imported trade")
			continue
		}
		appended++
	}

	c.logger.Info().
		Str("owner_id", event.Data.OwnerID).
		Int("appended", appended).
		Int("skipped", len(event.Data.Trades)-appended).
		Msg("Trade import complete")

	return nil
}

// convertImportedTrade parses the broker's all-string fields into a
// trade input. Business validation happens in the ledger service.
func convertImportedTrade(imported models.ImportedTrade) (ledger.TradeInput, error) {
	quantity, err := strconv.ParseInt(imported.Quantity, 10, 64)
	if err != nil {
		return ledger.TradeInput{}, fmt.Errorf("invalid quantity %q: %w", imported.Quantity, err)
	}
	price, err := decimal.NewFromString(imported.Price)
	if err != nil {
		return ledger.TradeInput{}, fmt.Errorf("invalid price %q: %w", imported.Price, err)
	}

	return ledger.TradeInput{
		Symbol:    imported.Symbol,
		Action:    imported.Action,
		Quantity:  quantity,
		Price:     price,
		TradeDate: imported.TradeDate,
		Note:      imported.Note,
	}, nil
}

// Close closes the Kafka consumer.
func (c *ImportConsumer) Close() error {
	return c.reader.Close()
}
