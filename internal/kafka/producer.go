package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/kvaidya/stockfolio/internal/models"
)

// EventTypeTradeRecorded marks messages published after a ledger append.
const EventTypeTradeRecorded = "TRADE_RECORDED"

// messageWriter is the part of kafka.Writer the producer uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes trade events to Kafka.
type Producer struct {
	writer messageWriter
	logger zerolog.Logger
}

// NewProducer creates a Kafka producer for trade events.
func NewProducer(brokers []string, topic string, logger zerolog.Logger) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 50 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}

	return &Producer{
		writer: writer,
		logger: logger,
	}
}

// PublishTradeRecorded emits a TRADE_RECORDED event for an appended
// trade. Messages are keyed by owner and symbol so one position's
// events stay ordered within their partition.
func (p *Producer) PublishTradeRecorded(ctx context.Context, trade models.TradeEvent) error {
	event := models.TradeRecordedEvent{
		EventType: EventTypeTradeRecorded,
		Source:    "stockfolio",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Data:      trade,
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal trade event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(trade.OwnerID + ":" + trade.Symbol),
		Value: payload,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write trade event: %w", err)
	}

	p.logger.Debug().
		Str("trade_id", trade.ID).
		Str("symbol", trade.Symbol).
		Msg("Published trade event")

	return nil
}

// Close closes the Kafka writer.
func (p *Producer) Close() error {
	return p.writer.Close()
}
