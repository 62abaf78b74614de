package quotes

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/kvaidya/stockfolio/internal/metrics"
	"github.com/kvaidya/stockfolio/internal/models"
)

// RetryConfig bounds the per-source retry loop.
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

// DefaultRetryConfig matches the pipeline defaults.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{MaxAttempts: 3, BaseDelay: 500 * time.Millisecond}
}

// FetchWithRetry invokes one source up to cfg.MaxAttempts times with a
// linear backoff (BaseDelay * attempt number after each failure). It
// holds no state across calls and returns the last source error once
// attempts are exhausted, or the context error if cancelled while
// waiting.
func FetchWithRetry(ctx context.Context, src Source, symbol string, cfg RetryConfig, logger zerolog.Logger) (*models.Quote, error) {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		metrics.SourceAttempts.WithLabelValues(src.Name()).Inc()

		quote, err := src.Fetch(ctx, symbol)
		if err == nil {
			return quote, nil
		}
		lastErr = err

		var srcErr *SourceError
		if errors.As(err, &srcErr) {
			metrics.SourceFailures.WithLabelValues(src.Name(), srcErr.KindLabel()).Inc()
		} else {
			metrics.SourceFailures.WithLabelValues(src.Name(), "unavailable").Inc()
		}
		logger.Debug().
			Err(err).
			Str("source", src.Name()).
			Str("symbol", symbol).
			Int("attempt", attempt).
			Msg("Source attempt failed")

		if attempt == cfg.MaxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(cfg.BaseDelay * time.Duration(attempt)):
		}
	}
	return nil, lastErr
}
