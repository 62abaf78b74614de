package quotes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/kvaidya/stockfolio/internal/metrics"
	"github.com/kvaidya/stockfolio/internal/models"
)

// QuoteCache is the slice of the Redis client the pipeline consults
// before hitting any source. A nil cache disables caching.
type QuoteCache interface {
	GetQuote(ctx context.Context, symbol string) (*models.Quote, error)
	SetQuote(ctx context.Context, quote *models.Quote, ttl time.Duration) error
}

// Config tunes the pipeline.
type Config struct {
	Retry      RetryConfig
	BatchDelay time.Duration
	CacheTTL   time.Duration
}

// Pipeline acquires quotes by walking an ordered list of sources. The
// order encodes reliability preference; the first source to produce a
// positive normalized price wins and the rest are never invoked. When
// every source is exhausted the pipeline serves a synthetic quote, so
// a symbol lookup never fails except on context cancellation.
type Pipeline struct {
	sources []Source
	cache   QuoteCache
	cfg     Config
	logger  zerolog.Logger
}

// NewPipeline builds a pipeline over sources in priority order.
func NewPipeline(sources []Source, cache QuoteCache, cfg Config, logger zerolog.Logger) *Pipeline {
	if cfg.Retry.MaxAttempts < 1 {
		cfg.Retry = DefaultRetryConfig()
	}
	return &Pipeline{sources: sources, cache: cache, cfg: cfg, logger: logger}
}

// Fetch returns a quote for symbol. Source failures of any kind are
// absorbed: the only externally visible effect is which source id and
// is_real_data value end up on the quote. The returned error is
// non-nil only for an empty symbol or a cancelled context.
func (p *Pipeline) Fetch(ctx context.Context, symbol string) (*models.Quote, error) {
	symbol = models.CanonicalSymbol(symbol)
	if symbol == "" {
		return nil, fmt.Errorf("empty symbol")
	}
	start := time.Now()

	if p.cache != nil {
		if quote, err := p.cache.GetQuote(ctx, symbol); err == nil && quote != nil {
			metrics.CacheHits.Inc()
			metrics.FetchDuration.WithLabelValues("cache").Observe(time.Since(start).Seconds())
			return quote, nil
		}
	}

	for _, src := range p.sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		quote, err := FetchWithRetry(ctx, src, symbol, p.cfg.Retry, p.logger)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			kind := "unavailable"
			var srcErr *SourceError
			if errors.As(err, &srcErr) {
				kind = srcErr.KindLabel()
			}
			p.logger.Warn().
				Err(err).
				Str("source", src.Name()).
				Str("symbol", symbol).
				Str("kind", kind).
				Msg("Source failed, trying next")
			continue
		}
		if quote == nil || quote.Price <= 0 {
			p.logger.Warn().
				Str("source", src.Name()).
				Str("symbol", symbol).
				Msg("Discarding quote with non-positive price")
			continue
		}

		quote.Symbol = symbol
		if p.cache != nil && quote.IsRealData {
			if err := p.cache.SetQuote(ctx, quote, p.cfg.CacheTTL); err != nil {
				p.logger.Debug().Err(err).Str("symbol", symbol).Msg("Quote cache write failed")
			}
		}
		metrics.FetchDuration.WithLabelValues("real").Observe(time.Since(start).Seconds())
		return quote, nil
	}

	// Every source exhausted; fabricate a flagged quote rather than
	// surface an error. Synthetic quotes are never cached.
	metrics.SyntheticFallbacks.Inc()
	metrics.FetchDuration.WithLabelValues("synthetic").Observe(time.Since(start).Seconds())
	p.logger.Warn().Str("symbol", symbol).Msg("All sources exhausted, serving synthetic quote")
	return Synthetic(symbol), nil
}

// FetchBatch fetches quotes for several symbols strictly sequentially,
// pausing BatchDelay between symbols to stay under provider rate
// limits. Each symbol gets its own result entry; cancellation turns
// the remaining entries into errors instead of aborting the slice.
func (p *Pipeline) FetchBatch(ctx context.Context, symbols []string) []models.QuoteResult {
	results := make([]models.QuoteResult, 0, len(symbols))
	for i, raw := range symbols {
		symbol := models.CanonicalSymbol(raw)
		if i > 0 {
			select {
			case <-ctx.Done():
				results = append(results, models.QuoteResult{Symbol: symbol, Error: ctx.Err().Error()})
				continue
			case <-time.After(p.cfg.BatchDelay):
			}
		}

		quote, err := p.Fetch(ctx, symbol)
		if err != nil {
			results = append(results, models.QuoteResult{Symbol: symbol, Error: err.Error()})
			continue
		}
		results = append(results, models.QuoteResult{Symbol: symbol, Quote: quote})
	}
	return results
}
