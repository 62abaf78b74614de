package quotes

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kvaidya/stockfolio/internal/models"
)

// YahooSource fetches quotes from the Yahoo Finance chart API. Indian
// listings need the .NS exchange suffix.
type YahooSource struct {
	client  *http.Client
	baseURL string
}

// NewYahooSource creates the Yahoo adapter with a bounded timeout.
func NewYahooSource(timeout time.Duration) *YahooSource {
	return &YahooSource{
		client:  &http.Client{Timeout: timeout},
		baseURL: "https://query1.finance.yahoo.com",
	}
}

func (y *YahooSource) Name() string { return "yahoo" }

// Fetch gets the latest chart snapshot for symbol.
func (y *YahooSource) Fetch(ctx context.Context, symbol string) (*models.Quote, error) {
	url := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=1d", y.baseURL, y.translateSymbol(symbol))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, unavailable(y.Name(), fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("User-Agent", browserUserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := y.client.Do(req)
	if err != nil {
		return nil, unavailable(y.Name(), fmt.Errorf("fetch data: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, rateLimited(y.Name(), fmt.Errorf("http %d", resp.StatusCode))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, unavailable(y.Name(), fmt.Errorf("http %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, unavailable(y.Name(), fmt.Errorf("read body: %w", err))
	}
	return y.parseChart(symbol, body)
}

// translateSymbol appends the NSE suffix Yahoo expects for Indian
// listings. Symbols that already carry an exchange suffix pass through.
func (y *YahooSource) translateSymbol(symbol string) string {
	if strings.Contains(symbol, ".") {
		return symbol
	}
	return symbol + ".NS"
}

type yahooChartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Currency             string  `json:"currency"`
				Symbol               string  `json:"symbol"`
				RegularMarketPrice   float64 `json:"regularMarketPrice"`
				PreviousClose        float64 `json:"previousClose"`
				ChartPreviousClose   float64 `json:"chartPreviousClose"`
				RegularMarketDayHigh float64 `json:"regularMarketDayHigh"`
				RegularMarketDayLow  float64 `json:"regularMarketDayLow"`
				RegularMarketVolume  int64   `json:"regularMarketVolume"`
			} `json:"meta"`
			Indicators struct {
				Quote []struct {
					Open []float64 `json:"open"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// parseChart normalizes a chart payload into a canonical quote. A
// missing or non-positive price is a parse failure, not a quote.
func (y *YahooSource) parseChart(symbol string, body []byte) (*models.Quote, error) {
	var payload yahooChartResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, parseFailure(y.Name(), fmt.Errorf("unmarshal chart: %w", err))
	}
	if payload.Chart.Error != nil {
		return nil, parseFailure(y.Name(), fmt.Errorf("chart error %s: %s", payload.Chart.Error.Code, payload.Chart.Error.Description))
	}
	if len(payload.Chart.Result) == 0 {
		return nil, parseFailure(y.Name(), fmt.Errorf("empty chart result"))
	}

	result := payload.Chart.Result[0]
	meta := result.Meta
	if meta.RegularMarketPrice <= 0 {
		return nil, parseFailure(y.Name(), fmt.Errorf("non-positive price %v", meta.RegularMarketPrice))
	}

	prevClose := meta.PreviousClose
	if prevClose == 0 {
		prevClose = meta.ChartPreviousClose
	}
	open := prevClose
	if len(result.Indicators.Quote) > 0 && len(result.Indicators.Quote[0].Open) > 0 && result.Indicators.Quote[0].Open[0] > 0 {
		open = result.Indicators.Quote[0].Open[0]
	}

	return newQuote(symbol, y.Name(), meta.Currency,
		meta.RegularMarketPrice, prevClose, open,
		meta.RegularMarketDayHigh, meta.RegularMarketDayLow,
		meta.RegularMarketVolume, 0), nil
}
