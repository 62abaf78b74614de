package quotes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const yahooChartBody = `{
	"chart": {
		"result": [{
			"meta": {
				"currency": "INR",
				"symbol": "RELIANCE.NS",
				"regularMarketPrice": 2856.75,
				"previousClose": 2840.10,
				"chartPreviousClose": 2840.10,
				"regularMarketDayHigh": 2870.00,
				"regularMarketDayLow": 2830.00,
				"regularMarketVolume": 5234100
			},
			"indicators": {
				"quote": [{"open": [2845.00]}]
			}
		}],
		"error": null
	}
}`

func newYahooTestSource(handler http.HandlerFunc) (*YahooSource, *httptest.Server) {
	server := httptest.NewServer(handler)
	src := NewYahooSource(5 * time.Second)
	src.baseURL = server.URL
	return src, server
}

func TestYahooSource_Fetch(t *testing.T) {
	var gotPath, gotUA string
	src, server := newYahooTestSource(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte(yahooChartBody))
	})
	defer server.Close()

	quote, err := src.Fetch(context.Background(), "RELIANCE")
	require.NoError(t, err)

	assert.Equal(t, "/v8/finance/chart/RELIANCE.NS", gotPath)
	assert.Contains(t, gotUA, "Mozilla")

	assert.Equal(t, "RELIANCE", quote.Symbol)
	assert.Equal(t, "yahoo", quote.Source)
	assert.True(t, quote.IsRealData)
	assert.Equal(t, "INR", quote.Currency)
	assert.InDelta(t, 2856.75, quote.Price, 1e-9)
	assert.InDelta(t, 2840.10, quote.PrevClose, 1e-9)
	assert.InDelta(t, 2845.00, quote.Open, 1e-9)
	assert.InDelta(t, 2870.00, quote.DayHigh, 1e-9)
	assert.InDelta(t, 2830.00, quote.DayLow, 1e-9)
	assert.Equal(t, int64(5234100), quote.Volume)
	assert.InDelta(t, 16.65, quote.Change, 1e-9)
	assert.InDelta(t, 16.65/2840.10*100, quote.ChangePercent, 1e-9)
	assert.False(t, quote.RetrievedAt.IsZero())
}

func TestYahooSource_Fetch_DottedSymbolKeepsSuffix(t *testing.T) {
	var gotPath string
	src, server := newYahooTestSource(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(yahooChartBody))
	})
	defer server.Close()

	_, err := src.Fetch(context.Background(), "TATASTEEL.BO")
	require.NoError(t, err)

	assert.Equal(t, "/v8/finance/chart/TATASTEEL.BO", gotPath)
}

func TestYahooSource_Fetch_RateLimited(t *testing.T) {
	src, server := newYahooTestSource(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})
	defer server.Close()

	_, err := src.Fetch(context.Background(), "RELIANCE")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSourceRateLimited)
}

func TestYahooSource_Fetch_ServerError(t *testing.T) {
	src, server := newYahooTestSource(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	defer server.Close()

	_, err := src.Fetch(context.Background(), "RELIANCE")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSourceUnavailable)
}

func TestYahooSource_Fetch_ChartError(t *testing.T) {
	src, server := newYahooTestSource(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`))
	})
	defer server.Close()

	_, err := src.Fetch(context.Background(), "BOGUS")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSourceParse)
}

func TestYahooSource_Fetch_EmptyResult(t *testing.T) {
	src, server := newYahooTestSource(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"chart":{"result":[],"error":null}}`))
	})
	defer server.Close()

	_, err := src.Fetch(context.Background(), "RELIANCE")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSourceParse)
}

func TestYahooSource_Fetch_NonPositivePrice(t *testing.T) {
	src, server := newYahooTestSource(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"chart":{"result":[{"meta":{"regularMarketPrice":0}}],"error":null}}`))
	})
	defer server.Close()

	_, err := src.Fetch(context.Background(), "RELIANCE")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSourceParse)
}

func TestYahooSource_Fetch_MalformedJSON(t *testing.T) {
	src, server := newYahooTestSource(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>maintenance</html>`))
	})
	defer server.Close()

	_, err := src.Fetch(context.Background(), "RELIANCE")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSourceParse)
}

func TestYahooSource_Fetch_PrevCloseFallback(t *testing.T) {
	src, server := newYahooTestSource(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"chart": {
				"result": [{
					"meta": {
						"regularMarketPrice": 101.5,
						"previousClose": 0,
						"chartPreviousClose": 100.0
					},
					"indicators": {"quote": [{"open": []}]}
				}],
				"error": null
			}
		}`))
	})
	defer server.Close()

	quote, err := src.Fetch(context.Background(), "RELIANCE")
	require.NoError(t, err)

	assert.InDelta(t, 100.0, quote.PrevClose, 1e-9)
	// No intraday open series; open falls back to the previous close.
	assert.InDelta(t, 100.0, quote.Open, 1e-9)
	assert.InDelta(t, 1.5, quote.Change, 1e-9)
}
