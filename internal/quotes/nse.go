package quotes

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/kvaidya/stockfolio/internal/models"
)

// NSESource fetches quotes from the NSE India quote-equity API. The
// endpoint serves browsers only: requests without a full browser
// header set come back 401 or hang, so every request carries one.
type NSESource struct {
	client  *http.Client
	baseURL string
}

// NewNSESource creates the NSE adapter with a bounded timeout.
func NewNSESource(timeout time.Duration) *NSESource {
	return &NSESource{
		client:  &http.Client{Timeout: timeout},
		baseURL: "https://www.nseindia.com",
	}
}

func (n *NSESource) Name() string { return "nse" }

// Fetch gets the live quote for symbol. NSE uses plain symbols with no
// suffix; symbols containing '&' (M&M and friends) must be escaped.
func (n *NSESource) Fetch(ctx context.Context, symbol string) (*models.Quote, error) {
	endpoint := fmt.Sprintf("%s/api/quote-equity?symbol=%s", n.baseURL, url.QueryEscape(symbol))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, unavailable(n.Name(), fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("User-Agent", browserUserAgent)
	req.Header.Set("Accept", "application/json, text/plain, */*")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Referer", n.baseURL+"/get-quotes/equity?symbol="+url.QueryEscape(symbol))

	resp, err := n.client.Do(req)
	if err != nil {
		return nil, unavailable(n.Name(), fmt.Errorf("fetch data: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, rateLimited(n.Name(), fmt.Errorf("http %d", resp.StatusCode))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, unavailable(n.Name(), fmt.Errorf("http %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, unavailable(n.Name(), fmt.Errorf("read body: %w", err))
	}
	return n.parseQuote(symbol, body)
}

type nseQuoteResponse struct {
	Info struct {
		Symbol      string `json:"symbol"`
		CompanyName string `json:"companyName"`
	} `json:"info"`
	PriceInfo struct {
		LastPrice       float64 `json:"lastPrice"`
		PreviousClose   float64 `json:"previousClose"`
		Open            float64 `json:"open"`
		IntraDayHighLow struct {
			Min float64 `json:"min"`
			Max float64 `json:"max"`
		} `json:"intraDayHighLow"`
	} `json:"priceInfo"`
	SecurityWiseDP struct {
		QuantityTraded int64 `json:"quantityTraded"`
	} `json:"securityWiseDP"`
}

func (n *NSESource) parseQuote(symbol string, body []byte) (*models.Quote, error) {
	var payload nseQuoteResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, parseFailure(n.Name(), fmt.Errorf("unmarshal quote: %w", err))
	}
	price := payload.PriceInfo.LastPrice
	if price <= 0 {
		return nil, parseFailure(n.Name(), fmt.Errorf("non-positive price %v", price))
	}

	return newQuote(symbol, n.Name(), models.DefaultCurrency,
		price, payload.PriceInfo.PreviousClose, payload.PriceInfo.Open,
		payload.PriceInfo.IntraDayHighLow.Max, payload.PriceInfo.IntraDayHighLow.Min,
		payload.SecurityWiseDP.QuantityTraded, 0), nil
}
