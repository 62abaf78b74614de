package quotes

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/kvaidya/stockfolio/internal/models"
)

// bseScripCodes maps NSE-style symbols to BSE numeric scrip codes. The
// BSE API is addressed by scrip code, not symbol; a symbol missing
// here is an ordinary source failure and the pipeline moves on.
var bseScripCodes = map[string]string{
	"RELIANCE":   "500325",
	"TCS":        "532540",
	"INFY":       "500209",
	"HDFCBANK":   "500180",
	"ICICIBANK":  "532174",
	"SBIN":       "500112",
	"BHARTIARTL": "532454",
	"ITC":        "500875",
	"WIPRO":      "507685",
	"TATAMOTORS": "500570",
	"LT":         "500510",
	"AXISBANK":   "532215",
}

// BSESource fetches quotes from the BSE India scrip-header API.
type BSESource struct {
	client  *http.Client
	baseURL string
}

// NewBSESource creates the BSE adapter with a bounded timeout.
func NewBSESource(timeout time.Duration) *BSESource {
	return &BSESource{
		client:  &http.Client{Timeout: timeout},
		baseURL: "https://api.bseindia.com",
	}
}

func (b *BSESource) Name() string { return "bse" }

// Fetch gets the scrip header for symbol's BSE listing.
func (b *BSESource) Fetch(ctx context.Context, symbol string) (*models.Quote, error) {
	scripCode, ok := bseScripCodes[symbol]
	if !ok {
		return nil, unavailable(b.Name(), fmt.Errorf("no scrip code for symbol %s", symbol))
	}

	endpoint := fmt.Sprintf("%s/BseIndiaAPI/api/getScripHeaderData/w?Debtflag=&scripcode=%s&seriesid=", b.baseURL, scripCode)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, unavailable(b.Name(), fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("User-Agent", browserUserAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Referer", "https://www.bseindia.com/")

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, unavailable(b.Name(), fmt.Errorf("fetch data: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, rateLimited(b.Name(), fmt.Errorf("http %d", resp.StatusCode))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, unavailable(b.Name(), fmt.Errorf("http %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, unavailable(b.Name(), fmt.Errorf("read body: %w", err))
	}
	return b.parseHeader(symbol, body)
}

// BSE serves every numeric field as a string, with Indian digit
// grouping in the larger ones.
type bseHeaderResponse struct {
	CurrRate struct {
		LTP   string `json:"LTP"`
		Chg   string `json:"Chg"`
		PcChg string `json:"PcChg"`
	} `json:"CurrRate"`
	Header struct {
		PrevClose string `json:"PrevClose"`
		Open      string `json:"Open"`
		High      string `json:"High"`
		Low       string `json:"Low"`
	} `json:"Header"`
	MktCapFull string `json:"MktCapFull"`
}

func (b *BSESource) parseHeader(symbol string, body []byte) (*models.Quote, error) {
	var payload bseHeaderResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, parseFailure(b.Name(), fmt.Errorf("unmarshal header: %w", err))
	}

	price := bseFloat(payload.CurrRate.LTP)
	if price <= 0 {
		return nil, parseFailure(b.Name(), fmt.Errorf("non-positive price %q", payload.CurrRate.LTP))
	}

	return newQuote(symbol, b.Name(), models.DefaultCurrency,
		price, bseFloat(payload.Header.PrevClose), bseFloat(payload.Header.Open),
		bseFloat(payload.Header.High), bseFloat(payload.Header.Low),
		0, bseMarketCap(payload.MktCapFull)), nil
}

// bseFloat parses a BSE numeric string, tolerating comma grouping.
// Unparseable values become 0 so optional fields degrade instead of
// failing the quote.
func bseFloat(s string) float64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// bseMarketCap converts BSE's "12,34,567.89 Cr" market-cap string to
// plain INR (1 crore = 1e7).
func bseMarketCap(s string) float64 {
	s = strings.TrimSpace(s)
	if cut, ok := strings.CutSuffix(s, " Cr"); ok {
		s = cut
	}
	return bseFloat(s) * 1e7
}
