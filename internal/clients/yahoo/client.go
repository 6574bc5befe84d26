// Package yahoo provides a client for the Yahoo Finance public API.
package yahoo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/papertrade-io/papertrade/internal/common"
	"github.com/papertrade-io/papertrade/internal/models"
)

const (
	DefaultBaseURL   = "https://query1.finance.yahoo.com"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 5 // requests per second
)

// ErrSymbolNotFound is returned when the provider does not know the symbol.
var ErrSymbolNotFound = errors.New("symbol not found")

// flexInt64 handles JSON values that may be a number, a string, or absent.
type flexInt64 int64

func (f *flexInt64) UnmarshalJSON(data []byte) error {
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*f = flexInt64(num)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s == "" || s == "N/A" {
			*f = 0
			return nil
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			*f = 0
			return nil
		}
		*f = flexInt64(n)
		return nil
	}
	return fmt.Errorf("cannot unmarshal %s into int64", string(data))
}

// Client implements the MarketDataClient interface against Yahoo Finance.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new Yahoo Finance client
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError represents an upstream API error
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("yahoo API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// get performs a rate-limited GET request
func (c *Client) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "papertrade/"+common.GetVersion())

	c.logger.Debug().Str("path", path).Msg("Yahoo API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
			Endpoint:   path,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// --- Quotes ---

type quoteResult struct {
	Symbol                     string    `json:"symbol"`
	ShortName                  string    `json:"shortName"`
	LongName                   string    `json:"longName"`
	RegularMarketPrice         float64   `json:"regularMarketPrice"`
	RegularMarketChange        float64   `json:"regularMarketChange"`
	RegularMarketChangePercent float64   `json:"regularMarketChangePercent"`
	RegularMarketVolume        flexInt64 `json:"regularMarketVolume"`
	MarketCap                  flexInt64 `json:"marketCap"`
}

type quoteEnvelope struct {
	QuoteResponse struct {
		Result []quoteResult   `json:"result"`
		Error  json.RawMessage `json:"error"`
	} `json:"quoteResponse"`
}

// GetQuote retrieves the current quote for a symbol.
func (c *Client) GetQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	params := url.Values{}
	params.Set("symbols", symbol)

	var envelope quoteEnvelope
	if err := c.get(ctx, "/v7/finance/quote", params, &envelope); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return nil, ErrSymbolNotFound
		}
		return nil, err
	}

	if len(envelope.QuoteResponse.Result) == 0 {
		return nil, ErrSymbolNotFound
	}

	r := envelope.QuoteResponse.Result[0]
	name := r.ShortName
	if name == "" {
		name = r.LongName
	}
	if name == "" {
		name = r.Symbol
	}

	return &models.Quote{
		Symbol:        strings.ToUpper(r.Symbol),
		Name:          name,
		Price:         r.RegularMarketPrice,
		Change:        r.RegularMarketChange,
		ChangePercent: r.RegularMarketChangePercent,
		Volume:        int64(r.RegularMarketVolume),
		MarketCap:     int64(r.MarketCap),
	}, nil
}

// --- History ---

type chartEnvelope struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close  []*float64 `json:"close"`
					Volume []*int64   `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// GetHistory retrieves daily bars for the given range (e.g. "1mo", "2mo"),
// oldest first. Days with no close (halts, holidays) are skipped.
func (c *Client) GetHistory(ctx context.Context, symbol, rng string) ([]models.Bar, error) {
	params := url.Values{}
	params.Set("range", rng)
	params.Set("interval", "1d")

	path := fmt.Sprintf("/v8/finance/chart/%s", url.PathEscape(symbol))

	var envelope chartEnvelope
	if err := c.get(ctx, path, params, &envelope); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return nil, ErrSymbolNotFound
		}
		return nil, err
	}

	if envelope.Chart.Error != nil {
		return nil, fmt.Errorf("%w: %s", ErrSymbolNotFound, envelope.Chart.Error.Description)
	}
	if len(envelope.Chart.Result) == 0 || len(envelope.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, ErrSymbolNotFound
	}

	result := envelope.Chart.Result[0]
	quote := result.Indicators.Quote[0]

	bars := make([]models.Bar, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(quote.Close) || quote.Close[i] == nil {
			continue
		}
		date := time.Unix(ts, 0).UTC()
		bar := models.Bar{
			Date:  date,
			Time:  date.Format("2006-01-02"),
			Close: *quote.Close[i],
		}
		if i < len(quote.Volume) && quote.Volume[i] != nil {
			bar.Volume = *quote.Volume[i]
		}
		bars = append(bars, bar)
	}

	return bars, nil
}

// --- Search ---

type searchEnvelope struct {
	Quotes []struct {
		Symbol    string `json:"symbol"`
		ShortName string `json:"shortname"`
		LongName  string `json:"longname"`
		ExchDisp  string `json:"exchDisp"`
		Exchange  string `json:"exchange"`
		QuoteType string `json:"quoteType"`
	} `json:"quotes"`
}

// Search looks up symbols matching a free-text query.
func (c *Client) Search(ctx context.Context, query string) ([]models.SearchResult, error) {
	params := url.Values{}
	params.Set("q", query)

	var envelope searchEnvelope
	if err := c.get(ctx, "/v1/finance/search", params, &envelope); err != nil {
		return nil, err
	}

	results := make([]models.SearchResult, 0, len(envelope.Quotes))
	for _, q := range envelope.Quotes {
		if q.Symbol == "" {
			continue
		}
		name := q.ShortName
		if name == "" {
			name = q.LongName
		}
		if name == "" {
			name = q.Symbol
		}
		exchange := q.ExchDisp
		if exchange == "" {
			exchange = q.Exchange
		}
		results = append(results, models.SearchResult{
			Symbol:   q.Symbol,
			Name:     name,
			Exchange: exchange,
			Type:     q.QuoteType,
		})
	}

	return results, nil
}
