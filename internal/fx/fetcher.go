package fx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultBaseURL is the exchange rate service endpoint.
const DefaultBaseURL = "https://v6.exchangerate-api.com/v6"

// Fetch errors.
var (
	ErrMissingAPIKey     = errors.New("exchange rate API key is not configured")
	ErrUnsuccessfulQuery = errors.New("exchange rate service returned an unsuccessful result")
)

// Fetcher retrieves a full rate table expressed as units of currency per 1 USD.
type Fetcher interface {
	Fetch(ctx context.Context) (map[string]float64, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context) (map[string]float64, error)

// Fetch implements Fetcher.
func (f FetcherFunc) Fetch(ctx context.Context) (map[string]float64, error) { return f(ctx) }

// Config configures the HTTP fetcher.
type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// HTTPFetcher queries a remote JSON rate service.
type HTTPFetcher struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
}

// NewHTTPFetcher creates a fetcher for the given configuration.
func NewHTTPFetcher(cfg Config) *HTTPFetcher {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	return &HTTPFetcher{
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type latestResponse struct {
	ConversionRates map[string]float64 `json:"conversion_rates"`
	Result          string             `json:"result"`
}

// Fetch downloads the latest USD-based table. It performs a single attempt.
func (f *HTTPFetcher) Fetch(ctx context.Context) (map[string]float64, error) {
	if f.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	url := fmt.Sprintf("%s/%s/latest/USD", f.baseURL, f.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("exchange rate API error (status %d): %s", resp.StatusCode, string(body))
	}

	var latest latestResponse
	if err := json.Unmarshal(body, &latest); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if latest.Result != "success" {
		return nil, fmt.Errorf("%w: %q", ErrUnsuccessfulQuery, latest.Result)
	}
	if len(latest.ConversionRates) == 0 {
		return nil, fmt.Errorf("%w: empty rate table", ErrUnsuccessfulQuery)
	}

	return latest.ConversionRates, nil
}
