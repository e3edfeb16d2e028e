// Package moenv provides a client for the Ministry of Environment open data
// AQI feed (dataset aqx_p_432).
package moenv

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/breezyday/breezyday/internal/airquality"
	"github.com/breezyday/breezyday/internal/metrics"
	"github.com/breezyday/breezyday/internal/provider/resilience"
)

const (
	// DefaultBaseURL is the aqx_p_432 dataset endpoint.
	DefaultBaseURL = "https://data.moenv.gov.tw/api/v2/aqx_p_432"

	// ProviderName identifies this provider.
	ProviderName = "moenv"

	defaultLimit = 1000
)

// Errors returned by the client.
var (
	ErrUpstream = errors.New("moenv upstream error")
	ErrDecode   = errors.New("moenv response could not be decoded")
)

// ClientConfig holds configuration for the MOENV client.
type ClientConfig struct {
	// BaseURL is the dataset URL (defaults to DefaultBaseURL).
	BaseURL string

	// APIKey is the open data platform key. Required.
	APIKey string

	// HTTPClient is the HTTP client to use.
	// If nil, a default resilient client will be created.
	HTTPClient HTTPDoer

	// Registry receives health reports from the default client. Optional.
	Registry *resilience.Registry

	// Metrics and Logger are passed to the default client. Optional.
	Metrics *metrics.Metrics
	Logger  zerolog.Logger

	// Timeout for individual API requests (default: 8s).
	Timeout time.Duration

	// Limit is the page size requested from the feed (default: 1000).
	Limit int
}

// HTTPDoer abstracts HTTP request execution.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is a MOENV AQI feed client.
type Client struct {
	baseURL    string
	apiKey     string
	limit      int
	httpClient HTTPDoer
}

// NewClient creates a new MOENV client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	limit := cfg.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 8 * time.Second
		}
		httpClient = resilience.NewClient(resilience.ClientConfig{
			Name:            ProviderName,
			Timeout:         timeout,
			MaxRetries:      2,
			InitialInterval: 200 * time.Millisecond,
			MaxInterval:     2 * time.Second,
			Registry:        cfg.Registry,
			Metrics:         cfg.Metrics,
			Logger:          cfg.Logger,
		})
	}

	return &Client{
		baseURL:    baseURL,
		apiKey:     cfg.APIKey,
		limit:      limit,
		httpClient: httpClient,
	}
}

type recordsEnvelope struct {
	Records []Record `json:"records"`
}

// FetchRecords retrieves the raw feed rows.
func (c *Client) FetchRecords(ctx context.Context) ([]Record, error) {
	if c.apiKey == "" {
		return nil, airquality.ErrMissingAPIKey
	}

	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	q := u.Query()
	q.Set("api_key", c.apiKey)
	q.Set("format", "json")
	q.Set("limit", strconv.Itoa(c.limit))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, resilience.RedactURL(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %d", ErrUpstream, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", ErrUpstream, err)
	}

	return decodeRecords(body)
}

// FetchCatalog retrieves and normalizes the feed.
func (c *Client) FetchCatalog(ctx context.Context) (*airquality.Catalog, error) {
	records, err := c.FetchRecords(ctx)
	if err != nil {
		return nil, err
	}

	return &airquality.Catalog{
		Stations:  NormalizeAll(records),
		FetchedAt: time.Now(),
		Provider:  ProviderName,
	}, nil
}

// decodeRecords accepts both a bare array of rows and an object carrying
// a "records" array.
func decodeRecords(body []byte) ([]Record, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty body", ErrDecode)
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()

	switch trimmed[0] {
	case '[':
		var records []Record
		if err := dec.Decode(&records); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDecode, err)
		}
		return records, nil
	case '{':
		var env recordsEnvelope
		if err := dec.Decode(&env); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDecode, err)
		}
		return env.Records, nil
	default:
		return nil, fmt.Errorf("%w: unexpected payload", ErrDecode)
	}
}
