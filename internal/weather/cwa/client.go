// Package cwa provides a client for the Central Weather Administration open
// data forecast datasets.
package cwa

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/breezyday/breezyday/internal/metrics"
	"github.com/breezyday/breezyday/internal/provider/resilience"
	"github.com/breezyday/breezyday/internal/weather"
	"github.com/breezyday/breezyday/pkg/geo"
)

const (
	// DefaultBaseURL is the datastore root of the open data API.
	DefaultBaseURL = "https://opendata.cwa.gov.tw/api/v1/rest/datastore"

	// DefaultCountyDataset is the 36-hour county forecast.
	DefaultCountyDataset = "F-C0032-001"

	// DefaultTownDataset is the township forecast dataset.
	DefaultTownDataset = "F-D0047-093"

	// ProviderName identifies this provider.
	ProviderName = "cwa"
)

// Client errors. Both wrap the underlying cause.
var (
	ErrUpstream = errors.New("cwa upstream error")
	ErrDecode   = errors.New("cwa response could not be decoded")
)

// ClientConfig holds configuration for the CWA client.
type ClientConfig struct {
	// BaseURL is the datastore root (defaults to DefaultBaseURL).
	BaseURL string

	// APIKey is the CWA authorization key. Required.
	APIKey string

	// CountyDataset defaults to DefaultCountyDataset.
	CountyDataset string

	// TownDataset defaults to DefaultTownDataset.
	TownDataset string

	// TownLocationIDs restricts the township feed to these dataset IDs.
	TownLocationIDs []string

	// HTTPClient is the HTTP client to use.
	// If nil, a default resilient client will be created.
	HTTPClient HTTPDoer

	// Registry receives health reports from the default client. Optional.
	Registry *resilience.Registry

	// Metrics and Logger are passed to the default client. Optional.
	Metrics *metrics.Metrics
	Logger  zerolog.Logger

	// Timeout for individual API requests (default: 10s).
	Timeout time.Duration
}

// HTTPDoer abstracts HTTP request execution.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is a CWA API client.
type Client struct {
	baseURL         string
	apiKey          string
	countyDataset   string
	townDataset     string
	townLocationIDs []string
	httpClient      HTTPDoer
}

// NewClient creates a new CWA client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	countyDataset := cfg.CountyDataset
	if countyDataset == "" {
		countyDataset = DefaultCountyDataset
	}
	townDataset := cfg.TownDataset
	if townDataset == "" {
		townDataset = DefaultTownDataset
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 10 * time.Second
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
		baseURL:         strings.TrimSuffix(baseURL, "/"),
		apiKey:          cfg.APIKey,
		countyDataset:   countyDataset,
		townDataset:     townDataset,
		townLocationIDs: cfg.TownLocationIDs,
		httpClient:      httpClient,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// API response types for F-C0032-001.

type countyResponse struct {
	Records struct {
		Location []countyLocation `json:"location"`
	} `json:"records"`
}

type countyLocation struct {
	LocationName   string          `json:"locationName"`
	WeatherElement []countyElement `json:"weatherElement"`
}

type countyElement struct {
	ElementName string       `json:"elementName"`
	Time        []countyTime `json:"time"`
}

type countyTime struct {
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Parameter struct {
		ParameterName  string `json:"parameterName"`
		ParameterValue string `json:"parameterValue"`
		ParameterUnit  string `json:"parameterUnit"`
	} `json:"parameter"`
}

// GetCountyForecast retrieves the first forecast window for a county.
func (c *Client) GetCountyForecast(ctx context.Context, locationName string) (*weather.TodayRange, error) {
	var resp countyResponse
	if err := c.get(ctx, c.countyDataset, url.Values{"locationName": {locationName}}, &resp); err != nil {
		return nil, err
	}

	for _, loc := range resp.Records.Location {
		if loc.LocationName == locationName {
			return toTodayRange(loc), nil
		}
	}
	return nil, fmt.Errorf("%w: %s", weather.ErrLocationNotFound, locationName)
}

func toTodayRange(loc countyLocation) *weather.TodayRange {
	var (
		minT, maxT, pop *float64
		desc            string
		start, end      string
	)

	for _, el := range loc.WeatherElement {
		if len(el.Time) == 0 {
			continue
		}
		first := el.Time[0]
		if start == "" {
			start, end = first.StartTime, first.EndTime
		}
		switch el.ElementName {
		case "MinT":
			minT = parseFloat(first.Parameter.ParameterName)
		case "MaxT":
			maxT = parseFloat(first.Parameter.ParameterName)
		case "PoP":
			pop = parseFloat(first.Parameter.ParameterName)
		case "Wx":
			desc = first.Parameter.ParameterName
		}
	}

	return weather.NewTodayRange(loc.LocationName, minT, maxT, pop, desc, start, end)
}

// API response types for the F-D0047 township datasets.

type townResponse struct {
	Records struct {
		Locations []townGroup `json:"Locations"`
	} `json:"records"`
}

type townGroup struct {
	LocationsName string         `json:"LocationsName"`
	Location      []townLocation `json:"Location"`
}

type townLocation struct {
	LocationName   string        `json:"LocationName"`
	Latitude       string        `json:"Latitude"`
	Longitude      string        `json:"Longitude"`
	WeatherElement []townElement `json:"WeatherElement"`
}

type townElement struct {
	ElementName string     `json:"ElementName"`
	Time        []townTime `json:"Time"`
}

type townTime struct {
	StartTime    string              `json:"StartTime"`
	EndTime      string              `json:"EndTime"`
	DataTime     string              `json:"DataTime"`
	ElementValue []map[string]string `json:"ElementValue"`
}

// GetTownshipForecast retrieves every township forecast point, flattened
// across counties.
func (c *Client) GetTownshipForecast(ctx context.Context) ([]weather.ForecastPoint, error) {
	params := url.Values{}
	if len(c.townLocationIDs) > 0 {
		params.Set("locationId", strings.Join(c.townLocationIDs, ","))
	}

	var resp townResponse
	if err := c.get(ctx, c.townDataset, params, &resp); err != nil {
		return nil, err
	}

	var points []weather.ForecastPoint
	for _, group := range resp.Records.Locations {
		for _, loc := range group.Location {
			points = append(points, toForecastPoint(group.LocationsName, loc))
		}
	}
	return points, nil
}

func toForecastPoint(county string, loc townLocation) weather.ForecastPoint {
	p := weather.ForecastPoint{
		County: county,
		Town:   loc.LocationName,
	}

	lat, lon := parseFloat(loc.Latitude), parseFloat(loc.Longitude)
	if lat != nil && lon != nil {
		p.Coordinate = &geo.Coordinate{Lat: *lat, Lon: *lon}
	}

	temp := findElement(loc.WeatherElement, "溫度", "T")
	wx := findElement(loc.WeatherElement, "天氣現象", "天氣預報綜合描述", "Wx")

	n := 0
	if temp != nil {
		n = len(temp.Time)
	}
	if wx != nil && len(wx.Time) > n {
		n = len(wx.Time)
	}

	p.Rows = make([]weather.ForecastRow, 0, n)
	for i := 0; i < n; i++ {
		var tt, wt townTime
		if temp != nil && i < len(temp.Time) {
			tt = temp.Time[i]
		}
		if wx != nil && i < len(wx.Time) {
			wt = wx.Time[i]
		}

		row := weather.ForecastRow{
			Start:   firstNonEmpty(tt.StartTime, tt.DataTime, wt.StartTime, wt.DataTime),
			End:     firstNonEmpty(tt.EndTime, wt.EndTime),
			Temp:    parseFloat(elementValue(tt, "Temperature", "value")),
			Weather: elementValue(wt, "Weather", "Wx", "value"),
		}
		if row.Weather == "" {
			row.Weather = "-"
		}
		p.Rows = append(p.Rows, row)
	}

	return p
}

// findElement returns the first element matching a name in order of
// preference, falling back to a name containing the first preference.
func findElement(elements []townElement, names ...string) *townElement {
	for _, name := range names {
		for i := range elements {
			if elements[i].ElementName == name {
				return &elements[i]
			}
		}
	}
	for i := range elements {
		if strings.Contains(elements[i].ElementName, names[0]) {
			return &elements[i]
		}
	}
	return nil
}

// elementValue reads the first ElementValue entry by key, falling back to
// any value when none of the keys is present.
func elementValue(t townTime, keys ...string) string {
	if len(t.ElementValue) == 0 {
		return ""
	}
	v := t.ElementValue[0]
	for _, k := range keys {
		if s, ok := v[k]; ok {
			return s
		}
	}
	for _, s := range v {
		return s
	}
	return ""
}

func (c *Client) get(ctx context.Context, dataset string, params url.Values, out any) error {
	if c.apiKey == "" {
		return weather.ErrMissingAPIKey
	}

	params.Set("Authorization", c.apiKey)
	params.Set("format", "JSON")
	reqURL := fmt.Sprintf("%s/%s?%s", c.baseURL, dataset, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUpstream, resilience.RedactURL(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: unexpected status %d from %s", ErrUpstream, resp.StatusCode, dataset)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrDecode, dataset, err)
	}
	return nil
}

func parseFloat(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
