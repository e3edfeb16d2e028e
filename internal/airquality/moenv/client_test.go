package moenv_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/breezyday/breezyday/internal/airquality"
	"github.com/breezyday/breezyday/internal/airquality/moenv"
)

func sampleRecords() []map[string]interface{} {
	return []map[string]interface{}{
		{
			"sitename":    "中山",
			"county":      "臺北市",
			"aqi":         "42",
			"pm2.5":       "9",
			"pm10":        "20",
			"status":      "良好",
			"publishtime": "2024/05/01 10:00:00",
			"latitude":    "25.062361",
			"longitude":   "121.526528",
			"siteid":      "12",
		},
		{
			"sitename":  "左營",
			"county":    "高雄市",
			"aqi":       "",
			"pm2.5":     "",
			"latitude":  "",
			"longitude": "120.292917",
		},
	}
}

func TestClient_FetchCatalog_ArrayPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.URL.Query().Get("api_key"))
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		assert.Equal(t, "1000", r.URL.Query().Get("limit"))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(sampleRecords())
	}))
	defer server.Close()

	client := moenv.NewClient(moenv.ClientConfig{
		BaseURL:    server.URL,
		APIKey:     "test-key",
		HTTPClient: http.DefaultClient,
	})

	catalog, err := client.FetchCatalog(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, catalog.Len())
	assert.Equal(t, moenv.ProviderName, catalog.Provider)

	first := catalog.Stations[0]
	assert.Equal(t, "中山", first.SiteName)
	assert.Equal(t, "臺北市", first.County)
	assert.Equal(t, "12", first.SiteID)
	require.NotNil(t, first.Coordinate)
	assert.InDelta(t, 25.062361, first.Coordinate.Lat, 1e-9)
	require.NotNil(t, first.PM25)
	assert.Equal(t, 9.0, *first.PM25)
	assert.Equal(t, airquality.CategoryGood, airquality.Classify(first.AQI).Category)

	second := catalog.Stations[1]
	assert.Nil(t, second.Coordinate)
	assert.Nil(t, second.PM25)
	assert.Equal(t, airquality.CategoryUnknown, airquality.Classify(second.AQI).Category)
}

func TestClient_FetchCatalog_EnvelopePayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"total":   "1",
			"records": []map[string]interface{}{{"SiteName": "板橋", "County": "新北市", "AQI": 61, "Latitude": 25.0129, "Longitude": 121.4581}},
		})
	}))
	defer server.Close()

	client := moenv.NewClient(moenv.ClientConfig{BaseURL: server.URL, APIKey: "k", HTTPClient: http.DefaultClient})

	catalog, err := client.FetchCatalog(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, catalog.Len())
	assert.Equal(t, "板橋", catalog.Stations[0].SiteName)
	assert.Equal(t, airquality.CategoryModerate, airquality.Classify(catalog.Stations[0].AQI).Category)
	require.NotNil(t, catalog.Stations[0].Coordinate)
}

func TestClient_MissingAPIKey(t *testing.T) {
	client := moenv.NewClient(moenv.ClientConfig{HTTPClient: http.DefaultClient})

	_, err := client.FetchRecords(context.Background())
	assert.ErrorIs(t, err, airquality.ErrMissingAPIKey)
}

func TestClient_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	client := moenv.NewClient(moenv.ClientConfig{BaseURL: server.URL, APIKey: "k", HTTPClient: http.DefaultClient})

	_, err := client.FetchCatalog(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, moenv.ErrUpstream)
	assert.Contains(t, err.Error(), "403")
}

func TestClient_DecodeError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html>maintenance</html>"))
	}))
	defer server.Close()

	client := moenv.NewClient(moenv.ClientConfig{BaseURL: server.URL, APIKey: "k", HTTPClient: http.DefaultClient})

	_, err := client.FetchCatalog(context.Background())
	assert.ErrorIs(t, err, moenv.ErrDecode)
}

func TestClient_TransportErrorHidesAPIKey(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	baseURL := server.URL + "/aqx"
	server.Close()

	tests := []struct {
		name   string
		client moenv.HTTPDoer
	}{
		{"resilient client", nil},
		{"plain client", http.DefaultClient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := moenv.NewClient(moenv.ClientConfig{
				BaseURL:    baseURL,
				APIKey:     "SECRET-KEY-123",
				HTTPClient: tt.client,
				Timeout:    time.Second,
			})

			_, err := client.FetchRecords(context.Background())
			require.Error(t, err)
			assert.ErrorIs(t, err, moenv.ErrUpstream)
			assert.NotContains(t, err.Error(), "SECRET-KEY-123")
			assert.Contains(t, err.Error(), "api_key=REDACTED")
		})
	}
}
