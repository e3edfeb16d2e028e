// Package config loads service configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/breezyday/breezyday/internal/database"
)

// DevSigningKey is used outside production when JWT_SIGNING_KEY is unset.
const DevSigningKey = "breezyday-dev-signing-key"

// ErrMissingSigningKey is returned in production without JWT_SIGNING_KEY.
var ErrMissingSigningKey = errors.New("JWT_SIGNING_KEY is required in production")

// Config holds the API server configuration.
type Config struct {
	Port        string `envconfig:"PORT" default:"8080"`
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	JWTSigningKey string        `envconfig:"JWT_SIGNING_KEY"`
	JWTAccessTTL  time.Duration `envconfig:"JWT_ACCESS_TTL" default:"168h"`
	JWTIssuer     string        `envconfig:"JWT_ISSUER" default:"breezyday"`
	JWTAudience   string        `envconfig:"JWT_AUDIENCE" default:"breezyday-app"`

	AQIAPIURL   string        `envconfig:"AQI_API_URL" default:"https://data.moenv.gov.tw/api/v2/aqx_p_432"`
	AQIAPIKey   string        `envconfig:"AQI_API_KEY"`
	AQICacheTTL time.Duration `envconfig:"AQI_CACHE_TTL" default:"5m"`
	AQIStaleTTL time.Duration `envconfig:"AQI_STALE_TTL" default:"30m"`

	CWAAPIURL        string        `envconfig:"CWA_API_URL" default:"https://opendata.cwa.gov.tw/api/v1/rest/datastore"`
	CWAAPIKey        string        `envconfig:"CWA_API_KEY"`
	CWACountyDataset string        `envconfig:"CWA_COUNTY_DATASET" default:"F-C0032-001"`
	CWATownDataset   string        `envconfig:"CWA_TOWN_DATASET" default:"F-D0047-093"`
	WeatherCacheTTL  time.Duration `envconfig:"WEATHER_CACHE_TTL" default:"10m"`
	WeatherStaleTTL  time.Duration `envconfig:"WEATHER_STALE_TTL" default:"1h"`
	DefaultCounty    string        `envconfig:"DEFAULT_COUNTY" default:"臺北市"`

	GeminiAPIURL string `envconfig:"GEMINI_API_URL" default:"https://generativelanguage.googleapis.com/v1"`
	GeminiModel  string `envconfig:"GEMINI_MODEL" default:"gemini-2.0-flash"`
	GeminiAPIKey string `envconfig:"GEMINI_API_KEY"`

	OTelEnabled  bool    `envconfig:"OTEL_ENABLED" default:"false"`
	OTLPEndpoint string  `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT" default:"localhost:4317"`
	OTelSampling float64 `envconfig:"OTEL_TRACES_SAMPLER_RATIO" default:"1"`

	PubSubProjectID    string        `envconfig:"PUBSUB_PROJECT_ID"`
	PubSubSubscription string        `envconfig:"PUBSUB_SUBSCRIPTION" default:"breezyday-refresh"`
	RefreshInterval    time.Duration `envconfig:"REFRESH_INTERVAL" default:"10m"`

	RequireTLS         bool     `envconfig:"REQUIRE_TLS" default:"false"`
	CORSAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:5173,http://localhost:3000"`

	Database database.Config `ignored:"true"`
}

// IsProduction reports whether the service runs in production.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Load reads optional dotenv files, then the environment. Missing dotenv
// files are ignored; with no arguments ".env" is tried.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load dotenv: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	db, err := database.ConfigFromEnv()
	if err != nil {
		return nil, err
	}
	cfg.Database = db

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate applies cross-field rules and development defaults.
func (c *Config) Validate() error {
	if c.JWTSigningKey == "" {
		if c.IsProduction() {
			return ErrMissingSigningKey
		}
		c.JWTSigningKey = DevSigningKey
	}
	if c.JWTAccessTTL <= 0 {
		return fmt.Errorf("JWT_ACCESS_TTL must be positive, got %s", c.JWTAccessTTL)
	}
	if c.RefreshInterval < 0 {
		return fmt.Errorf("REFRESH_INTERVAL must not be negative, got %s", c.RefreshInterval)
	}
	return nil
}
