// Package main provides the entrypoint for the BreezyDay API server.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	"github.com/breezyday/breezyday/internal/airquality"
	"github.com/breezyday/breezyday/internal/airquality/moenv"
	"github.com/breezyday/breezyday/internal/api"
	"github.com/breezyday/breezyday/internal/api/handler"
	"github.com/breezyday/breezyday/internal/api/middleware"
	"github.com/breezyday/breezyday/internal/assistant"
	"github.com/breezyday/breezyday/internal/assistant/gemini"
	"github.com/breezyday/breezyday/internal/auth"
	"github.com/breezyday/breezyday/internal/config"
	"github.com/breezyday/breezyday/internal/database"
	"github.com/breezyday/breezyday/internal/feedback"
	"github.com/breezyday/breezyday/internal/metrics"
	"github.com/breezyday/breezyday/internal/provider/resilience"
	"github.com/breezyday/breezyday/internal/telemetry"
	"github.com/breezyday/breezyday/internal/user"
	"github.com/breezyday/breezyday/internal/weather"
	"github.com/breezyday/breezyday/internal/weather/cwa"
	"github.com/breezyday/breezyday/internal/worker"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

type repositories struct {
	users    auth.UserRepository
	tokens   auth.RefreshTokenRepository
	profiles user.Repository
	feedback feedback.Repository
}

func main() {
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", telemetry.ServiceName).
		Str("version", Version).
		Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		log = log.Level(level)
	} else {
		log.Warn().Str("log_level", cfg.LogLevel).Msg("unknown log level, using info")
		log = log.Level(zerolog.InfoLevel)
	}

	log.Info().
		Str("build_time", BuildTime).
		Str("environment", cfg.Environment).
		Msg("starting BreezyDay API")

	ctx := context.Background()

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    telemetry.ServiceName,
		ServiceVersion: Version,
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		Enabled:        cfg.OTelEnabled,
		SampleRatio:    cfg.OTelSampling,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()
	if cfg.OTelEnabled {
		log.Info().Str("otlp_endpoint", cfg.OTLPEndpoint).Msg("OpenTelemetry initialized")
	}

	httpMetrics, err := middleware.NewMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize http metrics")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.New(reg)

	// Storage: PostgreSQL when DB_HOST is set, otherwise in memory.
	var (
		repos repositories
		db    handler.Pinger
	)
	if cfg.Database.Enabled() {
		pool, err := database.Connect(ctx, cfg.Database)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer pool.Close()

		if err := database.Migrate(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("failed to apply schema")
		}

		repos = repositories{
			users:    auth.NewPostgresUserRepository(pool),
			tokens:   auth.NewPostgresRefreshTokenRepository(pool),
			profiles: user.NewPostgresRepository(pool),
			feedback: feedback.NewPostgresRepository(pool),
		}
		db = pool
		log.Info().
			Str("host", cfg.Database.Host).
			Int("port", cfg.Database.Port).
			Str("database", cfg.Database.Database).
			Msg("database connected")
	} else {
		repos = repositories{
			users:    auth.NewInMemoryUserRepository(),
			tokens:   auth.NewInMemoryRefreshTokenRepository(),
			profiles: user.NewInMemoryRepository(),
			feedback: feedback.NewInMemoryRepository(),
		}
		log.Warn().Msg("DB_HOST not set - using in-memory storage, data is lost on restart")
	}

	authService := auth.NewService(auth.ServiceConfig{
		JWTService: auth.NewJWTService(auth.JWTConfig{
			SigningKey: cfg.JWTSigningKey,
			Issuer:     cfg.JWTIssuer,
			Audience:   cfg.JWTAudience,
			AccessTTL:  cfg.JWTAccessTTL,
		}),
		UserRepo:    repos.users,
		RefreshRepo: repos.tokens,
		Logger:      log,
	})
	if cfg.JWTSigningKey == config.DevSigningKey {
		log.Warn().Msg("using default JWT signing key - not secure for production")
	}

	userService := user.NewService(user.ServiceConfig{
		Repository: repos.profiles,
		Accounts:   authService,
		Logger:     log,
	})
	feedbackService := feedback.NewService(feedback.ServiceConfig{
		Repository: repos.feedback,
		Logger:     log,
	})

	// Upstream providers share one health registry.
	registry := resilience.NewRegistry()

	if cfg.AQIAPIKey == "" {
		log.Warn().Msg("AQI_API_KEY not set - air quality endpoints will return 503")
	}
	aqService := airquality.NewService(airquality.ServiceConfig{
		Provider: moenv.NewClient(moenv.ClientConfig{
			BaseURL:  cfg.AQIAPIURL,
			APIKey:   cfg.AQIAPIKey,
			Registry: registry,
			Metrics:  appMetrics,
			Logger:   log,
		}),
		Logger:          log,
		Metrics:         appMetrics,
		CacheTTL:        cfg.AQICacheTTL,
		StaleIfErrorTTL: cfg.AQIStaleTTL,
	})

	if cfg.CWAAPIKey == "" {
		log.Warn().Msg("CWA_API_KEY not set - weather endpoints will return 503")
	}
	weatherService := weather.NewService(weather.ServiceConfig{
		Provider: cwa.NewClient(cwa.ClientConfig{
			BaseURL:       cfg.CWAAPIURL,
			APIKey:        cfg.CWAAPIKey,
			CountyDataset: cfg.CWACountyDataset,
			TownDataset:   cfg.CWATownDataset,
			Registry:      registry,
			Metrics:       appMetrics,
			Logger:        log,
		}),
		Logger:          log,
		Metrics:         appMetrics,
		CacheTTL:        cfg.WeatherCacheTTL,
		StaleIfErrorTTL: cfg.WeatherStaleTTL,
		DefaultCounty:   cfg.DefaultCounty,
	})

	assistantService := assistant.NewService(assistant.ServiceConfig{
		Generator: gemini.NewClient(gemini.ClientConfig{
			BaseURL:  cfg.GeminiAPIURL,
			Model:    cfg.GeminiModel,
			Registry: registry,
			Metrics:  appMetrics,
			Logger:   log,
		}),
		History: feedbackService,
		Logger:  log,
		APIKey:  cfg.GeminiAPIKey,
	})

	// Background cache refresh: a ticker, plus Pub/Sub triggers when configured.
	refreshJob := worker.NewRefreshJob(worker.RefreshJobConfig{
		Config: worker.RefreshConfig{
			Timeout:  30 * time.Second,
			Interval: cfg.RefreshInterval,
		},
		Logger:     log,
		Metrics:    appMetrics,
		AirQuality: aqService,
		Weather:    weatherService,
	})

	workerCtx, stopWorkers := context.WithCancel(ctx)
	defer stopWorkers()
	go refreshJob.Schedule(workerCtx)

	if cfg.PubSubProjectID != "" {
		pubsubHandler, err := worker.NewPubSubHandler(workerCtx, worker.PubSubConfig{
			ProjectID:        cfg.PubSubProjectID,
			SubscriptionName: cfg.PubSubSubscription,
			RefreshJob:       refreshJob,
			Logger:           log,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create pub/sub handler")
		}
		defer func() {
			if err := pubsubHandler.Close(); err != nil {
				log.Error().Err(err).Msg("failed to close pub/sub client")
			}
		}()
		go func() {
			if err := pubsubHandler.Start(workerCtx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Msg("pub/sub receiver stopped")
			}
		}()
	}

	router := api.NewRouter(api.RouterConfig{
		Logger:      log,
		ServiceName: telemetry.ServiceName,
		Metrics:     httpMetrics,
		Gatherer:    reg,
		Ops: handler.OpsConfig{
			Version:    Version,
			BuildTime:  BuildTime,
			Database:   db,
			Registry:   registry,
			AirQuality: aqService,
			Weather:    weatherService,
			Refresh:    refreshJob,
		},
		AllowedOrigins:    cfg.CORSAllowedOrigins,
		RequireTLS:        cfg.RequireTLS,
		AuthService:       authService,
		AirQualityService: aqService,
		WeatherService:    weatherService,
		UserService:       userService,
		FeedbackService:   feedbackService,
		AssistantService:  assistantService,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("server listening")

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	stopWorkers()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}
