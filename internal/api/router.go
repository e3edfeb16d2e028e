// Package api provides the HTTP API for BreezyDay.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/breezyday/breezyday/internal/airquality"
	"github.com/breezyday/breezyday/internal/api/handler"
	"github.com/breezyday/breezyday/internal/api/middleware"
	"github.com/breezyday/breezyday/internal/assistant"
	"github.com/breezyday/breezyday/internal/auth"
	"github.com/breezyday/breezyday/internal/feedback"
	"github.com/breezyday/breezyday/internal/telemetry"
	"github.com/breezyday/breezyday/internal/user"
	"github.com/breezyday/breezyday/internal/weather"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Logger      zerolog.Logger
	ServiceName string
	Metrics     *middleware.Metrics

	// Gatherer is served at /metrics when set.
	Gatherer prometheus.Gatherer

	Ops            handler.OpsConfig
	AllowedOrigins []string
	RequireTLS     bool

	AuthService       *auth.Service
	AirQualityService *airquality.Service
	WeatherService    *weather.Service
	UserService       *user.Service
	FeedbackService   *feedback.Service
	AssistantService  *assistant.Service
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = telemetry.ServiceName
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)
	r.Use(middleware.Tracing(serviceName))
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware())
	}
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.RequireTLS(cfg.RequireTLS))
	r.Use(middleware.ContentTypeJSON)

	opsHandler := handler.NewOpsHandler(cfg.Ops)
	authHandler := handler.NewAuthHandler(cfg.AuthService, cfg.Logger)
	aqiHandler := handler.NewAQIHandler(cfg.AirQualityService)
	weatherHandler := handler.NewWeatherHandler(cfg.WeatherService)
	dashboardHandler := handler.NewDashboardHandler(cfg.AirQualityService, cfg.WeatherService, cfg.Logger)
	profileHandler := handler.NewProfileHandler(cfg.UserService)
	feedbackHandler := handler.NewFeedbackHandler(cfg.FeedbackService)
	assistantHandler := handler.NewAssistantHandler(cfg.AssistantService, cfg.Logger)

	authMiddleware := middleware.Auth(cfg.AuthService)
	userRateLimit := middleware.RateLimitByUser(middleware.StandardRateLimit)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/health", opsHandler.HealthCheck)
		r.Get("/ready", opsHandler.ReadinessCheck)
		r.Get("/status", opsHandler.SystemStatus)
	})

	if cfg.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Use(middleware.RateLimitByIP(middleware.AuthRateLimit))
			r.With(middleware.RequireJSON).Post("/register", authHandler.Register)
			r.With(middleware.RequireJSON).Post("/login", authHandler.Login)
			r.With(middleware.RequireJSON).Post("/refresh", authHandler.RefreshToken)
			r.With(authMiddleware).Post("/logout", authHandler.Logout)
			r.With(authMiddleware).Get("/me", authHandler.Me)
		})

		// Public read endpoints
		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimitByIP(middleware.StandardRateLimit))

			r.Route("/aqi", func(r chi.Router) {
				r.Get("/", aqiHandler.Catalog)
				r.Get("/stations", aqiHandler.Stations)
				r.Get("/nearest", aqiHandler.Nearest)
				r.Get("/classify", aqiHandler.Classify)
			})

			r.Route("/weather", func(r chi.Router) {
				r.Get("/today-range", weatherHandler.TodayRange)
				r.Get("/nearest", weatherHandler.Nearest)
			})

			r.Get("/locate", dashboardHandler.Locate)
			r.Get("/dashboard", dashboardHandler.Dashboard)
		})

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(userRateLimit)

			r.Get("/profile", profileHandler.GetProfile)
			r.With(middleware.RequireJSON).Put("/profile", profileHandler.UpdateProfile)

			r.Route("/feedback", func(r chi.Router) {
				r.Get("/", feedbackHandler.List)
				r.With(middleware.RequireJSON).Post("/", feedbackHandler.Submit)
				r.Get("/summary", feedbackHandler.Summary)
			})
		})

		r.Route("/ai", func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(middleware.RateLimitByUser(middleware.AIRateLimit))
			r.Post("/allergy-tips", assistantHandler.AllergyTips)
		})
	})

	return r
}
