package rest

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/24K-5541-Ayan-Ahmed/SahulatFinance/internal/application/usecase"
	"github.com/24K-5541-Ayan-Ahmed/SahulatFinance/pkg/auth"
)

// RouterConfig assembles the HTTP surface.
type RouterConfig struct {
	Engine  *usecase.Engine
	Health  *HealthHandler
	Metrics http.Handler // served on /metrics when set
	// JWT enables bearer auth on /api when set; writes then need a write role.
	JWT          *auth.JWTService
	RateLimitRPS float64
	Logger       *slog.Logger
}

// NewRouter builds the router. Health checks and /metrics bypass auth and rate
// limiting.
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()
	r.Use(LoggingMiddleware(cfg.Logger))

	if cfg.Health != nil {
		cfg.Health.RegisterRoutes(r)
	}
	if cfg.Metrics != nil {
		r.Handle("/metrics", cfg.Metrics).Methods(http.MethodGet)
	}

	api := r.PathPrefix("/api").Subrouter()
	if cfg.RateLimitRPS > 0 {
		api.Use(RateLimitMiddleware(NewRateLimiter(cfg.RateLimitRPS)))
	}

	var write func(http.Handler) http.Handler
	if cfg.JWT != nil {
		api.Use(AuthMiddleware(cfg.JWT))
		write = RequireRole(auth.WriteRoles...)
	}
	NewHandler(cfg.Engine, cfg.Logger, write).RegisterRoutes(api)

	return r
}
