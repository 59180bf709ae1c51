package httptransport

import (
	"log/slog"
	"net/http"
	"net/netip"
	"time"

	"github.com/go-chi/chi/v5"

	"bloodbank/pkg/platform/httputil"
	"bloodbank/pkg/platform/middleware/auth"
	"bloodbank/pkg/platform/middleware/metadata"
	"bloodbank/pkg/platform/middleware/request"
	"bloodbank/pkg/platform/middleware/requesttime"
)

// RouteRegistrar mounts a module's routes.
type RouteRegistrar interface {
	Register(r chi.Router)
}

// AuthRoutes mounts the public and authenticated account routes.
type AuthRoutes interface {
	RouteRegistrar
	RegisterAuthenticated(r chi.Router)
}

// Config wires every module into the router.
type Config struct {
	Logger         *slog.Logger
	Version        string
	RequestTimeout time.Duration
	MaxBodyBytes   int64
	TrustedProxies []netip.Prefix
	Clock          requesttime.Clock

	Auth    AuthRoutes
	Donors  RouteRegistrar
	Health  RouteRegistrar
	Metrics http.Handler

	RequestMetrics *request.Metrics
	Tokens         auth.JWTValidator
	Revocations    auth.TokenRevocationChecker
	Accounts       auth.AccountChecker

	// AuthRateLimit wraps the public auth routes when set.
	AuthRateLimit func(http.Handler) http.Handler
}

// APIIndexResponse lists the top level endpoint groups.
type APIIndexResponse struct {
	Message   string            `json:"message"`
	Version   string            `json:"version"`
	Endpoints map[string]string `json:"endpoints"`
}

// NewRouter wires all public endpoints with middleware.
func NewRouter(cfg Config) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	r := chi.NewRouter()

	r.Use(request.Recovery(logger))
	r.Use(request.RequestID)
	r.Use(metadata.NewMiddleware(&metadata.Config{TrustedProxies: cfg.TrustedProxies}).Handler)
	r.Use(requesttime.Middleware(cfg.Clock))
	r.Use(request.Logger(logger))
	r.Use(request.Timeout(timeout))
	if cfg.MaxBodyBytes > 0 {
		r.Use(request.BodyLimit(cfg.MaxBodyBytes))
	}
	r.Use(request.ContentTypeJSON)
	if cfg.RequestMetrics != nil {
		r.Use(request.LatencyMiddleware(cfg.RequestMetrics))
	}

	if cfg.Health != nil {
		cfg.Health.Register(r)
	}
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics)
	}
	r.Get("/api", apiIndex(cfg.Version))

	if cfg.Auth != nil {
		r.Group(func(r chi.Router) {
			if cfg.AuthRateLimit != nil {
				r.Use(cfg.AuthRateLimit)
			}
			cfg.Auth.Register(r)
		})
	}

	r.Group(func(r chi.Router) {
		var authOpts []auth.Option
		if cfg.Accounts != nil {
			authOpts = append(authOpts, auth.WithAccountChecker(cfg.Accounts))
		}
		r.Use(auth.RequireAuth(cfg.Tokens, cfg.Revocations, logger, authOpts...))
		if cfg.Auth != nil {
			cfg.Auth.RegisterAuthenticated(r)
		}
		if cfg.Donors != nil {
			cfg.Donors.Register(r)
		}
	})

	return r
}

func apiIndex(version string) http.HandlerFunc {
	if version == "" {
		version = "dev"
	}
	body := APIIndexResponse{
		Message: "Blood Donor Registry API",
		Version: version,
		Endpoints: map[string]string{
			"auth":   "/auth",
			"donors": "/api/donors",
			"health": "/health",
		},
	}
	return func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, body)
	}
}
