package router

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/transport/http/middleware"
)

type HealthHandler interface {
	Healthz(w http.ResponseWriter, r *http.Request)
}

type AuthorizeHandler interface {
	AskCode(w http.ResponseWriter, r *http.Request)
	Register(w http.ResponseWriter, r *http.Request)
	ResetConfirm(w http.ResponseWriter, r *http.Request)
	ResetPassword(w http.ResponseWriter, r *http.Request)
}

type Deps struct {
	Health    HealthHandler
	Authorize AuthorizeHandler

	RequestIDMW func(http.Handler) http.Handler

	// Optional. nil disables tracing.
	TracingMW func(http.Handler) http.Handler

	// Zero means middleware.DefaultMaxBodyBytes.
	MaxBodyBytes int64

	// Optional. nil means promhttp.Handler().
	MetricsHandler http.Handler
}

func New(deps Deps) (http.Handler, error) {
	if deps.Health == nil {
		return nil, fmt.Errorf("nil Health handler")
	}
	if deps.Authorize == nil {
		return nil, fmt.Errorf("nil Authorize handler")
	}
	if deps.RequestIDMW == nil {
		return nil, fmt.Errorf("nil RequestID middleware")
	}

	maxBody := deps.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = middleware.DefaultMaxBodyBytes
	}
	metricsHandler := deps.MetricsHandler
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}

	r := chi.NewRouter()
	r.Use(deps.RequestIDMW)
	r.Use(chimw.Recoverer)
	if deps.TracingMW != nil {
		r.Use(deps.TracingMW)
	}
	r.Use(middleware.Metrics)

	r.Get("/healthz", deps.Health.Healthz)
	r.Method(http.MethodGet, "/metrics", metricsHandler)

	r.Route("/api/auth", func(r chi.Router) {
		r.Use(middleware.BodyLimit(maxBody))

		r.Get("/ask-code", deps.Authorize.AskCode) // ?email=&type=register|reset
		r.Post("/register", deps.Authorize.Register)
		r.Post("/reset-confirm", deps.Authorize.ResetConfirm)
		r.Post("/reset-password", deps.Authorize.ResetPassword)
	})

	return r, nil
}
