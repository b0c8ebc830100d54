package http

import (
	"context"
	"log/slog"
	"net/http"

	"eventhub/internal/delivery/http/controllers"
	"eventhub/internal/delivery/http/helpers"
	"eventhub/internal/delivery/http/middleware"
	"eventhub/internal/domain"

	httpSwagger "github.com/swaggo/http-swagger"
)

// HealthCheck reports whether a backing dependency is reachable.
type HealthCheck func(ctx context.Context) error

// RouterDeps carries the controllers and collaborators the router mounts.
type RouterDeps struct {
	Logger        *slog.Logger
	Verifier      domain.TokenVerifier
	Events        *controllers.EventController
	Registrations *controllers.RegistrationController
	Auth          *controllers.AuthController
	// Metrics serves the Prometheus exposition; nil leaves /metrics unmounted.
	Metrics http.Handler
	// Health is optional; nil always reports healthy.
	Health HealthCheck
}

// NewRouter initializes the HTTP router with all application routes
func NewRouter(deps RouterDeps) *http.ServeMux {
	mux := http.NewServeMux()
	requireAuth := middleware.RequireAuth(deps.Verifier, deps.Logger)
	optionalAuth := middleware.OptionalAuth(deps.Verifier, deps.Logger)

	// Events
	mux.HandleFunc("POST /events", requireAuth(deps.Events.CreateEvent))
	mux.HandleFunc("GET /events", optionalAuth(deps.Events.ListEvents))
	mux.HandleFunc("GET /events/{eventID}", optionalAuth(deps.Events.GetEvent))
	mux.HandleFunc("PATCH /events/{eventID}", requireAuth(deps.Events.UpdateEvent))
	mux.HandleFunc("DELETE /events/{eventID}", requireAuth(deps.Events.DeleteEvent))

	// Registrations
	mux.HandleFunc("POST /events/{eventID}/register", requireAuth(deps.Registrations.Register))
	mux.HandleFunc("DELETE /events/{eventID}/register", requireAuth(deps.Registrations.Unregister))
	mux.HandleFunc("GET /events/{eventID}/registrations", requireAuth(deps.Registrations.ListRegistrations))
	mux.HandleFunc("GET /registrations", requireAuth(deps.Registrations.ListMyRegistrations))

	// Auth
	mux.HandleFunc("POST /auth/signup", deps.Auth.SignUp)
	mux.HandleFunc("POST /auth/login", deps.Auth.Login)
	mux.HandleFunc("GET /users/me", requireAuth(deps.Auth.GetMe))

	// Ops
	mux.HandleFunc("GET /health", healthHandler(deps.Logger, deps.Health))
	if deps.Metrics != nil {
		mux.Handle("GET /metrics", deps.Metrics)
	}

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

// health godoc
// @Summary Health check
// @Tags ops
// @Produce json
// @Success 200 {object} helpers.APIResponse "data.status: ok"
// @Failure 503 {object} helpers.APIResponse "error.code: unavailable"
// @Router /health [get]
func healthHandler(logger *slog.Logger, check HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			if err := check(r.Context()); err != nil {
				logger.WarnContext(r.Context(), "health check failed", "err", err)
				helpers.WriteJSONError(w, http.StatusServiceUnavailable, helpers.ErrCodeUnavailable, "storage unavailable")
				return
			}
		}
		helpers.WriteJSONSuccess(w, http.StatusOK, HealthResponse{Status: "ok"})
	}
}
