package routes

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/BradenHooton/sentinel/internal/auth"
	"github.com/BradenHooton/sentinel/internal/config"
	"github.com/BradenHooton/sentinel/internal/database"
	"github.com/BradenHooton/sentinel/internal/handlers"
	"github.com/BradenHooton/sentinel/internal/middleware"
	pkghttp "github.com/BradenHooton/sentinel/pkg/http"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// NewRouter assembles the HTTP surface.
func NewRouter(
	cfg *config.Config,
	db *database.DB,
	authHandler *handlers.AuthHandler,
	securityHandler *handlers.SecurityHandler,
	tokenValidator auth.TokenValidator,
	logger *slog.Logger,
) http.Handler {
	ipConfig := &pkghttp.IPConfig{TrustedProxies: cfg.Server.TrustedProxies}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(30 * time.Second))
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.CORS(middleware.CORSConfig{AllowedOrigins: cfg.Server.AllowedOrigins}))
	r.Use(middleware.RequestLogger(logger, ipConfig))

	r.Get("/health", healthHandler(db))

	// Credential submission carries its own in-pipeline failure limits;
	// the transport throttle only blunts raw flooding.
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequestThrottle(30, time.Minute, ipConfig))
		r.Post("/login", authHandler.Login)
	})

	// Confirmation links arrive from email clients, unauthenticated.
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequestThrottle(10, time.Minute, ipConfig))
		r.Get("/security/confirm", securityHandler.Confirm)
		r.Get("/security/deny", securityHandler.Deny)
	})

	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(tokenValidator))
		r.Get("/security/dashboard", securityHandler.Dashboard)
	})

	return r
}

func healthHandler(db *database.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.HealthCheck(r.Context()); err != nil {
			pkghttp.WriteError(w, http.StatusServiceUnavailable, "unhealthy", "database unreachable")
			return
		}
		pkghttp.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
