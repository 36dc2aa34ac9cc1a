package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/lejapetric/simon/config"
	"github.com/lejapetric/simon/database"
	"github.com/lejapetric/simon/errs"
	"github.com/lejapetric/simon/services"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

type Server struct {
	*http.Server
	startupTime time.Time
}

func NewServer(cfg *config.Config, db *database.Database, notifier services.Notifier) (Server, error) {
	startupTime := time.Now()

	router, err := newRouter(cfg, db, notifier, startupTime)
	if err != nil {
		return Server{}, err
	}

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,  // Timeout for reading the entire request
		WriteTimeout: cfg.WriteTimeout, // Timeout for writing the response
		IdleTimeout:  cfg.IdleTimeout,  // Timeout for idle connections
	}

	return Server{server, startupTime}, nil
}

func newRouter(cfg *config.Config, db *database.Database, notifier services.Notifier, startupTime time.Time) (*chi.Mux, error) {
	chiRouter := chi.NewRouter()
	chiRouter.Use(middleware.RequestID)
	chiRouter.Use(TrustedRealIP(cfg.TrustedProxies))
	chiRouter.Use(LogInternalServerErrors)
	chiRouter.Use(HTTPLoggingMiddleware(log.Logger))
	if cfg.MetricsEnabled {
		chiRouter.Use(PrometheusMiddleware)
	}
	chiRouter.Use(NewSecure(SecureOptions(cfg.IsDev())))

	// Apply CORS middleware
	chiRouter.Use(CORSCheckMiddleware(cfg.AcceptedOrigins))
	chiRouter.Use(corsMiddleware(cfg.AcceptedOrigins))

	contactLimiter, err := newIPRateLimiter(cfg.ContactRateLimit, db.Redis())
	if err != nil {
		return nil, fmt.Errorf("contact rate limit %q: %w", cfg.ContactRateLimit, err)
	}

	handlers := initializeHandlers(db, notifier, startupTime)
	authMiddleware := newAuthMiddleware(cfg.AdminJWTSecret)
	if !authMiddleware.enabled() {
		log.Warn().Msg("ADMIN_JWT_SECRET not set, project writes are not authenticated")
	}

	setupRoutes(chiRouter, handlers, authMiddleware, contactLimiter)

	if cfg.MetricsEnabled {
		chiRouter.Handle("/metrics", promhttp.Handler())
	}

	responder := NewResponder(log.Logger)
	chiRouter.NotFound(func(w http.ResponseWriter, r *http.Request) {
		responder.WriteError(w, errs.NewNotFoundError("route not found"))
	})
	chiRouter.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		responder.WriteError(w, errs.NewApiErr(http.StatusMethodNotAllowed, "method not allowed"))
	})

	return chiRouter, nil
}

func (s Server) Start(errChannel chan<- error) {
	log.Info().Msgf("Server started on: %s", s.Addr)
	errChannel <- s.ListenAndServe()
}

func (s Server) ShutdownGracefully(timeout time.Duration) {
	log.Info().Msg("Gracefully shutting down...")

	gracefullCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.Shutdown(gracefullCtx); err != nil {
		log.Error().Msgf("Error shutting down the server: %v", err)
	} else {
		log.Info().Msg("HttpServer gracefully shut down")
	}
}
