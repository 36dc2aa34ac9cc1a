package api

import (
	"context"
	"net/http"
	"time"

	"github.com/lejapetric/simon/database"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const healthCheckTimeout = 3 * time.Second

type healthHandler struct {
	responder   Responder
	logger      zerolog.Logger
	database    *database.Database
	startupTime time.Time
}

func newHealthHandler(db *database.Database, startupTime time.Time) healthHandler {
	logger := log.With().Str("handlerName", "healthHandler").Logger()

	return healthHandler{
		responder:   NewResponder(logger),
		logger:      logger,
		database:    db,
		startupTime: startupTime,
	}
}

// getHealth reports process and dependency state. It answers 200 while the
// process serves, whatever the dependencies report.
// @Summary Health check
// @Tags Health
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /api/health [get]
func (h healthHandler) getHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()

		response := HealthResponse{
			Status:       "OK",
			Timestamp:    time.Now().UTC().Format(time.RFC3339),
			Database:     "connected",
			DatabaseType: h.database.Type(),
			Uptime:       time.Since(h.startupTime).Round(time.Second).String(),
		}

		if err := h.database.ProjectRepo().Ping(ctx); err != nil {
			h.logger.Warn().Err(err).Msg("database ping failed")
			response.Database = "disconnected"
		}

		if rdb := h.database.Redis(); rdb != nil {
			response.Redis = "connected"
			if err := rdb.Ping(ctx).Err(); err != nil {
				h.logger.Warn().Err(err).Msg("redis ping failed")
				response.Redis = "disconnected"
			}
		}

		h.responder.WriteJSON(w, http.StatusOK, response)
	}
}
