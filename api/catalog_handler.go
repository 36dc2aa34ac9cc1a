package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/lejapetric/simon/database"
	"github.com/rs/zerolog/log"
)

// catalogHandler serves the read-only aggregate views of the catalog
type catalogHandler struct {
	responder   Responder
	projectRepo database.ProjectRepo
}

func newCatalogHandler(projectRepo database.ProjectRepo) catalogHandler {
	logger := log.With().Str("handlerName", "catalogHandler").Logger()

	return catalogHandler{
		responder:   NewResponder(logger),
		projectRepo: projectRepo,
	}
}

// getCategories lists the distinct categories
// @Summary List categories
// @Tags Catalog
// @Produce json
// @Success 200 {array} string
// @Router /api/categories [get]
func (h catalogHandler) getCategories() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categories, err := h.projectRepo.Categories(r.Context())
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("list", "categories", err))
			return
		}
		h.responder.WriteJSON(w, http.StatusOK, categories)
	}
}

// getYears lists the distinct completion years, newest first
// @Summary List years
// @Tags Catalog
// @Produce json
// @Success 200 {array} int
// @Router /api/years [get]
func (h catalogHandler) getYears() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		years, err := h.projectRepo.Years(r.Context())
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("list", "years", err))
			return
		}
		h.responder.WriteJSON(w, http.StatusOK, years)
	}
}

// getStats returns the aggregate statistics
// @Summary Catalog statistics
// @Description With detailsCategory, also lists the distinct details of that category
// @Tags Catalog
// @Produce json
// @Param detailsCategory query string false "Category whose details to include"
// @Success 200 {object} models.ProjectStats
// @Router /api/stats [get]
func (h catalogHandler) getStats() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := h.projectRepo.Stats(r.Context())
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("compute", "stats", err))
			return
		}

		if category := strings.TrimSpace(r.URL.Query().Get("detailsCategory")); category != "" {
			details, err := h.projectRepo.Details(r.Context(), category)
			if err != nil {
				h.responder.WriteError(w, wrapDatabaseError("list", "details", err))
				return
			}
			if details == nil {
				details = []string{}
			}
			stats.Details = &details
		}
		h.responder.WriteJSON(w, http.StatusOK, stats)
	}
}

// getCategoryDetails lists the distinct details recorded for a category
// @Summary Category details
// @Tags Catalog
// @Produce json
// @Param category path string true "Category"
// @Success 200 {array} string
// @Router /api/categories/{category}/details [get]
func (h catalogHandler) getCategoryDetails() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		details, err := h.projectRepo.Details(r.Context(), chi.URLParam(r, "category"))
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("list", "details", err))
			return
		}
		h.responder.WriteJSON(w, http.StatusOK, details)
	}
}
