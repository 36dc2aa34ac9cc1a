package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// setupRoutes mounts the catalog API under /api. Writes go through the admin
// check, the contact form through the rate limiter.
func setupRoutes(r chi.Router, handlers *routeHandlers, authMiddleware authMiddleware, contactLimiter func(http.Handler) http.Handler) {
	r.Get("/health", handlers.healthHandler.getHealth())

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", handlers.healthHandler.getHealth())

		// Project Handler endpoints
		r.Get("/projects", handlers.projectHandler.getAllProjects())
		r.Get("/projects/category/{category}", handlers.projectHandler.getProjectsByCategory())
		r.Get("/projects/year/{year}", handlers.projectHandler.getProjectsByYear())
		r.Get("/projects/{projectID}", handlers.projectHandler.getProject())

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.authenticate)

			r.Post("/projects", handlers.projectHandler.createProject())
			r.Put("/projects/{projectID}", handlers.projectHandler.updateProject())
			r.Delete("/projects/{projectID}", handlers.projectHandler.deleteProject())
		})

		// Catalog Handler endpoints
		r.Get("/categories", handlers.catalogHandler.getCategories())
		r.Get("/categories/{category}/details", handlers.catalogHandler.getCategoryDetails())
		r.Get("/years", handlers.catalogHandler.getYears())
		r.Get("/stats", handlers.catalogHandler.getStats())

		r.With(contactLimiter).Post("/contact", handlers.contactHandler.submitContact())
	})
}
