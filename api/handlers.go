package api

import (
	"time"

	"github.com/lejapetric/simon/database"
	"github.com/lejapetric/simon/services"
)

// initializeHandlers creates and returns all handlers organized in a routeHandlers struct
func initializeHandlers(db *database.Database, notifier services.Notifier, startupTime time.Time) *routeHandlers {
	return &routeHandlers{
		projectHandler: newProjectHandler(db.ProjectRepo()),
		catalogHandler: newCatalogHandler(db.ProjectRepo()),
		healthHandler:  newHealthHandler(db, startupTime),
		contactHandler: newContactHandler(notifier),
	}
}
