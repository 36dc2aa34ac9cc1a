package database

import (
	"context"
	"strings"

	"github.com/lejapetric/simon/errs"
	"github.com/lejapetric/simon/models"
)

// Errors every ProjectRepo returns unwrapped so handlers can map them
var (
	ErrNotFound  = errs.ErrNotFound
	ErrInvalidID = errs.ErrInvalidID
)

// ProjectRepo is the project store. Implementations return ErrInvalidID for
// ids malformed for the backend, ErrNotFound for absent ids and wrap every
// other driver error.
type ProjectRepo interface {
	// FindAll returns the projects matching filter, most recent completion first
	FindAll(ctx context.Context, filter models.ProjectFilter) ([]models.Project, error)
	FindByID(ctx context.Context, id string) (*models.Project, error)
	// Add stores a new project and fills in its id and timestamps
	Add(ctx context.Context, project *models.Project) error
	// Replace overwrites every mutable field of the project with the given id
	Replace(ctx context.Context, id string, project *models.Project) (*models.Project, error)
	Delete(ctx context.Context, id string) error

	Categories(ctx context.Context) ([]string, error)
	Years(ctx context.Context) ([]int, error)
	Stats(ctx context.Context) (*models.ProjectStats, error)
	// Details returns the distinct non-empty details of one category
	Details(ctx context.Context, category string) ([]string, error)

	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// prepareForWrite normalizes the optional fields of an incoming project
func prepareForWrite(p *models.Project) {
	if p.Details != nil {
		trimmed := strings.TrimSpace(*p.Details)
		if trimmed == "" {
			p.Details = nil
		} else {
			p.Details = &trimmed
		}
	}
	if p.Images == nil {
		p.Images = []string{}
	}
}
