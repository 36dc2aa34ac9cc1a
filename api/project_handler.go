package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/lejapetric/simon/database"
	"github.com/lejapetric/simon/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type projectHandler struct {
	responder   Responder
	logger      zerolog.Logger
	projectRepo database.ProjectRepo
}

func newProjectHandler(projectRepo database.ProjectRepo) projectHandler {
	logger := log.With().Str("handlerName", "projectHandler").Logger()

	return projectHandler{
		responder:   NewResponder(logger),
		logger:      logger,
		projectRepo: projectRepo,
	}
}

// getAllProjects lists projects, optionally filtered
// @Summary List projects
// @Description Lists projects most recent first. Filters are combined with AND.
// @Tags Projects
// @Produce json
// @Param category query string false "Exact category"
// @Param year query int false "Completion year"
// @Param search query string false "Words to look for in the project name"
// @Success 200 {array} models.Project
// @Failure 400 {object} ErrorResponse "Bad Request - year is not an integer"
// @Failure 500 {object} ErrorResponse "Internal Server Error - Error fetching projects"
// @Router /api/projects [get]
func (h projectHandler) getAllProjects() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		year, err := parseYear(query.Get("year"))
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.list(w, r, models.ProjectFilter{
			Category: strings.TrimSpace(query.Get("category")),
			Year:     year,
			Search:   strings.TrimSpace(query.Get("search")),
		})
	}
}

// getProjectsByCategory lists the projects of one category
// @Summary List projects by category
// @Tags Projects
// @Produce json
// @Param category path string true "Category"
// @Success 200 {array} models.Project
// @Router /api/projects/category/{category} [get]
func (h projectHandler) getProjectsByCategory() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.list(w, r, models.ProjectFilter{Category: strings.TrimSpace(chi.URLParam(r, "category"))})
	}
}

// getProjectsByYear lists the projects completed in one year
// @Summary List projects by year
// @Tags Projects
// @Produce json
// @Param year path int true "Completion year"
// @Success 200 {array} models.Project
// @Failure 400 {object} ErrorResponse "Bad Request - year is not an integer"
// @Router /api/projects/year/{year} [get]
func (h projectHandler) getProjectsByYear() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		year, err := parseYear(chi.URLParam(r, "year"))
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.list(w, r, models.ProjectFilter{Year: year})
	}
}

func (h projectHandler) list(w http.ResponseWriter, r *http.Request, filter models.ProjectFilter) {
	projects, err := h.projectRepo.FindAll(r.Context(), filter)
	if err != nil {
		h.responder.WriteError(w, wrapDatabaseError("list", "projects", err))
		return
	}
	if projects == nil {
		projects = []models.Project{}
	}
	h.responder.WriteJSON(w, http.StatusOK, projects)
}

// getProject retrieves a specific project by ID
// @Summary Get project
// @Tags Projects
// @Produce json
// @Param projectID path string true "Project ID"
// @Success 200 {object} models.Project
// @Failure 400 {object} ErrorResponse "Bad Request - Invalid projectID"
// @Failure 404 {object} ErrorResponse "Not Found - Project not found"
// @Failure 500 {object} ErrorResponse "Internal Server Error - Error fetching project"
// @Router /api/projects/{projectID} [get]
func (h projectHandler) getProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		project, err := h.projectRepo.FindByID(r.Context(), chi.URLParam(r, "projectID"))
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "project", err))
			return
		}
		h.responder.WriteJSON(w, http.StatusOK, project)
	}
}

// createProject creates a new project
// @Summary Create project
// @Description Every invalid field is reported in one response
// @Tags Projects
// @Accept json
// @Produce json
// @Param project body projectRequest true "Project data"
// @Success 201 {object} models.Project
// @Failure 400 {object} ErrorResponse "Bad Request - Invalid project data"
// @Failure 500 {object} ErrorResponse "Internal Server Error - Error creating project"
// @Router /api/projects [post]
func (h projectHandler) createProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body projectRequest
		if err := decodeAndValidate(w, r, "project", &body); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		project := body.toModel()
		if err := h.projectRepo.Add(r.Context(), project); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("create", "project", err))
			return
		}
		recordProjectMutation("create")

		h.logger.Info().Str("projectID", project.ID).Str("category", project.Category).Str("admin", ctxGetAdminSubject(r.Context())).Msg("project created")
		h.responder.WriteJSON(w, http.StatusCreated, project)
	}
}

// updateProject replaces an existing project
// @Summary Update project
// @Description Replaces every mutable field. Omitted optional fields are cleared.
// @Tags Projects
// @Accept json
// @Produce json
// @Param projectID path string true "Project ID"
// @Param project body projectRequest true "Updated project data"
// @Success 200 {object} models.Project
// @Failure 400 {object} ErrorResponse "Bad Request - Invalid project data"
// @Failure 404 {object} ErrorResponse "Not Found - Project not found"
// @Failure 500 {object} ErrorResponse "Internal Server Error - Error updating project"
// @Router /api/projects/{projectID} [put]
func (h projectHandler) updateProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID := chi.URLParam(r, "projectID")

		var body projectRequest
		if err := decodeAndValidate(w, r, "project", &body); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		project, err := h.projectRepo.Replace(r.Context(), projectID, body.toModel())
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("update", "project", err))
			return
		}
		recordProjectMutation("update")

		h.logger.Info().Str("projectID", project.ID).Str("admin", ctxGetAdminSubject(r.Context())).Msg("project updated")
		h.responder.WriteJSON(w, http.StatusOK, project)
	}
}

// deleteProject removes a project permanently
// @Summary Delete project
// @Tags Projects
// @Produce json
// @Param projectID path string true "Project ID"
// @Success 200 {object} StatusResponse
// @Failure 400 {object} ErrorResponse "Bad Request - Invalid projectID"
// @Failure 404 {object} ErrorResponse "Not Found - Project not found"
// @Failure 500 {object} ErrorResponse "Internal Server Error - Error deleting project"
// @Router /api/projects/{projectID} [delete]
func (h projectHandler) deleteProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID := chi.URLParam(r, "projectID")

		if err := h.projectRepo.Delete(r.Context(), projectID); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("delete", "project", err))
			return
		}
		recordProjectMutation("delete")

		h.logger.Info().Str("projectID", projectID).Str("admin", ctxGetAdminSubject(r.Context())).Msg("project deleted")
		h.responder.WriteJSON(w, http.StatusOK, StatusResponse{Status: "success", Message: "project deleted"})
	}
}
