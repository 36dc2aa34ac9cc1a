package api

import "github.com/lejapetric/simon/errs"

// routeHandlers contains all the handlers for different route types
type routeHandlers struct {
	projectHandler projectHandler
	catalogHandler catalogHandler
	healthHandler  healthHandler
	contactHandler contactHandler
}

// ErrorResponse represents an error response from the API
// @Description Error response structure
type ErrorResponse struct {
	Error   string            `json:"error" example:"validation failed"`
	Status  string            `json:"status" example:"error"`
	Field   string            `json:"field,omitempty" example:"id"`
	Fields  []errs.FieldError `json:"fields,omitempty"`
	Details string            `json:"details,omitempty" example:"Additional error details"`
}

// StatusResponse is the body of a successful operation without a resource
type StatusResponse struct {
	Status  string `json:"status" example:"success"`
	Message string `json:"message" example:"project deleted"`
}

// ContactResponse acknowledges a contact form submission
type ContactResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// HealthResponse reports process and dependency state
type HealthResponse struct {
	Status       string `json:"status" example:"OK"`
	Timestamp    string `json:"timestamp"`
	Database     string `json:"database" example:"connected"`
	DatabaseType string `json:"databaseType" example:"mongo"`
	Redis        string `json:"redis,omitempty" example:"connected"`
	Uptime       string `json:"uptime"`
}
