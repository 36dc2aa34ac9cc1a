package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/lejapetric/simon/errs"
	"github.com/lejapetric/simon/models"
)

const maxBodyBytes = 1 << 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("month", func(fl validator.FieldLevel) bool {
		m := fl.Field().Int()
		return m >= models.MinMonth && m <= models.MaxMonth
	})
	_ = v.RegisterValidation("year", func(fl validator.FieldLevel) bool {
		y := fl.Field().Int()
		return y >= models.MinYear && y <= models.MaxYear
	})
	return v
}

var (
	monthRule = fmt.Sprintf("must be a number from %d to %d", models.MinMonth, models.MaxMonth)
	yearRule  = fmt.Sprintf("must be a year from %d to %d", models.MinYear, models.MaxYear)
)

// projectRequest is the writable part of a project
type projectRequest struct {
	Name            string                 `json:"name" validate:"required"`
	WorkDescription string                 `json:"workDescription" validate:"required"`
	Category        string                 `json:"category" validate:"required"`
	CompletionDate  *completionDateRequest `json:"completionDate" validate:"required"`
	Details         *string                `json:"details"`
	Images          []string               `json:"images" validate:"omitempty,dive,required"`
}

type completionDateRequest struct {
	Month *int `json:"month" validate:"required,month"`
	Year  *int `json:"year" validate:"required,year"`
}

func (p *projectRequest) normalize() {
	p.Name = strings.TrimSpace(p.Name)
	p.WorkDescription = strings.TrimSpace(p.WorkDescription)
	p.Category = strings.TrimSpace(p.Category)
	for i := range p.Images {
		p.Images[i] = strings.TrimSpace(p.Images[i])
	}
}

func (p projectRequest) toModel() *models.Project {
	images := p.Images
	if images == nil {
		images = []string{}
	}
	return &models.Project{
		Name:            p.Name,
		WorkDescription: p.WorkDescription,
		Category:        p.Category,
		CompletionDate:  models.CompletionDate{Month: *p.CompletionDate.Month, Year: *p.CompletionDate.Year},
		Details:         p.Details,
		Images:          images,
	}
}

// contactRequest is the body of a contact form submission
type contactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email" validate:"omitempty,email"`
	Phone   string `json:"phone" validate:"required_without=Email"`
	Message string `json:"message" validate:"required"`
}

func (c *contactRequest) normalize() {
	c.Name = strings.TrimSpace(c.Name)
	c.Email = strings.TrimSpace(c.Email)
	c.Phone = strings.TrimSpace(c.Phone)
	c.Message = strings.TrimSpace(c.Message)
}

type normalizer interface {
	normalize()
}

// decodeAndValidate reads a JSON body into dst, trims it and validates it.
// Type mismatches and rule violations are reported together.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, payloadType string, dst normalizer) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	var fields []errs.FieldError

	err := dec.Decode(dst)
	var typeErr *json.UnmarshalTypeError
	switch {
	case err == nil:
	case errors.As(err, &typeErr) && typeErr.Field != "":
		fields = append(fields, typeMismatch(typeErr))
	case errors.As(err, &typeErr):
		return errs.NewMalformedPayloadError(payloadType, fmt.Errorf("body is a JSON %s, not an object", typeErr.Value))
	case errors.Is(err, io.EOF):
		return errs.NewMalformedPayloadError(payloadType, errors.New("empty body"))
	default:
		return errs.NewMalformedPayloadError(payloadType, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return errs.NewMalformedPayloadError(payloadType, errors.New("unexpected data after the JSON object"))
	}

	dst.normalize()
	fields = mergeFieldErrors(fields, validationFields(validate.Struct(dst)))
	if len(fields) > 0 {
		return errs.NewValidationError(fields...)
	}
	return nil
}

func typeMismatch(err *json.UnmarshalTypeError) errs.FieldError {
	field := err.Field
	want := err.Type.String()
	switch err.Type.Kind() {
	case reflect.Int, reflect.Int64:
		want = "an integer"
	case reflect.String:
		want = "a string"
	case reflect.Slice:
		want = "an array"
	case reflect.Struct, reflect.Ptr:
		want = "an object"
	}
	msg := fmt.Sprintf("%s must be %s", field, want)
	switch field {
	case "completionDate.month":
		msg = field + " " + monthRule
	case "completionDate.year":
		msg = field + " " + yearRule
	}
	return errs.FieldError{Field: field, Message: msg}
}

// validationFields converts validator errors into one FieldError per field
func validationFields(err error) []errs.FieldError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	fields := make([]errs.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		name := fe.Namespace()
		if i := strings.Index(name, "."); i >= 0 {
			name = name[i+1:]
		}
		fields = append(fields, errs.FieldError{Field: name, Message: fieldMessage(name, fe)})
	}
	return fields
}

func fieldMessage(name string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		if strings.HasSuffix(name, "]") {
			return name + " must not be empty"
		}
		return name + " is required"
	case "required_without":
		return "email or phone is required"
	case "month":
		return name + " " + monthRule
	case "year":
		return name + " " + yearRule
	case "email":
		return name + " must be a valid email address"
	}
	return fmt.Sprintf("%s is invalid (%s)", name, fe.Tag())
}

// mergeFieldErrors appends extra, skipping fields already reported
func mergeFieldErrors(fields, extra []errs.FieldError) []errs.FieldError {
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		seen[f.Field] = true
	}
	for _, f := range extra {
		if !seen[f.Field] {
			fields = append(fields, f)
			seen[f.Field] = true
		}
	}
	return fields
}

// parseYear reads a year query or path value
func parseYear(raw string) (*int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	year, err := strconv.Atoi(raw)
	if err != nil {
		return nil, errs.NewInvalidFieldError("year", "year must be an integer")
	}
	return &year, nil
}
