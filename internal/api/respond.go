package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"

	"github.com/flownest/flownest-server/internal/auth"
	"github.com/flownest/flownest-server/internal/identity"
	"github.com/flownest/flownest-server/internal/models"
	"github.com/flownest/flownest-server/internal/storage"
	"github.com/flownest/flownest-server/internal/subscription"
	"github.com/flownest/flownest-server/internal/validation"
)

// Machine-readable error codes
const (
	codeUnauthenticated        = "UNAUTHENTICATED"
	codeForbidden              = "FORBIDDEN"
	codeTenantUnresolved       = "TENANT_UNRESOLVED"
	codeSubscriptionExpired    = "SUBSCRIPTION_EXPIRED"
	codeSubscriptionTerminated = "SUBSCRIPTION_TERMINATED"
	codeNotFound               = "NOT_FOUND"
	codeValidationFailed       = "VALIDATION_FAILED"
	codeConflict               = "CONFLICT"
	codeRateLimited            = "RATE_LIMITED"
	codeInternal               = "INTERNAL"
)

// errorBody is the JSON shape of every error response
type errorBody struct {
	Message string            `json:"message"`
	Code    string            `json:"code"`
	Fields  map[string]string `json:"fields,omitempty"`
	Detail  string            `json:"detail,omitempty"`
}

// apiError is an error that already knows its HTTP rendering
type apiError struct {
	status  int
	code    string
	message string
}

func (e *apiError) Error() string { return e.message }

func badRequest(msg string) error {
	return &apiError{status: http.StatusBadRequest, code: codeValidationFailed, message: msg}
}

func notFound(msg string) error {
	return &apiError{status: http.StatusNotFound, code: codeNotFound, message: msg}
}

func unauthorized(msg string) error {
	return &apiError{status: http.StatusUnauthorized, code: codeUnauthenticated, message: msg}
}

func conflict(msg string) error {
	return &apiError{status: http.StatusConflict, code: codeConflict, message: msg}
}

// respondJSON responds with JSON
func (s *RESTServer) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(response)
}

// respondError responds with error
func (s *RESTServer) respondError(w http.ResponseWriter, status int, code, message string) {
	s.respondJSON(w, status, errorBody{Message: message, Code: code})
}

// writeError maps err onto the error taxonomy and writes it. Unexpected
// errors are logged and their detail is only exposed in development.
func (s *RESTServer) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		apiErr  *apiError
		roleErr *auth.RoleError
		valErr  *validation.Error
	)

	switch {
	case errors.As(err, &apiErr):
		s.respondError(w, apiErr.status, apiErr.code, apiErr.message)
	case errors.As(err, &valErr):
		s.respondJSON(w, http.StatusBadRequest, errorBody{
			Message: "Validation failed",
			Code:    codeValidationFailed,
			Fields:  valErr.Fields,
		})
	case errors.As(err, &roleErr):
		s.respondError(w, http.StatusForbidden, codeForbidden, roleErr.Error())
	case errors.Is(err, auth.ErrForbidden):
		s.respondError(w, http.StatusForbidden, codeForbidden, "Access denied")
	case errors.Is(err, auth.ErrInvalidToken):
		s.respondError(w, http.StatusUnauthorized, codeUnauthenticated, "Not authorized, token failed")
	case errors.Is(err, identity.ErrTenantUnresolved):
		s.respondError(w, http.StatusBadRequest, codeTenantUnresolved, "No tenant is linked to this account")
	case errors.Is(err, subscription.ErrExpired):
		s.respondError(w, http.StatusForbidden, codeSubscriptionExpired, "Subscription expired")
	case errors.Is(err, subscription.ErrTerminated):
		s.respondError(w, http.StatusForbidden, codeSubscriptionTerminated, "Subscription terminated")
	case errors.Is(err, models.ErrCreditClosed):
		s.respondError(w, http.StatusBadRequest, codeValidationFailed, "This credit account is already closed")
	case errors.Is(err, models.ErrInvalidPayment):
		s.respondError(w, http.StatusBadRequest, codeValidationFailed, "Valid payment amount is required")
	case errors.Is(err, storage.ErrNotFound):
		s.respondError(w, http.StatusNotFound, codeNotFound, "Resource not found")
	case errors.Is(err, storage.ErrDuplicateKey):
		s.respondError(w, http.StatusConflict, codeConflict, "Resource already exists")
	default:
		hlog.FromRequest(r).Error().
			Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("Request failed")

		body := errorBody{Message: "Internal server error", Code: codeInternal}
		if s.config.IsDevelopment() {
			body.Detail = err.Error()
		}
		s.respondJSON(w, http.StatusInternalServerError, body)
	}
}

// decode reads a JSON body into dst and validates it
func (s *RESTServer) decode(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return badRequest("Invalid request body")
	}
	return s.validator.Validate(dst)
}
