package http

import (
	"errors"
	"net/http"

	"github.com/knowara/portal/internal/models"
)

// Machine-readable error codes carried in the envelope's error_code field.
const (
	CodeValidation       = "validation_error"
	CodeUnauthorized     = "unauthorized"
	CodeForbidden        = "forbidden"
	CodeNotFound         = "not_found"
	CodeConflict         = "conflict"
	CodeBadRequest       = "bad_request"
	CodePayloadTooLarge  = "payload_too_large"
	CodeMethodNotAllowed = "method_not_allowed"
	CodeInternal         = "internal_error"
)

// MapError translates a sentinel or validation error into the transport
// status and envelope code for that failure kind. Unknown errors collapse to
// internal_error with a generic message; callers log the detail themselves.
func MapError(err error) (statusCode int, code string, message string) {
	var ve *models.ValidationError
	if errors.As(err, &ve) {
		return http.StatusUnprocessableEntity, CodeValidation, ve.Error()
	}

	switch {
	case errors.Is(err, models.ErrInvalidCredentials),
		errors.Is(err, models.ErrAccountDisabled),
		errors.Is(err, models.ErrAccountLocked),
		errors.Is(err, models.ErrAccountLockedNow),
		errors.Is(err, models.ErrUnauthorized):
		return http.StatusUnauthorized, CodeUnauthorized, err.Error()
	case errors.Is(err, models.ErrForbidden):
		return http.StatusForbidden, CodeForbidden, "you do not have permission to perform this action"
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound, CodeNotFound, "resource not found"
	case errors.Is(err, models.ErrConflict),
		errors.Is(err, models.ErrUsernameTaken),
		errors.Is(err, models.ErrEmailTaken):
		return http.StatusConflict, CodeConflict, err.Error()
	case errors.Is(err, models.ErrPayloadTooLarge):
		return http.StatusRequestEntityTooLarge, CodePayloadTooLarge, "request payload too large"
	case errors.Is(err, models.ErrBadRequest):
		return http.StatusBadRequest, CodeBadRequest, "bad request"
	default:
		return http.StatusInternalServerError, CodeInternal, "internal server error"
	}
}

// WriteError maps err onto the envelope taxonomy and writes it.
func WriteError(w http.ResponseWriter, err error) {
	statusCode, code, message := MapError(err)
	WriteJSON(w, statusCode, Err(code, message, nil))
}

// WriteErrorWithData writes a mapped failure envelope carrying structured
// detail, e.g. a list of field-validation messages.
func WriteErrorWithData(w http.ResponseWriter, err error, data any) {
	statusCode, code, message := MapError(err)
	WriteJSON(w, statusCode, Err(code, message, data))
}

// Convenience writers for failures detected at the transport layer itself.

func WriteBadRequest(w http.ResponseWriter, message string) {
	WriteJSON(w, http.StatusBadRequest, Err(CodeBadRequest, message, nil))
}

func WriteValidationError(w http.ResponseWriter, message string, data any) {
	WriteJSON(w, http.StatusUnprocessableEntity, Err(CodeValidation, message, data))
}

func WriteUnauthorized(w http.ResponseWriter, message string) {
	WriteJSON(w, http.StatusUnauthorized, Err(CodeUnauthorized, message, nil))
}

func WriteForbidden(w http.ResponseWriter, message string) {
	WriteJSON(w, http.StatusForbidden, Err(CodeForbidden, message, nil))
}

func WriteNotFound(w http.ResponseWriter, message string) {
	WriteJSON(w, http.StatusNotFound, Err(CodeNotFound, message, nil))
}

func WriteMethodNotAllowed(w http.ResponseWriter) {
	WriteJSON(w, http.StatusMethodNotAllowed, Err(CodeMethodNotAllowed, "method not allowed", nil))
}

func WritePayloadTooLarge(w http.ResponseWriter) {
	WriteJSON(w, http.StatusRequestEntityTooLarge, Err(CodePayloadTooLarge, "request payload too large", nil))
}

func WriteInternalError(w http.ResponseWriter) {
	WriteJSON(w, http.StatusInternalServerError, Err(CodeInternal, "internal server error", nil))
}
