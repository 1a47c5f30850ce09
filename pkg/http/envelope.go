package http

import (
	"encoding/json"
	"net/http"
	"time"
)

// Envelope is the uniform success/failure wrapper returned by every endpoint.
// ErrorCode is present exactly when Success is false; Data may accompany either
// shape (a validation failure can carry field details). Absent fields are
// omitted from the JSON rather than emitted as null, since clients switch on
// field presence.
type Envelope struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	Data      any       `json:"data,omitempty"`
	ErrorCode string    `json:"error_code,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// OK builds a success envelope.
func OK(data any, message string) Envelope {
	return Envelope{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}
}

// Err builds a failure envelope with a machine-readable code.
func Err(code, message string, data any) Envelope {
	return Envelope{
		Success:   false,
		Message:   message,
		Data:      data,
		ErrorCode: code,
		Timestamp: time.Now().UTC(),
	}
}

// IsOK reports whether the envelope is the success shape.
func (e Envelope) IsOK() bool { return e.Success }

// IsErr reports whether the envelope is the failure shape.
func (e Envelope) IsErr() bool { return !e.Success }

// WriteJSON writes an envelope with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	// The status line is already written; nothing useful to do on failure
	_ = json.NewEncoder(w).Encode(env)
}

// WriteOK writes a 200 success envelope.
func WriteOK(w http.ResponseWriter, data any, message string) {
	WriteJSON(w, http.StatusOK, OK(data, message))
}

// WriteCreated writes a 201 success envelope.
func WriteCreated(w http.ResponseWriter, data any, message string) {
	WriteJSON(w, http.StatusCreated, OK(data, message))
}
