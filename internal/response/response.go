// Package response writes the JSON bodies shared by the HTTP handlers.
package response

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// Envelope status values
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// DefaultErrorMessage is the only detail a client sees for an unexpected fault
const DefaultErrorMessage = "Internal server error"

// ErrorBody is the body of every error response
type ErrorBody struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// DataBody wraps a successful read
type DataBody struct {
	Status string `json:"status"`
	Data   any    `json:"data"`
}

// JSON writes v with the given status code.
func JSON(w http.ResponseWriter, logger *slog.Logger, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil && logger != nil {
		logger.Error("Error encoding response", "error", err)
	}
}

// OK writes {status: success, data} with 200.
func OK(w http.ResponseWriter, logger *slog.Logger, data any) {
	JSON(w, logger, http.StatusOK, DataBody{Status: StatusSuccess, Data: data})
}

// Error writes {status: error, message} with code.
func Error(w http.ResponseWriter, logger *slog.Logger, code int, message string) {
	JSON(w, logger, code, ErrorBody{Status: StatusError, Message: message})
}

// InternalError writes a generic 500. The cause is logged, never sent.
func InternalError(w http.ResponseWriter, logger *slog.Logger, err error) {
	if logger != nil {
		logger.Error("internal error", "error", err)
	}
	Error(w, logger, http.StatusInternalServerError, DefaultErrorMessage)
}
