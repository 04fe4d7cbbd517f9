package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/christopherklint97/ponto/internal/backend"
)

type Response struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	Data    any          `json:"data,omitempty"`
	Error   *ErrorDetail `json:"error,omitempty"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		_ = json.NewEncoder(w).Encode(Response{
			Error: &ErrorDetail{Code: "ENCODING_ERROR", Message: "Failed to encode response"},
		})
	}
}

func success(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, Response{Success: true, Data: data})
}

func fail(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, Response{
		Error: &ErrorDetail{Code: code, Message: message},
	})
}

func badRequest(w http.ResponseWriter, message string) {
	fail(w, http.StatusBadRequest, "BAD_REQUEST", message)
}

func notFound(w http.ResponseWriter, message string) {
	fail(w, http.StatusNotFound, "NOT_FOUND", message)
}

// handleError maps a backend failure to a response.
func handleError(w http.ResponseWriter, err error) {
	var apiErr *backend.APIError
	switch {
	case errors.Is(err, backend.ErrUnauthorized):
		fail(w, http.StatusUnauthorized, "UNAUTHORIZED", "Backend rejected the token")
	case errors.As(err, &apiErr):
		fail(w, http.StatusBadGateway, "BACKEND_ERROR", apiErr.Message)
	default:
		fail(w, http.StatusBadGateway, "BACKEND_UNAVAILABLE", err.Error())
	}
}
