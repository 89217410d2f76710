package utils

import (
	"encoding/json"
	"net/http"
)

type Response struct {
	Status    bool   `json:"status"`
	Message   string `json:"message"`
	ErrorType string `json:"error_type,omitempty"`
	Data      any    `json:"data,omitempty"`
	Errors    any    `json:"errors,omitempty"`
}

// ResponseJSON writes the standard envelope with the given status code.
func ResponseJSON(w http.ResponseWriter, code int, body Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(body)
}

// returns 200 OK
func ResponseSuccess(w http.ResponseWriter, message string, data any) {
	ResponseJSON(w, http.StatusOK, Response{Status: true, Message: message, Data: data})
}

// returns 400 Bad Request
func ResponseBadRequest(w http.ResponseWriter, message string, errors any) {
	ResponseJSON(w, http.StatusBadRequest, Response{
		Message:   message,
		ErrorType: "bad_request",
		Errors:    errors,
	})
}

// ResponseError writes a failure envelope carrying a stable error_type tag.
func ResponseError(w http.ResponseWriter, code int, errorType, message string) {
	ResponseJSON(w, code, Response{Message: message, ErrorType: errorType})
}

// returns 500 Internal Server Error
func ResponseInternalError(w http.ResponseWriter, message string) {
	ResponseError(w, http.StatusInternalServerError, "internal_error", message)
}
