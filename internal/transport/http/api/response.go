// Package api defines the single response shape every endpoint speaks:
// an envelope carrying either data or a coded error, always echoing the
// request id so clients can correlate with the server log.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// Error codes are short snake_case identifiers the frontend switches on;
// Message is human-readable and may be shown verbatim. Details carries
// optional machine-readable context (the rejected tipo, the missing
// permission) and is omitted when nil.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type Envelope struct {
	Success   bool   `json:"success"`
	Data      any    `json:"data,omitempty"`
	Error     *Error `json:"error,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, payload Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Warn("response write failed", "err", err)
	}
}

func Success(w http.ResponseWriter, data any, requestID string) {
	WriteJSON(w, http.StatusOK, Envelope{Success: true, Data: data, RequestID: requestID})
}

func Created(w http.ResponseWriter, data any, requestID string) {
	WriteJSON(w, http.StatusCreated, Envelope{Success: true, Data: data, RequestID: requestID})
}

func Fail(w http.ResponseWriter, status int, code, message, requestID string) {
	FailDetailed(w, status, code, message, nil, requestID)
}

// FailDetailed attaches structured context to the error. Keep details
// small and safe to show; they go to the client as-is.
func FailDetailed(w http.ResponseWriter, status int, code, message string, details any, requestID string) {
	WriteJSON(w, status, Envelope{
		Success:   false,
		Error:     &Error{Code: code, Message: message, Details: details},
		RequestID: requestID,
	})
}
