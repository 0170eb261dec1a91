package httpapi

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Envelope wraps every JSON response.
type Envelope struct {
	Success   bool   `json:"success"`
	Data      any    `json:"data,omitempty"`
	Error     *Error `json:"error,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

func writeJSON(w http.ResponseWriter, logger *zap.Logger, status int, payload Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Warn("write json failed", zap.Error(err))
	}
}

func success(w http.ResponseWriter, logger *zap.Logger, data any, requestID string) {
	writeJSON(w, logger, http.StatusOK, Envelope{Success: true, Data: data, RequestID: requestID})
}

func fail(w http.ResponseWriter, logger *zap.Logger, status int, code, message, requestID string) {
	writeJSON(w, logger, status, Envelope{Success: false, Error: &Error{Code: code, Message: message}, RequestID: requestID})
}
