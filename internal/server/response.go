package server

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Error codes of ErrorDetail.
const (
	ErrCodeInvalidBody      = "INVALID_BODY"
	ErrCodeInvalidParameter = "INVALID_PARAMETER"
	ErrCodeUpstream         = "UPSTREAM_ERROR"
	ErrCodeInternal         = "INTERNAL_ERROR"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error details.
type ErrorDetail struct {
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	RequestID string    `json:"request_id"`
	Timestamp time.Time `json:"timestamp"`
}

// writeJSON encodes v with the given status.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("failed to encode response", zap.Error(err))
	}
}

// writeError sends an ErrorResponse and logs the cause.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, code, message string, cause error) {
	detail := ErrorDetail{
		Code:      code,
		Message:   message,
		RequestID: getRequestID(r.Context()),
		Timestamp: time.Now().UTC(),
	}
	s.logger.Warn("request failed",
		zap.String("request_id", detail.RequestID),
		zap.String("error_code", code),
		zap.Int("status", status),
		zap.Error(cause),
	)
	s.writeJSON(w, status, ErrorResponse{Error: detail})
}
