package middleware

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ErrorCode is the machine readable kind of an error response. The front end
// branches on it; the message is for the operator.
type ErrorCode string

const (
	CodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	CodeInternal         ErrorCode = "INTERNAL_ERROR"
)

// ErrorResponse is the body of every non-2xx answer
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code      ErrorCode      `json:"code"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
	Timestamp string         `json:"timestamp"`
}

// CodeForStatus derives a code from the status text, e.g. 404 gives NOT_FOUND
func CodeForStatus(statusCode int) ErrorCode {
	if statusCode == http.StatusInternalServerError {
		return CodeInternal
	}
	text := http.StatusText(statusCode)
	if text == "" {
		return CodeInternal
	}
	return ErrorCode(strings.ToUpper(strings.NewReplacer(" ", "_", "-", "_").Replace(text)))
}

// RespondWithError answers with the code derived from statusCode
func RespondWithError(w http.ResponseWriter, statusCode int, message string) {
	RespondWithCode(w, statusCode, CodeForStatus(statusCode), message, nil)
}

// RespondWithErrorDetails is RespondWithError with a details object
func RespondWithErrorDetails(w http.ResponseWriter, statusCode int, message string, details map[string]any) {
	RespondWithCode(w, statusCode, CodeForStatus(statusCode), message, details)
}

// RespondWithCode writes the error envelope with an explicit code
func RespondWithCode(w http.ResponseWriter, statusCode int, code ErrorCode, message string, details map[string]any) {
	RespondWithJSON(w, statusCode, ErrorResponse{
		Error: ErrorDetail{
			Code:      code,
			Message:   message,
			Details:   details,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		},
	})
}

// RespondWithValidationErrors answers 400 listing every rejected field
func RespondWithValidationErrors(w http.ResponseWriter, errors []ValidationError) {
	RespondWithCode(w, http.StatusBadRequest, CodeValidationFailed, "validation failed", map[string]any{
		"validation_errors": errors,
	})
}

// ErrorHandlingMiddleware catches panics and converts them to 500 errors
func ErrorHandlingMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("Panic recovered",
						zap.Any("error", err),
						zap.String("path", r.URL.Path),
						zap.String("method", r.Method),
					)

					RespondWithError(w, http.StatusInternalServerError, "internal server error")
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// RespondWithJSON sends a JSON response
func RespondWithJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}
