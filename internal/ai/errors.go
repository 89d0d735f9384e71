package ai

import "fmt"

// Error codes returned by the text generation client.
const (
	CodeAPIKeyMissing      = "API_KEY_MISSING"
	CodeInvalidAPIKey      = "INVALID_API_KEY"
	CodeRateLimit          = "RATE_LIMIT"
	CodeServerError        = "SERVER_ERROR"
	CodeHTTPError          = "HTTP_ERROR"
	CodeInvalidResponse    = "INVALID_RESPONSE"
	CodeParseError         = "PARSE_ERROR"
	CodeMaxRetriesExceeded = "MAX_RETRIES_EXCEEDED"
)

// ServiceError is a classified failure of the text generation service. Code is
// machine readable; Retryable tells the caller whether trying again could
// help.
type ServiceError struct {
	Code      string
	Message   string
	Retryable bool
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("ai service error [%s]: %s", e.Code, e.Message)
}

// newServiceError builds a ServiceError with a formatted message.
func newServiceError(code string, retryable bool, format string, args ...any) *ServiceError {
	return &ServiceError{
		Code:      code,
		Message:   fmt.Sprintf(format, args...),
		Retryable: retryable,
	}
}
