package image

import "fmt"

// Error codes returned by the image generation client.
const (
	CodeAPIKeyMissing   = "API_KEY_MISSING"
	CodeInvalidAPIKey   = "INVALID_API_KEY"
	CodeBadRequest      = "BAD_REQUEST"
	CodeRateLimit       = "RATE_LIMIT"
	CodeServerError     = "SERVER_ERROR"
	CodeTimeout         = "TIMEOUT"
	CodeHTTPError       = "HTTP_ERROR"
	CodeInvalidResponse = "INVALID_RESPONSE"
)

// GenerationError is a classified failure of the image generation endpoint.
type GenerationError struct {
	Code      string
	Message   string
	Retryable bool
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("image generation error [%s]: %s", e.Code, e.Message)
}

func newGenerationError(code string, retryable bool, format string, args ...any) *GenerationError {
	return &GenerationError{
		Code:      code,
		Message:   fmt.Sprintf(format, args...),
		Retryable: retryable,
	}
}
