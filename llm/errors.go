package llm

import (
	"fmt"
	"net/http"
	"strings"
)

// ErrorType represents the type of provider error
type ErrorType string

const (
	ErrorTypeUnknown           ErrorType = "unknown"
	ErrorTypeInvalidRequest    ErrorType = "invalid_request"
	ErrorTypeAuthentication    ErrorType = "authentication_error"
	ErrorTypePermission        ErrorType = "permission_error"
	ErrorTypeNotFound          ErrorType = "not_found"
	ErrorTypeRateLimit         ErrorType = "rate_limit_exceeded"
	ErrorTypeInsufficientQuota ErrorType = "insufficient_quota"
	ErrorTypeInvalidModel      ErrorType = "invalid_model"
	ErrorTypeContextLength     ErrorType = "context_length_exceeded"
	ErrorTypeServerError       ErrorType = "server_error"
	ErrorTypeTimeout           ErrorType = "timeout"
	ErrorTypeConnectionError   ErrorType = "connection_error"
)

// ProviderError represents an error from a completion or embedding provider
type ProviderError struct {
	Type       ErrorType `json:"type"`
	Message    string    `json:"message"`
	Code       string    `json:"code,omitempty"`
	Provider   Provider  `json:"provider"`
	Model      string    `json:"model,omitempty"`
	HTTPStatus int       `json:"http_status,omitempty"`
	Retryable  bool      `json:"retryable"`
	RetryAfter int       `json:"retry_after,omitempty"` // Seconds to wait before retry
	Cause      error     `json:"-"`
}

// Error implements the error interface
func (e *ProviderError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s [%s]: %s", e.Provider, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

// Unwrap returns the underlying error
func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// IsRetryable returns true if the error is retryable
func (e *ProviderError) IsRetryable() bool {
	return e.Retryable
}

// NewProviderError creates a new provider error
func NewProviderError(provider Provider, errorType ErrorType, message string) *ProviderError {
	return &ProviderError{
		Type:      errorType,
		Message:   message,
		Provider:  provider,
		Retryable: isRetryableError(errorType),
	}
}

// NewProviderErrorWithCause creates a new provider error with an underlying cause
func NewProviderErrorWithCause(provider Provider, errorType ErrorType, message string, cause error) *ProviderError {
	err := NewProviderError(provider, errorType, message)
	err.Cause = cause
	return err
}

// isRetryableError determines if an error type is retryable
func isRetryableError(errorType ErrorType) bool {
	switch errorType {
	case ErrorTypeRateLimit, ErrorTypeServerError, ErrorTypeTimeout, ErrorTypeConnectionError:
		return true
	default:
		return false
	}
}

// ParseHTTPError parses HTTP status codes into appropriate provider errors
func ParseHTTPError(provider Provider, statusCode int, body string) *ProviderError {
	var errorType ErrorType
	var message string
	retryable := false

	switch statusCode {
	case http.StatusBadRequest:
		errorType = ErrorTypeInvalidRequest
		message = "Invalid request parameters"
	case http.StatusUnauthorized:
		errorType = ErrorTypeAuthentication
		message = "Invalid API key or authentication failed"
	case http.StatusForbidden:
		errorType = ErrorTypePermission
		message = "Permission denied"
	case http.StatusNotFound:
		errorType = ErrorTypeNotFound
		message = "Resource not found"
	case http.StatusTooManyRequests:
		errorType = ErrorTypeRateLimit
		message = "Rate limit exceeded"
		retryable = true
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		errorType = ErrorTypeServerError
		message = "Server error occurred"
		retryable = true
	default:
		errorType = ErrorTypeUnknown
		message = fmt.Sprintf("HTTP %d error", statusCode)
	}

	// Try to extract more specific error information from response body
	if body != "" {
		if specificError := extractSpecificError(provider, body); specificError != nil {
			specificError.HTTPStatus = statusCode
			return specificError
		}
		message = fmt.Sprintf("%s: %s", message, truncateBody(body, 200))
	}

	return &ProviderError{
		Type:       errorType,
		Message:    message,
		Provider:   provider,
		HTTPStatus: statusCode,
		Retryable:  retryable,
	}
}

// extractSpecificError extracts provider-specific error information
func extractSpecificError(provider Provider, body string) *ProviderError {
	lowerBody := strings.ToLower(body)

	if strings.Contains(lowerBody, "rate limit") || strings.Contains(lowerBody, "too many requests") {
		return &ProviderError{
			Type:      ErrorTypeRateLimit,
			Message:   "Rate limit exceeded",
			Provider:  provider,
			Retryable: true,
		}
	}

	if strings.Contains(lowerBody, "insufficient quota") || strings.Contains(lowerBody, "quota exceeded") {
		return &ProviderError{
			Type:     ErrorTypeInsufficientQuota,
			Message:  "Insufficient quota or credits",
			Provider: provider,
		}
	}

	if strings.Contains(lowerBody, "context length") || strings.Contains(lowerBody, "token limit") {
		return &ProviderError{
			Type:     ErrorTypeContextLength,
			Message:  "Context length exceeded",
			Provider: provider,
		}
	}

	if strings.Contains(lowerBody, "model") && (strings.Contains(lowerBody, "not found") || strings.Contains(lowerBody, "invalid")) {
		return &ProviderError{
			Type:     ErrorTypeInvalidModel,
			Message:  "Invalid or unavailable model",
			Provider: provider,
		}
	}

	return nil
}

// truncateBody truncates response body for error messages
func truncateBody(body string, maxLength int) string {
	if len(body) <= maxLength {
		return body
	}
	return body[:maxLength] + "..."
}

// IsProviderError checks if an error is a ProviderError
func IsProviderError(err error) (*ProviderError, bool) {
	if provErr, ok := err.(*ProviderError); ok {
		return provErr, true
	}
	return nil, false
}

// IsRetryableError checks if an error is retryable
func IsRetryableError(err error) bool {
	if provErr, ok := IsProviderError(err); ok {
		// Compute retryability from the error type to be robust even if the
		// struct was constructed without using the constructor.
		return isRetryableError(provErr.Type)
	}
	return false
}

// IsRateLimitError checks if an error is a rate limit error
func IsRateLimitError(err error) bool {
	if provErr, ok := IsProviderError(err); ok {
		return provErr.Type == ErrorTypeRateLimit
	}
	return false
}

// IsAuthenticationError checks if an error is an authentication error
func IsAuthenticationError(err error) bool {
	if provErr, ok := IsProviderError(err); ok {
		return provErr.Type == ErrorTypeAuthentication
	}
	return false
}
