package llm

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestProviderError_Error(t *testing.T) {
	err := &ProviderError{
		Type:     ErrorTypeRateLimit,
		Message:  "rate limited",
		Provider: ProviderGroq,
	}
	if !strings.Contains(err.Error(), "rate limited") {
		t.Errorf("Expected message in error string, got %q", err.Error())
	}

	withCode := &ProviderError{
		Type:     ErrorTypeInvalidRequest,
		Message:  "bad request",
		Code:     "invalid_param",
		Provider: ProviderGroq,
	}
	if !strings.Contains(withCode.Error(), "invalid_param") {
		t.Errorf("Expected code in error string, got %q", withCode.Error())
	}
}

func TestProviderError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := NewProviderErrorWithCause(ProviderGroq, ErrorTypeConnectionError, "connect failed", cause)

	if !errors.Is(err, cause) {
		t.Error("Expected errors.Is to reach the cause")
	}
}

func TestNewProviderError_SetsRetryable(t *testing.T) {
	tests := []struct {
		errorType ErrorType
		retryable bool
	}{
		{ErrorTypeRateLimit, true},
		{ErrorTypeServerError, true},
		{ErrorTypeTimeout, true},
		{ErrorTypeConnectionError, true},
		{ErrorTypeAuthentication, false},
		{ErrorTypeInvalidRequest, false},
		{ErrorTypeContextLength, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.errorType), func(t *testing.T) {
			err := NewProviderError(ProviderGroq, tt.errorType, "msg")
			if err.IsRetryable() != tt.retryable {
				t.Errorf("Expected retryable=%v for %s", tt.retryable, tt.errorType)
			}
		})
	}
}

func TestParseHTTPError(t *testing.T) {
	tests := []struct {
		status    int
		wantType  ErrorType
		retryable bool
	}{
		{http.StatusBadRequest, ErrorTypeInvalidRequest, false},
		{http.StatusUnauthorized, ErrorTypeAuthentication, false},
		{http.StatusForbidden, ErrorTypePermission, false},
		{http.StatusNotFound, ErrorTypeNotFound, false},
		{http.StatusTooManyRequests, ErrorTypeRateLimit, true},
		{http.StatusInternalServerError, ErrorTypeServerError, true},
		{http.StatusServiceUnavailable, ErrorTypeServerError, true},
		{http.StatusTeapot, ErrorTypeUnknown, false},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("status_%d", tt.status), func(t *testing.T) {
			err := ParseHTTPError(ProviderGroq, tt.status, "")
			if err.Type != tt.wantType {
				t.Errorf("Expected type %s, got %s", tt.wantType, err.Type)
			}
			if err.Retryable != tt.retryable {
				t.Errorf("Expected retryable=%v, got %v", tt.retryable, err.Retryable)
			}
			if err.HTTPStatus != tt.status {
				t.Errorf("Expected HTTPStatus %d, got %d", tt.status, err.HTTPStatus)
			}
		})
	}
}

func TestParseHTTPError_BodyOverridesType(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantType ErrorType
	}{
		{"rate limit body", `{"error": "Rate limit reached, try again later"}`, ErrorTypeRateLimit},
		{"quota body", `{"error": "insufficient quota for this request"}`, ErrorTypeInsufficientQuota},
		{"context length body", `{"error": "context length exceeded"}`, ErrorTypeContextLength},
		{"invalid model body", `{"error": "model not found"}`, ErrorTypeInvalidModel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ParseHTTPError(ProviderGroq, http.StatusBadRequest, tt.body)
			if err.Type != tt.wantType {
				t.Errorf("Expected type %s, got %s", tt.wantType, err.Type)
			}
			if err.HTTPStatus != http.StatusBadRequest {
				t.Errorf("Expected HTTPStatus preserved, got %d", err.HTTPStatus)
			}
		})
	}
}

func TestParseHTTPError_TruncatesLongBody(t *testing.T) {
	body := strings.Repeat("x", 500)
	err := ParseHTTPError(ProviderGroq, http.StatusBadRequest, body)
	if len(err.Message) > 300 {
		t.Errorf("Expected body truncated in message, got %d chars", len(err.Message))
	}
	if !strings.HasSuffix(err.Message, "...") {
		t.Errorf("Expected truncation marker, got %q", err.Message[len(err.Message)-10:])
	}
}

func TestErrorHelpers(t *testing.T) {
	rateLimit := NewProviderError(ProviderGroq, ErrorTypeRateLimit, "slow down")
	auth := NewProviderError(ProviderAnthropic, ErrorTypeAuthentication, "bad key")
	plain := errors.New("plain error")

	if !IsRetryableError(rateLimit) {
		t.Error("Expected rate limit to be retryable")
	}
	if IsRetryableError(auth) || IsRetryableError(plain) {
		t.Error("Expected auth and plain errors to be non-retryable")
	}

	if !IsRateLimitError(rateLimit) || IsRateLimitError(auth) {
		t.Error("IsRateLimitError misclassified")
	}
	if !IsAuthenticationError(auth) || IsAuthenticationError(rateLimit) {
		t.Error("IsAuthenticationError misclassified")
	}

	if _, ok := IsProviderError(plain); ok {
		t.Error("Expected plain error not to be a ProviderError")
	}
}
