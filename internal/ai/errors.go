package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/spigell/profile-drafter/internal/utils"
)

const maxErrorBody = 300

// TransportError reports a network failure or an unexpected response status.
type TransportError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("inference request failed: %v", e.Err)
	}
	return fmt.Sprintf("inference service returned status %d: %s", e.StatusCode, utils.TruncateForLog(e.Body, maxErrorBody))
}

func (e *TransportError) Unwrap() error { return e.Err }

// AuthError reports a credential rejected by the inference service.
type AuthError struct {
	StatusCode int
	Body       string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("inference credential rejected (status %d): check that the api key is valid and not expired", e.StatusCode)
}

// PolicyRestrictionError reports a provider refusing the model because of its content or
// privacy policy.
type PolicyRestrictionError struct {
	StatusCode int
	Body       string
	Hint       string
}

func (e *PolicyRestrictionError) Error() string {
	return fmt.Sprintf("inference provider blocked the request by policy: %s", e.Hint)
}

// SchemaError reports a successful response whose content is not the expected JSON object.
type SchemaError struct {
	Content string
	Err     error
}

func (e *SchemaError) Error() string {
	if e.Err == nil {
		return "inference response has no usable content"
	}
	return fmt.Sprintf("inference response is not a json object: %v", e.Err)
}

func (e *SchemaError) Unwrap() error { return e.Err }

const policyHint = "allow this model in the provider's data and privacy settings, or configure a different model"

var policyIndicators = []string{
	"data policy",
	"privacy",
	"content policy",
	"guardrail",
	"prohibited_content",
}

// ClassifyStatus maps a non-2xx response onto the error taxonomy. It returns nil for
// successful statuses.
func ClassifyStatus(status int, body []byte) error {
	if status >= 200 && status < 300 {
		return nil
	}

	text := string(body)
	switch {
	case status == http.StatusUnauthorized:
		return &AuthError{StatusCode: status, Body: text}
	case status == http.StatusNotFound && hasPolicyIndicator(text):
		return &PolicyRestrictionError{StatusCode: status, Body: text, Hint: policyHint}
	default:
		return &TransportError{StatusCode: status, Body: text}
	}
}

func hasPolicyIndicator(body string) bool {
	lower := strings.ToLower(body)
	for _, indicator := range policyIndicators {
		if strings.Contains(lower, indicator) {
			return true
		}
	}
	return false
}

// Retryable reports whether err is a transient transport failure: a network error,
// rate limiting or a server-side status.
func Retryable(err error) bool {
	var transport *TransportError
	if !errors.As(err, &transport) {
		return false
	}
	switch {
	case transport.StatusCode == 0:
		return !errors.Is(transport.Err, context.Canceled)
	case transport.StatusCode == http.StatusTooManyRequests:
		return true
	default:
		return transport.StatusCode >= http.StatusInternalServerError
	}
}
