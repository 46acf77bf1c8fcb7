package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestClassifyStatus(t *testing.T) {
	t.Parallel()

	if err := ClassifyStatus(http.StatusOK, nil); err != nil {
		t.Fatalf("expected nil for 200, got %v", err)
	}

	var auth *AuthError
	if err := ClassifyStatus(http.StatusUnauthorized, []byte(`{"error":"bad key"}`)); !errors.As(err, &auth) {
		t.Fatalf("expected auth error, got %v", err)
	}

	var policy *PolicyRestrictionError
	body := []byte(`{"error":{"message":"No endpoints found matching your data policy"}}`)
	if err := ClassifyStatus(http.StatusNotFound, body); !errors.As(err, &policy) {
		t.Fatalf("expected policy error, got %v", err)
	}
	if policy.Hint == "" || !strings.Contains(policy.Error(), policy.Hint) {
		t.Fatalf("expected policy error to carry a hint, got %q", policy.Error())
	}

	var transport *TransportError
	if err := ClassifyStatus(http.StatusNotFound, []byte("model not found")); !errors.As(err, &transport) {
		t.Fatalf("expected transport error for plain 404, got %v", err)
	}
	if err := ClassifyStatus(http.StatusInternalServerError, []byte("boom")); !errors.As(err, &transport) {
		t.Fatalf("expected transport error for 500, got %v", err)
	}
	if transport.StatusCode != http.StatusInternalServerError || transport.Body != "boom" {
		t.Fatalf("unexpected transport error: %+v", transport)
	}
}

func TestRetryable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		err    error
		expect bool
	}{
		{name: "server error", err: &TransportError{StatusCode: 503}, expect: true},
		{name: "rate limited", err: &TransportError{StatusCode: 429}, expect: true},
		{name: "bad request", err: &TransportError{StatusCode: 400}, expect: false},
		{name: "network", err: &TransportError{Err: errors.New("connection reset")}, expect: true},
		{name: "canceled", err: &TransportError{Err: context.Canceled}, expect: false},
		{name: "wrapped", err: fmt.Errorf("extract: %w", &TransportError{StatusCode: 502}), expect: true},
		{name: "auth", err: &AuthError{StatusCode: 401}, expect: false},
		{name: "policy", err: &PolicyRestrictionError{StatusCode: 404}, expect: false},
		{name: "schema", err: &SchemaError{Content: "nope"}, expect: false},
		{name: "nil", err: nil, expect: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Retryable(tt.err); got != tt.expect {
				t.Fatalf("expected %v, got %v", tt.expect, got)
			}
		})
	}
}

func TestTransportErrorMessage(t *testing.T) {
	t.Parallel()

	err := &TransportError{StatusCode: 500, Body: strings.Repeat("x", 1000)}
	if len(err.Error()) > 400 {
		t.Fatalf("expected body to be truncated, got %d bytes", len(err.Error()))
	}

	cause := errors.New("dial tcp: timeout")
	wrapped := &TransportError{Err: cause}
	if !errors.Is(wrapped, cause) {
		t.Fatalf("expected transport error to unwrap its cause")
	}
}
