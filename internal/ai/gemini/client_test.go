package gemini

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/spigell/profile-drafter/internal/ai"
)

type fakeModels struct {
	mu    sync.Mutex
	calls []generateCall
	resp  *genai.GenerateContentResponse
	err   error
}

type generateCall struct {
	model    string
	contents []*genai.Content
	config   *genai.GenerateContentConfig
}

func (f *fakeModels) GenerateContent(_ context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, generateCall{model: model, contents: contents, config: config})
	return f.resp, f.err
}

func textResponse(texts ...string) *genai.GenerateContentResponse {
	parts := make([]*genai.Part, 0, len(texts))
	for _, text := range texts {
		parts = append(parts, &genai.Part{Text: text})
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: parts},
		}},
	}
}

func TestNewGeneratorRequiresAPIKey(t *testing.T) {
	t.Parallel()

	if _, err := NewGenerator(context.Background(), " ", "", 0, nil); err == nil {
		t.Fatalf("expected error for empty api key")
	}
}

func TestGeneratorExtract(t *testing.T) {
	t.Parallel()

	models := &fakeModels{resp: textResponse("```json", `{"fields": {"name": {"value": "Siti Aminah", "confidence": "high"}}, "overallConfidence": 80}`)}
	g := newGenerator(models, "", 0, zap.NewNop())

	result, err := g.Extract(context.Background(), "Name: Siti Aminah")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Fields["name"].Value != "Siti Aminah" || result.OverallConfidence != 80 {
		t.Fatalf("unexpected result: %+v", result)
	}

	if len(models.calls) != 1 {
		t.Fatalf("expected 1 call, got %d", len(models.calls))
	}
	call := models.calls[0]
	if call.model != DefaultModel {
		t.Fatalf("unexpected model: %q", call.model)
	}
	if call.config == nil || call.config.SystemInstruction == nil {
		t.Fatalf("expected system instruction to be set")
	}
	if got := call.config.SystemInstruction.Parts[0].Text; got != ai.Instruction() {
		t.Fatalf("unexpected system instruction: %q", got)
	}
	if call.config.ResponseMIMEType != "application/json" {
		t.Fatalf("unexpected response mime type: %q", call.config.ResponseMIMEType)
	}
	if len(call.contents) != 1 || call.contents[0].Parts[0].Text != "Name: Siti Aminah" {
		t.Fatalf("unexpected contents: %+v", call.contents)
	}
	if g.Provider() != ProviderName || g.Model() != DefaultModel {
		t.Fatalf("unexpected identity: %s/%s", g.Provider(), g.Model())
	}
}

func TestGeneratorExtractUsesFirstCandidate(t *testing.T) {
	t.Parallel()

	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []*genai.Part{{Text: `{"fields": {"name": {"value": "Siti Aminah", "confidence": "high"}}, "overallConfidence": 80}`}}}},
			{Content: &genai.Content{Parts: []*genai.Part{{Text: `{"fields": {"name": {"value": "Nur Aina", "confidence": "low"}}, "overallConfidence": 20}`}}}},
		},
	}
	g := newGenerator(&fakeModels{resp: resp}, "", 0, zap.NewNop())

	result, err := g.Extract(context.Background(), "Name: Siti Aminah")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Fields["name"].Value != "Siti Aminah" || result.OverallConfidence != 80 {
		t.Fatalf("expected the first candidate, got %+v", result)
	}
}

func TestGeneratorExtractErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		resp  *genai.GenerateContentResponse
		err   error
		check func(t *testing.T, err error)
	}{
		{
			name: "unauthenticated",
			err:  genai.APIError{Code: http.StatusUnauthorized, Status: "UNAUTHENTICATED"},
			check: func(t *testing.T, err error) {
				var target *ai.AuthError
				if !errors.As(err, &target) {
					t.Fatalf("expected auth error, got %v", err)
				}
			},
		},
		{
			name: "invalid api key",
			err:  genai.APIError{Code: http.StatusBadRequest, Status: "INVALID_ARGUMENT", Message: "API key not valid. Please pass a valid API key."},
			check: func(t *testing.T, err error) {
				var target *ai.AuthError
				if !errors.As(err, &target) {
					t.Fatalf("expected auth error, got %v", err)
				}
			},
		},
		{
			name: "internal",
			err:  genai.APIError{Code: http.StatusInternalServerError, Status: "INTERNAL"},
			check: func(t *testing.T, err error) {
				var target *ai.TransportError
				if !errors.As(err, &target) || target.StatusCode != http.StatusInternalServerError {
					t.Fatalf("expected transport error, got %v", err)
				}
				if !ai.Retryable(err) {
					t.Fatalf("expected internal error to be retryable")
				}
			},
		},
		{
			name: "network",
			err:  errors.New("dial tcp: connection refused"),
			check: func(t *testing.T, err error) {
				var target *ai.TransportError
				if !errors.As(err, &target) || target.StatusCode != 0 {
					t.Fatalf("expected network transport error, got %v", err)
				}
			},
		},
		{
			name: "blocked prompt",
			resp: &genai.GenerateContentResponse{
				PromptFeedback: &genai.GenerateContentResponsePromptFeedback{BlockReason: genai.BlockedReasonSafety},
			},
			check: func(t *testing.T, err error) {
				var target *ai.PolicyRestrictionError
				if !errors.As(err, &target) {
					t.Fatalf("expected policy error, got %v", err)
				}
			},
		},
		{
			name: "empty response",
			resp: &genai.GenerateContentResponse{},
			check: func(t *testing.T, err error) {
				var target *ai.SchemaError
				if !errors.As(err, &target) {
					t.Fatalf("expected schema error, got %v", err)
				}
			},
		},
		{
			name: "not json",
			resp: textResponse("I could not find a profile in this text."),
			check: func(t *testing.T, err error) {
				var target *ai.SchemaError
				if !errors.As(err, &target) {
					t.Fatalf("expected schema error, got %v", err)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			g := newGenerator(&fakeModels{resp: tt.resp, err: tt.err}, "gemini-pro", 0, zap.NewNop())
			result, err := g.Extract(context.Background(), "Name: Ali")
			if result != nil {
				t.Fatalf("expected no result, got %+v", result)
			}
			tt.check(t, err)
		})
	}
}
