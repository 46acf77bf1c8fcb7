package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/spigell/profile-drafter/internal/ai"
	"github.com/spigell/profile-drafter/internal/logger"
	"github.com/spigell/profile-drafter/internal/utils"
)

const (
	// ProviderName identifies this provider in configuration and logs.
	ProviderName = "gemini"

	DefaultModel = "gemini-2.5-flash"

	defaultMaxLogLength = 200
	temperature         = 0.1
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Generator implements ai.Extractor on top of the Gemini API.
type Generator struct {
	models    contentGenerator
	model     string
	logger    *zap.Logger
	maxLogLen int
}

var _ ai.Extractor = (*Generator)(nil)

// NewGenerator creates a Generator configured for the Gemini API backend.
func NewGenerator(ctx context.Context, apiKey, model string, maxLogLength int, log *zap.Logger) (*Generator, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return newGenerator(client.Models, model, maxLogLength, log), nil
}

func newGenerator(models contentGenerator, model string, maxLogLength int, log *zap.Logger) *Generator {
	if model = strings.TrimSpace(model); model == "" {
		model = DefaultModel
	}
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	return &Generator{
		models:    models,
		model:     model,
		logger:    logger.WithCommonFields(log, ProviderName, model),
		maxLogLen: maxLogLength,
	}
}

// Provider returns the provider identifier.
func (g *Generator) Provider() string { return ProviderName }

// Model returns the configured model identifier.
func (g *Generator) Model() string {
	if g == nil {
		return ""
	}
	return g.model
}

// Extract sends text for interpretation and parses the returned JSON object.
func (g *Generator) Extract(ctx context.Context, text string) (*ai.Result, error) {
	if g == nil || g.models == nil {
		return nil, errors.New("gemini generator is not initialized")
	}

	log := g.logger.With(zap.String(logger.FieldRequestID, uuid.New().String()))
	start := time.Now()

	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Role:  genai.RoleUser,
			Parts: []*genai.Part{{Text: ai.Instruction()}},
		},
		Temperature:      genai.Ptr[float32](temperature),
		ResponseMIMEType: "application/json",
	}
	contents := []*genai.Content{{
		Role:  genai.RoleUser,
		Parts: []*genai.Part{{Text: text}},
	}}

	log.Debug("gemini generate content request",
		zap.Int("text_length", utf8.RuneCountInString(text)),
		zap.String("text_preview", utils.PreviewForLog(text, g.maxLogLen)),
	)

	resp, err := g.models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		log.Debug("gemini request failed", zap.Error(err), zap.Duration("elapsed", time.Since(start)))
		return nil, classify(err)
	}

	if resp != nil && resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		reason := strings.TrimSpace(fmt.Sprintf("%s %s", resp.PromptFeedback.BlockReason, resp.PromptFeedback.BlockReasonMessage))
		return nil, &ai.PolicyRestrictionError{
			StatusCode: http.StatusOK,
			Body:       reason,
			Hint:       "the model refused this profile text (" + reason + "); review the text or configure a different model",
		}
	}

	output := responseText(resp)
	log.Debug("gemini generate content response",
		zap.Int("response_length", utf8.RuneCountInString(output)),
		zap.Duration("elapsed", time.Since(start)),
		zap.String("response_preview", utils.PreviewForLog(output, g.maxLogLen)),
	)

	if output == "" {
		return nil, &ai.SchemaError{Err: errors.New("gemini api returned empty response")}
	}

	return ai.ParseResult(output)
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}

	// Only the first candidate is used; others are alternative answers.
	candidate := resp.Candidates[0]
	if candidate == nil || candidate.Content == nil {
		return ""
	}

	var builder strings.Builder
	for _, part := range candidate.Content.Parts {
		if part == nil {
			continue
		}
		text := strings.TrimSpace(part.Text)
		if text == "" {
			continue
		}
		if builder.Len() > 0 {
			builder.WriteString("\n")
		}
		builder.WriteString(text)
	}

	return strings.TrimSpace(builder.String())
}

// classify maps Gemini API failures onto the shared error taxonomy.
func classify(err error) error {
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		return &ai.TransportError{Err: err}
	}

	message := apiErr.Message
	if apiErr.Status != "" {
		message = apiErr.Status + ": " + message
	}

	// Gemini reports invalid keys as 400 INVALID_ARGUMENT.
	if (apiErr.Code == http.StatusBadRequest || apiErr.Code == http.StatusForbidden) &&
		strings.Contains(strings.ToLower(apiErr.Message), "api key") {
		return &ai.AuthError{StatusCode: apiErr.Code, Body: message}
	}

	if classified := ai.ClassifyStatus(apiErr.Code, []byte(message)); classified != nil {
		return classified
	}
	return &ai.TransportError{StatusCode: apiErr.Code, Body: message, Err: err}
}
