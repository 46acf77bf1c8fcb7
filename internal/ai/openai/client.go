// Package openai talks to OpenAI-compatible chat completion endpoints, including
// aggregators such as OpenRouter.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spigell/profile-drafter/internal/ai"
	"github.com/spigell/profile-drafter/internal/logger"
	"github.com/spigell/profile-drafter/internal/utils"
)

const (
	// ProviderName identifies this provider in configuration and logs.
	ProviderName = "openai"

	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "gpt-4o-mini"

	defaultUserAgent    = "profile-drafter"
	defaultMaxLogLength = 200
	temperature         = 0.1
)

// Config holds the connection settings of the provider.
type Config struct {
	APIKey       string
	BaseURL      string
	Model        string
	UserAgent    string
	MaxLogLength int
}

// Client implements ai.Extractor on top of the chat completions API.
// It has no timeout of its own; callers bound it through ctx or HTTPClient.
type Client struct {
	HTTPClient *http.Client

	cfg    Config
	logger *zap.Logger
}

var _ ai.Extractor = (*Client)(nil)

// New validates cfg and returns a Client.
func New(cfg Config, log *zap.Logger) (*Client, error) {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	if cfg.APIKey == "" {
		return nil, errors.New("openai api key is required")
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = DefaultModel
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if cfg.MaxLogLength <= 0 {
		cfg.MaxLogLength = defaultMaxLogLength
	}

	return &Client{
		HTTPClient: &http.Client{},
		cfg:        cfg,
		logger:     logger.WithCommonFields(log, ProviderName, cfg.Model),
	}, nil
}

// Provider returns the provider identifier.
func (c *Client) Provider() string { return ProviderName }

// Model returns the configured model identifier.
func (c *Client) Model() string { return c.cfg.Model }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string         `json:"model"`
	Temperature    float64        `json:"temperature"`
	ResponseFormat responseFormat `json:"response_format"`
	Messages       []chatMessage  `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Extract sends text for interpretation and parses the returned JSON object.
func (c *Client) Extract(ctx context.Context, text string) (*ai.Result, error) {
	rid := uuid.New().String()
	start := time.Now()
	log := c.logger.With(zap.String(logger.FieldRequestID, rid))

	body := chatRequest{
		Model:          c.cfg.Model,
		Temperature:    temperature,
		ResponseFormat: responseFormat{Type: "json_object"},
		Messages: []chatMessage{
			{Role: "system", Content: ai.Instruction()},
			{Role: "user", Content: text},
		},
	}

	log.Debug("openai chat completion request",
		zap.Int("text_length", utf8.RuneCountInString(text)),
		zap.String("text_preview", utils.PreviewForLog(text, c.cfg.MaxLogLength)),
	)

	raw, status, err := c.post(ctx, c.cfg.BaseURL+"/chat/completions", body)
	if err != nil {
		log.Debug("openai request failed", zap.Error(err), zap.Duration("elapsed", time.Since(start)))
		return nil, &ai.TransportError{Err: err}
	}

	log.Debug("openai chat completion response",
		zap.Int("status", status),
		zap.Int("bytes", len(raw)),
		zap.Duration("elapsed", time.Since(start)),
		zap.String("response_preview", utils.PreviewForLog(string(raw), c.cfg.MaxLogLength)),
	)

	if err := ai.ClassifyStatus(status, raw); err != nil {
		return nil, err
	}

	var cc chatResponse
	if err := json.Unmarshal(raw, &cc); err != nil {
		return nil, &ai.SchemaError{Content: string(raw), Err: err}
	}
	if len(cc.Choices) == 0 {
		return nil, &ai.SchemaError{Content: string(raw), Err: errors.New("no choices in response")}
	}

	result, err := ai.ParseResult(cc.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}

	log.Debug("openai extraction parsed",
		zap.Int("fields", len(result.Fields)),
		zap.Int("overall_confidence", result.OverallConfidence),
		zap.Int("warnings", len(result.Warnings)),
	)
	return result, nil
}
