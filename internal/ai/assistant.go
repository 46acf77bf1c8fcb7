package ai

import (
	"context"
	"strconv"
	"strings"

	"github.com/spigell/profile-drafter/internal/normalize"
)

// Confidence is the trust label attached to a field returned by an inference provider.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// DefaultOverallConfidence is used when a response carries no usable overall score.
const DefaultOverallConfidence = 50

// ParseConfidence maps a provider label onto one of the three known levels.
// Anything unrecognised is treated as low.
func ParseConfidence(s string) Confidence {
	label := strings.ToLower(strings.TrimSpace(s))
	switch Confidence(label) {
	case ConfidenceHigh, ConfidenceMedium, ConfidenceLow:
		return Confidence(label)
	}

	if score, err := strconv.ParseFloat(label, 64); err == nil {
		if score > 1 {
			score /= 100
		}
		switch {
		case score >= 0.8:
			return ConfidenceHigh
		case score >= 0.5:
			return ConfidenceMedium
		default:
			return ConfidenceLow
		}
	}

	switch {
	case strings.Contains(label, "high"):
		return ConfidenceHigh
	case strings.Contains(label, "med"):
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// FieldExtraction is one field as interpreted by the inference provider.
type FieldExtraction struct {
	Value         string
	Confidence    Confidence
	Reasoning     string
	SourceSnippet string
}

// Result is the parsed outcome of one inference call.
type Result struct {
	Fields map[string]FieldExtraction
	// Lists keeps the original shape of array-valued fields for normalization.
	Lists             map[string]normalize.Value
	OverallConfidence int
	Suggestions       []string
	Warnings          []string
	Raw               string
}

// Extractor interprets raw profile text through a remote inference service.
type Extractor interface {
	Extract(ctx context.Context, text string) (*Result, error)
	Provider() string
	Model() string
}
