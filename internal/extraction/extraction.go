// Package extraction turns raw profile text into a canonical draft, either with the
// deterministic pattern cascade or through a remote inference provider, and reconciles
// the result into one consistent shape.
package extraction

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spigell/profile-drafter/internal/ai"
	"github.com/spigell/profile-drafter/internal/logger"
	"github.com/spigell/profile-drafter/internal/normalize"
	"github.com/spigell/profile-drafter/internal/pattern"
	"github.com/spigell/profile-drafter/internal/profile"
)

// Mode selects the extraction strategy.
type Mode string

const (
	ModeDeterministic Mode = "deterministic"
	ModeAssisted      Mode = "assisted"
)

// Modes lists the supported modes.
var Modes = []Mode{ModeDeterministic, ModeAssisted}

// ParseMode resolves a mode name, case-insensitively.
func ParseMode(s string) (Mode, error) {
	name := Mode(strings.ToLower(strings.TrimSpace(s)))
	for _, mode := range Modes {
		if name == mode {
			return mode, nil
		}
	}
	return "", &ValidationError{Field: "mode", Reason: fmt.Sprintf("unknown mode %q (expected deterministic or assisted)", s)}
}

// ValidationError reports unusable input, detected before any work is done.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Deps are the collaborators of an Orchestrator.
type Deps struct {
	// Pattern is the deterministic extractor. A default one is used when nil.
	Pattern *pattern.Extractor
	// Inference serves the assisted mode. It may be nil when only the deterministic
	// mode is used.
	Inference ai.Extractor
	Logger    *zap.Logger
}

// Outcome is the result of one extraction run.
type Outcome struct {
	Mode              Mode                     `json:"mode" yaml:"mode"`
	Draft             *profile.Draft           `json:"draft" yaml:"draft"`
	Confidence        map[string]ai.Confidence `json:"confidence" yaml:"confidence"`
	OverallConfidence int                      `json:"overall_confidence" yaml:"overall_confidence"`
	Suggestions       []string                 `json:"suggestions" yaml:"suggestions"`
	Warnings          []string                 `json:"warnings" yaml:"warnings"`
}

// Orchestrator runs extractions. It holds no per-run state and is safe for concurrent use.
type Orchestrator struct {
	pattern   *pattern.Extractor
	inference ai.Extractor
	logger    *zap.Logger
	steps     []reconcileStep
}

// New returns an Orchestrator for deps.
func New(deps Deps) *Orchestrator {
	p := deps.Pattern
	if p == nil {
		p = pattern.New()
	}
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return &Orchestrator{
		pattern:   p,
		inference: deps.Inference,
		logger:    log,
		steps:     defaultSteps(),
	}
}

// Run extracts a draft from text. Assisted failures are returned as they are; the
// caller decides whether to retry or to fall back to the deterministic mode.
func (o *Orchestrator) Run(ctx context.Context, text string, mode Mode) (*Outcome, error) {
	if strings.TrimSpace(text) == "" {
		return nil, &ValidationError{Field: "text", Reason: "input text is empty"}
	}

	log := logger.WithFields(o.logger, logger.ExtractionFields(string(mode), uuid.New().String())...)
	start := time.Now()

	var (
		outcome *Outcome
		err     error
	)
	switch mode {
	case ModeDeterministic:
		outcome = o.deterministic(text)
	case ModeAssisted:
		if o.inference == nil {
			return nil, &ValidationError{Field: "mode", Reason: "assisted mode requires an inference provider"}
		}
		log = logger.WithFields(log, logger.CommonFields(o.inference.Provider(), o.inference.Model())...)
		outcome, err = o.assisted(ctx, text, log)
		if err != nil {
			log.Warn("assisted extraction failed", zap.Error(err), zap.Duration("elapsed", time.Since(start)))
			return nil, err
		}
	default:
		return nil, &ValidationError{Field: "mode", Reason: fmt.Sprintf("unknown mode %q", mode)}
	}

	warnings := o.reconcile(outcome.Draft, log)
	outcome.Warnings = profile.Unique(append(outcome.Warnings, warnings...))

	log.Info("extraction finished",
		zap.Int("filled_fields", filled(outcome.Draft)),
		zap.Int("warnings", len(outcome.Warnings)),
		zap.Int("overall_confidence", outcome.OverallConfidence),
		zap.Duration("elapsed", time.Since(start)),
	)
	return outcome, nil
}

func (o *Orchestrator) deterministic(text string) *Outcome {
	return &Outcome{
		Mode:        ModeDeterministic,
		Draft:       o.pattern.Extract(text),
		Confidence:  map[string]ai.Confidence{},
		Suggestions: []string{},
		Warnings:    []string{},
	}
}

func (o *Orchestrator) assisted(ctx context.Context, text string, log *zap.Logger) (*Outcome, error) {
	result, err := o.inference.Extract(ctx, text)
	if err != nil {
		return nil, err
	}

	draft := profile.New()
	draft.RawText = text
	confidence := make(map[string]ai.Confidence, len(result.Fields))

	for _, name := range profile.ScalarFields {
		if field, ok := result.Fields[name]; ok {
			*draft.Scalar(name) = strings.TrimSpace(field.Value)
			confidence[name] = field.Confidence
		}
	}

	for _, name := range profile.ListFields {
		value, ok := result.Lists[name]
		if !ok {
			value = normalize.String(result.Fields[name].Value)
		}
		*draft.List(name) = normalize.ToStringList(value)
		if field, ok := result.Fields[name]; ok {
			confidence[name] = field.Confidence
		}
	}

	for name := range result.Fields {
		if draft.Scalar(name) == nil && draft.List(name) == nil {
			log.Debug("ignoring unknown field from inference provider", zap.String("field", name))
		}
	}

	return &Outcome{
		Mode:              ModeAssisted,
		Draft:             draft,
		Confidence:        confidence,
		OverallConfidence: result.OverallConfidence,
		Suggestions:       nonNil(result.Suggestions),
		Warnings:          nonNil(result.Warnings),
	}, nil
}

func filled(d *profile.Draft) int {
	n := 0
	for _, name := range profile.ScalarFields {
		if *d.Scalar(name) != "" {
			n++
		}
	}
	for _, name := range profile.ListFields {
		if len(*d.List(name)) > 0 {
			n++
		}
	}
	return n
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
