package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/codeGROOVE-dev/retry"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/profile-drafter/internal/ai"
	"github.com/spigell/profile-drafter/internal/ai/gemini"
	"github.com/spigell/profile-drafter/internal/ai/openai"
	"github.com/spigell/profile-drafter/internal/extraction"
	"github.com/spigell/profile-drafter/internal/logger"
	"github.com/spigell/profile-drafter/internal/pattern"
	"github.com/spigell/profile-drafter/internal/secrets"
)

const (
	PromptYes = "Yes"
	PromptNo  = "No"
)

// confirm asks the operator whether to fall back; tests replace it.
var confirm = confirmFallback

var extractCmd = &cobra.Command{
	Use:   "extract [file|-]",
	Short: "Extract a structured profile draft from text, html or stdin",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		extract(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringP("mode", "m", "", "extraction mode: deterministic or assisted")
	extractCmd.Flags().StringP("output", "o", "", "output format: json or yaml")
	extractCmd.Flags().Bool("fallback", false, "use deterministic extraction when assisted extraction fails")
	extractCmd.Flags().BoolP("yes", "y", false, "do not ask for confirmation before falling back")
	extractCmd.Flags().String("provider", "", "inference provider: openai or gemini")
	extractCmd.Flags().String("model", "", "inference model identifier")

	viper.BindPFlag("mode", extractCmd.Flags().Lookup("mode"))
	viper.BindPFlag("output", extractCmd.Flags().Lookup("output"))
	viper.BindPFlag("fallback", extractCmd.Flags().Lookup("fallback"))
	viper.BindPFlag("ai.provider", extractCmd.Flags().Lookup("provider"))
	viper.BindPFlag("ai.model", extractCmd.Flags().Lookup("model"))
}

func extract(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Debug("starting the profile-drafter",
		zap.String("version", version),
		zap.String("mode", config.Mode),
		zap.String("output", config.Output),
	)

	mode, err := extraction.ParseMode(config.Mode)
	if err != nil {
		logger.Fatal("parsing mode", zap.Error(err))
	}

	text, err := readInput(args, cmd.InOrStdin())
	if err != nil {
		logger.Fatal("reading input", zap.Error(err))
	}

	deps := extraction.Deps{Pattern: pattern.New(), Logger: logger}
	if mode == extraction.ModeAssisted {
		deps.Inference, err = newInference(ctx, config.AI, logger)
		if err != nil {
			logger.Fatal("creating an inference provider", zap.Error(err))
		}
	}
	orchestrator := extraction.New(deps)

	outcome, err := runWithRetry(ctx, orchestrator, text, mode, config.AI, logger)
	if err != nil {
		autoApprove, _ := cmd.Flags().GetBool("yes")
		if !shouldFallback(err, mode, config.Fallback, autoApprove) {
			logger.Fatal("extraction failed", append([]zap.Field{zap.Error(err)}, errorHint(err)...)...)
		}

		logger.Warn("falling back to deterministic extraction", zap.Error(err))
		assistedErr := err
		outcome, err = orchestrator.Run(ctx, text, extraction.ModeDeterministic)
		if err != nil {
			logger.Fatal("deterministic extraction failed", zap.Error(err))
		}
		outcome.Warnings = append(outcome.Warnings, "assisted extraction failed, deterministic result used: "+assistedErr.Error())
	}

	if err := writeOutcome(cmd.OutOrStdout(), outcome, config.Output); err != nil {
		logger.Fatal("writing the draft", zap.Error(err))
	}
	printReport(cmd.ErrOrStderr(), outcome)
}

func newInference(ctx context.Context, cfg *AIConfig, logger *zap.Logger) (ai.Extractor, error) {
	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))

	switch provider {
	case openai.ProviderName:
		apiKey, err := secrets.Load(secrets.Source{
			Name: "openai api key",
			File: cfg.APIKeyFile,
			Env:  []string{"OPENAI_API_KEY"},
		})
		if err != nil {
			return nil, fmt.Errorf("%w (set ai.api-key-file, PROFILE_DRAFTER_API_KEY_FILE or OPENAI_API_KEY)", err)
		}

		return openai.New(openai.Config{
			APIKey:       apiKey,
			BaseURL:      cfg.BaseURL,
			Model:        cfg.Model,
			UserAgent:    app + "/" + version,
			MaxLogLength: cfg.MaxLogLength,
		}, logger)
	case gemini.ProviderName:
		apiKey, err := secrets.Load(secrets.Source{
			Name: "gemini api key",
			File: cfg.APIKeyFile,
			Env:  []string{"GEMINI_API_KEY"},
		})
		if err != nil {
			return nil, fmt.Errorf("%w (set ai.api-key-file, PROFILE_DRAFTER_API_KEY_FILE or GEMINI_API_KEY)", err)
		}

		return gemini.NewGenerator(ctx, apiKey, cfg.Model, cfg.MaxLogLength, logger)
	default:
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}
}

// runWithRetry retries transient inference failures. Every attempt gets its own timeout.
func runWithRetry(ctx context.Context, o *extraction.Orchestrator, text string, mode extraction.Mode, cfg *AIConfig, logger *zap.Logger) (*extraction.Outcome, error) {
	var outcome *extraction.Outcome

	err := retry.Do(
		func() error {
			attemptCtx := ctx
			if cfg.Timeout > 0 {
				var cancel context.CancelFunc
				attemptCtx, cancel = context.WithTimeout(ctx, cfg.Timeout)
				defer cancel()
			}

			var err error
			outcome, err = o.Run(attemptCtx, text, mode)
			if err != nil && !ai.Retryable(err) {
				return retry.Unrecoverable(err)
			}
			return err
		},
		retry.Context(ctx),
		retry.Attempts(uint(cfg.MaxRetries)+1),
		retry.Delay(time.Second),
		retry.MaxDelay(30*time.Second),
		retry.DelayType(retry.FullJitterBackoffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			logger.Warn("retrying assisted extraction", zap.Uint("attempt", n+1), zap.Error(err))
		}),
	)

	return outcome, err
}

// shouldFallback decides whether a failed assisted run is retried deterministically.
func shouldFallback(err error, mode extraction.Mode, configured, autoApprove bool) bool {
	if mode != extraction.ModeAssisted || errors.Is(err, context.Canceled) {
		return false
	}
	var validation *extraction.ValidationError
	if errors.As(err, &validation) {
		return false
	}
	if configured || autoApprove {
		return true
	}
	return confirm(err)
}

func confirmFallback(err error) bool {
	prompt := promptui.Select{
		Label: fmt.Sprintf("Assisted extraction failed (%v). Use deterministic extraction?", err),
		Items: []string{PromptYes, PromptNo},
	}

	_, selected, perr := prompt.Run()
	return perr == nil && selected == PromptYes
}

func errorHint(err error) []zap.Field {
	var (
		auth   *ai.AuthError
		policy *ai.PolicyRestrictionError
		schema *ai.SchemaError
	)
	switch {
	case errors.As(err, &auth):
		return []zap.Field{zap.String("hint", "check the api key set via ai.api-key-file or the provider environment variable")}
	case errors.As(err, &policy):
		return []zap.Field{zap.String("hint", policy.Hint)}
	case errors.As(err, &schema):
		return []zap.Field{zap.String("hint", "the model did not return a json object; try another model or --fallback")}
	case ai.Retryable(err):
		return []zap.Field{zap.String("hint", "the provider is unavailable; raise ai.max-retries or use --fallback")}
	default:
		return nil
	}
}
