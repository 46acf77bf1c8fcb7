package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/spigell/profile-drafter/internal/ai"
	"github.com/spigell/profile-drafter/internal/extraction"
	"github.com/spigell/profile-drafter/internal/profile"
)

// readInput reads the profile text from the named file, or from stdin when no file
// or "-" is given. HTML documents are converted to markdown first.
func readInput(args []string, stdin io.Reader) (string, error) {
	var (
		raw  []byte
		name string
		err  error
	)

	if len(args) == 0 || args[0] == "-" {
		raw, err = io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
	} else {
		name = args[0]
		raw, err = os.ReadFile(name)
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", name, err)
		}
	}

	text := string(raw)
	if !isHTML(name, text) {
		return text, nil
	}

	converted, err := md.ConvertString(text)
	if err != nil {
		return "", fmt.Errorf("converting html to text: %w", err)
	}
	return converted, nil
}

func isHTML(name, text string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".html", ".htm":
		return true
	}

	head := strings.ToLower(strings.TrimSpace(text))
	if len(head) > 512 {
		head = head[:512]
	}
	return strings.HasPrefix(head, "<!doctype html") ||
		strings.HasPrefix(head, "<html") ||
		strings.Contains(head, "<body")
}

func writeOutcome(w io.Writer, outcome *extraction.Outcome, format string) error {
	switch format {
	case "", "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(outcome)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(outcome); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

var (
	highColor    = color.New(color.FgGreen)
	mediumColor  = color.New(color.FgYellow)
	lowColor     = color.New(color.FgRed)
	missingColor = color.New(color.FgHiBlack)
)

// printReport writes a short human summary of the draft: every scalar field with its
// confidence, then warnings and suggestions.
func printReport(w io.Writer, outcome *extraction.Outcome) {
	fmt.Fprintf(w, "\nmode: %s", outcome.Mode)
	if outcome.Mode == extraction.ModeAssisted {
		fmt.Fprintf(w, ", overall confidence: %d%%", outcome.OverallConfidence)
	}
	fmt.Fprintln(w)

	for _, name := range profile.ScalarFields {
		value := *outcome.Draft.Scalar(name)
		if value == "" {
			missingColor.Fprintf(w, "  %-26s -\n", name)
			continue
		}

		c := confidenceColor(outcome.Confidence[name])
		if level, ok := outcome.Confidence[name]; ok {
			c.Fprintf(w, "  %-26s %s (%s)\n", name, value, level)
		} else {
			c.Fprintf(w, "  %-26s %s\n", name, value)
		}
	}
	fmt.Fprintf(w, "  %-26s %d\n", "experience", len(outcome.Draft.Experience))

	for _, warning := range outcome.Warnings {
		mediumColor.Fprintf(w, "warning: %s\n", warning)
	}
	for _, suggestion := range outcome.Suggestions {
		fmt.Fprintf(w, "suggestion: %s\n", suggestion)
	}
}

func confidenceColor(level ai.Confidence) *color.Color {
	switch level {
	case ai.ConfidenceHigh:
		return highColor
	case ai.ConfidenceMedium:
		return mediumColor
	case ai.ConfidenceLow:
		return lowColor
	default:
		return color.New(color.Reset)
	}
}
