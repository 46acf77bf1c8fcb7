package secrets

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	keyFile := filepath.Join(dir, "key")
	if err := os.WriteFile(keyFile, []byte("  from-file\n"), 0o600); err != nil {
		t.Fatalf("write key file: %v", err)
	}
	emptyFile := filepath.Join(dir, "empty")
	if err := os.WriteFile(emptyFile, []byte("\n"), 0o600); err != nil {
		t.Fatalf("write empty file: %v", err)
	}

	env := map[string]string{"PRIMARY_KEY": "  ", "SECONDARY_KEY": "from-env"}
	lookupEnv = func(key string) (string, bool) {
		value, ok := env[key]
		return value, ok
	}
	t.Cleanup(func() { lookupEnv = os.LookupEnv })

	tests := []struct {
		name    string
		src     Source
		expect  string
		errPart string
	}{
		{
			name:   "file wins over value",
			src:    Source{Name: "api key", Value: "inline", File: keyFile},
			expect: "from-file",
		},
		{
			name:   "value wins over env",
			src:    Source{Name: "api key", Value: " inline ", Env: []string{"SECONDARY_KEY"}},
			expect: "inline",
		},
		{
			name:   "first non-empty env",
			src:    Source{Name: "api key", Env: []string{"MISSING_KEY", "PRIMARY_KEY", "SECONDARY_KEY"}},
			expect: "from-env",
		},
		{
			name:    "empty file",
			src:     Source{Name: "api key", File: emptyFile},
			errPart: "is empty",
		},
		{
			name:    "missing file",
			src:     Source{Name: "api key", File: filepath.Join(dir, "absent")},
			errPart: "reading api key from file",
		},
		{
			name:    "nothing configured",
			src:     Source{Env: []string{"MISSING_KEY"}},
			errPart: "secret is not configured (checked MISSING_KEY)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Load(tt.src)
			if tt.errPart != "" {
				if err == nil || !strings.Contains(err.Error(), tt.errPart) {
					t.Fatalf("expected error containing %q, got %v", tt.errPart, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expect {
				t.Fatalf("expected %q, got %q", tt.expect, got)
			}
		})
	}
}
