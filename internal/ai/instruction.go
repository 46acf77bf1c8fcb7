package ai

import (
	_ "embed"
	"strings"
)

//go:embed instructions.md
var instructions string

// Instruction returns the system instruction sent with every extraction request.
func Instruction() string {
	return strings.TrimSpace(instructions)
}
