package tts

import (
	"fmt"
	"strings"
)

// PreflightError aggregates every failed environment check for a backend.
// Any single issue still fails the whole preflight; collecting them all
// gives the operator the complete remediation list in one pass.
type PreflightError struct {
	Backend Backend
	Issues  []string
}

func (e *PreflightError) Error() string {
	return fmt.Sprintf("%s preflight failed:\n- %s", e.Backend, strings.Join(e.Issues, "\n- "))
}
