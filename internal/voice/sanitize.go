package voice

import (
	"regexp"
	"strings"
)

var invalidVoiceChars = regexp.MustCompile(`[^a-z0-9_-]+`)

// SanitizeName converts a user-provided voice name into a safe profile
// identifier: lower-cased, runs of disallowed characters collapsed to a
// single hyphen, leading/trailing hyphens trimmed. An empty result becomes
// "voice". Idempotent.
func SanitizeName(name string) string {
	lower := strings.ToLower(strings.TrimSpace(name))
	out := invalidVoiceChars.ReplaceAllString(lower, "-")
	out = strings.Trim(out, "-")
	if out == "" {
		return "voice"
	}
	return out
}
