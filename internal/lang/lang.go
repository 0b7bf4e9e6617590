// Package lang resolves the synthesis locale from layered hints.
package lang

import (
	"context"
	"os"
	"runtime"
	"strings"

	"github.com/iCaptainNemo/local-voice/internal/run"
)

// Fallback is returned when every candidate in the chain is unusable.
const Fallback = "en-us"

// Normalize maps a raw locale hint onto a supported synthesis locale:
// lower-cased, underscores become hyphens, "es*" collapses to "es" and
// "en*" to "en-us". Returns "" for unsupported hints so the resolver can
// move on to the next candidate.
func Normalize(raw string) string {
	v := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(raw), "_", "-"))
	switch {
	case strings.HasPrefix(v, "es"):
		return "es"
	case strings.HasPrefix(v, "en"):
		return Fallback
	}
	return ""
}

// Resolver walks the candidate chain in priority order; the first
// normalizable hint wins. Resolve never fails — the worst case is Fallback.
type Resolver struct {
	Getenv     func(string) string          // defaults to os.Getenv
	ConfigHint func() string                // locale hint from the shared config
	OSLocale   func(context.Context) string // OS-detected locale, may be nil
}

func (r Resolver) Resolve(ctx context.Context, explicit string) string {
	getenv := r.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}

	candidates := []func() string{
		func() string { return explicit },
		func() string { return getenv("LOCAL_TTS_LANG") },
		func() string {
			if r.ConfigHint == nil {
				return ""
			}
			return r.ConfigHint()
		},
		func() string { return getenv("OPENCLAW_LOCALE") },
		func() string {
			if r.OSLocale == nil {
				return ""
			}
			return r.OSLocale(ctx)
		},
	}
	for _, candidate := range candidates {
		if n := Normalize(candidate()); n != "" {
			return n
		}
	}
	return Fallback
}

// DetectOSLocale probes the operating system for its UI locale: a quiet
// PowerShell call on Windows, `defaults read` on macOS, LC_ALL/LANG
// elsewhere (and as the final fallback when the probes yield nothing).
func DetectOSLocale(runner run.Runner) func(context.Context) string {
	return func(ctx context.Context) string {
		switch runtime.GOOS {
		case "windows":
			args := []string{"-NoProfile", "-Command", "[System.Globalization.CultureInfo]::CurrentUICulture.Name"}
			if res, err := runner.Run(ctx, "powershell", args, run.Opts{Quiet: true}); err == nil {
				if v := strings.TrimSpace(res.Stdout); v != "" {
					return v
				}
			}
		case "darwin":
			if res, err := runner.Run(ctx, "defaults", []string{"read", "-g", "AppleLocale"}, run.Opts{Quiet: true}); err == nil {
				if v := strings.TrimSpace(res.Stdout); v != "" {
					return v
				}
			}
		}
		if v := os.Getenv("LC_ALL"); v != "" {
			return v
		}
		return os.Getenv("LANG")
	}
}
