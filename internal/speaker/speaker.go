// Package speaker composes language and voice resolution, backend
// synthesis with one-hop fallback, transcoding, and channel delivery into
// the end-to-end speak and clone-voice flows.
package speaker

import (
	"context"
	"os"
	"path/filepath"

	"github.com/iCaptainNemo/local-voice/internal/channels"
	"github.com/iCaptainNemo/local-voice/internal/config"
	"github.com/iCaptainNemo/local-voice/internal/lang"
	"github.com/iCaptainNemo/local-voice/internal/run"
	"github.com/iCaptainNemo/local-voice/internal/stt"
	"github.com/iCaptainNemo/local-voice/internal/tts"
	"github.com/iCaptainNemo/local-voice/internal/voice"
)

// Speaker holds the collaborators for the end-to-end flows. The function
// fields are swappable in tests.
type Speaker struct {
	Config      config.Provider
	Runner      run.Runner
	Prober      run.Prober
	Store       *voice.Store
	Engines     *tts.Manager
	Transcriber *stt.Transcriber
	WorkDir     string
	Getenv      func(string) string // defaults to os.Getenv

	NewSender   func(kind channels.Kind, account string) (channels.Sender, error)
	ResolveLang func(ctx context.Context, explicit string) string
}

// New wires the production collaborators.
func New(cfg config.Provider, runner run.Runner, prober run.Prober, store *voice.Store, workDir string) *Speaker {
	engines := tts.NewManager()
	engines.Register(&tts.Kokoro{Runner: runner, Prober: prober})
	engines.Register(&tts.Qwen{Runner: runner, Prober: prober})

	resolver := lang.Resolver{
		ConfigHint: cfg.LocaleHint,
		OSLocale:   lang.DetectOSLocale(runner),
	}

	if workDir == "" {
		workDir = DefaultWorkDir()
	}

	return &Speaker{
		Config:      cfg,
		Runner:      runner,
		Prober:      prober,
		Store:       store,
		Engines:     engines,
		Transcriber: &stt.Transcriber{Runner: runner},
		WorkDir:     workDir,
		NewSender: func(kind channels.Kind, account string) (channels.Sender, error) {
			return channels.NewSender(kind, cfg, account)
		},
		ResolveLang: resolver.Resolve,
	}
}

// DefaultWorkDir is the per-request synthesis artifact directory under the
// OpenClaw workspace.
func DefaultWorkDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".openclaw", "workspace", "_tts-out")
}

func (s *Speaker) getenv(key string) string {
	if s.Getenv != nil {
		return s.Getenv(key)
	}
	return os.Getenv(key)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
