package speaker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/iCaptainNemo/local-voice/internal/channels"
	"github.com/iCaptainNemo/local-voice/internal/tts"
	"github.com/iCaptainNemo/local-voice/internal/voice"
)

// SpeakRequest is one end-to-end synthesize-and-deliver invocation.
type SpeakRequest struct {
	Text            string
	Kind            channels.Kind
	Target          string
	Account         string
	UserID          string
	Voice           string // explicit voice override
	Lang            string // explicit language hint
	Backend         string // raw; empty falls through preference/env/default
	FallbackBackend string // raw; empty or "none" disables fallback
}

// SpeakResult reports which delivery tier succeeded and the platform
// message ID.
type SpeakResult struct {
	Tier channels.Tier
	ID   string
}

// Speak runs the speak flow: target preflight → language and backend
// resolution → synthesis with one-hop backend fallback → Opus encode →
// three-tier delivery. Temp artifacts are removed on every exit path.
func (s *Speaker) Speak(ctx context.Context, req SpeakRequest) (*SpeakResult, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, errors.New("missing text")
	}
	if err := channels.PreflightTarget(req.Kind, req.Target, req.Account, s.Config); err != nil {
		return nil, err
	}

	sender, err := s.NewSender(req.Kind, req.Account)
	if err != nil {
		return nil, err
	}

	language := s.ResolveLang(ctx, req.Lang)
	pref := s.Store.UserPreference(req.UserID)

	primary, err := tts.ParseBackend(firstNonEmpty(req.Backend, pref.Backend, s.getenv("LOCAL_TTS_BACKEND"), string(tts.BackendKokoro)))
	if err != nil {
		return nil, err
	}
	var fallback tts.Backend
	if raw := firstNonEmpty(req.FallbackBackend, s.getenv("LOCAL_TTS_FALLBACK_BACKEND")); raw != "" && !strings.EqualFold(raw, "none") {
		if fallback, err = tts.ParseBackend(raw); err != nil {
			return nil, err
		}
	}

	if err := os.MkdirAll(s.WorkDir, 0o755); err != nil {
		return nil, fmt.Errorf("create work dir: %w", err)
	}
	name := uuid.NewString()
	wav := filepath.Join(s.WorkDir, "tts-"+name+".wav")
	ogg := filepath.Join(s.WorkDir, "tts-"+name+".ogg")
	defer os.Remove(wav)
	defer os.Remove(ogg)

	synth := func(backend tts.Backend) error {
		engine, ok := s.Engines.Engine(backend)
		if !ok {
			return fmt.Errorf("unsupported backend: %s", backend)
		}
		if backend == tts.BackendQwen {
			// refresh the registry snapshot so freshly cloned voices are
			// visible; never blocks synthesis
			if _, err := s.Store.SyncVoices(); err != nil {
				slog.Debug("voices state sync skipped", "error", err)
			}
		}
		voiceID := s.Store.ResolveVoice(backend, s.preferredVoice(backend, req.Voice, pref), language)
		if err := engine.Preflight(ctx); err != nil {
			return err
		}
		sender.SendTyping(ctx, req.Target)
		return engine.Synthesize(ctx, tts.SynthRequest{
			Text:       req.Text,
			Voice:      voiceID,
			Lang:       language,
			OutputPath: wav,
		})
	}

	if err := synth(primary); err != nil {
		if fallback == "" || fallback == primary {
			return nil, err
		}
		slog.Warn("primary backend failed, trying fallback", "backend", primary, "fallback", fallback, "error", err)
		if err := synth(fallback); err != nil {
			return nil, err
		}
	}

	sender.SendTyping(ctx, req.Target)
	if err := tts.EncodeToOgg(ctx, s.Runner, s.Getenv, wav, ogg); err != nil {
		return nil, err
	}
	sender.SendTyping(ctx, req.Target)

	tier, id, err := channels.Deliver(ctx, sender, req.Target, ogg)
	if err != nil {
		return nil, err
	}
	return &SpeakResult{Tier: tier, ID: id}, nil
}

// preferredVoice picks the explicit override first. Stored per-user voices
// are qwen profile names; the Kokoro set is fixed and resolved from the
// profile map instead.
func (s *Speaker) preferredVoice(backend tts.Backend, explicit string, pref voice.Preference) string {
	if explicit != "" {
		return explicit
	}
	if backend == tts.BackendQwen {
		return pref.Voice
	}
	return ""
}
