package speaker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/iCaptainNemo/local-voice/internal/channels"
	"github.com/iCaptainNemo/local-voice/internal/stt"
	"github.com/iCaptainNemo/local-voice/internal/tts"
	"github.com/iCaptainNemo/local-voice/internal/voice"
)

// ErrConsentRequired gates the clone flow: without explicit consent nothing
// runs — no transcription, no registration, no file mutation.
var ErrConsentRequired = errors.New("consent required: rerun with --consent yes (confirming you have rights/permission to clone this voice)")

// CloneRequest is one voice-clone invocation. ReferenceText, when set,
// skips transcription of the sample. Target is optional; when present the
// flow reports progress and outcome there best-effort.
type CloneRequest struct {
	InputPath     string
	VoiceName     string
	Language      string
	ReferenceText string
	Consent       bool
	Kind          channels.Kind
	Target        string
	Account       string
}

type CloneResult struct {
	Voice      string
	Transcript string
}

// CloneVoice registers a new voice profile with the qwen engine from a
// reference sample. Notification failures never mask the real outcome.
func (s *Speaker) CloneVoice(ctx context.Context, req CloneRequest) (*CloneResult, error) {
	if !req.Consent {
		return nil, ErrConsentRequired
	}
	if req.InputPath == "" || req.VoiceName == "" {
		return nil, errors.New("missing input audio or voice name")
	}
	if !s.Prober.Exists(req.InputPath) {
		return nil, fmt.Errorf("sample audio not found: %s (record a 10-30s clip first)", req.InputPath)
	}

	engine, ok := s.Engines.Engine(tts.BackendQwen)
	if !ok {
		return nil, errors.New("voice cloning backend unavailable")
	}
	registrar, ok := engine.(tts.VoiceRegistrar)
	if !ok {
		return nil, errors.New("voice cloning backend unavailable")
	}

	notify := s.notifier(ctx, req.Kind, req.Target, req.Account)

	transcript := strings.TrimSpace(req.ReferenceText)
	if transcript == "" {
		notify.typing()
		notify.message("Please hold… transcribing your sample and creating the voice profile.")

		tr, err := s.Transcriber.Transcribe(ctx, req.InputPath)
		if err != nil {
			notify.message("Voice cloning failed: " + err.Error())
			return nil, err
		}
		transcript = tr.Text
		if transcript == "" {
			err := fmt.Errorf("%w from sample audio; try a clearer 10-30s sample", stt.ErrNoTranscript)
			notify.message("Voice cloning failed: " + err.Error())
			return nil, err
		}
	}

	notify.typing()
	name := voice.SanitizeName(req.VoiceName)
	language := req.Language
	if language == "" {
		language = "en"
	}
	if err := registrar.RegisterVoice(ctx, req.InputPath, transcript, name, language); err != nil {
		notify.message("Voice cloning failed: " + err.Error())
		return nil, err
	}

	notify.message(fmt.Sprintf("Voice cloned successfully: profile %q, transcript %q", name, transcript))
	return &CloneResult{Voice: name, Transcript: transcript}, nil
}

// notifier wraps the optional originating channel for best-effort progress
// and outcome messages.
type notifier struct {
	ctx    context.Context
	sender channels.Sender
	target string
}

func (s *Speaker) notifier(ctx context.Context, kind channels.Kind, target, account string) *notifier {
	if target == "" {
		return &notifier{}
	}
	sender, err := s.NewSender(kind, account)
	if err != nil {
		slog.Debug("clone notifications disabled", "error", err)
		return &notifier{}
	}
	return &notifier{ctx: ctx, sender: sender, target: target}
}

func (n *notifier) typing() {
	if n.sender != nil {
		n.sender.SendTyping(n.ctx, n.target)
	}
}

func (n *notifier) message(text string) {
	if n.sender == nil {
		return
	}
	channels.BestEffort("clone status message", func() error {
		_, err := n.sender.SendText(n.ctx, n.target, text)
		return err
	})
}
