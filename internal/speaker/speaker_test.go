package speaker

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/iCaptainNemo/local-voice/internal/channels"
	"github.com/iCaptainNemo/local-voice/internal/config"
	"github.com/iCaptainNemo/local-voice/internal/run"
	"github.com/iCaptainNemo/local-voice/internal/stt"
	"github.com/iCaptainNemo/local-voice/internal/tts"
	"github.com/iCaptainNemo/local-voice/internal/voice"
)

// fakeEngine scripts preflight/synthesis outcomes and counts calls.
type fakeEngine struct {
	backend      tts.Backend
	preflightErr error
	synthErr     error
	preflights   int
	synths       int
	lastReq      tts.SynthRequest

	registered  []string
	registerErr error
}

func (e *fakeEngine) Backend() tts.Backend { return e.backend }

func (e *fakeEngine) Preflight(ctx context.Context) error {
	e.preflights++
	return e.preflightErr
}

func (e *fakeEngine) Synthesize(ctx context.Context, req tts.SynthRequest) error {
	e.synths++
	e.lastReq = req
	return e.synthErr
}

func (e *fakeEngine) RegisterVoice(ctx context.Context, inputPath, transcript, voiceName, lang string) error {
	e.registered = append(e.registered, voiceName+"|"+transcript+"|"+lang)
	return e.registerErr
}

// fakeSender records sends; voice tier can be scripted to fail.
type fakeSender struct {
	failVoice bool
	typing    int
	voices    int
	texts     []string
}

func (s *fakeSender) SendTyping(ctx context.Context, target string) { s.typing++ }

func (s *fakeSender) SendVoice(ctx context.Context, target, oggPath string) (string, error) {
	s.voices++
	if s.failVoice {
		return "", errors.New("voice upload rejected")
	}
	return "msg-voice", nil
}

func (s *fakeSender) SendAudio(ctx context.Context, target, filePath string) (string, error) {
	return "msg-audio", nil
}

func (s *fakeSender) SendText(ctx context.Context, target, text string) (string, error) {
	s.texts = append(s.texts, text)
	return "msg-text", nil
}

type okRunner struct{ calls int }

func (r *okRunner) Run(ctx context.Context, command string, args []string, opts run.Opts) (*run.Result, error) {
	r.calls++
	return &run.Result{}, nil
}

type fakeProber struct{ existing map[string]bool }

func (p *fakeProber) Exists(path string) bool { return p.existing[path] }

type fakeConfig struct{}

func (fakeConfig) Load() (*config.Document, error) { return &config.Document{}, nil }
func (fakeConfig) DiscordToken(string) string      { return "tok" }
func (fakeConfig) TelegramToken(string) string     { return "" }
func (fakeConfig) LocaleHint() string              { return "" }

func newTestSpeaker(t *testing.T, sender *fakeSender, engines ...*fakeEngine) *Speaker {
	t.Helper()
	store := voice.NewStore(t.TempDir())
	store.Getenv = func(string) string { return "" }

	mgr := tts.NewManager()
	for _, e := range engines {
		mgr.Register(e)
	}

	return &Speaker{
		Config:  fakeConfig{},
		Runner:  &okRunner{},
		Prober:  &fakeProber{},
		Store:   store,
		Engines: mgr,
		WorkDir: t.TempDir(),
		Getenv:  func(string) string { return "" },
		NewSender: func(kind channels.Kind, account string) (channels.Sender, error) {
			return sender, nil
		},
		ResolveLang: func(ctx context.Context, explicit string) string {
			if explicit != "" {
				return explicit
			}
			return "en-us"
		},
	}
}

func TestSpeakHappyPath(t *testing.T) {
	kokoro := &fakeEngine{backend: tts.BackendKokoro}
	sender := &fakeSender{}
	s := newTestSpeaker(t, sender, kokoro)

	res, err := s.Speak(context.Background(), SpeakRequest{
		Text:   "hello there",
		Kind:   channels.KindDiscord,
		Target: "channel:123",
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Tier != channels.TierVoice || res.ID != "msg-voice" {
		t.Errorf("result = %+v", res)
	}
	if kokoro.synths != 1 {
		t.Errorf("synths = %d, want 1", kokoro.synths)
	}
	if kokoro.lastReq.Voice != voice.DefaultKokoroVoice {
		t.Errorf("voice = %q, want %q", kokoro.lastReq.Voice, voice.DefaultKokoroVoice)
	}
	if kokoro.lastReq.Lang != "en-us" {
		t.Errorf("lang = %q, want en-us", kokoro.lastReq.Lang)
	}
	if sender.typing == 0 {
		t.Error("typing indicator never fired")
	}
}

func TestSpeakMissingText(t *testing.T) {
	s := newTestSpeaker(t, &fakeSender{}, &fakeEngine{backend: tts.BackendKokoro})
	if _, err := s.Speak(context.Background(), SpeakRequest{Text: "   ", Kind: channels.KindDiscord, Target: "1"}); err == nil {
		t.Error("blank text should fail before any work")
	}
}

func TestSpeakPreflightFailureNoFallback(t *testing.T) {
	kokoro := &fakeEngine{
		backend:      tts.BackendKokoro,
		preflightErr: &tts.PreflightError{Backend: tts.BackendKokoro, Issues: []string{"missing kokoro model: /x"}},
	}
	s := newTestSpeaker(t, &fakeSender{}, kokoro)

	_, err := s.Speak(context.Background(), SpeakRequest{
		Text:   "hi",
		Kind:   channels.KindDiscord,
		Target: "channel:1",
	})
	var pf *tts.PreflightError
	if !errors.As(err, &pf) {
		t.Fatalf("err = %v, want *PreflightError", err)
	}
	if kokoro.synths != 0 {
		t.Errorf("synthesis ran %d times after failed preflight", kokoro.synths)
	}
}

func TestSpeakFallbackBackendRunsExactlyOnce(t *testing.T) {
	kokoro := &fakeEngine{
		backend:      tts.BackendKokoro,
		preflightErr: &tts.PreflightError{Backend: tts.BackendKokoro, Issues: []string{"python not runnable: python"}},
	}
	qwen := &fakeEngine{backend: tts.BackendQwen}
	sender := &fakeSender{}
	s := newTestSpeaker(t, sender, kokoro, qwen)

	res, err := s.Speak(context.Background(), SpeakRequest{
		Text:            "hola",
		Kind:            channels.KindDiscord,
		Target:          "channel:1",
		Lang:            "es",
		FallbackBackend: "qwen",
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Tier != channels.TierVoice {
		t.Errorf("tier = %q", res.Tier)
	}
	if kokoro.preflights != 1 || kokoro.synths != 0 {
		t.Errorf("kokoro preflights=%d synths=%d, want 1/0", kokoro.preflights, kokoro.synths)
	}
	if qwen.preflights != 1 || qwen.synths != 1 {
		t.Errorf("qwen preflights=%d synths=%d, want 1/1", qwen.preflights, qwen.synths)
	}
	if qwen.lastReq.Lang != "es" {
		t.Errorf("fallback lang = %q, want es", qwen.lastReq.Lang)
	}
}

func TestSpeakFallbackFailureReportsFallbackError(t *testing.T) {
	kokoro := &fakeEngine{backend: tts.BackendKokoro, synthErr: errors.New("kokoro crashed")}
	qwen := &fakeEngine{
		backend:      tts.BackendQwen,
		preflightErr: &tts.PreflightError{Backend: tts.BackendQwen, Issues: []string{"qwen tts command not runnable: tts"}},
	}
	s := newTestSpeaker(t, &fakeSender{}, kokoro, qwen)

	_, err := s.Speak(context.Background(), SpeakRequest{
		Text:            "hi",
		Kind:            channels.KindDiscord,
		Target:          "channel:1",
		FallbackBackend: "qwen",
	})
	if err == nil {
		t.Fatal("expected failure when both backends fail")
	}
	// no second attempt at the primary after fallback fails
	if kokoro.synths != 1 {
		t.Errorf("kokoro synths = %d, want 1", kokoro.synths)
	}
	if !strings.Contains(err.Error(), "qwen") {
		t.Errorf("err %q should carry the fallback's error", err)
	}
}

func TestSpeakFallbackNoneDisablesFallback(t *testing.T) {
	kokoro := &fakeEngine{backend: tts.BackendKokoro, synthErr: errors.New("kokoro crashed")}
	qwen := &fakeEngine{backend: tts.BackendQwen}
	s := newTestSpeaker(t, &fakeSender{}, kokoro, qwen)

	_, err := s.Speak(context.Background(), SpeakRequest{
		Text:            "hi",
		Kind:            channels.KindDiscord,
		Target:          "channel:1",
		FallbackBackend: "none",
	})
	if err == nil {
		t.Fatal("expected primary failure to surface")
	}
	if qwen.synths != 0 {
		t.Errorf("qwen ran %d times with fallback disabled", qwen.synths)
	}
}

func TestSpeakDeliveryCascadesPastVoiceTier(t *testing.T) {
	kokoro := &fakeEngine{backend: tts.BackendKokoro}
	sender := &fakeSender{failVoice: true}
	s := newTestSpeaker(t, sender, kokoro)

	res, err := s.Speak(context.Background(), SpeakRequest{
		Text:   "hi",
		Kind:   channels.KindDiscord,
		Target: "channel:1",
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Tier != channels.TierAttachment || res.ID != "msg-audio" {
		t.Errorf("result = %+v, want attachment tier", res)
	}
}

func TestSpeakExplicitBackendBeatsPreference(t *testing.T) {
	kokoro := &fakeEngine{backend: tts.BackendKokoro}
	qwen := &fakeEngine{backend: tts.BackendQwen}
	s := newTestSpeaker(t, &fakeSender{}, kokoro, qwen)

	_, err := s.Speak(context.Background(), SpeakRequest{
		Text:    "hi",
		Kind:    channels.KindDiscord,
		Target:  "channel:1",
		Backend: "qwen3",
	})
	if err != nil {
		t.Fatal(err)
	}
	if qwen.synths != 1 || kokoro.synths != 0 {
		t.Errorf("qwen=%d kokoro=%d, want the qwen3 alias to select qwen", qwen.synths, kokoro.synths)
	}
}

func TestCloneVoiceWithoutConsentDoesNothing(t *testing.T) {
	qwen := &fakeEngine{backend: tts.BackendQwen}
	s := newTestSpeaker(t, &fakeSender{}, qwen)
	s.Transcriber = &stt.Transcriber{Runner: &okRunner{}, Getenv: func(string) string { return "" }}

	_, err := s.CloneVoice(context.Background(), CloneRequest{
		InputPath: "/samples/me.wav",
		VoiceName: "My Voice",
	})
	if !errors.Is(err, ErrConsentRequired) {
		t.Fatalf("err = %v, want ErrConsentRequired", err)
	}
	if len(qwen.registered) != 0 {
		t.Errorf("registered %v without consent", qwen.registered)
	}
	if s.Runner.(*okRunner).calls != 0 {
		t.Error("no process may run before consent")
	}
}

func TestCloneVoiceMissingSample(t *testing.T) {
	qwen := &fakeEngine{backend: tts.BackendQwen}
	s := newTestSpeaker(t, &fakeSender{}, qwen)

	_, err := s.CloneVoice(context.Background(), CloneRequest{
		InputPath: "/samples/missing.wav",
		VoiceName: "me",
		Consent:   true,
	})
	if err == nil || !strings.Contains(err.Error(), "sample audio not found") {
		t.Errorf("err = %v", err)
	}
}

func TestCloneVoiceReferenceTextSkipsTranscription(t *testing.T) {
	qwen := &fakeEngine{backend: tts.BackendQwen}
	sender := &fakeSender{}
	s := newTestSpeaker(t, sender, qwen)
	s.Prober = &fakeProber{existing: map[string]bool{"/samples/me.wav": true}}

	transcribeRunner := &okRunner{}
	s.Transcriber = &stt.Transcriber{Runner: transcribeRunner, Getenv: func(string) string { return "" }}

	res, err := s.CloneVoice(context.Background(), CloneRequest{
		InputPath:     "/samples/me.wav",
		VoiceName:     "My Cool Voice!",
		ReferenceText: "this is my reference",
		Consent:       true,
		Kind:          channels.KindDiscord,
		Target:        "channel:1",
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Voice != "my-cool-voice" {
		t.Errorf("voice = %q, want sanitized my-cool-voice", res.Voice)
	}
	if res.Transcript != "this is my reference" {
		t.Errorf("transcript = %q", res.Transcript)
	}
	if transcribeRunner.calls != 0 {
		t.Error("reference text should skip transcription")
	}
	if want := "my-cool-voice|this is my reference|en"; len(qwen.registered) != 1 || qwen.registered[0] != want {
		t.Errorf("registered = %v, want [%s]", qwen.registered, want)
	}
	// outcome reported back to the originating channel
	found := false
	for _, text := range sender.texts {
		if strings.Contains(text, "Voice cloned successfully") {
			found = true
		}
	}
	if !found {
		t.Errorf("success notification missing from %v", sender.texts)
	}
}

func TestCloneVoiceEmptyTranscript(t *testing.T) {
	qwen := &fakeEngine{backend: tts.BackendQwen}
	s := newTestSpeaker(t, &fakeSender{}, qwen)
	s.Prober = &fakeProber{existing: map[string]bool{"/samples/me.wav": true}}
	// engine output carries metadata but no transcript line
	s.Transcriber = &stt.Transcriber{
		Runner: &stdoutRunner{stdout: "[lang=en prob=0.3]\n"},
		Getenv: func(string) string { return "" },
	}

	_, err := s.CloneVoice(context.Background(), CloneRequest{
		InputPath: "/samples/me.wav",
		VoiceName: "me",
		Consent:   true,
	})
	if !errors.Is(err, stt.ErrNoTranscript) {
		t.Errorf("err = %v, want ErrNoTranscript", err)
	}
	if len(qwen.registered) != 0 {
		t.Errorf("registered %v despite empty transcript", qwen.registered)
	}
}

type stdoutRunner struct{ stdout string }

func (r *stdoutRunner) Run(ctx context.Context, command string, args []string, opts run.Opts) (*run.Result, error) {
	return &run.Result{Stdout: r.stdout}, nil
}
