package tts

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/iCaptainNemo/local-voice/internal/run"
)

// Kokoro synthesizes through the kokoro-onnx python shim. Voices are
// language-indexed; the model and voice assets must exist on disk.
type Kokoro struct {
	Runner run.Runner
	Prober run.Prober
	Getenv func(string) string // defaults to os.Getenv
}

func (k *Kokoro) Backend() Backend { return BackendKokoro }

func (k *Kokoro) getenv(key string) string {
	if k.Getenv != nil {
		return k.Getenv(key)
	}
	return os.Getenv(key)
}

func (k *Kokoro) env(key, fallback string) string {
	if v := k.getenv(key); v != "" {
		return v
	}
	return fallback
}

func (k *Kokoro) pythonCmd() string {
	return k.env("LOCAL_TTS_PYTHON", "python")
}

func (k *Kokoro) modelPath() string {
	return k.env("LOCAL_TTS_KOKORO_MODEL", filepath.Join(assetHome(), "voice", "tts-kokoro", "kokoro-v1.0.onnx"))
}

func (k *Kokoro) voicesPath() string {
	return k.env("LOCAL_TTS_KOKORO_VOICES", filepath.Join(assetHome(), "voice", "tts-kokoro", "voices-v1.0.bin"))
}

func (k *Kokoro) scriptPath() string {
	return k.env("LOCAL_TTS_KOKORO_SCRIPT", filepath.Join("scripts", "synthesize_kokoro.py"))
}

// Preflight validates python, ffmpeg, and the model/voice assets without
// side effects.
func (k *Kokoro) Preflight(ctx context.Context) error {
	var issues []string
	if _, err := k.Runner.Run(ctx, k.pythonCmd(), []string{"--version"}, run.Opts{Quiet: true}); err != nil {
		issues = append(issues, "python not runnable: "+k.pythonCmd())
	}
	if _, err := k.Runner.Run(ctx, FFmpegCmd(k.getenv), []string{"-version"}, run.Opts{Quiet: true}); err != nil {
		issues = append(issues, "ffmpeg not runnable: "+FFmpegCmd(k.getenv))
	}
	if !k.Prober.Exists(k.modelPath()) {
		issues = append(issues, "missing kokoro model: "+k.modelPath())
	}
	if !k.Prober.Exists(k.voicesPath()) {
		issues = append(issues, "missing kokoro voices: "+k.voicesPath())
	}
	if len(issues) > 0 {
		return &PreflightError{Backend: BackendKokoro, Issues: issues}
	}
	return nil
}

func (k *Kokoro) Synthesize(ctx context.Context, req SynthRequest) error {
	args := []string{
		k.scriptPath(),
		"--text", req.Text,
		"--out", req.OutputPath,
		"--voice", req.Voice,
		"--lang", req.Lang,
		"--model", k.modelPath(),
		"--voices", k.voicesPath(),
	}
	if _, err := k.Runner.Run(ctx, k.pythonCmd(), args, run.Opts{}); err != nil {
		return fmt.Errorf("kokoro synthesis: %w", err)
	}
	return nil
}

func assetHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
