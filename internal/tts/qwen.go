package tts

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/iCaptainNemo/local-voice/internal/run"
)

// Qwen drives the local qwen-compatible `tts` CLI. Voices are opaque
// installation-local names; the engine needs SoX on PATH for its
// resampling step, so a configured SoX directory is prepended per call.
type Qwen struct {
	Runner run.Runner
	Prober run.Prober
	Getenv func(string) string // defaults to os.Getenv
}

func (q *Qwen) Backend() Backend { return BackendQwen }

func (q *Qwen) getenv(key string) string {
	if q.Getenv != nil {
		return q.Getenv(key)
	}
	return os.Getenv(key)
}

func (q *Qwen) ttsCmd() string {
	if v := q.getenv("LOCAL_QWEN_TTS_CMD"); v != "" {
		return v
	}
	return "tts"
}

func (q *Qwen) soxDir() string {
	return q.getenv("LOCAL_SOX_DIR")
}

func (q *Qwen) runOpts() run.Opts {
	opts := run.Opts{}
	if dir := q.soxDir(); dir != "" {
		opts.PathPrepend = []string{dir}
	}
	return opts
}

func soxBinary() string {
	if runtime.GOOS == "windows" {
		return "sox.exe"
	}
	return "sox"
}

// NormalizeQwenLang narrows the resolver's locale to the engine's own
// language codes: "en-us" becomes "en". Returns "" for unsupported hints.
func NormalizeQwenLang(raw string) string {
	v := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(raw), "_", "-"))
	switch {
	case strings.HasPrefix(v, "es"):
		return "es"
	case strings.HasPrefix(v, "en"):
		return "en"
	}
	return ""
}

// Preflight validates the engine CLI, ffmpeg, and the SoX installation
// without side effects.
func (q *Qwen) Preflight(ctx context.Context) error {
	var issues []string
	quiet := q.runOpts()
	quiet.Quiet = true
	if _, err := q.Runner.Run(ctx, q.ttsCmd(), []string{"--version"}, quiet); err != nil {
		issues = append(issues, "qwen tts command not runnable: "+q.ttsCmd())
	}
	if _, err := q.Runner.Run(ctx, FFmpegCmd(q.getenv), []string{"-version"}, run.Opts{Quiet: true}); err != nil {
		issues = append(issues, "ffmpeg not runnable: "+FFmpegCmd(q.getenv))
	}
	if dir := q.soxDir(); dir == "" {
		issues = append(issues, "sox directory not configured: set LOCAL_SOX_DIR")
	} else if !q.Prober.Exists(filepath.Join(dir, soxBinary())) {
		issues = append(issues, "sox not found in expected dir: "+dir)
	}
	if len(issues) > 0 {
		return &PreflightError{Backend: BackendQwen, Issues: issues}
	}
	return nil
}

func (q *Qwen) Synthesize(ctx context.Context, req SynthRequest) error {
	lang := NormalizeQwenLang(req.Lang)
	if lang == "" {
		lang = "en"
	}
	args := []string{"generate", req.Text, "--output", req.OutputPath, "--language", lang}
	if req.Voice != "" {
		args = append(args, "--voice", req.Voice)
	}
	if _, err := q.Runner.Run(ctx, q.ttsCmd(), args, q.runOpts()); err != nil {
		return fmt.Errorf("qwen synthesis: %w", err)
	}
	return nil
}

// RegisterVoice registers a cloned voice profile with the engine from a
// reference sample and its transcript.
func (q *Qwen) RegisterVoice(ctx context.Context, inputPath, transcript, voiceName, lang string) error {
	opts := q.runOpts()
	// the engine's python layer chokes on non-UTF8 console encodings
	opts.Env = append(opts.Env, "PYTHONUTF8=1", "PYTHONIOENCODING=utf-8")
	args := []string{"voice", "add", inputPath, "-t", transcript, "-v", voiceName, "-l", lang}
	if _, err := q.Runner.Run(ctx, q.ttsCmd(), args, opts); err != nil {
		return fmt.Errorf("register voice %s: %w", voiceName, err)
	}
	return nil
}
