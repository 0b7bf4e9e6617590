// Package stt invokes the local speech-to-text engine and parses its
// transcript wire format.
package stt

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/iCaptainNemo/local-voice/internal/run"
)

// ErrNoTranscript marks output that contained no usable transcript line.
// Distinguishable from an engine failure so callers can suggest a better
// sample instead of surfacing a process error.
var ErrNoTranscript = errors.New("no transcript produced")

var metaLineRe = regexp.MustCompile(`(?i)\[lang=([^\s\]]+)\s+prob=([^\]\s]+)\]`)

// Transcript is the parsed engine output. Language is empty and
// Probability nil when the metadata line is absent or malformed.
type Transcript struct {
	Text        string
	Language    string
	Probability *float64
	Raw         string
}

// ExtractTranscript parses engine stdout: non-empty trimmed lines, where
// the transcript is the first line that is not a `[lang=... prob=...]`
// metadata marker, and the first metadata line (if any) carries language
// and confidence.
func ExtractTranscript(stdout string) Transcript {
	tr := Transcript{Raw: strings.TrimSpace(stdout)}
	metaSeen := false
	for _, line := range strings.Split(tr.Raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "[lang=") {
			if !metaSeen {
				metaSeen = true
				if m := metaLineRe.FindStringSubmatch(line); m != nil {
					tr.Language = m[1]
					if p, err := strconv.ParseFloat(m[2], 64); err == nil {
						tr.Probability = &p
					}
				}
			}
			continue
		}
		if tr.Text == "" {
			tr.Text = line
		}
	}
	return tr
}

// Transcriber runs the faster-whisper python shim quietly and parses its
// stdout. A single invocation, no retry.
type Transcriber struct {
	Runner run.Runner
	Getenv func(string) string // defaults to os.Getenv
}

func (t *Transcriber) getenv(key string) string {
	if t.Getenv != nil {
		return t.Getenv(key)
	}
	return os.Getenv(key)
}

func (t *Transcriber) pythonCmd() string {
	if v := t.getenv("LOCAL_STT_PYTHON"); v != "" {
		return v
	}
	return "python"
}

func (t *Transcriber) scriptPath() string {
	if v := t.getenv("LOCAL_STT_SCRIPT"); v != "" {
		return v
	}
	return filepath.Join("scripts", "transcribe_faster_whisper.py")
}

func (t *Transcriber) Transcribe(ctx context.Context, inputPath string) (Transcript, error) {
	res, err := t.Runner.Run(ctx, t.pythonCmd(), []string{t.scriptPath(), "--input", inputPath}, run.Opts{Quiet: true})
	if err != nil {
		return Transcript{}, fmt.Errorf("transcribe %s: %w", filepath.Base(inputPath), err)
	}
	return ExtractTranscript(res.Stdout), nil
}

// HandleVoiceMessage transcribes an inbound voice message: fires the typing
// indicator best-effort before the (slow) transcription, then requires a
// non-empty transcript.
func HandleVoiceMessage(ctx context.Context, t *Transcriber, mediaPath string, onTyping func(context.Context)) (Transcript, error) {
	if mediaPath == "" {
		return Transcript{}, errors.New("voice message has no media path")
	}
	if onTyping != nil {
		onTyping(ctx)
	}
	tr, err := t.Transcribe(ctx, mediaPath)
	if err != nil {
		return Transcript{}, err
	}
	if tr.Text == "" {
		return tr, ErrNoTranscript
	}
	return tr, nil
}
