package tts

import (
	"context"
	"fmt"

	"github.com/iCaptainNemo/local-voice/internal/run"
)

// FFmpegCmd returns the encoder command, overridable via LOCAL_TTS_FFMPEG.
func FFmpegCmd(getenv func(string) string) string {
	if getenv != nil {
		if v := getenv("LOCAL_TTS_FFMPEG"); v != "" {
			return v
		}
	}
	return "ffmpeg"
}

// EncodeToOgg converts a waveform into the Opus-in-Ogg container the chat
// platforms expect for voice messages.
func EncodeToOgg(ctx context.Context, runner run.Runner, getenv func(string) string, wavPath, oggPath string) error {
	args := []string{"-y", "-i", wavPath, "-c:a", "libopus", "-b:a", "48k", oggPath}
	if _, err := runner.Run(ctx, FFmpegCmd(getenv), args, run.Opts{Quiet: true}); err != nil {
		return fmt.Errorf("encode ogg: %w", err)
	}
	return nil
}
