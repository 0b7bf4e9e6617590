// Package cmd wires the local-voice CLI surface.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/iCaptainNemo/local-voice/internal/config"
	"github.com/iCaptainNemo/local-voice/internal/run"
	"github.com/iCaptainNemo/local-voice/internal/speaker"
	"github.com/iCaptainNemo/local-voice/internal/voice"
)

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "local-voice",
		Short:         "Deliver local TTS/STT through OpenClaw chat channels",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(speakCmd())
	cmd.AddCommand(cloneVoiceCmd())
	cmd.AddCommand(prefsCmd())
	cmd.AddCommand(voicesCmd())
	cmd.AddCommand(doctorCmd())
	return cmd
}

// Execute runs the CLI. Subcommands map their own exit codes; anything that
// bubbles up here is a generic runtime failure.
func Execute() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newSpeaker() *speaker.Speaker {
	cfg := config.NewFileProvider("")
	return speaker.New(cfg, run.ExecRunner{}, run.OSProber{}, voice.NewStore(""), "")
}

// fail prints a single-line error and exits with the runtime error code.
func fail(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
