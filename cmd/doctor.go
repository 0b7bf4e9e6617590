package cmd

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/iCaptainNemo/local-voice/internal/channels"
	"github.com/iCaptainNemo/local-voice/internal/config"
	"github.com/iCaptainNemo/local-voice/internal/lang"
	"github.com/iCaptainNemo/local-voice/internal/run"
	"github.com/iCaptainNemo/local-voice/internal/stt"
	"github.com/iCaptainNemo/local-voice/internal/tts"
	"github.com/iCaptainNemo/local-voice/internal/voice"
)

func doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check environment and configuration health",
		Run: func(cmd *cobra.Command, args []string) {
			runDoctor()
		},
	}
}

type doctorCheck struct {
	name string
	warn bool // failure is advisory, does not fail the run
	fn   func() error
}

func runDoctor() {
	fmt.Println("local-voice doctor")
	fmt.Printf("  OS:       %s/%s\n", runtime.GOOS, runtime.GOARCH)
	fmt.Printf("  Go:       %s\n", runtime.Version())

	cfgPath := config.DefaultPath()
	fmt.Printf("  Config:   %s", cfgPath)
	if _, err := os.Stat(cfgPath); err != nil {
		fmt.Println(" (NOT FOUND)")
	} else {
		fmt.Println(" (OK)")
	}
	fmt.Println()

	ctx := context.Background()
	runner := run.ExecRunner{}
	prober := run.OSProber{}
	cfg := config.NewFileProvider("")
	store := voice.NewStore("")
	kokoro := &tts.Kokoro{Runner: runner, Prober: prober}
	qwen := &tts.Qwen{Runner: runner, Prober: prober}
	resolver := lang.Resolver{ConfigHint: cfg.LocaleHint, OSLocale: lang.DetectOSLocale(runner)}

	checks := []doctorCheck{
		{name: "config load", fn: func() error {
			_, err := cfg.Load()
			return err
		}},
		{name: "discord token (main)", fn: func() error {
			if cfg.DiscordToken("main") == "" {
				return fmt.Errorf("missing discord token for account: main")
			}
			return nil
		}},
		{name: "telegram token (main)", warn: true, fn: func() error {
			if cfg.TelegramToken("main") == "" {
				return fmt.Errorf("not configured")
			}
			return nil
		}},
		{name: "language resolution", fn: func() error {
			if got := resolver.Resolve(ctx, "en-US"); got != "en-us" {
				return fmt.Errorf("resolved %q", got)
			}
			return nil
		}},
		{name: "target parsing", fn: func() error {
			if channels.NormalizeTargetID("channel:123") != "123" {
				return fmt.Errorf("channel prefix not stripped")
			}
			if t := channels.ParseTelegramTarget("123:topic:7"); t.ChatID != "123" || t.MessageThreadID != 7 {
				return fmt.Errorf("topic target parsed as %+v", t)
			}
			return nil
		}},
		{name: "preferences read", fn: func() error {
			store.Preferences()
			return nil
		}},
		{name: "transcript extraction", fn: func() error {
			tr := stt.ExtractTranscript("hello world\n[lang=en prob=0.91]")
			if tr.Text != "hello world" || tr.Language != "en" {
				return fmt.Errorf("parsed %+v", tr)
			}
			return nil
		}},
		{name: "kokoro preflight", fn: func() error {
			return kokoro.Preflight(ctx)
		}},
		{name: "qwen preflight", warn: true, fn: func() error {
			return qwen.Preflight(ctx)
		}},
	}

	ok := true
	for _, c := range checks {
		err := c.fn()
		switch {
		case err == nil:
			fmt.Printf("  OK    %s\n", c.name)
		case c.warn:
			fmt.Printf("  WARN  %s: %s\n", c.name, err)
		default:
			fmt.Printf("  FAIL  %s: %s\n", c.name, err)
			ok = false
		}
	}

	if !ok {
		os.Exit(1)
	}
}
