package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/iCaptainNemo/local-voice/internal/channels"
	"github.com/iCaptainNemo/local-voice/internal/speaker"
)

func speakCmd() *cobra.Command {
	var req struct {
		text     string
		kind     string
		channel  string
		voice    string
		lang     string
		backend  string
		fallback string
		user     string
		account  string
	}

	cmd := &cobra.Command{
		Use:   "speak",
		Short: "Synthesize text and deliver it to a channel",
		Run: func(cmd *cobra.Command, args []string) {
			if req.text == "" {
				fmt.Fprintln(os.Stderr, `Usage: local-voice speak --text "..." [--channel-kind discord|telegram] [--channel <id>] [--voice <id>] [--lang <en-us|es>] [--backend kokoro|qwen3] [--fallback-backend kokoro|qwen3|none] [--user <id>] [--account main]`)
				os.Exit(1)
			}

			kindRaw := req.kind
			if kindRaw == "" {
				kindRaw = os.Getenv("LOCAL_VOICE_CHANNEL")
			}
			if kindRaw == "" {
				kindRaw = string(channels.KindDiscord)
			}
			kind, err := channels.ParseKind(kindRaw)
			if err != nil {
				fail(err)
			}

			channel := req.channel
			if channel == "" {
				if kind == channels.KindTelegram {
					channel = os.Getenv("TELEGRAM_TARGET_DEFAULT")
				} else {
					channel = os.Getenv("DISCORD_TARGET_DEFAULT")
				}
			}
			user := req.user
			if user == "" {
				user = os.Getenv("LOCAL_VOICE_USER_ID")
			}

			res, err := newSpeaker().Speak(context.Background(), speaker.SpeakRequest{
				Text:            req.text,
				Kind:            kind,
				Target:          channel,
				Account:         req.account,
				UserID:          user,
				Voice:           req.voice,
				Lang:            req.lang,
				Backend:         req.backend,
				FallbackBackend: req.fallback,
			})
			if err != nil {
				fail(err)
			}

			switch res.Tier {
			case channels.TierVoice:
				fmt.Printf("OK_VOICE: %s\n", res.ID)
			case channels.TierAttachment:
				fmt.Printf("OK_ATTACHMENT: %s\n", res.ID)
			case channels.TierText:
				fmt.Printf("OK_TEXT: %s\n", res.ID)
			}
		},
	}

	cmd.Flags().StringVar(&req.text, "text", "", "text to synthesize (required)")
	cmd.Flags().StringVar(&req.kind, "channel-kind", "", "discord or telegram (default discord, or $LOCAL_VOICE_CHANNEL)")
	cmd.Flags().StringVar(&req.channel, "channel", "", "target channel/chat id (telegram may use <chatId>:topic:<threadId>)")
	cmd.Flags().StringVar(&req.voice, "voice", "", "explicit voice override")
	cmd.Flags().StringVar(&req.lang, "lang", "", "language hint (en-us, es)")
	cmd.Flags().StringVar(&req.backend, "backend", "", "synthesis backend: kokoro or qwen3")
	cmd.Flags().StringVar(&req.fallback, "fallback-backend", "", "backend to retry once on failure, or none")
	cmd.Flags().StringVar(&req.user, "user", "", "user id for preference lookup")
	cmd.Flags().StringVar(&req.account, "account", "main", "platform account name")
	return cmd
}
