package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iCaptainNemo/local-voice/internal/channels"
	"github.com/iCaptainNemo/local-voice/internal/speaker"
)

func cloneVoiceCmd() *cobra.Command {
	var req struct {
		input     string
		voice     string
		language  string
		reference string
		consent   string
		kind      string
		channel   string
		account   string
	}

	cmd := &cobra.Command{
		Use:   "clone-voice",
		Short: "Register a new voice profile from a reference sample",
		Run: func(cmd *cobra.Command, args []string) {
			if req.input == "" || req.voice == "" {
				fmt.Fprintln(os.Stderr, `Usage: local-voice clone-voice --input <audio.wav|ogg|mp3> --voice <name> [--language en|es] [--reference-text "..."] --consent yes [--channel <id>] [--account main]`)
				os.Exit(1)
			}

			kind := channels.KindDiscord
			if req.kind != "" {
				parsed, err := channels.ParseKind(req.kind)
				if err != nil {
					fail(err)
				}
				kind = parsed
			}

			res, err := newSpeaker().CloneVoice(context.Background(), speaker.CloneRequest{
				InputPath:     req.input,
				VoiceName:     req.voice,
				Language:      req.language,
				ReferenceText: req.reference,
				Consent:       strings.EqualFold(req.consent, "yes"),
				Kind:          kind,
				Target:        req.channel,
				Account:       req.account,
			})
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				if errors.Is(err, speaker.ErrConsentRequired) {
					os.Exit(2)
				}
				os.Exit(1)
			}

			out, _ := json.MarshalIndent(map[string]any{
				"ok":         true,
				"voice":      res.Voice,
				"transcript": res.Transcript,
			}, "", "  ")
			fmt.Println(string(out))
		},
	}

	cmd.Flags().StringVar(&req.input, "input", "", "reference audio sample (required)")
	cmd.Flags().StringVar(&req.voice, "voice", "", "name for the new voice profile (required)")
	cmd.Flags().StringVar(&req.language, "language", "en", "profile language")
	cmd.Flags().StringVar(&req.reference, "reference-text", "", "transcript of the sample; skips transcription")
	cmd.Flags().StringVar(&req.consent, "consent", "no", "must be yes: confirms you have rights to clone this voice")
	cmd.Flags().StringVar(&req.kind, "channel-kind", "", "platform for status notifications (default discord)")
	cmd.Flags().StringVar(&req.channel, "channel", "", "channel to notify with progress/outcome")
	cmd.Flags().StringVar(&req.account, "account", "main", "platform account name")
	return cmd
}
