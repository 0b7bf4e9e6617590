package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/iCaptainNemo/local-voice/internal/voice"
)

func voicesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "voices",
		Short: "List and sync the available voices",
	}
	cmd.AddCommand(voicesListCmd())
	cmd.AddCommand(voicesSyncCmd())
	return cmd
}

func voicesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List voices known to each backend",
		Run: func(cmd *cobra.Command, args []string) {
			store := voice.NewStore("")

			// a missing qwen registry just means no cloned voices yet
			qwen, err := store.QwenVoices()
			if err != nil {
				qwen = []string{}
			}

			printJSON(map[string]any{
				"ok":     true,
				"kokoro": store.KokoroVoices(),
				"qwen":   qwen,
			})
		},
	}
}

func voicesSyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Refresh the voices-state snapshot from the qwen registry",
		Run: func(cmd *cobra.Command, args []string) {
			store := voice.NewStore("")
			res, err := store.SyncVoices()
			if err != nil {
				printJSON(map[string]any{"ok": false, "reason": err.Error()})
				os.Exit(1)
			}
			printJSON(struct {
				OK bool `json:"ok"`
				*voice.SyncResult
			}{true, res})
		},
	}
}
