package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/iCaptainNemo/local-voice/internal/data"
	"github.com/iCaptainNemo/local-voice/internal/tts"
	"github.com/iCaptainNemo/local-voice/internal/voice"
)

func prefsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Get, set, and list voice preferences",
	}
	cmd.AddCommand(prefsGetCmd())
	cmd.AddCommand(prefsSetCmd())
	cmd.AddCommand(prefsListCmd())
	return cmd
}

func printJSON(v any) {
	out, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(out))
}

func prefsGetCmd() *cobra.Command {
	var user string
	cmd := &cobra.Command{
		Use:   "get",
		Short: "Show the preference entry for a user (or the default)",
		Run: func(cmd *cobra.Command, args []string) {
			store := voice.NewStore("")
			prefs := store.Preferences()

			var entry any
			if user != "" {
				if p, ok := prefs.Users[user]; ok {
					entry = p
				}
			} else {
				entry = prefs.Default
			}

			var userOut any
			if user != "" {
				userOut = user
			}
			printJSON(map[string]any{"ok": true, "user": userOut, "preference": entry})
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "user id")
	return cmd
}

func prefsSetCmd() *cobra.Command {
	var user, voiceFlag, backend string
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Set voice and/or backend for a user or the default",
		Run: func(cmd *cobra.Command, args []string) {
			if voiceFlag == "" && backend == "" {
				fmt.Fprintln(os.Stderr, "set requires --voice and/or --backend")
				os.Exit(1)
			}

			override := voice.Preference{Voice: voiceFlag}
			if backend != "" {
				parsed, err := tts.ParseBackend(backend)
				if err != nil {
					fail(err)
				}
				override.Backend = string(parsed)
			}

			store := voice.NewStore("")
			if _, err := data.InitFiles(store); err != nil {
				fail(err)
			}

			prefs := store.Preferences()
			if user != "" {
				prefs.Users[user] = voice.Merge(prefs.Users[user], override)
			} else {
				prefs.Default = voice.Merge(prefs.Default, override)
			}
			if err := store.SavePreferences(prefs); err != nil {
				fail(err)
			}

			var userOut any
			if user != "" {
				userOut = user
			}
			printJSON(map[string]any{"ok": true, "user": userOut})
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "user id (omit to set the default entry)")
	cmd.Flags().StringVar(&voiceFlag, "voice", "", "voice identifier")
	cmd.Flags().StringVar(&backend, "backend", "", "backend: kokoro or qwen3")
	return cmd
}

func prefsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Dump the whole preference document",
		Run: func(cmd *cobra.Command, args []string) {
			store := voice.NewStore("")
			printJSON(map[string]any{
				"ok":          true,
				"path":        store.PrefsPath(),
				"preferences": store.Preferences(),
			})
		},
	}
}
