// Package data bootstraps the flat voice data documents on first use.
package data

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/iCaptainNemo/local-voice/internal/voice"
)

// InitFiles creates any missing data documents with their defaults and
// returns the paths it created. Existing files are left untouched.
func InitFiles(store *voice.Store) ([]string, error) {
	var created []string

	targets := []struct {
		path string
		doc  any
	}{
		{store.PrefsPath(), voice.DefaultPreferences()},
		{store.ProfilesPath(), voice.DefaultProfiles()},
		{store.StatePath(), voice.State{Voices: []string{}}},
	}

	for _, t := range targets {
		if _, err := os.Stat(t.path); err == nil {
			continue
		}
		if err := os.MkdirAll(filepath.Dir(t.path), 0o755); err != nil {
			return created, fmt.Errorf("create data dir: %w", err)
		}
		raw, err := json.MarshalIndent(t.doc, "", "  ")
		if err != nil {
			return created, err
		}
		if err := os.WriteFile(t.path, append(raw, '\n'), 0o644); err != nil {
			return created, fmt.Errorf("write %s: %w", t.path, err)
		}
		created = append(created, t.path)
	}
	return created, nil
}
