// Package voice manages the flat voice preference, profile, and state
// documents. All reads are fresh (no caching) and missing or malformed
// files fall back to built-in defaults rather than failing.
package voice

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/iCaptainNemo/local-voice/internal/tts"
)

const (
	// DefaultKokoroVoice is the last-resort Kokoro voice when neither an
	// override nor the profile map yields one.
	DefaultKokoroVoice = "af_sarah"

	prefsFile    = "voice-preferences.json"
	profilesFile = "voice-profiles.json"
	stateFile    = "voices-state.json"
)

// Preference is one layer of the preference document. Empty fields mean
// "not set at this layer"; resolution falls through per key, not per entry.
type Preference struct {
	Voice   string `json:"voice,omitempty"`
	Backend string `json:"backend,omitempty"`
}

// Preferences is the on-disk preference document: a default layer plus
// per-user overrides.
type Preferences struct {
	Default Preference            `json:"default"`
	Users   map[string]Preference `json:"users"`
}

// Profiles is the read-only language-indexed voice map for the Kokoro
// backend.
type Profiles struct {
	Default    string            `json:"default"`
	ByLanguage map[string]string `json:"byLanguage"`
}

func DefaultPreferences() Preferences {
	return Preferences{
		Default: Preference{Backend: string(tts.BackendKokoro)},
		Users:   map[string]Preference{},
	}
}

func DefaultProfiles() Profiles {
	return Profiles{
		Default: DefaultKokoroVoice,
		ByLanguage: map[string]string{
			"en-us": "af_sarah",
			"es":    "ef_dora",
		},
	}
}

// Merge overlays override onto base, per key: an override key wins only
// when it is set, independently of the other keys.
func Merge(base, override Preference) Preference {
	out := base
	if override.Voice != "" {
		out.Voice = override.Voice
	}
	if override.Backend != "" {
		out.Backend = override.Backend
	}
	return out
}

// Store locates and reads the voice data documents.
type Store struct {
	DataDir string
	Getenv  func(string) string // defaults to os.Getenv
}

// DefaultDataDir is $LOCAL_VOICE_DATA_DIR, else ~/.openclaw/local-voice.
func DefaultDataDir() string {
	if d := os.Getenv("LOCAL_VOICE_DATA_DIR"); d != "" {
		return d
	}
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".openclaw", "local-voice")
}

func NewStore(dataDir string) *Store {
	if dataDir == "" {
		dataDir = DefaultDataDir()
	}
	return &Store{DataDir: dataDir}
}

func (s *Store) getenv(key string) string {
	if s.Getenv != nil {
		return s.Getenv(key)
	}
	return os.Getenv(key)
}

// PrefsPath honors the LOCAL_VOICE_PREFS_PATH override.
func (s *Store) PrefsPath() string {
	if p := s.getenv("LOCAL_VOICE_PREFS_PATH"); p != "" {
		return p
	}
	return filepath.Join(s.DataDir, prefsFile)
}

func (s *Store) ProfilesPath() string {
	return filepath.Join(s.DataDir, profilesFile)
}

func (s *Store) StatePath() string {
	return filepath.Join(s.DataDir, stateFile)
}

// Preferences reads the preference document fresh. A missing or malformed
// file means built-in defaults, never an error.
func (s *Store) Preferences() Preferences {
	raw, err := os.ReadFile(s.PrefsPath())
	if err != nil {
		return DefaultPreferences()
	}
	var prefs Preferences
	if err := json.Unmarshal(raw, &prefs); err != nil {
		return DefaultPreferences()
	}
	if prefs.Users == nil {
		prefs.Users = map[string]Preference{}
	}
	return prefs
}

// SavePreferences writes the document back, creating the data dir on first
// use. Last writer wins; operator tooling does not lock.
func (s *Store) SavePreferences(prefs Preferences) error {
	path := s.PrefsPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	data, err := json.MarshalIndent(prefs, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write preferences: %w", err)
	}
	return nil
}

// Profiles reads the voice profile map fresh, with the same
// missing-means-defaults behavior as Preferences.
func (s *Store) Profiles() Profiles {
	raw, err := os.ReadFile(s.ProfilesPath())
	if err != nil {
		return DefaultProfiles()
	}
	var prof Profiles
	if err := json.Unmarshal(raw, &prof); err != nil {
		return DefaultProfiles()
	}
	return prof
}

// UserPreference resolves the effective preference for a user: the user's
// entry overlaid onto the default layer, per key.
func (s *Store) UserPreference(userID string) Preference {
	prefs := s.Preferences()
	if userID == "" {
		return prefs.Default
	}
	user, ok := prefs.Users[userID]
	if !ok {
		return prefs.Default
	}
	return Merge(prefs.Default, user)
}

// ResolveVoice picks the concrete voice for a backend. Qwen voices are
// opaque installation-local names (override → env default → "default");
// Kokoro voices come from the language-indexed profile map.
func (s *Store) ResolveVoice(backend tts.Backend, explicit, lang string) string {
	if backend == tts.BackendQwen {
		if explicit != "" {
			return explicit
		}
		if v := s.getenv("LOCAL_QWEN_VOICE"); v != "" {
			return v
		}
		return "default"
	}
	if explicit != "" {
		return explicit
	}
	prof := s.Profiles()
	if v := prof.ByLanguage[lang]; v != "" {
		return v
	}
	if prof.Default != "" {
		return prof.Default
	}
	return DefaultKokoroVoice
}
