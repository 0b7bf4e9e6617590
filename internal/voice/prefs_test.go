package voice

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/iCaptainNemo/local-voice/internal/tts"
)

func TestMergePerKey(t *testing.T) {
	tests := []struct {
		name     string
		base     Preference
		override Preference
		want     Preference
	}{
		{
			name:     "override wins per set key",
			base:     Preference{Voice: "af_sarah", Backend: "kokoro"},
			override: Preference{Voice: "ef_dora"},
			want:     Preference{Voice: "ef_dora", Backend: "kokoro"},
		},
		{
			name:     "unset override keys keep base",
			base:     Preference{Voice: "af_sarah", Backend: "kokoro"},
			override: Preference{Backend: "qwen"},
			want:     Preference{Voice: "af_sarah", Backend: "qwen"},
		},
		{
			name:     "empty override is a no-op",
			base:     Preference{Voice: "af_sarah", Backend: "kokoro"},
			override: Preference{},
			want:     Preference{Voice: "af_sarah", Backend: "kokoro"},
		},
		{
			name:     "both keys override",
			base:     Preference{Voice: "af_sarah", Backend: "kokoro"},
			override: Preference{Voice: "custom", Backend: "qwen"},
			want:     Preference{Voice: "custom", Backend: "qwen"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Merge(tt.base, tt.override); got != tt.want {
				t.Errorf("Merge() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"My Cool Voice!", "my-cool-voice"},
		{"already-clean", "already-clean"},
		{"UPPER_case", "upper_case"},
		{"  spaced  out  ", "spaced-out"},
		{"...", "voice"},
		{"", "voice"},
	}
	for _, tt := range tests {
		got := SanitizeName(tt.in)
		if got != tt.want {
			t.Errorf("SanitizeName(%q) = %q, want %q", tt.in, got, tt.want)
		}
		// sanitizing an already-sanitized name must not change it
		if again := SanitizeName(got); again != got {
			t.Errorf("SanitizeName not idempotent: %q -> %q", got, again)
		}
	}
}

func TestPreferencesMissingFileFallsBack(t *testing.T) {
	store := NewStore(t.TempDir())
	store.Getenv = func(string) string { return "" }

	prefs := store.Preferences()
	if prefs.Default.Backend != string(tts.BackendKokoro) {
		t.Errorf("default backend = %q, want kokoro", prefs.Default.Backend)
	}
	if prefs.Users == nil {
		t.Error("Users map should be initialized")
	}
}

func TestPreferencesMalformedFileFallsBack(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)
	store.Getenv = func(string) string { return "" }

	if err := os.WriteFile(store.PrefsPath(), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	prefs := store.Preferences()
	if prefs.Default.Backend != string(tts.BackendKokoro) {
		t.Errorf("default backend = %q, want kokoro", prefs.Default.Backend)
	}
}

func TestSaveAndReadPreferences(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "nested", "local-voice"))
	store.Getenv = func(string) string { return "" }

	want := Preferences{
		Default: Preference{Backend: "kokoro"},
		Users:   map[string]Preference{"123": {Voice: "custom", Backend: "qwen"}},
	}
	if err := store.SavePreferences(want); err != nil {
		t.Fatalf("SavePreferences: %v", err)
	}
	got := store.Preferences()
	if got.Default != want.Default {
		t.Errorf("default = %+v, want %+v", got.Default, want.Default)
	}
	if got.Users["123"] != want.Users["123"] {
		t.Errorf("user entry = %+v, want %+v", got.Users["123"], want.Users["123"])
	}
}

func TestPrefsPathEnvOverride(t *testing.T) {
	custom := filepath.Join(t.TempDir(), "my-prefs.json")
	store := NewStore(t.TempDir())
	store.Getenv = func(key string) string {
		if key == "LOCAL_VOICE_PREFS_PATH" {
			return custom
		}
		return ""
	}
	if got := store.PrefsPath(); got != custom {
		t.Errorf("PrefsPath() = %q, want %q", got, custom)
	}
}

func TestUserPreference(t *testing.T) {
	store := NewStore(t.TempDir())
	store.Getenv = func(string) string { return "" }
	err := store.SavePreferences(Preferences{
		Default: Preference{Voice: "af_sarah", Backend: "kokoro"},
		Users: map[string]Preference{
			"42": {Backend: "qwen"},
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	// user with a partial entry inherits the unset keys from the default layer
	got := store.UserPreference("42")
	want := Preference{Voice: "af_sarah", Backend: "qwen"}
	if got != want {
		t.Errorf("UserPreference(42) = %+v, want %+v", got, want)
	}

	// unknown user gets the default layer
	if got := store.UserPreference("999"); got != (Preference{Voice: "af_sarah", Backend: "kokoro"}) {
		t.Errorf("UserPreference(999) = %+v", got)
	}

	// empty id means the default layer too
	if got := store.UserPreference(""); got.Voice != "af_sarah" {
		t.Errorf("UserPreference(\"\") = %+v", got)
	}
}

func TestResolveVoiceQwen(t *testing.T) {
	store := NewStore(t.TempDir())

	store.Getenv = func(string) string { return "" }
	if got := store.ResolveVoice(tts.BackendQwen, "custom", "en"); got != "custom" {
		t.Errorf("explicit qwen voice = %q, want custom", got)
	}
	if got := store.ResolveVoice(tts.BackendQwen, "", "en"); got != "default" {
		t.Errorf("qwen fallback = %q, want default", got)
	}

	store.Getenv = func(key string) string {
		if key == "LOCAL_QWEN_VOICE" {
			return "env-voice"
		}
		return ""
	}
	if got := store.ResolveVoice(tts.BackendQwen, "", "en"); got != "env-voice" {
		t.Errorf("qwen env voice = %q, want env-voice", got)
	}
}

func TestResolveVoiceKokoro(t *testing.T) {
	store := NewStore(t.TempDir())
	store.Getenv = func(string) string { return "" }

	// built-in profiles: explicit beats the language map, which beats the default
	if got := store.ResolveVoice(tts.BackendKokoro, "af_bella", "es"); got != "af_bella" {
		t.Errorf("explicit = %q, want af_bella", got)
	}
	if got := store.ResolveVoice(tts.BackendKokoro, "", "es"); got != "ef_dora" {
		t.Errorf("by-language = %q, want ef_dora", got)
	}
	if got := store.ResolveVoice(tts.BackendKokoro, "", "fr"); got != DefaultKokoroVoice {
		t.Errorf("unmapped language = %q, want %q", got, DefaultKokoroVoice)
	}
}
