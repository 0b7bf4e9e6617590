package voice

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// State is the diffable snapshot of the voices registered with the Qwen
// engine, kept so successive syncs can report added/removed names.
type State struct {
	UpdatedAt  *time.Time `json:"updatedAt"`
	Voices     []string   `json:"voices"`
	DataDir    string     `json:"dataDir,omitempty"`
	VoicesPath string     `json:"voicesPath,omitempty"`
}

// SyncResult reports one snapshot refresh.
type SyncResult struct {
	DataDir    string   `json:"dataDir"`
	VoicesPath string   `json:"voicesPath"`
	Total      int      `json:"total"`
	Added      []string `json:"added"`
	Removed    []string `json:"removed"`
	Voices     []string `json:"voices"`
}

// QwenDataDir is $LOCAL_QWEN_DATA_DIR, else ~/tts — the engine's own data
// directory, where it keeps its voices.json registry.
func (s *Store) QwenDataDir() string {
	if d := s.getenv("LOCAL_QWEN_DATA_DIR"); d != "" {
		return d
	}
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, "tts")
}

// QwenVoices reads the engine's registry and returns the sorted voice names.
func (s *Store) QwenVoices() ([]string, error) {
	voicesPath := filepath.Join(s.QwenDataDir(), "voices.json")
	raw, err := os.ReadFile(voicesPath)
	if err != nil {
		return nil, fmt.Errorf("qwen voices registry not found: %s", voicesPath)
	}
	return extractVoiceNames(raw), nil
}

// KokoroVoices returns the distinct voices reachable through the profile
// map, sorted.
func (s *Store) KokoroVoices() []string {
	prof := s.Profiles()
	seen := map[string]bool{}
	var names []string
	add := func(name string) {
		if name != "" && !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	add(prof.Default)
	for _, v := range prof.ByLanguage {
		add(v)
	}
	sort.Strings(names)
	return names
}

// SyncVoices re-reads the Qwen registry, diffs it against the previous
// snapshot, and writes the new snapshot to the state file.
func (s *Store) SyncVoices() (*SyncResult, error) {
	dataDir := s.QwenDataDir()
	voicesPath := filepath.Join(dataDir, "voices.json")

	current, err := s.QwenVoices()
	if err != nil {
		return nil, err
	}

	var prev State
	if raw, err := os.ReadFile(s.StatePath()); err == nil {
		_ = json.Unmarshal(raw, &prev) // unreadable previous state diffs as empty
	}

	result := &SyncResult{
		DataDir:    dataDir,
		VoicesPath: voicesPath,
		Total:      len(current),
		Added:      diff(current, prev.Voices),
		Removed:    diff(prev.Voices, current),
		Voices:     current,
	}

	now := time.Now().UTC()
	state := State{UpdatedAt: &now, Voices: current, DataDir: dataDir, VoicesPath: voicesPath}
	if err := os.MkdirAll(filepath.Dir(s.StatePath()), 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(s.StatePath(), append(data, '\n'), 0o644); err != nil {
		return nil, fmt.Errorf("write voices state: %w", err)
	}
	return result, nil
}

// extractVoiceNames handles both registry shapes the engine has used: a
// list of {name} objects or a name-keyed object.
func extractVoiceNames(raw []byte) []string {
	var names []string

	var asList struct {
		Voices []struct {
			Name string `json:"name"`
		} `json:"voices"`
	}
	if err := json.Unmarshal(raw, &asList); err == nil {
		for _, v := range asList.Voices {
			if v.Name != "" {
				names = append(names, v.Name)
			}
		}
		sort.Strings(names)
		return names
	}

	var asMap struct {
		Voices map[string]json.RawMessage `json:"voices"`
	}
	if err := json.Unmarshal(raw, &asMap); err == nil {
		for name := range asMap.Voices {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

func diff(a, b []string) []string {
	inB := map[string]bool{}
	for _, v := range b {
		inB[v] = true
	}
	out := []string{}
	for _, v := range a {
		if !inB[v] {
			out = append(out, v)
		}
	}
	return out
}
