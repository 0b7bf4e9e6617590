// Package tts drives the local speech-synthesis backends: environment
// preflight, synthesis into a waveform file, and the shared Opus encode.
package tts

import (
	"context"
	"fmt"
	"strings"
)

// Backend identifies a synthesis backend. The set is closed; raw strings
// from flags, preferences, or env are folded onto it with ParseBackend.
type Backend string

const (
	// BackendKokoro selects language-indexed voices from fixed model and
	// voice assets.
	BackendKokoro Backend = "kokoro"
	// BackendQwen treats voice identifiers as opaque names registered with
	// the local qwen-compatible engine.
	BackendQwen Backend = "qwen"
)

// ParseBackend normalizes user-facing backend names, folding the "qwen3"
// alias onto the qwen backend.
func ParseBackend(raw string) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "kokoro":
		return BackendKokoro, nil
	case "qwen", "qwen3":
		return BackendQwen, nil
	}
	return "", fmt.Errorf("unsupported backend: %s", raw)
}

// SynthRequest is one synthesis call. The engine writes a waveform file at
// OutputPath.
type SynthRequest struct {
	Text       string
	Voice      string
	Lang       string
	OutputPath string
}

// Engine is one synthesis backend: a read-only environment validation plus
// the synthesis call itself. Preflight aggregates every failing check so
// the operator sees the complete remediation list at once.
type Engine interface {
	Backend() Backend
	Preflight(ctx context.Context) error
	Synthesize(ctx context.Context, req SynthRequest) error
}

// VoiceRegistrar is implemented by backends that can learn new voices from
// a reference sample and transcript.
type VoiceRegistrar interface {
	RegisterVoice(ctx context.Context, inputPath, transcript, voiceName, lang string) error
}

// Manager holds the registered engines keyed by backend.
type Manager struct {
	engines map[Backend]Engine
}

func NewManager() *Manager {
	return &Manager{engines: make(map[Backend]Engine)}
}

func (m *Manager) Register(e Engine) {
	m.engines[e.Backend()] = e
}

func (m *Manager) Engine(b Backend) (Engine, bool) {
	e, ok := m.engines[b]
	return e, ok
}
