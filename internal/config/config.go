// Package config reads the shared OpenClaw configuration document that
// carries per-platform account credentials and locale hints.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/titanous/json5"
)

// Document mirrors the subset of the OpenClaw config this tool consumes.
type Document struct {
	Channels ChannelsConfig `json:"channels"`
	Messages MessagesConfig `json:"messages"`
}

type ChannelsConfig struct {
	Discord  DiscordConfig  `json:"discord"`
	Telegram TelegramConfig `json:"telegram"`
}

type DiscordConfig struct {
	Accounts map[string]DiscordAccount `json:"accounts"`
}

type DiscordAccount struct {
	Token string `json:"token"`
}

type TelegramConfig struct {
	BotToken string                     `json:"botToken"`
	Accounts map[string]TelegramAccount `json:"accounts"`
}

type TelegramAccount struct {
	BotToken string `json:"botToken"`
}

type MessagesConfig struct {
	TTS TTSConfig `json:"tts"`
}

type TTSConfig struct {
	Edge       EdgeTTSConfig       `json:"edge"`
	ElevenLabs ElevenLabsTTSConfig `json:"elevenlabs"`
}

type EdgeTTSConfig struct {
	Lang string `json:"lang"`
}

type ElevenLabsTTSConfig struct {
	LanguageCode string `json:"languageCode"`
}

// Provider yields credentials and locale hints from the shared config.
// Implementations re-read the backing store on every call — there is no
// caching layer, so config edits take effect on the next operation.
type Provider interface {
	Load() (*Document, error)
	DiscordToken(account string) string
	TelegramToken(account string) string
	LocaleHint() string
}

// DefaultPath resolves the OpenClaw config location: $OPENCLAW_CONFIG_PATH,
// else ~/.openclaw/openclaw.json.
func DefaultPath() string {
	if p := os.Getenv("OPENCLAW_CONFIG_PATH"); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".openclaw", "openclaw.json")
}

// FileProvider reads the OpenClaw JSON config from disk. OpenClaw configs
// may carry comments and trailing commas, hence json5.
type FileProvider struct {
	Path string
}

func NewFileProvider(path string) *FileProvider {
	if path == "" {
		path = DefaultPath()
	}
	return &FileProvider{Path: path}
}

func (p *FileProvider) Load() (*Document, error) {
	raw, err := os.ReadFile(p.Path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", p.Path, err)
	}
	var doc Document
	if err := json5.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", p.Path, err)
	}
	return &doc, nil
}

func (p *FileProvider) DiscordToken(account string) string {
	doc, err := p.Load()
	if err != nil {
		return ""
	}
	return doc.Channels.Discord.Accounts[account].Token
}

// TelegramToken falls through account token → channel-level bot token →
// TELEGRAM_BOT_TOKEN.
func (p *FileProvider) TelegramToken(account string) string {
	if doc, err := p.Load(); err == nil {
		if t := doc.Channels.Telegram.Accounts[account].BotToken; t != "" {
			return t
		}
		if doc.Channels.Telegram.BotToken != "" {
			return doc.Channels.Telegram.BotToken
		}
	}
	return os.Getenv("TELEGRAM_BOT_TOKEN")
}

// LocaleHint returns the TTS locale configured for other OpenClaw speech
// providers, if any. Used as a mid-priority language candidate.
func (p *FileProvider) LocaleHint() string {
	doc, err := p.Load()
	if err != nil {
		return ""
	}
	if doc.Messages.TTS.Edge.Lang != "" {
		return doc.Messages.TTS.Edge.Lang
	}
	return doc.Messages.TTS.ElevenLabs.LanguageCode
}
