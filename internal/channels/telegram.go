package channels

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
)

// TelegramSender delivers through the Telegram Bot API. Targets may carry
// a forum-topic thread id, which every call forwards when present.
type TelegramSender struct {
	bot *telego.Bot
}

func NewTelegramSender(token string) (*TelegramSender, error) {
	bot, err := telego.NewBot(token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}
	return &TelegramSender{bot: bot}, nil
}

func telegramChatID(t TelegramTarget) telego.ChatID {
	if id, err := strconv.ParseInt(t.ChatID, 10, 64); err == nil {
		return tu.ID(id)
	}
	return telego.ChatID{Username: t.ChatID}
}

func (s *TelegramSender) SendTyping(ctx context.Context, target string) {
	t := ParseTelegramTarget(target)
	BestEffort("telegram chat action", func() error {
		params := &telego.SendChatActionParams{
			ChatID: telegramChatID(t),
			Action: telego.ChatActionRecordVoice,
		}
		if t.MessageThreadID > 0 {
			params.MessageThreadID = t.MessageThreadID
		}
		return s.bot.SendChatAction(ctx, params)
	})
}

func (s *TelegramSender) SendVoice(ctx context.Context, target, oggPath string) (string, error) {
	t := ParseTelegramTarget(target)
	f, err := os.Open(oggPath)
	if err != nil {
		return "", fmt.Errorf("open voice file: %w", err)
	}
	defer f.Close()

	params := &telego.SendVoiceParams{
		ChatID: telegramChatID(t),
		Voice:  tu.File(tu.NameReader(f, filepath.Base(oggPath))),
	}
	if t.MessageThreadID > 0 {
		params.MessageThreadID = t.MessageThreadID
	}
	msg, err := s.bot.SendVoice(ctx, params)
	if err != nil {
		return "", fmt.Errorf("telegram sendVoice: %w", err)
	}
	return strconv.Itoa(msg.MessageID), nil
}

func (s *TelegramSender) SendAudio(ctx context.Context, target, filePath string) (string, error) {
	t := ParseTelegramTarget(target)
	f, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("open audio file: %w", err)
	}
	defer f.Close()

	params := &telego.SendAudioParams{
		ChatID: telegramChatID(t),
		Audio:  tu.File(tu.NameReader(f, filepath.Base(filePath))),
	}
	if t.MessageThreadID > 0 {
		params.MessageThreadID = t.MessageThreadID
	}
	msg, err := s.bot.SendAudio(ctx, params)
	if err != nil {
		return "", fmt.Errorf("telegram sendAudio: %w", err)
	}
	return strconv.Itoa(msg.MessageID), nil
}

func (s *TelegramSender) SendText(ctx context.Context, target, text string) (string, error) {
	t := ParseTelegramTarget(target)
	params := &telego.SendMessageParams{
		ChatID: telegramChatID(t),
		Text:   text,
	}
	if t.MessageThreadID > 0 {
		params.MessageThreadID = t.MessageThreadID
	}
	msg, err := s.bot.SendMessage(ctx, params)
	if err != nil {
		return "", fmt.Errorf("telegram sendMessage: %w", err)
	}
	return strconv.Itoa(msg.MessageID), nil
}
