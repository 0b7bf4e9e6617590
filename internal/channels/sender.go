package channels

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/iCaptainNemo/local-voice/internal/config"
)

// Sender sends to one platform target. SendTyping is best-effort and never
// returns an error; the three send tiers return the platform message ID on
// success.
type Sender interface {
	SendTyping(ctx context.Context, target string)
	SendVoice(ctx context.Context, target, oggPath string) (string, error)
	SendAudio(ctx context.Context, target, filePath string) (string, error)
	SendText(ctx context.Context, target, text string) (string, error)
}

// NewSender builds the platform sender for a kind, pulling credentials for
// the account from the shared config.
func NewSender(kind Kind, cfg config.Provider, account string) (Sender, error) {
	switch kind {
	case KindDiscord:
		token := cfg.DiscordToken(account)
		if token == "" {
			return nil, fmt.Errorf("missing discord token for account: %s", account)
		}
		return NewDiscordSender(token)
	case KindTelegram:
		token := cfg.TelegramToken(account)
		if token == "" {
			return nil, fmt.Errorf("missing telegram bot token for account: %s", account)
		}
		return NewTelegramSender(token)
	}
	return nil, fmt.Errorf("unsupported channel-kind: %s", kind)
}

// BestEffort runs a notification-grade side call: failures are logged and
// never propagated, so indicators and status messages cannot block the
// critical path.
func BestEffort(op string, fn func() error) {
	if err := fn(); err != nil {
		slog.Debug("notification failed", "op", op, "error", err)
	}
}
