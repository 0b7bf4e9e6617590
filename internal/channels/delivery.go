package channels

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/iCaptainNemo/local-voice/internal/config"
)

// Tier names a delivery tier, in cascade order.
type Tier string

const (
	TierVoice      Tier = "voice"
	TierAttachment Tier = "attachment"
	TierText       Tier = "text"
)

// FallbackNotice is sent on the text tier when no audio tier could be
// delivered.
const FallbackNotice = "[local-voice fallback] I could not send audio, but synthesis completed successfully."

// Deliver walks the three delivery tiers in order and stops at the first
// success. Tier failures are swallowed and logged; only the final tier's
// failure is returned.
func Deliver(ctx context.Context, sender Sender, target, oggPath string) (Tier, string, error) {
	id, err := sender.SendVoice(ctx, target, oggPath)
	if err == nil {
		return TierVoice, id, nil
	}
	slog.Warn("native voice send failed, trying attachment fallback", "error", err)

	id, err = sender.SendAudio(ctx, target, oggPath)
	if err == nil {
		return TierAttachment, id, nil
	}
	slog.Warn("attachment fallback failed, trying text fallback", "error", err)

	id, err = sender.SendText(ctx, target, FallbackNotice)
	if err != nil {
		return "", "", fmt.Errorf("all delivery tiers failed: %w", err)
	}
	return TierText, id, nil
}

// PreflightTarget validates the delivery target and credentials before any
// synthesis work, aggregating every issue into one error.
func PreflightTarget(kind Kind, target, account string, cfg config.Provider) error {
	var issues []string
	if NormalizeTargetID(target) == "" {
		issues = append(issues, "missing target channel/chat id")
	}
	switch kind {
	case KindDiscord:
		if cfg.DiscordToken(account) == "" {
			issues = append(issues, "missing discord token for account: "+account)
		}
	case KindTelegram:
		if cfg.TelegramToken(account) == "" {
			issues = append(issues, "missing telegram bot token for account: "+account)
		}
	default:
		issues = append(issues, fmt.Sprintf("unsupported channel-kind: %s", kind))
	}
	if len(issues) > 0 {
		return fmt.Errorf("preflight failed:\n- %s", strings.Join(issues, "\n- "))
	}
	return nil
}
