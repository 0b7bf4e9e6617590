// Package channels delivers synthesized audio to chat platform targets
// with a three-tier fallback: native voice message, generic audio
// attachment, plain text notice.
package channels

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Kind names a supported chat platform.
type Kind string

const (
	KindDiscord  Kind = "discord"
	KindTelegram Kind = "telegram"
)

// ParseKind folds a raw channel-kind string onto the closed Kind set.
func ParseKind(raw string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "discord":
		return KindDiscord, nil
	case "telegram":
		return KindTelegram, nil
	}
	return "", fmt.Errorf("unsupported channel-kind: %s", raw)
}

var topicTargetRe = regexp.MustCompile(`^(.*?):topic:(\d+)$`)

// NormalizeTargetID strips the uniform "channel:" CLI prefix from a
// delivery target.
func NormalizeTargetID(raw string) string {
	return strings.TrimPrefix(strings.TrimSpace(raw), "channel:")
}

// TelegramTarget is a chat plus an optional forum-topic thread.
// MessageThreadID zero means no thread.
type TelegramTarget struct {
	ChatID          string
	MessageThreadID int
}

// ParseTelegramTarget splits the `<chatId>:topic:<threadId>` grammar after
// prefix normalization.
func ParseTelegramTarget(raw string) TelegramTarget {
	id := NormalizeTargetID(raw)
	if m := topicTargetRe.FindStringSubmatch(id); m != nil {
		thread, _ := strconv.Atoi(m[2])
		return TelegramTarget{ChatID: m[1], MessageThreadID: thread}
	}
	return TelegramTarget{ChatID: id}
}
