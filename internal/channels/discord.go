package channels

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/bwmarrin/discordgo"
)

const (
	// discordVoiceFlag is the message-flag bit that marks an attachment
	// message as a native voice message.
	discordVoiceFlag = 8192

	voiceMessageFilename = "voice-message.ogg"

	// Discord's voice renderer requires a duration even though its
	// precision does not affect decoding.
	defaultVoiceDurationSecs = 5.0
)

// defaultWaveform is the base64 amplitude envelope Discord requires on
// voice messages. The renderer only needs a plausible shape.
var defaultWaveform = base64.StdEncoding.EncodeToString(make([]byte, 256))

// DiscordSender delivers through the Discord REST API. The plain tiers go
// through discordgo's wrapped endpoints; the native voice message uses the
// raw three-step attachment upload protocol, which discordgo does not wrap.
type DiscordSender struct {
	session *discordgo.Session
	http    *http.Client
}

func NewDiscordSender(token string) (*DiscordSender, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("discord session: %w", err)
	}
	return &DiscordSender{session: session, http: http.DefaultClient}, nil
}

func (d *DiscordSender) SendTyping(ctx context.Context, target string) {
	ch := NormalizeTargetID(target)
	BestEffort("discord typing", func() error {
		return d.session.ChannelTyping(ch, discordgo.WithContext(ctx))
	})
}

func (d *DiscordSender) SendText(ctx context.Context, target, text string) (string, error) {
	msg, err := d.session.ChannelMessageSend(NormalizeTargetID(target), text, discordgo.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("discord send message: %w", err)
	}
	return msg.ID, nil
}

func (d *DiscordSender) SendAudio(ctx context.Context, target, filePath string) (string, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("open audio file: %w", err)
	}
	defer f.Close()

	msg, err := d.session.ChannelFileSend(NormalizeTargetID(target), filepath.Base(filePath), f, discordgo.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("discord send attachment: %w", err)
	}
	return msg.ID, nil
}

type discordUploadSlot struct {
	Attachments []struct {
		UploadURL      string `json:"upload_url"`
		UploadFilename string `json:"upload_filename"`
	} `json:"attachments"`
}

// SendVoice runs the three-step native voice-message protocol: request an
// upload slot, PUT the bytes to the returned storage URL, then post a
// message referencing the upload with the voice flag set.
func (d *DiscordSender) SendVoice(ctx context.Context, target, oggPath string) (string, error) {
	ch := NormalizeTargetID(target)
	data, err := os.ReadFile(oggPath)
	if err != nil {
		return "", fmt.Errorf("read voice file: %w", err)
	}

	slotReq := map[string]any{
		"files": []map[string]any{
			{"filename": voiceMessageFilename, "file_size": len(data), "id": "0"},
		},
	}
	raw, err := d.session.Request("POST", discordgo.EndpointChannel(ch)+"/attachments", slotReq, discordgo.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("discord attachment slot: %w", err)
	}
	var slot discordUploadSlot
	if err := json.Unmarshal(raw, &slot); err != nil {
		return "", fmt.Errorf("discord attachment slot: %w", err)
	}
	if len(slot.Attachments) == 0 {
		return "", fmt.Errorf("discord attachment slot: no upload url returned")
	}
	upload := slot.Attachments[0]

	// The upload URL points at Discord's storage host, not the API, so it
	// bypasses the session's authenticated client.
	putReq, err := http.NewRequestWithContext(ctx, http.MethodPut, upload.UploadURL, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("discord upload: %w", err)
	}
	putReq.Header.Set("Content-Type", "audio/ogg")
	resp, err := d.http.Do(putReq)
	if err != nil {
		return "", fmt.Errorf("discord upload: %w", err)
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("discord upload: status %d", resp.StatusCode)
	}

	msgReq := map[string]any{
		"flags": discordVoiceFlag,
		"attachments": []map[string]any{{
			"id":                "0",
			"filename":          voiceMessageFilename,
			"uploaded_filename": upload.UploadFilename,
			"duration_secs":     defaultVoiceDurationSecs,
			"waveform":          defaultWaveform,
		}},
	}
	raw, err = d.session.Request("POST", discordgo.EndpointChannelMessages(ch), msgReq, discordgo.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("discord voice message: %w", err)
	}
	var msg struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(raw, &msg); err != nil {
		return "", fmt.Errorf("discord voice message: %w", err)
	}
	return msg.ID, nil
}
