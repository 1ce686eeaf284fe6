// Package telegram wraps the Bot API client and normalizes inbound
// webhook updates into the shape the conversation flow consumes.
package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Inbound is a normalized incoming message. Exactly one of Text and
// PhotoFileID may be empty; a message carrying neither is still delivered
// so the flow can prompt the user.
type Inbound struct {
	ChatID      int64
	TelegramID  int64
	Username    string
	Text        string
	PhotoFileID string
	SentAt      time.Time
}

// FromUpdate extracts the message payload from a webhook update. It returns
// false for updates that carry no message (edited messages, callback
// queries and so on), which the gateway acknowledges and drops.
func FromUpdate(u *tgbotapi.Update) (*Inbound, bool) {
	msg := u.Message
	if msg == nil {
		return nil, false
	}

	in := &Inbound{
		ChatID: msg.Chat.ID,
		Text:   msg.Text,
		SentAt: msg.Time(),
	}
	if msg.From != nil {
		in.TelegramID = msg.From.ID
		in.Username = msg.From.UserName
	}
	if len(msg.Photo) > 0 {
		// Telegram sends several sizes of the same photo; the last
		// entry is the largest.
		in.PhotoFileID = msg.Photo[len(msg.Photo)-1].FileID
	}
	if in.Text == "" && msg.Caption != "" {
		in.Text = msg.Caption
	}
	return in, true
}

// Client sends messages and resolves file download URLs through the Bot API.
type Client struct {
	bot *tgbotapi.BotAPI
	log *slog.Logger
}

func NewClient(token string, log *slog.Logger) (*Client, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot client: %w", err)
	}
	log.Info("Telegram bot client initialized", "bot_username", bot.Self.UserName)
	return &Client{bot: bot, log: log}, nil
}

// Reply sends a plain-text message to the chat.
func (c *Client) Reply(_ context.Context, chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := c.bot.Send(msg); err != nil {
		return fmt.Errorf("failed to send telegram message to chat %d: %w", chatID, err)
	}
	return nil
}

// Username returns the bot's username, used for onboarding deep links.
func (c *Client) Username() string {
	return c.bot.Self.UserName
}

// FileURL resolves a file ID to a direct download URL on Telegram's CDN.
func (c *Client) FileURL(fileID string) (string, error) {
	url, err := c.bot.GetFileDirectURL(fileID)
	if err != nil {
		return "", fmt.Errorf("failed to resolve telegram file %s: %w", fileID, err)
	}
	return url, nil
}
