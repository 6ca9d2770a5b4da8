// Package telegram forwards notices to the shop admin's Telegram chat.
package telegram

import (
	"context"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/vbonduro/cafeliz/internal/notify"
)

// sender is the subset of tgbotapi.BotAPI the notifier needs.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Notifier struct {
	bot    sender
	chatID int64
	logger *slog.Logger
}

// New connects to the Bot API (it validates the token with getMe).
func New(token string, chatID int64, logger *slog.Logger) (*Notifier, error) {
	return NewWithEndpoint(token, tgbotapi.APIEndpoint, chatID, logger)
}

func NewWithEndpoint(token, endpoint string, chatID int64, logger *slog.Logger) (*Notifier, error) {
	bot, err := tgbotapi.NewBotAPIWithAPIEndpoint(token, endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to connect telegram bot: %w", err)
	}
	logger.Info("telegram notifier ready", "bot", bot.Self.UserName, "chat_id", chatID)
	return &Notifier{bot: bot, chatID: chatID, logger: logger}, nil
}

func (n *Notifier) Notify(_ context.Context, notice notify.Notice) {
	msg := tgbotapi.NewMessage(n.chatID, format(notice))
	if _, err := n.bot.Send(msg); err != nil {
		n.logger.Error("failed to send telegram notice", "chat_id", n.chatID, "error", err)
	}
}

func format(notice notify.Notice) string {
	if notice.Title == "" {
		return notice.Message
	}
	return notice.Title + ": " + notice.Message
}
