package notify

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// TelegramSink delivers messages to a Telegram chat.
type TelegramSink struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	logger *zap.Logger
}

// NewTelegramSink authenticates against the Bot API and returns a sink
// bound to the given chat.
func NewTelegramSink(token string, chatID int64, logger *zap.Logger) (*TelegramSink, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram auth: %w", err)
	}
	logger.Info("Telegram bot authorized", zap.String("account", bot.Self.UserName))
	return &TelegramSink{bot: bot, chatID: chatID, logger: logger}, nil
}

// Deliver implements Sink.
func (s *TelegramSink) Deliver(_ context.Context, msg Message) error {
	m := tgbotapi.NewMessage(s.chatID, msg.Text)
	if msg.HTML {
		m.ParseMode = tgbotapi.ModeHTML
	}
	if _, err := s.bot.Send(m); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}

// Close implements Sink.
func (s *TelegramSink) Close(context.Context) error { return nil }
