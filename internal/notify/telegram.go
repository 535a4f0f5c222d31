// Package notify delivers lead alerts to the operators' chat.
package notify

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/TejjP/zyero-lead-accelerator/internal/store"
)

// TelegramSender is the slice of the bot API the notifier uses.
type TelegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramNotifier posts a message to a chat when a booking lands.
// Delivery is best-effort: failures are logged and dropped.
type TelegramNotifier struct {
	sender TelegramSender
	chatID int64
	logger *zerolog.Logger
}

// NewTelegramNotifier creates a notifier from a bot token.
func NewTelegramNotifier(token string, chatID int64, logger *zerolog.Logger) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	return &TelegramNotifier{sender: bot, chatID: chatID, logger: logger}, nil
}

// NewTelegramNotifierWithSender wires a custom sender, mainly for tests.
func NewTelegramNotifierWithSender(sender TelegramSender, chatID int64, logger *zerolog.Logger) *TelegramNotifier {
	return &TelegramNotifier{sender: sender, chatID: chatID, logger: logger}
}

// BookingConfirmed sends the lead alert in the background.
func (n *TelegramNotifier) BookingConfirmed(_ context.Context, p store.BookingPayload) {
	go func() {
		text := fmt.Sprintf("New strategy call booked\n\n%s\n%s at %s\n%s | %s\n%s",
			p.Name, p.Date, p.Time, p.Email, p.Phone, p.Description)
		msg := tgbotapi.NewMessage(n.chatID, text)
		if _, err := n.sender.Send(msg); err != nil {
			n.logger.Warn().Err(err).Msg("lead alert delivery failed")
		}
	}()
}
