package notify

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"travelsearch/internal/model"
)

// MessageSender is the part of tgbotapi.BotAPI the notifier needs
type MessageSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramNotifier posts no-results events to an operations chat
type TelegramNotifier struct {
	bot    MessageSender
	chatID int64
}

// NewTelegramNotifier logs in with the bot token
func NewTelegramNotifier(token string, chatID int64) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram login: %w", err)
	}
	return NewTelegramNotifierWithSender(bot, chatID), nil
}

// NewTelegramNotifierWithSender uses an existing sender
func NewTelegramNotifierWithSender(bot MessageSender, chatID int64) *TelegramNotifier {
	return &TelegramNotifier{bot: bot, chatID: chatID}
}

// Name implements Notifier
func (n *TelegramNotifier) Name() string { return "telegram" }

// NotifyNoResults implements Notifier
func (n *TelegramNotifier) NotifyNoResults(_ context.Context, ev Event) error {
	msg := tgbotapi.NewMessage(n.chatID, formatEvent(ev))
	msg.DisableWebPagePreview = true
	if _, err := n.bot.Send(msg); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}

func formatEvent(ev Event) string {
	var b strings.Builder
	fmt.Fprintf(&b, "No results for search %s\n", ev.SearchID)
	fmt.Fprintf(&b, "Query: %s\n", ev.Intent.RawQuery)
	if ev.Intent.ServiceType != "" {
		fmt.Fprintf(&b, "Service: %s\n", ev.Intent.ServiceType.Label())
	}
	if model.HasText(ev.Intent.FromLocation) || model.HasText(ev.Intent.ToLocation) {
		fmt.Fprintf(&b, "Route: %s -> %s\n", orDash(ev.Intent.FromLocation), orDash(ev.Intent.ToLocation))
	}
	if ev.Intent.DateStart != nil {
		if ev.Intent.DateEnd != nil && *ev.Intent.DateEnd != *ev.Intent.DateStart {
			fmt.Fprintf(&b, "Dates: %s to %s\n", ev.Intent.DateStart, ev.Intent.DateEnd)
		} else {
			fmt.Fprintf(&b, "Date: %s\n", ev.Intent.DateStart)
		}
	}
	if ev.Intent.Passengers != nil {
		fmt.Fprintf(&b, "Passengers: %d\n", *ev.Intent.Passengers)
	}
	return strings.TrimRight(b.String(), "\n")
}

func orDash(s *string) string {
	if !model.HasText(s) {
		return "-"
	}
	return *s
}
