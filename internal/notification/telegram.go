package notification

import (
	"context"
	"fmt"

	"github.com/figoaljufrie/roomstay/internal/domain"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/wb-go/wbf/logger"
)

// TelegramNotifier delivers booking status messages to an operations
// chat. Best effort: a missing token or send failure is logged, never
// propagated to the booking flow.
type TelegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	logger logger.Logger
}

func NewTelegramNotifier(token string, chatID int64, logger logger.Logger) (*TelegramNotifier, error) {
	if token == "" {
		logger.Warn("telegram bot token is empty, notifications disabled")
		return &TelegramNotifier{bot: nil, chatID: chatID, logger: logger}, nil
	}

	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}

	return &TelegramNotifier{bot: bot, chatID: chatID, logger: logger}, nil
}

func (n *TelegramNotifier) NotifyBookingCreated(ctx context.Context, b *domain.Booking) {
	text := fmt.Sprintf(
		"*Booking created*\n\nNo: %s\nAmount: %d\nPay before: %s",
		b.BookingNo, b.TotalAmount, b.PaymentDeadline.Format("02.01.2006 15:04 MST"),
	)
	n.send(ctx, text)
}

func (n *TelegramNotifier) NotifyBookingConfirmed(ctx context.Context, b *domain.Booking) {
	text := fmt.Sprintf("*Booking confirmed*\n\nNo: %s", b.BookingNo)
	n.send(ctx, text)
}

func (n *TelegramNotifier) NotifyBookingCancelled(ctx context.Context, b *domain.Booking, reason string) {
	text := fmt.Sprintf("*Booking cancelled*\n\nNo: %s\nReason: %s", b.BookingNo, reason)
	n.send(ctx, text)
}

func (n *TelegramNotifier) NotifyBookingExpired(ctx context.Context, b *domain.Booking) {
	text := fmt.Sprintf(
		"*Booking expired*\n\nNo: %s\nPayment deadline %s passed without proof.",
		b.BookingNo, b.PaymentDeadline.Format("02.01.2006 15:04 MST"),
	)
	n.send(ctx, text)
}

func (n *TelegramNotifier) send(ctx context.Context, text string) {
	if n.bot == nil || n.chatID == 0 {
		n.logger.Debug("notification skipped (bot disabled)", logger.String("text", text))
		return
	}

	if err := ctx.Err(); err != nil {
		n.logger.Debug("notification skipped (context cancelled)")
		return
	}

	msg := tgbotapi.NewMessage(n.chatID, text)
	msg.ParseMode = "Markdown"

	if _, err := n.bot.Send(msg); err != nil {
		n.logger.Error("failed to send telegram notification",
			logger.String("error", err.Error()),
		)
	}
}
