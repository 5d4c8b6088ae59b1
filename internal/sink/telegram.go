package sink

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/Alias1177/FraudStream/models"
)

// Sender is the part of *tgbotapi.BotAPI the alert sink uses
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramOptions configures the alert sink
type TelegramOptions struct {
	ChatID int64
	// Every is the minimum gap between two alerts. Alerts arriving faster are skipped.
	Every time.Duration
}

// TelegramSink posts an alert for every fraud and hot_potential event
type TelegramSink struct {
	sender     Sender
	chatID     int64
	limiter    *rate.Limiter
	suppressed atomic.Int64
	logger     zerolog.Logger
}

// NewTelegramBot logs in with token
func NewTelegramBot(token string) (*tgbotapi.BotAPI, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("initializing telegram bot: %w", err)
	}
	return bot, nil
}

// NewTelegramSink wraps a bot sender
func NewTelegramSink(sender Sender, opts TelegramOptions) *TelegramSink {
	// Telegram allows roughly one message per second into a single chat
	if opts.Every <= 0 {
		opts.Every = time.Second
	}
	return &TelegramSink{
		sender:  sender,
		chatID:  opts.ChatID,
		limiter: rate.NewLimiter(rate.Every(opts.Every), 1),
		logger:  log.With().Str("component", "telegram_sink").Int64("chat_id", opts.ChatID).Logger(),
	}
}

// Name implements Publisher
func (s *TelegramSink) Name() string {
	return "telegram"
}

// Suppressed returns how many alerts were skipped by the rate limit
func (s *TelegramSink) Suppressed() int64 {
	return s.suppressed.Load()
}

// Publish sends an alert when ev is worth one
func (s *TelegramSink) Publish(_ context.Context, ev models.TransactionEvent) error {
	if !alertable(ev.Status) {
		return nil
	}
	if !s.limiter.Allow() {
		s.suppressed.Add(1)
		return nil
	}

	msg := tgbotapi.NewMessage(s.chatID, formatAlert(ev))
	msg.ParseMode = "Markdown"

	if _, err := s.sender.Send(msg); err != nil {
		return fmt.Errorf("sending alert for %s: %w", ev.ID, err)
	}
	s.logger.Debug().Str("id", ev.ID).Str("status", string(ev.Status)).Msg("Alert sent")
	return nil
}

// Close implements Publisher
func (s *TelegramSink) Close() error {
	if n := s.suppressed.Load(); n > 0 {
		s.logger.Info().Int64("suppressed", n).Msg("Alerts skipped by rate limit")
	}
	return nil
}

func alertable(status models.Status) bool {
	return status == models.StatusFraud || status == models.StatusHotPotential
}

func formatAlert(ev models.TransactionEvent) string {
	var b strings.Builder

	switch ev.Status {
	case models.StatusFraud:
		b.WriteString("🚨 *FRAUD*")
	default:
		b.WriteString("⚠️ *HOT POTENTIAL*")
	}
	fmt.Fprintf(&b, " `%s`\n\n", ev.ID)
	fmt.Fprintf(&b, "💰 Amount: *$%.2f*\n", ev.Amount)
	fmt.Fprintf(&b, "📤 %s (%s)\n", ev.Source, regionLabel(ev.SourceRegion))
	fmt.Fprintf(&b, "📥 %s (%s)\n", ev.Target, regionLabel(ev.TargetRegion))
	fmt.Fprintf(&b, "📏 Distance: %.1f km\n", ev.DistanceKm)
	fmt.Fprintf(&b, "🕐 Hour: %02d:00\n", ev.Features.Hour)

	if ev.FraudProbability != nil {
		fmt.Fprintf(&b, "📊 Fraud probability: %.1f%%", *ev.FraudProbability*100)
	} else {
		b.WriteString("📊 Fraud probability: n/a")
	}
	return b.String()
}

func regionLabel(name string) string {
	return strings.ReplaceAll(name, "_", " ")
}
