// Package notify pushes operator-facing messages, primarily completed
// verdicts, over Telegram.
package notify

import (
	"context"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// broadcastDelay paces bulk sends. Telegram allows about 30 messages per
// second for bots, so 50ms between messages stays under the limit.
const broadcastDelay = 50 * time.Millisecond

// Notifier delivers a short text message to the operator channel.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// Telegram sends notifications through a Telegram bot to a fixed chat.
type Telegram struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	logger zerolog.Logger
}

var _ Notifier = (*Telegram)(nil)

// NewTelegram connects the bot API and returns a notifier bound to chatID.
func NewTelegram(token string, chatID int64, logger zerolog.Logger) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram init failed: %w", err)
	}

	return &Telegram{
		bot:    bot,
		chatID: chatID,
		logger: logger.With().Str("component", "notify").Logger(),
	}, nil
}

// Notify sends text to the configured chat.
func (t *Telegram) Notify(_ context.Context, text string) error {
	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.ParseMode = "Markdown"

	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("telegram send failed: %w", err)
	}
	return nil
}

// Broadcast sends text to every chat ID in turn, pausing between sends to
// avoid Telegram rate limiting. It returns the number of successful and
// failed sends; a cancelled context stops the remaining sends.
func (t *Telegram) Broadcast(ctx context.Context, chatIDs []int64, text string) (sent, failed int) {
	for i, chatID := range chatIDs {
		msg := tgbotapi.NewMessage(chatID, text)
		msg.ParseMode = "Markdown"

		if _, err := t.bot.Send(msg); err != nil {
			t.logger.Warn().Err(err).Int64("chat_id", chatID).Msg("Broadcast send failed")
			failed++
		} else {
			sent++
		}

		if i < len(chatIDs)-1 {
			select {
			case <-time.After(broadcastDelay):
			case <-ctx.Done():
				return sent, failed
			}
		}
	}

	return sent, failed
}

// Log is a Notifier that only writes to the log. It stands in when no
// Telegram token is configured.
type Log struct {
	logger zerolog.Logger
}

var _ Notifier = (*Log)(nil)

// NewLog returns a log-only notifier.
func NewLog(logger zerolog.Logger) *Log {
	return &Log{logger: logger.With().Str("component", "notify").Logger()}
}

// Notify writes the message to the log.
func (l *Log) Notify(_ context.Context, text string) error {
	l.logger.Info().Msg(text)
	return nil
}
