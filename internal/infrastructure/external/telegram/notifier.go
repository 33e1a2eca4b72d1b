// Package telegram delivers bot notifications to a single chat.
// Transport is delegated to go-telegram-bot-api; this package adds the chat
// binding, retries of transient failures, and error classification.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/practicum-hub/homework-bot/internal/domain/homework"
	"github.com/practicum-hub/homework-bot/pkg/logger"
	"github.com/practicum-hub/homework-bot/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// Config contains configuration for the notifier.
type Config struct {
	// ChatID is the only recipient of notifications
	ChatID int64

	// Attempts is the number of delivery attempts for transient failures
	Attempts int

	// RetryOptions tune the backoff between attempts
	RetryOptions []retry.Option

	// Logger for structured logging
	Logger *logger.Logger
}

// DefaultConfig returns sensible defaults.
func DefaultConfig(chatID int64) Config {
	return Config{
		ChatID:   chatID,
		Attempts: 3,
	}
}

// NewBot builds the bot API client and verifies the token with getMe.
// An empty endpoint selects the public Telegram API.
func NewBot(token, endpoint string, timeout time.Duration) (*tgbotapi.BotAPI, error) {
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}
	bot, err := tgbotapi.NewBotAPIWithClient(token, endpoint, &http.Client{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}
	return bot, nil
}

// ConnectConfig describes how to reach the Bot API at startup.
type ConnectConfig struct {
	Token    string
	Endpoint string
	Timeout  time.Duration

	// RetryOptions tune the wait between getMe attempts
	RetryOptions []retry.Option

	// Logger for structured logging
	Logger *logger.Logger
}

// Connect builds the bot and keeps retrying getMe until it succeeds or ctx
// ends. A token the API rejects is returned at once as homework.ErrConfigMissing.
func Connect(ctx context.Context, cfg ConnectConfig) (*tgbotapi.BotAPI, error) {
	if cfg.Logger == nil {
		cfg.Logger = logger.Nop()
	}
	log := cfg.Logger.Named("telegram")

	opts := append([]retry.Option{
		retry.WithMaxAttempts(math.MaxInt32),
		retry.WithInitialDelay(time.Second),
		retry.WithMaxDelay(time.Minute),
		retry.WithOnRetry(func(attempt int, err error, delay time.Duration) {
			log.Warn("telegram API is unreachable, retrying",
				logger.Int("attempt", attempt),
				logger.Duration("delay", delay),
				logger.Err(err),
			)
		}),
	}, cfg.RetryOptions...)

	var bot *tgbotapi.BotAPI
	err := retry.Do(ctx, func(ctx context.Context) error {
		b, err := NewBot(cfg.Token, cfg.Endpoint, cfg.Timeout)
		if err != nil {
			if IsUnauthorized(err) {
				return homework.WrapError("Connect", homework.ErrConfigMissing,
					"telegram rejected TELEGRAM_TOKEN", err)
			}
			return retry.Retryable(err)
		}
		bot = b
		return nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	return bot, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// NOTIFIER
// ══════════════════════════════════════════════════════════════════════════════

// Sender is the part of the bot API the notifier needs.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Notifier sends plain-text messages to the configured chat.
type Notifier struct {
	sender  Sender
	chatID  int64
	retrier *retry.Retrier
	logger  *logger.Logger
}

// NewNotifier creates a notifier bound to cfg.ChatID.
func NewNotifier(sender Sender, cfg Config) *Notifier {
	if cfg.Logger == nil {
		cfg.Logger = logger.Nop()
	}
	if cfg.Attempts <= 0 {
		cfg.Attempts = 1
	}

	log := cfg.Logger.Named("telegram")
	opts := append([]retry.Option{
		retry.WithOnRetry(func(attempt int, err error, delay time.Duration) {
			log.Warn("telegram delivery failed, retrying",
				logger.Int("attempt", attempt),
				logger.Duration("delay", delay),
				logger.Err(err),
			)
		}),
	}, cfg.RetryOptions...)

	return &Notifier{
		sender:  sender,
		chatID:  cfg.ChatID,
		retrier: retry.TelegramRetrier(cfg.Attempts, opts...),
		logger:  log,
	}
}

// SendMessage delivers text to the chat. Failures wrap homework.ErrDeliveryFailed.
func (n *Notifier) SendMessage(ctx context.Context, text string) error {
	n.logger.Info("sending message", logger.Int64("chat_id", n.chatID))

	var sent tgbotapi.Message
	err := n.retrier.Do(ctx, func(ctx context.Context) error {
		msg, err := n.sender.Send(tgbotapi.NewMessage(n.chatID, text))
		if err != nil {
			return classify(err)
		}
		sent = msg
		return nil
	})
	if err != nil {
		switch {
		case IsChatNotFound(err):
			n.logger.Error("chat rejected the message, check TELEGRAM_CHAT_ID", logger.Err(err))
		case IsBlocked(err):
			n.logger.Error("bot is blocked by the recipient", logger.Err(err))
		}
		return homework.WrapError("SendMessage", homework.ErrDeliveryFailed,
			fmt.Sprintf("send to chat %d", n.chatID), err)
	}

	n.logger.Info("message delivered", logger.Int("message_id", sent.MessageID))
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// ERRORS
// ══════════════════════════════════════════════════════════════════════════════

// classify marks transient failures as retryable: rate limiting, server errors
// and transport errors. Other API errors (bad chat, blocked bot) are final.
func classify(err error) error {
	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == http.StatusTooManyRequests:
			return retry.RetryableAfter(err, time.Duration(apiErr.RetryAfter)*time.Second)
		case apiErr.Code >= http.StatusInternalServerError:
			return retry.Retryable(err)
		default:
			return err
		}
	}
	return retry.Retryable(err)
}

// IsUnauthorized checks if the error indicates the bot token was rejected.
func IsUnauthorized(err error) bool {
	var apiErr *tgbotapi.Error
	return errors.As(err, &apiErr) &&
		(apiErr.Code == http.StatusUnauthorized || apiErr.Code == http.StatusNotFound)
}

// IsChatNotFound checks if the error indicates the configured chat does not exist.
func IsChatNotFound(err error) bool {
	var apiErr *tgbotapi.Error
	return errors.As(err, &apiErr) && apiErr.Code == http.StatusBadRequest
}

// IsBlocked checks if the error indicates the user blocked the bot.
func IsBlocked(err error) bool {
	var apiErr *tgbotapi.Error
	return errors.As(err, &apiErr) && apiErr.Code == http.StatusForbidden
}
