// Package main is the entry point of the homework status bot.
//
// The bot polls the Practicum homework API on a fixed period and forwards
// every change of the latest homework's review state to one Telegram chat.
package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/practicum-hub/homework-bot/config"
	"github.com/practicum-hub/homework-bot/internal/application/poller"
	"github.com/practicum-hub/homework-bot/internal/domain/homework"
	"github.com/practicum-hub/homework-bot/internal/infrastructure/external/practicum"
	"github.com/practicum-hub/homework-bot/internal/infrastructure/external/telegram"
	"github.com/practicum-hub/homework-bot/pkg/logger"
	"github.com/practicum-hub/homework-bot/pkg/retry"
)

// connectRetryOptions pace the getMe attempts while Telegram is unreachable.
var connectRetryOptions = []retry.Option{
	retry.WithInitialDelay(time.Second),
	retry.WithMaxDelay(time.Minute),
}

// ══════════════════════════════════════════════════════════════════════════════
// MAIN
// ══════════════════════════════════════════════════════════════════════════════

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Stdout); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, out io.Writer) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. CONFIGURATION
	// ─────────────────────────────────────────────────────────────────────────
	bootLog := logger.New(logger.Options{Output: out, Level: logger.LevelInfo, Name: "homework_bot"})

	if err := config.LoadDotEnv(); err != nil {
		bootLog.Critical("failed to read .env file", logger.Err(err))
		return err
	}

	if !config.CheckTokens() {
		err := homework.NewError("CheckTokens", homework.ErrConfigMissing, "required environment variables are not set")
		bootLog.Critical("Отсутствует обязательная переменная окружения",
			logger.Any("missing", config.MissingTokens()),
		)
		_ = bootLog.Sync()
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		bootLog.Critical("failed to load config", logger.Err(err))
		_ = bootLog.Sync()
		return err
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. LOGGING
	// ─────────────────────────────────────────────────────────────────────────
	log := setupLogger(cfg, out)
	defer func() { _ = log.Sync() }()

	log.Info("starting homework bot",
		logger.String("env", string(cfg.App.Environment)),
		logger.String("version", cfg.App.Version),
		logger.Duration("retry_period", cfg.Poller.RetryPeriod),
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 3. EXTERNAL CLIENTS
	// ─────────────────────────────────────────────────────────────────────────
	apiConfig := practicum.DefaultClientConfig(cfg.Practicum.Token)
	apiConfig.Endpoint = cfg.Practicum.Endpoint
	apiConfig.Timeout = cfg.Practicum.RequestTimeout
	apiConfig.Logger = log
	apiClient := practicum.NewClient(apiConfig)

	bot, err := telegram.Connect(ctx, telegram.ConnectConfig{
		Token:        cfg.Telegram.Token,
		Endpoint:     cfg.Telegram.APIEndpoint,
		Timeout:      cfg.Telegram.RequestTimeout,
		RetryOptions: connectRetryOptions,
		Logger:       log,
	})
	if err != nil {
		if ctx.Err() != nil {
			log.Info("stopped before Telegram became reachable", logger.Err(err))
			return nil
		}
		log.Critical("failed to connect to Telegram", logger.Err(err))
		return err
	}
	log.Info("telegram bot authorized", logger.String("username", bot.Self.UserName))

	notifierConfig := telegram.DefaultConfig(cfg.Telegram.ChatID)
	notifierConfig.Attempts = cfg.Telegram.SendAttempts
	notifierConfig.RetryOptions = []retry.Option{retry.WithInitialDelay(time.Second)}
	notifierConfig.Logger = log
	notifier := telegram.NewNotifier(bot, notifierConfig)

	// ─────────────────────────────────────────────────────────────────────────
	// 4. POLLING LOOP
	// ─────────────────────────────────────────────────────────────────────────
	pollerConfig := poller.DefaultConfig()
	pollerConfig.RetryPeriod = cfg.Poller.RetryPeriod
	pollerConfig.Logger = log

	if err := poller.New(apiClient, notifier, pollerConfig).Run(ctx); err != nil {
		log.Error("polling loop failed", logger.Err(err))
		return err
	}

	log.Info("shutdown completed")
	return nil
}

// setupLogger configures the logger from the observability settings.
func setupLogger(cfg *config.Config, out io.Writer) *logger.Logger {
	opts := logger.DefaultOptions()
	opts.Output = out
	opts.Level = logger.ParseLevel(cfg.Observability.LogLevel)
	opts.Format = logger.Format(cfg.Observability.LogFormat)
	opts.Name = cfg.App.Name
	opts.AddCaller = cfg.IsDevelopment()
	return logger.New(opts)
}
