// Package poller runs the homework status loop: poll the API, turn the latest
// homework into a message, and send it unless it repeats the previous one.
package poller

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/google/uuid"

	"github.com/practicum-hub/homework-bot/internal/domain/homework"
	"github.com/practicum-hub/homework-bot/pkg/logger"
)

// HomeworkAPI fetches the raw homework statuses answer.
type HomeworkAPI interface {
	GetAPIAnswer(ctx context.Context, from time.Time) (any, error)
}

// MessageSender delivers a notification to the chat.
type MessageSender interface {
	SendMessage(ctx context.Context, text string) error
}

// Message prefixes for failures reported to the chat.
const (
	failurePrefix  = "Сбой в работе программы: "
	criticalPrefix = "Критическая ошибка "
)

// Outcome describes what a cycle did with its message.
type Outcome int

const (
	// OutcomeSent means the message was delivered.
	OutcomeSent Outcome = iota
	// OutcomeDuplicate means the message repeated the previous one and was not sent.
	OutcomeDuplicate
	// OutcomeDeliveryFailed means sending was attempted and failed.
	OutcomeDeliveryFailed
	// OutcomeCancelled means the context ended before a message was produced.
	OutcomeCancelled
)

// String returns the string representation of the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeSent:
		return "sent"
	case OutcomeDuplicate:
		return "duplicate"
	case OutcomeDeliveryFailed:
		return "delivery_failed"
	case OutcomeCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// CycleResult is the record of one poll-validate-parse-notify pass.
type CycleResult struct {
	ID      string
	Message string
	Outcome Outcome

	// Err is the stage failure the message reports, if any.
	Err error

	// DeliveryErr is set when Outcome is OutcomeDeliveryFailed.
	DeliveryErr error
}

// panicError is a recovered stage panic with the stack it unwound from.
type panicError struct {
	value any
	stack []byte
}

func (e *panicError) Error() string {
	return fmt.Sprintf("panic: %v", e.value)
}

// Config contains configuration for the poller.
type Config struct {
	// RetryPeriod is the pause between cycles.
	RetryPeriod time.Duration

	// From is the from_date sent with every request. Zero means process start.
	From time.Time

	// Logger for structured logging
	Logger *logger.Logger
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		RetryPeriod: 10 * time.Minute,
	}
}

// Poller owns the polling loop and the last-sent message.
type Poller struct {
	api         HomeworkAPI
	sender      MessageSender
	logger      *logger.Logger
	retryPeriod time.Duration
	from        time.Time

	// lastSent is the message the previous cycle settled on; nil before the
	// first successful send.
	lastSent *string
}

// New creates a poller.
func New(api HomeworkAPI, sender MessageSender, cfg Config) *Poller {
	if cfg.Logger == nil {
		cfg.Logger = logger.Nop()
	}
	if cfg.RetryPeriod <= 0 {
		cfg.RetryPeriod = DefaultConfig().RetryPeriod
	}
	if cfg.From.IsZero() {
		cfg.From = time.Now()
	}

	return &Poller{
		api:         api,
		sender:      sender,
		logger:      cfg.Logger.Named("poller"),
		retryPeriod: cfg.RetryPeriod,
		from:        cfg.From,
	}
}

// LastSent returns the cached message, if any.
func (p *Poller) LastSent() (string, bool) {
	if p.lastSent == nil {
		return "", false
	}
	return *p.lastSent, true
}

// Run executes cycles every RetryPeriod until ctx is cancelled.
func (p *Poller) Run(ctx context.Context) error {
	p.logger.Info("polling started",
		logger.Duration("retry_period", p.retryPeriod),
		logger.Int64("from_date", p.from.Unix()),
	)

	for {
		if ctx.Err() != nil {
			break
		}

		p.Cycle(ctx)

		timer := time.NewTimer(p.retryPeriod)
		select {
		case <-ctx.Done():
			timer.Stop()
		case <-timer.C:
		}
	}

	p.logger.Info("polling stopped")
	return nil
}

// Cycle runs a single poll-validate-parse-notify pass.
func (p *Poller) Cycle(ctx context.Context) CycleResult {
	res := CycleResult{ID: uuid.NewString()}
	log := p.logger.With(logger.CycleID(res.ID))
	start := time.Now()

	message, err := p.poll(ctx, log)
	if err != nil {
		if ctx.Err() != nil {
			log.Info("cycle interrupted", logger.Err(err))
			res.Outcome = OutcomeCancelled
			res.Err = err
			return res
		}
		message = p.report(err, log)
		res.Err = err
	}
	res.Message = message

	if last, ok := p.LastSent(); ok && last == message {
		// The previous entry is retired and the slot keeps the current message.
		p.lastSent = &message
		log.Debug("message repeats the previous one, not sent", logger.Latency(time.Since(start)))
		res.Outcome = OutcomeDuplicate
		return res
	}

	if err := p.sender.SendMessage(ctx, message); err != nil {
		log.Error("failed to send message", logger.Err(err))
		res.Outcome = OutcomeDeliveryFailed
		res.DeliveryErr = err
		return res
	}

	p.lastSent = &message
	log.Info("message sent", logger.String("text", message), logger.Latency(time.Since(start)))
	res.Outcome = OutcomeSent
	return res
}

// poll runs the API, validation and parsing stages. A panic in any stage is
// returned as a *panicError.
func (p *Poller) poll(ctx context.Context, log *logger.Logger) (message string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &panicError{value: r, stack: debug.Stack()}
		}
	}()

	raw, err := p.api.GetAPIAnswer(ctx, p.from)
	if err != nil {
		return "", err
	}

	resp, err := homework.DecodeResponse(raw)
	if err != nil {
		return "", err
	}

	if log.Enabled(logger.LevelDebug) {
		log.Debug("homework statuses received",
			logger.Int("homeworks", len(resp.Homeworks)),
			logger.Int64("current_date", resp.CurrentDate),
		)
	}

	latest, ok := resp.Latest()
	if !ok {
		return homework.NoHomeworkMessage, nil
	}

	if name, ok := latest.Name(); ok {
		log = log.With(logger.HomeworkName(name))
	}
	message, err = homework.ParseStatus(latest)
	if err != nil {
		return "", err
	}
	log.Debug("homework status parsed")
	return message, nil
}

// report turns a stage failure into the chat message and logs it with the
// severity of its kind.
func (p *Poller) report(err error, log *logger.Logger) string {
	if homework.IsKnown(err) {
		message := failurePrefix + err.Error()
		log.Error(message, logger.String("kind", homework.KindOf(err).Error()))
		return message
	}

	message := criticalPrefix + err.Error()
	trace := logger.Stack("stacktrace")
	if pe, ok := err.(*panicError); ok {
		trace = logger.String("stacktrace", string(pe.stack))
	}
	log.Critical(message, trace)
	return message
}
