// Package practicum implements the homework status API client.
// Each call issues exactly one GET request; shape validation of the answer is
// left to the homework domain package.
package practicum

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/practicum-hub/homework-bot/internal/domain/homework"
	"github.com/practicum-hub/homework-bot/pkg/logger"
)

// DefaultEndpoint is the homework statuses endpoint.
const DefaultEndpoint = "https://practicum.yandex.ru/api/user_api/homework_statuses/"

// ══════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// ClientConfig contains configuration for the homework API client.
type ClientConfig struct {
	// Endpoint is the homework statuses URL
	Endpoint string

	// Token is the OAuth token sent in the Authorization header
	Token string

	// Timeout is the HTTP request timeout
	Timeout time.Duration

	// HTTPClient overrides the default client (Timeout is ignored then)
	HTTPClient *http.Client

	// Logger for structured logging
	Logger *logger.Logger
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig(token string) ClientConfig {
	return ClientConfig{
		Endpoint: DefaultEndpoint,
		Token:    token,
		Timeout:  30 * time.Second,
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// CLIENT
// ══════════════════════════════════════════════════════════════════════════════

// Client is the homework status API client.
type Client struct {
	config     ClientConfig
	httpClient *http.Client
	logger     *logger.Logger
	now        func() time.Time
}

// NewClient creates a new homework API client.
func NewClient(config ClientConfig) *Client {
	if config.Logger == nil {
		config.Logger = logger.Nop()
	}
	if config.Endpoint == "" {
		config.Endpoint = DefaultEndpoint
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: config.Timeout}
	}

	return &Client{
		config:     config,
		httpClient: httpClient,
		logger:     config.Logger.Named("practicum"),
		now:        time.Now,
	}
}

// GetAPIAnswer requests homework statuses changed since from and returns the
// decoded JSON body. A zero from means "now".
func (c *Client) GetAPIAnswer(ctx context.Context, from time.Time) (any, error) {
	const op = "GetAPIAnswer"

	if from.IsZero() {
		from = c.now()
	}

	params := url.Values{}
	params.Set("from_date", strconv.FormatInt(from.Unix(), 10))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.Endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, homework.WrapError(op, homework.ErrRequestFailed, "create request", err)
	}

	req.Header.Set("Authorization", "OAuth "+c.config.Token)
	req.Header.Set("Accept", "application/json")

	c.logger.Info("requesting homework statuses", logger.Int64("from_date", from.Unix()))

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, homework.WrapError(op, homework.ErrRequestFailed,
			fmt.Sprintf("GET %s", c.config.Endpoint), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, homework.WrapError(op, homework.ErrRequestFailed, "read response", err)
	}

	c.logger.Info("homework API answered",
		logger.Int("status_code", resp.StatusCode),
		logger.Latency(time.Since(start)),
	)

	if resp.StatusCode != http.StatusOK {
		return nil, homework.WrapError(op, homework.ErrUnexpectedStatus,
			fmt.Sprintf("GET %s", c.config.Endpoint),
			&homework.StatusError{Code: resp.StatusCode, Status: resp.Status})
	}

	var answer any
	if err := json.Unmarshal(body, &answer); err != nil {
		return nil, homework.WrapError(op, homework.ErrRequestFailed, "decode response", err)
	}

	return answer, nil
}
