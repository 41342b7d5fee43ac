package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"textdigest/internal/domain/entity"
	"textdigest/internal/usecase/notify"
)

// RateLimitError represents a 429 response from a webhook service.
type RateLimitError struct {
	RetryAfter time.Duration
	Message    string
}

func (e *RateLimitError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s (retry after %v)", e.Message, e.RetryAfter)
	}
	return fmt.Sprintf("rate limit exceeded (retry after %v)", e.RetryAfter)
}

// ClientError represents a 4xx response other than 429. It is not retried.
type ClientError struct {
	StatusCode int
	Message    string
}

func (e *ClientError) Error() string {
	return e.Message
}

// ServerError represents a 5xx response. It is retried.
type ServerError struct {
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	return e.Message
}

// isRetryableError reports whether err is worth another attempt. Client errors
// are final; rate limits are handled separately.
func isRetryableError(err error) bool {
	var clientErr *ClientError
	var rateLimitErr *RateLimitError
	switch {
	case errors.As(err, &clientErr):
		return false
	case errors.As(err, &rateLimitErr):
		return false
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return false
	}
	return true
}

// retryPolicy bounds redelivery of one digest.
type retryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

func defaultRetryPolicy() retryPolicy {
	return retryPolicy{MaxAttempts: 2, BaseDelay: 5 * time.Second}
}

// webhook is the per-service part of a delivery.
type webhook struct {
	service     string
	url         string
	client      *http.Client
	rateLimiter *RateLimiter
	policy      retryPolicy
}

// deliver waits for the rate limiter, then posts payload with retries. 429
// responses wait for retry_after; server and network errors back off linearly.
func (w *webhook) deliver(ctx context.Context, d entity.Digest, payload any) error {
	requestID := uuid.New().String()
	logger := slog.Default().With(
		slog.String("request_id", requestID),
		slog.String("channel", w.service),
		slog.String("origin", d.Document.Origin))

	logger.Info("Starting notification")
	if err := w.rateLimiter.Allow(ctx); err != nil {
		return fmt.Errorf("rate limiter error: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= w.policy.MaxAttempts; attempt++ {
		err := w.post(ctx, payload)
		if err == nil {
			logger.Info("Notification successful", slog.Int("attempt", attempt))
			return nil
		}
		lastErr = err

		var delay time.Duration
		var rateLimitErr *RateLimitError
		switch {
		case errors.As(err, &rateLimitErr):
			logger.Warn("Rate limit hit, backing off",
				slog.Duration("retry_after", rateLimitErr.RetryAfter),
				slog.Int("attempt", attempt))
			delay = rateLimitErr.RetryAfter
			notify.RecordRateLimited(w.service, delay)
		case !isRetryableError(err):
			logger.Error("Notification failed with non-retryable error",
				slog.Any("error", err),
				slog.Int("attempt", attempt))
			return err
		default:
			delay = w.policy.BaseDelay * time.Duration(attempt)
			logger.Warn("Webhook request failed, retrying",
				slog.Any("error", err),
				slog.Int("attempt", attempt),
				slog.Duration("delay", delay))
		}
		if attempt == w.policy.MaxAttempts {
			break
		}

		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("context canceled during retry backoff: %w", ctx.Err())
		}
	}

	logger.Error("Notification failed after all retries",
		slog.Any("error", lastErr),
		slog.Int("max_attempts", w.policy.MaxAttempts))
	return fmt.Errorf("%s notification failed after %d attempts: %w", w.service, w.policy.MaxAttempts, lastErr)
}

// post sends payload as JSON and classifies the response.
func (w *webhook) post(ctx context.Context, payload any) error {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("create http request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("execute http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusTooManyRequests:
		return &RateLimitError{
			Message:    w.service + " rate limit exceeded",
			RetryAfter: extractRetryAfter(resp, body),
		}
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return &ClientError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("%s API client error: %s", w.service, string(body)),
		}
	case resp.StatusCode >= 500:
		return &ServerError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("%s API server error: %s", w.service, string(body)),
		}
	}
	return fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, string(body))
}

// retryAfterBody is the 429 body shape shared by Slack and Discord.
type retryAfterBody struct {
	RetryAfter float64 `json:"retry_after"` // seconds
}

// extractRetryAfter reads retry_after from a JSON body, then the Retry-After
// header, defaulting to 5 seconds.
func extractRetryAfter(resp *http.Response, body []byte) time.Duration {
	var parsed retryAfterBody
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.RetryAfter > 0 {
		return time.Duration(parsed.RetryAfter * float64(time.Second))
	}
	if header := resp.Header.Get("Retry-After"); header != "" {
		if seconds, err := strconv.Atoi(header); err == nil && seconds > 0 {
			return time.Duration(seconds) * time.Second
		}
	}
	return 5 * time.Second
}
