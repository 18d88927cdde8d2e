// Package duhttp is the single-request HTTP primitive shared by every
// resource fetcher: retry/backoff/auth-fail policy for JSON, a non-retrying
// variant for binary document downloads (spec §4.3).
package duhttp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Abraxas-365/docusync/internal/ducontract"
	"github.com/Abraxas-365/docusync/pkg/errx"
)

const (
	// DefaultTimeout is used for JSON requests.
	DefaultTimeout = 30 * time.Second
	// BinaryTimeout is longer to accommodate larger document downloads.
	BinaryTimeout = 60 * time.Second
)

var registry = errx.NewRegistry("DUHTTP")

var (
	// ErrUnauthorized is raised on HTTP 401; never retried (spec §4.3/§7).
	ErrUnauthorized = registry.Register(
		"UNAUTHORIZED", errx.TypeAuthorization, http.StatusUnauthorized,
		"DocuSign request failed authentication",
	)
	// ErrRequestFailed covers every other non-2xx or transport failure.
	ErrRequestFailed = registry.Register(
		"REQUEST_FAILED", errx.TypeExternal, http.StatusBadGateway,
		"DocuSign API request failed",
	)
)

// RetryPolicy describes how Client retries JSON requests: exponential
// backoff starting at InitialDelay, doubled (by Multiplier) after each
// retryable failure, up to MaxAttempts total tries.
type RetryPolicy struct {
	MaxAttempts  int
	InitialDelay time.Duration
	Multiplier   time.Duration
}

// DefaultRetryPolicy matches spec §4.3: 3 attempts, 1s initial delay,
// doubling.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, InitialDelay: time.Second, Multiplier: 2}
}

// Client is the HTTP engine every fetcher in internal/duapi builds on.
type Client struct {
	jsonClient   *http.Client
	binaryClient *http.Client
	retry        RetryPolicy
	log          ducontract.Logger
}

// New builds a Client with the default timeouts and retry policy.
func New(log ducontract.Logger) *Client {
	return &Client{
		jsonClient:   &http.Client{Timeout: DefaultTimeout},
		binaryClient: &http.Client{Timeout: BinaryTimeout},
		retry:        DefaultRetryPolicy(),
		log:          log,
	}
}

// GetJSON performs an authenticated GET, retrying on 429/5xx/network errors
// and decoding the JSON body into out on success. 401 and other 4xx
// responses are returned immediately without retry.
func (c *Client) GetJSON(ctx context.Context, url, accessToken string, out any) error {
	var lastErr error
	delay := c.retry.InitialDelay

	for attempt := 1; attempt <= c.retry.MaxAttempts; attempt++ {
		err := c.doJSON(ctx, url, accessToken, out)
		if err == nil {
			return nil
		}
		lastErr = err

		if !isRetryable(err) || attempt == c.retry.MaxAttempts {
			return err
		}

		c.log.Warning("retrying DocuSign request",
			ducontract.F("url", url), ducontract.F("attempt", attempt), ducontract.F("delay", delay.String()))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= c.retry.Multiplier
	}
	return lastErr
}

func (c *Client) doJSON(ctx context.Context, url, accessToken string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return registry.NewWithCause(ErrRequestFailed, err).WithDetail("retryable", false)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.jsonClient.Do(req)
	if err != nil {
		return registry.NewWithCause(ErrRequestFailed, err).
			WithDetail("url", url).WithDetail("retryable", true)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return registry.NewWithCause(ErrRequestFailed, err).WithDetail("retryable", true)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		c.log.Severe("DocuSign authentication failed", ducontract.F("url", url))
		return registry.NewWithMessage(ErrUnauthorized, "DocuSign request failed authentication").
			WithDetail("status", resp.StatusCode).WithDetail("retryable", false)

	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return registry.NewWithMessage(ErrRequestFailed, fmt.Sprintf("DocuSign API returned %d", resp.StatusCode)).
			WithDetail("url", url).WithDetail("status", resp.StatusCode).WithDetail("retryable", true)

	case resp.StatusCode >= 400:
		c.log.Severe("DocuSign API request failed",
			ducontract.F("url", url), ducontract.F("status", resp.StatusCode))
		return registry.NewWithMessage(ErrRequestFailed, fmt.Sprintf("DocuSign API returned %d", resp.StatusCode)).
			WithDetail("url", url).WithDetail("status", resp.StatusCode).WithDetail("retryable", false)
	}

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return registry.NewWithCause(ErrRequestFailed, err).WithDetail("retryable", false)
		}
	}
	return nil
}

// GetBinary performs an authenticated GET for a binary payload. It never
// retries: on any failure it logs a warning and returns nil, per spec §4.3.
func (c *Client) GetBinary(ctx context.Context, url, accessToken string) []byte {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		c.log.Warning("failed to build document content request", ducontract.F("url", url), ducontract.F("error", err.Error()))
		return nil
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.binaryClient.Do(req)
	if err != nil {
		c.log.Warning("failed to download document content", ducontract.F("url", url), ducontract.F("error", err.Error()))
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.log.Warning("document content download returned an error status",
			ducontract.F("url", url), ducontract.F("status", resp.StatusCode))
		return nil
	}

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		c.log.Warning("failed to read document content body", ducontract.F("url", url), ducontract.F("error", err.Error()))
		return nil
	}
	return content
}

func isRetryable(err error) bool {
	var e *errx.Error
	if errx.As(err, &e) {
		if v, ok := e.Details["retryable"].(bool); ok {
			return v
		}
	}
	return false
}
