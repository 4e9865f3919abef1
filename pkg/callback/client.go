package callback

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"
)

// Event is one delivery unit pushed to the caller's endpoint. Exactly one
// event per request has Done=true, and nothing follows it. Success is false
// only on the terminal event of a failed run; chunk events always carry
// Success=true.
type Event struct {
	MessageID    string `json:"messageId"`
	Chunk        string `json:"chunk,omitempty"`
	Done         bool   `json:"done"`
	Success      bool   `json:"success"`
	ErrorMessage string `json:"errorMessage,omitempty"`
}

// PermanentError marks a delivery failure that must not be retried
// (malformed target, 4xx rejection).
type PermanentError struct {
	Reason string
}

func (e *PermanentError) Error() string {
	return e.Reason
}

// Client posts callback events with bounded retries on transient failures.
type Client struct {
	httpClient  *http.Client
	headerName  string
	maxAttempts int
	baseDelay   time.Duration
	logger      *log.Logger
}

func NewClient(headerName string, maxAttempts int, baseDelay time.Duration, logger *log.Logger) *Client {
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	if baseDelay <= 0 {
		baseDelay = 500 * time.Millisecond
	}
	return &Client{
		httpClient:  &http.Client{Timeout: 60 * time.Second},
		headerName:  headerName,
		maxAttempts: maxAttempts,
		baseDelay:   baseDelay,
		logger:      logger,
	}
}

// ValidateURL checks that raw is a well-formed absolute http(s) URL before
// any network attempt is made. Returns the normalized URL string.
func (c *Client) ValidateURL(raw string) (string, error) {
	parsed, err := url.Parse(raw)
	if err != nil {
		return "", &PermanentError{Reason: fmt.Sprintf("invalid callback url %q: %v", raw, err)}
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", &PermanentError{Reason: fmt.Sprintf("callback url %q must be http or https", raw)}
	}
	if parsed.Host == "" {
		return "", &PermanentError{Reason: fmt.Sprintf("callback url %q has no host", raw)}
	}
	return parsed.String(), nil
}

// Deliver posts the event to callbackURL with the callback key in the
// configured header. Network errors and 5xx responses are retried with
// exponential backoff up to the attempt bound; 4xx responses surface
// immediately as permanent.
func (c *Client) Deliver(ctx context.Context, callbackURL, callbackKey string, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return &PermanentError{Reason: fmt.Sprintf("marshal callback event: %v", err)}
	}

	var lastErr error
	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		if attempt > 0 {
			delay := c.baseDelay * (1 << (attempt - 1))
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		lastErr = c.post(ctx, callbackURL, callbackKey, payload)
		if lastErr == nil {
			return nil
		}
		if _, permanent := lastErr.(*PermanentError); permanent {
			return lastErr
		}
		c.logger.Printf("[CALLBACK] attempt %d/%d failed: %v", attempt+1, c.maxAttempts, lastErr)
	}

	return fmt.Errorf("callback delivery failed after %d attempts: %w", c.maxAttempts, lastErr)
}

func (c *Client) post(ctx context.Context, callbackURL, callbackKey string, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, "POST", callbackURL, bytes.NewReader(payload))
	if err != nil {
		return &PermanentError{Reason: fmt.Sprintf("create callback request: %v", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(c.headerName, callbackKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err // transient: network failure
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode >= 500:
		return fmt.Errorf("callback endpoint returned %d", resp.StatusCode)
	default:
		return &PermanentError{Reason: fmt.Sprintf("callback endpoint rejected delivery with %d", resp.StatusCode)}
	}
}
