package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/net/http/httpguts"
)

type (
	Client struct {
		url    string
		client *http.Client
	}

	// Payload is the flat JSON body posted to the webhook.
	Payload struct {
		Competitors  []string `json:"competitors"`
		Country      string   `json:"country"`
		Status       string   `json:"status"`
		SessionToken string   `json:"sessionToken"`
		Timestamp    int64    `json:"timestamp"`
		UserAgent    string   `json:"userAgent"`
	}

	// RejectedError is returned when the webhook answers with a non-2xx status.
	RejectedError struct {
		StatusCode int
	}
)

const (
	DefaultTimeout = 30 * time.Second

	headerSessionToken = "X-Session-Token"
	maxDrain           = 64 << 10
)

var (
	ErrTimeout        = errors.New("webhook request timed out")
	ErrTransport      = errors.New("webhook unreachable")
	ErrServerRejected = errors.New("webhook rejected request")
)

func (e *RejectedError) Error() string {
	return "webhook responded with status " + strconv.Itoa(e.StatusCode)
}

func (e *RejectedError) Is(target error) bool { return target == ErrServerRejected }

func NewClient(url string, client *http.Client) *Client {
	if client == nil {
		client = &http.Client{}
	}

	return &Client{url: url, client: client}
}

// Send posts p and gives up after timeout. A request aborted for any reason,
// the caller cancelling included, is reported as ErrTimeout.
func (c *Client) Send(ctx context.Context, timeout time.Duration, p Payload) error {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	if !httpguts.ValidHeaderFieldValue(p.SessionToken) {
		return fmt.Errorf("%w: invalid session token header value", ErrTransport)
	}

	var b bytes.Buffer
	if err := json.NewEncoder(&b).Encode(p); err != nil {
		return fmt.Errorf("failed to encode payload to json: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	r, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, &b)
	if err != nil {
		return fmt.Errorf("%w: failed to create new request: %v", ErrTransport, err)
	}

	r.Header.Set("Content-Type", "application/json")
	r.Header.Set("X-Requested-With", "XMLHttpRequest")
	r.Header.Set(headerSessionToken, p.SessionToken)

	s, err := c.client.Do(r)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("%w: %v", ErrTimeout, err)
		}

		return fmt.Errorf("%w: %v", ErrTransport, err)
	}

	defer s.Body.Close()

	_, _ = io.Copy(io.Discard, io.LimitReader(s.Body, maxDrain))

	if s.StatusCode < http.StatusOK || s.StatusCode >= http.StatusMultipleChoices {
		return &RejectedError{StatusCode: s.StatusCode}
	}

	return nil
}
