package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	d "github.com/fjod/go_restaurant/domain"
	"github.com/fjod/go_restaurant/internal/auth"
	"github.com/fjod/go_restaurant/pkg/circuitbreaker"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const maxErrorBody = 4 << 10

// Client talks JSON to the storefront backend. Every call carries the
// caller's bearer token, runs under its own timeout and goes through a
// circuit breaker; 4xx answers do not count against the breaker.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	breaker    *gobreaker.CircuitBreaker[[]byte]
	log        logrus.FieldLogger
}

type Options struct {
	BaseURL string
	Timeout time.Duration
	Breaker circuitbreaker.Config
	// Transport defaults to an instrumented http.DefaultTransport.
	Transport http.RoundTripper
}

func New(opts Options, log logrus.FieldLogger) *Client {
	transport := opts.Transport
	if transport == nil {
		transport = otelhttp.NewTransport(http.DefaultTransport)
	}
	bc := opts.Breaker
	bc.IsSuccessful = func(err error) bool {
		var remote *d.RemoteError
		return err == nil || (errors.As(err, &remote) && remote.Rejected())
	}
	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		httpClient: &http.Client{Transport: transport},
		timeout:    opts.Timeout,
		breaker:    circuitbreaker.New[[]byte]("storefront-backend", bc, log),
		log:        log,
	}
}

type errorPayload struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Reason  string `json:"reason"`
}

// do sends in (when non-nil) as JSON and decodes the response into out (when
// non-nil). Non-2xx responses come back as *domain.RemoteError.
func (c *Client) do(ctx context.Context, method, path string, in, out interface{}, idempotencyKey string) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var payload []byte
	if in != nil {
		var err error
		if payload, err = json.Marshal(in); err != nil {
			return fmt.Errorf("failed to marshal %s %s request: %w", method, path, err)
		}
	}

	body, err := c.breaker.Execute(func() ([]byte, error) {
		return c.roundTrip(ctx, method, path, payload, idempotencyKey)
	})
	if err != nil {
		if circuitbreaker.IsOpen(err) {
			return fmt.Errorf("%s %s: %w", method, path, err)
		}
		return err
	}

	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
	}
	return nil
}

func (c *Client) roundTrip(ctx context.Context, method, path string, payload []byte, idempotencyKey string) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s %s request: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}
	if u, ok := auth.UserFromContext(ctx); ok && u.Token != "" {
		req.Header.Set("Authorization", "Bearer "+u.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &d.RemoteError{StatusCode: resp.StatusCode, Message: errorMessage(raw)}
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s %s response: %w", method, path, err)
	}
	return body, nil
}

// errorMessage extracts a human-readable reason from an error body.
func errorMessage(raw []byte) string {
	var p errorPayload
	if err := json.Unmarshal(raw, &p); err == nil {
		for _, s := range []string{p.Reason, p.Message, p.Error} {
			if s != "" {
				return s
			}
		}
	}
	return strings.TrimSpace(string(raw))
}
