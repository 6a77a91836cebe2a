// Package client talks to the upstream expense-sharing API. All reads go
// through retry with backoff inside a circuit breaker; writes go through the
// breaker only, carrying an idempotency key, so a timed-out mutation is never
// blindly replayed.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/splitkaro/bff-go/internal/domain"
	"github.com/splitkaro/bff-go/internal/infra/resilience"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("client")

const serviceName = "expense-api"

// Client is the upstream expense API client.
type Client struct {
	httpClient *http.Client
	baseURL    string
	cb         *gobreaker.CircuitBreaker
	cfg        resilience.Config
}

// New creates a Client for the given base URL.
func New(httpClient *http.Client, baseURL string, cb *gobreaker.CircuitBreaker, cfg resilience.Config) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		cb:         cb,
		cfg:        cfg,
	}
}

// get performs a bearer-authenticated GET with retry and circuit breaker,
// returning the raw response body.
func (c *Client) get(ctx context.Context, path, bearer string) ([]byte, error) {
	result, err := c.cb.Execute(func() (any, error) {
		var body []byte
		err := resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
			if err != nil {
				return resilience.Permanent(err)
			}
			setHeaders(req, bearer)

			resp, err := c.httpClient.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			data, err := io.ReadAll(resp.Body)
			if err != nil {
				return err
			}
			if mapped := mapStatus(resp.StatusCode, path, data); mapped != nil {
				return mapped
			}
			body = data
			return nil
		})
		if err != nil {
			return nil, err
		}
		return body, nil
	})
	if err != nil {
		return nil, wrap(resilience.MapBreakerErr(serviceName, err))
	}
	return result.([]byte), nil
}

// send performs a mutating request (POST/DELETE) through the circuit breaker
// with a fresh idempotency key and no retries.
func (c *Client) send(ctx context.Context, method, path, bearer string, payload any) ([]byte, error) {
	result, err := c.cb.Execute(func() (any, error) {
		var reqBody io.Reader
		if payload != nil {
			encoded, err := json.Marshal(payload)
			if err != nil {
				return nil, resilience.Permanent(err)
			}
			reqBody = bytes.NewReader(encoded)
		}

		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
		if err != nil {
			return nil, resilience.Permanent(err)
		}
		setHeaders(req, bearer)
		req.Header.Set("Idempotency-Key", uuid.NewString())

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		if mapped := mapStatus(resp.StatusCode, path, data); mapped != nil {
			return nil, mapped
		}
		return data, nil
	})
	if err != nil {
		return nil, wrap(resilience.MapBreakerErr(serviceName, err))
	}
	return result.([]byte), nil
}

func setHeaders(req *http.Request, bearer string) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
}

// mapStatus converts upstream HTTP status codes into domain errors. The 4xx
// family is marked permanent so the retry loop gives up immediately; 409
// bodies carry user-actionable messages and are preserved verbatim.
func mapStatus(status int, path string, body []byte) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return resilience.Permanent(&domain.ErrUnauthorized{Message: "invalid credentials"})
	case status == http.StatusConflict:
		return resilience.Permanent(&domain.ErrConflict{Message: conflictMessage(body)})
	case status == http.StatusNotFound:
		return resilience.Permanent(&domain.ErrNotFound{Resource: "upstream", ID: path})
	case status >= 400 && status < 500:
		return resilience.Permanent(fmt.Errorf("upstream returned status %d: %s", status, truncate(body)))
	default:
		return fmt.Errorf("upstream returned status %d", status)
	}
}

// conflictMessage extracts the human-readable message from a 409 body. Plain
// text bodies pass through untouched; JSON bodies prefer a message field.
func conflictMessage(body []byte) string {
	var parsed struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil {
		if parsed.Message != "" {
			return parsed.Message
		}
		if parsed.Error != "" {
			return parsed.Error
		}
	}
	return strings.TrimSpace(string(body))
}

func truncate(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > 200 {
		return s[:200]
	}
	return s
}

// wrap tags any non-domain failure as an external service error. Domain errors
// keep their type through Unwrap so handlers can map them to status codes.
func wrap(err error) error {
	if err == nil {
		return nil
	}
	return &domain.ErrExternalService{Service: serviceName, Err: err}
}
