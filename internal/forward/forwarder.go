// Package forward pushes stored Fireflies API keys to the external
// automation webhook. Forwarding is best-effort: callers log failures
// and never propagate them to the parent operation.
package forward

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/flotech/flotech/internal/metrics"
)

const (
	// DialTimeout is the connection timeout.
	DialTimeout = 10 * time.Second
	// TLSHandshakeTimeout is the TLS negotiation timeout.
	TLSHandshakeTimeout = 10 * time.Second
	// ResponseHeaderTimeout is time to wait for response headers.
	ResponseHeaderTimeout = 15 * time.Second
)

// ErrDisabled indicates no forwarding URL is configured.
var ErrDisabled = errors.New("forwarding disabled")

// payload is the wire format the automation webhook expects.
type payload struct {
	FireFliesAPIKey string `json:"FireFlies_API_KEY"`
}

// Forwarder delivers API keys to the automation webhook.
type Forwarder struct {
	client  *http.Client
	url     string
	timeout time.Duration
	metrics metrics.Recorder
	logger  *slog.Logger
}

// New creates a Forwarder posting to the given URL. An empty URL
// disables forwarding. Every call is bounded by timeout. recorder may
// be nil.
func New(url string, timeout time.Duration, recorder metrics.Recorder, logger *slog.Logger) *Forwarder {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &Forwarder{
		client:  newHTTPClient(timeout),
		url:     url,
		timeout: timeout,
		metrics: recorder,
		logger:  logger.With("component", "forward"),
	}
}

// Enabled reports whether a forwarding URL is configured.
func (f *Forwarder) Enabled() bool {
	return f.url != ""
}

// Forward posts the API key to the automation webhook. The call is
// awaited but callers treat the result as advisory only.
func (f *Forwarder) Forward(ctx context.Context, apiKey string) error {
	if !f.Enabled() {
		return ErrDisabled
	}

	body, err := json.Marshal(payload{FireFliesAPIKey: apiKey})
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("post to webhook: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	return nil
}

// ForwardLogged runs Forward and folds the outcome into the log; this
// is the fire-and-forget entry point used after signup and sign-in.
func (f *Forwarder) ForwardLogged(ctx context.Context, apiKey string) {
	err := f.Forward(ctx, apiKey)
	switch {
	case errors.Is(err, ErrDisabled):
		f.metrics.IncForwardResult("disabled")
		f.logger.Debug("key forwarding disabled, skipping")
	case err != nil:
		f.metrics.IncForwardResult("failed")
		f.logger.Warn("failed to forward API key", "error", err)
	default:
		f.metrics.IncForwardResult("success")
		f.logger.Info("API key forwarded to automation webhook")
	}
}

// newHTTPClient creates an HTTP client configured for webhook delivery.
// It has bounded timeouts and does not follow redirects.
func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   DialTimeout,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout:   TLSHandshakeTimeout,
			ResponseHeaderTimeout: ResponseHeaderTimeout,
			MaxIdleConns:          10,
			IdleConnTimeout:       90 * time.Second,
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}
