// Package posthog delivers events to PostHog's single-event capture API.
package posthog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/crimson-sun/babylog/internal/httpclient"
	"github.com/crimson-sun/babylog/internal/model"
)

// CapturePath is the single-event capture endpoint.
const CapturePath = "/i/v0/e/"

const defaultTimeout = 30 * time.Second

// Option configures a PostHog Output.
type Option func(*config)

type config struct {
	clientOpts []httpclient.Option
}

// WithTimeout sets the HTTP client timeout. Default: 30s.
func WithTimeout(d time.Duration) Option {
	return func(c *config) { c.clientOpts = append(c.clientOpts, httpclient.WithTimeout(d)) }
}

// WithClientOptions passes extra options to the underlying HTTP client.
func WithClientOptions(opts ...httpclient.Option) Option {
	return func(c *config) { c.clientOpts = append(c.clientOpts, opts...) }
}

// Output posts each event as soon as it is written. There is no batching:
// a returned nil means PostHog accepted the event.
type Output struct {
	client *httpclient.Client
	apiKey string
	sent   int
}

// captureRequest is the capture API body.
type captureRequest struct {
	APIKey     string           `json:"api_key"`
	Event      string           `json:"event"`
	DistinctID string           `json:"distinct_id"`
	Properties model.Properties `json:"properties"`
	Timestamp  string           `json:"timestamp"`
}

// New creates an output for the PostHog instance at host, e.g.
// https://us.i.posthog.com.
func New(host, apiKey string, opts ...Option) *Output {
	cfg := config{clientOpts: []httpclient.Option{httpclient.WithTimeout(defaultTimeout)}}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Output{
		client: httpclient.New(strings.TrimRight(host, "/"), "", cfg.clientOpts...),
		apiKey: apiKey,
	}
}

// Write sends one event. Rate limiting and server errors are retried by the
// HTTP client; anything it gives up on is returned.
func (o *Output) Write(ctx context.Context, event model.Event) error {
	body := captureRequest{
		APIKey:     o.apiKey,
		Event:      event.Name,
		DistinctID: event.DistinctID,
		Properties: event.Properties,
		Timestamp:  event.Timestamp.Format(time.RFC3339),
	}
	if err := o.client.PostJSON(ctx, CapturePath, body, nil); err != nil {
		return fmt.Errorf("posthog: capture %s at %s: %w", event.Name, body.Timestamp, err)
	}
	o.sent++
	return nil
}

// Close logs how many events were accepted. Nothing is buffered.
func (o *Output) Close() error {
	slog.Debug("posthog output closed", "sent", o.sent)
	return nil
}
