// Package paced spaces out writes to an output.
package paced

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/crimson-sun/babylog/internal/model"
	"github.com/crimson-sun/babylog/internal/output"
)

// DefaultInterval is the minimum spacing between deliveries. PostHog drops
// events sent back to back even though capture is documented as unlimited.
const DefaultInterval = 150 * time.Millisecond

// Option configures a Paced wrapper.
type Option func(*Paced)

// WithInterval sets the minimum idle time between the end of one delivery
// and the start of the next.
func WithInterval(d time.Duration) Option {
	return func(p *Paced) { p.interval = d }
}

// Paced holds each write until at least the interval has passed since the
// previous delivery returned, so a slow inner output still gets the full
// gap. Writes are synchronous and inner errors are returned to the caller.
type Paced struct {
	inner    output.Output
	interval time.Duration
	limiter  *rate.Limiter
	waited   time.Duration
}

// New wraps inner with a token bucket of one token per interval, burst 1.
// A non-positive interval disables pacing.
func New(inner output.Output, opts ...Option) *Paced {
	p := &Paced{inner: inner, interval: DefaultInterval}
	for _, opt := range opts {
		opt(p)
	}
	if p.interval > 0 {
		p.limiter = rate.NewLimiter(rate.Every(p.interval), 1)
	} else {
		p.limiter = rate.NewLimiter(rate.Inf, 1)
	}
	return p
}

// Write waits for a token, then delivers the event. A cancelled context
// stops the wait without delivering.
func (p *Paced) Write(ctx context.Context, event model.Event) error {
	start := time.Now()
	if err := p.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("paced: %w", err)
	}
	p.waited += time.Since(start)
	err := p.inner.Write(ctx, event)
	p.rearm()
	return err
}

// rearm drains the bucket at the current instant so the next token is
// only available one interval after the delivery finished.
func (p *Paced) rearm() {
	if p.interval <= 0 {
		return
	}
	p.limiter = rate.NewLimiter(rate.Every(p.interval), 1)
	p.limiter.Allow()
}

// Close closes the inner output.
func (p *Paced) Close() error {
	slog.Debug("paced output closed", "interval", p.interval, "waited", p.waited.Round(time.Millisecond))
	return p.inner.Close()
}
