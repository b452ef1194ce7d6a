// Package cascade dispatches a prompt across an ordered list of model
// tiers, falling through on retryable failures and returning the first
// successful result.
package cascade

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/zen-systems/cascade/pkg/adapter"
	"github.com/zen-systems/cascade/pkg/artifact"
	"github.com/zen-systems/cascade/pkg/config"
	"github.com/zen-systems/cascade/pkg/shape"
	"github.com/zen-systems/cascade/pkg/trace"
)

// Tier is one named backend target in the cascade's preference order.
type Tier struct {
	Name    string
	Adapter string
	Model   string
}

// Dispatcher attempts tiers strictly in order. It holds no per-call state;
// every Dispatch owns its own tier order and timers.
type Dispatcher struct {
	adapters map[string]adapter.Adapter
	tiers    []Tier
	pricing  config.PricingConfig
	timeout  time.Duration
	logf     func(format string, args ...any)
	recorder *trace.Recorder
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the attempt logger.
func WithLogger(logf func(format string, args ...any)) Option {
	return func(d *Dispatcher) {
		d.logf = logf
	}
}

// WithPricing enables cost estimates on call reports.
func WithPricing(pricing config.PricingConfig) Option {
	return func(d *Dispatcher) {
		d.pricing = pricing
	}
}

// WithTimeout sets the default per-attempt timeout, used when a request
// does not carry its own.
func WithTimeout(timeout time.Duration) Option {
	return func(d *Dispatcher) {
		d.timeout = timeout
	}
}

// WithRecorder persists a dispatch record per call.
func WithRecorder(recorder *trace.Recorder) Option {
	return func(d *Dispatcher) {
		d.recorder = recorder
	}
}

// New creates a Dispatcher over the given adapters and tier order.
func New(adapters map[string]adapter.Adapter, tiers []Tier, opts ...Option) (*Dispatcher, error) {
	if len(adapters) == 0 {
		return nil, fmt.Errorf("no adapters configured")
	}
	if len(tiers) == 0 {
		return nil, fmt.Errorf("no tiers configured")
	}
	seen := make(map[string]bool, len(tiers))
	for _, tier := range tiers {
		if tier.Name == "" {
			return nil, fmt.Errorf("tier with empty name")
		}
		if seen[tier.Name] {
			return nil, fmt.Errorf("tier %s declared twice", tier.Name)
		}
		seen[tier.Name] = true
		if _, ok := adapters[tier.Adapter]; !ok {
			return nil, fmt.Errorf("tier %s references unknown adapter %s", tier.Name, tier.Adapter)
		}
	}

	d := &Dispatcher{
		adapters: adapters,
		tiers:    tiers,
		logf:     log.Printf,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// FromConfig builds a Dispatcher from a cascade config.
func FromConfig(cfg *config.CascadeConfig, adapters map[string]adapter.Adapter, opts ...Option) (*Dispatcher, error) {
	if cfg == nil {
		return nil, fmt.Errorf("cascade config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	tiers := make([]Tier, 0, len(cfg.Tiers))
	for _, target := range cfg.Tiers {
		tiers = append(tiers, Tier{Name: target.Name, Adapter: target.Adapter, Model: target.Model})
	}
	base := []Option{WithPricing(cfg.Pricing)}
	if cfg.TimeoutMs > 0 {
		base = append(base, WithTimeout(time.Duration(cfg.TimeoutMs)*time.Millisecond))
	}
	return New(adapters, tiers, append(base, opts...)...)
}

// Request describes one dispatch.
type Request struct {
	Prompt string

	// Shape constrains the output structure. Translation failures are
	// fatal: they are caller bugs, not tier failures.
	Shape *shape.Shape

	// StartTier moves the named tier to the front of the attempt order.
	// An unrecognized name is ignored with a warning.
	StartTier string

	// Timeout bounds each tier attempt. Zero falls back to the
	// dispatcher default; both zero means no per-attempt deadline.
	Timeout time.Duration
}

// Result captures the winning attempt.
type Result struct {
	Artifact *artifact.Artifact
	Tier     string
	Model    string
	Usage    adapter.Usage
	Cost     adapter.Cost
	Reports  []adapter.CallReport
}

// Text returns the winning tier's output.
func (r *Result) Text() string {
	if r == nil || r.Artifact == nil {
		return ""
	}
	return r.Artifact.Content
}

// Tiers returns the configured tier order.
func (d *Dispatcher) Tiers() []Tier {
	out := make([]Tier, len(d.tiers))
	copy(out, d.tiers)
	return out
}

// Dispatch tries each tier in order and returns the first non-empty
// result. Retryable failures (overloaded, rate-limited, timeout) and
// empty responses fall through to the next tier; everything else aborts
// the cascade immediately.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) (*Result, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, fmt.Errorf("prompt is required")
	}

	order := d.order(req.StartTier)
	timeout := req.Timeout
	if timeout == 0 {
		timeout = d.timeout
	}

	start := time.Now()
	var reports []adapter.CallReport
	var lastClass adapter.Class

	finish := func(result *Result, err error) (*Result, error) {
		d.record(req, order, reports, result, err, time.Since(start))
		return result, err
	}

	for _, tier := range order {
		adapterImpl, ok := d.adapters[tier.Adapter]
		if !ok {
			return finish(nil, fmt.Errorf("tier %s: adapter %s not found", tier.Name, tier.Adapter))
		}

		attemptCtx := ctx
		cancel := func() {}
		if timeout > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, timeout)
		}

		attemptStart := time.Now()
		resp, err := adapterImpl.Generate(attemptCtx, tier.Model, req.Prompt, req.Shape)
		cancel()
		latency := time.Since(attemptStart)

		report := adapter.CallReport{
			Tier:          tier.Name,
			Adapter:       tier.Adapter,
			Model:         tier.Model,
			LatencyMillis: latency.Milliseconds(),
			PromptBytes:   len(req.Prompt),
		}

		if err != nil {
			// The parent context ending is the caller's signal, not a
			// tier failure.
			if ctx.Err() != nil {
				report.Error = ctx.Err().Error()
				reports = append(reports, report)
				return finish(nil, ctx.Err())
			}

			var translationErr *shape.TranslationError
			if errors.As(err, &translationErr) {
				report.Error = err.Error()
				reports = append(reports, report)
				return finish(nil, fmt.Errorf("tier %s: %w", tier.Name, err))
			}

			class := adapter.Classify(err)
			lastClass = class
			report.Class = class.String()
			report.Error = err.Error()
			reports = append(reports, report)
			d.logf("[cascade] tier=%s model=%s latency=%s class=%s err=%v",
				tier.Name, tier.Model, latency.Round(time.Millisecond), class, err)

			if !class.Retryable() {
				return finish(nil, &FatalError{Tier: tier.Name, Class: class, Err: err})
			}
			continue
		}

		if strings.TrimSpace(resp.Text()) == "" {
			report.Empty = true
			reports = append(reports, report)
			d.logf("[cascade] tier=%s model=%s latency=%s empty response, trying next tier",
				tier.Name, tier.Model, latency.Round(time.Millisecond))
			continue
		}

		usage := normalizeUsage(resp.Usage)
		cost, _ := estimateCost(d.pricing, tier.Adapter, tier.Model, usage)
		report.Usage = usage
		report.Cost = cost
		reports = append(reports, report)
		d.logf("[cascade] tier=%s model=%s latency=%s prompt_bytes=%d tokens_in=%d tokens_out=%d",
			tier.Name, tier.Model, latency.Round(time.Millisecond),
			len(req.Prompt), usage.PromptTokens, usage.CompletionTokens)

		result := &Result{
			Artifact: resp.Artifact.WithMetadata("tier", tier.Name),
			Tier:     tier.Name,
			Model:    tier.Model,
			Usage:    usage,
			Cost:     cost,
			Reports:  reports,
		}
		return finish(result, nil)
	}

	return finish(nil, &ExhaustedError{Tiers: tierNames(order), Last: lastClass})
}

// order builds the attempt order for one dispatch. A recognized preferred
// tier moves to the front, de-duplicated against the default order; an
// unrecognized one is ignored with a warning.
func (d *Dispatcher) order(preferred string) []Tier {
	if preferred == "" {
		return d.Tiers()
	}

	idx := -1
	for i, tier := range d.tiers {
		if tier.Name == preferred {
			idx = i
			break
		}
	}
	if idx < 0 {
		d.logf("[cascade] unknown start tier %q, using default order", preferred)
		return d.Tiers()
	}

	order := make([]Tier, 0, len(d.tiers))
	order = append(order, d.tiers[idx])
	for i, tier := range d.tiers {
		if i != idx {
			order = append(order, tier)
		}
	}
	return order
}

func (d *Dispatcher) record(req Request, order []Tier, reports []adapter.CallReport, result *Result, dispatchErr error, duration time.Duration) {
	if d.recorder == nil {
		return
	}
	rec := trace.DispatchRecord{
		Timestamp:      time.Now().UTC(),
		PromptHash:     trace.HashString(req.Prompt),
		PromptBytes:    len(req.Prompt),
		Tiers:          tierNames(order),
		Reports:        reports,
		DurationMillis: duration.Milliseconds(),
	}
	if result != nil {
		rec.Winner = result.Tier
	}
	if dispatchErr != nil {
		rec.Error = dispatchErr.Error()
	}
	if err := d.recorder.Write(rec); err != nil {
		d.logf("[cascade] trace write failed: %v", err)
	}
}

func tierNames(tiers []Tier) []string {
	names := make([]string, 0, len(tiers))
	for _, tier := range tiers {
		names = append(names, tier.Name)
	}
	return names
}
