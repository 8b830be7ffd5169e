package provider

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

	"github.com/ai-blog-writer/internal/config"
	"github.com/rs/zerolog"
)

const (
	defaultMaxAttempts = 3
	defaultBaseDelay   = 1 * time.Second
	defaultTimeout     = 30 * time.Second
	defaultMaxTokens   = 1000
	defaultPrompt      = "Please help me write a blog post."

	maxResponseBytes = 4 << 20
	maxErrorBody     = 512
)

// Attempt outcomes reported to an Observer
const (
	OutcomeSuccess = "success"
	OutcomeTimeout = "timeout"
	OutcomeStatus  = "http_error"
	OutcomeEmpty   = "empty_response"
	OutcomeNetwork = "network_error"
)

// Observer receives one callback per attempt (used for metrics)
type Observer interface {
	ObserveAttempt(p Provider, outcome string, elapsed time.Duration)
}

// Client performs best-effort generation calls against the supported providers
type Client struct {
	specs      map[Provider]Spec
	httpClient *http.Client
	sleeper    func(time.Duration)
	observer   Observer
	log        zerolog.Logger
}

// Option customizes the client
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithSleeper overrides how retry sleeps are performed (useful for tests)
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(c *Client) {
		c.sleeper = sleeper
	}
}

// WithObserver registers a per-attempt observer
func WithObserver(o Observer) Option {
	return func(c *Client) {
		c.observer = o
	}
}

// WithLogger sets the client logger
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) {
		c.log = log.With().Str("component", "provider").Logger()
	}
}

// NewClient builds a client. Zero fields in specs fall back to the built-in
// endpoint and model of each provider and the default retry policy.
func NewClient(specs map[Provider]Spec, opts ...Option) *Client {
	c := &Client{
		specs:      make(map[Provider]Spec, len(dialects)),
		httpClient: &http.Client{},
		log:        zerolog.Nop(),
	}
	for p, d := range dialects {
		c.specs[p] = mergeSpec(d.defaultSpec(), specs[p])
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewFromConfig builds a client from provider configuration
func NewFromConfig(cfg *config.ProvidersConfig, opts ...Option) *Client {
	specs := make(map[Provider]Spec, len(dialects))
	for name, pc := range cfg.All() {
		specs[Provider(name)] = Spec{
			Endpoint:       pc.Endpoint,
			Model:          pc.Model,
			FallbackModels: pc.FallbackModels,
			MaxAttempts:    pc.MaxAttempts,
			BaseDelay:      pc.BaseDelay,
			Timeout:        pc.Timeout,
		}
	}
	return NewClient(specs, opts...)
}

func mergeSpec(base, override Spec) Spec {
	if override.Endpoint != "" {
		base.Endpoint = strings.TrimSpace(override.Endpoint)
	}
	if override.Model != "" {
		base.Model = strings.TrimSpace(override.Model)
	}
	if len(override.FallbackModels) > 0 {
		base.FallbackModels = append([]string(nil), override.FallbackModels...)
	}
	base.MaxAttempts = override.MaxAttempts
	if base.MaxAttempts <= 0 {
		base.MaxAttempts = defaultMaxAttempts
	}
	base.BaseDelay = override.BaseDelay
	if base.BaseDelay <= 0 {
		base.BaseDelay = defaultBaseDelay
	}
	base.Timeout = override.Timeout
	if base.Timeout <= 0 {
		base.Timeout = defaultTimeout
	}
	return base
}

// Spec returns the effective settings for p
func (c *Client) Spec(p Provider) (Spec, bool) {
	spec, ok := c.specs[p]
	return spec, ok
}

// Generate sends prompt to provider p. Up to Spec.MaxAttempts attempts are
// made; before attempt n+1 the client waits n × Spec.BaseDelay. Every attempt
// is bounded by Spec.Timeout. Non-2xx statuses, transport errors, timeouts and
// empty bodies all consume an attempt. When the caller did not pin a model
// and the budget runs out, each of Spec.FallbackModels gets a fresh budget in
// order. The last error is returned inside an *ExhaustedError.
func (c *Client) Generate(ctx context.Context, p Provider, prompt, apiKey string, params Params) (*Result, error) {
	d, ok := dialects[p]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, p)
	}
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, fmt.Errorf("%s: %w", p, ErrMissingAPIKey)
	}

	spec := c.specs[p]
	models := []string{strings.TrimSpace(params.Model)}
	if models[0] == "" {
		models = candidateModels(spec)
	}
	if params.MaxTokens <= 0 {
		params.MaxTokens = defaultMaxTokens
	}
	prompt = normalizePrompt(prompt)

	start := time.Now()
	total := 0
	var lastErr error

	for i, model := range models {
		if i > 0 {
			c.log.Warn().
				Str("provider", p.String()).
				Str("failed_model", models[i-1]).
				Str("model", model).
				Msg("Falling back to next model")
		}

		payload, err := json.Marshal(d.body(model, prompt, params))
		if err != nil {
			return nil, fmt.Errorf("%s: encode request: %w", p, err)
		}

		text, attempts, err := c.tryModel(ctx, d, p, spec, model, apiKey, payload)
		total += attempts
		if err == nil {
			return &Result{
				Provider: p,
				Model:    model,
				Text:     text,
				Attempts: total,
				Duration: time.Since(start),
			}, nil
		}
		if ctx.Err() != nil {
			return nil, err
		}
		lastErr = err
	}

	return nil, &ExhaustedError{Provider: p, Attempts: total, Models: models, Last: lastErr}
}

// tryModel runs the retry loop for one model and reports how many attempts
// it made. When ctx ends the returned error wraps ctx.Err().
func (c *Client) tryModel(ctx context.Context, d dialect, p Provider, spec Spec, model, apiKey string, payload []byte) (string, int, error) {
	log := c.log.With().Str("provider", p.String()).Str("model", model).Logger()
	start := time.Now()
	var lastErr error

	for attempt := 1; attempt <= spec.MaxAttempts; attempt++ {
		if attempt > 1 {
			if err := c.sleep(ctx, time.Duration(attempt-1)*spec.BaseDelay); err != nil {
				return "", attempt - 1, fmt.Errorf("%s: %w", p, err)
			}
		}

		attemptStart := time.Now()
		text, err := c.attempt(ctx, d, p, spec, model, apiKey, payload)
		c.observe(p, classify(err), time.Since(attemptStart))

		if err == nil {
			log.Debug().
				Int("attempt", attempt).
				Dur("duration", time.Since(start)).
				Msg("Generation succeeded")
			return text, attempt, nil
		}

		lastErr = err
		log.Warn().
			Err(err).
			Int("attempt", attempt).
			Int("max_attempts", spec.MaxAttempts).
			Msg("Generation attempt failed")

		if ctx.Err() != nil {
			return "", attempt, fmt.Errorf("%s: %w", p, ctx.Err())
		}
	}
	return "", spec.MaxAttempts, lastErr
}

// candidateModels lists the primary model followed by its distinct fallbacks
func candidateModels(spec Spec) []string {
	models := []string{spec.Model}
	seen := map[string]bool{spec.Model: true}
	for _, m := range spec.FallbackModels {
		m = strings.TrimSpace(m)
		if m == "" || seen[m] {
			continue
		}
		seen[m] = true
		models = append(models, m)
	}
	return models
}

func (c *Client) attempt(ctx context.Context, d dialect, p Provider, spec Spec, model, apiKey string, payload []byte) (string, error) {
	actx, cancel := context.WithTimeout(ctx, spec.Timeout)
	defer cancel()

	endpoint, err := d.url(spec.Endpoint, model)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(actx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("%s: new request: %w", p, err)
	}
	req.Header.Set("Content-Type", "application/json")
	d.setHeaders(req.Header, apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s: request (timeout=%s): %w", p, spec.Timeout, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("%s: read body (timeout=%s): %w", p, spec.Timeout, err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		snippet := string(body)
		if len(snippet) > maxErrorBody {
			snippet = snippet[:maxErrorBody]
		}
		return "", &StatusError{Provider: p, StatusCode: resp.StatusCode, Body: snippet}
	}

	return d.parse(body)
}

func (c *Client) sleep(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return ctx.Err()
	}
	if c.sleeper != nil {
		c.sleeper(delay)
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (c *Client) observe(p Provider, outcome string, elapsed time.Duration) {
	if c.observer != nil {
		c.observer.ObserveAttempt(p, outcome, elapsed)
	}
}

func classify(err error) string {
	var statusErr *StatusError
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, context.DeadlineExceeded):
		return OutcomeTimeout
	case errors.As(err, &statusErr):
		return OutcomeStatus
	case errors.Is(err, ErrEmptyResponse):
		return OutcomeEmpty
	default:
		return OutcomeNetwork
	}
}

// normalizePrompt guarantees a non-empty user message; some APIs reject
// requests whose only message is blank.
func normalizePrompt(prompt string) string {
	if strings.TrimSpace(prompt) == "" {
		return defaultPrompt
	}
	return prompt
}
