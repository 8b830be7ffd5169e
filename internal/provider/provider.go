package provider

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Provider identifies a supported LLM API
type Provider string

const (
	Claude Provider = "claude"
	Gemini Provider = "gemini"
	OpenAI Provider = "openai"
)

// All lists the supported providers in display order
var All = []Provider{Claude, Gemini, OpenAI}

// Parse maps an aiModel value to a Provider
func Parse(name string) (Provider, error) {
	p := Provider(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := dialects[p]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownProvider, name)
	}
	return p, nil
}

func (p Provider) String() string { return string(p) }

// Params are optional generation parameters
type Params struct {
	Model       string
	MaxTokens   int
	Temperature float64
}

// Result is the outcome of a successful generation
type Result struct {
	Provider Provider
	Model    string
	Text     string
	Attempts int
	Duration time.Duration
}

// Spec fixes the endpoint, model and retry policy of one provider.
// FallbackModels are tried in order, each with a full attempt budget, once
// Model has exhausted its own.
type Spec struct {
	Endpoint       string
	Model          string
	FallbackModels []string
	MaxAttempts    int
	BaseDelay      time.Duration
	Timeout        time.Duration
}

var (
	// ErrUnknownProvider is returned for identifiers outside the enumeration
	ErrUnknownProvider = errors.New("unknown provider")
	// ErrMissingAPIKey is returned before any attempt when no key is supplied
	ErrMissingAPIKey = errors.New("api key required")
	// ErrEmptyResponse marks a 2xx response without usable text
	ErrEmptyResponse = errors.New("empty response")
	// ErrRetriesExhausted matches any *ExhaustedError
	ErrRetriesExhausted = errors.New("retries exhausted")
)

// StatusError is a non-2xx response from a provider
type StatusError struct {
	Provider   Provider
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: http %d: %s", e.Provider, e.StatusCode, strings.TrimSpace(e.Body))
}

// ExhaustedError is returned once every attempt on every candidate model has
// failed. It wraps the error from the final attempt.
type ExhaustedError struct {
	Provider Provider
	Attempts int
	Models   []string
	Last     error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("%s: failed after %d attempts: %v", e.Provider, e.Attempts, e.Last)
}

func (e *ExhaustedError) Unwrap() error { return e.Last }

// Is makes errors.Is(err, ErrRetriesExhausted) true
func (e *ExhaustedError) Is(target error) bool { return target == ErrRetriesExhausted }
