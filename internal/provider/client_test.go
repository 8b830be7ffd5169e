package provider

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// successBody returns a well-formed response for p containing text
func successBody(p Provider, text string) map[string]any {
	switch p {
	case Claude:
		return map[string]any{
			"content":     []any{map[string]any{"type": "text", "text": text}},
			"stop_reason": "end_turn",
		}
	case Gemini:
		return map[string]any{
			"candidates": []any{map[string]any{
				"content": map[string]any{"parts": []any{map[string]any{"text": text}}},
			}},
		}
	default:
		return map[string]any{
			"choices": []any{map[string]any{"message": map[string]any{"role": "assistant", "content": text}}},
		}
	}
}

type recordingSleeper struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (s *recordingSleeper) sleep(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delays = append(s.delays, d)
}

type recordingObserver struct {
	mu       sync.Mutex
	outcomes []string
}

func (o *recordingObserver) ObserveAttempt(p Provider, outcome string, elapsed time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.outcomes = append(o.outcomes, outcome)
}

func newTestClient(endpoint string, attempts int, timeout time.Duration, opts ...Option) *Client {
	specs := make(map[Provider]Spec, len(All))
	for _, p := range All {
		specs[p] = Spec{Endpoint: endpoint, MaxAttempts: attempts, BaseDelay: 10 * time.Millisecond, Timeout: timeout}
	}
	return NewClient(specs, opts...)
}

func TestGenerate_Success(t *testing.T) {
	for _, p := range All {
		t.Run(string(p), func(t *testing.T) {
			var gotReq *http.Request
			var gotBody map[string]any
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotReq = r.Clone(context.Background())
				raw, _ := io.ReadAll(r.Body)
				require.NoError(t, json.Unmarshal(raw, &gotBody))
				_ = json.NewEncoder(w).Encode(successBody(p, "  generated text  "))
			}))
			defer server.Close()

			client := newTestClient(server.URL, 3, time.Second)
			res, err := client.Generate(context.Background(), p, "write about coffee", "secret", Params{MaxTokens: 321})
			require.NoError(t, err)

			assert.Equal(t, "generated text", res.Text)
			assert.Equal(t, 1, res.Attempts)
			assert.Equal(t, p, res.Provider)
			assert.Equal(t, "application/json", gotReq.Header.Get("Content-Type"))

			switch p {
			case Claude:
				assert.Equal(t, "secret", gotReq.Header.Get("x-api-key"))
				assert.Equal(t, anthropicVersion, gotReq.Header.Get("anthropic-version"))
				assert.Equal(t, float64(321), gotBody["max_tokens"])
				assert.Equal(t, "claude-3-5-sonnet-20241022", gotBody["model"])
			case Gemini:
				assert.Equal(t, "secret", gotReq.Header.Get("x-goog-api-key"))
				assert.True(t, strings.HasSuffix(gotReq.URL.Path, "/gemini-1.5-flash:generateContent"), gotReq.URL.Path)
				cfg := gotBody["generationConfig"].(map[string]any)
				assert.Equal(t, float64(321), cfg["maxOutputTokens"])
			case OpenAI:
				assert.Equal(t, "Bearer secret", gotReq.Header.Get("Authorization"))
				assert.Equal(t, "gpt-4o-mini", gotBody["model"])
			}
		})
	}
}

func TestGenerate_NonSuccessStatusUsesEveryAttempt(t *testing.T) {
	for _, p := range All {
		t.Run(string(p), func(t *testing.T) {
			var calls int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&calls, 1)
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"invalid api key"}`))
			}))
			defer server.Close()

			sleeper := &recordingSleeper{}
			client := newTestClient(server.URL, 3, time.Second, WithSleeper(sleeper.sleep))

			res, err := client.Generate(context.Background(), p, "prompt", "bad-key", Params{})
			require.Error(t, err)
			assert.Nil(t, res)
			assert.Equal(t, int32(3), atomic.LoadInt32(&calls))

			var exhausted *ExhaustedError
			require.ErrorAs(t, err, &exhausted)
			assert.Equal(t, 3, exhausted.Attempts)
			assert.ErrorIs(t, err, ErrRetriesExhausted)

			var statusErr *StatusError
			require.ErrorAs(t, err, &statusErr)
			assert.Equal(t, http.StatusUnauthorized, statusErr.StatusCode)

			// linear backoff: attempt index × base delay
			assert.Equal(t, []time.Duration{10 * time.Millisecond, 20 * time.Millisecond}, sleeper.delays)
		})
	}
}

func TestGenerate_TimeoutOnEveryAttempt(t *testing.T) {
	for _, p := range All {
		t.Run(string(p), func(t *testing.T) {
			var calls int32
			release := make(chan struct{})
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&calls, 1)
				select {
				case <-r.Context().Done():
				case <-release:
				}
			}))
			defer server.Close()
			defer close(release)

			observer := &recordingObserver{}
			client := newTestClient(server.URL, 2, 50*time.Millisecond,
				WithSleeper(func(time.Duration) {}), WithObserver(observer))

			_, err := client.Generate(context.Background(), p, "prompt", "key", Params{})
			require.Error(t, err)
			assert.Equal(t, int32(2), atomic.LoadInt32(&calls))

			// same terminal failure class as a hard error response
			var exhausted *ExhaustedError
			require.ErrorAs(t, err, &exhausted)
			assert.Equal(t, 2, exhausted.Attempts)
			assert.ErrorIs(t, err, context.DeadlineExceeded)
			assert.Equal(t, []string{OutcomeTimeout, OutcomeTimeout}, observer.outcomes)
		})
	}
}

func TestGenerate_FallbackModelsAfterPrimaryExhausts(t *testing.T) {
	var mu sync.Mutex
	var seen []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req openAIRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		mu.Lock()
		seen = append(seen, req.Model)
		mu.Unlock()
		if req.Model != "gpt-4o" {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode(successBody(OpenAI, "from the fallback"))
	}))
	defer server.Close()

	client := NewClient(map[Provider]Spec{OpenAI: {
		Endpoint:       server.URL,
		Model:          "gpt-4o-mini",
		FallbackModels: []string{"gpt-4o-mini", " ", "gpt-4o", "gpt-3.5-turbo"},
		MaxAttempts:    2,
		Timeout:        time.Second,
	}}, WithSleeper(func(time.Duration) {}))

	res, err := client.Generate(context.Background(), OpenAI, "prompt", "key", Params{})
	require.NoError(t, err)
	assert.Equal(t, "from the fallback", res.Text)
	assert.Equal(t, "gpt-4o", res.Model)
	assert.Equal(t, 3, res.Attempts)
	// duplicates and blanks are skipped, later fallbacks are never reached
	assert.Equal(t, []string{"gpt-4o-mini", "gpt-4o-mini", "gpt-4o"}, seen)
}

func TestGenerate_FallbackModelsAllFail(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	sleeper := &recordingSleeper{}
	client := NewClient(map[Provider]Spec{Claude: {
		Endpoint:       server.URL,
		FallbackModels: []string{"claude-3-5-haiku-20241022"},
		MaxAttempts:    2,
		BaseDelay:      10 * time.Millisecond,
		Timeout:        time.Second,
	}}, WithSleeper(sleeper.sleep))

	_, err := client.Generate(context.Background(), Claude, "prompt", "key", Params{})
	var exhausted *ExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, 4, exhausted.Attempts)
	assert.Equal(t, []string{"claude-3-5-sonnet-20241022", "claude-3-5-haiku-20241022"}, exhausted.Models)
	assert.Equal(t, int32(4), atomic.LoadInt32(&calls))
	// each model restarts the backoff schedule
	assert.Equal(t, []time.Duration{10 * time.Millisecond, 10 * time.Millisecond}, sleeper.delays)
}

func TestGenerate_PinnedModelSkipsFallbacks(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(map[Provider]Spec{OpenAI: {
		Endpoint:       server.URL,
		FallbackModels: []string{"gpt-4o"},
		MaxAttempts:    2,
		Timeout:        time.Second,
	}}, WithSleeper(func(time.Duration) {}))

	_, err := client.Generate(context.Background(), OpenAI, "prompt", "key", Params{Model: "gpt-4-turbo"})
	assert.ErrorIs(t, err, ErrRetriesExhausted)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestGenerate_RecoversOnLaterAttempt(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode(successBody(OpenAI, "third time lucky"))
	}))
	defer server.Close()

	observer := &recordingObserver{}
	client := newTestClient(server.URL, 3, time.Second, WithSleeper(func(time.Duration) {}), WithObserver(observer))

	res, err := client.Generate(context.Background(), OpenAI, "prompt", "key", Params{})
	require.NoError(t, err)
	assert.Equal(t, "third time lucky", res.Text)
	assert.Equal(t, 3, res.Attempts)
	assert.Equal(t, []string{OutcomeStatus, OutcomeStatus, OutcomeSuccess}, observer.outcomes)
}

func TestGenerate_EmptyResponseIsRetried(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_, _ = w.Write([]byte(`{"content":[]}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, 3, time.Second, WithSleeper(func(time.Duration) {}))
	_, err := client.Generate(context.Background(), Claude, "prompt", "key", Params{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmptyResponse)
	assert.ErrorIs(t, err, ErrRetriesExhausted)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestGenerate_MalformedBodyIsRetried(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_, _ = w.Write([]byte(`<html>gateway</html>`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, 2, time.Second, WithSleeper(func(time.Duration) {}))
	_, err := client.Generate(context.Background(), Gemini, "prompt", "key", Params{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmptyResponse)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestGenerate_MissingKeyMakesNoAttempt(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer server.Close()

	client := newTestClient(server.URL, 3, time.Second)
	_, err := client.Generate(context.Background(), Claude, "prompt", "   ", Params{})
	assert.ErrorIs(t, err, ErrMissingAPIKey)
	assert.False(t, errors.Is(err, ErrRetriesExhausted))
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}

func TestGenerate_UnknownProvider(t *testing.T) {
	client := NewClient(nil)
	_, err := client.Generate(context.Background(), Provider("llama"), "prompt", "key", Params{})
	assert.ErrorIs(t, err, ErrUnknownProvider)
}

func TestGenerate_CancelledContextStopsRetrying(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	client := newTestClient(server.URL, 5, time.Second, WithSleeper(func(time.Duration) { cancel() }))

	_, err := client.Generate(ctx, OpenAI, "prompt", "key", Params{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestGenerate_BlankPromptIsNormalized(t *testing.T) {
	var content string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req openAIRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		content = req.Messages[0].Content
		_ = json.NewEncoder(w).Encode(successBody(OpenAI, "ok"))
	}))
	defer server.Close()

	client := newTestClient(server.URL, 1, time.Second)
	_, err := client.Generate(context.Background(), OpenAI, "  ", "key", Params{})
	require.NoError(t, err)
	assert.Equal(t, defaultPrompt, content)
}

func TestNewClient_DefaultsFillZeroFields(t *testing.T) {
	client := NewClient(map[Provider]Spec{Gemini: {Model: "gemini-pro", MaxAttempts: 5}})

	gemini, ok := client.Spec(Gemini)
	require.True(t, ok)
	assert.Equal(t, "gemini-pro", gemini.Model)
	assert.Equal(t, 5, gemini.MaxAttempts)
	assert.Equal(t, defaultBaseDelay, gemini.BaseDelay)
	assert.Equal(t, defaultTimeout, gemini.Timeout)
	assert.Equal(t, "https://generativelanguage.googleapis.com/v1beta/models", gemini.Endpoint)

	claude, ok := client.Spec(Claude)
	require.True(t, ok)
	assert.Equal(t, defaultMaxAttempts, claude.MaxAttempts)
	assert.Equal(t, "https://api.anthropic.com/v1/messages", claude.Endpoint)
}

func TestParse(t *testing.T) {
	p, err := Parse(" Claude ")
	require.NoError(t, err)
	assert.Equal(t, Claude, p)

	_, err = Parse("bard")
	assert.ErrorIs(t, err, ErrUnknownProvider)
}
