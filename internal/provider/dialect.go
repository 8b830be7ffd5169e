package provider

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// dialect captures everything that differs between provider APIs
type dialect interface {
	defaultSpec() Spec
	url(endpoint, model string) (string, error)
	setHeaders(h http.Header, apiKey string)
	body(model, prompt string, p Params) any
	parse(body []byte) (string, error)
}

var dialects = map[Provider]dialect{
	Claude: claudeDialect{},
	Gemini: geminiDialect{},
	OpenAI: openAIDialect{},
}

// DefaultSpec returns the built-in endpoint, model and retry policy for p
func DefaultSpec(p Provider) (Spec, bool) {
	d, ok := dialects[p]
	if !ok {
		return Spec{}, false
	}
	return d.defaultSpec(), true
}

// Claude Messages API

const anthropicVersion = "2023-06-01"

type claudeDialect struct{}

type claudeRequest struct {
	Model       string          `json:"model"`
	MaxTokens   int             `json:"max_tokens"`
	Temperature float64         `json:"temperature,omitempty"`
	Messages    []claudeMessage `json:"messages"`
}

type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type claudeResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

func (claudeDialect) defaultSpec() Spec {
	return Spec{
		Endpoint: "https://api.anthropic.com/v1/messages",
		Model:    "claude-3-5-sonnet-20241022",
	}
}

func (claudeDialect) url(endpoint, _ string) (string, error) { return endpoint, nil }

func (claudeDialect) setHeaders(h http.Header, apiKey string) {
	h.Set("x-api-key", apiKey)
	h.Set("anthropic-version", anthropicVersion)
}

func (claudeDialect) body(model, prompt string, p Params) any {
	return claudeRequest{
		Model:       model,
		MaxTokens:   p.MaxTokens,
		Temperature: p.Temperature,
		Messages:    []claudeMessage{{Role: "user", Content: prompt}},
	}
}

func (claudeDialect) parse(body []byte) (string, error) {
	var resp claudeResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("%w: decode claude response: %v", ErrEmptyResponse, err)
	}
	var parts []string
	for _, block := range resp.Content {
		if block.Type == "text" || block.Type == "" {
			if text := strings.TrimSpace(block.Text); text != "" {
				parts = append(parts, text)
			}
		}
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("%w: no text content (stop_reason=%q)", ErrEmptyResponse, resp.StopReason)
	}
	return strings.Join(parts, "\n"), nil
}

// Gemini generateContent API

type geminiDialect struct{}

type geminiRequest struct {
	Contents         []geminiContent `json:"contents"`
	GenerationConfig geminiConfig    `json:"generationConfig"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiConfig struct {
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
	Temperature     float64 `json:"temperature,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
}

func (geminiDialect) defaultSpec() Spec {
	return Spec{
		Endpoint: "https://generativelanguage.googleapis.com/v1beta/models",
		Model:    "gemini-1.5-flash",
	}
}

func (geminiDialect) url(endpoint, model string) (string, error) {
	u, err := url.JoinPath(endpoint, model+":generateContent")
	if err != nil {
		return "", fmt.Errorf("build gemini url: %w", err)
	}
	return u, nil
}

func (geminiDialect) setHeaders(h http.Header, apiKey string) {
	h.Set("x-goog-api-key", apiKey)
}

func (geminiDialect) body(_, prompt string, p Params) any {
	return geminiRequest{
		Contents: []geminiContent{{Role: "user", Parts: []geminiPart{{Text: prompt}}}},
		GenerationConfig: geminiConfig{
			MaxOutputTokens: p.MaxTokens,
			Temperature:     p.Temperature,
		},
	}
}

func (geminiDialect) parse(body []byte) (string, error) {
	var resp geminiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("%w: decode gemini response: %v", ErrEmptyResponse, err)
	}
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("%w: no candidates", ErrEmptyResponse)
	}
	var parts []string
	for _, part := range resp.Candidates[0].Content.Parts {
		if text := strings.TrimSpace(part.Text); text != "" {
			parts = append(parts, text)
		}
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("%w: no text parts (finish_reason=%q)", ErrEmptyResponse, resp.Candidates[0].FinishReason)
	}
	return strings.Join(parts, "\n"), nil
}

// OpenAI-compatible chat completions API

type openAIDialect struct{}

type openAIRequest struct {
	Model       string          `json:"model"`
	MaxTokens   int             `json:"max_tokens,omitempty"`
	Temperature float64         `json:"temperature,omitempty"`
	Messages    []openAIMessage `json:"messages"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIResponse struct {
	Choices []struct {
		Message      openAIMessage `json:"message"`
		FinishReason string        `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (openAIDialect) defaultSpec() Spec {
	return Spec{
		Endpoint: "https://api.openai.com/v1/chat/completions",
		Model:    "gpt-4o-mini",
	}
}

func (openAIDialect) url(endpoint, _ string) (string, error) { return endpoint, nil }

func (openAIDialect) setHeaders(h http.Header, apiKey string) {
	h.Set("Authorization", "Bearer "+apiKey)
}

func (openAIDialect) body(model, prompt string, p Params) any {
	return openAIRequest{
		Model:       model,
		MaxTokens:   p.MaxTokens,
		Temperature: p.Temperature,
		Messages:    []openAIMessage{{Role: "user", Content: prompt}},
	}
}

func (openAIDialect) parse(body []byte) (string, error) {
	var resp openAIResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("%w: decode openai response: %v", ErrEmptyResponse, err)
	}
	if resp.Error != nil {
		return "", fmt.Errorf("openai api error: %s", strings.TrimSpace(resp.Error.Message))
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices", ErrEmptyResponse)
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("%w: empty message (finish_reason=%q)", ErrEmptyResponse, resp.Choices[0].FinishReason)
	}
	return text, nil
}
