// Package openai provides a suggest.Provider backed by the OpenAI API.
package openai

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/shared"

	"github.com/voxkey/voxkey/pkg/provider/suggest"
	"github.com/voxkey/voxkey/pkg/types"
)

// defaultModel balances quality against the latency a typing pause allows.
const defaultModel = "gpt-4o-mini"

// Compile-time interface check.
var _ suggest.Provider = (*Provider)(nil)

// Provider implements suggest.Provider using the OpenAI chat completions API.
// A bounded rolling history of exchanged messages is injected into every call
// so completions stay consistent with the ongoing conversation.
type Provider struct {
	client  oai.Client
	model   string
	history *suggest.History
}

// config holds optional configuration for the provider.
type config struct {
	model   string
	baseURL string
	timeout time.Duration
	history *suggest.History
}

// Option is a functional option for Provider.
type Option func(*config)

// WithModel overrides the default model.
func WithModel(model string) Option {
	return func(c *config) { c.model = model }
}

// WithBaseURL overrides the default OpenAI API base URL.
func WithBaseURL(url string) Option {
	return func(c *config) { c.baseURL = url }
}

// WithTimeout sets a per-request HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *config) { c.timeout = d }
}

// WithHistory injects a shared (possibly persisted) conversation window.
// Without it the provider keeps an unpersisted in-memory window.
func WithHistory(h *suggest.History) Option {
	return func(c *config) { c.history = h }
}

// New constructs a new OpenAI suggestion Provider.
func New(apiKey string, opts ...Option) (*Provider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai suggest: apiKey must not be empty")
	}

	cfg := &config{model: defaultModel}
	for _, o := range opts {
		o(cfg)
	}

	reqOpts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if cfg.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.baseURL))
	}
	if cfg.timeout > 0 {
		reqOpts = append(reqOpts, option.WithHTTPClient(&http.Client{Timeout: cfg.timeout}))
	}

	history := cfg.history
	if history == nil {
		history = suggest.NewHistory(context.Background(), nil)
	}

	return &Provider{
		client:  oai.NewClient(reqOpts...),
		model:   cfg.model,
		history: history,
	}, nil
}

// Complete implements suggest.Provider.
func (p *Provider) Complete(ctx context.Context, partialText string) (string, error) {
	p.history.Append(ctx, "user", fmt.Sprintf("Complete this: %q", partialText))

	params := p.buildParams(
		suggest.CompleteSystemPrompt,
		suggest.CompleteUserPrompt(partialText),
		suggest.CompleteMaxTokens,
		suggest.CompleteTemperature,
	)

	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai suggest: complete: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai suggest: empty choices in response")
	}

	completed := resp.Choices[0].Message.Content
	p.history.Append(ctx, "assistant", completed)
	return completed, nil
}

// SuggestResponses implements suggest.Provider. Backend failures are absorbed:
// the built-in fallback list is returned so the engine still has phrases to
// offer.
func (p *Provider) SuggestResponses(ctx context.Context, spoken string) ([]string, error) {
	p.history.Append(ctx, "user", spoken)

	params := p.buildParams(
		suggest.SuggestSystemPrompt,
		suggest.SuggestUserPrompt(spoken),
		suggest.SuggestMaxTokens,
		suggest.SuggestTemperature,
	)

	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		slog.Warn("openai suggest: suggest responses failed, using fallbacks", "err", err)
		return suggest.Fallbacks(), nil
	}
	if len(resp.Choices) == 0 {
		slog.Warn("openai suggest: empty choices, using fallbacks")
		return suggest.Fallbacks(), nil
	}

	suggestions := suggest.ParseSuggestions(resp.Choices[0].Message.Content)
	p.history.Append(ctx, "assistant", "Suggested phrases: "+strings.Join(suggestions, ", "))
	return suggestions, nil
}

// buildParams assembles the chat completion request: system prompt, the
// recent conversation window, then the current user turn.
func (p *Provider) buildParams(systemPrompt, userPrompt string, maxTokens int, temperature float64) oai.ChatCompletionNewParams {
	messages := []oai.ChatCompletionMessageParamUnion{
		oai.SystemMessage(systemPrompt),
	}
	for _, m := range p.history.Recent() {
		messages = append(messages, convertMessage(m))
	}
	messages = append(messages, oai.UserMessage(userPrompt))

	return oai.ChatCompletionNewParams{
		Model:               shared.ChatModel(p.model),
		Messages:            messages,
		MaxCompletionTokens: param.NewOpt(int64(maxTokens)),
		Temperature:         param.NewOpt(temperature),
	}
}

// convertMessage converts a types.Message to an OpenAI SDK message param.
func convertMessage(m types.Message) oai.ChatCompletionMessageParamUnion {
	switch m.Role {
	case "assistant":
		return oai.AssistantMessage(m.Content)
	case "system":
		return oai.SystemMessage(m.Content)
	default:
		return oai.UserMessage(m.Content)
	}
}
