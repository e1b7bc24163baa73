// Package anyllm provides a suggest.Provider backed by
// github.com/mozilla-ai/any-llm-go, a unified multi-provider interface that
// supports OpenAI, Anthropic, Gemini, Ollama, DeepSeek, Mistral, Groq, and
// more. Use it to run the suggester against a local Ollama model when the aid
// must keep working without cloud connectivity.
//
// Usage:
//
//	p, err := anyllm.New("ollama", "llama3.2", history)
//	p, err := anyllm.New("anthropic", "claude-3-5-haiku-latest", history, anyllmlib.WithAPIKey("sk-ant-..."))
package anyllm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	anyllmlib "github.com/mozilla-ai/any-llm-go"
	"github.com/mozilla-ai/any-llm-go/providers/anthropic"
	"github.com/mozilla-ai/any-llm-go/providers/gemini"
	"github.com/mozilla-ai/any-llm-go/providers/groq"
	"github.com/mozilla-ai/any-llm-go/providers/llamacpp"
	"github.com/mozilla-ai/any-llm-go/providers/mistral"
	"github.com/mozilla-ai/any-llm-go/providers/ollama"
	anyllmoai "github.com/mozilla-ai/any-llm-go/providers/openai"

	"github.com/voxkey/voxkey/pkg/provider/suggest"
)

// Compile-time interface check.
var _ suggest.Provider = (*Provider)(nil)

// Provider implements suggest.Provider by wrapping any-llm-go.
type Provider struct {
	backend anyllmlib.Provider
	model   string
	history *suggest.History
}

// New creates a Provider backed by the given LLM provider name.
//
// providerName is one of: "openai", "anthropic", "gemini", "ollama",
// "mistral", "groq", "llamacpp". model is the backend-specific model name.
// history may be nil, in which case an unpersisted in-memory window is used.
//
// opts are any-llm-go configuration options (e.g. anyllmlib.WithAPIKey,
// anyllmlib.WithBaseURL). Without an API key option the backend falls back to
// its usual environment variable.
func New(providerName, model string, history *suggest.History, opts ...anyllmlib.Option) (*Provider, error) {
	if providerName == "" {
		return nil, fmt.Errorf("anyllm suggest: providerName must not be empty")
	}
	if model == "" {
		return nil, fmt.Errorf("anyllm suggest: model must not be empty")
	}

	backend, err := createBackend(providerName, opts...)
	if err != nil {
		return nil, fmt.Errorf("anyllm suggest: create %q backend: %w", providerName, err)
	}

	if history == nil {
		history = suggest.NewHistory(context.Background(), nil)
	}
	return &Provider{backend: backend, model: model, history: history}, nil
}

// createBackend creates the underlying any-llm-go provider.
func createBackend(providerName string, opts ...anyllmlib.Option) (anyllmlib.Provider, error) {
	switch strings.ToLower(providerName) {
	case "openai":
		return anyllmoai.New(opts...)
	case "anthropic":
		return anthropic.New(opts...)
	case "gemini":
		return gemini.New(opts...)
	case "ollama":
		return ollama.New(opts...)
	case "mistral":
		return mistral.New(opts...)
	case "groq":
		return groq.New(opts...)
	case "llamacpp":
		return llamacpp.New(opts...)
	default:
		return nil, fmt.Errorf("unsupported provider %q; supported: openai, anthropic, gemini, ollama, mistral, groq, llamacpp", providerName)
	}
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

	resp, err := p.backend.Completion(ctx, params)
	if err != nil {
		return "", fmt.Errorf("anyllm suggest: complete: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("anyllm suggest: empty choices in response")
	}

	completed := resp.Choices[0].Message.ContentString()
	p.history.Append(ctx, "assistant", completed)
	return completed, nil
}

// SuggestResponses implements suggest.Provider. Backend failures degrade to
// the built-in fallback list rather than an error.
func (p *Provider) SuggestResponses(ctx context.Context, spoken string) ([]string, error) {
	p.history.Append(ctx, "user", spoken)

	params := p.buildParams(
		suggest.SuggestSystemPrompt,
		suggest.SuggestUserPrompt(spoken),
		suggest.SuggestMaxTokens,
		suggest.SuggestTemperature,
	)

	resp, err := p.backend.Completion(ctx, params)
	if err != nil {
		slog.Warn("anyllm suggest: suggest responses failed, using fallbacks", "err", err)
		return suggest.Fallbacks(), nil
	}
	if len(resp.Choices) == 0 {
		slog.Warn("anyllm suggest: empty choices, using fallbacks")
		return suggest.Fallbacks(), nil
	}

	suggestions := suggest.ParseSuggestions(resp.Choices[0].Message.ContentString())
	p.history.Append(ctx, "assistant", "Suggested phrases: "+strings.Join(suggestions, ", "))
	return suggestions, nil
}

// buildParams assembles the completion params: system prompt, the recent
// conversation window, then the current user turn.
func (p *Provider) buildParams(systemPrompt, userPrompt string, maxTokens int, temperature float64) anyllmlib.CompletionParams {
	messages := []anyllmlib.Message{
		{Role: anyllmlib.RoleSystem, Content: systemPrompt},
	}
	for _, m := range p.history.Recent() {
		messages = append(messages, anyllmlib.Message{Role: m.Role, Content: m.Content})
	}
	messages = append(messages, anyllmlib.Message{Role: anyllmlib.RoleUser, Content: userPrompt})

	t := temperature
	mt := maxTokens
	return anyllmlib.CompletionParams{
		Model:       p.model,
		Messages:    messages,
		Temperature: &t,
		MaxTokens:   &mt,
	}
}
