package summarize

import (
	"context"
	"fmt"
)

// Provider identifies which LLM backend a summarization request targets.
type Provider string

const (
	ProviderOpenAI     Provider = "openai"
	ProviderClaude     Provider = "claude"
	ProviderGroq       Provider = "groq"
	ProviderOllama     Provider = "ollama"
	ProviderOpenRouter Provider = "openrouter"
)

// ParseProvider maps a string to a Provider, defaulting to OpenAI.
func ParseProvider(s string) Provider {
	switch s {
	case "claude", "anthropic":
		return ProviderClaude
	case "groq":
		return ProviderGroq
	case "ollama":
		return ProviderOllama
	case "openrouter":
		return ProviderOpenRouter
	default:
		return ProviderOpenAI
	}
}

// IsCloud reports whether the provider is always reached over the network
// with no meaningful local context-window constraint to chunk around —
// spec §4.9's strategy selection bypasses chunking entirely for these.
func (p Provider) IsCloud() bool {
	switch p {
	case ProviderOpenAI, ProviderClaude, ProviderGroq, ProviderOpenRouter:
		return true
	default:
		return false
	}
}

// ChatClient is the narrow interface both provider families implement:
// one blocking call, text in, text out.
type ChatClient interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Request describes one summarization call's provider-selection parameters.
type Request struct {
	Provider        Provider
	Model           string
	APIKey          string
	EndpointOverride string // Ollama base URL override
}

// NewClient builds the ChatClient for req.Provider. OpenAI, Groq,
// OpenRouter, and Ollama's chat endpoint share one OpenAI-compatible
// client; Claude gets its own, since its wire format (system field,
// x-api-key, anthropic-version header) differs structurally.
func NewClient(req Request) (ChatClient, error) {
	switch req.Provider {
	case ProviderClaude:
		return newClaudeClient(req.APIKey, req.Model), nil
	case ProviderOpenAI:
		return newOpenAICompatClient(req.Model, req.APIKey, "https://api.openai.com/v1"), nil
	case ProviderGroq:
		return newOpenAICompatClient(req.Model, req.APIKey, "https://api.groq.com/openai/v1"), nil
	case ProviderOpenRouter:
		return newOpenAICompatClient(req.Model, req.APIKey, "https://openrouter.ai/api/v1"), nil
	case ProviderOllama:
		endpoint := req.EndpointOverride
		if endpoint == "" {
			endpoint = "http://localhost:11434"
		}
		return newOpenAICompatClient(req.Model, "", endpoint+"/v1"), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", req.Provider)
	}
}
