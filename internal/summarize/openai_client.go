package summarize

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// openAICompatClient serves OpenAI, Groq, OpenRouter, and Ollama's chat
// endpoint, all of which speak the same chat-completions wire format —
// collapsing four of the spec's five provider branches into one client,
// parameterized only by base URL and (optionally empty) API key.
type openAICompatClient struct {
	client *openai.Client
	model  string
}

func newOpenAICompatClient(model, apiKey, baseURL string) *openAICompatClient {
	opts := []option.RequestOption{option.WithBaseURL(baseURL)}
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	client := openai.NewClient(opts...)
	return &openAICompatClient{client: &client, model: model}
}

func (c *openAICompatClient) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt),
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to send request to LLM: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("no content in LLM response")
	}
	return resp.Choices[0].Message.Content, nil
}
